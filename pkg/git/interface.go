package git

import "context"

// Repository is the subset of git the publisher needs.
type Repository interface {
	// Stage adds the given paths (absolute or relative to the repo root) to the index.
	Stage(ctx context.Context, paths ...string) error
	// Commit records the index and returns the new commit hash.
	Commit(ctx context.Context, subject, body string) (string, error)
	// Push sends the configured branch to the configured remote.
	Push(ctx context.Context) error
	// PullRebase rebases local commits onto the remote branch.
	PullRebase(ctx context.Context) error
}
