package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func (r *implRepository) root() (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

func (r *implRepository) Stage(ctx context.Context, paths ...string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	root := wt.Filesystem.Root()

	for _, p := range paths {
		rel := p
		if filepath.IsAbs(p) {
			rel, err = filepath.Rel(root, p)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrOutsideRepo, p)
			}
		}
		rel = filepath.ToSlash(filepath.Clean(rel))
		if rel == ".." || strings.HasPrefix(rel, "../") {
			return fmt.Errorf("%w: %s", ErrOutsideRepo, p)
		}
		if _, err := wt.Add(rel); err != nil {
			return fmt.Errorf("failed to stage %s: %w", rel, err)
		}
		r.l.Debugf(ctx, "git.Stage: staged %s", rel)
	}
	return nil
}

func (r *implRepository) Commit(ctx context.Context, subject, body string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("failed to read status: %w", err)
	}
	staged := false
	for _, s := range status {
		if s.Staging != gogit.Unmodified && s.Staging != gogit.Untracked {
			staged = true
			break
		}
	}
	if !staged {
		return "", ErrNothingToCommit
	}

	msg := subject
	if body != "" {
		msg = fmt.Sprintf("%s\n\n%s", subject, body)
	}

	hash, err := wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  r.cfg.AuthorName,
			Email: r.cfg.AuthorEmail,
			When:  r.now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	r.l.Infof(ctx, "git.Commit: created %s", hash.String())
	return hash.String(), nil
}

func (r *implRepository) Push(ctx context.Context) error {
	out, err := r.git(ctx, "push", r.cfg.Remote, "HEAD:refs/heads/"+r.cfg.Branch)
	if err != nil {
		return classify(ctx, out, err)
	}
	r.l.Infof(ctx, "git.Push: pushed to %s/%s", r.cfg.Remote, r.cfg.Branch)
	return nil
}

func (r *implRepository) PullRebase(ctx context.Context) error {
	out, err := r.git(ctx, "pull", "--rebase", r.cfg.Remote, r.cfg.Branch)
	if err == nil {
		return nil
	}

	if isRebaseConflict(out) {
		// keep the local commit and leave the tree clean
		if _, abortErr := r.git(context.WithoutCancel(ctx), "rebase", "--abort"); abortErr != nil {
			r.l.Errorf(ctx, "git.PullRebase: rebase --abort failed: %v", abortErr)
		}
		return fmt.Errorf("%w: %s", ErrRebaseConflict, firstLine(out))
	}
	return classify(ctx, out, err)
}

func (r *implRepository) git(ctx context.Context, args ...string) ([]byte, error) {
	root, err := r.root()
	if err != nil {
		return nil, err
	}
	return r.runner.Run(ctx, Command{
		Name: "git",
		Args: args,
		Dir:  root,
		Env:  []string{"GIT_TERMINAL_PROMPT=0"},
	})
}

var rejectMarkers = []string{
	"non-fast-forward",
	"[rejected]",
	"fetch first",
	"Updates were rejected",
}

// classify maps a failed git invocation to one of the package errors.
func classify(ctx context.Context, out []byte, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	text := string(out)
	for _, m := range rejectMarkers {
		if strings.Contains(text, m) {
			return fmt.Errorf("%w: %s", ErrPushRejected, firstLine(out))
		}
	}
	return fmt.Errorf("%w: %s", ErrUnreachable, firstLine(out))
}

func isRebaseConflict(out []byte) bool {
	text := string(out)
	return strings.Contains(text, "CONFLICT") || strings.Contains(text, "could not apply")
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
