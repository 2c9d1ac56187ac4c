package publisher

import "errors"

var (
	ErrPublishConflict    = errors.New("remote branch moved and could not be reconciled")
	ErrPublishUnreachable = errors.New("remote repository unreachable")
	ErrTimeout            = errors.New("publish timed out")
	ErrCommitFailed       = errors.New("failed to record commit")
)
