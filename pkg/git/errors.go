package git

import "errors"

var (
	ErrPushRejected    = errors.New("push rejected by remote")
	ErrRebaseConflict  = errors.New("rebase onto remote stopped on a conflict")
	ErrUnreachable     = errors.New("remote unreachable")
	ErrTimeout         = errors.New("git operation timed out")
	ErrNothingToCommit = errors.New("nothing staged to commit")
	ErrOutsideRepo     = errors.New("path is outside the repository")
)
