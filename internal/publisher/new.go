package publisher

import (
	"autoremedy/pkg/git"
	"autoremedy/pkg/log"
)

const (
	minPushAttempts = 1
	maxPushAttempts = 2
)

type implPublisher struct {
	l            log.Logger
	repo         git.Repository
	pushAttempts int
}

// New creates a new Publisher. PushAttempts is clamped to [1, 2].
func New(l log.Logger, repo git.Repository, opts Options) Publisher {
	attempts := opts.PushAttempts
	if attempts < minPushAttempts {
		attempts = minPushAttempts
	}
	if attempts > maxPushAttempts {
		attempts = maxPushAttempts
	}
	return &implPublisher{
		l:            l,
		repo:         repo,
		pushAttempts: attempts,
	}
}
