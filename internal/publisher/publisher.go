package publisher

import (
	"context"
	"errors"
	"fmt"

	"autoremedy/pkg/git"
)

const msgNothingToPublish = "no changes, nothing to publish"

// Publish stages and commits the manifest, then pushes it. A rejected push is
// followed by one rebase onto the remote before the next attempt. The local
// commit is kept on every failure.
func (p *implPublisher) Publish(ctx context.Context, req Request) (Result, error) {
	if len(req.Records) == 0 {
		return Result{Published: false, Message: msgNothingToPublish}, nil
	}

	if err := p.repo.Stage(ctx, req.ManifestPath); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	subject, body := CommitMessage(req.Records, req.Event)
	hash, err := p.repo.Commit(ctx, subject, body)
	if err != nil {
		if errors.Is(err, git.ErrNothingToCommit) {
			return Result{Published: false, Message: msgNothingToPublish}, nil
		}
		return Result{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	res := Result{CommitHash: hash}
	for attempt := 1; ; attempt++ {
		res.Attempts = attempt

		err := p.repo.Push(ctx)
		if err == nil {
			res.Published = true
			res.Message = subject
			p.l.Infof(ctx, "publisher.Publish: pushed %s after %d attempt(s)", hash, attempt)
			return res, nil
		}

		if !errors.Is(err, git.ErrPushRejected) {
			return res, mapErr(err)
		}
		if attempt >= p.pushAttempts {
			p.l.Warnf(ctx, "publisher.Publish: push still rejected after %d attempt(s), commit %s kept locally", attempt, hash)
			return res, fmt.Errorf("%w: %v", ErrPublishConflict, err)
		}

		p.l.Warnf(ctx, "publisher.Publish: push rejected, rebasing onto remote")
		if err := p.repo.PullRebase(ctx); err != nil {
			if errors.Is(err, git.ErrRebaseConflict) {
				return res, fmt.Errorf("%w: %v", ErrPublishConflict, err)
			}
			return res, mapErr(err)
		}
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, git.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, git.ErrPushRejected):
		return fmt.Errorf("%w: %v", ErrPublishConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrPublishUnreachable, err)
	}
}
