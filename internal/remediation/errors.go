package remediation

import (
	"context"
	"errors"

	"autoremedy/internal/model"
	"autoremedy/internal/patcher"
	"autoremedy/internal/publisher"
	"autoremedy/pkg/github"
)

var (
	ErrNoSignatureMatch = errors.New("no known signature matched")
	ErrLogUnavailable   = errors.New("build log unavailable")
	ErrManifestRead     = errors.New("failed to read manifest")
)

// reasonFor maps a component error to the failure reason carried by the outcome.
func reasonFor(ctx context.Context, err error) model.FailureReason {
	switch {
	case errors.Is(err, patcher.ErrManifestMissing):
		return model.ReasonManifestMissing
	case errors.Is(err, patcher.ErrWriteError), errors.Is(err, publisher.ErrCommitFailed):
		return model.ReasonWriteError
	case errors.Is(err, publisher.ErrPublishConflict):
		return model.ReasonPublishConflict
	case errors.Is(err, publisher.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded):
		return model.ReasonTimeout
	case errors.Is(err, publisher.ErrPublishUnreachable):
		return model.ReasonPublishUnreachable
	case errors.Is(err, ErrLogUnavailable), errors.Is(err, github.ErrLogUnavailable), errors.Is(err, github.ErrInvalidRepo):
		return model.ReasonLogUnavailable
	default:
		return model.ReasonInternal
	}
}
