package patcher

import (
	"context"

	"autoremedy/internal/model"
)

// Patcher applies insert actions to a manifest file on disk.
// Callers serialize access per manifest path.
type Patcher interface {
	Apply(ctx context.Context, path string, actions []model.RemediationAction) ([]model.PatchRecord, error)
}
