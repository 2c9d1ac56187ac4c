package patcher

import (
	"time"

	"autoremedy/pkg/log"
)

const (
	MarkerBegin = "# autoremedy: declarations added by build-failure remediation"
	MarkerEnd   = "# autoremedy: end"
)

type implPatcher struct {
	l   log.Logger
	now func() time.Time
}

// New creates a new Patcher.
func New(l log.Logger) Patcher {
	return &implPatcher{
		l:   l,
		now: time.Now,
	}
}
