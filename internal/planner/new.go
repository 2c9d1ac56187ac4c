package planner

import "autoremedy/internal/model"

// Planner maps findings to idempotent manifest actions.
type Planner interface {
	Plan(findings []model.ErrorFinding, manifestContent string, targetFile string) Plan
}

type implPlanner struct {
	templates map[string]FixTemplate
}

// New creates a Planner. Nil templates fall back to DefaultTemplates.
func New(templates []FixTemplate) Planner {
	if templates == nil {
		templates = DefaultTemplates()
	}
	byID := make(map[string]FixTemplate, len(templates))
	for _, t := range templates {
		byID[t.SignatureID] = t
	}
	return &implPlanner{templates: byID}
}
