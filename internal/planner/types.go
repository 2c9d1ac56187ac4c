package planner

import "autoremedy/internal/model"

// Plan is the planner output for one event.
type Plan struct {
	Actions  []model.RemediationAction
	Warnings []string // surfaced in the notification only
}

// HasChanges reports whether any action would modify the manifest.
func (p Plan) HasChanges() bool {
	for _, a := range p.Actions {
		if !a.IsNoop() {
			return true
		}
	}
	return false
}

// Inserts returns the non-noop actions in order.
func (p Plan) Inserts() []model.RemediationAction {
	out := make([]model.RemediationAction, 0, len(p.Actions))
	for _, a := range p.Actions {
		if !a.IsNoop() {
			out = append(out, a)
		}
	}
	return out
}

// FixTemplate is a known safe fix for one signature.
type FixTemplate struct {
	SignatureID string
	Comment     string          // trailing comment on the inserted line
	Allowed     map[string]bool // nil means any valid gem name
}

// Allows reports whether the template may be applied to token.
func (t FixTemplate) Allows(token string) bool {
	if t.Allowed == nil {
		return true
	}
	return t.Allowed[token]
}
