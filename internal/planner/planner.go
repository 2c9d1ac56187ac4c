package planner

import (
	"fmt"

	"autoremedy/internal/manifest"
	"autoremedy/internal/model"
)

// Plan builds at most one action per distinct token. Exact findings with a
// safe template become InsertLine, or Noop when the manifest already declares
// the token. Everything else is reported as a warning, after the actions.
func (p *implPlanner) Plan(findings []model.ErrorFinding, manifestContent string, targetFile string) Plan {
	plan := Plan{
		Actions:  make([]model.RemediationAction, 0),
		Warnings: make([]string, 0),
	}
	seen := make(map[string]bool)

	for _, f := range findings {
		if f.Confidence != model.ConfidenceExact || f.ExtractedToken == "" {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("%s matched without a fixable token: %s", f.SignatureID, f.EvidenceSnippet))
			continue
		}

		tpl, ok := p.templates[f.SignatureID]
		if !ok {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("%s: no safe fix for %q", f.SignatureID, f.ExtractedToken))
			continue
		}
		if !manifest.ValidName(f.ExtractedToken) || !tpl.Allows(f.ExtractedToken) {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("%s: %q is not a known safe dependency", f.SignatureID, f.ExtractedToken))
			continue
		}

		if seen[f.ExtractedToken] {
			continue
		}
		seen[f.ExtractedToken] = true

		action := model.RemediationAction{
			TargetFile: targetFile,
			Operation:  model.OperationNoop,
			Reason:     f.SignatureID,
			Token:      f.ExtractedToken,
		}
		if !manifest.Declares(manifestContent, f.ExtractedToken) {
			action.Operation = model.OperationInsertLine
			action.Payload = manifest.Declaration(f.ExtractedToken, tpl.Comment)
		}
		plan.Actions = append(plan.Actions, action)
	}

	return plan
}
