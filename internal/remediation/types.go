package remediation

import (
	"time"

	"autoremedy/internal/model"
)

// Outcome is the result of running one event through the pipeline.
type Outcome struct {
	EventID     string                    `json:"event_id"`
	State       model.DeploymentState     `json:"state"`
	Reason      model.FailureReason       `json:"reason,omitempty"`
	Message     string                    `json:"message"`
	Findings    []model.ErrorFinding      `json:"findings"`
	Actions     []model.RemediationAction `json:"actions"`
	Records     []model.PatchRecord       `json:"records"`
	Warnings    []string                  `json:"warnings"`
	CommitHash  string                    `json:"commit_hash,omitempty"`
	Transitions []model.DeploymentState   `json:"transitions"`
}

func newOutcome(eventID string) *Outcome {
	return &Outcome{
		EventID:     eventID,
		State:       model.StateReceived,
		Findings:    []model.ErrorFinding{},
		Actions:     []model.RemediationAction{},
		Records:     []model.PatchRecord{},
		Warnings:    []string{},
		Transitions: []model.DeploymentState{model.StateReceived},
	}
}

// advance moves the outcome forward and reports whether the move was legal.
func (o *Outcome) advance(next model.DeploymentState) bool {
	if !o.State.CanTransition(next) {
		return false
	}
	o.State = next
	o.Transitions = append(o.Transitions, next)
	return true
}

func (o *Outcome) done(msg string) {
	if o.advance(model.StateDone) {
		o.Message = msg
	}
}

func (o *Outcome) fail(reason model.FailureReason, msg string) {
	if o.advance(model.StateFailed) {
		o.Reason = reason
		o.Message = msg
	}
}

// Tokens lists the tokens that were added to the manifest.
func (o Outcome) Tokens() []string {
	out := make([]string, 0, len(o.Records))
	for _, r := range o.Records {
		out = append(out, r.Action.Token)
	}
	return out
}

// SignatureIDs lists the distinct signatures that matched.
func (o Outcome) SignatureIDs() []string {
	seen := make(map[string]bool, len(o.Findings))
	out := make([]string, 0, len(o.Findings))
	for _, f := range o.Findings {
		if !seen[f.SignatureID] {
			seen[f.SignatureID] = true
			out = append(out, f.SignatureID)
		}
	}
	return out
}

// Options configures the pipeline.
type Options struct {
	RepoPath string
	Manifest string        // relative to RepoPath
	Timeout  time.Duration // whole pipeline, detached from the caller
	ChatID   int64         // notification target, 0 disables
}
