package model

import "time"

// Operation is the kind of change a remediation action performs.
type Operation string

const (
	OperationInsertLine Operation = "insert_line"
	OperationNoop       Operation = "noop"
)

// RemediationAction is a single idempotent change to a manifest file.
type RemediationAction struct {
	TargetFile string    `json:"target_file"`
	Operation  Operation `json:"operation"`
	Payload    string    `json:"payload,omitempty"`
	Reason     string    `json:"reason"` // signature id
	Token      string    `json:"token"`
}

// IsNoop reports whether the action leaves the manifest untouched.
func (a RemediationAction) IsNoop() bool {
	return a.Operation != OperationInsertLine
}

// PatchRecord is produced for every action that actually changed the manifest.
type PatchRecord struct {
	Action     RemediationAction `json:"action"`
	AppliedAt  time.Time         `json:"applied_at"`
	ResultDiff string            `json:"diff"`
}
