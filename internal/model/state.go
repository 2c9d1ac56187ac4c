package model

import "fmt"

// DeploymentState is the position of one event in the remediation pipeline.
type DeploymentState int

const (
	StateReceived DeploymentState = iota
	StateClassifying
	StatePlanning
	StatePatching
	StatePublishing
	StateDone
	StateFailed
)

var stateNames = map[DeploymentState]string{
	StateReceived:    "Received",
	StateClassifying: "Classifying",
	StatePlanning:    "Planning",
	StatePatching:    "Patching",
	StatePublishing:  "Publishing",
	StateDone:        "Done",
	StateFailed:      "Failed",
}

func (s DeploymentState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DeploymentState(%d)", int(s))
}

// MarshalText renders the state name in JSON bodies.
func (s DeploymentState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal reports whether no further transition is allowed.
func (s DeploymentState) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether moving from s to next keeps the machine strictly forward.
// Failed and Done are reachable from any non-terminal state.
func (s DeploymentState) CanTransition(next DeploymentState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateDone || next == StateFailed {
		return true
	}
	return next > s
}

// FailureReason is the reason code carried by a Failed state.
type FailureReason string

const (
	ReasonNone               FailureReason = ""
	ReasonManifestMissing    FailureReason = "ManifestMissing"
	ReasonWriteError         FailureReason = "WriteError"
	ReasonPublishConflict    FailureReason = "PublishConflict"
	ReasonPublishUnreachable FailureReason = "PublishUnreachable"
	ReasonTimeout            FailureReason = "Timeout"
	ReasonLogUnavailable     FailureReason = "LogUnavailable"
	ReasonInternal           FailureReason = "Internal"
)
