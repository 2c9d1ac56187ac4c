package model_test

import (
	"testing"

	"autoremedy/internal/model"
)

func TestDeploymentStateTransitions(t *testing.T) {
	tests := []struct {
		from, to model.DeploymentState
		want     bool
	}{
		{model.StateReceived, model.StateClassifying, true},
		{model.StateClassifying, model.StatePlanning, true},
		{model.StatePlanning, model.StatePatching, true},
		{model.StatePatching, model.StatePublishing, true},
		{model.StatePublishing, model.StateDone, true},
		{model.StateClassifying, model.StateDone, true},
		{model.StatePatching, model.StateFailed, true},
		{model.StatePlanning, model.StateClassifying, false},
		{model.StatePublishing, model.StatePatching, false},
		{model.StateDone, model.StateFailed, false},
		{model.StateFailed, model.StateDone, false},
		{model.StatePlanning, model.StatePlanning, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestDeploymentStateText(t *testing.T) {
	b, err := model.StateFailed.MarshalText()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "Failed" {
		t.Errorf("expected Failed, got %s", b)
	}
	if model.DeploymentState(42).String() != "DeploymentState(42)" {
		t.Errorf("unexpected name for unknown state: %s", model.DeploymentState(42))
	}
}
