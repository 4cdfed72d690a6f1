package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidState(t *testing.T) {
	tests := []struct {
		state CaseState
		want  bool
	}{
		{CaseStateOpen, true},
		{CaseStateInProgress, true},
		{CaseStateTest, true},
		{CaseStateClosed, true},
		{CaseState("ARCHIVED"), false},
		{CaseState(""), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidState(tt.state), "state %q", tt.state)
	}
}

func TestValidPriority(t *testing.T) {
	tests := []struct {
		priority CasePriority
		want     bool
	}{
		{CasePriorityLow, true},
		{CasePriorityMedium, true},
		{CasePriorityHigh, true},
		{CasePriority("URGENT"), false},
		{CasePriority(""), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidPriority(tt.priority), "priority %q", tt.priority)
	}
}
