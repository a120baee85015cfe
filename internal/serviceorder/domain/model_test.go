package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusInProgress))
	assert.True(t, StatusInProgress.CanTransitionTo(StatusWaitingParts))
	assert.True(t, StatusInProgress.CanTransitionTo(StatusWaitingApproval))
	assert.True(t, StatusInProgress.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusWaitingParts.CanTransitionTo(StatusInProgress))
	assert.True(t, StatusWaitingApproval.CanTransitionTo(StatusApproved))
	assert.True(t, StatusApproved.CanTransitionTo(StatusInProgress))
	assert.True(t, StatusApproved.CanTransitionTo(StatusCompleted))

	// Completion requires the work to have started.
	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusWaitingParts.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusWaitingApproval.CanTransitionTo(StatusCompleted))
}

func TestAnyOpenStatusCanBeCancelled(t *testing.T) {
	open := []Status{StatusPending, StatusInProgress, StatusWaitingParts, StatusWaitingApproval, StatusApproved}
	for _, status := range open {
		assert.True(t, status.CanTransitionTo(StatusCancelled), "cancel from %s", status)
	}

	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusCancelled))
}

func TestTerminalStatusesAreFrozen(t *testing.T) {
	all := []Status{StatusPending, StatusInProgress, StatusWaitingParts, StatusWaitingApproval, StatusApproved, StatusCompleted, StatusCancelled}
	for _, terminal := range []Status{StatusCompleted, StatusCancelled} {
		for _, next := range all {
			assert.False(t, terminal.CanTransitionTo(next), "%s -> %s", terminal, next)
		}
	}
}
