package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusApproved))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusApproved.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusApproved.CanTransitionTo(StatusCancelled))

	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusPending))
	assert.False(t, StatusApproved.CanTransitionTo(StatusApproved))
}

func TestStatusHoldsStock(t *testing.T) {
	assert.True(t, StatusPending.HoldsStock())
	assert.True(t, StatusApproved.HoldsStock())
	assert.True(t, StatusCompleted.HoldsStock())
	assert.False(t, StatusCancelled.HoldsStock())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, Status("shipped").Valid())
	assert.False(t, Status("").Valid())
}
