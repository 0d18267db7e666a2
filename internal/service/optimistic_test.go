package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimisticCommandConfirmOrder(t *testing.T) {
	var steps []string
	cmd := optimisticCommand{
		apply:    func() { steps = append(steps, "apply") },
		attempt:  func(context.Context) error { steps = append(steps, "attempt"); return nil },
		confirm:  func() { steps = append(steps, "confirm") },
		rollback: func() { steps = append(steps, "rollback") },
	}

	require.NoError(t, cmd.run(context.Background()))
	assert.Equal(t, []string{"apply", "attempt", "confirm"}, steps)
}

func TestOptimisticCommandRollbackOrder(t *testing.T) {
	var steps []string
	boom := errors.New("boom")
	cmd := optimisticCommand{
		apply:    func() { steps = append(steps, "apply") },
		attempt:  func(context.Context) error { steps = append(steps, "attempt"); return boom },
		confirm:  func() { steps = append(steps, "confirm") },
		rollback: func() { steps = append(steps, "rollback") },
	}

	err := cmd.run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"apply", "attempt", "rollback"}, steps)
}
