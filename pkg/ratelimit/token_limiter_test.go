package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLimiter_ConsumesWithinBudget(t *testing.T) {
	l := NewTokenLimiter(100)

	require.NoError(t, l.Wait(context.Background(), 40))
	assert.Equal(t, 60, l.GetRemaining())

	require.NoError(t, l.Wait(context.Background(), 60))
	assert.Equal(t, 0, l.GetRemaining())
}

func TestTokenLimiter_OversizedRequestDoesNotDeadlock(t *testing.T) {
	l := NewTokenLimiter(100)

	done := make(chan error, 1)
	go func() {
		done <- l.Wait(context.Background(), 500)
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on a request larger than the whole budget")
	}
}

func TestTokenLimiter_CancelledContext(t *testing.T) {
	l := NewTokenLimiter(10)
	require.NoError(t, l.Wait(context.Background(), 10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
