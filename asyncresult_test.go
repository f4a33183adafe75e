package tintbar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncResultAwaitReturnsValue(t *testing.T) {
	r := NewAsyncResult[bool]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Complete(true)
	}()

	value, err := r.Await(context.Background())
	require.NoError(t, err)
	assert.True(t, value)
}

func TestAsyncResultIsSingleUse(t *testing.T) {
	r := CompletedResult(42)

	value, err := r.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, value)

	_, err = r.Await(context.Background())
	assert.ErrorIs(t, err, ErrResultConsumed)
}

func TestAsyncResultSecondAwaitFailsWhileFirstBlocks(t *testing.T) {
	r := NewAsyncResult[int]()

	firstDone := make(chan error, 1)
	go func() {
		_, err := r.Await(context.Background())
		firstDone <- err
	}()

	// The first await takes the consumed flag before blocking; poll until
	// the second await observes it.
	require.Eventually(t, func() bool {
		_, err := r.Await(context.Background())
		return errors.Is(err, ErrResultConsumed)
	}, time.Second, time.Millisecond)

	r.Complete(7)
	require.NoError(t, <-firstDone)
}

func TestAsyncResultAwaitHonorsContext(t *testing.T) {
	r := NewAsyncResult[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAsyncResultDoubleCompletePanics(t *testing.T) {
	r := CompletedResult(1)
	assert.Panics(t, func() { r.Complete(2) })
}
