package lending_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emin3mUI/library-management-task/lending"
)

func Test_RetryWithExponentialBackoff_SucceedsFirstTry(t *testing.T) {
	// arrange
	calls := 0

	// act
	err := lending.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func Test_RetryWithExponentialBackoff_RetriesUntilSuccess(t *testing.T) {
	// arrange
	calls := 0

	// act
	err := lending.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}

		return nil
	}, lending.WithBaseDelay(time.Millisecond))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func Test_RetryWithExponentialBackoff_ReturnsLastErrorAfterExhaustion(t *testing.T) {
	// arrange
	lastErr := errors.New("still failing")
	calls := 0

	// act
	err := lending.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		calls++
		return lastErr
	}, lending.WithMaxAttempts(4), lending.WithBaseDelay(time.Millisecond))

	// assert
	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, 4, calls)
}

func Test_RetryWithExponentialBackoff_HonorsContextCancellation(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())

	// act
	err := lending.RetryWithExponentialBackoff(ctx, func(_ context.Context) error {
		cancel()
		return errors.New("transient")
	}, lending.WithBaseDelay(time.Second))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_RetryWithExponentialBackoff_ValidatesOptions(t *testing.T) {
	noop := func(_ context.Context) error { return nil }

	err := lending.RetryWithExponentialBackoff(context.Background(), noop, lending.WithMaxAttempts(0))
	assert.ErrorIs(t, err, lending.ErrInvalidMaxAttempts)

	err = lending.RetryWithExponentialBackoff(context.Background(), noop, lending.WithBaseDelay(-time.Second))
	assert.ErrorIs(t, err, lending.ErrNegativeBaseDelay)

	err = lending.RetryWithExponentialBackoff(context.Background(), noop, lending.WithJitterFactor(1.5))
	assert.ErrorIs(t, err, lending.ErrInvalidJitterFactor)
}
