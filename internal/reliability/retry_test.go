package reliability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	t.Run("retries up to max attempts", func(t *testing.T) {
		policy := NewExponentialBackoff(time.Millisecond, 10*time.Millisecond, 2.0, 3)

		ok, _ := policy.ShouldRetry(0, errors.New("boom"))
		assert.True(t, ok)

		ok, _ = policy.ShouldRetry(3, errors.New("boom"))
		assert.False(t, ok)
		assert.Equal(t, 3, policy.MaxRetries())
	})

	t.Run("delay grows and is capped", func(t *testing.T) {
		policy := &ExponentialBackoff{
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     25 * time.Millisecond,
			Multiplier:      2.0,
			MaxAttempts:     10,
		}

		_, d0 := policy.ShouldRetry(0, errors.New("boom"))
		_, d1 := policy.ShouldRetry(1, errors.New("boom"))
		_, d5 := policy.ShouldRetry(5, errors.New("boom"))

		assert.Equal(t, 10*time.Millisecond, d0)
		assert.Equal(t, 20*time.Millisecond, d1)
		assert.Equal(t, 25*time.Millisecond, d5)
	})
}

func TestFixedDelay(t *testing.T) {
	t.Run("constant delay within attempts", func(t *testing.T) {
		policy := NewFixedDelay(5*time.Millisecond, 2)

		ok, delay := policy.ShouldRetry(0, errors.New("boom"))
		assert.True(t, ok)
		assert.Equal(t, 5*time.Millisecond, delay)

		ok, _ = policy.ShouldRetry(2, errors.New("boom"))
		assert.False(t, ok)
	})
}

func TestRetry(t *testing.T) {
	t.Run("returns nil on eventual success", func(t *testing.T) {
		attempts := 0
		err := Retry(context.Background(), NewFixedDelay(0, 5), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns the last error when exhausted", func(t *testing.T) {
		last := errors.New("still failing")
		err := Retry(context.Background(), NewFixedDelay(0, 1), func() error {
			return last
		})

		assert.Equal(t, last, err)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Retry(ctx, NewFixedDelay(time.Second, 5), func() error {
			return errors.New("boom")
		})

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("non-retryable errors stop immediately", func(t *testing.T) {
		attempts := 0
		err := Retry(context.Background(), NewFixedDelay(0, 5), func() error {
			attempts++
			return RetryableError{Err: errors.New("fatal"), Retryable: false}
		})

		assert.Error(t, err)
		assert.Equal(t, 1, attempts)
	})
}

func TestRetryableError(t *testing.T) {
	t.Run("wraps and unwraps", func(t *testing.T) {
		cause := errors.New("cause")
		err := RetryableError{Err: cause, Retryable: true}

		assert.Equal(t, "cause", err.Error())
		assert.True(t, err.IsRetryable())
		assert.ErrorIs(t, err, cause)
	})
}
