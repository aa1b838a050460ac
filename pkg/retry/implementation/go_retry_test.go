package implementation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jt828/otel-extras/pkg/retry"
	retryImpl "github.com/jt828/otel-extras/pkg/retry/implementation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRetry_Execute(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		r := retryImpl.NewRetry(3, retry.WithInterval(time.Millisecond))
		callCount := 0

		err := r.Execute(context.Background(), func(ctx context.Context) error {
			callCount++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, callCount)
	})

	t.Run("succeeds after retries", func(t *testing.T) {
		r := retryImpl.NewRetry(3,
			retry.WithInterval(time.Millisecond),
			retry.WithRetryable(func(err error) bool { return true }),
		)
		callCount := 0

		err := r.Execute(context.Background(), func(ctx context.Context) error {
			callCount++
			if callCount < 3 {
				return errors.New("transient error")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, callCount)
	})

	t.Run("returns error after max retries exhausted", func(t *testing.T) {
		r := retryImpl.NewRetry(2,
			retry.WithInterval(time.Millisecond),
			retry.WithRetryable(func(err error) bool { return true }),
		)
		callCount := 0
		persistentErr := errors.New("persistent error")

		err := r.Execute(context.Background(), func(ctx context.Context) error {
			callCount++
			return persistentErr
		})

		assert.ErrorIs(t, err, persistentErr)
		// initial attempt + 2 retries = 3 calls
		assert.Equal(t, 3, callCount)
	})

	t.Run("non-retryable error fails immediately", func(t *testing.T) {
		r := retryImpl.NewRetry(3,
			retry.WithInterval(time.Millisecond),
			retry.WithRetryable(func(err error) bool { return false }),
		)
		callCount := 0

		err := r.Execute(context.Background(), func(ctx context.Context) error {
			callCount++
			return errors.New("fatal error")
		})

		assert.ErrorContains(t, err, "fatal error")
		assert.Equal(t, 1, callCount)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		r := retryImpl.NewRetry(100,
			retry.WithInterval(time.Second),
			retry.WithRetryable(func(err error) bool { return true }),
		)

		ctx, cancel := context.WithCancel(context.Background())
		callCount := 0

		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		err := r.Execute(ctx, func(ctx context.Context) error {
			callCount++
			return errors.New("keep failing")
		})

		assert.Error(t, err)
		assert.LessOrEqual(t, callCount, 3)
	})
}

func TestRetry_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	r := retryImpl.NewRetry(3,
		retry.WithInterval(time.Millisecond),
		retry.WithSpanName("charge"),
		retry.WithTracerProvider(tp),
	)
	callCount := 0

	err := r.Execute(context.Background(), func(ctx context.Context) error {
		callCount++
		if callCount < 2 {
			return errors.New("gateway timeout")
		}
		return nil
	})
	require.NoError(t, err)

	ended := sr.Ended()
	require.Len(t, ended, 3)

	first, second, outer := ended[0], ended[1], ended[2]
	assert.Equal(t, "charge.attempt", first.Name())
	assert.Equal(t, codes.Error, first.Status().Code)
	assert.Equal(t, "gateway timeout", first.Status().Description)
	assert.Equal(t, "charge.attempt", second.Name())
	assert.Equal(t, codes.Ok, second.Status().Code)

	assert.Equal(t, "charge", outer.Name())
	assert.Equal(t, codes.Ok, outer.Status().Code)
	assert.Equal(t, outer.SpanContext().SpanID(), first.Parent().SpanID())
	assert.Equal(t, outer.SpanContext().SpanID(), second.Parent().SpanID())
	assert.Equal(t, "github.com/jt828/otel-extras/pkg/retry", outer.InstrumentationScope().Name)

	attrs := map[string]string{}
	for _, kv := range outer.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "3", attrs["retry.max_retries"])
	assert.Equal(t, "2", attrs["retry.attempts"])
}
