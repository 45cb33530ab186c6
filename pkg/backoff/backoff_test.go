package backoff

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponential(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, Exponential(200*time.Millisecond, 0))
	assert.Equal(t, 400*time.Millisecond, Exponential(200*time.Millisecond, 1))
	assert.Equal(t, 800*time.Millisecond, Exponential(200*time.Millisecond, 2))
	assert.Equal(t, 200*time.Millisecond, Exponential(200*time.Millisecond, -3))
	assert.Equal(t, time.Duration(0), Exponential(0, 4))
	assert.Equal(t, time.Duration(math.MaxInt64), Exponential(time.Hour, 62))
}

func TestCapped(t *testing.T) {
	assert.Equal(t, time.Second, Capped(200*time.Millisecond, time.Second, 10))
	assert.Equal(t, 400*time.Millisecond, Capped(200*time.Millisecond, time.Second, 1))
}

func TestFullJitter_Range(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := FullJitter(50 * time.Millisecond)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, 50*time.Millisecond)
	}
	assert.Equal(t, time.Duration(0), FullJitter(0))
}

func TestSleepWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SleepWithContext(ctx, time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, SleepWithContext(context.Background(), 0))
}
