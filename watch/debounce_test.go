package watch_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texlet/texlet/watch"
)

const (
	waitTimeout = 2 * time.Second
	waitTick    = 5 * time.Millisecond
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	d := watch.NewDebouncer(50*time.Millisecond, func() { calls.Add(1) })

	// A rapid burst collapses to a single trailing-edge call.
	for range 5 {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitTimeout, waitTick)

	// Quiet period: no further calls arrive.
	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	d := watch.NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitTimeout, waitTick)

	d.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, waitTimeout, waitTick)
}

func TestDebouncer_FlushRunsImmediately(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	// A long delay that the test never waits out.
	d := watch.NewDebouncer(10*time.Second, func() { calls.Add(1) })

	d.Trigger()
	d.Flush()

	require.EqualValues(t, 1, calls.Load(), "flush runs the callback synchronously")

	// The pending trigger was cancelled by the flush.
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDebouncer_StopCancels(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	d := watch.NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
