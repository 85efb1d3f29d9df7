package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestDebouncerCollapsesBursts(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	d := NewDebouncer(20 * time.Millisecond)
	for range 5 {
		d.Trigger(func() { calls.Add(1) })
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	d.Stop()
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	d := NewDebouncer(20 * time.Millisecond)
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
