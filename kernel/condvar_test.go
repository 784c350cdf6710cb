package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondSignalWakesSingleWaiter(t *testing.T) {
	k := NewKernel()
	k.SetPriority(1)
	l := NewLock()
	cond := NewCond()

	ready := false
	done := make(chan struct{})

	_, err := k.CreateThread("waiter", 10, func(k *Kernel) {
		l.Acquire(k)
		for !ready {
			cond.Wait(k, l)
		}
		l.Release(k)
		close(done)
	})
	require.NoError(t, err)

	select {
	case <-done:
		t.Fatal("waiter finished before being signaled")
	default:
	}

	l.Acquire(k)
	ready = true
	cond.Signal(k, l)
	l.Release(k)

	select {
	case <-done:
	default:
		t.Fatal("waiter did not wake after signal")
	}
}

func TestCondBroadcastWakesEveryWaiter(t *testing.T) {
	k := NewKernel()
	k.SetPriority(1)
	l := NewLock()
	cond := NewCond()

	const n = 3
	remaining := n
	done := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		_, err := k.CreateThread("waiter", 10, func(k *Kernel) {
			l.Acquire(k)
			for remaining > 0 {
				cond.Wait(k, l)
			}
			l.Release(k)
			done <- struct{}{}
		})
		require.NoError(t, err)
	}

	require.Equal(t, n, cond.Waiters(k))

	l.Acquire(k)
	remaining = 0
	cond.Broadcast(k, l)
	l.Release(k)

	for i := 0; i < n; i++ {
		select {
		case <-done:
		default:
			t.Fatalf("waiter %d never woke from broadcast", i)
		}
	}
	assert.Equal(t, 0, cond.Waiters(k))
}

func TestCondSignalWithoutHoldingLockPanics(t *testing.T) {
	k := NewKernel()
	l := NewLock()
	cond := NewCond()

	require.Panics(t, func() { cond.Signal(k, l) })
}
