package kernel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateThreadPreemptsLowerPriorityCaller exercises scenario S1: a
// thread created with a strictly higher priority than its creator has
// already run at least once by the time CreateThread returns.
func TestCreateThreadPreemptsLowerPriorityCaller(t *testing.T) {
	k := NewKernel()
	ran := false

	_, err := k.CreateThread("urgent", PriDefault+5, func(k *Kernel) {
		ran = true
	})
	require.NoError(t, err)
	assert.True(t, ran, "higher-priority thread should have run before CreateThread returned")
	assert.Equal(t, k.initial, k.Current())
}

// TestCreateThreadDoesNotPreemptEqualPriority exercises scenario S2's
// premise: equal priority never preempts the caller, only strictly
// higher does.
func TestCreateThreadDoesNotPreemptEqualPriority(t *testing.T) {
	k := NewKernel()
	ran := false

	_, err := k.CreateThread("peer", PriDefault, func(k *Kernel) {
		ran = true
	})
	require.NoError(t, err)
	assert.False(t, ran, "equal-priority thread should not run before CreateThread returns")
}

// TestReadyQueueFIFOAmongEqualPriority exercises scenario S2: threads
// with the same priority run in the order they were created.
func TestReadyQueueFIFOAmongEqualPriority(t *testing.T) {
	k := NewKernel()

	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	_, err := k.CreateThread("A", PriDefault, func(k *Kernel) { record("A") })
	require.NoError(t, err)
	_, err = k.CreateThread("B", PriDefault, func(k *Kernel) { record("B") })
	require.NoError(t, err)
	_, err = k.CreateThread("C", PriDefault, func(k *Kernel) { record("C") })
	require.NoError(t, err)

	k.Yield()

	assert.Equal(t, []string{"A", "B", "C"}, order)
}

// TestSetPriorityPreemptsWhenLowered checks that lowering the caller's
// priority below a ready thread's yields the CPU.
func TestSetPriorityPreemptsWhenLowered(t *testing.T) {
	k := NewKernel()
	ran := false

	_, err := k.CreateThread("waiting", 10, func(k *Kernel) { ran = true })
	require.NoError(t, err)
	assert.False(t, ran)

	k.SetPriority(5)

	assert.True(t, ran, "lowering below a ready thread's priority should yield to it")
	assert.Equal(t, 5, k.Current().BasePriority())
}

// TestSetPriorityWithoutDonationsUpdatesEffectivePriorityImmediately
// covers the ordinary (undonated) path through SetPriority.
func TestSetPriorityWithoutDonationsUpdatesEffectivePriorityImmediately(t *testing.T) {
	k := NewKernel()
	k.SetPriority(42)
	cur := k.Current()
	assert.Equal(t, 42, cur.BasePriority())
	assert.Equal(t, 42, cur.Priority())
}

// TestYieldIsANoOpWhenCallerRemainsHighest verifies that Yield returns
// control to the caller unchanged when nothing else is ready.
func TestYieldIsANoOpWhenCallerRemainsHighest(t *testing.T) {
	k := NewKernel()
	initial := k.Current()
	k.Yield()
	assert.Equal(t, initial, k.Current())
}

// TestReadyQueueStaysSorted inserts several threads out of priority
// order and checks the ready queue invariant from spec.md S8 directly.
func TestReadyQueueStaysSorted(t *testing.T) {
	k := NewKernel()

	for _, p := range []int{5, 20, 1, 15, 9} {
		_, err := k.CreateThread("low", p, func(k *Kernel) {})
		require.NoError(t, err)
	}

	assert.True(t, k.readyQ.sorted())
	assert.Equal(t, 5, k.readyQ.len())
}

// TestCreateThreadRejectsOutOfRangePriority covers the priority-domain
// validation path.
func TestCreateThreadRejectsOutOfRangePriority(t *testing.T) {
	k := NewKernel()

	_, err := k.CreateThread("bad", PriMax+1, func(k *Kernel) {})
	assert.ErrorIs(t, err, ErrInvalidPriority)

	_, err = k.CreateThread("bad", PriMin-1, func(k *Kernel) {})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

// TestMaxThreadsIsEnforced checks that WithMaxThreads bounds admission:
// once the cap is reached, CreateThread fails with ErrThreadAllocFailed.
func TestMaxThreadsIsEnforced(t *testing.T) {
	k := NewKernel(WithMaxThreads(1))

	_, err := k.CreateThread("only", PriDefault-1, func(k *Kernel) {})
	require.NoError(t, err)

	_, err = k.CreateThread("overflow", PriDefault-1, func(k *Kernel) {})
	assert.ErrorIs(t, err, ErrThreadAllocFailed)
}

func TestStatsTrackThreadCreationAndReclamation(t *testing.T) {
	k := NewKernel()
	done := make(chan struct{})

	_, err := k.CreateThread("quick", PriDefault, func(k *Kernel) { close(done) })
	require.NoError(t, err)
	k.Yield()

	select {
	case <-done:
	default:
		t.Fatal("quick thread never ran")
	}

	snap := k.Stats()
	assert.Equal(t, uint64(1), snap.ThreadsCreated)
	assert.Equal(t, uint64(1), snap.ThreadsReclaimed)
}
