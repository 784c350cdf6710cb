package kernel

// Semaphore is a counting primitive with a priority-ordered waiter
// list: at any quiescent moment, either value is zero with some
// waiters parked, or value is positive with no waiters, never both.
type Semaphore struct {
	value   int
	waiters waiterHeap
}

// NewSemaphore initializes a semaphore to v, which must be >= 0.
func NewSemaphore(v int) *Semaphore {
	s := &Semaphore{}
	s.Init(v)
	return s
}

// Init (re)initializes the semaphore's value and empties its waiters.
func (s *Semaphore) Init(v int) {
	s.value = v
	s.waiters = waiterHeap{}
}

// Down blocks while value is zero, then decrements it. Must not be
// called from interrupt context.
func (s *Semaphore) Down(k *Kernel) {
	k.mu.Lock()
	for s.value == 0 {
		s.waiters.add(k.current)
		k.Block()
	}
	s.value--
	k.mu.Unlock()
}

func (s *Semaphore) tryDownLocked() bool {
	if s.value > 0 {
		s.value--
		return true
	}
	return false
}

// TryDown decrements and returns true if value > 0, otherwise returns
// false without blocking. Safe to call from interrupt context.
func (s *Semaphore) TryDown(k *Kernel) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return s.tryDownLocked()
}

// Up wakes the highest-priority waiter (re-sorting the waiter list
// first, since a waiter's effective priority may have risen via
// donation since it queued) and increments value. If called from
// thread context it runs the preemption check immediately; from
// interrupt context, preemption is deferred to the next Checkpoint.
// Safe to call from interrupt context.
func (s *Semaphore) Up(k *Kernel) {
	k.mu.Lock()
	var woken *Thread
	if s.waiters.length() > 0 {
		woken, _ = s.waiters.popBest().(*Thread)
	}
	s.value++
	if woken != nil {
		k.unblockLocked(woken)
	}
	intrCtx := k.intrContext
	k.mu.Unlock()

	if intrCtx {
		k.requestYieldOnReturn()
	} else {
		k.preemptIfNeeded()
	}
}

// Value returns the semaphore's current value. Intended for tests and
// diagnostics.
func (s *Semaphore) Value(k *Kernel) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return s.value
}

// Waiters returns the number of threads currently parked on the
// semaphore. Intended for tests and diagnostics.
func (s *Semaphore) Waiters(k *Kernel) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return s.waiters.length()
}
