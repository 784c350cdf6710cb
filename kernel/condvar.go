package kernel

// Cond is a monitor-style condition variable with Mesa semantics:
// Signal and Broadcast do not atomically transfer the associated lock
// to a waiter, so every waiter must re-test its predicate after Wait
// returns. Each waiter parks on a private, 0-initialized semaphore;
// the waiter list orders those private semaphores by the underlying
// thread's current effective priority, re-established at signal time
// because priorities may have changed while a thread waited.
type Cond struct {
	waiters waiterHeap
}

// NewCond returns an empty condition variable.
func NewCond() *Cond { return &Cond{} }

// condWaiter is the per-waiter entry stored in Cond.waiters: it owns
// the private semaphore the waiter parks on and enough thread identity
// to order by effective priority at signal time.
type condWaiter struct {
	sem *Semaphore
	t   *Thread
}

func (w *condWaiter) effectivePriority() int { return w.t.priority }

// Wait releases l, atomically with respect to this condition
// variable's waiter list, and suspends the caller until signaled. The
// caller must hold l before calling Wait, and holds it again once Wait
// returns -- but must re-test whatever predicate it was waiting on,
// since a wakeup here carries no atomicity guarantee with the signal
// that caused it.
func (c *Cond) Wait(k *Kernel, l *Lock) {
	w := &condWaiter{sem: NewSemaphore(0)}

	k.mu.Lock()
	w.t = k.current
	c.waiters.add(w)
	k.mu.Unlock()

	l.Release(k)
	w.sem.Down(k)
	l.Acquire(k)
}

// Signal wakes the single highest-(current-)priority waiter, if any.
// The caller must hold l.
func (c *Cond) Signal(k *Kernel, l *Lock) {
	k.mu.Lock()
	if l.holder != k.current {
		k.mu.Unlock()
		fatalf("thread %q (tid %d): cond_signal without holding the associated lock", k.current.Name, k.current.ID)
	}
	var w *condWaiter
	if c.waiters.length() > 0 {
		w, _ = c.waiters.popBest().(*condWaiter)
	}
	k.mu.Unlock()

	if w != nil {
		w.sem.Up(k)
	}
}

// Broadcast wakes every waiter currently parked on c, highest
// effective priority first. The caller must hold l.
func (c *Cond) Broadcast(k *Kernel, l *Lock) {
	for {
		k.mu.Lock()
		n := c.waiters.length()
		k.mu.Unlock()
		if n == 0 {
			return
		}
		c.Signal(k, l)
	}
}

// Waiters returns the number of threads currently parked on c.
// Intended for tests and diagnostics.
func (c *Cond) Waiters(k *Kernel) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return c.waiters.length()
}
