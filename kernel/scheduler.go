package kernel

import (
	"runtime"

	"go.uber.org/zap"
)

// Yield surrenders the CPU voluntarily. If the caller is still the
// highest-priority ready thread once it has re-inserted itself, the
// round trip through scheduleLocked hands the token straight back --
// observably a no-op, exactly as spec.md allows. Must not be called
// from interrupt context.
func (k *Kernel) Yield() {
	k.mu.Lock()
	cur := k.current
	cur.state = StateReady
	k.readyQ.insert(cur)
	k.scheduleLocked()
	k.mu.Unlock()

	<-cur.resumeCh
}

// Block transitions the calling thread from RUNNING to BLOCKED and
// runs another thread. The caller must already hold the kernel's
// interrupt-disabled discipline (Kernel.mu locked) and is responsible
// for having placed itself on whatever wait queue it intends to be
// woken from; Block neither knows nor cares which queue that is.
// Block returns with mu held again, exactly as it found it.
func (k *Kernel) Block() {
	cur := k.current
	cur.state = StateBlocked
	k.scheduleLocked()
	k.mu.Unlock()

	<-cur.resumeCh

	k.mu.Lock()
}

// unblockLocked moves a BLOCKED thread to READY and inserts it into
// the ready queue in priority order. Callers must already hold mu.
func (k *Kernel) unblockLocked(t *Thread) {
	if t.state != StateBlocked {
		fatalf("thread %q (tid %d): unblock of thread not in BLOCKED state (state=%s)", t.Name, t.ID, t.state)
	}
	t.state = StateReady
	t.wakeUpTime = 0
	k.readyQ.insert(t)
	k.stats.unblocks.Add(1)
}

// Unblock moves a BLOCKED thread to READY. It does not preempt the
// caller. It takes mu itself, so it must not be called with mu already
// held; code that already holds mu (the timer ISR's wake walk,
// Semaphore.Up) calls unblockLocked directly.
func (k *Kernel) Unblock(t *Thread) {
	k.mu.Lock()
	k.unblockLocked(t)
	k.mu.Unlock()
}

// Exit transitions the caller to DYING, enqueues it for reclamation on
// the next scheduling event, and never returns: runtime.Goexit ends
// the goroutine once the handoff to the next thread has been made.
func (k *Kernel) Exit() {
	k.mu.Lock()
	cur := k.current
	cur.state = StateDying
	k.destruction = append(k.destruction, cur)
	k.log.Debug("thread exiting", zap.String("name", cur.Name), zap.Uint64("tid", cur.ID))
	k.scheduleLocked()
	k.mu.Unlock()

	runtime.Goexit()
}

// SetPriority sets the caller's base priority. If the caller currently
// holds no donations, the effective priority is set to match;
// otherwise the effective priority is left at max(base, donors), per
// spec.md's resolution of the "does set_priority clobber a donation"
// open question. Either way, the ready queue head is re-checked
// afterward and the caller yields if a higher-priority thread exists.
func (k *Kernel) SetPriority(p int) {
	k.mu.Lock()
	cur := k.current
	cur.basePriority = p
	if len(cur.donations) == 0 {
		cur.priority = p
	}
	k.mu.Unlock()

	k.preemptIfNeeded()
}

// pickNextLocked implements spec.md's pick-next: the highest-priority
// ready thread, or the idle thread if the ready queue is empty. It
// also reclaims the outgoing thread if it is DYING. That reclamation
// runs inside the exiting thread's own final scheduleLocked call (from
// Exit), on the exiting thread's goroutine, before the CPU is handed to
// the next thread -- not later, on the next thread's time.
func (k *Kernel) pickNextLocked() *Thread {
	if prev := k.current; prev != nil && prev.state == StateDying && !prev.reclaimed {
		k.reclaimThreadLocked(prev)
	}
	if k.readyQ.len() == 0 {
		return k.idle
	}
	return k.readyQ.popFront()
}

func (k *Kernel) reclaimThreadLocked(t *Thread) {
	t.reclaimed = true
	for i, d := range k.destruction {
		if d == t {
			k.destruction = append(k.destruction[:i], k.destruction[i+1:]...)
			break
		}
	}
	if t != k.initial {
		k.tidMu.Lock()
		k.threadCount--
		k.tidMu.Unlock()
	}
	k.stats.threadsReclaimed.Add(1)
	k.log.Debug("thread reclaimed", zap.String("name", t.Name), zap.Uint64("tid", t.ID))
}

// scheduleLocked performs the context switch: pick the next thread,
// check its stack canary (spec.md's "checked lazily at the next
// scheduling event"), mark it RUNNING, and hand it the CPU by
// signaling its resume channel. Callers must hold mu and are
// responsible for unlocking it and parking on their own resumeCh
// afterward -- scheduleLocked itself never blocks.
func (k *Kernel) scheduleLocked() {
	next := k.pickNextLocked()
	next.checkCanary()
	next.state = StateRunning
	next.sliceTicks = 0
	k.current = next
	k.stats.contextSwitches.Add(1)
	next.resumeCh <- struct{}{}
}

// preemptIfNeeded is spec.md's "change_list" idiom: compare the
// caller's effective priority against the ready queue head, and yield
// if the head is strictly higher. Thread creation, priority change,
// lock release and semaphore up from thread context route through
// this; Unblock on its own does not.
func (k *Kernel) preemptIfNeeded() {
	k.mu.Lock()
	cur := k.current
	need := false
	if head := k.readyQ.front(); head != nil && head.priority > cur.priority {
		need = true
	}
	k.mu.Unlock()

	if need {
		k.Yield()
	}
}

// requestYieldOnReturn defers the preemption decision to the next
// Checkpoint call, the way a real timer ISR defers it to
// intr_yield_on_return at interrupt-return time. Used when a semaphore
// Up fires from interrupt context, where Yield is forbidden. The timer
// interrupt's slice accounting sets the same flag directly, since it
// already holds mu.
func (k *Kernel) requestYieldOnReturn() {
	k.mu.Lock()
	k.yieldOnReturn = true
	k.mu.Unlock()
}

// Checkpoint is the cooperative preemption point: long-running or
// loop-heavy thread bodies call it periodically to honor a pending
// tick-driven yield request. This is this package's rendering of
// "intr_yield_on_return" -- Go has no safepoint a kernel can inject
// into arbitrary user code, so the thread body opts in explicitly
// instead of a hardware interrupt doing it invisibly.
func (k *Kernel) Checkpoint() {
	k.mu.Lock()
	need := k.yieldOnReturn
	k.yieldOnReturn = false
	k.mu.Unlock()

	if need {
		k.Yield()
	}
}
