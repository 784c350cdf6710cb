package kernel

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Kernel is the process-wide scheduling context: the ready list, the
// sleep list, the destruction list, the tick counter, the idle and
// initial thread handles, and the lock protecting TID allocation.
// spec.md's Design Notes call for treating this as "a single Kernel
// context struct passed explicitly... not scattered globals, to make
// testing possible" -- so, unlike the source this was distilled from,
// nothing here is a package-level var; every operation is a method on
// *Kernel, and tests construct as many independent kernels as they like.
type Kernel struct {
	mu sync.Mutex

	readyQ      *orderedThreadList
	sleepQ      *orderedThreadList
	destruction []*Thread

	tick          atomic.Uint64
	yieldOnReturn bool
	intrContext   bool

	idle    *Thread
	initial *Thread
	current *Thread

	tidMu   sync.Mutex
	nextTID uint64

	maxThreads  int
	threadCount int

	loopsPerTick atomic.Uint64
	timerFreq    int64

	stats kernelStats
	log   *zap.Logger
}

// Option configures a Kernel at construction time.
type Option func(*Kernel)

// WithLogger overrides the kernel's zap logger, which otherwise
// defaults to zap.NewNop() so library consumers aren't forced into a
// logging backend.
func WithLogger(l *zap.Logger) Option {
	return func(k *Kernel) { k.log = l }
}

// WithMaxThreads caps the number of live thread control blocks the
// kernel will admit, the stand-in for the page allocator running out
// of pages. Zero (the default) means unlimited.
func WithMaxThreads(n int) Option {
	return func(k *Kernel) { k.maxThreads = n }
}

// WithTimerFreq overrides the simulated timer interrupt frequency, in
// Hz. Must satisfy 19 <= freq <= 1000 per spec.md S6; values outside
// that range are clamped to DefaultTimerFreq.
func WithTimerFreq(freq int64) Option {
	return func(k *Kernel) {
		if freq < 19 || freq > 1000 {
			freq = DefaultTimerFreq
		}
		k.timerFreq = freq
	}
}

// NewKernel boots a kernel: it creates the idle thread and admits the
// calling goroutine itself as the initial thread, the same trick
// thread_init plays on the boot path it's already running on. The
// returned Kernel has exactly one RUNNING thread (the caller) and is
// ready for CreateThread, Sleep, locks, semaphores and condition
// variables to be used from the calling goroutine's perspective as
// "the current thread".
func NewKernel(opts ...Option) *Kernel {
	k := &Kernel{
		readyQ:    newOrderedThreadList(readyLess),
		sleepQ:    newOrderedThreadList(sleepLess),
		log:       zap.NewNop(),
		timerFreq: DefaultTimerFreq,
	}
	for _, opt := range opts {
		opt(k)
	}

	idleID := k.mustAllocTID()
	k.idle = newThread(idleID, "idle", PriMin)
	go k.runIdle(k.idle)

	initID := k.mustAllocTID()
	k.initial = newThread(initID, "main", PriDefault)
	k.initial.state = StateRunning
	k.current = k.initial

	k.log.Debug("kernel booted", zap.Uint64("idle_tid", idleID), zap.Uint64("initial_tid", initID))
	return k
}

func readyLess(a, b *Thread) bool { return a.priority > b.priority }
func sleepLess(a, b *Thread) bool { return a.wakeUpTime < b.wakeUpTime }

func (k *Kernel) mustAllocTID() uint64 {
	k.tidMu.Lock()
	defer k.tidMu.Unlock()
	k.nextTID++
	return k.nextTID
}

// allocTID is the fallible counterpart used by CreateThread, honoring
// WithMaxThreads.
func (k *Kernel) allocTID() (uint64, error) {
	k.tidMu.Lock()
	defer k.tidMu.Unlock()
	if k.maxThreads > 0 && k.threadCount >= k.maxThreads {
		return InvalidTID, ErrThreadAllocFailed
	}
	k.nextTID++
	k.threadCount++
	return k.nextTID, nil
}

// Current returns the thread presently RUNNING on this kernel. It is
// always defined once NewKernel has returned.
func (k *Kernel) Current() *Thread {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current
}

// Idle returns the kernel's idle thread handle.
func (k *Kernel) Idle() *Thread {
	return k.idle
}

// CreateThread admits a new thread: it allocates a TID, initializes
// the thread BLOCKED, spawns its goroutine body, then transitions it
// to READY via the same unblock path any other wakeup uses, and runs
// the preemption check -- so if fn's priority is higher than the
// caller's, fn has already run at least once by the time CreateThread
// returns (spec.md S8 scenario S1).
func (k *Kernel) CreateThread(name string, priority int, fn func(k *Kernel)) (*Thread, error) {
	if priority < PriMin || priority > PriMax {
		return nil, ErrInvalidPriority
	}
	id, err := k.allocTID()
	if err != nil {
		return nil, err
	}

	t := newThread(id, name, priority)
	t.fn = fn
	t.k = k

	go k.runThread(t)

	k.Unblock(t)
	k.stats.threadsCreated.Add(1)
	k.log.Debug("thread created", zap.String("name", name), zap.Uint64("tid", id), zap.Int("priority", priority))
	k.preemptIfNeeded()

	return t, nil
}

func (k *Kernel) runThread(t *Thread) {
	<-t.resumeCh
	t.fn(k)
	k.Exit()
}

func (k *Kernel) runIdle(t *Thread) {
	<-t.resumeCh
	for {
		k.mu.Lock()
		k.Block()
		k.mu.Unlock()
	}
}
