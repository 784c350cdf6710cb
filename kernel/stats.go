package kernel

import "sync/atomic"

// kernelStats accumulates counters at the same call sites that already
// touch Kernel.mu or a dedicated atomic, for the "statistics printing"
// external collaborator spec.md S1 calls out: this package makes the
// numbers available; it never formats or prints them, and never feeds
// them back into a scheduling decision.
type kernelStats struct {
	threadsCreated     atomic.Uint64
	threadsReclaimed   atomic.Uint64
	contextSwitches    atomic.Uint64
	unblocks           atomic.Uint64
	donationsPerformed atomic.Uint64
	ticks              atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of a Kernel's bookkeeping
// counters.
type StatsSnapshot struct {
	ThreadsCreated     uint64
	ThreadsReclaimed   uint64
	ContextSwitches    uint64
	Unblocks           uint64
	DonationsPerformed uint64
	Ticks              uint64
}

// Stats returns a snapshot of the kernel's bookkeeping counters.
func (k *Kernel) Stats() StatsSnapshot {
	return StatsSnapshot{
		ThreadsCreated:     k.stats.threadsCreated.Load(),
		ThreadsReclaimed:   k.stats.threadsReclaimed.Load(),
		ContextSwitches:    k.stats.contextSwitches.Load(),
		Unblocks:           k.stats.unblocks.Load(),
		DonationsPerformed: k.stats.donationsPerformed.Load(),
		Ticks:              k.stats.ticks.Load(),
	}
}
