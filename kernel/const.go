// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package kernel implements the scheduling, timer/sleep, and
// synchronization core of a small preemptive thread subsystem: a
// priority-ordered ready queue, a deadline-ordered sleep queue serviced
// from a simulated timer interrupt, counting semaphores with
// priority-ordered waiters, and mutex locks with multi-level priority
// donation.
//
// There is no real hardware underneath this package: a Go goroutine
// stands in for a kernel thread's stack and register frame, and
// Kernel.mu stands in for disabling interrupts on a uniprocessor. Only
// one goroutine is ever runnable at a time; the rest are parked on a
// private per-thread channel, handed the CPU by an explicit token pass
// in scheduleLocked. That substitution is what lets this package offer
// the exact contract described below without a real context-switch
// primitive underneath it.
package kernel

// PriMin, PriDefault and PriMax bound the priority domain. Higher is
// more urgent.
const (
	PriMin     = 0
	PriDefault = 31
	PriMax     = 63
)

// TimeSlice is the number of timer ticks a thread may run before the
// timer interrupt's slice accounting requests a yield on the next
// checkpoint.
const TimeSlice = 4

// MaxDonationDepth bounds how many hops a priority donation will walk
// up a wait_on_lock -> holder chain. A correct program never forms a
// cycle here (that would be a deadlock this scheduler does not
// resolve); the cap only guards against a buggy caller.
const MaxDonationDepth = 8

// DefaultTimerFreq is the simulated timer interrupt frequency, in Hz,
// used when a Kernel is not constructed with WithTimerFreq. Pintos
// requires 19 <= TIMER_FREQ <= 1000; 100 is the conventional value.
const DefaultTimerFreq = 100

// InvalidTID is returned by thread creation in place of a valid
// identifier when no side effects occurred (allocation failure).
const InvalidTID uint64 = 0

const canaryMagic uint64 = 0xcd6302d3cf81d9d3
