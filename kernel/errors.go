package kernel

import "github.com/pkg/errors"

// ErrThreadAllocFailed is returned by Kernel.CreateThread when the
// thread (stack + control block) could not be admitted -- the Go
// stand-in for the page allocator refusing a request. No side effects
// occur: the TID counter is not advanced and nothing is queued.
var ErrThreadAllocFailed = errors.New("kernel: thread allocation failed")

// ErrInvalidPriority is returned when a requested priority falls
// outside [PriMin, PriMax].
var ErrInvalidPriority = errors.New("kernel: priority out of range")

// fatalf panics with a wrapped, annotated error. Used for precondition
// violations that spec.md treats as kernel bugs, not recoverable
// conditions: re-entrant lock acquisition by the owner, unblocking a
// thread that isn't BLOCKED, releasing a lock the caller doesn't hold,
// and stack-canary corruption.
func fatalf(format string, args ...any) {
	panic(errors.Errorf(format, args...))
}
