package kitchen

import (
	"fmt"
	"math"
	"time"
)

// LimiterMode is the rate limiter lifecycle state.
type LimiterMode string

const (
	// ModeStandard is the initial mode: every request passes and no
	// bookkeeping is performed. The limiter stays invisible until the
	// provider gives evidence the key is quota-constrained.
	ModeStandard LimiterMode = "standard"
	// ModeConstrained caps throughput with a sliding window. Entered
	// once per session, never reverted.
	ModeConstrained LimiterMode = "constrained"
)

// Default window parameters for constrained mode.
const (
	DefaultWindowMax  = 15
	DefaultWindowSize = 60 * time.Second
)

// RateLimiter is a client-side sliding-window request gate. It is a
// pure function of the recorded window and the injected clock: the gate
// reopens by clock evaluation on the next check, not by a timer.
//
// Not safe for concurrent use on its own; the owning Session serializes
// access.
type RateLimiter struct {
	mode       LimiterMode
	window     []time.Time
	windowMax  int
	windowSize time.Duration
	clock      func() time.Time
}

// NewRateLimiter creates a limiter in standard mode. A nil clock means
// time.Now.
func NewRateLimiter(windowMax int, windowSize time.Duration, clock func() time.Time) *RateLimiter {
	if windowMax <= 0 {
		windowMax = DefaultWindowMax
	}
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if clock == nil {
		clock = time.Now
	}
	return &RateLimiter{
		mode:       ModeStandard,
		windowMax:  windowMax,
		windowSize: windowSize,
		clock:      clock,
	}
}

// Mode returns the current lifecycle mode.
func (l *RateLimiter) Mode() LimiterMode {
	return l.mode
}

// ActivateConstrainedMode switches the limiter to constrained mode for
// the rest of the session. Idempotent.
func (l *RateLimiter) ActivateConstrainedMode() {
	l.mode = ModeConstrained
}

// CheckAndRecord is called exactly once immediately before a request is
// dispatched. It returns true when the request may proceed (and has
// been recorded), false when the gate is closed (and the request was
// not recorded).
func (l *RateLimiter) CheckAndRecord() bool {
	if l.mode == ModeStandard {
		return true
	}

	now := l.clock()
	l.prune(now)

	if len(l.window) >= l.windowMax {
		return false
	}

	l.window = append(l.window, now)
	return true
}

// Gate reports whether the gate is currently open and, when closed, the
// human-readable cooldown message. Evaluated fresh against the clock so
// an elapsed cooldown reads as open without any reset call.
func (l *RateLimiter) Gate() (open bool, cooldownMessage string) {
	if l.mode == ModeStandard {
		return true, ""
	}

	now := l.clock()
	l.prune(now)

	if len(l.window) < l.windowMax {
		return true, ""
	}

	wait := l.windowSize - now.Sub(l.window[0])
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return false, fmt.Sprintf("Rate limit reached. Please wait %d seconds before trying again.", secs)
}

// prune drops timestamps whose age has reached the window size. The
// comparison is strict: a timestamp exactly one window old counts as
// outside it, so the boundary favors admitting over rejecting.
func (l *RateLimiter) prune(now time.Time) {
	i := 0
	for i < len(l.window) && now.Sub(l.window[i]) >= l.windowSize {
		i++
	}
	if i > 0 {
		l.window = append(l.window[:0], l.window[i:]...)
	}
}
