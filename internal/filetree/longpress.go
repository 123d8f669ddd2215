package filetree

import (
	"sync"
	"time"
)

const (
	LongPressThreshold = 500 * time.Millisecond
	LongPressPulse     = 50 * time.Millisecond
)

// LongPress detects a press held in place past Threshold. The caller owns
// the clock: Press returns a token, and once Threshold has elapsed the caller
// passes it to Expire. Any movement to another cell or a release in between
// invalidates the token.
type LongPress struct {
	Threshold time.Duration
	Pulse     time.Duration
	Vibrate   func(time.Duration)

	mu    sync.Mutex
	token uint64
	armed bool
	x, y  int
}

// NewLongPress returns a detector with the default threshold and pulse.
func NewLongPress(vibrate func(time.Duration)) *LongPress {
	return &LongPress{Threshold: LongPressThreshold, Pulse: LongPressPulse, Vibrate: vibrate}
}

// Press starts a new hold at (x, y), replacing any earlier one.
func (l *LongPress) Press(x, y int) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.token++
	l.armed = true
	l.x, l.y = x, y
	return l.token
}

// Move cancels the pending hold when the pointer leaves the pressed cell.
func (l *LongPress) Move(x, y int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.armed && (x != l.x || y != l.y) {
		l.armed = false
	}
}

func (l *LongPress) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.armed = false
}

func (l *LongPress) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.armed
}

// Expire fires the hold identified by token if it is still pending, pulsing
// the haptic sink first. It returns the press coordinates.
func (l *LongPress) Expire(token uint64) (x, y int, ok bool) {
	l.mu.Lock()
	if !l.armed || token != l.token {
		l.mu.Unlock()
		return 0, 0, false
	}
	l.armed = false
	x, y = l.x, l.y
	vibrate, pulse := l.Vibrate, l.Pulse
	l.mu.Unlock()

	if vibrate != nil && pulse > 0 {
		vibrate(pulse)
	}
	return x, y, true
}

// After waits Threshold and then calls Expire, for callers without their own
// scheduler. fire runs only if the hold survived.
func (l *LongPress) After(token uint64, fire func(x, y int)) *time.Timer {
	return time.AfterFunc(l.Threshold, func() {
		if x, y, ok := l.Expire(token); ok {
			fire(x, y)
		}
	})
}
