package filetree

import (
	"testing"
	"time"
)

func TestLongPress_Fires(t *testing.T) {
	var pulses []time.Duration
	lp := NewLongPress(func(d time.Duration) { pulses = append(pulses, d) })

	tok := lp.Press(12, 4)
	lp.Move(12, 4)
	x, y, ok := lp.Expire(tok)
	if !ok || x != 12 || y != 4 {
		t.Fatalf("Expire: %d %d %v", x, y, ok)
	}
	if len(pulses) != 1 || pulses[0] != LongPressPulse {
		t.Fatalf("pulses: %v", pulses)
	}
	if _, _, ok := lp.Expire(tok); ok {
		t.Fatalf("a hold fires once")
	}
}

func TestLongPress_Cancels(t *testing.T) {
	lp := NewLongPress(nil)

	tok := lp.Press(1, 1)
	lp.Move(2, 1)
	if _, _, ok := lp.Expire(tok); ok {
		t.Fatalf("movement should cancel")
	}

	tok = lp.Press(1, 1)
	lp.Release()
	if _, _, ok := lp.Expire(tok); ok {
		t.Fatalf("release should cancel")
	}

	old := lp.Press(1, 1)
	tok = lp.Press(3, 3)
	if _, _, ok := lp.Expire(old); ok {
		t.Fatalf("stale token fired")
	}
	if !lp.Pending() {
		t.Fatalf("new press should be pending")
	}
	if x, y, ok := lp.Expire(tok); !ok || x != 3 || y != 3 {
		t.Fatalf("Expire: %d %d %v", x, y, ok)
	}
}

func TestLongPress_After(t *testing.T) {
	lp := NewLongPress(nil)
	lp.Threshold = 10 * time.Millisecond
	fired := make(chan [2]int, 1)
	lp.After(lp.Press(5, 6), func(x, y int) { fired <- [2]int{x, y} })
	select {
	case got := <-fired:
		if got != [2]int{5, 6} {
			t.Fatalf("fired at %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("long press did not fire")
	}
}
