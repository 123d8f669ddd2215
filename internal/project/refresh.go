package project

import (
	"context"
	"math"
	"sync"
	"time"
)

// Pull-to-refresh geometry, in rows of drag.
const (
	PullRatio     = 0.5
	PullMaxOffset = 80.0
	PullThreshold = 60.0

	MinRefreshing = 300 * time.Millisecond
	RefreshPulse  = 30 * time.Millisecond
)

// Refresher tracks one pull-to-refresh gesture over the project list. A drag
// only counts when it starts while the list is scrolled to the top. The
// visual offset is half the drag, capped at PullMaxOffset; releasing with an
// offset at or past PullThreshold runs exactly one reload and keeps the
// refreshing state for at least MinRefreshing.
type Refresher struct {
	reload  func(context.Context) error
	vibrate func(time.Duration)

	now   func() time.Time
	sleep func(context.Context, time.Duration)

	mu         sync.Mutex
	tracking   bool
	startY     float64
	drag       float64
	refreshing bool
}

func NewRefresher(reload func(context.Context) error, vibrate func(time.Duration)) *Refresher {
	return &Refresher{
		reload:  reload,
		vibrate: vibrate,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Offset maps a raw drag distance onto the indicator offset.
func Offset(drag float64) float64 {
	if drag <= 0 {
		return 0
	}
	return math.Min(drag*PullRatio, PullMaxOffset)
}

// Start begins a gesture at y. It is ignored unless atTop and idle.
func (r *Refresher) Start(y float64, atTop bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refreshing || !atTop {
		return
	}
	r.tracking = true
	r.startY = y
	r.drag = 0
}

// Move updates the drag and returns the indicator offset and whether a
// release now would refresh.
func (r *Refresher) Move(y float64) (offset float64, armed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refreshing || !r.tracking {
		return 0, false
	}
	r.drag = y - r.startY
	off := Offset(r.drag)
	return off, off >= PullThreshold
}

// Release ends the gesture. When armed it reloads and blocks until the
// refreshing state may be cleared; triggered reports whether that happened.
func (r *Refresher) Release(ctx context.Context) (triggered bool, err error) {
	r.mu.Lock()
	if r.refreshing {
		r.mu.Unlock()
		return false, nil
	}
	off := Offset(r.drag)
	r.tracking, r.startY, r.drag = false, 0, 0
	if off < PullThreshold {
		r.mu.Unlock()
		return false, nil
	}
	r.refreshing = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.refreshing = false
		r.mu.Unlock()
	}()

	if r.vibrate != nil {
		r.vibrate(RefreshPulse)
	}
	start := r.now()
	if r.reload != nil {
		err = r.reload(ctx)
	}
	r.sleep(ctx, MinRefreshing-r.now().Sub(start))
	return true, err
}

// Cancel drops a gesture in progress without refreshing.
func (r *Refresher) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracking, r.startY, r.drag = false, 0, 0
}

func (r *Refresher) Refreshing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshing
}

func (r *Refresher) Tracking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracking
}
