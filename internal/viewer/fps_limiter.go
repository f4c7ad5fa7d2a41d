package viewer

import (
	"time"

	"github.com/Eirikalv1/cc-websockets/internal/config"
)

const (
	// idleFPS caps the loop while the window is minimised.
	idleFPS = 15
	// spinWindow is the tail of each wait done by polling the clock, since
	// OS sleeps overshoot by roughly this much.
	spinWindow = 200 * time.Microsecond
)

// FPSLimiter paces the frame loop against a running deadline: a frame that
// finishes early waits for it, one that overruns by less than a frame is
// absorbed by the next.
type FPSLimiter struct {
	deadline time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{now: time.Now, sleep: time.Sleep}
}

// Wait blocks until the next frame is due under config.GetFPSLimit, or
// idleFPS when idle. A limit of 0 disables pacing.
func (f *FPSLimiter) Wait(idle bool) {
	f.wait(frameBudget(config.GetFPSLimit(), idle))
}

func frameBudget(limit int, idle bool) time.Duration {
	if idle {
		limit = idleFPS
	}
	if limit <= 0 {
		return 0
	}
	return time.Second / time.Duration(limit)
}

func (f *FPSLimiter) wait(budget time.Duration) {
	if budget == 0 {
		f.deadline = time.Time{}
		return
	}

	now := f.now()
	if f.deadline.IsZero() || now.Sub(f.deadline) > budget {
		// First frame, or more than a frame behind: restart the schedule.
		f.deadline = now.Add(budget)
	} else {
		f.deadline = f.deadline.Add(budget)
	}

	for left := f.deadline.Sub(f.now()); left > 0; left = f.deadline.Sub(f.now()) {
		if left > spinWindow {
			f.sleep(left - spinWindow)
		}
	}
}
