package sim

import "time"

// FrameLimiter paces a loop to a target frame rate.
type FrameLimiter struct {
	fps  int
	next time.Time
}

// NewFrameLimiter creates a limiter; fps <= 0 disables limiting.
func NewFrameLimiter(fps int) *FrameLimiter {
	return &FrameLimiter{fps: fps}
}

// SetLimit changes the target rate.
func (f *FrameLimiter) SetLimit(fps int) {
	if fps != f.fps {
		f.fps = fps
		f.next = time.Time{}
	}
}

// Wait blocks until the next frame is due. It sleeps for most of the
// interval and spins for the last 200µs.
func (f *FrameLimiter) Wait() {
	if f.fps <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(f.fps)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// resync after a hitch instead of bursting to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
