package dmg

import "time"

// cyclesPerFrame is the T-cycle length of one DMG frame (154 scanlines of
// 456 T-cycles each).
const cyclesPerFrame = 70224

// cpuFrequency is the DMG's fixed clock rate in Hz.
const cpuFrequency = 4194304

// frameDuration is the wall-clock time one frame should occupy at native
// speed (roughly 16.74ms, not the rounded 16.67ms of a 60Hz display).
func frameDuration() time.Duration {
	return time.Second * cyclesPerFrame / cpuFrequency
}

// Limiter paces frame production to real time. Running without one (see
// NewNoOpLimiter) is useful for headless/benchmark runs that want every
// frame produced as fast as the host can compute it.
type Limiter interface {
	// WaitForNextFrame blocks until the next frame is due.
	WaitForNextFrame()
	// Reset resynchronizes the limiter to now, used after a pause/step.
	Reset()
}

// NewNoOpLimiter returns a Limiter that never blocks.
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// adaptiveLimiter sleeps for most of the frame budget and busy-waits the
// remainder for accuracy, and resynchronizes to the current time when it
// falls more than 5ms behind.
type adaptiveLimiter struct {
	target       time.Duration
	nextDeadline time.Time
	frameCount   int64
}

// NewAdaptiveLimiter returns a Limiter paced to the DMG's native frame rate.
func NewAdaptiveLimiter() Limiter {
	return &adaptiveLimiter{
		target:       frameDuration(),
		nextDeadline: time.Now(),
	}
}

func (a *adaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	remaining := a.nextDeadline.Sub(now)

	switch {
	case remaining > 2*time.Millisecond:
		time.Sleep(remaining - time.Millisecond)
		for time.Now().Before(a.nextDeadline) {
		}
	case remaining > 0:
		for time.Now().Before(a.nextDeadline) {
		}
	case remaining < -5*time.Millisecond:
		// fell far behind (debugger pause, host stall): resync instead of
		// trying to burn through a backlog of frames.
		a.nextDeadline = now
	}

	a.nextDeadline = a.nextDeadline.Add(a.target)
	a.frameCount++
}

func (a *adaptiveLimiter) Reset() {
	a.nextDeadline = time.Now()
	a.frameCount = 0
}
