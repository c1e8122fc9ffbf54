package live

import "time"

// Clock abstracts time for the playback scheduler so cursor math and
// timer behavior are testable without waiting on real time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc runs f after d elapses and returns a cancelable timer.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancelable pending callback.
type Timer interface {
	// Stop cancels the timer. Returns false if it already fired.
	Stop() bool
}

// systemClock is the wall-clock implementation.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
