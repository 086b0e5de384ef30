// Package timer provides the monotonic time source used for settle delays
// and bounded busy-polls.
package timer

import (
	"time"
)

// Source is a monotonic clock. Now is measured from an arbitrary fixed point.
type Source interface {
	Now() time.Duration
	Delay(d time.Duration)
}

type system struct {
	epoch time.Time
}

// System returns a Source backed by the runtime's monotonic clock.
func System() Source {
	return &system{time.Now()}
}

func (s *system) Now() time.Duration {
	return time.Since(s.epoch)
}

func (s *system) Delay(d time.Duration) {
	time.Sleep(d)
}

// Timeout is a deadline started with Start and checked with Elapsed.
type Timeout struct {
	src   Source
	start time.Duration
	d     time.Duration
}

func Start(src Source, d time.Duration) Timeout {
	return Timeout{src, src.Now(), d}
}

func (t Timeout) Elapsed() bool {
	return t.src.Now()-t.start >= t.d
}

// Since returns how long the timeout has been running.
func (t Timeout) Since() time.Duration {
	return t.src.Now() - t.start
}

// Fake is a virtual clock. Delay advances it; Now advances it by Step, which
// models the cost of a poll iteration.
type Fake struct {
	now     time.Duration
	Step    time.Duration
	delayed time.Duration
}

func (f *Fake) Now() time.Duration {
	f.now += f.Step
	return f.now
}

func (f *Fake) Delay(d time.Duration) {
	f.now += d
	f.delayed += d
}

// Delayed returns the total of all Delay calls.
func (f *Fake) Delayed() time.Duration {
	return f.delayed
}

// Elapsed returns the virtual time without advancing it.
func (f *Fake) Elapsed() time.Duration {
	return f.now
}
