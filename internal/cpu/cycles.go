package cpu

import "time"

// epoch anchors the monotonic counter so readings stay small and positive.
var epoch = time.Now()

// ReadCycleCounter reads a monotonic counter used to time calls into a
// function-under-test. The counter ticks in nanoseconds on every platform;
// CounterHz reports the tick rate so reports can convert to cycles.
func ReadCycleCounter() int64 {
	return int64(time.Since(epoch))
}

// CyclesSince returns the number of counter ticks elapsed since start.
func CyclesSince(start int64) int64 {
	return ReadCycleCounter() - start
}

// CounterHz is the tick rate of ReadCycleCounter.
const CounterHz = 1_000_000_000

// Meter accumulates per-call timings for one function-under-test.
// The zero value is ready to use.
type Meter struct {
	calls int64
	ticks int64
	start int64
}

// Begin marks the start of a timed call.
func (m *Meter) Begin() {
	m.start = ReadCycleCounter()
}

// End closes the call opened by Begin.
func (m *Meter) End() {
	m.ticks += CyclesSince(m.start)
	m.calls++
}

// Calls reports the number of timed calls.
func (m *Meter) Calls() int64 {
	return m.calls
}

// PerCall returns the mean duration of a timed call, or 0 before the first call.
func (m *Meter) PerCall() time.Duration {
	if m.calls == 0 {
		return 0
	}

	return time.Duration(m.ticks / m.calls * (int64(time.Second) / CounterHz))
}

// Merge folds the timings of other into m.
func (m *Meter) Merge(other Meter) {
	m.calls += other.calls
	m.ticks += other.ticks
}
