package vehicle

import "time"

// SetClock overrides the handler clock until the returned func is called.
func SetClock(now func() time.Time) (restore func()) {
	old := timeNow
	timeNow = now
	return func() { timeNow = old }
}
