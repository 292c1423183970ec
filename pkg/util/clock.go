package util

import "time"

// Clock abstracts wall time so session timing can be faked in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
