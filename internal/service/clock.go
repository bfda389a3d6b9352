package service

import "time"

// Clock abstracts time.Now so conflict resolution is deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock with the system time.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
