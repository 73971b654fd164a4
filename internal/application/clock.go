package application

import "time"

// Clock interface supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock reports wall-clock time in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
