package cacheinfra

import "time"

// Entry is one cached value. Entries are replaced wholesale, never mutated.
type Entry struct {
	Key        string
	Value      any
	InsertedAt time.Time
}

// ValidAt reports whether the entry is still inside ttl at now.
func (e Entry) ValidAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.InsertedAt) < ttl
}

// Clock supplies the current time to the stores.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// insertionTime keeps InsertedAt non-decreasing per key even when the
// clock steps backwards between two puts.
func insertionTime(now time.Time, previous Entry, loaded bool) time.Time {
	if loaded && previous.InsertedAt.After(now) {
		return previous.InsertedAt
	}
	return now
}
