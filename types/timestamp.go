package types

import (
	"time"
)

// Timestamp is a UTC instant with nanosecond resolution, stored as nanoseconds since
// the Unix epoch. It is written as TypeTimestamp and diffed against the previous element.
type Timestamp int64

// FromTime converts t to a Timestamp. Instants outside roughly 1678-2262 overflow.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return FromTime(time.Now())
}

// Time returns the instant in UTC.
func (ts Timestamp) Time() time.Time {
	return time.Unix(0, int64(ts)).UTC()
}

// Add returns ts+d.
func (ts Timestamp) Add(d time.Duration) Timestamp {
	return ts + Timestamp(d)
}

func (ts Timestamp) String() string {
	return ts.Time().Format(time.RFC3339Nano)
}
