package core

import "time"

// Timestamp is the wall-clock instant a snapshot was generated. It marshals
// as RFC 3339 with nanoseconds.
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Age is how long before now the timestamp was taken. A zero timestamp has
// age 0.
func (t Timestamp) Age(now time.Time) time.Duration {
	if t.Time().IsZero() {
		return 0
	}
	return now.Sub(t.Time())
}

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}
