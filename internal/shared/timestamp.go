package shared

import "time"

// TimestampLayout is the wall-clock format used by the persisted stores.
const TimestampLayout = "2006-01-02 15:04:05"

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

// SystemClock reads local wall-clock time at second resolution.
func SystemClock() time.Time {
	return time.Now().Truncate(time.Second)
}

// FormatTimestamp renders t in local time using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp reads a TimestampLayout value as local time.
func ParseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, value, time.Local)
}
