package alarm

import "time"

// SecondsPerDay is the length of the wrapped clock face.
const SecondsPerDay = 24 * 60 * 60

// SecondsOfDay returns the wall-clock second within the day of t.
func SecondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// MatchesTimeOfDay reports whether hour, minute and second of now and alarm are equal.
func MatchesTimeOfDay(now, alarm time.Time) bool {
	return now.Hour() == alarm.Hour() && now.Minute() == alarm.Minute() && now.Second() == alarm.Second()
}

// FormatTimeOfDay renders t as HH:MM:SS.
func FormatTimeOfDay(t time.Time) string {
	return t.Format(time.TimeOnly)
}
