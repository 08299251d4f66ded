package report

import "fmt"

// FormatHMS renders seconds as zero-padded HH:MM:SS with unbounded hours,
// the format used in reports and the CSV export.
func FormatHMS(totalSeconds int64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatHoursMinutes renders seconds as "12h 05m", the compact format the
// dashboard uses. Remaining seconds are truncated, not rounded.
func FormatHoursMinutes(totalSeconds int64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	return fmt.Sprintf("%dh %02dm", h, m)
}
