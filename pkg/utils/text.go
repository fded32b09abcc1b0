// Package utils provides shared helpers for logging, math and text output.
package utils

// Truncate returns s cut to maxLen bytes with "..." appended when it was cut.
// A maxLen of 0 or less returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
