package utils

import (
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

// ParseClock turns "HH:MM" (or "HH:MM:SS" as postgres returns time columns)
// into minutes after midnight. "24:00" is accepted as the end of the day.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	for _, p := range parts {
		if len(p) != 2 || !isDigit(p[0]) || !isDigit(p[1]) {
			return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
		}
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	second := 0
	if len(parts) == 3 {
		if second, err = strconv.Atoi(parts[2]); err != nil {
			return 0, fmt.Errorf("invalid second in %q: %w", s, err)
		}
	}

	if hour == 24 && minute == 0 && second == 0 {
		return MinutesPerDay, nil
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return hour*60 + minute, nil
}

// ParseHHMM is the strict form used for client input: exactly "HH:MM", with
// "24:00" allowed as the end of the day.
func ParseHHMM(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	return ParseClock(s)
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
