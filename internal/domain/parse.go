package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DayLayout is the canonical calendar-date format used in storage and
	// ledger keys.
	DayLayout = "2006-01-02"
	// UserDateLayout is the date format users type in chat.
	UserDateLayout = "02-01-2006"

	// MaxReminderTimes caps each reminder-time list.
	MaxReminderTimes = 10
)

var (
	ErrInvalidClock  = errors.New("invalid time, expected HH:MM")
	ErrInvalidDate   = errors.New("invalid date, expected DD-MM-YYYY")
	ErrDuplicateTime = errors.New("time already in the list")
	ErrTooManyTimes  = errors.New("reminder time limit reached")
)

// ParseClock parses "H:MM" or "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

// FormatMinutes returns HH:MM for minutes since midnight (00:00..23:59).
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// NormalizeClock validates a user-typed time and returns it as "HH:MM".
func NormalizeClock(s string) (string, error) {
	mins, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatMinutes(mins), nil
}

// ParseUserDate parses a user-typed DD-MM-YYYY date.
func ParseUserDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(UserDateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// DateOnly truncates t to its calendar date, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayString formats t as a canonical calendar-date string.
func DayString(t time.Time) string {
	return t.Format(DayLayout)
}

// AddReminderTime appends a normalized time to a reminder list, rejecting
// duplicates and enforcing the list cap.
func AddReminderTime(list []string, value string) ([]string, error) {
	if len(list) >= MaxReminderTimes {
		return list, ErrTooManyTimes
	}
	for _, t := range list {
		if t == value {
			return list, ErrDuplicateTime
		}
	}
	return append(list, value), nil
}

// RemoveReminderTime removes a time from a reminder list by exact value.
// The second return reports whether the value was present.
func RemoveReminderTime(list []string, value string) ([]string, bool) {
	for i, t := range list {
		if t == value {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}
