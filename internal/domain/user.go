package domain

import "time"

// Employee is the person record a chat is linked to.
type Employee struct {
	ID        int64
	FirstName string
	LastName  string
}

// Settings holds per-user notification preferences.
// Reminder times are normalized "HH:MM" strings, at most MaxReminderTimes
// each and unique within their list; the mutation helpers in parse.go
// enforce both. Vacation bounds are calendar dates; a set start with a nil
// end means an open-ended vacation.
type Settings struct {
	TelegramID     int64
	EmployeeID     int64
	Subscribed     bool
	VacationStart  *time.Time
	VacationEnd    *time.Time
	ArrivalTimes   []string
	DepartureTimes []string
}

// OnVacation reports whether the given day falls inside the vacation window.
// Only the calendar date of today is considered.
func (s *Settings) OnVacation(today time.Time) bool {
	if s.VacationStart == nil {
		return false
	}
	day := DateOnly(today)
	if day.Before(DateOnly(*s.VacationStart)) {
		return false
	}
	return s.VacationEnd == nil || !day.After(DateOnly(*s.VacationEnd))
}

// SettingsPatch describes a partial settings update. Nil pointer fields are
// left unchanged. Vacation bounds need an explicit flag because nil is a
// meaningful value there: SetVacation with nil bounds clears the window.
type SettingsPatch struct {
	Subscribed     *bool
	SetVacation    bool
	VacationStart  *time.Time
	VacationEnd    *time.Time
	ArrivalTimes   *[]string
	DepartureTimes *[]string
}
