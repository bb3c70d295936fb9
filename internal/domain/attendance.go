package domain

import "time"

// AttendanceRecord is the presence state for one employee on one day,
// as reported by the external presence sync. A zero record means no
// check-in or check-out is on file.
type AttendanceRecord struct {
	CheckIn    *time.Time
	CheckOut   *time.Time
	NightShift bool
}

// CheckedIn reports whether a check-in time is on record.
func (r AttendanceRecord) CheckedIn() bool { return r.CheckIn != nil }

// CheckedOut reports whether a check-out time is on record.
func (r AttendanceRecord) CheckedOut() bool { return r.CheckOut != nil }

// DayAttendance pairs a calendar day with its attendance record,
// used for the trailing-history view.
type DayAttendance struct {
	Date   string // DayLayout
	Record AttendanceRecord
}
