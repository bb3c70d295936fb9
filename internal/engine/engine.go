// Package engine decides, once per scheduling tick, which check-in and
// check-out reminders are due: it matches the current time against each
// subscribed user's configured reminder slots, suppresses users on
// vacation, suppresses arrival reminders once a check-in is on record, and
// de-duplicates so a slot fires at most once per calendar day.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ShishMikhail/MoyGrafik-bot/internal/domain"
)

// tolerance is the band around a reminder slot within which a tick matches.
// With 30s ticks and a ±2m band a slot is seen by several ticks; the ledger
// makes only the first one fire.
const tolerance = 2 * time.Minute

// Kind distinguishes arrival (check-in) from departure (check-out) reminders.
type Kind int

const (
	KindArrival Kind = iota
	KindDeparture
)

func (k Kind) String() string {
	if k == KindArrival {
		return "arrival"
	}
	return "departure"
}

// Instruction tells the dispatcher to send one reminder message.
type Instruction struct {
	UserID  int64
	Kind    Kind
	Slot    string // the configured "HH:MM" value that matched
	Message string
}

// Profiles lists every user's notification settings.
type Profiles interface {
	ListSettings(ctx context.Context) ([]domain.Settings, error)
}

// Attendance returns the presence record for an employee on a day.
type Attendance interface {
	Attendance(ctx context.Context, employeeID int64, day string) (domain.AttendanceRecord, error)
}

const (
	arrivalMessage      = "⏰ Don't forget to check in before your workday starts!"
	departureMessageFmt = "🚪 Don't forget to check out before leaving at %s!"
)

// Engine computes due reminders per tick. It owns the per-day sent ledger;
// a single scheduler loop is expected to call Tick sequentially, so no
// locking is done here.
type Engine struct {
	profiles   Profiles
	attendance Attendance
	log        *zap.Logger
	tolerance  time.Duration
	led        *ledger
}

func New(profiles Profiles, attendance Attendance, log *zap.Logger) *Engine {
	return &Engine{
		profiles:   profiles,
		attendance: attendance,
		log:        log,
		tolerance:  tolerance,
	}
}

// Tick computes the reminders due at now and marks them sent in the ledger.
// The date and time-of-day of now are taken as-is; the caller's clock is
// authoritative. An error is returned only when the settings listing fails,
// in which case nothing was marked beyond a possible day rollover; per-user
// failures are logged and never abort the scan for other users.
func (e *Engine) Tick(ctx context.Context, now time.Time) ([]Instruction, error) {
	day := domain.DayString(now)
	if e.led == nil || e.led.day != day {
		e.led = newLedger(day)
	}

	settings, err := e.profiles.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	nowSec := now.Hour()*3600 + now.Minute()*60 + now.Second()

	var due []Instruction
	for i := range settings {
		s := &settings[i]
		if !s.Subscribed {
			continue
		}
		if s.OnVacation(now) {
			e.log.Debug("user on vacation, reminders suppressed",
				zap.Int64("chatID", s.TelegramID))
			continue
		}

		rec, err := e.attendance.Attendance(ctx, s.EmployeeID, day)
		if err != nil {
			// Fail open: without attendance data we still remind.
			e.log.Warn("attendance fetch failed",
				zap.Error(err), zap.Int64("chatID", s.TelegramID))
			rec = domain.AttendanceRecord{}
		}

		for _, slot := range s.ArrivalTimes {
			if !e.withinWindow(nowSec, slot, s.TelegramID) {
				continue
			}
			if rec.CheckedIn() {
				// Already at work; leave the ledger untouched so a later
				// voided check-in re-arms the slot.
				continue
			}
			if e.led.sent(KindArrival, s.TelegramID, slot) {
				continue
			}
			e.led.markSent(KindArrival, s.TelegramID, slot)
			due = append(due, Instruction{
				UserID:  s.TelegramID,
				Kind:    KindArrival,
				Slot:    slot,
				Message: arrivalMessage,
			})
		}

		for _, slot := range s.DepartureTimes {
			if !e.withinWindow(nowSec, slot, s.TelegramID) {
				continue
			}
			// Departure reminders fire regardless of check-out state.
			if e.led.sent(KindDeparture, s.TelegramID, slot) {
				continue
			}
			e.led.markSent(KindDeparture, s.TelegramID, slot)
			due = append(due, Instruction{
				UserID:  s.TelegramID,
				Kind:    KindDeparture,
				Slot:    slot,
				Message: fmt.Sprintf(departureMessageFmt, slot),
			})
		}
	}
	return due, nil
}

// withinWindow reports whether now (seconds since midnight) is within the
// tolerance band of a stored slot. A slot that fails to parse is logged
// and dropped for this tick without affecting the user's other slots.
func (e *Engine) withinWindow(nowSec int, slot string, userID int64) bool {
	mins, err := domain.ParseClock(slot)
	if err != nil {
		e.log.Warn("unparseable reminder time",
			zap.String("slot", slot), zap.Int64("chatID", userID))
		return false
	}
	delta := nowSec - mins*60
	if delta < 0 {
		delta = -delta
	}
	return time.Duration(delta)*time.Second <= e.tolerance
}
