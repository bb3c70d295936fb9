package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ShishMikhail/MoyGrafik-bot/internal/domain"
)

type stubProfiles struct {
	settings []domain.Settings
	err      error
}

func (s *stubProfiles) ListSettings(_ context.Context) ([]domain.Settings, error) {
	return s.settings, s.err
}

type stubAttendance struct {
	recs map[int64]domain.AttendanceRecord
	err  error
}

func (s *stubAttendance) Attendance(_ context.Context, employeeID int64, _ string) (domain.AttendanceRecord, error) {
	if s.err != nil {
		return domain.AttendanceRecord{}, s.err
	}
	return s.recs[employeeID], nil
}

func subscriber(id int64, arrivals, departures []string) domain.Settings {
	return domain.Settings{
		TelegramID:     id,
		EmployeeID:     id,
		Subscribed:     true,
		ArrivalTimes:   arrivals,
		DepartureTimes: departures,
	}
}

func at(day string, hh, mm, ss int) time.Time {
	d, err := time.ParseInLocation(domain.DayLayout, day, time.Local)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, ss, 0, time.Local)
}

// slots turns the tick output into a set for order-free comparison.
func slots(due []Instruction) map[slotKey]Kind {
	out := make(map[slotKey]Kind, len(due))
	for _, in := range due {
		out[slotKey{in.UserID, in.Slot}] = in.Kind
	}
	return out
}

func newTestEngine(profiles Profiles, attendance Attendance) *Engine {
	return New(profiles, attendance, zap.NewNop())
}

func TestTick_ArrivalFiresOncePerDay(t *testing.T) {
	e := newTestEngine(
		&stubProfiles{settings: []domain.Settings{subscriber(1, []string{"09:00"}, nil)}},
		&stubAttendance{},
	)

	due, err := e.Tick(context.Background(), at("2025-05-05", 9, 0, 0))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, int64(1), due[0].UserID)
	assert.Equal(t, KindArrival, due[0].Kind)
	assert.Equal(t, "09:00", due[0].Slot)
	assert.NotEmpty(t, due[0].Message)

	// Repeated ticks inside the same window are no-ops.
	due, err = e.Tick(context.Background(), at("2025-05-05", 9, 0, 30))
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = e.Tick(context.Background(), at("2025-05-05", 9, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestTick_DayRolloverResetsLedger(t *testing.T) {
	e := newTestEngine(
		&stubProfiles{settings: []domain.Settings{subscriber(1, []string{"09:00"}, nil)}},
		&stubAttendance{},
	)

	due, err := e.Tick(context.Background(), at("2025-05-05", 9, 0, 0))
	require.NoError(t, err)
	require.Len(t, due, 1)

	due, err = e.Tick(context.Background(), at("2025-05-06", 9, 0, 0))
	require.NoError(t, err)
	require.Len(t, due, 1, "slot must re-arm on the next day")
	assert.Equal(t, "09:00", due[0].Slot)
}

func TestTick_WindowBoundary(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		hit  bool
	}{
		{"exactly 120s early", at("2025-05-05", 8, 58, 0), true},
		{"121s early", at("2025-05-05", 8, 57, 59), false},
		{"exactly 120s late", at("2025-05-05", 9, 2, 0), true},
		{"121s late", at("2025-05-05", 9, 2, 1), false},
		{"on the slot", at("2025-05-05", 9, 0, 0), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := newTestEngine(
				&stubProfiles{settings: []domain.Settings{subscriber(1, []string{"09:00"}, nil)}},
				&stubAttendance{},
			)
			due, err := e.Tick(context.Background(), c.now)
			require.NoError(t, err)
			if c.hit {
				assert.Len(t, due, 1)
			} else {
				assert.Empty(t, due)
			}
		})
	}
}

func TestTick_VacationSuppressesEverything(t *testing.T) {
	start := at("2025-05-05", 0, 0, 0)
	end := at("2025-05-07", 0, 0, 0)
	s := subscriber(2, []string{"09:00"}, []string{"09:00"})
	s.VacationStart = &start
	s.VacationEnd = &end

	e := newTestEngine(&stubProfiles{settings: []domain.Settings{s}}, &stubAttendance{})

	due, err := e.Tick(context.Background(), at("2025-05-06", 9, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, due)

	// Day after the vacation ends, both kinds fire.
	due, err = e.Tick(context.Background(), at("2025-05-08", 9, 0, 0))
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestTick_OpenEndedVacation(t *testing.T) {
	start := at("2025-05-01", 0, 0, 0)
	s := subscriber(2, []string{"09:00"}, nil)
	s.VacationStart = &start

	e := newTestEngine(&stubProfiles{settings: []domain.Settings{s}}, &stubAttendance{})

	due, err := e.Tick(context.Background(), at("2025-12-31", 9, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestTick_UnsubscribedSkipped(t *testing.T) {
	s := subscriber(3, []string{"09:00"}, []string{"09:00"})
	s.Subscribed = false

	e := newTestEngine(&stubProfiles{settings: []domain.Settings{s}}, &stubAttendance{})

	due, err := e.Tick(context.Background(), at("2025-05-05", 9, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestTick_CheckInSuppressesArrivalOnly(t *testing.T) {
	checkIn := at("2025-05-05", 8, 55, 0)
	e := newTestEngine(
		&stubProfiles{settings: []domain.Settings{subscriber(1, []string{"09:00"}, []string{"09:00"})}},
		&stubAttendance{recs: map[int64]domain.AttendanceRecord{1: {CheckIn: &checkIn}}},
	)

	due, err := e.Tick(context.Background(), at("2025-05-05", 9, 0, 0))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, KindDeparture, due[0].Kind)
}

func TestTick_CheckInReEvaluatedEachTick(t *testing.T) {
	// A check-in landing before the window closes stops further arrival
	// sends, and because the suppressed tick never touched the ledger,
	// removing the check-in re-arms the slot.
	att := &stubAttendance{recs: map[int64]domain.AttendanceRecord{}}
	e := newTestEngine(
		&stubProfiles{settings: []domain.Settings{subscriber(1, []string{"09:00"}, nil)}},
		att,
	)

	checkIn := at("2025-05-05", 8, 50, 0)
	att.recs[1] = domain.AttendanceRecord{CheckIn: &checkIn}
	due, err := e.Tick(context.Background(), at("2025-05-05", 8, 59, 0))
	require.NoError(t, err)
	assert.Empty(t, due)

	att.recs[1] = domain.AttendanceRecord{}
	due, err = e.Tick(context.Background(), at("2025-05-05", 9, 0, 0))
	require.NoError(t, err)
	assert.Len(t, due, 1, "voided check-in re-arms the slot within the window")
}

func TestTick_CheckOutDoesNotSuppressDeparture(t *testing.T) {
	checkIn := at("2025-05-05", 9, 0, 0)
	checkOut := at("2025-05-05", 16, 30, 0)
	e := newTestEngine(
		&stubProfiles{settings: []domain.Settings{subscriber(1, nil, []string{"17:00"})}},
		&stubAttendance{recs: map[int64]domain.AttendanceRecord{1: {CheckIn: &checkIn, CheckOut: &checkOut}}},
	)

	due, err := e.Tick(context.Background(), at("2025-05-05", 17, 0, 0))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, KindDeparture, due[0].Kind)

	// Still only once per day.
	due, err = e.Tick(context.Background(), at("2025-05-05", 17, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestTick_AttendanceFailureFailsOpen(t *testing.T) {
	e := newTestEngine(
		&stubProfiles{settings: []domain.Settings{subscriber(1, []string{"09:00"}, nil)}},
		&stubAttendance{err: errors.New("presence sync down")},
	)

	due, err := e.Tick(context.Background(), at("2025-05-05", 9, 0, 0))
	require.NoError(t, err)
	assert.Len(t, due, 1, "arrival reminder still fires without attendance data")
}

func TestTick_AttendanceFailureIsolatedPerUser(t *testing.T) {
	checkIn := at("2025-05-05", 8, 0, 0)
	att := &stubAttendance{recs: map[int64]domain.AttendanceRecord{2: {CheckIn: &checkIn}}}
	e := newTestEngine(
		&stubProfiles{settings: []domain.Settings{
			subscriber(1, []string{"09:00"}, nil),
			subscriber(2, []string{"09:00"}, nil),
		}},
		att,
	)

	due, err := e.Tick(context.Background(), at("2025-05-05", 9, 0, 0))
	require.NoError(t, err)
	got := slots(due)
	assert.Contains(t, got, slotKey{1, "09:00"})
	assert.NotContains(t, got, slotKey{2, "09:00"})
}

func TestTick_SettingsListingFailureAbortsTick(t *testing.T) {
	e := newTestEngine(&stubProfiles{err: errors.New("db locked")}, &stubAttendance{})

	due, err := e.Tick(context.Background(), at("2025-05-05", 9, 0, 0))
	require.Error(t, err)
	assert.Nil(t, due)

	// The next tick is unaffected once the store recovers.
	e.profiles = &stubProfiles{settings: []domain.Settings{subscriber(1, []string{"09:00"}, nil)}}
	due, err = e.Tick(context.Background(), at("2025-05-05", 9, 0, 30))
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestTick_MalformedSlotSkipped(t *testing.T) {
	e := newTestEngine(
		&stubProfiles{settings: []domain.Settings{subscriber(1, []string{"garbage", "09:00"}, nil)}},
		&stubAttendance{},
	)

	due, err := e.Tick(context.Background(), at("2025-05-05", 9, 0, 0))
	require.NoError(t, err)
	require.Len(t, due, 1, "bad slot must not abort the user's other slots")
	assert.Equal(t, "09:00", due[0].Slot)
}

func TestTick_MultipleUsersAndSlots(t *testing.T) {
	e := newTestEngine(
		&stubProfiles{settings: []domain.Settings{
			subscriber(1, []string{"09:00", "09:01"}, nil),
			subscriber(2, nil, []string{"09:00"}),
		}},
		&stubAttendance{},
	)

	due, err := e.Tick(context.Background(), at("2025-05-05", 9, 0, 30))
	require.NoError(t, err)
	got := slots(due)
	assert.Len(t, got, 3)
	assert.Equal(t, KindArrival, got[slotKey{1, "09:00"}])
	assert.Equal(t, KindArrival, got[slotKey{1, "09:01"}])
	assert.Equal(t, KindDeparture, got[slotKey{2, "09:00"}])
}

func TestTick_DepartureMessageNamesSlot(t *testing.T) {
	e := newTestEngine(
		&stubProfiles{settings: []domain.Settings{subscriber(1, nil, []string{"17:00"})}},
		&stubAttendance{},
	)

	due, err := e.Tick(context.Background(), at("2025-05-05", 17, 0, 0))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Contains(t, due[0].Message, "17:00")
}
