package store

import (
	"context"
	"errors"
	"time"

	"github.com/ShishMikhail/MoyGrafik-bot/internal/domain"
)

// ErrNotFound is returned when a chat has no settings row.
var ErrNotFound = errors.New("user not found")

// Repo defines storage operations for registration, settings, attendance
// and the notification log.
type Repo interface {
	// RegisterUser creates the settings and employee rows for a chat.
	// Returns false when the chat was already registered.
	RegisterUser(ctx context.Context, telegramID int64, firstName, lastName string) (bool, error)
	GetEmployee(ctx context.Context, telegramID int64) (*domain.Employee, error)

	GetSettings(ctx context.Context, telegramID int64) (*domain.Settings, error)
	ListSettings(ctx context.Context) ([]domain.Settings, error)
	// UpdateSettings applies a partial update; nil patch fields are left
	// unchanged, an explicit SetVacation with nil bounds clears the window.
	UpdateSettings(ctx context.Context, telegramID int64, p domain.SettingsPatch) error

	// Attendance returns the presence record for one day; a day with no
	// report yields a zero record, not an error.
	Attendance(ctx context.Context, employeeID int64, day string) (domain.AttendanceRecord, error)
	AttendanceLastDays(ctx context.Context, employeeID int64, day string, n int) ([]domain.DayAttendance, error)

	LogNotification(ctx context.Context, telegramID int64, message, status string, at time.Time) error

	Close() error
}
