package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ShishMikhail/MoyGrafik-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db, log: log}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// RegisterUser creates the employee and settings rows for a chat. The
// employee id mirrors the chat id until a real linking step exists.
func (r *SQLiteRepo) RegisterUser(ctx context.Context, telegramID int64, firstName, lastName string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM user_settings WHERE telegram_id = ?`, telegramID,
	).Scan(&exists)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	now := time.Now().UTC().Unix()
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO employees (id, first_name, last_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		telegramID, firstName, lastName, now,
	); err != nil {
		return false, err
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (telegram_id, employee_id, subscribed, arrival_times, departure_times)
		VALUES (?, ?, 0, '[]', '[]')
		ON CONFLICT(telegram_id) DO NOTHING`,
		telegramID, telegramID,
	); err != nil {
		return false, err
	}
	return true, nil
}

// GetEmployee returns the employee record linked to a chat.
func (r *SQLiteRepo) GetEmployee(ctx context.Context, telegramID int64) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT e.id, e.first_name, e.last_name
		FROM user_settings us
		JOIN employees e ON e.id = us.employee_id
		WHERE us.telegram_id = ?`,
		telegramID,
	)

	var e domain.Employee
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

const settingsColumns = `telegram_id, employee_id, subscribed, vacation_start, vacation_end, arrival_times, departure_times`

// GetSettings returns a user's settings or ErrNotFound.
func (r *SQLiteRepo) GetSettings(ctx context.Context, telegramID int64) (*domain.Settings, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM user_settings WHERE telegram_id = ?`,
		telegramID,
	)
	s, err := r.scanSettings(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListSettings returns every settings row.
func (r *SQLiteRepo) ListSettings(ctx context.Context) ([]domain.Settings, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+settingsColumns+` FROM user_settings`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Settings
	for rows.Next() {
		s, err := r.scanSettings(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepo) scanSettings(row rowScanner) (*domain.Settings, error) {
	var (
		s             domain.Settings
		subscribedInt int
		vacStart      sql.NullString
		vacEnd        sql.NullString
		arrivalJSON   string
		departureJSON string
	)
	if err := row.Scan(
		&s.TelegramID, &s.EmployeeID, &subscribedInt,
		&vacStart, &vacEnd, &arrivalJSON, &departureJSON,
	); err != nil {
		return nil, err
	}

	s.Subscribed = subscribedInt != 0
	s.VacationStart = fromNullDay(vacStart)
	s.VacationEnd = fromNullDay(vacEnd)
	s.ArrivalTimes = r.decodeTimes(arrivalJSON, "arrival_times", s.TelegramID)
	s.DepartureTimes = r.decodeTimes(departureJSON, "departure_times", s.TelegramID)
	return &s, nil
}

// decodeTimes unmarshals a persisted reminder-time list. A malformed value
// degrades to an empty list; a single user's broken row must never break a
// settings scan.
func (r *SQLiteRepo) decodeTimes(raw, field string, telegramID int64) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var times []string
	if err := json.Unmarshal([]byte(raw), &times); err != nil {
		r.log.Warn("malformed reminder time list",
			zap.String("field", field),
			zap.Int64("chatID", telegramID),
			zap.Error(err))
		return nil
	}
	return times
}

// UpdateSettings applies a partial update to a user's settings row.
func (r *SQLiteRepo) UpdateSettings(ctx context.Context, telegramID int64, p domain.SettingsPatch) error {
	var (
		sets []string
		args []any
	)

	if p.Subscribed != nil {
		sets = append(sets, "subscribed = ?")
		args = append(args, boolToInt(*p.Subscribed))
	}
	if p.SetVacation {
		sets = append(sets, "vacation_start = ?", "vacation_end = ?")
		args = append(args, toNullDay(p.VacationStart), toNullDay(p.VacationEnd))
	}
	if p.ArrivalTimes != nil {
		encoded, err := json.Marshal(*p.ArrivalTimes)
		if err != nil {
			return err
		}
		sets = append(sets, "arrival_times = ?")
		args = append(args, string(encoded))
	}
	if p.DepartureTimes != nil {
		encoded, err := json.Marshal(*p.DepartureTimes)
		if err != nil {
			return err
		}
		sets = append(sets, "departure_times = ?")
		args = append(args, string(encoded))
	}
	if len(sets) == 0 {
		return errors.New("empty settings patch")
	}

	args = append(args, telegramID)
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_settings SET `+strings.Join(sets, ", ")+` WHERE telegram_id = ?`,
		args...,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Attendance returns the presence record for one employee and day.
// No report for that day yields a zero record.
func (r *SQLiteRepo) Attendance(ctx context.Context, employeeID int64, day string) (domain.AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT start_time, end_time, is_night_shift
		FROM presence_report
		WHERE employee_id = ? AND date = ?`,
		employeeID, day,
	)

	var (
		start, end sql.NullString
		nightInt   int
	)
	if err := row.Scan(&start, &end, &nightInt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AttendanceRecord{}, nil
		}
		return domain.AttendanceRecord{}, err
	}
	return domain.AttendanceRecord{
		CheckIn:    fromNullStamp(start),
		CheckOut:   fromNullStamp(end),
		NightShift: nightInt != 0,
	}, nil
}

// AttendanceLastDays returns the presence records for the n days ending at
// day, newest first. Days without a report are omitted.
func (r *SQLiteRepo) AttendanceLastDays(ctx context.Context, employeeID int64, day string, n int) ([]domain.DayAttendance, error) {
	end, err := time.ParseInLocation(domain.DayLayout, day, time.Local)
	if err != nil {
		return nil, fmt.Errorf("bad day %q: %w", day, err)
	}
	from := domain.DayString(end.AddDate(0, 0, -(n - 1)))

	rows, err := r.db.QueryContext(ctx, `
		SELECT date, start_time, end_time, is_night_shift
		FROM presence_report
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC`,
		employeeID, from, day,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.DayAttendance
	for rows.Next() {
		var (
			date       string
			start, end sql.NullString
			nightInt   int
		)
		if err := rows.Scan(&date, &start, &end, &nightInt); err != nil {
			return nil, err
		}
		res = append(res, domain.DayAttendance{
			Date: date,
			Record: domain.AttendanceRecord{
				CheckIn:    fromNullStamp(start),
				CheckOut:   fromNullStamp(end),
				NightShift: nightInt != 0,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// LogNotification appends one send attempt to the notification log.
func (r *SQLiteRepo) LogNotification(ctx context.Context, telegramID int64, message, status string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (telegram_id, message, sent_at, status)
		VALUES (?, ?, ?, ?)`,
		telegramID, message, at.Format(presenceTimeLayout), status,
	)
	return err
}
