package store

import (
	"database/sql"
	"time"

	"github.com/ShishMikhail/MoyGrafik-bot/internal/domain"
)

// Presence timestamps are stored as text; the sync job writes local
// wall-clock values without a zone.
const presenceTimeLayout = "2006-01-02 15:04:05"

func toNullDay(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: domain.DayString(*t), Valid: true}
}

func fromNullDay(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.ParseInLocation(domain.DayLayout, ns.String, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func fromNullStamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.ParseInLocation(presenceTimeLayout, ns.String, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
