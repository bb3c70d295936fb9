package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 9 * 60, false},
		{"9:00", 9 * 60, false},
		{"23:59", 23*60 + 59, false},
		{"0:05", 5, false},
		{" 17:30 ", 17*60 + 30, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12:5", 0, true},
		{"12", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseClock(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	got, err := NormalizeClock("9:05")
	if err != nil {
		t.Fatalf("NormalizeClock: %v", err)
	}
	if got != "09:05" {
		t.Fatalf("want 09:05, got %s", got)
	}
}

func TestParseUserDate(t *testing.T) {
	d, err := ParseUserDate("01-02-2025")
	if err != nil {
		t.Fatalf("ParseUserDate: %v", err)
	}
	if DayString(d) != "2025-02-01" {
		t.Fatalf("want 2025-02-01, got %s", DayString(d))
	}
	if _, err := ParseUserDate("2025-02-01"); err == nil {
		t.Fatal("expected error for ISO-ordered input")
	}
}

func TestAddReminderTime(t *testing.T) {
	list, err := AddReminderTime(nil, "09:00")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := AddReminderTime(list, "09:00"); !errors.Is(err, ErrDuplicateTime) {
		t.Fatalf("want ErrDuplicateTime, got %v", err)
	}

	full := make([]string, 0, MaxReminderTimes)
	for h := 0; h < MaxReminderTimes; h++ {
		var addErr error
		full, addErr = AddReminderTime(full, FormatMinutes(h*60))
		if addErr != nil {
			t.Fatalf("add %d: %v", h, addErr)
		}
	}
	if _, err := AddReminderTime(full, "23:00"); !errors.Is(err, ErrTooManyTimes) {
		t.Fatalf("want ErrTooManyTimes, got %v", err)
	}
}

func TestRemoveReminderTime(t *testing.T) {
	list, ok := RemoveReminderTime([]string{"09:00", "12:00"}, "09:00")
	if !ok {
		t.Fatal("expected removal")
	}
	if len(list) != 1 || list[0] != "12:00" {
		t.Fatalf("unexpected list: %v", list)
	}
	if _, ok := RemoveReminderTime(list, "09:00"); ok {
		t.Fatal("removal of absent value should report false")
	}
}

func TestOnVacation(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.ParseInLocation(DayLayout, s, time.Local)
		if err != nil {
			t.Fatalf("parse day: %v", err)
		}
		return d
	}
	start := day("2025-06-01")
	end := day("2025-06-10")

	s := Settings{VacationStart: &start, VacationEnd: &end}
	if s.OnVacation(day("2025-05-31")) {
		t.Fatal("day before start should not be vacation")
	}
	if !s.OnVacation(day("2025-06-01")) {
		t.Fatal("start day is vacation")
	}
	if !s.OnVacation(day("2025-06-10")) {
		t.Fatal("end day is vacation")
	}
	if s.OnVacation(day("2025-06-11")) {
		t.Fatal("day after end is not vacation")
	}

	openEnded := Settings{VacationStart: &start}
	if !openEnded.OnVacation(day("2026-01-01")) {
		t.Fatal("open-ended vacation covers any later day")
	}

	none := Settings{}
	if none.OnVacation(day("2025-06-05")) {
		t.Fatal("no vacation window set")
	}
}
