package core

import (
	"testing"
	"time"
)

func TestDayWindow(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "morning",
			in:   time.Date(2026, time.March, 2, 8, 15, 0, 0, time.Local),
			want: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.Local),
		},
		{
			name: "just before midnight",
			in:   time.Date(2026, time.March, 2, 23, 59, 59, 999999999, time.Local),
			want: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.Local),
		},
		{
			name: "midnight is its own day",
			in:   time.Date(2026, time.March, 3, 0, 0, 0, 0, time.Local),
			want: time.Date(2026, time.March, 3, 0, 0, 0, 0, time.Local),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := DayWindow(tt.in)
			if !start.Equal(tt.want) {
				t.Errorf("DayWindow() start = %v, want %v", start, tt.want)
			}
			if !end.Equal(tt.want.AddDate(0, 0, 1)) {
				t.Errorf("DayWindow() end = %v, want %v", end, tt.want.AddDate(0, 0, 1))
			}
			if !start.Before(end) {
				t.Error("DayWindow() start not before end")
			}
		})
	}
}

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid-year month",
			year:      2026,
			month:     time.March,
			wantStart: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2026, time.April, 1, 0, 0, 0, 0, time.Local),
		},
		{
			name:      "december rolls into next year",
			year:      2026,
			month:     time.December,
			wantStart: time.Date(2026, time.December, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2027, time.January, 1, 0, 0, 0, 0, time.Local),
		},
		{
			name:      "february in a leap year",
			year:      2028,
			month:     time.February,
			wantStart: time.Date(2028, time.February, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2028, time.March, 1, 0, 0, 0, 0, time.Local),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthWindow(tt.year, tt.month)
			if !start.Equal(tt.wantStart) {
				t.Errorf("MonthWindow() start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("MonthWindow() end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.Local)
	evening := time.Date(2026, time.March, 2, 19, 30, 0, 0, time.Local)
	nextDay := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.Local)

	if !SameDay(morning, evening) {
		t.Error("SameDay() = false for times on the same day")
	}
	if SameDay(evening, nextDay) {
		t.Error("SameDay() = true across midnight")
	}
}
