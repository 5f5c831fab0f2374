package period

import (
	"testing"
	"time"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestSameDay(t *testing.T) {
	if !SameDay(at(2026, 3, 4, 1), at(2026, 3, 4, 23)) {
		t.Error("expected same day")
	}
	if SameDay(at(2026, 3, 4, 23), at(2026, 3, 5, 0)) {
		t.Error("expected different days")
	}
	if SameDay(time.Time{}, at(2026, 3, 4, 1)) {
		t.Error("zero time should never match")
	}
}

func TestSameWeek_MondayBased(t *testing.T) {
	// 2026-03-02 is a Monday.
	if !SameWeek(at(2026, 3, 2, 0), at(2026, 3, 8, 23)) {
		t.Error("Monday and Sunday of the same week should match")
	}
	if SameWeek(at(2026, 3, 8, 23), at(2026, 3, 9, 0)) {
		t.Error("Sunday and the next Monday should not match")
	}
}

func TestSameMonth(t *testing.T) {
	if !SameMonth(at(2026, 3, 1, 0), at(2026, 3, 31, 23)) {
		t.Error("expected same month")
	}
	if SameMonth(at(2026, 3, 31, 0), at(2025, 3, 31, 0)) {
		t.Error("different years should not match")
	}
}

func TestAdvance_CreationAligned(t *testing.T) {
	// Created on a Wednesday; periods run Wed-Tue.
	created := at(2026, 3, 4, 9)
	now := at(2026, 3, 19, 12) // Thursday two weeks later

	got := Advance(created, now, Week)
	want := at(2026, 3, 18, 9)
	if !got.Equal(want) {
		t.Errorf("Advance: got %v, want %v", got, want)
	}
	if got.Weekday() != time.Wednesday {
		t.Errorf("period should start on Wednesday, got %v", got.Weekday())
	}
}

func TestAdvance_WithinFirstPeriod(t *testing.T) {
	start := at(2026, 3, 4, 9)
	got := Advance(start, at(2026, 3, 6, 0), Week)
	if !got.Equal(start) {
		t.Errorf("expected unchanged start, got %v", got)
	}
}

func TestAdvance_FutureStart(t *testing.T) {
	start := at(2026, 3, 4, 9)
	got := Advance(start, at(2026, 3, 1, 0), Day)
	if !got.Equal(start) {
		t.Errorf("future start should be returned unchanged, got %v", got)
	}
}

func TestProgress(t *testing.T) {
	start := at(2026, 3, 1, 0)
	tests := []struct {
		name string
		t    time.Time
		want float64
	}{
		{"before", at(2026, 2, 28, 0), 0},
		{"half day", at(2026, 3, 1, 12), 0.5},
		{"after", at(2026, 3, 3, 0), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.t, start, Day); got != tt.want {
				t.Errorf("Progress: got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("fortnight"); err == nil {
		t.Error("expected error for unknown unit")
	}
	u, err := Parse("month")
	if err != nil || u != Month {
		t.Errorf("Parse(month): got %q, %v", u, err)
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(at(2026, 3, 1, 0), at(2026, 3, 3, 12)); got != 2.5 {
		t.Errorf("got %f, want 2.5", got)
	}
}
