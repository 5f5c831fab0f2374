package dayfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gapfill/gapfill/internal/scheduler"
)

const sample = `
date = "2026-03-10"
accepted_elsewhere = ["m-essay"]

[[gaps]]
id = "g1"
start = "07:30"
end = "08:30"

[[gaps]]
id = "g2"
start = "12:00"
end = "12:45"
location = "workplace"

[[events]]
start = "09:00"
end = "17:00"
source = "timetable"
title = "Office"
`

func TestParse(t *testing.T) {
	d, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Date != "2026-03-10" {
		t.Errorf("date: got %q", d.Date)
	}
	if len(d.Gaps) != 2 {
		t.Fatalf("gaps: got %d, want 2", len(d.Gaps))
	}
	if d.Gaps[0].Duration != 60 || d.Gaps[1].Duration != 45 {
		t.Errorf("durations: got %d and %d, want 60 and 45", d.Gaps[0].Duration, d.Gaps[1].Duration)
	}
	if len(d.Events) != 1 || d.Events[0].Title != "Office" {
		t.Errorf("events: got %+v", d.Events)
	}
	if len(d.AcceptedElsewhere) != 1 || d.AcceptedElsewhere[0] != "m-essay" {
		t.Errorf("accepted elsewhere: got %v", d.AcceptedElsewhere)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantGap bool
	}{
		{"bad toml", "[[gaps]\n", false},
		{"bad date", "date = \"10/03/2026\"\n", false},
		{"unknown key", "colour = \"blue\"\n", false},
		{"reversed gap", "[[gaps]]\nid = \"g\"\nstart = \"10:00\"\nend = \"09:00\"\n", true},
		{"duplicate gap", "[[gaps]]\nid = \"g\"\nstart = \"09:00\"\nend = \"10:00\"\n[[gaps]]\nid = \"g\"\nstart = \"11:00\"\nend = \"12:00\"\n", true},
		{"bad event source", "[[events]]\nstart = \"09:00\"\nend = \"10:00\"\nsource = \"dream\"\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantGap && !errors.Is(err, scheduler.ErrInvalidGap) {
				t.Errorf("got %v, want ErrInvalidGap", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "days", "today.toml")
	day := Sample(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err := Save(path, day); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Date != "2026-03-10" || len(got.Gaps) != 3 {
		t.Errorf("got %+v", got)
	}
	if got.Gaps[2].Duration != 120 {
		t.Errorf("evening duration: got %d, want 120", got.Gaps[2].Duration)
	}
}

func TestSave_RejectsBadGap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "today.toml")
	day := Day{Gaps: []scheduler.Gap{{ID: "g", Start: "10:00", End: "09:00"}}}
	if err := Save(path, day); !errors.Is(err, scheduler.ErrInvalidGap) {
		t.Errorf("got %v, want ErrInvalidGap", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("nothing should be written for an invalid day")
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "read") {
		t.Errorf("got %v", err)
	}
}

func TestOn(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	if got := (Day{}).On(now); !got.Equal(now) {
		t.Errorf("no date: got %v", got)
	}
	if got := (Day{Date: "2026-03-10"}).On(now); !got.Equal(now) {
		t.Errorf("today: got %v", got)
	}
	want := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	if got := (Day{Date: "2026-03-12"}).On(now); !got.Equal(want) {
		t.Errorf("other day: got %v, want %v", got, want)
	}
}

func TestLoad_Fixtures(t *testing.T) {
	tests := []struct {
		file    string
		date    string
		minutes []int
	}{
		{"weekday.toml", "2026-03-11", []int{45, 45, 135}},
		{"weekend.toml", "", []int{180, 240}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			d, err := Load(filepath.Join("..", "..", "testdata", "days", tt.file))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if d.Date != tt.date {
				t.Errorf("date: got %q, want %q", d.Date, tt.date)
			}
			if len(d.Gaps) != len(tt.minutes) {
				t.Fatalf("gaps: got %d, want %d", len(d.Gaps), len(tt.minutes))
			}
			for i, want := range tt.minutes {
				if d.Gaps[i].Duration != want {
					t.Errorf("gap %s: got %d min, want %d", d.Gaps[i].ID, d.Gaps[i].Duration, want)
				}
			}
		})
	}
}
