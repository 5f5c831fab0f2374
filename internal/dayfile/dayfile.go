// Package dayfile reads and writes the TOML file describing one scheduling
// day: its free gaps, fixed events and suggestions already accepted elsewhere.
package dayfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gapfill/gapfill/internal/location"
	"github.com/gapfill/gapfill/internal/scheduler"
)

// DateLayout is the format of the date key.
const DateLayout = "2006-01-02"

// Day is the decoded content of a day file.
type Day struct {
	Date              string           `toml:"date,omitempty"`
	AcceptedElsewhere []string         `toml:"accepted_elsewhere,omitempty"`
	Gaps              []scheduler.Gap  `toml:"gaps"`
	Events            []location.Event `toml:"events,omitempty"`
}

// Load reads and validates the day file at path.
func Load(path string) (Day, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Day{}, fmt.Errorf("dayfile: read %s: %w", path, err)
	}
	d, err := Parse(string(data))
	if err != nil {
		return Day{}, fmt.Errorf("dayfile: %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes and validates day file content. Gap durations are filled in
// from their intervals.
func Parse(content string) (Day, error) {
	var d Day
	md, err := toml.Decode(content, &d)
	if err != nil {
		return Day{}, fmt.Errorf("parse: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Day{}, fmt.Errorf("parse: unknown key %q", undecoded[0].String())
	}
	if err := d.normalize(); err != nil {
		return Day{}, err
	}
	return d, nil
}

func (d *Day) normalize() error {
	if d.Date != "" {
		if _, err := time.Parse(DateLayout, d.Date); err != nil {
			return fmt.Errorf("date %q: want YYYY-MM-DD", d.Date)
		}
	}
	gaps, err := scheduler.NormalizeGaps(d.Gaps)
	if err != nil {
		return err
	}
	d.Gaps = gaps
	// Surfaces malformed events now rather than at planning time.
	if _, err := location.Enrich(d.Gaps, d.Events); err != nil {
		return err
	}
	return nil
}

// On returns the moment planning should use for this day: now when the file
// has no date or names today, otherwise the start of the named date in now's
// location.
func (d Day) On(now time.Time) time.Time {
	if d.Date == "" {
		return now
	}
	day, err := time.ParseInLocation(DateLayout, d.Date, now.Location())
	if err != nil || day.Format(DateLayout) == now.Format(DateLayout) {
		return now
	}
	return day
}

// Save writes d to path, creating parent directories. Malformed gaps are
// rejected before anything is written.
func Save(path string, d Day) error {
	if err := scheduler.ValidateGaps(d.Gaps); err != nil {
		return fmt.Errorf("dayfile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dayfile: mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dayfile: create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(d); err != nil {
		return fmt.Errorf("dayfile: encode: %w", err)
	}
	return nil
}

// Sample returns a starter day for date with a morning, lunch and evening gap
// around a timetable block.
func Sample(date time.Time) Day {
	return Day{
		Date: date.Format(DateLayout),
		Gaps: []scheduler.Gap{
			{ID: "morning", Start: "07:00", End: "08:30"},
			{ID: "lunch", Start: "12:00", End: "13:00"},
			{ID: "evening", Start: "19:00", End: "21:00"},
		},
		Events: []location.Event{
			{Start: "09:00", End: "17:00", Source: location.SourceTimetable, Title: "Work"},
		},
	}
}
