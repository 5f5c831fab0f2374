package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/gapfill/gapfill/internal/memo"
)

// Genres recognised by the rule-based classifier.
const (
	GenreStudy    = "study"
	GenreExercise = "exercise"
	GenreWork     = "work"
	GenreChores   = "chores"
	GenreCreative = "creative"
	GenreGeneral  = "general"
)

var genreKeywords = []struct {
	genre    string
	keywords []string
}{
	{GenreStudy, []string{"study", "read", "learn", "exam", "homework", "lecture", "course", "revise", "assignment"}},
	{GenreExercise, []string{"run", "gym", "workout", "yoga", "exercise", "walk", "swim", "stretch", "cycle"}},
	{GenreWork, []string{"report", "meeting", "email", "project", "presentation", "review", "invoice", "deploy"}},
	{GenreChores, []string{"clean", "laundry", "groceries", "cook", "dishes", "tidy", "vacuum", "shopping"}},
	{GenreCreative, []string{"write", "draw", "paint", "music", "guitar", "piano", "practice", "sketch"}},
}

// ClassifyGenre maps a memo title onto a coarse genre by keyword.
func ClassifyGenre(title string) string {
	lower := strings.ToLower(title)
	for _, g := range genreKeywords {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.genre
			}
		}
	}
	return GenreGeneral
}

func sessionForGenre(genre string) int {
	switch genre {
	case GenreStudy, GenreWork:
		return 45
	case GenreChores:
		return 20
	default:
		return 30
	}
}

// RuleBased derives fields from the title, type and deadline alone. It never
// fails and is the fallback for every other enricher.
type RuleBased struct{}

// Enrich implements Enricher.
func (RuleBased) Enrich(_ context.Context, m memo.Memo, now time.Time) (Fields, error) {
	return Rules(m, now), nil
}

// Rules is RuleBased without the interface plumbing.
func Rules(m memo.Memo, now time.Time) Fields {
	genre := ClassifyGenre(m.Title)
	session := sessionForGenre(genre)

	f := Fields{Genre: genre, SessionDuration: session}
	switch m.Type {
	case memo.TypeDeadline:
		f.Importance = memo.ImportanceMedium
		if m.Deadline != nil {
			switch left := m.Deadline.Sub(now); {
			case left <= 72*time.Hour:
				f.Importance = memo.ImportanceHigh
			case left > 14*24*time.Hour:
				f.Importance = memo.ImportanceLow
			}
		}
		f.TotalDurationExpected = session * 4
	case memo.TypeRoutine:
		f.Importance = memo.ImportanceMedium
	default:
		f.Importance = memo.ImportanceLow
		f.TotalDurationExpected = session * 2
	}
	return f
}
