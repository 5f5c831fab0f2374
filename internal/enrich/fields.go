// Package enrich fills in memo fields the user left blank, using an LLM when
// one is configured and deterministic rules otherwise.
package enrich

import (
	"context"
	"time"

	"github.com/gapfill/gapfill/internal/memo"
)

// Fields are the memo attributes enrichment may supply.
type Fields struct {
	Genre                 string          `json:"genre"`
	Importance            memo.Importance `json:"importance"`
	SessionDuration       int             `json:"session_duration"`
	TotalDurationExpected int             `json:"total_duration_expected"`
}

// Enricher proposes Fields for a memo.
type Enricher interface {
	Enrich(ctx context.Context, m memo.Memo, now time.Time) (Fields, error)
}

// Needs reports whether m is missing any field enrichment can supply.
func Needs(m memo.Memo) bool {
	if m.Genre == "" || m.Importance == "" || m.SessionDuration <= 0 {
		return true
	}
	return m.Type != memo.TypeRoutine && m.TotalDurationExpected <= 0
}

// Apply returns a copy of m with only its missing fields taken from f.
func Apply(m memo.Memo, f Fields) memo.Memo {
	c := m.Clone()
	if c.Genre == "" {
		c.Genre = f.Genre
	}
	if c.Importance == "" && memo.ValidImportance(f.Importance) {
		c.Importance = f.Importance
	}
	if c.SessionDuration <= 0 && f.SessionDuration > 0 {
		c.SessionDuration = f.SessionDuration
	}
	if c.TotalDurationExpected <= 0 && f.TotalDurationExpected > 0 && c.Type != memo.TypeRoutine {
		c.TotalDurationExpected = f.TotalDurationExpected
	}
	return c
}
