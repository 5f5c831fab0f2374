package enrich

import (
	"context"
	"time"

	"github.com/gapfill/gapfill/internal/memo"
)

// Source says which path produced a Result.
type Source string

const (
	SourceCache Source = "cache"
	SourceLLM   Source = "llm"
	SourceRules Source = "rules"
)

// Result is the outcome of enriching one memo. Err holds the primary
// enricher's failure when Fallback is set; it is informational only.
type Result struct {
	Fields   Fields
	Source   Source
	Fallback bool
	Err      error
}

// Service runs the primary enricher behind a cache and falls back to the
// rule-based defaults on any failure.
type Service struct {
	primary Enricher // nil = rules only
	cache   *Cache   // nil = no caching
	timeout time.Duration
}

// NewService creates a Service. primary and cache may be nil; a timeout <= 0
// leaves the caller's context in charge.
func NewService(primary Enricher, cache *Cache, timeout time.Duration) *Service {
	return &Service{primary: primary, cache: cache, timeout: timeout}
}

// Enrich never fails: any primary error produces rule-based fields.
func (s *Service) Enrich(ctx context.Context, m memo.Memo, now time.Time) Result {
	if s.cache != nil {
		if f, ok := s.cache.Get(m.ID); ok {
			return Result{Fields: f, Source: SourceCache}
		}
	}

	if s.primary == nil {
		f := Rules(m, now)
		s.store(m.ID, f)
		return Result{Fields: f, Source: SourceRules}
	}

	cctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	f, err := s.primary.Enrich(cctx, m, now)
	if err != nil {
		// Fallback results are not cached so the next call retries the model.
		return Result{Fields: Rules(m, now), Source: SourceRules, Fallback: true, Err: err}
	}
	s.store(m.ID, f)
	return Result{Fields: f, Source: SourceLLM}
}

func (s *Service) store(id string, f Fields) {
	if s.cache != nil {
		s.cache.Set(id, f)
	}
}

// Cache returns the service's cache, or nil.
func (s *Service) Cache() *Cache {
	return s.cache
}
