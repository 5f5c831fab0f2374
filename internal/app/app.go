// Package app wires configuration, the task store, enrichment and the
// planning engine into the operations shared by the CLI and the MCP server.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gapfill/gapfill/internal/adapter"
	"github.com/gapfill/gapfill/internal/config"
	"github.com/gapfill/gapfill/internal/dayfile"
	"github.com/gapfill/gapfill/internal/db"
	"github.com/gapfill/gapfill/internal/engine"
	"github.com/gapfill/gapfill/internal/enrich"
	"github.com/gapfill/gapfill/internal/memo"
	"github.com/gapfill/gapfill/internal/scheduler"
	"github.com/gapfill/gapfill/internal/scoring"
	"github.com/gapfill/gapfill/internal/store"
)

// App holds the long-lived collaborators of one process.
type App struct {
	Config config.Config
	Store  *store.Store
	Engine *engine.Engine
	Log    zerolog.Logger

	db  *db.DB
	now func() time.Time
}

type settings struct {
	now           func() time.Time
	completer     adapter.Completer
	completerSet  bool
	includeHidden bool
}

// Option customises Open.
type Option func(*settings)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithCompleter uses c for enrichment instead of the configured provider.
// A nil c means rules only.
func WithCompleter(c adapter.Completer) Option {
	return func(s *settings) {
		s.completer = c
		s.completerSet = true
	}
}

// WithHidden passes suggestions below the display threshold to the scheduler.
func WithHidden(include bool) Option {
	return func(s *settings) { s.includeHidden = include }
}

// Open opens the task database named by cfg and builds the engine.
func Open(cfg config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	st := settings{now: time.Now}
	for _, o := range opts {
		o(&st)
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", database.Path()).Msg("task database open")

	svc, err := enrichment(cfg, log, st)
	if err != nil {
		database.Close()
		return nil, err
	}

	eng := engine.New(
		log,
		scoring.NewScorer(cfg.ScoringOptions()),
		scheduler.New(cfg.Scheduler),
		svc,
		engine.Options{
			DuplicateFactor: cfg.Scoring.DuplicateFactor,
			IncludeHidden:   st.includeHidden,
			Enrich:          cfg.Enrichment.Enabled,
		},
	).WithClock(st.now)

	return &App{
		Config: cfg,
		Store:  store.NewStore(database),
		Engine: eng,
		Log:    log,
		db:     database,
		now:    st.now,
	}, nil
}

// enrichment builds the enrichment service; a missing provider means rules only.
func enrichment(cfg config.Config, log zerolog.Logger, st settings) (*enrich.Service, error) {
	timeout, err := cfg.EnrichmentTimeout()
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.EnrichmentCacheTTL()
	if err != nil {
		return nil, err
	}

	completer := st.completer
	if !st.completerSet {
		completer, err = adapter.New(adapter.Options{
			Provider:   cfg.LLM.Provider,
			APIKey:     apiKey(cfg),
			Model:      model(cfg),
			OllamaHost: cfg.LLM.Ollama.Host,
		})
		if err != nil {
			return nil, err
		}
	}

	var primary enrich.Enricher
	if completer != nil {
		var tok *enrich.Tokenizer
		if cfg.Enrichment.TokenizePrompt {
			if tok, err = enrich.NewTokenizer(); err != nil {
				log.Warn().Err(err).Msg("tokenizer unavailable; truncating prompts by length")
			}
		}
		primary = enrich.NewLLM(completer, tok)
		log.Debug().Str("provider", completer.Info().Provider).Str("model", completer.Info().Name).Msg("llm enrichment enabled")
	}
	return enrich.NewService(primary, enrich.NewCache(ttl), timeout), nil
}

func apiKey(cfg config.Config) string {
	switch cfg.LLM.Provider {
	case adapter.ProviderClaude:
		return cfg.LLM.Keys.Anthropic
	case adapter.ProviderOpenAI:
		return cfg.LLM.Keys.OpenAI
	}
	return ""
}

func model(cfg config.Config) string {
	if cfg.LLM.Model == "" && cfg.LLM.Provider == adapter.ProviderOllama {
		return cfg.LLM.Ollama.Model
	}
	return cfg.LLM.Model
}

// Close releases the database.
func (a *App) Close() error {
	return a.db.Close()
}

// Now returns the app clock's current time.
func (a *App) Now() time.Time {
	return a.now()
}

// Plan runs the engine over every active memo for day and persists memos
// whose state rolled over or gained enriched fields.
func (a *App) Plan(ctx context.Context, day dayfile.Day, progress func(done, total int)) (*engine.Output, error) {
	memos, err := a.Store.ListMemos(false)
	if err != nil {
		return nil, err
	}
	out, err := a.Engine.Run(ctx, engine.Input{
		Memos:             memos,
		Gaps:              day.Gaps,
		Events:            day.Events,
		AcceptedElsewhere: day.AcceptedElsewhere,
		Now:               day.On(a.now()),
		Progress:          progress,
	})
	if err != nil {
		return nil, err
	}
	a.persist(out.Updated)
	return out, nil
}

// Suggestions scores every active memo without scheduling.
func (a *App) Suggestions(ctx context.Context) ([]memo.Suggestion, engine.Summary, error) {
	memos, err := a.Store.ListMemos(false)
	if err != nil {
		return nil, engine.Summary{}, err
	}
	return a.Engine.Suggest(ctx, memos, a.now())
}

// FitGap splits a window of minutes among the current suggestions.
func (a *App) FitGap(ctx context.Context, minutes int) ([]scheduler.Allocation, []memo.Suggestion, error) {
	sugs, _, err := a.Suggestions(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a.Engine.FitGap(sugs, minutes)
}

// persist writes back memos changed during planning. Failures are logged:
// the plan itself is still valid.
func (a *App) persist(memos []memo.Memo) {
	for _, m := range memos {
		if err := a.Store.UpdateMemo(m); err != nil {
			a.Log.Warn().Err(err).Str("memo", m.ID).Msg("could not save memo state")
		}
	}
}
