package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gapfill/gapfill/internal/adapter"
	"github.com/gapfill/gapfill/internal/config"
	"github.com/gapfill/gapfill/internal/dayfile"
	"github.com/gapfill/gapfill/internal/memo"
	"github.com/gapfill/gapfill/internal/scheduler"
	"github.com/gapfill/gapfill/internal/store"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func setupApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Dir = t.TempDir()
	cfg.Enrichment.Enabled = false
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	a, err := Open(cfg, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAddAndRecord(t *testing.T) {
	a := setupApp(t)
	m, err := a.Add(memo.Draft{Title: "Run", Count: 3, Period: "week", Session: 30})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if m.ID == "" || m.Type != memo.TypeRoutine {
		t.Fatalf("got %+v", m)
	}

	got, err := a.Record(m.ID[:8], store.ActivityComplete, 30)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got.Status.CompletionsThisPeriod != 1 || got.Status.TimeSpentMinutes != 30 {
		t.Errorf("status: got %+v", got.Status)
	}

	acts, _ := a.Store.ListActivity(m.ID, 0)
	if len(acts) != 1 || acts[0].Kind != store.ActivityComplete || acts[0].Minutes != 30 {
		t.Errorf("activity: got %+v", acts)
	}
}

func TestRecord_AcceptIgnoresMinutes(t *testing.T) {
	a := setupApp(t)
	m, _ := a.Add(memo.Draft{Title: "Garage"})
	got, err := a.Record(m.ID, store.ActivityAccept, 99)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !got.Backlog.AcceptedToday || got.Status.TimeSpentMinutes != 0 {
		t.Errorf("got %+v", got)
	}
	acts, _ := a.Store.ListActivity(m.ID, 0)
	if acts[0].Minutes != 0 {
		t.Errorf("accept should log zero minutes, got %d", acts[0].Minutes)
	}
}

func TestRecord_UnknownMemo(t *testing.T) {
	a := setupApp(t)
	if _, err := a.Record("nope", store.ActivityAccept, 0); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestPlan_PersistsRolledOverState(t *testing.T) {
	a := setupApp(t)
	run, _ := a.Add(memo.Draft{Title: "Run", Count: 3, Session: 30})
	a.Add(memo.Draft{Title: "Essay", Deadline: "2026-03-10 18:00", Session: 30, Total: 60})

	day := dayfile.Day{Gaps: []scheduler.Gap{{ID: "g1", Start: "07:00", End: "08:00"}}}
	out, err := a.Plan(context.Background(), day, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(out.Result.Scheduled) == 0 {
		t.Fatal("expected the due essay to be scheduled")
	}

	stored, _ := a.Store.GetMemo(run.ID)
	if stored.Status.PeriodStartDate.IsZero() {
		t.Error("routine period start should be persisted after planning")
	}
}

func TestFitGap(t *testing.T) {
	a := setupApp(t)
	a.Add(memo.Draft{Title: "Essay", Deadline: "2026-03-10 18:00", Session: 30, Total: 120})

	allocs, _, err := a.FitGap(context.Background(), 40)
	if err != nil {
		t.Fatalf("FitGap: %v", err)
	}
	if len(allocs) != 1 || allocs[0].Minutes < 30 || allocs[0].Minutes > 40 {
		t.Errorf("got %+v", allocs)
	}
}

func TestRemove(t *testing.T) {
	a := setupApp(t)
	m, _ := a.Add(memo.Draft{Title: "Junk"})
	id, err := a.Remove(m.ID)
	if err != nil || id != m.ID {
		t.Fatalf("Remove: %q, %v", id, err)
	}
	if _, err := a.Store.GetMemo(m.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

type stubCompleter struct{ calls int }

func (s *stubCompleter) Complete(context.Context, adapter.CompletionRequest) (string, error) {
	s.calls++
	return `{"genre":"study","importance":"high","session_duration":50,"total_duration_expected":200}`, nil
}

func (s *stubCompleter) Info() adapter.ModelInfo { return adapter.ModelInfo{Name: "stub", Provider: "stub"} }

func TestPlan_EnrichesAndPersistsFields(t *testing.T) {
	sc := &stubCompleter{}
	cfg := config.Default()
	cfg.Data.Dir = t.TempDir()
	a, err := Open(cfg, zerolog.Nop(), WithClock(func() time.Time { return now }), WithCompleter(sc))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	m, _ := a.Add(memo.Draft{Title: "Thesis chapter"})
	if _, err := a.Plan(context.Background(), dayfile.Day{}, nil); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if sc.calls != 1 {
		t.Errorf("completer calls: got %d, want 1", sc.calls)
	}
	stored, _ := a.Store.GetMemo(m.ID)
	if stored.Genre != "study" || stored.SessionDuration != 50 || stored.Importance != memo.ImportanceHigh {
		t.Errorf("enriched fields not persisted: %+v", stored)
	}
}
