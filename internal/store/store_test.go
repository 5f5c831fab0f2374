package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gapfill/gapfill/internal/db"
	"github.com/gapfill/gapfill/internal/memo"
	"github.com/gapfill/gapfill/internal/period"
)

func setupTestDB(t *testing.T) (*db.DB, *Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, NewStore(database)
}

var created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func deadlineMemo(title string) memo.Memo {
	due := created.Add(10 * 24 * time.Hour)
	return memo.Memo{
		Type:                  memo.TypeDeadline,
		Title:                 title,
		CreatedAt:             created,
		Deadline:              &due,
		Importance:            memo.ImportanceHigh,
		SessionDuration:       45,
		TotalDurationExpected: 180,
	}
}

func TestStore_InsertAndGetMemo(t *testing.T) {
	_, store := setupTestDB(t)

	id, err := store.InsertMemo(deadlineMemo("Essay"))
	if err != nil {
		t.Fatalf("InsertMemo: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	got, err := store.GetMemo(id)
	if err != nil {
		t.Fatalf("GetMemo: %v", err)
	}
	if got.Title != "Essay" || got.Type != memo.TypeDeadline {
		t.Errorf("got %+v", got)
	}
	if got.Status.CompletionState != memo.NotStarted {
		t.Errorf("state: got %q, want %q", got.Status.CompletionState, memo.NotStarted)
	}
	if got.DeadlineState == nil {
		t.Error("type state should be created on insert")
	}
	if got.Deadline == nil || !got.Deadline.Equal(created.Add(10*24*time.Hour)) {
		t.Errorf("deadline: got %v", got.Deadline)
	}
}

func TestStore_InsertMemo_Invalid(t *testing.T) {
	_, store := setupTestDB(t)
	_, err := store.InsertMemo(memo.Memo{Type: memo.TypeRoutine, Title: "Run"})
	if !errors.Is(err, memo.ErrInvalidMemo) {
		t.Errorf("got %v, want ErrInvalidMemo", err)
	}
}

func TestStore_GetMemo_NotFound(t *testing.T) {
	_, store := setupTestDB(t)
	if _, err := store.GetMemo("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateMemo_RoundTripsState(t *testing.T) {
	_, store := setupTestDB(t)
	id, _ := store.InsertMemo(memo.Memo{
		Type:           memo.TypeRoutine,
		Title:          "Run",
		CreatedAt:      created,
		RecurrenceGoal: &memo.RecurrenceGoal{Count: 3, Period: period.Week},
	})

	m, _ := store.GetMemo(id)
	now := created.Add(26 * time.Hour)
	if err := memo.Complete(&m, 30, now); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := store.UpdateMemo(m); err != nil {
		t.Fatalf("UpdateMemo: %v", err)
	}

	got, _ := store.GetMemo(id)
	if got.Status.CompletionsThisPeriod != 1 {
		t.Errorf("completions: got %d, want 1", got.Status.CompletionsThisPeriod)
	}
	if !got.Routine.LastCompletedAt.Equal(now) {
		t.Errorf("last completed: got %v, want %v", got.Routine.LastCompletedAt, now)
	}
	if !got.Routine.CompletedToday {
		t.Error("completed flag lost")
	}
}

func TestStore_UpdateMemo_NotFound(t *testing.T) {
	_, store := setupTestDB(t)
	m := memo.Memo{ID: "ghost", Type: memo.TypeBacklog, Title: "x"}
	if err := store.UpdateMemo(m); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStore_ListMemos_SkipsCompleted(t *testing.T) {
	_, store := setupTestDB(t)
	a, _ := store.InsertMemo(memo.Memo{Type: memo.TypeBacklog, Title: "A", CreatedAt: created})
	store.InsertMemo(memo.Memo{Type: memo.TypeBacklog, Title: "B", CreatedAt: created.Add(time.Hour)})

	m, _ := store.GetMemo(a)
	m.Status.CompletionState = memo.Completed
	if err := store.UpdateMemo(m); err != nil {
		t.Fatalf("UpdateMemo: %v", err)
	}

	active, err := store.ListMemos(false)
	if err != nil {
		t.Fatalf("ListMemos: %v", err)
	}
	if len(active) != 1 || active[0].Title != "B" {
		t.Errorf("active: got %v", active)
	}

	all, _ := store.ListMemos(true)
	if len(all) != 2 || all[0].Title != "A" {
		t.Errorf("all: got %d memos, want 2 with A first", len(all))
	}
}

func TestStore_DeleteMemo(t *testing.T) {
	_, store := setupTestDB(t)
	id, _ := store.InsertMemo(memo.Memo{Type: memo.TypeBacklog, Title: "Junk"})
	if err := store.RecordActivity(Activity{MemoID: id, Kind: ActivityAccept}); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}

	if err := store.DeleteMemo(id); err != nil {
		t.Fatalf("DeleteMemo: %v", err)
	}
	if err := store.DeleteMemo(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
	acts, _ := store.ListActivity(id, 0)
	if len(acts) != 0 {
		t.Errorf("activity should cascade, got %d rows", len(acts))
	}
}

func TestStore_CountMemosByType(t *testing.T) {
	_, store := setupTestDB(t)
	store.InsertMemo(deadlineMemo("one"))
	store.InsertMemo(deadlineMemo("two"))
	store.InsertMemo(memo.Memo{Type: memo.TypeBacklog, Title: "three"})

	counts, err := store.CountMemosByType()
	if err != nil {
		t.Fatalf("CountMemosByType: %v", err)
	}
	if counts[memo.TypeDeadline] != 2 || counts[memo.TypeBacklog] != 1 {
		t.Errorf("got %v", counts)
	}
}

func TestStore_ResolveID(t *testing.T) {
	_, store := setupTestDB(t)
	store.InsertMemo(memo.Memo{ID: "abc123", Type: memo.TypeBacklog, Title: "x"})
	store.InsertMemo(memo.Memo{ID: "abd456", Type: memo.TypeBacklog, Title: "y"})

	got, err := store.ResolveID("abc")
	if err != nil || got != "abc123" {
		t.Errorf("ResolveID(abc): got %q, %v", got, err)
	}
	if _, err := store.ResolveID("ab"); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("ResolveID(ab): got %v, want ErrAmbiguous", err)
	}
	if _, err := store.ResolveID("zz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveID(zz): got %v, want ErrNotFound", err)
	}
}

func TestStore_ListActivity_NewestFirst(t *testing.T) {
	_, store := setupTestDB(t)
	id, _ := store.InsertMemo(memo.Memo{Type: memo.TypeBacklog, Title: "x"})

	store.RecordActivity(Activity{MemoID: id, Kind: ActivityAccept, CreatedAt: created})
	store.RecordActivity(Activity{MemoID: id, Kind: ActivitySession, Minutes: 25, CreatedAt: created.Add(time.Hour)})
	store.RecordActivity(Activity{MemoID: id, Kind: ActivityComplete, Minutes: 10, CreatedAt: created.Add(2 * time.Hour)})

	acts, err := store.ListActivity(id, 2)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(acts) != 2 {
		t.Fatalf("got %d entries, want 2", len(acts))
	}
	if acts[0].Kind != ActivityComplete || acts[1].Minutes != 25 {
		t.Errorf("got %+v", acts)
	}
	if !acts[1].CreatedAt.Equal(created.Add(time.Hour)) {
		t.Errorf("timestamp: got %v", acts[1].CreatedAt)
	}
}

func TestStore_RecentActivity(t *testing.T) {
	_, store := setupTestDB(t)
	a, _ := store.InsertMemo(memo.Memo{Type: memo.TypeBacklog, Title: "a"})
	b, _ := store.InsertMemo(memo.Memo{Type: memo.TypeBacklog, Title: "b"})

	store.RecordActivity(Activity{MemoID: a, Kind: ActivityAccept, CreatedAt: created})
	store.RecordActivity(Activity{MemoID: b, Kind: ActivityReject, CreatedAt: created.Add(48 * time.Hour)})
	store.RecordActivity(Activity{MemoID: a, Kind: ActivitySession, Minutes: 20, CreatedAt: created.Add(72 * time.Hour)})

	acts, err := store.RecentActivity(created.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	if len(acts) != 2 {
		t.Fatalf("got %d entries, want 2", len(acts))
	}
	if acts[0].MemoID != a || acts[1].MemoID != b {
		t.Errorf("order: got %s, %s", acts[0].MemoID, acts[1].MemoID)
	}
}
