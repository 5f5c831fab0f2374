// Package store persists memos and their activity log in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gapfill/gapfill/internal/db"
	"github.com/gapfill/gapfill/internal/memo"
)

var (
	// ErrNotFound is returned when no memo matches an id.
	ErrNotFound = errors.New("memo not found")
	// ErrAmbiguous is returned when an id prefix matches more than one memo.
	ErrAmbiguous = errors.New("ambiguous memo id")
)

// ActivityKind names an entry in the activity log.
type ActivityKind string

const (
	ActivityAccept   ActivityKind = "accept"
	ActivityReject   ActivityKind = "reject"
	ActivitySession  ActivityKind = "session"
	ActivityComplete ActivityKind = "complete"
)

// Activity is one user interaction with a memo.
type Activity struct {
	ID        string
	MemoID    string
	Kind      ActivityKind
	Minutes   int
	CreatedAt time.Time
}

// Store provides read/write access to the task database.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given DB.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Conn exposes the underlying *sql.DB for low-level queries.
func (s *Store) Conn() *sql.DB {
	return s.db.Conn()
}

// ---- Memos ----

// InsertMemo validates and persists a new memo. An empty ID is replaced by a
// fresh UUID and a zero CreatedAt by the current time. The stored ID is returned.
func (s *Store) InsertMemo(m memo.Memo) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Status.CompletionState == "" {
		m.Status.CompletionState = memo.NotStarted
	}
	m.EnsureState()
	if err := memo.Validate(m); err != nil {
		return "", fmt.Errorf("store: insert memo: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("store: encode memo %s: %w", m.ID, err)
	}

	_, err = s.db.Conn().Exec(`
		INSERT INTO memos (id, memo_type, title, genre, importance, completion_state, deadline, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Type), m.Title, m.Genre, string(m.Importance),
		string(m.Status.CompletionState), deadlineArg(m), string(data), formatTime(m.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert memo: %w", err)
	}
	return m.ID, nil
}

// GetMemo returns the memo with the given id.
func (s *Store) GetMemo(id string) (memo.Memo, error) {
	var data string
	err := s.db.Conn().QueryRow(`SELECT data FROM memos WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return memo.Memo{}, fmt.Errorf("store: %w: %q", ErrNotFound, id)
	}
	if err != nil {
		return memo.Memo{}, fmt.Errorf("store: get memo: %w", err)
	}
	return decodeMemo(data)
}

// ResolveID expands a unique id prefix into a full memo id.
func (s *Store) ResolveID(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("store: %w: empty id", ErrNotFound)
	}
	rows, err := s.db.Conn().Query(
		`SELECT id FROM memos WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix,
	)
	if err != nil {
		return "", fmt.Errorf("store: resolve id: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("store: %w: %q", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("store: %w: %q", ErrAmbiguous, prefix)
	}
}

// ListMemos returns memos oldest first. Completed memos are skipped unless
// includeCompleted is set.
func (s *Store) ListMemos(includeCompleted bool) ([]memo.Memo, error) {
	query := `SELECT data FROM memos ORDER BY created_at, id`
	if !includeCompleted {
		query = `SELECT data FROM memos WHERE completion_state != 'completed' ORDER BY created_at, id`
	}
	rows, err := s.db.Conn().Query(query)
	if err != nil {
		return nil, fmt.Errorf("store: list memos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanMemos(rows)
}

// UpdateMemo replaces the stored record of an existing memo.
func (s *Store) UpdateMemo(m memo.Memo) error {
	if err := memo.Validate(m); err != nil {
		return fmt.Errorf("store: update memo: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("store: encode memo %s: %w", m.ID, err)
	}
	res, err := s.db.Conn().Exec(`
		UPDATE memos SET
		    memo_type        = ?,
		    title            = ?,
		    genre            = ?,
		    importance       = ?,
		    completion_state = ?,
		    deadline         = ?,
		    data             = ?,
		    updated_at       = CURRENT_TIMESTAMP
		WHERE id = ?`,
		string(m.Type), m.Title, m.Genre, string(m.Importance),
		string(m.Status.CompletionState), deadlineArg(m), string(data), m.ID,
	)
	if err != nil {
		return fmt.Errorf("store: update memo: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("store: %w: %q", ErrNotFound, m.ID)
	}
	return nil
}

// DeleteMemo removes a memo and its activity by ID.
func (s *Store) DeleteMemo(id string) error {
	res, err := s.db.Conn().Exec(`DELETE FROM memos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("store: %w: %q", ErrNotFound, id)
	}
	return nil
}

// CountMemosByType returns a count of active memos per type.
func (s *Store) CountMemosByType() (map[memo.Type]int, error) {
	rows, err := s.db.Conn().Query(
		`SELECT memo_type, COUNT(*) FROM memos WHERE completion_state != 'completed' GROUP BY memo_type`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[memo.Type]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[memo.Type(t)] = n
	}
	return counts, rows.Err()
}

// ---- Activity ----

// RecordActivity appends an entry to a memo's activity log.
func (s *Store) RecordActivity(a Activity) error {
	at := a.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.db.Conn().Exec(`
		INSERT INTO activity (memo_id, kind, minutes, created_at)
		VALUES (?, ?, ?, ?)`,
		a.MemoID, string(a.Kind), a.Minutes, formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("store: record activity: %w", err)
	}
	return nil
}

// ListActivity returns up to limit entries for memoID, newest first.
// A limit of zero or less returns every entry.
func (s *Store) ListActivity(memoID string, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Conn().Query(`
		SELECT id, memo_id, kind, minutes, created_at
		FROM activity
		WHERE memo_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, memoID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list activity: %w", err)
	}
	return scanActivity(rows)
}

// RecentActivity returns activity on any memo recorded at or after since,
// newest first.
func (s *Store) RecentActivity(since time.Time) ([]Activity, error) {
	rows, err := s.db.Conn().Query(`
		SELECT id, memo_id, kind, minutes, created_at
		FROM activity
		WHERE created_at >= ?
		ORDER BY created_at DESC, rowid DESC`, formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("store: recent activity: %w", err)
	}
	return scanActivity(rows)
}

func scanActivity(rows *sql.Rows) ([]Activity, error) {
	defer func() { _ = rows.Close() }()

	var out []Activity
	for rows.Next() {
		var a Activity
		var kind, createdAt string
		if err := rows.Scan(&a.ID, &a.MemoID, &kind, &a.Minutes, &createdAt); err != nil {
			return nil, err
		}
		a.Kind = ActivityKind(kind)
		a.CreatedAt = parseTime(createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ---- Helpers ----

func deadlineArg(m memo.Memo) any {
	if m.Deadline == nil {
		return nil
	}
	return formatTime(*m.Deadline)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime tries multiple SQLite timestamp layouts.
// go-sqlite3 may return RFC3339 or the plain "2006-01-02 15:04:05" format depending on
// the connection string and platform.
func parseTime(s string) time.Time {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func decodeMemo(data string) (memo.Memo, error) {
	var m memo.Memo
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return memo.Memo{}, fmt.Errorf("store: decode memo: %w", err)
	}
	return m, nil
}

func scanMemos(rows *sql.Rows) ([]memo.Memo, error) {
	var out []memo.Memo
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		m, err := decodeMemo(data)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
