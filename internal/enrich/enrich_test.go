package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gapfill/gapfill/internal/adapter"
	"github.com/gapfill/gapfill/internal/memo"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// fakeCompleter returns a canned response and counts calls.
type fakeCompleter struct {
	text  string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _ adapter.CompletionRequest) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeCompleter) Info() adapter.ModelInfo {
	return adapter.ModelInfo{Name: "fake", Provider: "fake"}
}

func TestClassifyGenre(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Study for the physics exam", GenreStudy},
		{"Morning run", GenreExercise},
		{"Quarterly report", GenreWork},
		{"Do the laundry", GenreChores},
		{"Guitar practice", GenreCreative},
		{"Call grandma", GenreGeneral},
	}
	for _, tt := range tests {
		if got := ClassifyGenre(tt.title); got != tt.want {
			t.Errorf("ClassifyGenre(%q): got %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestRules_DeadlineImportanceByProximity(t *testing.T) {
	soon := now.Add(48 * time.Hour)
	later := now.Add(30 * 24 * time.Hour)
	mid := now.Add(7 * 24 * time.Hour)

	tests := []struct {
		due  time.Time
		want memo.Importance
	}{
		{soon, memo.ImportanceHigh},
		{mid, memo.ImportanceMedium},
		{later, memo.ImportanceLow},
	}
	for _, tt := range tests {
		due := tt.due
		f := Rules(memo.Memo{Type: memo.TypeDeadline, Title: "Essay", Deadline: &due}, now)
		if f.Importance != tt.want {
			t.Errorf("due %v: got %q, want %q", tt.due, f.Importance, tt.want)
		}
		if f.TotalDurationExpected <= 0 {
			t.Error("deadline memos should get an expected total")
		}
	}
}

func TestParseFields(t *testing.T) {
	raw := "Sure! ```json\n{\"genre\": \"Study\", \"importance\": \"HIGH\", \"session_duration\": 50, \"total_duration_expected\": 300}\n```"
	f, err := parseFields(raw)
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	if f.Genre != "study" || f.Importance != memo.ImportanceHigh || f.SessionDuration != 50 || f.TotalDurationExpected != 300 {
		t.Errorf("got %+v", f)
	}
}

func TestParseFields_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no object", "I cannot help with that"},
		{"bad json", "{genre: study}"},
		{"bad importance", `{"genre":"x","importance":"urgent","session_duration":30}`},
		{"tiny session", `{"genre":"x","importance":"low","session_duration":1}`},
		{"empty genre", `{"genre":"","importance":"low","session_duration":30}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFields(tt.raw); !errors.Is(err, ErrMalformed) {
				t.Errorf("got %v, want ErrMalformed", err)
			}
		})
	}
}

func TestService_LLMThenCache(t *testing.T) {
	fc := &fakeCompleter{text: `{"genre":"work","importance":"high","session_duration":40,"total_duration_expected":120}`}
	svc := NewService(NewLLM(fc, nil), NewCache(time.Hour), time.Second)
	m := memo.Memo{ID: "m1", Type: memo.TypeBacklog, Title: "Tax return"}

	res := svc.Enrich(context.Background(), m, now)
	if res.Source != SourceLLM || res.Fallback {
		t.Fatalf("first call: got %+v", res)
	}
	if res.Fields.SessionDuration != 40 {
		t.Errorf("session: got %d, want 40", res.Fields.SessionDuration)
	}

	res = svc.Enrich(context.Background(), m, now)
	if res.Source != SourceCache {
		t.Errorf("second call: source %q, want cache", res.Source)
	}
	if fc.calls != 1 {
		t.Errorf("completer calls: got %d, want 1", fc.calls)
	}

	svc.Cache().Invalidate("m1")
	svc.Enrich(context.Background(), m, now)
	if fc.calls != 2 {
		t.Errorf("after invalidate: got %d calls, want 2", fc.calls)
	}
}

func TestService_FallsBackOnError(t *testing.T) {
	tests := []struct {
		name string
		fc   *fakeCompleter
	}{
		{"network error", &fakeCompleter{err: errors.New("connection refused")}},
		{"malformed", &fakeCompleter{text: "no idea"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache(time.Hour)
			svc := NewService(NewLLM(tt.fc, nil), cache, time.Second)
			m := memo.Memo{ID: "m1", Type: memo.TypeBacklog, Title: "Clean garage"}

			res := svc.Enrich(context.Background(), m, now)
			if !res.Fallback || res.Source != SourceRules || res.Err == nil {
				t.Fatalf("got %+v", res)
			}
			if res.Fields.Genre != GenreChores {
				t.Errorf("genre: got %q, want chores", res.Fields.Genre)
			}
			if cache.Len() != 0 {
				t.Error("fallback results should not be cached")
			}
		})
	}
}

func TestService_RulesOnly(t *testing.T) {
	svc := NewService(nil, nil, 0)
	res := svc.Enrich(context.Background(), memo.Memo{ID: "x", Type: memo.TypeRoutine, Title: "Yoga"}, now)
	if res.Source != SourceRules || res.Fallback {
		t.Errorf("got %+v", res)
	}
	if res.Fields.TotalDurationExpected != 0 {
		t.Error("routines have no expected total")
	}
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(0)
	c.Set("a", Fields{Genre: "x"})
	c.Set("b", Fields{Genre: "y"})
	if f, ok := c.Get("a"); !ok || f.Genre != "x" {
		t.Errorf("Get(a): got %+v, %v", f, ok)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear: got %d", c.Len())
	}
}

func TestApply_OnlyFillsMissing(t *testing.T) {
	m := memo.Memo{ID: "m", Type: memo.TypeDeadline, Importance: memo.ImportanceLow, SessionDuration: 25}
	got := Apply(m, Fields{Genre: "study", Importance: memo.ImportanceHigh, SessionDuration: 60, TotalDurationExpected: 200})
	if got.Importance != memo.ImportanceLow || got.SessionDuration != 25 {
		t.Errorf("user values overwritten: %+v", got)
	}
	if got.Genre != "study" || got.TotalDurationExpected != 200 {
		t.Errorf("missing values not filled: %+v", got)
	}
	if m.Genre != "" {
		t.Error("Apply must not mutate its input")
	}
	if Needs(got) {
		t.Error("fully enriched memo should not need enrichment")
	}
}

func TestTruncateWithoutTokenizer(t *testing.T) {
	long := string(make([]rune, 1000))
	if got := []rune(truncate(nil, long, 10)); len(got) != 40 {
		t.Errorf("got %d runes, want 40", len(got))
	}
}
