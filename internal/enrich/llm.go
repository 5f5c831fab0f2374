package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gapfill/gapfill/internal/adapter"
	"github.com/gapfill/gapfill/internal/memo"
)

const (
	maxTitleTokens = 64
	minSession     = 5
	maxSession     = 480
	maxTotal       = 100 * 60
)

// ErrMalformed is returned when the model's answer cannot be used.
var ErrMalformed = errors.New("enrich: malformed model response")

// LLM asks a language model for the missing fields.
type LLM struct {
	completer adapter.Completer
	tokenizer *Tokenizer // optional
}

// NewLLM creates an LLM enricher. tok may be nil.
func NewLLM(c adapter.Completer, tok *Tokenizer) *LLM {
	return &LLM{completer: c, tokenizer: tok}
}

const systemPrompt = `You classify personal to-do items for a scheduling assistant.
Answer with ONLY a compact JSON object, no prose and no markdown:
{"genre": "...", "importance": "low|medium|high", "session_duration": <minutes per sitting>, "total_duration_expected": <total minutes, 0 if open-ended>}`

// Enrich implements Enricher.
func (l *LLM) Enrich(ctx context.Context, m memo.Memo, now time.Time) (Fields, error) {
	if l.completer == nil {
		return Fields{}, errors.New("enrich: no completer configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", truncate(l.tokenizer, m.Title, maxTitleTokens))
	fmt.Fprintf(&b, "Type: %s\n", m.Type)
	if m.Deadline != nil {
		fmt.Fprintf(&b, "Due in: %.1f days\n", m.Deadline.Sub(now).Hours()/24)
	}
	if m.RecurrenceGoal != nil {
		fmt.Fprintf(&b, "Goal: %d times per %s\n", m.RecurrenceGoal.Count, m.RecurrenceGoal.Period)
	}

	raw, err := l.completer.Complete(ctx, adapter.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserMessage:  b.String(),
		MaxTokens:    128,
		Temperature:  0.1,
		JSON:         true,
	})
	if err != nil {
		return Fields{}, err
	}
	return parseFields(raw)
}

type fieldsCandidate struct {
	Genre                 string  `json:"genre"`
	Importance            string  `json:"importance"`
	SessionDuration       float64 `json:"session_duration"`
	TotalDurationExpected float64 `json:"total_duration_expected"`
}

// parseFields extracts Fields from the model's output. Lenient: searches for
// the first '{' and last '}' to handle models that wrap the object in prose
// or markdown fences.
func parseFields(raw string) (Fields, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return Fields{}, fmt.Errorf("%w: no JSON object", ErrMalformed)
	}

	var c fieldsCandidate
	if err := json.Unmarshal([]byte(raw[start:end+1]), &c); err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	f := Fields{
		Genre:                 strings.ToLower(strings.TrimSpace(c.Genre)),
		Importance:            memo.Importance(strings.ToLower(strings.TrimSpace(c.Importance))),
		SessionDuration:       int(c.SessionDuration),
		TotalDurationExpected: int(c.TotalDurationExpected),
	}
	if f.Genre == "" {
		return Fields{}, fmt.Errorf("%w: empty genre", ErrMalformed)
	}
	if !memo.ValidImportance(f.Importance) {
		return Fields{}, fmt.Errorf("%w: importance %q", ErrMalformed, c.Importance)
	}
	if f.SessionDuration < minSession || f.SessionDuration > maxSession {
		return Fields{}, fmt.Errorf("%w: session duration %d", ErrMalformed, f.SessionDuration)
	}
	if f.TotalDurationExpected < 0 || f.TotalDurationExpected > maxTotal {
		return Fields{}, fmt.Errorf("%w: total duration %d", ErrMalformed, f.TotalDurationExpected)
	}
	return f, nil
}
