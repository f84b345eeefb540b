package timeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/dagaz/internal/llm"
	"github.com/starford/dagaz/internal/model"
	"github.com/starford/dagaz/internal/settings"
)

// fakeLLM replays canned responses in order.
type fakeLLM struct {
	responses []string
	errs      []error
	requests  []llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no more responses")
}

func newGen(f *fakeLLM) *Generator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGenerator(f, settings.Static(settings.Defaults()), logger)
}

func TestGenerateHappyPath(t *testing.T) {
	f := &fakeLLM{responses: []string{
		`{"events":[{"date":"2024-01-02","title":"A","description":"B","importance":3,
		  "sources":[{"title":"src","link":"https://s.example.com","sourceName":"S"}]}]}`,
	}}
	got := newGen(f).Generate(context.Background(), "Topic", "Overview")

	if len(got) != 1 {
		t.Fatalf("events = %d, want 1", len(got))
	}
	ev := got[0]
	if ev.Date == nil || *ev.Date != "2024-01-02" {
		t.Errorf("date = %v", ev.Date)
	}
	if ev.Title != "A" || ev.Description != "B" || ev.Importance != 3 {
		t.Errorf("event = %+v", ev)
	}
	if ev.Sources[0].Provider != model.ProviderManual {
		t.Errorf("source provider = %q, want manual", ev.Sources[0].Provider)
	}
	if len(f.requests) != 1 {
		t.Errorf("backend called %d times, want 1", len(f.requests))
	}
}

func TestGenerateDefaultsMissingFields(t *testing.T) {
	f := &fakeLLM{responses: []string{`{"events":[{"title":"A","description":"B"}]}`}}
	got := newGen(f).Generate(context.Background(), "T", "")

	if len(got) != 1 {
		t.Fatalf("events = %d", len(got))
	}
	ev := got[0]
	if ev.Date != nil {
		t.Errorf("date = %v, want nil", ev.Date)
	}
	if ev.Importance != 2 {
		t.Errorf("importance = %d, want 2", ev.Importance)
	}
	if ev.Sources == nil || len(ev.Sources) != 0 {
		t.Errorf("sources = %v, want empty non-nil", ev.Sources)
	}
}

func TestGenerateCoercesOutOfRangeImportance(t *testing.T) {
	f := &fakeLLM{responses: []string{
		`{"events":[{"title":"A","importance":0},{"title":"B","importance":-3},{"title":"C","importance":7}]}`,
	}}
	got := newGen(f).Generate(context.Background(), "T", "")
	for _, ev := range got {
		if ev.Importance != 2 {
			t.Errorf("event %q importance = %d, want 2", ev.Title, ev.Importance)
		}
	}
}

func TestGenerateRetriesOnceOnParseFailure(t *testing.T) {
	f := &fakeLLM{responses: []string{
		"Sure! Here is the timeline you asked for.",
		`{"events":[{"title":"Recovered","description":"ok"}]}`,
	}}
	got := newGen(f).Generate(context.Background(), "T", "O")

	if len(f.requests) != 2 {
		t.Fatalf("backend called %d times, want 2", len(f.requests))
	}
	if len(got) != 1 || got[0].Title != "Recovered" {
		t.Errorf("events = %+v", got)
	}
	// Retry carries the strict override and the reduced budget.
	retry := f.requests[1]
	if retry.MaxTokens != retryMaxTokens {
		t.Errorf("retry max_tokens = %d, want %d", retry.MaxTokens, retryMaxTokens)
	}
	if !strings.Contains(retry.Messages[1].Content, "VALID JSON ONLY") {
		t.Error("retry prompt missing override instruction")
	}
	if f.requests[0].MaxTokens != attemptMaxTokens {
		t.Errorf("first attempt max_tokens = %d, want %d", f.requests[0].MaxTokens, attemptMaxTokens)
	}
}

func TestGenerateTwoParseFailuresDegradeToEmpty(t *testing.T) {
	f := &fakeLLM{responses: []string{"not json", "still not json"}}
	got := newGen(f).Generate(context.Background(), "T", "")

	if len(f.requests) != 2 {
		t.Fatalf("backend called %d times, want exactly 2", len(f.requests))
	}
	if got == nil || len(got) != 0 {
		t.Errorf("events = %v, want empty non-nil", got)
	}
}

func TestGenerateTransportFailureIsNotRetried(t *testing.T) {
	f := &fakeLLM{errs: []error{errors.New("rate limited")}}
	got := newGen(f).Generate(context.Background(), "T", "")

	if len(f.requests) != 1 {
		t.Fatalf("backend called %d times, want 1", len(f.requests))
	}
	if len(got) != 0 {
		t.Errorf("events = %v, want empty", got)
	}
}

func TestGenerateMissingEventsFieldTriggersRetry(t *testing.T) {
	f := &fakeLLM{responses: []string{
		`{"timeline":[]}`,
		`{"events":"not an array"}`,
	}}
	got := newGen(f).Generate(context.Background(), "T", "")
	if len(f.requests) != 2 {
		t.Fatalf("backend called %d times, want 2", len(f.requests))
	}
	if len(got) != 0 {
		t.Errorf("events = %v, want empty", got)
	}
}

func TestGenerateToleratesCodeFences(t *testing.T) {
	f := &fakeLLM{responses: []string{
		"```json\n{\"events\":[{\"title\":\"Fenced\"}]}\n```",
	}}
	got := newGen(f).Generate(context.Background(), "T", "")
	if len(got) != 1 || got[0].Title != "Fenced" {
		t.Errorf("events = %+v", got)
	}
}

func TestGenerateSubstitutesPlaceholdersFirstOccurrenceOnly(t *testing.T) {
	f := &fakeLLM{responses: []string{`{"events":[]}`}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := settings.Static{
		TimelineSystem: "sys",
		TimelineUser:   "topic={{title}} again={{title}} ctx={{overview}}",
	}
	g := NewGenerator(f, provider, logger)
	g.Generate(context.Background(), "X", "Y")

	prompt := f.requests[0].Messages[1].Content
	want := "topic=X again={{title}} ctx=Y"
	if prompt != want {
		t.Errorf("prompt = %q, want %q", prompt, want)
	}
}
