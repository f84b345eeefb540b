package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/dagaz/internal/llm"
	"github.com/starford/dagaz/internal/settings"
)

type fakeLLM struct {
	response string
	err      error
	lastReq  llm.Request
	calls    int
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	f.lastReq = req
	return f.response, f.err
}

func newGen(f *fakeLLM) *Generator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGenerator(f, settings.Static(settings.Defaults()), logger)
}

func TestGenerateParsesItems(t *testing.T) {
	f := &fakeLLM{response: `{"items":[{"label":" EU Commission ","detail":"Regulator."},{"label":"","detail":""}]}`}
	got := newGen(f).Generate(context.Background(), "Topic", "Ov", KindStakeholders)

	if len(got) != 1 {
		t.Fatalf("items = %d, want 1 (blank pair dropped)", len(got))
	}
	if got[0].Label != "EU Commission" {
		t.Errorf("label = %q", got[0].Label)
	}
	if !strings.Contains(f.lastReq.Messages[1].Content, "stakeholders") {
		t.Error("kind not substituted into prompt")
	}
}

func TestGenerateDegradesOnBackendError(t *testing.T) {
	f := &fakeLLM{err: errors.New("unreachable")}
	got := newGen(f).Generate(context.Background(), "T", "", KindFAQ)
	if f.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", f.calls)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("items = %v, want empty non-nil", got)
	}
}

func TestGenerateDegradesOnNonJSON(t *testing.T) {
	f := &fakeLLM{response: "I cannot help with that."}
	got := newGen(f).Generate(context.Background(), "T", "", KindOutlook)
	if len(got) != 0 {
		t.Errorf("items = %v, want empty", got)
	}
}

func TestValidKind(t *testing.T) {
	for _, k := range []string{KindStakeholders, KindFAQ, KindOutlook} {
		if !ValidKind(k) {
			t.Errorf("ValidKind(%q) = false", k)
		}
	}
	if ValidKind("sentiment") {
		t.Error("unknown kind accepted")
	}
}
