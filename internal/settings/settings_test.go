package settings

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderFirstOccurrenceOnly(t *testing.T) {
	got := Render("{{title}} and again {{title}}, overview: {{overview}}", "T", "O")
	want := "T and again {{title}}, overview: O"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderKind(t *testing.T) {
	got := RenderKind("{{kind}} for {{title}}", "T", "", "faq")
	if got != "faq for T" {
		t.Errorf("RenderKind = %q", got)
	}
}

func TestFileProviderMissingFileUsesDefaults(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "absent.yaml"), quietLogger())
	if p.Prompts() != Defaults() {
		t.Error("missing file should yield defaults")
	}
}

func TestFileProviderPartialDocumentKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("timeline_user: custom {{title}}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewFileProvider(path, quietLogger())
	got := p.Prompts()
	if got.TimelineUser != "custom {{title}}" {
		t.Errorf("timeline_user = %q", got.TimelineUser)
	}
	if got.TimelineSystem != Defaults().TimelineSystem {
		t.Error("unset field should keep its default")
	}
}

func TestFileProviderReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("timeline_system: v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewFileProvider(path, quietLogger())
	if p.Prompts().TimelineSystem != "v1" {
		t.Fatalf("initial = %q", p.Prompts().TimelineSystem)
	}

	if err := os.WriteFile(path, []byte("timeline_system: v2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := p.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if p.Prompts().TimelineSystem != "v2" {
		t.Errorf("after reload = %q", p.Prompts().TimelineSystem)
	}
}

func TestFileProviderMalformedDocumentKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("timeline_system: good\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewFileProvider(path, quietLogger())

	if err := os.WriteFile(path, []byte(":\tnot yaml ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := p.reload(); err == nil {
		t.Fatal("expected reload error for malformed YAML")
	}
	if p.Prompts().TimelineSystem != "good" {
		t.Error("failed reload should keep previous prompts")
	}
}

func TestDefaultsContainPlaceholders(t *testing.T) {
	d := Defaults()
	for _, tmpl := range []string{d.TimelineUser, d.AnalysisUser} {
		if !strings.Contains(tmpl, "{{title}}") {
			t.Errorf("template missing {{title}}: %q", tmpl)
		}
	}
}
