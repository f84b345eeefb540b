// Package settings provides the prompt-template configuration used by
// the generation endpoints. Templates live in a YAML document that can
// change while the server runs; the provider reloads it on file change
// and falls back to hardcoded defaults when the document is absent.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Prompts holds the generation prompt templates. User templates use
// {{title}}, {{overview}} and {{kind}} placeholders; only the first
// occurrence of each is substituted.
type Prompts struct {
	TimelineSystem string `yaml:"timeline_system"`
	TimelineUser   string `yaml:"timeline_user"`
	AnalysisSystem string `yaml:"analysis_system"`
	AnalysisUser   string `yaml:"analysis_user"`
}

// Provider yields the current prompt configuration. Implementations
// must be safe for concurrent use.
type Provider interface {
	Prompts() Prompts
}

// Defaults returns the built-in prompt set used when no settings
// document exists or a field is left empty.
func Defaults() Prompts {
	return Prompts{
		TimelineSystem: "You are a news research assistant. You produce factual, chronological " +
			"timelines of real-world events. You respond with strict JSON only, no prose, " +
			"no markdown fences.",
		TimelineUser: `Build a timeline of the key events for the topic "{{title}}".
Context: {{overview}}
Respond with a JSON object of the form
{"events":[{"date":"YYYY-MM-DD","title":"...","description":"...","importance":1,"sources":[{"title":"...","link":"...","sourceName":"..."}]}]}
Dates may be null when unknown. importance is 1 (minor), 2 (notable) or 3 (major).`,
		AnalysisSystem: "You are an editorial analyst. You respond with strict JSON only.",
		AnalysisUser: `For the topic "{{title}}" ({{overview}}), produce the {{kind}} section.
Respond with a JSON object of the form {"items":[{"label":"...","detail":"..."}]}.`,
	}
}

// Render substitutes title and overview into a user template. Only the
// first occurrence of each placeholder is replaced.
func Render(template, title, overview string) string {
	out := strings.Replace(template, "{{title}}", title, 1)
	return strings.Replace(out, "{{overview}}", overview, 1)
}

// RenderKind additionally substitutes the {{kind}} placeholder.
func RenderKind(template, title, overview, kind string) string {
	return strings.Replace(Render(template, title, overview), "{{kind}}", kind, 1)
}

// Static is a fixed prompt set, used in tests and as the no-file
// fallback.
type Static Prompts

// Prompts implements Provider.
func (s Static) Prompts() Prompts { return Prompts(s) }

// FileProvider reads prompts from a YAML document and refreshes them
// when the file changes on disk.
type FileProvider struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	current Prompts
}

var _ Provider = (*FileProvider)(nil)

// NewFileProvider loads the document at path (missing file is fine:
// defaults apply until it appears).
func NewFileProvider(path string, logger *slog.Logger) *FileProvider {
	p := &FileProvider{path: path, logger: logger, current: Defaults()}
	if err := p.reload(); err != nil {
		logger.Warn("settings: initial load failed, using defaults",
			slog.String("path", path), slog.String("error", err.Error()))
	}
	return p
}

// Prompts returns the current prompt set.
func (p *FileProvider) Prompts() Prompts {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// reload re-reads the settings document. Empty fields keep their
// default values so a partial document is valid.
func (p *FileProvider) reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			p.mu.Lock()
			p.current = Defaults()
			p.mu.Unlock()
			return nil
		}
		return fmt.Errorf("settings: read %s: %w", p.path, err)
	}

	var loaded Prompts
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("settings: parse %s: %w", p.path, err)
	}

	merged := Defaults()
	if loaded.TimelineSystem != "" {
		merged.TimelineSystem = loaded.TimelineSystem
	}
	if loaded.TimelineUser != "" {
		merged.TimelineUser = loaded.TimelineUser
	}
	if loaded.AnalysisSystem != "" {
		merged.AnalysisSystem = loaded.AnalysisSystem
	}
	if loaded.AnalysisUser != "" {
		merged.AnalysisUser = loaded.AnalysisUser
	}

	p.mu.Lock()
	p.current = merged
	p.mu.Unlock()
	return nil
}

// Watch reloads the document whenever it changes, until ctx is
// cancelled. The parent directory is watched so editors that replace
// the file via rename are handled.
func (p *FileProvider) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings: new watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(p.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("settings: watch %s: %w", dir, err)
	}

	p.logger.Info("settings: watching", slog.String("path", p.path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(p.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if err := p.reload(); err != nil {
				p.logger.Warn("settings: reload failed", slog.String("error", err.Error()))
				continue
			}
			p.logger.Info("settings: reloaded", slog.String("path", p.path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("settings: watcher error", slog.String("error", err.Error()))
		}
	}
}
