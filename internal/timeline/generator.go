// Package timeline coerces a chat-completion backend into producing a
// valid JSON timeline for a topic. The protocol is an explicit state
// progression: ATTEMPT, then on parse failure exactly one RETRY with a
// stricter prompt and a reduced token budget, then DEGRADED (empty
// result). Callers must treat an empty list as "generation
// unavailable", not as "topic has no events".
package timeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/starford/dagaz/internal/llm"
	"github.com/starford/dagaz/internal/model"
	"github.com/starford/dagaz/internal/settings"
)

// Token budgets and sampling for the two attempts. Low temperature
// biases the backend toward deterministic, factual output.
const (
	attemptMaxTokens = 4096
	retryMaxTokens   = 3000
	temperature      = 0.1
)

// retryOverride is appended to the user prompt on the second attempt.
const retryOverride = "\n\nIMPORTANT: your previous answer could not be parsed. " +
	"Respond with VALID JSON ONLY and nothing else. Limit the timeline to at " +
	"most 12 events and keep every description under two sentences."

type state int

const (
	stateAttempt state = iota
	stateRetry
	stateDegraded
)

// Generator runs the generation protocol.
type Generator struct {
	llm      llm.Client
	settings settings.Provider
	logger   *slog.Logger
}

// NewGenerator wires a generator.
func NewGenerator(client llm.Client, provider settings.Provider, logger *slog.Logger) *Generator {
	return &Generator{llm: client, settings: provider, logger: logger}
}

// Generate produces a sanitized event list for the topic. It never
// returns an error: transport failures and twice-unparseable output
// both degrade to an empty (non-nil) list. Raw model output never
// escapes this function.
func (g *Generator) Generate(ctx context.Context, title, overview string) []model.GeneratedEvent {
	prompts := g.settings.Prompts()
	userPrompt := settings.Render(prompts.TimelineUser, title, overview)

	for st := stateAttempt; st != stateDegraded; {
		req := llm.Request{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: prompts.TimelineSystem},
				{Role: llm.RoleUser, Content: userPrompt},
			},
			Temperature: temperature,
			MaxTokens:   attemptMaxTokens,
		}
		if st == stateRetry {
			req.Messages[1].Content = userPrompt + retryOverride
			req.MaxTokens = retryMaxTokens
		}

		content, err := g.llm.Complete(ctx, req)
		if err != nil {
			// Transport-level failure is never retried.
			g.logger.Error("timeline: backend call failed",
				slog.String("title", title), slog.String("error", err.Error()))
			return []model.GeneratedEvent{}
		}

		events, ok := parseEvents(content)
		if ok {
			return sanitizeEvents(events)
		}

		if st == stateAttempt {
			g.logger.Warn("timeline: unparseable response, retrying once",
				slog.String("title", title))
			st = stateRetry
			continue
		}
		g.logger.Warn("timeline: retry also unparseable, degrading to empty",
			slog.String("title", title))
		st = stateDegraded
	}
	return []model.GeneratedEvent{}
}

// parseEvents validates the untrusted backend response: it must be a
// JSON object carrying an "events" array. Markdown code fences around
// the JSON are tolerated.
func parseEvents(content string) ([]any, bool) {
	trimmed := stripFences(content)

	var top map[string]any
	if err := json.Unmarshal([]byte(trimmed), &top); err != nil {
		return nil, false
	}
	events, ok := top["events"].([]any)
	if !ok {
		return nil, false
	}
	return events, true
}

func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// sanitizeEvents maps loose parsed events into the strict value type.
// Mandatory even on the success path. The result is always non-nil.
func sanitizeEvents(raw []any) []model.GeneratedEvent {
	out := make([]model.GeneratedEvent, 0, len(raw))
	for _, item := range raw {
		obj, _ := item.(map[string]any)
		out = append(out, sanitizeEvent(obj))
	}
	return out
}

func sanitizeEvent(obj map[string]any) model.GeneratedEvent {
	ev := model.GeneratedEvent{
		Title:       looseString(obj["title"]),
		Description: looseString(obj["description"]),
		Importance:  looseImportance(obj),
		Sources:     []model.SourceItem{},
	}
	if d := looseString(obj["date"]); d != "" {
		ev.Date = &d
	}
	if srcs, ok := obj["sources"].([]any); ok {
		for _, s := range srcs {
			ev.Sources = append(ev.Sources, sanitizeSource(s))
		}
	}
	return ev
}

func sanitizeSource(raw any) model.SourceItem {
	obj, _ := raw.(map[string]any)
	item := model.SourceItem{
		Title:      looseString(obj["title"]),
		Link:       looseString(obj["link"]),
		SourceName: looseString(obj["sourceName"]),
		Provider:   looseString(obj["provider"]),
	}
	if item.Provider == "" {
		item.Provider = model.ProviderManual
	}
	if u := looseString(obj["imageUrl"]); u != "" {
		item.ImageURL = &u
	}
	if d := looseString(obj["pubDate"]); d != "" {
		item.PubDate = &d
	}
	return item
}

func looseString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// looseImportance accepts "importance" or the legacy "significance"
// key and coerces any invalid value to 2 (medium).
func looseImportance(obj map[string]any) int {
	for _, key := range []string{"importance", "significance"} {
		if n, ok := obj[key].(float64); ok {
			v := int(n)
			if v == 1 || v == 2 || v == 3 {
				return v
			}
		}
	}
	return 2
}
