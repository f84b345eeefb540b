// Package analysis generates draft enrichment sections (stakeholders,
// FAQs, future outlook) through the chat-completion backend. Unlike
// the timeline protocol it is a single-shot call: on any failure it
// degrades to an empty item list.
package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/starford/dagaz/internal/llm"
	"github.com/starford/dagaz/internal/model"
	"github.com/starford/dagaz/internal/settings"
)

// Section kinds.
const (
	KindStakeholders = "stakeholders"
	KindFAQ          = "faq"
	KindOutlook      = "outlook"
)

// ValidKind reports whether kind names a known analysis section.
func ValidKind(kind string) bool {
	switch kind {
	case KindStakeholders, KindFAQ, KindOutlook:
		return true
	}
	return false
}

// Generator produces analysis sections.
type Generator struct {
	llm      llm.Client
	settings settings.Provider
	logger   *slog.Logger
}

// NewGenerator wires a generator.
func NewGenerator(client llm.Client, provider settings.Provider, logger *slog.Logger) *Generator {
	return &Generator{llm: client, settings: provider, logger: logger}
}

// Generate returns sanitized analysis items for the section, or an
// empty non-nil list when the backend fails or answers with an
// unusable shape.
func (g *Generator) Generate(ctx context.Context, title, overview, kind string) []model.AnalysisItem {
	prompts := g.settings.Prompts()
	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.AnalysisSystem},
			{Role: llm.RoleUser, Content: settings.RenderKind(prompts.AnalysisUser, title, overview, kind)},
		},
		Temperature: 0.3,
		MaxTokens:   2048,
	}

	content, err := g.llm.Complete(ctx, req)
	if err != nil {
		g.logger.Error("analysis: backend call failed",
			slog.String("kind", kind), slog.String("error", err.Error()))
		return []model.AnalysisItem{}
	}

	var top struct {
		Items []struct {
			Label  string `json:"label"`
			Detail string `json:"detail"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &top); err != nil {
		g.logger.Warn("analysis: unparseable response",
			slog.String("kind", kind), slog.String("error", err.Error()))
		return []model.AnalysisItem{}
	}

	out := make([]model.AnalysisItem, 0, len(top.Items))
	for _, item := range top.Items {
		label := strings.TrimSpace(item.Label)
		detail := strings.TrimSpace(item.Detail)
		if label == "" && detail == "" {
			continue
		}
		out = append(out, model.AnalysisItem{Label: label, Detail: detail})
	}
	return out
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
