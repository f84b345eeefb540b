// Package normalize reconciles the legacy flat timeline event shape
// with the tagged block shape used by the shared data model, and
// enforces the persistence invariant that stored documents never carry
// absent-sentinel fields.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/dagaz/internal/model"
)

// CoerceSignificance clamps v into the valid {1,2,3} range. Anything
// else, including zero and out-of-range values, becomes 2 (medium).
func CoerceSignificance(v int) int {
	if v == 1 || v == 2 || v == 3 {
		return v
	}
	return 2
}

// Source returns s with every optional field defaulted: blank strings
// stay blank, provider falls back to "manual" so provenance is always
// tagged. Nullable fields (imageUrl, pubDate) are left as-is.
func Source(s model.SourceItem) model.SourceItem {
	s.Title = strings.TrimSpace(s.Title)
	s.Link = strings.TrimSpace(s.Link)
	s.SourceName = strings.TrimSpace(s.SourceName)
	if s.Provider == "" {
		s.Provider = model.ProviderManual
	}
	return s
}

func sources(in []model.SourceItem) []model.SourceItem {
	out := make([]model.SourceItem, len(in))
	for i, s := range in {
		out[i] = Source(s)
	}
	return out
}

// EventToBlock converts a legacy flat event into a tagged event block
// with a freshly generated identifier. A nil date becomes the empty
// string on this path; the generation path keeps nil dates instead.
// The two defaults differ on purpose and downstream consumers depend
// on both.
func EventToBlock(legacy model.LegacyEvent) *model.EventBlock {
	date := ""
	if legacy.Date != nil {
		date = *legacy.Date
	}
	return &model.EventBlock{
		ID:            uuid.NewString(),
		Type:          model.BlockTypeEvent,
		Date:          date,
		Event:         strings.TrimSpace(legacy.Event),
		Description:   strings.TrimSpace(legacy.Description),
		Significance:  CoerceSignificance(legacy.Significance),
		Sources:       sources(legacy.Sources),
		FactStatus:    legacy.FactStatus,
		FactNote:      legacy.FactNote,
		FactUpdatedAt: legacy.FactUpdatedAt,
	}
}

// GeneratedToBlocks converts sanitized generation output into event
// blocks for appending to a draft timeline.
func GeneratedToBlocks(events []model.GeneratedEvent) model.BlockList {
	out := make(model.BlockList, 0, len(events))
	for _, ev := range events {
		legacy := model.LegacyEvent{
			Date:         ev.Date,
			Event:        ev.Title,
			Description:  ev.Description,
			Significance: ev.Importance,
			Sources:      ev.Sources,
		}
		out = append(out, EventToBlock(legacy))
	}
	return out
}

// ApplyEventPatch merges patch onto existing and returns the result.
// A field is overwritten only when present in the patch: nil pointer
// means "keep existing", a pointer to an empty value explicitly clears.
// The input block is not mutated.
func ApplyEventPatch(existing model.EventBlock, patch model.EventPatch) *model.EventBlock {
	merged := existing
	merged.Sources = append([]model.SourceItem(nil), existing.Sources...)

	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	if patch.Event != nil {
		merged.Event = strings.TrimSpace(*patch.Event)
	}
	if patch.Description != nil {
		merged.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Significance != nil {
		merged.Significance = CoerceSignificance(*patch.Significance)
	}
	if patch.Sources != nil {
		merged.Sources = sources(*patch.Sources)
	}
	if patch.FactStatus != nil {
		merged.FactStatus = *patch.FactStatus
	}
	if patch.FactNote != nil {
		merged.FactNote = *patch.FactNote
	}
	if patch.FactUpdatedAt != nil {
		merged.FactUpdatedAt = patch.FactUpdatedAt
	}
	return &merged
}

// BlocksForRead returns a view of blocks where any event block missing
// its type discriminator carries an explicit "event" tag. The input is
// never mutated and the filled tag is never written back; records stay
// untagged in the store until independently modified.
func BlocksForRead(blocks model.BlockList) model.BlockList {
	out := make(model.BlockList, len(blocks))
	for i, b := range blocks {
		if ev, ok := b.(*model.EventBlock); ok && ev.Type == "" {
			view := *ev
			view.Type = model.BlockTypeEvent
			out[i] = &view
			continue
		}
		out[i] = b
	}
	return out
}

// StripAbsent recursively removes every object field whose value is
// null, plus the legacy "origin" field, from a decoded JSON value.
// Arrays and nested objects are traversed; the input is not modified.
func StripAbsent(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if inner == nil || k == "origin" {
				continue
			}
			out[k] = StripAbsent(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = StripAbsent(inner)
		}
		return out
	default:
		return v
	}
}

// Document marshals v, strips absent-sentinel fields, and returns the
// persistence-safe JSON bytes. Every store write goes through this.
func Document(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize: marshal document: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("normalize: decode document: %w", err)
	}
	out, err := json.Marshal(StripAbsent(decoded))
	if err != nil {
		return nil, fmt.Errorf("normalize: encode document: %w", err)
	}
	return out, nil
}
