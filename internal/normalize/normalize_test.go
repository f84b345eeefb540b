package normalize

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/dagaz/internal/model"
)

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func TestCoerceSignificance(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 3, 0: 2, -1: 2, 4: 2, 100: 2}
	for in, want := range cases {
		if got := CoerceSignificance(in); got != want {
			t.Errorf("CoerceSignificance(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestEventToBlockDefaults(t *testing.T) {
	b := EventToBlock(model.LegacyEvent{
		Event:       "  Treaty signed  ",
		Description: "Details.",
	})
	if b.ID == "" {
		t.Error("expected generated id")
	}
	if b.Type != model.BlockTypeEvent {
		t.Errorf("type = %q", b.Type)
	}
	// Missing date becomes the empty string on this path, not null.
	if b.Date != "" {
		t.Errorf("date = %q, want empty string", b.Date)
	}
	if b.Event != "Treaty signed" {
		t.Errorf("event = %q", b.Event)
	}
	if b.Significance != 2 {
		t.Errorf("significance = %d, want 2", b.Significance)
	}
}

func TestEventToBlockNormalizesSources(t *testing.T) {
	b := EventToBlock(model.LegacyEvent{
		Event: "e",
		Sources: []model.SourceItem{
			{Title: " Reuters piece ", Link: "https://example.com"},
		},
	})
	src := b.Sources[0]
	if src.Provider != model.ProviderManual {
		t.Errorf("provider = %q, want manual", src.Provider)
	}
	if src.Title != "Reuters piece" {
		t.Errorf("title = %q", src.Title)
	}
}

func TestApplyEventPatchEmptyPatchIsIdentity(t *testing.T) {
	img := strptr("https://example.com/a.png")
	existing := model.EventBlock{
		ID:           "b1",
		Type:         model.BlockTypeEvent,
		Date:         "2024-01-01",
		Event:        "Original",
		Description:  "Desc",
		Significance: 3,
		Sources:      []model.SourceItem{{Title: "t", ImageURL: img, Provider: model.ProviderSonar}},
	}
	got := ApplyEventPatch(existing, model.EventPatch{})
	if !reflect.DeepEqual(*got, existing) {
		t.Errorf("empty patch changed block:\n got %+v\nwant %+v", *got, existing)
	}
}

func TestApplyEventPatchDistinguishesEmptyFromAbsent(t *testing.T) {
	existing := model.EventBlock{ID: "b1", Event: "keep", Description: "old"}
	got := ApplyEventPatch(existing, model.EventPatch{Description: strptr("")})
	if got.Event != "keep" {
		t.Errorf("absent field overwritten: event = %q", got.Event)
	}
	if got.Description != "" {
		t.Errorf("explicit empty not applied: description = %q", got.Description)
	}
}

func TestApplyEventPatchCoercesSignificance(t *testing.T) {
	got := ApplyEventPatch(model.EventBlock{Significance: 1}, model.EventPatch{Significance: intptr(9)})
	if got.Significance != 2 {
		t.Errorf("significance = %d, want 2", got.Significance)
	}
}

func TestApplyEventPatchDoesNotMutateInput(t *testing.T) {
	existing := model.EventBlock{
		ID:      "b1",
		Event:   "orig",
		Sources: []model.SourceItem{{Title: "s1"}},
	}
	_ = ApplyEventPatch(existing, model.EventPatch{
		Event:   strptr("new"),
		Sources: &[]model.SourceItem{{Title: "s2"}},
	})
	if existing.Event != "orig" || existing.Sources[0].Title != "s1" {
		t.Errorf("input mutated: %+v", existing)
	}
}

func TestBlocksForReadTagsUntaggedBlocks(t *testing.T) {
	untagged := &model.EventBlock{ID: "b1", Event: "old record"}
	tagged := &model.ImageBlock{ID: "b2", Type: model.BlockTypeImage, URL: "u"}
	in := model.BlockList{untagged, tagged}

	out := BlocksForRead(in)

	if out[0].(*model.EventBlock).Type != model.BlockTypeEvent {
		t.Error("untagged block not presented as event")
	}
	// Input must not be mutated: the shim is a view, not a migration.
	if untagged.Type != "" {
		t.Errorf("input block mutated: type = %q", untagged.Type)
	}
	if out[1] != model.Block(tagged) {
		t.Error("tagged block should pass through unchanged")
	}
}

func TestStripAbsentRemovesNullsAtEveryDepth(t *testing.T) {
	doc := map[string]any{
		"title":  "t",
		"date":   nil,
		"origin": "legacy-import",
		"sources": []any{
			map[string]any{
				"title":    "s",
				"imageUrl": nil,
				"nested":   map[string]any{"pubDate": nil, "keep": "v"},
			},
		},
	}
	got := StripAbsent(doc).(map[string]any)

	if _, ok := got["date"]; ok {
		t.Error("null field survived strip")
	}
	if _, ok := got["origin"]; ok {
		t.Error("origin field survived strip")
	}
	src := got["sources"].([]any)[0].(map[string]any)
	if _, ok := src["imageUrl"]; ok {
		t.Error("null field inside array survived strip")
	}
	nested := src["nested"].(map[string]any)
	if _, ok := nested["pubDate"]; ok {
		t.Error("null field at depth 3 survived strip")
	}
	if nested["keep"] != "v" {
		t.Error("non-null field dropped")
	}
	// Purity: original document untouched.
	if doc["date"] != nil {
		t.Error("input mutated")
	}
	if _, ok := doc["origin"]; !ok {
		t.Error("input mutated: origin removed from source doc")
	}
}

func TestDocumentStripsNullableSourceFields(t *testing.T) {
	ev := model.EventBlock{
		ID:      "b1",
		Type:    model.BlockTypeEvent,
		Event:   "e",
		Sources: []model.SourceItem{{Title: "s"}}, // ImageURL and PubDate nil
	}
	raw, err := Document(ev)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	s := string(raw)
	if strings.Contains(s, "imageUrl") || strings.Contains(s, "pubDate") {
		t.Errorf("nullable fields persisted: %s", s)
	}
	// Round-trips back into the typed shape.
	var back model.EventBlock
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if back.Sources[0].ImageURL != nil {
		t.Error("stripped field should read back as nil")
	}
}

func TestGeneratedToBlocksKeepsOrderAndMapsFields(t *testing.T) {
	date := strptr("2024-05-01")
	blocks := GeneratedToBlocks([]model.GeneratedEvent{
		{Date: date, Title: "A", Description: "d1", Importance: 3},
		{Title: "B", Description: "d2", Importance: 2},
	})
	if len(blocks) != 2 {
		t.Fatalf("len = %d", len(blocks))
	}
	first := blocks[0].(*model.EventBlock)
	if first.Event != "A" || first.Date != "2024-05-01" || first.Significance != 3 {
		t.Errorf("first block = %+v", first)
	}
	second := blocks[1].(*model.EventBlock)
	if second.Date != "" {
		t.Errorf("missing date should become empty string in block form, got %q", second.Date)
	}
}
