// Package model defines the editorial domain types: drafts, timeline
// events and blocks, sources, and analysis sections.
package model

import "time"

// Source providers tag where a source item came from.
const (
	ProviderManual = "manual"
	ProviderSonar  = "sonar"
	ProviderFeed   = "feed"
)

// Draft lifecycle statuses.
const (
	StatusDraft     = "draft"
	StatusReview    = "review"
	StatusPublished = "published"
)

// Fact-check statuses for timeline events.
const (
	FactDebated          = "debated"
	FactPartiallyDebated = "partially_debated"
	FactConsensus        = "consensus"
)

// SourceItem is a single citation attached to a timeline event.
// Provider defaults to "manual" so data provenance is always tagged.
type SourceItem struct {
	Title      string  `json:"title"`
	Link       string  `json:"link"`
	SourceName string  `json:"sourceName"`
	ImageURL   *string `json:"imageUrl"`
	PubDate    *string `json:"pubDate"`
	Provider   string  `json:"provider"`
}

// LegacyEvent is the flat timeline event record as produced by manual
// entry. It predates the tagged block shape; the normalize package maps
// it into an EventBlock before persistence.
type LegacyEvent struct {
	Date          *string      `json:"date"`
	Event         string       `json:"event"`
	Description   string       `json:"description"`
	Significance  int          `json:"significance"`
	Sources       []SourceItem `json:"sources"`
	FactStatus    string       `json:"factStatus,omitempty"`
	FactNote      string       `json:"factNote,omitempty"`
	FactUpdatedAt *time.Time   `json:"factUpdatedAt,omitempty"`
}

// GeneratedEvent is the sanitized output shape of the timeline
// generation protocol. Date stays nil when the model gave none; this
// intentionally differs from EventBlock's empty-string default.
type GeneratedEvent struct {
	Date        *string      `json:"date"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Importance  int          `json:"importance"`
	Sources     []SourceItem `json:"sources"`
}

// AnalysisItem is one structured pair in an analysis section.
type AnalysisItem struct {
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// Analysis groups the enrichment sections of a draft.
type Analysis struct {
	Stakeholders []AnalysisItem `json:"stakeholders"`
	FAQs         []AnalysisItem `json:"faqs"`
	Outlook      []AnalysisItem `json:"outlook"`
}

// Draft is the parent aggregate owned by the editorial console. A draft
// exclusively owns its embedded timeline and analysis collections.
type Draft struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Overview    string    `json:"overview"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	Timeline    BlockList `json:"timeline"`
	Analysis    Analysis  `json:"analysis"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DraftPatch is a partial update to draft metadata. Nil fields are
// "not provided" and keep the existing value.
type DraftPatch struct {
	Title       *string   `json:"title"`
	Overview    *string   `json:"overview"`
	Category    *string   `json:"category"`
	Subcategory *string   `json:"subcategory"`
	Tags        *[]string `json:"tags"`
	Status      *string   `json:"status"`
	Analysis    *Analysis `json:"analysis"`
}

// EventPatch is a strict-merge patch for an event block. A nil field
// means "absent, keep existing"; a non-nil pointer to an empty value
// explicitly clears the field. This distinction is why the patch is not
// a plain struct copy.
type EventPatch struct {
	Date          *string       `json:"date"`
	Event         *string       `json:"event"`
	Description   *string       `json:"description"`
	Significance  *int          `json:"significance"`
	Sources       *[]SourceItem `json:"sources"`
	FactStatus    *string       `json:"factStatus"`
	FactNote      *string       `json:"factNote"`
	FactUpdatedAt *time.Time    `json:"factUpdatedAt"`
}

// ValidStatus reports whether s is a known draft lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusReview, StatusPublished:
		return true
	}
	return false
}
