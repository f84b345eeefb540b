package api

import (
	"time"

	"github.com/starford/dagaz/internal/model"
	"github.com/starford/dagaz/internal/store"
)

// CreateDraftRequest is the request body for creating a draft.
type CreateDraftRequest struct {
	Title       string   `json:"title" validate:"required"`
	Overview    string   `json:"overview"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Tags        []string `json:"tags"`
}

// DraftListResponse wraps paginated draft listings.
type DraftListResponse struct {
	Drafts []store.ListItem `json:"drafts" validate:"required"`
	Total  int              `json:"total" validate:"required"`
}

// RankSourceRequest is the callable input for source ranking.
type RankSourceRequest struct {
	EventText   string `json:"eventText" validate:"required"`
	Description string `json:"description"`
}

// RankSourceResponse carries the winning candidate, with explicit
// nulls when no usable candidate survived filtering.
type RankSourceResponse struct {
	ImageURL   *string `json:"imageUrl"`
	SourceLink *string `json:"sourceLink"`
}

// GenerateTimelineRequest is the callable input for timeline generation.
type GenerateTimelineRequest struct {
	Title    string `json:"title" validate:"required"`
	Overview string `json:"overview"`
}

// GenerateTimelineResponse always carries an events array; empty means
// "generation unavailable", not "topic has no events".
type GenerateTimelineResponse struct {
	Events []model.GeneratedEvent `json:"events" validate:"required"`
}

// GenerateAnalysisRequest is the callable input for analysis sections.
type GenerateAnalysisRequest struct {
	Title    string `json:"title" validate:"required"`
	Overview string `json:"overview"`
	Kind     string `json:"kind" validate:"required"`
}

// GenerateAnalysisResponse wraps generated analysis items.
type GenerateAnalysisResponse struct {
	Items []model.AnalysisItem `json:"items" validate:"required"`
}

// AppendImageRequest adds an image block to a draft timeline.
type AppendImageRequest struct {
	URL     string `json:"url" validate:"required"`
	Caption string `json:"caption"`
	Credit  string `json:"credit"`
}

// AttachmentInfo describes one stored media file.
type AttachmentInfo struct {
	Filename  string    `json:"filename" validate:"required"`
	Size      int64     `json:"size" validate:"required"`
	UpdatedAt time.Time `json:"updated_at" validate:"required"`
	URL       string    `json:"url" validate:"required"`
}

// AttachmentListResponse wraps the media store listing.
type AttachmentListResponse struct {
	Attachments []AttachmentInfo `json:"attachments" validate:"required"`
}

// AttachmentUploadResponse is returned after a successful media upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" validate:"required"`
	Size     int64  `json:"size" validate:"required"`
	URL      string `json:"url" validate:"required"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
