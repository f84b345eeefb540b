package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/draftservice"
	"github.com/starford/dagaz/internal/feed"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// ah also serves GET /media/{filename} outside this router; the caller
// owns its construction.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(drafts *draftservice.Service, generator TimelineGenerator, analyzer AnalysisGenerator, searcher feed.Searcher, ah *AttachmentHandler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(drafts, generator, analyzer, searcher)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Drafts CRUD.
	r.Get("/drafts", h.ListDrafts)
	r.Post("/drafts", h.CreateDraft)
	r.Get("/drafts/{id}", h.GetDraft)
	r.Patch("/drafts/{id}", h.UpdateDraft)
	r.Delete("/drafts/{id}", h.DeleteDraft)

	// Timeline block edits.
	r.Post("/drafts/{id}/timeline/events", h.AppendEvent)
	r.Patch("/drafts/{id}/timeline/events/{blockID}", h.PatchEvent)
	r.Post("/drafts/{id}/timeline/images", h.AppendImage)
	r.Delete("/drafts/{id}/timeline/blocks/{blockID}", h.RemoveBlock)

	// Generation and ranking.
	r.Post("/timeline/generate", h.GenerateTimeline)
	r.Post("/analysis/generate", h.GenerateAnalysis)
	r.Post("/sources/rank", h.RankSource)

	// Attachments (auth-protected).
	r.Get("/attachments", ah.List)
	r.Post("/attachments", ah.Upload)
	r.Delete("/attachments/{filename}", ah.Delete)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
