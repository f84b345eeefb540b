package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/analysis"
	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/draftservice"
	"github.com/starford/dagaz/internal/feed"
	"github.com/starford/dagaz/internal/model"
	"github.com/starford/dagaz/internal/rank"
	"github.com/starford/dagaz/internal/store"
	"github.com/starford/dagaz/internal/timeline"
)

const maxBodyBytes = 1 << 20 // 1 MB

// TimelineGenerator produces sanitized events for a topic.
type TimelineGenerator interface {
	Generate(ctx context.Context, title, overview string) []model.GeneratedEvent
}

// AnalysisGenerator produces analysis section items.
type AnalysisGenerator interface {
	Generate(ctx context.Context, title, overview, kind string) []model.AnalysisItem
}

var (
	_ TimelineGenerator = (*timeline.Generator)(nil)
	_ AnalysisGenerator = (*analysis.Generator)(nil)
)

// Handler holds API route handlers.
type Handler struct {
	drafts    *draftservice.Service
	generator TimelineGenerator
	analyzer  AnalysisGenerator
	searcher  feed.Searcher
}

// NewHandler creates a new Handler.
func NewHandler(drafts *draftservice.Service, generator TimelineGenerator, analyzer AnalysisGenerator, searcher feed.Searcher) *Handler {
	return &Handler{drafts: drafts, generator: generator, analyzer: analyzer, searcher: searcher}
}

// serviceError maps service-layer sentinels to HTTP responses.
func serviceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// ListDrafts handles GET /api/drafts.
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.drafts.List(r.Context(), store.ListQuery{
		Limit:  limit,
		Offset: offset,
		Status: q.Get("status"),
		Tag:    q.Get("tag"),
		Search: q.Get("q"),
		Sort:   q.Get("sort"),
	})
	if err != nil {
		serviceError(w, "list drafts", err)
		return
	}
	writeJSON(w, http.StatusOK, DraftListResponse{Drafts: items, Total: total})
}

// CreateDraft handles POST /api/drafts.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.drafts.Create(r.Context(), draftservice.CreateParams{
		Title:       req.Title,
		Overview:    req.Overview,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Tags:        req.Tags,
	})
	if err != nil {
		serviceError(w, "create draft", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// GetDraft handles GET /api/drafts/{id}.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		serviceError(w, "get draft", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// UpdateDraft handles PATCH /api/drafts/{id}. Fields absent from the
// body keep their stored values; writes are last-write-wins.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var patch model.DraftPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	d, err := h.drafts.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		serviceError(w, "update draft", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DeleteDraft handles DELETE /api/drafts/{id}.
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		serviceError(w, "delete draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AppendEvent handles POST /api/drafts/{id}/timeline/events.
func (h *Handler) AppendEvent(w http.ResponseWriter, r *http.Request) {
	var legacy model.LegacyEvent
	if !decodeBody(w, r, &legacy) {
		return
	}
	d, err := h.drafts.AppendEvent(r.Context(), chi.URLParam(r, "id"), legacy)
	if err != nil {
		serviceError(w, "append event", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// PatchEvent handles PATCH /api/drafts/{id}/timeline/events/{blockID}.
func (h *Handler) PatchEvent(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	d, err := h.drafts.PatchEvent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "blockID"), patch)
	if err != nil {
		serviceError(w, "patch event", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// AppendImage handles POST /api/drafts/{id}/timeline/images.
func (h *Handler) AppendImage(w http.ResponseWriter, r *http.Request) {
	var req AppendImageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.drafts.AppendImage(r.Context(), chi.URLParam(r, "id"), req.URL, req.Caption, req.Credit)
	if err != nil {
		serviceError(w, "append image", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// RemoveBlock handles DELETE /api/drafts/{id}/timeline/blocks/{blockID}.
func (h *Handler) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.RemoveBlock(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "blockID"))
	if err != nil {
		serviceError(w, "remove block", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GenerateTimeline handles POST /api/timeline/generate. Always answers
// 200 with an events array; an empty array means generation was
// unavailable.
func (h *Handler) GenerateTimeline(w http.ResponseWriter, r *http.Request) {
	var req GenerateTimelineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	events := h.generator.Generate(r.Context(), req.Title, req.Overview)
	writeJSON(w, http.StatusOK, GenerateTimelineResponse{Events: events})
}

// GenerateAnalysis handles POST /api/analysis/generate.
func (h *Handler) GenerateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req GenerateAnalysisRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	if !analysis.ValidKind(req.Kind) {
		writeJSON(w, http.StatusBadRequest, errorBody("kind must be one of stakeholders, faq, outlook"))
		return
	}
	items := h.analyzer.Generate(r.Context(), req.Title, req.Overview, req.Kind)
	writeJSON(w, http.StatusOK, GenerateAnalysisResponse{Items: items})
}

// RankSource handles POST /api/sources/rank. Unlike generation,
// upstream feed failure here is fatal to the request: the caller gets
// a generic internal error and the cause stays in the logs.
func (h *Handler) RankSource(w http.ResponseWriter, r *http.Request) {
	var req RankSourceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.EventText) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("eventText is required"))
		return
	}

	candidates, err := h.searcher.Search(r.Context(), req.EventText)
	if err != nil {
		slog.Error("source search failed",
			slog.String("eventText", req.EventText), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	res := rank.Rank(req.EventText, req.Description, candidates)
	writeJSON(w, http.StatusOK, RankSourceResponse{
		ImageURL:   nullable(res.ImageURL),
		SourceLink: nullable(res.SourceLink),
	})
}
