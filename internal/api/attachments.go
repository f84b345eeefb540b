package api

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/starford/dagaz/internal/storage"
)

const maxUploadBytes = 10 << 20 // 10 MB

var (
	allowedExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true,
		".gif": true, ".webp": true, ".svg": true,
	}

	safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// AttachmentHandler accepts and serves uploaded media files.
type AttachmentHandler struct {
	media storage.Provider
}

// NewAttachmentHandler creates a handler over the media store.
func NewAttachmentHandler(media storage.Provider) *AttachmentHandler {
	return &AttachmentHandler{media: media}
}

// storedName builds a collision-free name: a short random prefix plus
// the sanitized original base name.
func storedName(original string) string {
	base := safeFilenameRe.ReplaceAllString(filepath.Base(original), "_")
	return uuid.NewString()[:8] + "-" + base
}

// Upload handles POST /api/attachments (multipart/form-data, field "file").
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported file extension: "+ext))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to read upload"))
		return
	}

	name, err := h.media.Save(storedName(header.Filename), content)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to store file"))
		return
	}

	writeJSON(w, http.StatusCreated, AttachmentUploadResponse{
		Filename: name,
		Size:     int64(len(content)),
		URL:      "/media/" + name,
	})
}

// List handles GET /api/attachments.
func (h *AttachmentHandler) List(w http.ResponseWriter, _ *http.Request) {
	infos, err := h.media.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to list media"))
		return
	}
	out := make([]AttachmentInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, AttachmentInfo{
			Filename:  info.Name,
			Size:      info.Size,
			UpdatedAt: info.UpdatedAt,
			URL:       "/media/" + info.Name,
		})
	}
	writeJSON(w, http.StatusOK, AttachmentListResponse{Attachments: out})
}

// Delete handles DELETE /api/attachments/{filename}.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if err := h.media.Delete(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("invalid filename"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeFile handles GET /media/{filename}.
func (h *AttachmentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	content, err := h.media.Read(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(content))
}
