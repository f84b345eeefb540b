// Package draftservice implements the editorial operations on draft
// aggregates: CRUD, timeline block manipulation, and tag upkeep.
package draftservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/model"
	"github.com/starford/dagaz/internal/normalize"
	"github.com/starford/dagaz/internal/store"
	"github.com/starford/dagaz/internal/tags"
)

// Notify is called after a successful mutation with the event kind
// ("created", "updated", "deleted") and the draft id.
type Notify func(kind, id string)

// Service coordinates store access and shape normalization.
type Service struct {
	db     store.DraftStore
	notify Notify
	now    func() time.Time
}

// NewService creates a draft service. notify may be nil.
func NewService(db store.DraftStore, notify Notify) *Service {
	return &Service{db: db, notify: notify, now: time.Now}
}

func (s *Service) emit(kind, id string) {
	if s.notify != nil {
		s.notify(kind, id)
	}
}

// CreateParams carries the user-provided fields of a new draft.
type CreateParams struct {
	Title       string
	Overview    string
	Category    string
	Subcategory string
	Tags        []string
}

// Create stores a new draft in the "draft" status.
func (s *Service) Create(_ context.Context, p CreateParams) (*model.Draft, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrInvalidArgument)
	}
	now := s.now().UTC()
	d := &model.Draft{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(p.Title),
		Overview:    p.Overview,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Tags:        tags.Dedupe(p.Tags),
		Status:      model.StatusDraft,
		Timeline:    model.BlockList{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.Put(d); err != nil {
		return nil, err
	}
	s.emit("created", d.ID)
	return s.view(d), nil
}

// Get returns a draft with the read-compatibility shim applied to its
// timeline. The stored record is not modified.
func (s *Service) Get(_ context.Context, id string) (*model.Draft, error) {
	d, err := s.db.Get(id)
	if err != nil {
		return nil, err
	}
	return s.view(d), nil
}

// List returns listing rows.
func (s *Service) List(_ context.Context, q store.ListQuery) ([]store.ListItem, int, error) {
	return s.db.List(q)
}

// Update applies a partial metadata update. Absent patch fields keep
// their current values; writes are last-write-wins.
func (s *Service) Update(_ context.Context, id string, patch model.DraftPatch) (*model.Draft, error) {
	d, err := s.db.Get(id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", apperr.ErrInvalidArgument)
		}
		d.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Overview != nil {
		d.Overview = *patch.Overview
	}
	if patch.Category != nil {
		d.Category = *patch.Category
	}
	if patch.Subcategory != nil {
		d.Subcategory = *patch.Subcategory
	}
	if patch.Tags != nil {
		d.Tags = tags.Dedupe(*patch.Tags)
	}
	if patch.Status != nil {
		if !model.ValidStatus(*patch.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidArgument, *patch.Status)
		}
		d.Status = *patch.Status
	}
	if patch.Analysis != nil {
		d.Analysis = *patch.Analysis
	}
	return s.save(d)
}

// Delete removes a draft and everything it owns.
func (s *Service) Delete(_ context.Context, id string) error {
	if err := s.db.Delete(id); err != nil {
		return err
	}
	s.emit("deleted", id)
	return nil
}

// AppendEvent converts a legacy flat event into a tagged block and
// appends it to the draft timeline.
func (s *Service) AppendEvent(_ context.Context, draftID string, legacy model.LegacyEvent) (*model.Draft, error) {
	if strings.TrimSpace(legacy.Event) == "" {
		return nil, fmt.Errorf("%w: event text is required", apperr.ErrInvalidArgument)
	}
	d, err := s.db.Get(draftID)
	if err != nil {
		return nil, err
	}
	d.Timeline = append(d.Timeline, normalize.EventToBlock(legacy))
	return s.save(d)
}

// AppendGenerated appends sanitized generation output to the timeline.
func (s *Service) AppendGenerated(_ context.Context, draftID string, events []model.GeneratedEvent) (*model.Draft, error) {
	d, err := s.db.Get(draftID)
	if err != nil {
		return nil, err
	}
	d.Timeline = append(d.Timeline, normalize.GeneratedToBlocks(events)...)
	return s.save(d)
}

// AppendImage adds an image block to the timeline.
func (s *Service) AppendImage(_ context.Context, draftID, url, caption, credit string) (*model.Draft, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is required", apperr.ErrInvalidArgument)
	}
	d, err := s.db.Get(draftID)
	if err != nil {
		return nil, err
	}
	d.Timeline = append(d.Timeline, &model.ImageBlock{
		ID:      uuid.NewString(),
		Type:    model.BlockTypeImage,
		URL:     strings.TrimSpace(url),
		Caption: caption,
		Credit:  credit,
	})
	return s.save(d)
}

// PatchEvent strict-merges a patch onto one event block. Fields absent
// from the patch keep their stored values.
func (s *Service) PatchEvent(_ context.Context, draftID, blockID string, patch model.EventPatch) (*model.Draft, error) {
	d, err := s.db.Get(draftID)
	if err != nil {
		return nil, err
	}
	found := false
	for i, b := range d.Timeline {
		if b.BlockID() != blockID {
			continue
		}
		ev, ok := b.(*model.EventBlock)
		if !ok {
			return nil, fmt.Errorf("%w: block %s is not an event", apperr.ErrInvalidArgument, blockID)
		}
		d.Timeline[i] = normalize.ApplyEventPatch(*ev, patch)
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("%w: block %s", apperr.ErrNotFound, blockID)
	}
	return s.save(d)
}

// RemoveBlock deletes one timeline block by id.
func (s *Service) RemoveBlock(_ context.Context, draftID, blockID string) (*model.Draft, error) {
	d, err := s.db.Get(draftID)
	if err != nil {
		return nil, err
	}
	kept := make(model.BlockList, 0, len(d.Timeline))
	for _, b := range d.Timeline {
		if b.BlockID() != blockID {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(d.Timeline) {
		return nil, fmt.Errorf("%w: block %s", apperr.ErrNotFound, blockID)
	}
	d.Timeline = kept
	return s.save(d)
}

// save stamps the update time, persists, notifies, and returns the
// read view.
func (s *Service) save(d *model.Draft) (*model.Draft, error) {
	d.UpdatedAt = s.now().UTC()
	if err := s.db.Put(d); err != nil {
		return nil, err
	}
	s.emit("updated", d.ID)
	return s.view(d), nil
}

// view returns a copy with the timeline read shim applied.
func (s *Service) view(d *model.Draft) *model.Draft {
	out := *d
	out.Timeline = normalize.BlocksForRead(d.Timeline)
	return &out
}
