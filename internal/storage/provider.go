// Package storage holds uploaded media files for drafts.
package storage

import "time"

// MediaInfo describes one stored media file.
type MediaInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for media file operations.
type Provider interface {
	// Save atomically writes content under name (relative to the media
	// root) and returns the stored name.
	Save(name string, content []byte) (string, error)
	// Read returns the raw bytes of the file at name.
	Read(name string) ([]byte, error)
	// Delete removes the file at name.
	Delete(name string) error
	// List returns metadata for every stored file.
	List() ([]MediaInfo, error)
	// Root returns the absolute media root directory.
	Root() string
}
