package history

import (
	"errors"
	"time"
)

// ErrPersistence - a history write or fetch failed. Callers in the generation
// flow treat this as non-fatal: the generated image is still shown.
var ErrPersistence = errors.New("history persistence failed")

// IconRecord - one persisted generation, owned by exactly one user.
// Records are created once when a generation commits and never mutated.
type IconRecord struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Prompt            string    `json:"prompt"`
	Model             *string   `json:"model,omitempty"`
	SourceName        *string   `json:"source_name,omitempty"`
	StoragePath       string    `json:"storage_path"`
	SourceStoragePath *string   `json:"source_storage_path,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// IconRecordWithURL - list entry annotated with a resolved display URL for
// the stored bytes
type IconRecordWithURL struct {
	IconRecord
	ImageURL string `json:"image_url"`
}

// SaveParams - input for the server-side persistence path
type SaveParams struct {
	Prompt     string
	ImageURL   string
	Model      string
	SourceName string
}

// InsertParams - input for the metadata-only path, used after the client has
// already uploaded bytes through a signed upload URL
type InsertParams struct {
	Prompt            string  `json:"prompt"`
	StoragePath       string  `json:"storagePath"`
	Model             *string `json:"model,omitempty"`
	SourceName        *string `json:"sourceName,omitempty"`
	SourceStoragePath *string `json:"sourceStoragePath,omitempty"`
}

// SignedUpload - a pre-signed upload location plus the storage path the
// client must reference when inserting the record
type SignedUpload struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}
