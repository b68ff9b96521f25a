package models

import (
	"time"

	"github.com/google/uuid"
)

// TaxonomyKind names one of the reference tables content metadata points into.
type TaxonomyKind string

const (
	TaxonomySpeaker   TaxonomyKind = "speaker"
	TaxonomyAudioType TaxonomyKind = "audio_type"
	TaxonomyCategory  TaxonomyKind = "category"
	TaxonomyLanguage  TaxonomyKind = "language"
)

// TaxonomyKinds lists every kind in the order they are ensured during an upload.
var TaxonomyKinds = []TaxonomyKind{TaxonomySpeaker, TaxonomyAudioType, TaxonomyCategory, TaxonomyLanguage}

// Valid reports whether k is a known taxonomy kind.
func (k TaxonomyKind) Valid() bool {
	for _, known := range TaxonomyKinds {
		if k == known {
			return true
		}
	}
	return false
}

// TaxonomyValue is one entry of a reference table. FolderID caches the bridge folder
// that files tagged with this value are placed in.
type TaxonomyValue struct {
	ID        uuid.UUID    `db:"id"         json:"id"`
	Kind      TaxonomyKind `db:"kind"       json:"kind"`
	Name      string       `db:"name"       json:"name"`
	FolderID  *string      `db:"folder_id"  json:"folder_id,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
