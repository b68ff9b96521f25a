package models

import (
	"time"

	"github.com/google/uuid"
)

// Content types stored in the library.
const (
	ContentTypeBook  = "book"
	ContentTypeAudio = "audio"
	ContentTypeVideo = "video"
)

// Moderation states of a content record.
const (
	ContentStatusPending  = "pending"
	ContentStatusApproved = "approved"
	ContentStatusRejected = "rejected"
)

// Content is one item of the library. FileURL and CoverImageURL hold durable references:
// either a plain object-store path or a scheme-prefixed bridge identifier.
type Content struct {
	ID            uuid.UUID  `db:"id"              json:"id"`
	Title         string     `db:"title"           json:"title"`
	Description   string     `db:"description"     json:"description"`
	ContentType   string     `db:"content_type"    json:"content_type"`
	Author        string     `db:"author"          json:"author,omitempty"`
	Speaker       string     `db:"speaker"         json:"speaker,omitempty"`
	AudioType     string     `db:"audio_type"      json:"audio_type,omitempty"`
	Category      string     `db:"category"        json:"category,omitempty"`
	Language      string     `db:"language"        json:"language,omitempty"`
	FileURL       string     `db:"file_url"        json:"file_url"`
	CoverImageURL *string    `db:"cover_image_url" json:"cover_image_url,omitempty"`
	Status        string     `db:"status"          json:"status"`
	UploadedBy    *uuid.UUID `db:"uploaded_by"     json:"uploaded_by,omitempty"`
	CreatedAt     time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"      json:"updated_at"`
}

// ContentUpdate carries the fields an edit may change. Nil fields are left untouched.
type ContentUpdate struct {
	Title         *string
	Description   *string
	Author        *string
	Speaker       *string
	AudioType     *string
	Category      *string
	Language      *string
	Status        *string
	FileURL       *string
	CoverImageURL *string
}
