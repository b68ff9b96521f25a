package orchestrator

import (
	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// ContentFields is the metadata submitted with a new content item.
type ContentFields struct {
	Title       string `validate:"required,max=500"`
	Description string `validate:"max=5000"`
	ContentType string `validate:"required,oneof=book audio video"`
	Author      string
	Speaker     string `validate:"required_if=ContentType audio"`
	AudioType   string `validate:"required_if=ContentType audio"`
	Category    string
	Language    string
	Status      string `validate:"omitempty,oneof=pending approved rejected"`
}

// UploadRequest submits a new content item with its file and optional cover.
type UploadRequest struct {
	Content    ContentFields
	File       *models.File `validate:"required"`
	Cover      *models.File
	UploadedBy *uuid.UUID
}

// EditRequest changes an existing content item. The current values are used for
// placement and to decide whether the hosted file needs renaming.
type EditRequest struct {
	ContentID       uuid.UUID `validate:"required"`
	Title           string    `validate:"required"`
	ContentType     string    `validate:"required,oneof=book audio video"`
	Speaker         string
	AudioType       string
	CurrentFileURL  string `validate:"required"`
	CurrentCoverURL *string
	Update          models.ContentUpdate
	NewFile         *models.File
	NewCover        *models.File
}

// DeleteRequest removes a content item together with its files and dependent rows.
type DeleteRequest struct {
	ID            uuid.UUID `validate:"required"`
	Title         string
	FileURL       string `validate:"required"`
	CoverImageURL *string
}

func valueOr(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}
