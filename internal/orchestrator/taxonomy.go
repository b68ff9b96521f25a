package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/kiranshivaraju/mediashelf/internal/transfer"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// ListTaxonomy returns every value of one kind, ordered by name.
func (o *Orchestrator) ListTaxonomy(ctx context.Context, kind models.TaxonomyKind) ([]*models.TaxonomyValue, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown taxonomy kind %q", ErrInvalidRequest, kind)
	}
	return o.store.ListTaxonomyValues(ctx, kind)
}

// RenameTaxonomy renames a reference value and, for speakers and audio types, the bridge
// folder holding its files. The folder is addressed by its cached id when known and by
// path otherwise; a folder id returned by the bridge is cached. Bridge failures are
// logged and do not undo the rename.
func (o *Orchestrator) RenameTaxonomy(ctx context.Context, kind models.TaxonomyKind, id uuid.UUID, newName string) (*models.TaxonomyValue, error) {
	newName = strings.TrimSpace(newName)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown taxonomy kind %q", ErrInvalidRequest, kind)
	}
	if newName == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	current, err := o.store.GetTaxonomyValue(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Kind != kind {
		return nil, store.ErrNotFound
	}
	if current.Name == newName {
		return current, nil
	}

	if err := o.store.RenameTaxonomyValue(ctx, id, newName); err != nil {
		return nil, err
	}
	oldName := current.Name
	current.Name = newName

	if folderID := o.renameFolder(ctx, current, oldName); folderID != "" {
		if current.FolderID == nil || *current.FolderID != folderID {
			if err := o.store.SetTaxonomyFolderID(ctx, id, folderID); err != nil {
				slog.Warn("caching folder id failed", "taxonomy_id", id, "error", err)
			} else {
				current.FolderID = &folderID
			}
		}
	}
	return current, nil
}

// renameFolder returns the folder id reported by the bridge, or "" when there is none.
func (o *Orchestrator) renameFolder(ctx context.Context, v *models.TaxonomyValue, oldName string) string {
	if o.bridge == nil || !o.bridge.Configured() {
		return ""
	}
	if v.Kind != models.TaxonomySpeaker && v.Kind != models.TaxonomyAudioType {
		return ""
	}

	var (
		folderID string
		err      error
		ok       bool
		reason   string
	)
	switch {
	case v.FolderID != nil && *v.FolderID != "":
		resp, callErr := o.bridge.RenameFolderByID(ctx, *v.FolderID, v.Name)
		err, ok, reason = callErr, resp.OK(), resp.Reason()
		folderID = *v.FolderID
		if ok && resp.FolderID != "" {
			folderID = resp.FolderID
		}
	case v.Kind == models.TaxonomySpeaker:
		resp, callErr := o.bridge.RenameFolder(ctx, transfer.FolderPath(models.ContentTypeAudio, oldName), v.Name)
		err, ok, reason = callErr, resp.OK(), resp.Reason()
		if ok {
			folderID = resp.FolderID
		}
	default:
		// audio type folders are nested under each speaker and have no single path
		return ""
	}

	if err != nil || !ok {
		slog.Warn("renaming bridge folder failed",
			"kind", v.Kind, "name", v.Name, "error", err, "reason", reason)
		return ""
	}
	return folderID
}
