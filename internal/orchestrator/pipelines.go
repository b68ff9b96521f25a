package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/kiranshivaraju/mediashelf/internal/transfer"
	"github.com/kiranshivaraju/mediashelf/internal/transfer/objectstore"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Progress checkpoints shared by the pipelines.
const (
	progressTransferStarted = 10
	progressFileStored      = 50
	progressCoverStarted    = 60
	progressCoverStored     = 80
	progressWriting         = 80

	progressDeleteStarted   = 10
	progressFileDeleted     = 20
	progressCoverDeleted    = 40
	progressRelatedDeleted  = 60
	progressDeletingContent = 80
)

// runUpload transfers the file and optional cover, then inserts the content record.
// Database writes run without the job's cancellation so a write that has started is
// never torn down halfway.
func (o *Orchestrator) runUpload(ctx context.Context, id uuid.UUID, req UploadRequest) error {
	fields := req.Content

	if err := ctx.Err(); err != nil {
		return err
	}
	o.tracker.Update(id, models.JobStatusUploading, progressTransferStarted)

	fileURL, err := o.files.Upload(ctx, models.TransferRequest{
		File:        *req.File,
		ContentType: fields.ContentType,
		Speaker:     fields.Speaker,
		AudioType:   fields.AudioType,
	})
	if err != nil {
		return fmt.Errorf("uploading file: %w", err)
	}
	o.tracker.Update(id, "", progressFileStored)

	var coverURL *string
	if req.Cover != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.tracker.Update(id, "", progressCoverStarted)

		ref, err := o.files.Objects().Upload(ctx, models.TransferRequest{
			File: *req.Cover,
			Path: objectstore.CoverPath(req.Cover.Name),
		})
		if err != nil {
			return fmt.Errorf("uploading cover: %w", err)
		}
		coverURL = &ref
		o.tracker.Update(id, "", progressCoverStored)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	dbCtx := context.WithoutCancel(ctx)

	if err := o.ensureTaxonomy(dbCtx, map[models.TaxonomyKind]string{
		models.TaxonomySpeaker:   fields.Speaker,
		models.TaxonomyAudioType: fields.AudioType,
		models.TaxonomyCategory:  fields.Category,
		models.TaxonomyLanguage:  fields.Language,
	}); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	o.tracker.Update(id, models.JobStatusDatabase, progressWriting)

	status := fields.Status
	if status == "" {
		status = models.ContentStatusPending
	}
	now := o.now()
	content := &models.Content{
		ID:            uuid.New(),
		Title:         fields.Title,
		Description:   fields.Description,
		ContentType:   fields.ContentType,
		Author:        fields.Author,
		Speaker:       fields.Speaker,
		AudioType:     fields.AudioType,
		Category:      fields.Category,
		Language:      fields.Language,
		FileURL:       fileURL,
		CoverImageURL: coverURL,
		Status:        status,
		UploadedBy:    req.UploadedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.store.CreateContent(dbCtx, content); err != nil {
		return fmt.Errorf("saving content: %w", err)
	}
	return nil
}

// runEdit replaces the file and cover when new ones are given, then applies the update.
func (o *Orchestrator) runEdit(ctx context.Context, id uuid.UUID, req EditRequest) error {
	upd := req.Update

	if err := ctx.Err(); err != nil {
		return err
	}
	o.tracker.Update(id, models.JobStatusUploading, progressTransferStarted)

	var staleRef string
	switch {
	case req.NewFile != nil:
		ref, stale, err := o.replaceFile(ctx, req)
		if err != nil {
			return err
		}
		upd.FileURL = &ref
		staleRef = stale

	case upd.Title != nil && *upd.Title != req.Title && transfer.IsBridgeRef(req.CurrentFileURL):
		if err := o.files.Rename(ctx, req.CurrentFileURL, *upd.Title); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			slog.Warn("renaming hosted file failed", "job_id", id, "file_url", req.CurrentFileURL, "error", err)
		}
	}
	o.tracker.Update(id, "", progressFileStored)

	if req.NewCover != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.tracker.Update(id, "", progressCoverStarted)

		ref, err := o.files.Objects().Upload(ctx, models.TransferRequest{
			File: *req.NewCover,
			Path: objectstore.UniquePath("covers", req.NewCover.Name, o.now()),
		})
		if err != nil {
			return fmt.Errorf("uploading cover: %w", err)
		}
		upd.CoverImageURL = &ref
		o.tracker.Update(id, "", progressCoverStored)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	dbCtx := context.WithoutCancel(ctx)

	values := map[models.TaxonomyKind]string{}
	for kind, v := range map[models.TaxonomyKind]*string{
		models.TaxonomySpeaker:   upd.Speaker,
		models.TaxonomyAudioType: upd.AudioType,
		models.TaxonomyCategory:  upd.Category,
		models.TaxonomyLanguage:  upd.Language,
	} {
		if v != nil {
			values[kind] = *v
		}
	}
	if err := o.ensureTaxonomy(dbCtx, values); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	o.tracker.Update(id, models.JobStatusDatabase, progressWriting)

	if _, err := o.store.UpdateContent(dbCtx, req.ContentID, upd); err != nil {
		return fmt.Errorf("updating content: %w", err)
	}

	if staleRef != "" {
		if err := o.files.Delete(dbCtx, staleRef); err != nil {
			slog.Warn("deleting replaced file failed", "job_id", id, "file_url", staleRef, "error", err)
		}
	}
	return nil
}

// replaceFile stores the new file of an edit and returns its reference together with
// the bridge file it replaces, if any. The replaced file is deleted by the caller only
// after the content row points at the new one. Object store files get a fresh path and
// the old object is kept.
func (o *Orchestrator) replaceFile(ctx context.Context, req EditRequest) (ref, stale string, err error) {
	tr := models.TransferRequest{
		File:        *req.NewFile,
		ContentType: req.ContentType,
		Speaker:     valueOr(req.Update.Speaker, req.Speaker),
		AudioType:   valueOr(req.Update.AudioType, req.AudioType),
	}

	usesBridge := o.files.UsesBridge(req.ContentType)
	if !usesBridge {
		tr.Path = objectstore.UniquePath(req.ContentType, req.NewFile.Name, o.now())
	}

	ref, err = o.files.Upload(ctx, tr)
	if err != nil {
		return "", "", fmt.Errorf("uploading file: %w", err)
	}

	if usesBridge && transfer.IsBridgeRef(req.CurrentFileURL) && req.CurrentFileURL != ref {
		stale = req.CurrentFileURL
	}
	return ref, stale, nil
}

// runDelete removes the file, the cover, the dependent rows and finally the content
// row. It stops at the first error and does not undo earlier steps.
func (o *Orchestrator) runDelete(ctx context.Context, id uuid.UUID, req DeleteRequest) error {
	o.tracker.Update(id, "", progressDeleteStarted)
	if err := o.files.Delete(ctx, req.FileURL); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	o.tracker.Update(id, "", progressFileDeleted)

	if req.CoverImageURL != nil && *req.CoverImageURL != "" {
		if err := o.files.Delete(ctx, *req.CoverImageURL); err != nil {
			return fmt.Errorf("deleting cover: %w", err)
		}
	}
	o.tracker.Update(id, "", progressCoverDeleted)

	g, gctx := errgroup.WithContext(ctx)
	for _, table := range store.RelatedTables {
		table := table
		g.Go(func() error {
			return o.store.DeleteRelated(gctx, table, req.ID)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("deleting related records: %w", err)
	}
	o.tracker.Update(id, "", progressRelatedDeleted)

	o.tracker.Update(id, "", progressDeletingContent)
	if err := o.store.DeleteContent(ctx, req.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("deleting content: %w", err)
	}
	return nil
}
