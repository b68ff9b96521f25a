// Package orchestrator runs content uploads, edits and deletes as tracked background jobs.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/bridge"
	"github.com/kiranshivaraju/mediashelf/internal/jobs"
	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// Files is the storage side of the pipelines. transfer.Router implements it.
type Files interface {
	Upload(ctx context.Context, req models.TransferRequest) (string, error)
	Delete(ctx context.Context, ref string) error
	Rename(ctx context.Context, ref, newName string) error
	UsesBridge(contentType string) bool
	Objects() models.Transferer
}

// Orchestrator owns the job tracker and starts one goroutine per submitted operation.
// There is no queue and no concurrency cap.
type Orchestrator struct {
	tracker  *jobs.Tracker
	files    Files
	store    store.Store
	bridge   bridge.Client
	validate *Validator
	now      func() time.Time
	wg       sync.WaitGroup
}

// New creates an Orchestrator. br may be nil when no bridge is configured; it is only
// used to rename bridge folders when taxonomy values are renamed.
func New(tracker *jobs.Tracker, files Files, st store.Store, br bridge.Client) *Orchestrator {
	return &Orchestrator{
		tracker:  tracker,
		files:    files,
		store:    st,
		bridge:   br,
		validate: NewValidator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitUpload validates the request, records a preparing job and returns it without
// waiting for the upload.
func (o *Orchestrator) SubmitUpload(req UploadRequest) (models.JobRecord, error) {
	if err := o.validate.Struct(req); err != nil {
		return models.JobRecord{}, err
	}

	rec, ctx := o.tracker.Start(models.JobKindUpload, req.Content.Title, req.File.Name)
	o.spawn(ctx, rec, func(ctx context.Context) error {
		return o.runUpload(ctx, rec.ID, req)
	})
	return rec, nil
}

// SubmitEdit validates the request, records a preparing job and returns it without
// waiting for the edit.
func (o *Orchestrator) SubmitEdit(req EditRequest) (models.JobRecord, error) {
	if err := o.validate.Struct(req); err != nil {
		return models.JobRecord{}, err
	}

	title := valueOr(req.Update.Title, req.Title)
	fileName := req.CurrentFileURL
	if req.NewFile != nil {
		fileName = req.NewFile.Name
	}

	rec, ctx := o.tracker.Start(models.JobKindEdit, title, fileName)
	o.spawn(ctx, rec, func(ctx context.Context) error {
		return o.runEdit(ctx, rec.ID, req)
	})
	return rec, nil
}

// SubmitDelete validates the request, records a deleting job and returns it without
// waiting for the delete. Delete jobs cannot be cancelled.
func (o *Orchestrator) SubmitDelete(req DeleteRequest) (models.JobRecord, error) {
	if err := o.validate.Struct(req); err != nil {
		return models.JobRecord{}, err
	}

	rec, ctx := o.tracker.Start(models.JobKindDelete, req.Title, req.FileURL)
	o.spawn(ctx, rec, func(ctx context.Context) error {
		return o.runDelete(ctx, rec.ID, req)
	})
	return rec, nil
}

// CancelUpload cancels a running upload or edit. It reports false for unknown ids,
// delete jobs and jobs that already finished.
func (o *Orchestrator) CancelUpload(id uuid.UUID) bool {
	return o.tracker.Cancel(id)
}

// ClearCompleted removes completed and failed jobs from the list.
func (o *Orchestrator) ClearCompleted() int {
	return o.tracker.ClearCompleted()
}

// ClearInactive removes every finished job, including cancelled and interrupted ones.
func (o *Orchestrator) ClearInactive() int {
	return o.tracker.ClearInactive()
}

// Jobs returns the job list, newest first.
func (o *Orchestrator) Jobs() []models.JobRecord {
	return o.tracker.List()
}

// Job returns one job.
func (o *Orchestrator) Job(id uuid.UUID) (models.JobRecord, bool) {
	return o.tracker.Get(id)
}

// Wait blocks until every started job has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// spawn runs pipeline in a goroutine. It recovers from panics and always leaves the job
// completed, failed or (through Cancel) cancelled.
func (o *Orchestrator) spawn(ctx context.Context, rec models.JobRecord, pipeline func(context.Context) error) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in job", "error", r, "job_id", rec.ID, "kind", rec.Kind)
				o.tracker.Fail(rec.ID, fmt.Sprintf("panic: %v", r))
			}
		}()

		err := pipeline(ctx)
		switch {
		case err == nil:
			o.tracker.Complete(rec.ID)
		case errors.Is(err, context.Canceled) || ctx.Err() != nil:
			slog.Debug("job stopped after cancellation", "job_id", rec.ID, "kind", rec.Kind)
		default:
			o.tracker.Fail(rec.ID, err.Error())
		}
	}()
}

// ensureTaxonomy creates any reference value that does not exist yet. Values that
// already exist are reported as duplicates and ignored.
func (o *Orchestrator) ensureTaxonomy(ctx context.Context, values map[models.TaxonomyKind]string) error {
	for _, kind := range models.TaxonomyKinds {
		name := values[kind]
		if name == "" {
			continue
		}
		if _, err := o.store.CreateTaxonomyValue(ctx, kind, name); err != nil && !errors.Is(err, store.ErrDuplicateKey) {
			return fmt.Errorf("ensuring %s %q: %w", kind, name, err)
		}
	}
	return nil
}
