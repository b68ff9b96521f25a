// Package jobs keeps the observable, persisted list of upload, edit and delete jobs.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// EventType describes what happened to a record.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventRemoved EventType = "removed"
)

// Event is delivered to observers after every change to the job list.
type Event struct {
	Type   EventType
	Record models.JobRecord
	// Active is the number of active jobs after the change.
	Active int
}

// Observer receives change events. Observers run while the tracker is locked and must
// not call back into it.
type Observer func(Event)

// Tracker owns the job list and the cancel functions of running jobs. Every mutation
// is persisted as a whole-list snapshot.
type Tracker struct {
	mu        sync.Mutex
	records   []*models.JobRecord // newest first
	cancels   map[uuid.UUID]context.CancelFunc
	observers []Observer
	persister Persister
	now       func() time.Time
}

// NewTracker creates an empty Tracker. persister may be nil to keep the list in memory only.
func NewTracker(persister Persister) *Tracker {
	return &Tracker{
		cancels:   make(map[uuid.UUID]context.CancelFunc),
		persister: persister,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe registers an observer for all future changes.
func (t *Tracker) Subscribe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Start creates a record in the kind's initial status and returns it together with the
// context the job must run under. Upload and edit contexts are cancellable through
// Cancel; delete jobs are not.
func (t *Tracker) Start(kind models.JobKind, title, fileName string) (models.JobRecord, context.Context) {
	status := models.JobStatusPreparing
	if kind == models.JobKindDelete {
		status = models.JobStatusDeleting
	}

	rec := &models.JobRecord{
		ID:        uuid.New(),
		Kind:      kind,
		Title:     title,
		FileName:  fileName,
		Status:    status,
		Progress:  0,
		StartTime: t.now(),
	}

	ctx := context.Background()

	t.mu.Lock()
	defer t.mu.Unlock()

	if kind != models.JobKindDelete {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		t.cancels[rec.ID] = cancel
	}

	t.records = append([]*models.JobRecord{rec}, t.records...)
	t.changed(EventCreated, rec)
	return *rec, ctx
}

// Update moves a job forward. A status that would go backwards and a progress lower than
// the current value are ignored, as is any update to a record in a terminal state.
// An empty status only updates progress. It reports whether anything changed.
func (t *Tracker) Update(id uuid.UUID, status models.JobStatus, progress int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.find(id)
	if rec == nil || rec.Status.IsTerminal() {
		return false
	}

	changed := false
	if status != "" && status != rec.Status && rec.Status.CanTransition(status) {
		rec.Status = status
		changed = true
	}
	if progress > rec.Progress {
		rec.Progress = min(progress, 100)
		changed = true
	}
	if !changed {
		return false
	}

	if rec.Status.IsTerminal() {
		t.finish(rec)
	}
	t.changed(EventUpdated, rec)
	return true
}

// Complete marks a job completed with full progress.
func (t *Tracker) Complete(id uuid.UUID) bool {
	return t.Update(id, models.JobStatusCompleted, 100)
}

// Fail marks an active job as failed with the given message.
func (t *Tracker) Fail(id uuid.UUID, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.find(id)
	if rec == nil || rec.Status.IsTerminal() {
		return false
	}

	rec.Status = models.JobStatusError
	rec.Error = &message
	t.finish(rec)
	t.changed(EventUpdated, rec)
	return true
}

// Cancel cancels a running job's context and marks it cancelled immediately. Unknown
// ids, terminal jobs and jobs without a cancel function are left untouched.
func (t *Tracker) Cancel(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.find(id)
	if rec == nil || rec.Status.IsTerminal() {
		return false
	}
	if _, ok := t.cancels[id]; !ok {
		return false
	}

	rec.Status = models.JobStatusCancelled
	t.finish(rec)
	t.changed(EventUpdated, rec)
	return true
}

// ClearCompleted removes completed and failed records.
func (t *Tracker) ClearCompleted() int {
	return t.remove(func(r *models.JobRecord) bool {
		return r.Status == models.JobStatusCompleted || r.Status == models.JobStatusError
	})
}

// ClearInactive removes every record in a terminal state.
func (t *Tracker) ClearInactive() int {
	return t.remove(func(r *models.JobRecord) bool {
		return r.Status.IsTerminal()
	})
}

// Prune removes terminal records that finished more than retention ago.
func (t *Tracker) Prune(retention time.Duration) int {
	cutoff := t.now().Add(-retention)
	return t.remove(func(r *models.JobRecord) bool {
		return r.FinishedBefore(cutoff)
	})
}

// List returns a copy of the job list, newest first.
func (t *Tracker) List() []models.JobRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.JobRecord, 0, len(t.records))
	for _, r := range t.records {
		out = append(out, *r)
	}
	return out
}

// Get returns a copy of one record.
func (t *Tracker) Get(id uuid.UUID) (models.JobRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec := t.find(id); rec != nil {
		return *rec, true
	}
	return models.JobRecord{}, false
}

// Load replaces the in-memory list with the persisted one. Records that were still
// active when the list was saved can no longer be driven by anything, so they are
// rewritten to interrupted and the reconciled list is saved back.
func (t *Tracker) Load(ctx context.Context) error {
	if t.persister == nil {
		return nil
	}

	saved, err := t.persister.Load(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	interrupted := 0
	records := make([]*models.JobRecord, 0, len(saved))
	for i := range saved {
		rec := saved[i]
		if rec.Status.IsActive() {
			rec.Status = models.JobStatusInterrupted
			if rec.EndTime == nil {
				end := t.now()
				rec.EndTime = &end
			}
			interrupted++
		}
		records = append(records, &rec)
	}
	t.records = records

	if interrupted > 0 {
		slog.Info("marked unfinished jobs as interrupted", "count", interrupted)
	}
	t.persist()
	return nil
}

func (t *Tracker) remove(match func(*models.JobRecord) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.records[:0]
	var removed []*models.JobRecord
	for _, r := range t.records {
		if match(r) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	t.records = kept

	if len(removed) == 0 {
		return 0
	}
	t.persist()
	for _, r := range removed {
		t.notify(EventRemoved, r)
	}
	return len(removed)
}

func (t *Tracker) find(id uuid.UUID) *models.JobRecord {
	for _, r := range t.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// release cancels and forgets the job's context. Caller holds t.mu.
func (t *Tracker) release(id uuid.UUID) {
	if cancel, ok := t.cancels[id]; ok {
		cancel()
		delete(t.cancels, id)
	}
}

// finish stamps the end time of a record that just became terminal and releases its
// context. Caller holds t.mu.
func (t *Tracker) finish(rec *models.JobRecord) {
	end := t.now()
	rec.EndTime = &end
	t.release(rec.ID)
}

func (t *Tracker) activeCount() int {
	n := 0
	for _, r := range t.records {
		if r.Status.IsActive() {
			n++
		}
	}
	return n
}

// changed persists the list and notifies observers. Caller holds t.mu.
func (t *Tracker) changed(typ EventType, rec *models.JobRecord) {
	t.persist()
	t.notify(typ, rec)
}

func (t *Tracker) notify(typ EventType, rec *models.JobRecord) {
	if len(t.observers) == 0 {
		return
	}
	ev := Event{Type: typ, Record: *rec, Active: t.activeCount()}
	for _, o := range t.observers {
		o(ev)
	}
}

// persist saves a snapshot of the list. Failures are logged and never reach the job.
func (t *Tracker) persist() {
	if t.persister == nil {
		return
	}
	snapshot := make([]models.JobRecord, 0, len(t.records))
	for _, r := range t.records {
		snapshot = append(snapshot, *r)
	}
	if err := t.persister.Save(context.Background(), snapshot); err != nil {
		slog.Error("failed to persist job list", "error", err, "records", len(snapshot))
	}
}
