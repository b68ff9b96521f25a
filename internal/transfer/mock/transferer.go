package mock

import (
	"context"
	"sync"

	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// MockTransferer satisfies models.Transferer for testing and records every call.
type MockTransferer struct {
	Name_      string
	UploadFunc func(ctx context.Context, req models.TransferRequest) (string, error)
	DeleteFunc func(ctx context.Context, ref string) error
	RenameFunc func(ctx context.Context, ref, newName string) error

	mu      sync.Mutex
	uploads []models.TransferRequest
	deletes []string
	renames []string
}

func (m *MockTransferer) Name() string { return m.Name_ }

func (m *MockTransferer) Upload(ctx context.Context, req models.TransferRequest) (string, error) {
	m.mu.Lock()
	m.uploads = append(m.uploads, req)
	m.mu.Unlock()
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, req)
	}
	return req.ContentType + "/" + req.File.Name, nil
}

func (m *MockTransferer) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	m.deletes = append(m.deletes, ref)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ref)
	}
	return nil
}

func (m *MockTransferer) Rename(ctx context.Context, ref, newName string) error {
	m.mu.Lock()
	m.renames = append(m.renames, ref+"="+newName)
	m.mu.Unlock()
	if m.RenameFunc != nil {
		return m.RenameFunc(ctx, ref, newName)
	}
	return nil
}

// Uploads returns the requests received so far.
func (m *MockTransferer) Uploads() []models.TransferRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.TransferRequest(nil), m.uploads...)
}

// Deletes returns the references deleted so far.
func (m *MockTransferer) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

// Renames returns "ref=newName" for each rename so far.
func (m *MockTransferer) Renames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.renames...)
}

// NewMockTransferer returns a MockTransferer that accepts every call.
func NewMockTransferer(name string) *MockTransferer {
	return &MockTransferer{Name_: name}
}

// NewFailingTransferer returns a MockTransferer whose uploads and deletes return err.
func NewFailingTransferer(name string, err error) *MockTransferer {
	return &MockTransferer{
		Name_: name,
		UploadFunc: func(_ context.Context, _ models.TransferRequest) (string, error) {
			return "", err
		},
		DeleteFunc: func(_ context.Context, _ string) error {
			return err
		},
	}
}

// NewBlockingTransferer returns a MockTransferer whose uploads block until the context
// is cancelled. started receives one value per upload once it is blocking.
func NewBlockingTransferer(name string, started chan<- struct{}) *MockTransferer {
	return &MockTransferer{
		Name_: name,
		UploadFunc: func(ctx context.Context, _ models.TransferRequest) (string, error) {
			if started != nil {
				started <- struct{}{}
			}
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// Compile-time check that MockTransferer implements Transferer.
var _ models.Transferer = (*MockTransferer)(nil)
