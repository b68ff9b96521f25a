// Package models contains shared data models used across the mediashelf codebase.
package models

import "context"

// Transferer is the interface every file backend must implement.
// Never call a specific backend directly; always go through this interface.
type Transferer interface {
	// Upload stores the file and returns its durable reference.
	Upload(ctx context.Context, req TransferRequest) (string, error)
	// Delete removes the file identified by a durable reference.
	Delete(ctx context.Context, ref string) error
	// Name returns the backend identifier (e.g., "objectstore", "bridge").
	Name() string
}

// File is an in-memory file received from a client.
type File struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Size returns the file length in bytes.
func (f *File) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// TransferRequest is the input to a file upload.
type TransferRequest struct {
	File        File
	Path        string // Destination path for path-addressed backends
	ContentType string // Library content type (book, audio, video)
	Speaker     string // Used to place bridge uploads in folders
	AudioType   string
}
