package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/kiranshivaraju/mediashelf/internal/api/response"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

const multipartMemory = 32 << 20

// parseMultipart limits the body to maxBytes and parses the form. It writes the error
// response itself and reports whether the handler may continue.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", maxBytes), nil)
		return false
	}
	response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "Invalid multipart form", nil)
	return false
}

// formFile reads an optional file part into memory. A missing part yields nil.
func formFile(r *http.Request, field string) (*models.File, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			mimeType = byExt
		}
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &models.File{Name: filepath.Base(header.Filename), MIMEType: mimeType, Data: data}, nil
}

// formValue returns a pointer to the submitted value of key, or nil when the key was
// not sent at all. An empty value is returned as a pointer to "".
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}
