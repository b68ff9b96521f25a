package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
)

// Sentinel errors for bridge client failures.
var (
	ErrUnreachable = errors.New("bridge unreachable")
	ErrBadResponse = errors.New("bridge returned invalid response")
)

// StatusSuccess is the status value the bridge script reports on success.
const StatusSuccess = "success"

// Client is the interface for calling the file-hosting bridge script.
type Client interface {
	Upload(ctx context.Context, req UploadRequest) (*Response, error)
	Delete(ctx context.Context, fileID string) (*Response, error)
	Rename(ctx context.Context, fileID, newName string) (*Response, error)
	RenameFolderByID(ctx context.Context, folderID, newName string) (*Response, error)
	RenameFolder(ctx context.Context, oldPath, newFolderName string) (*Response, error)
	Configured() bool
}

// UploadRequest carries an already base64-encoded file.
type UploadRequest struct {
	FileName    string
	ContentType string
	Base64      string
	FolderPath  string
	FolderID    string
}

// Response is the JSON envelope every bridge action replies with.
type Response struct {
	Status   string `json:"status"`
	FileID   string `json:"fileId,omitempty"`
	FolderID string `json:"folderId,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// OK reports whether the bridge accepted the action.
func (r *Response) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// Reason returns the most descriptive failure text in the reply.
func (r *Response) Reason() string {
	switch {
	case r == nil:
		return "no response"
	case r.Error != "":
		return r.Error
	case r.Message != "":
		return r.Message
	}
	return fmt.Sprintf("status %q", r.Status)
}

// notConfigured is returned, without a network attempt, when no endpoint is set.
var notConfigured = Response{Status: "error", Message: "bridge endpoint not configured"}

// HTTPClient implements Client by POSTing JSON to a single script endpoint.
type HTTPClient struct {
	endpoint string
	http     *resty.Client
}

// NewHTTPClient creates a bridge client. A zero timeout means requests never time out.
// An empty endpoint yields a client whose calls all report failure.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		http:     resty.New(),
	}
	if timeout > 0 {
		c.http.SetTimeout(timeout)
	}
	return c
}

func (c *HTTPClient) Configured() bool { return c.endpoint != "" }

func (c *HTTPClient) Upload(ctx context.Context, req UploadRequest) (*Response, error) {
	return c.call(ctx, map[string]string{
		"action":      "upload",
		"fileName":    req.FileName,
		"contentType": req.ContentType,
		"base64":      req.Base64,
		"folderPath":  req.FolderPath,
		"folderId":    req.FolderID,
	})
}

func (c *HTTPClient) Delete(ctx context.Context, fileID string) (*Response, error) {
	return c.call(ctx, map[string]string{
		"action": "delete",
		"fileId": fileID,
	})
}

func (c *HTTPClient) Rename(ctx context.Context, fileID, newName string) (*Response, error) {
	return c.call(ctx, map[string]string{
		"action":  "rename",
		"fileId":  fileID,
		"newName": newName,
	})
}

func (c *HTTPClient) RenameFolderByID(ctx context.Context, folderID, newName string) (*Response, error) {
	return c.call(ctx, map[string]string{
		"action":   "renameFolderById",
		"folderId": folderID,
		"newName":  newName,
	})
}

func (c *HTTPClient) RenameFolder(ctx context.Context, oldPath, newFolderName string) (*Response, error) {
	return c.call(ctx, map[string]string{
		"action":        "renameFolder",
		"oldPath":       oldPath,
		"newFolderName": newFolderName,
	})
}

// call posts the payload as a JSON document with a text/plain content type, which
// keeps script hosts from requiring a CORS preflight.
func (c *HTTPClient) call(ctx context.Context, payload map[string]string) (*Response, error) {
	if !c.Configured() {
		resp := notConfigured
		return &resp, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding bridge request: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain;charset=utf-8").
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		return nil, classifyError(err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode())
	}

	var out Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return &out, nil
}

// classifyError maps transport-level errors to sentinel errors while keeping
// context cancellation detectable by callers.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timed out: %v", ErrUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
