package transfer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kiranshivaraju/mediashelf/internal/bridge"
	"github.com/kiranshivaraju/mediashelf/internal/config"
	"github.com/kiranshivaraju/mediashelf/internal/metrics"
	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// FolderLookup resolves taxonomy values whose bridge folder id may already be known.
type FolderLookup interface {
	GetTaxonomyValueByName(ctx context.Context, kind models.TaxonomyKind, name string) (*models.TaxonomyValue, error)
}

// BridgeAdapter stores files through the external hosting bridge.
type BridgeAdapter struct {
	client       bridge.Client
	folders      FolderLookup
	scheme       string
	policy       string
	rootFolderID string
}

// NewBridgeAdapter creates a BridgeAdapter. folders may be nil, in which case uploads
// are always placed by folder path.
func NewBridgeAdapter(client bridge.Client, folders FolderLookup, cfg config.BridgeConfig) *BridgeAdapter {
	return &BridgeAdapter{
		client:       client,
		folders:      folders,
		scheme:       cfg.Scheme,
		policy:       cfg.FailurePolicy,
		rootFolderID: cfg.RootFolderID,
	}
}

func (a *BridgeAdapter) Name() string { return "bridge" }

// Upload sends the whole file base64-encoded in one request. Replies without a file id
// are handled by the failure policy: "fail" rejects, "degrade" keeps the file name as
// the identifier.
func (a *BridgeAdapter) Upload(ctx context.Context, req models.TransferRequest) (string, error) {
	folderID, folderPath := a.placement(ctx, req)

	resp, err := a.client.Upload(ctx, bridge.UploadRequest{
		FileName:    req.File.Name,
		ContentType: req.File.MIMEType,
		Base64:      base64.StdEncoding.EncodeToString(req.File.Data),
		FolderPath:  folderPath,
		FolderID:    folderID,
	})
	if err != nil {
		return "", fmt.Errorf("bridge upload: %w", err)
	}

	if resp.OK() && resp.FileID != "" {
		return BridgeRef(a.scheme, resp.FileID), nil
	}

	if a.policy == config.PolicyFail {
		return "", fmt.Errorf("%w: %s", ErrBridgeRejected, resp.Reason())
	}

	metrics.IncreaseBridgeDegraded()
	slog.Warn("bridge upload not confirmed, keeping file name as reference",
		"file_name", req.File.Name,
		"reason", resp.Reason(),
	)
	return BridgeRef(a.scheme, req.File.Name), nil
}

func (a *BridgeAdapter) Delete(ctx context.Context, ref string) error {
	id, ok := ParseBridgeRef(a.scheme, ref)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScheme, ref)
	}

	resp, err := a.client.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("bridge delete: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("%w: %s", ErrBridgeRejected, resp.Reason())
	}
	return nil
}

// Rename changes the display name of a bridge-hosted file.
func (a *BridgeAdapter) Rename(ctx context.Context, ref, newName string) error {
	id, ok := ParseBridgeRef(a.scheme, ref)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScheme, ref)
	}

	resp, err := a.client.Rename(ctx, id, newName)
	if err != nil {
		return fmt.Errorf("bridge rename: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("%w: %s", ErrBridgeRejected, resp.Reason())
	}
	return nil
}

// placement prefers a cached folder id (speaker first, then audio type). Without one
// the file goes to <contentType>/<speaker>/<audioType> under the configured root.
func (a *BridgeAdapter) placement(ctx context.Context, req models.TransferRequest) (folderID, folderPath string) {
	if a.folders != nil {
		candidates := []struct {
			kind models.TaxonomyKind
			name string
		}{
			{models.TaxonomySpeaker, req.Speaker},
			{models.TaxonomyAudioType, req.AudioType},
		}
		for _, c := range candidates {
			if c.name == "" {
				continue
			}
			v, err := a.folders.GetTaxonomyValueByName(ctx, c.kind, c.name)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					slog.Debug("folder lookup failed", "kind", c.kind, "name", c.name, "error", err)
				}
				continue
			}
			if v.FolderID != nil && *v.FolderID != "" {
				return *v.FolderID, ""
			}
		}
	}

	return a.rootFolderID, FolderPath(req.ContentType, req.Speaker, req.AudioType)
}

// FolderPath joins the non-empty placement segments with "/".
func FolderPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// Compile-time check that BridgeAdapter implements Transferer.
var _ models.Transferer = (*BridgeAdapter)(nil)
