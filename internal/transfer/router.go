package transfer

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/mediashelf/internal/config"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// Renamer is implemented by backends whose files carry a display name.
type Renamer interface {
	Rename(ctx context.Context, ref, newName string) error
}

// Router picks the backend for each content type and sends deletes to the backend
// that owns a reference.
type Router struct {
	objects     models.Transferer
	bridge      models.Transferer
	scheme      string
	bridgeTypes map[string]bool
}

// NewRouter builds a Router. bridge may be nil, in which case every content type is
// stored in the object store.
func NewRouter(objects, bridge models.Transferer, cfg config.BridgeConfig) *Router {
	r := &Router{
		objects:     objects,
		bridge:      bridge,
		scheme:      cfg.Scheme,
		bridgeTypes: make(map[string]bool, len(cfg.ContentTypes)),
	}
	for _, ct := range cfg.ContentTypes {
		r.bridgeTypes[ct] = true
	}
	return r
}

func (r *Router) Name() string { return "router" }

// UsesBridge reports whether files of contentType are sent to the bridge.
func (r *Router) UsesBridge(contentType string) bool {
	return r.bridge != nil && r.bridgeTypes[contentType]
}

// For returns the backend that stores files of contentType.
func (r *Router) For(contentType string) models.Transferer {
	if r.UsesBridge(contentType) {
		return r.bridge
	}
	return r.objects
}

// Objects returns the default object store backend, used for cover images.
func (r *Router) Objects() models.Transferer {
	return r.objects
}

func (r *Router) Upload(ctx context.Context, req models.TransferRequest) (string, error) {
	return r.For(req.ContentType).Upload(ctx, req)
}

func (r *Router) Delete(ctx context.Context, ref string) error {
	backend, err := r.owner(ref)
	if err != nil {
		return err
	}
	return backend.Delete(ctx, ref)
}

// Rename renames the file behind ref when its backend supports it.
func (r *Router) Rename(ctx context.Context, ref, newName string) error {
	backend, err := r.owner(ref)
	if err != nil {
		return err
	}
	renamer, ok := backend.(Renamer)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRenameUnsupported, backend.Name())
	}
	return renamer.Rename(ctx, ref, newName)
}

func (r *Router) owner(ref string) (models.Transferer, error) {
	scheme, ok := SchemeOf(ref)
	if !ok {
		return r.objects, nil
	}
	if scheme != r.scheme || r.bridge == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	return r.bridge, nil
}

// Compile-time check that Router implements Transferer.
var _ models.Transferer = (*Router)(nil)
