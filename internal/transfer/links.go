package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/mediashelf/internal/cache"
)

// Presigner is the object store side of link resolution.
type Presigner interface {
	PresignedGet(ctx context.Context, objectPath string, ttl time.Duration) (string, error)
	URL(objectPath string) string
}

// Links turns durable references into URLs a client can open.
type Links struct {
	objects   Presigner
	cache     cache.Cache
	scheme    string
	viewerURL string
	ttl       time.Duration
}

// NewLinks creates a Links resolver. ca may be nil to disable caching of signed URLs.
func NewLinks(objects Presigner, ca cache.Cache, scheme, viewerURL string, ttl time.Duration) *Links {
	return &Links{
		objects:   objects,
		cache:     ca,
		scheme:    scheme,
		viewerURL: viewerURL,
		ttl:       ttl,
	}
}

// PublicURL returns the viewer URL of a bridge file or the unsigned object URL of a path.
// References with a foreign scheme are returned unchanged.
func (l *Links) PublicURL(ref string) string {
	if id, ok := ParseBridgeRef(l.scheme, ref); ok {
		return fmt.Sprintf(l.viewerURL, id)
	}
	if IsBridgeRef(ref) {
		return ref
	}
	return l.objects.URL(ref)
}

// SignedURL returns a time-limited download URL for an object path. Signed URLs are
// cached for half their lifetime so a cached link is always still valid when served.
func (l *Links) SignedURL(ctx context.Context, ref string) (string, error) {
	if IsBridgeRef(ref) {
		return "", ErrSignedURLUnavailable
	}

	key := cache.SignedURLKey(ref)
	if l.cache != nil {
		if v, found, err := l.cache.Get(ctx, key); err == nil && found {
			return string(v), nil
		}
	}

	u, err := l.objects.PresignedGet(ctx, ref, l.ttl)
	if err != nil {
		return "", fmt.Errorf("signing %s: %w", ref, err)
	}

	if l.cache != nil && l.ttl >= 2*time.Second {
		if err := l.cache.Set(ctx, key, []byte(u), l.ttl/2); err != nil {
			slog.Warn("caching signed url failed", "error", err)
		}
	}
	return u, nil
}
