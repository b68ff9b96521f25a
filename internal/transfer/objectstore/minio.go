package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/kiranshivaraju/mediashelf/pkg/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectExists is returned when an upload targets a path that is already taken.
var ErrObjectExists = errors.New("object already exists")

type Opts func(c *config)

type config struct {
	endpoint        string
	bucket          string
	accessKey       string
	secretAccessKey string
	useSSL          bool
}

func newConfig(opts ...Opts) *config {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// Store keeps files in one bucket of an S3-compatible object store. The durable
// reference of a file is its object path.
type Store struct {
	cfg    *config
	client *minio.Client
}

func New(opts ...Opts) (*Store, error) {
	cfg := newConfig(opts...)
	if cfg.endpoint == "" || cfg.bucket == "" {
		return nil, fmt.Errorf("object store: endpoint and bucket are required")
	}

	client, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return &Store{cfg: cfg, client: client}, nil
}

func (s *Store) Name() string { return "objectstore" }

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.cfg.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", s.cfg.bucket, err)
	}
	return nil
}

// Upload writes the file to req.Path, or to <contentType>/<fileName> when no path is
// given. Existing objects are never overwritten.
func (s *Store) Upload(ctx context.Context, req models.TransferRequest) (string, error) {
	objectPath := req.Path
	if objectPath == "" {
		objectPath = DefaultPath(req.ContentType, req.File.Name)
	}

	_, err := s.client.StatObject(ctx, s.cfg.bucket, objectPath, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return "", fmt.Errorf("%w: %s", ErrObjectExists, objectPath)
	case !isNotFound(err):
		return "", s.wrap(ctx, "checking object", err)
	}

	_, err = s.client.PutObject(ctx, s.cfg.bucket, objectPath,
		bytes.NewReader(req.File.Data), req.File.Size(),
		minio.PutObjectOptions{ContentType: req.File.MIMEType})
	if err != nil {
		return "", s.wrap(ctx, "putting object", err)
	}
	return objectPath, nil
}

func (s *Store) Delete(ctx context.Context, ref string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		return s.wrap(ctx, "removing object", err)
	}
	return nil
}

// PresignedGet returns a time-limited download URL for an object path.
func (s *Store) PresignedGet(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.cfg.bucket, objectPath, ttl, url.Values{})
	if err != nil {
		return "", s.wrap(ctx, "presigning object", err)
	}
	return u.String(), nil
}

// URL returns the unsigned address of an object path.
func (s *Store) URL(objectPath string) string {
	return s.client.EndpointURL().JoinPath(s.cfg.bucket, objectPath).String()
}

// wrap surfaces context errors unchanged so callers can detect cancellation.
func (s *Store) wrap(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%s: %w", op, err)
}

// DefaultPath is the object path of a newly uploaded file.
func DefaultPath(contentType, fileName string) string {
	return path.Join(contentType, fileName)
}

// UniquePath is used when an edit replaces a file, so the previous object stays intact.
func UniquePath(contentType, fileName string, now time.Time) string {
	return path.Join(contentType, fmt.Sprintf("%d_%s", now.UnixNano(), fileName))
}

// CoverPath is the object path of a cover image.
func CoverPath(fileName string) string {
	return path.Join("covers", fileName)
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func WithEndpoint(endpoint string) Opts {
	return func(c *config) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) Opts {
	return func(c *config) {
		c.bucket = bucket
	}
}

func WithAccessKey(accessKey string) Opts {
	return func(c *config) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) Opts {
	return func(c *config) {
		c.secretAccessKey = secretKey
	}
}

func WithSSL(useSSL bool) Opts {
	return func(c *config) {
		c.useSSL = useSSL
	}
}
