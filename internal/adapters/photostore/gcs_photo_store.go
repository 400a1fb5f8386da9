package photostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/haircarelog/haircarelog-api/internal/config"
	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/platform/logger"
)

var _ domain.PhotoStorage = (*GCSPhotoStore)(nil)

var ErrUnsupportedPhotoType = domain.ErrUnsupportedPhotoType

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// objectWriter opens a writer for one object. It lets tests avoid a live bucket.
type objectWriter func(ctx context.Context, name, contentType string) io.WriteCloser

type GCSPhotoStore struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
	open          objectWriter
	log           *logger.Logger
}

func NewGCSPhotoStore(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*GCSPhotoStore, error) {
	if cfg.GCSBucket == "" {
		return nil, errors.New("storage: GCS_BUCKET is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com/" + cfg.GCSBucket
	}

	s := &GCSPhotoStore{
		client:        client,
		bucket:        cfg.GCSBucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		log:           log.With("service", "GCSPhotoStore"),
	}
	s.open = func(ctx context.Context, name, contentType string) io.WriteCloser {
		w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
		w.ContentType = contentType
		w.CacheControl = "public, max-age=31536000"
		return w
	}
	return s, nil
}

func (s *GCSPhotoStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *GCSPhotoStore) Upload(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPhotoType, contentType)
	}

	name := objectName(userID, ext, time.Now().UTC())

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := s.open(ctx, name, contentType)
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize %s: %w", name, err)
	}

	s.log.Info("scalp photo uploaded", "user_id", userID, "object", name, "bytes", n, "original_name", path.Base(filename))
	return s.publicURL(name), nil
}

func (s *GCSPhotoStore) publicURL(name string) string {
	return s.publicBaseURL + "/" + (&url.URL{Path: name}).EscapedPath()
}

// objectName is scalp-photos/<user>/<yyyy>/<mm>/<uuid><ext>.
func objectName(userID, ext string, now time.Time) string {
	return path.Join("scalp-photos", url.PathEscape(userID), now.Format("2006"), now.Format("01"), uuid.NewString()+ext)
}
