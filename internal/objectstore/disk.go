package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DiskStore writes objects under dir/<bucket>/ and serves them from publicBaseURL
type DiskStore struct {
	dir           string
	publicBaseURL string
	logger        *zap.Logger
	now           func() time.Time
}

// NewDiskStore creates a disk store rooted at dir
func NewDiskStore(dir, publicBaseURL string, logger *zap.Logger) (*DiskStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiskStore{
		dir:           dir,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        logger,
		now:           time.Now,
	}, nil
}

// Dir returns the root directory, served as static files by the API
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Upload(ctx context.Context, bucket, name string, r io.Reader, contentType string) (string, error) {
	if err := checkBucket(bucket); err != nil {
		return "", err
	}
	bucketDir := filepath.Join(s.dir, bucket)
	if err := os.MkdirAll(bucketDir, 0o755); err != nil {
		return "", err
	}

	object := ObjectName(s.now(), name)
	target := filepath.Join(bucketDir, object)
	// O_EXCL keeps uploads from overwriting an existing object
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", err
	}

	s.logger.Info("Stored object", zap.String("bucket", bucket), zap.String("object", object))
	return s.publicBaseURL + "/" + bucket + "/" + url.PathEscape(object), nil
}
