package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/pkg/errors"
)

// Store uploads files and returns their public URL
type Store interface {
	Upload(ctx context.Context, bucket, name string, r io.Reader, contentType string) (string, error)
}

// ObjectName prefixes the original file name with the upload time in unix
// milliseconds so repeated uploads of the same file never collide.
func ObjectName(now time.Time, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "file"
	}
	return fmt.Sprintf("%d_%s", now.UnixMilli(), url.PathEscape(base))
}

func checkBucket(bucket string) error {
	if !domain.IsKnownBucket(bucket) {
		return &errors.ErrValidation{Message: fmt.Sprintf("unknown bucket %q", bucket)}
	}
	return nil
}
