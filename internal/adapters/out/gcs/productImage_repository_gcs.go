// internal/adapters/out/gcs/productImage_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// ProductImageRepositoryGCS stores catalog product images in GCS and
// serves them via their public URL. It implements the image uploader
// port of the admin catalog usecase.
type ProductImageRepositoryGCS struct {
	Client *storage.Client
	Bucket string

	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string
}

func NewProductImageRepositoryGCS(client *storage.Client, bucket string) *ProductImageRepositoryGCS {
	return &ProductImageRepositoryGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: "https://storage.googleapis.com",
	}
}

func (r *ProductImageRepositoryGCS) effectiveBucket() (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("productImage_repository_gcs: storage client is nil")
	}
	b := strings.TrimSpace(r.Bucket)
	if b == "" {
		return "", errors.New("productImage_repository_gcs: bucket is empty")
	}
	return b, nil
}

// objectName builds "products/<unix-nano>_<fileName>". The timestamp
// prefix keeps re-uploads of the same file name from clobbering each
// other.
func objectName(fileName string, now time.Time) (string, error) {
	f := strings.TrimLeft(strings.TrimSpace(fileName), "/")
	if f == "" {
		return "", errors.New("productImage_repository_gcs: fileName is empty")
	}
	// Collapse any directory part a browser may have sent along.
	f = path.Base(f)
	return fmt.Sprintf("products/%d_%s", now.UnixNano(), f), nil
}

// Upload streams the image to GCS and returns its public URL.
func (r *ProductImageRepositoryGCS) Upload(ctx context.Context, fileName, contentType string, body io.Reader) (string, error) {
	bucketName, err := r.effectiveBucket()
	if err != nil {
		return "", err
	}
	if body == nil {
		return "", errors.New("productImage_repository_gcs: body is nil")
	}

	obj, err := objectName(fileName, time.Now())
	if err != nil {
		return "", err
	}

	w := r.Client.Bucket(bucketName).Object(obj).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	w.CacheControl = "public, max-age=3600"

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return r.publicURL(bucketName, obj), nil
}

func (r *ProductImageRepositoryGCS) publicURL(bucket, obj string) string {
	base := strings.TrimRight(strings.TrimSpace(r.PublicBaseURL), "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, obj)
}
