package archive

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSArchiver is the concrete Archiver backed by a Google Cloud Storage
// bucket. It assumes Application Default Credentials are configured
// (gcloud auth application-default login).
type GCSArchiver struct {
	client *storage.Client
	bucket string
}

// NewGCSArchiver wraps an existing storage client for the given bucket.
func NewGCSArchiver(client *storage.Client, bucket string) *GCSArchiver {
	return &GCSArchiver{client: client, bucket: bucket}
}

// Store uploads the image under a date-partitioned object name and returns
// its gs:// URI.
func (a *GCSArchiver) Store(ctx context.Context, data []byte, mimeType string) (string, error) {
	objectName := objectName(time.Now().UTC(), mimeType)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = mimeType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Store: writing object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Store: finalize upload %s: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}

// objectName builds invoices/<yyyy>/<mm>/<dd>/<uuid>.<ext> so the bucket
// stays browsable by upload date.
func objectName(now time.Time, mimeType string) string {
	return fmt.Sprintf("invoices/%s/%s%s", now.Format("2006/01/02"), uuid.NewString(), extensionFor(mimeType))
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
