package claims

import (
	"context"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/storage/gcs"
)

// GCSUploader adapts the GCS client to the evidence uploader surface.
type GCSUploader struct {
	client *gcs.Client
}

// NewGCSUploader wraps a GCS client. A nil client yields a nil uploader,
// which the service treats as storage-not-configured.
func NewGCSUploader(client *gcs.Client) *GCSUploader {
	if client == nil {
		return nil
	}
	return &GCSUploader{client: client}
}

func (u *GCSUploader) Upload(ctx context.Context, filename, contentType string, payload []byte) (StoredEvidence, error) {
	object, err := u.client.Upload(ctx, filename, contentType, payload)
	if err != nil {
		return StoredEvidence{}, err
	}
	return StoredEvidence{Name: object.Name, URL: object.URL}, nil
}
