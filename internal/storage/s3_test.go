package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medslot/config"
)

// newOfflineStorage skips the bucket bootstrap of NewS3Storage; with a fixed
// region, presigning needs no round trip.
func newOfflineStorage(t *testing.T) *S3Storage {
	t.Helper()

	cfg := config.S3Config{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "access",
		SecretAccessKey: "secret",
		Bucket:          "medslot",
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region: cfg.Region,
	})
	require.NoError(t, err)

	return &S3Storage{client: client, cfg: cfg, logger: zap.NewNop()}
}

func TestS3Storage_UploadRejectsEmptyInput(t *testing.T) {
	s := newOfflineStorage(t)

	_, err := s.UploadFile(context.Background(), nil, "reports/a.xlsx", "application/octet-stream")
	assert.Error(t, err)

	_, err = s.UploadFile(context.Background(), []byte("x"), "/", "application/octet-stream")
	assert.Error(t, err)
}

func TestS3Storage_GetPresignedURL(t *testing.T) {
	s := newOfflineStorage(t)

	_, err := s.GetPresignedURL(context.Background(), "", time.Minute)
	assert.Error(t, err)

	raw, err := s.GetPresignedURL(context.Background(), "receipts/appointment-1.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/medslot/receipts/appointment-1.pdf", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}
