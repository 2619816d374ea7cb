package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appconfig "github.com/stagiu-portal/document-management-api/internal/config"
	"github.com/stagiu-portal/document-management-api/internal/models"
)

// S3Store stores blobs in an S3-compatible bucket (MinIO in local setups).
// Keys are structured documents/<yyyy>/<mm>/<uuid> so the bucket stays
// browsable; the key doubles as the blob ID.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds a store from the storage section of the configuration
func NewS3Store(ctx context.Context, cfg *appconfig.StorageConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load storage configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// newBlobKey generates a fresh blob ID
func newBlobKey() string {
	now := time.Now()
	return fmt.Sprintf("documents/%04d/%02d/%v", now.Year(), int(now.Month()), uuid.New())
}

// Put stores the payload under a fresh key and returns it as the blob ID
func (s *S3Store) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	key := newBlobKey()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store blob: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"blob_id": key,
		"size":    len(data),
	}).Debug("Stored blob")
	return key, nil
}

// Get retrieves a blob by ID. Unknown IDs map to models.ErrBlobNotFound.
func (s *S3Store) Get(ctx context.Context, blobID string) (*Blob, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blobID),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, models.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to retrieve blob %s: %w", blobID, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", blobID, err)
	}

	contentType := "application/octet-stream"
	if out.ContentType != nil && *out.ContentType != "" {
		contentType = *out.ContentType
	}
	return &Blob{Data: data, ContentType: contentType}, nil
}
