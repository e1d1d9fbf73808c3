// Package uploads stores member files (profile pictures, payment
// receipts) in S3 and serves them back through the API.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/olimpofit/gym-server/internal/config"
	"github.com/olimpofit/gym-server/internal/errs"
)

// Stored describes one uploaded object.
type Stored struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Service stores and retrieves uploaded files in S3.
type Service struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewService creates the uploads service. Returns an error when the
// AWS config cannot be assembled; a missing bucket is caught earlier
// by the config layer.
func NewService(ctx context.Context, cfg config.StorageConfig) (*Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Service{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *Service) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

// Put stores a file and returns its generated key. The original
// filename only contributes its extension; keys are UUIDs so member
// uploads cannot collide or be guessed.
func (s *Service) Put(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*Stored, error) {
	key := uuid.New().String() + strings.ToLower(path.Ext(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, errs.Provider(err, "failed to store upload")
	}

	log.Printf("[Uploads] Stored %s (%d bytes)", key, size)
	return &Stored{Key: key, Size: size, ContentType: contentType, UploadedAt: time.Now().UTC()}, nil
}

// Get streams an object back. The caller must close the reader.
func (s *Service) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", errs.NotFound("upload %s not found", key)
		}
		return nil, "", errs.Provider(err, "failed to fetch upload")
	}

	contentType := "application/octet-stream"
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return out.Body, contentType, nil
}

// Delete removes an object. Deleting a missing key is not an error;
// S3 delete is idempotent.
func (s *Service) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return errs.Provider(err, "failed to delete upload")
	}
	log.Printf("[Uploads] Deleted %s", key)
	return nil
}
