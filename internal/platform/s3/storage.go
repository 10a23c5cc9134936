// Package s3 provides the object-storage implementation backed by AWS S3.
// It covers the three interactions the application needs: fetching uploaded
// objects for processing, writing derived objects back, and minting
// presigned upload URLs so clients never route file bytes through the API.
package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Storage implements object fetch, put, and upload-URL presigning against
// a single S3 bucket.
type Storage struct {
	client   *awss3.Client
	presign  *awss3.PresignClient
	bucket   string
	expiry   time.Duration
}

// NewStorage creates a Storage for the given region and bucket. Credentials
// come from the default AWS credential chain.
func NewStorage(ctx context.Context, region, bucket string, presignExpiry time.Duration) (*Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := awss3.NewFromConfig(cfg)
	return &Storage{
		client:  client,
		presign: awss3.NewPresignClient(client),
		bucket:  bucket,
		expiry:  presignExpiry,
	}, nil
}

// Fetch returns the body of the object at key. The caller must close the
// returned reader.
func (s *Storage) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	return out.Body, nil
}

// Put writes body to the object at key with the given content type.
func (s *Storage) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q: %w", key, err)
	}
	return nil
}

// PresignedUpload describes a presigned PUT the client can use to upload a
// file directly to the bucket.
type PresignedUpload struct {
	// URL is the presigned PUT URL.
	URL string
	// Key is the object key the upload will land at.
	Key string
}

// PresignUpload mints a presigned PUT URL for a new upload. The object key
// is uploads/<uuid>-<filename>, so two uploads of the same filename never
// collide.
func (s *Storage) PresignUpload(ctx context.Context, filename, contentType string) (*PresignedUpload, error) {
	key := UploadKey(filename)

	req, err := s.presign.PresignPutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, awss3.WithPresignExpires(s.expiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload for %q: %w", filename, err)
	}

	return &PresignedUpload{URL: req.URL, Key: key}, nil
}

// UploadKey builds the object key for a new client upload.
func UploadKey(filename string) string {
	return fmt.Sprintf("uploads/%s-%s", uuid.New(), filename)
}
