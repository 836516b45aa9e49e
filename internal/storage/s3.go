// Package storage keeps dashboard export snapshots in S3-compatible object
// storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("neural-admin/storage")

// Sentinel errors for storage operations
var (
	// ErrObjectNotFound indicates the requested object does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrAccessDenied indicates insufficient permissions for the operation
	ErrAccessDenied = errors.New("access denied")

	// ErrNetworkError indicates a network connectivity issue
	ErrNetworkError = errors.New("network error")
)

// MaxListedObjects caps how many keys a single List call collects.
const MaxListedObjects = 1000

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	// CreateBucket makes the bucket when missing instead of failing.
	// Production buckets are created out-of-band.
	CreateBucket bool
}

// S3Storage handles object storage operations
type S3Storage struct {
	client *minio.Client
	bucket string
}

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewS3Storage creates a new S3/MinIO storage client
func NewS3Storage(ctx context.Context, config S3Config) (*S3Storage, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, config.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if !config.CreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist: create it before starting the server", config.BucketName)
		}
		if err := client.MakeBucket(ctx, config.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", config.BucketName, err)
		}
	}

	return &S3Storage{
		client: client,
		bucket: config.BucketName,
	}, nil
}

// Upload stores data under key
func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, span := tracer.Start(ctx, "storage.upload",
		trace.WithAttributes(
			attribute.String("storage.key", key),
			attribute.Int("file.size", len(data)),
		))
	defer span.End()

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return classifyStorageError(err, "upload")
	}
	return nil
}

// Download returns the object stored under key
func (s *S3Storage) Download(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "storage.download",
		trace.WithAttributes(attribute.String("storage.key", key)))
	defer span.End()

	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, classifyStorageError(err, "download")
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, classifyStorageError(err, "download")
	}

	span.SetAttributes(attribute.Int("file.size", len(data)))
	return data, nil
}

// List returns the objects under prefix in key order
func (s *S3Storage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	ctx, span := tracer.Start(ctx, "storage.list",
		trace.WithAttributes(attribute.String("storage.prefix", prefix)))
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			span.RecordError(obj.Err)
			span.SetStatus(codes.Error, obj.Err.Error())
			return nil, classifyStorageError(obj.Err, "list")
		}
		objects = append(objects, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
		if len(objects) >= MaxListedObjects {
			break
		}
	}

	span.SetAttributes(attribute.Int("objects.count", len(objects)))
	return objects, nil
}

// Delete removes the object stored under key
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "storage.delete",
		trace.WithAttributes(attribute.String("storage.key", key)))
	defer span.End()

	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return classifyStorageError(err, "delete")
	}
	return nil
}

// classifyStorageError examines a storage error and returns an appropriate sentinel error
func classifyStorageError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		switch minioErr.Code {
		case "NoSuchKey", "NoSuchBucket":
			return fmt.Errorf("%s: %w", operation, ErrObjectNotFound)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%s: %w", operation, ErrAccessDenied)
		}
	}

	if containsAny(err.Error(), []string{"connection", "timeout", "network", "dial", "refused"}) {
		return fmt.Errorf("%s network issue: %w", operation, ErrNetworkError)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

func containsAny(s string, substrs []string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
