package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
// Production runs against Wasabi object storage; local development against a
// MinIO container — both speak the same S3 API, so no code changes are needed.
type MinioStorage struct {
	client      *minio.Client
	bucket      string
	publicBase  string
	cacheMaxAge time.Duration
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists with a public-read
// policy, and returns a ready-to-use MinioStorage.
func NewMinioStorage(endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool, cacheMaxAge time.Duration) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Printf("storage: created bucket %q", bucket)
	}

	if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &MinioStorage{
		client:      client,
		bucket:      bucket,
		publicBase:  strings.TrimRight(publicBase, "/"),
		cacheMaxAge: cacheMaxAge,
	}, nil
}

var _ Storage = (*MinioStorage)(nil)

// Upload streams reader to the bucket under key. size must be the exact byte
// count (pass -1 only if the size is genuinely unknown — MinIO will buffer it).
// The object is stored world-readable with a short cache lifetime, and the
// caller's audit metadata (uploader IP, user id, session id) rides along as
// x-amz-meta-* headers. The store's key escaping treats "~" specially, so it
// is stripped before the write.
func (s *MinioStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string, metadata map[string]string) error {
	key = strings.ReplaceAll(key, "~", "")

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: fmt.Sprintf("max-age=%d", int(s.cacheMaxAge.Seconds())),
		UserMetadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Get retrieves the object stored under key. A missing key yields ErrNotFound;
// any other failure is a transport error.
func (s *MinioStorage) Get(ctx context.Context, key string) (*Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}

	// GetObject is lazy; Stat forces the request so missing keys surface here.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object %q: %w", key, err)
	}

	return &Object{
		Body:        obj,
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

// Healthy checks that the backing bucket is reachable and exists.
func (s *MinioStorage) Healthy(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

// PublicURL returns the browser-accessible URL for the given key.
// For local MinIO: "http://localhost:9000/media/profilePics/user-id/profilePic.webp"
// For Wasabi: "https://s3.eu-central-2.wasabisys.com/cdn.pulse-messenger.com/..."
func (s *MinioStorage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
