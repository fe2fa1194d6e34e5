package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Minio implements Storage against a MinIO (or any S3-compatible) backend.
// Objects are grouped under a logical folder inside the bucket; the returned
// reference is the canonical public URL of the stored object.
type Minio struct {
	client     *minio.Client
	bucket     string
	folder     string
	publicBase string
}

// NewMinio creates a MinIO client, ensures the bucket exists with a
// public-read policy, and returns a ready-to-use Minio storage.
func NewMinio(endpoint, accessKey, secretKey, bucket, folder, publicBase string, useSSL bool) (*Minio, error) {
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

	return &Minio{
		client:     client,
		bucket:     bucket,
		folder:     strings.Trim(folder, "/"),
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Save streams the blob to the object store and returns its public URL.
// The call blocks until the store has confirmed the object; only then is
// the reference safe to persist.
func (m *Minio) Save(ctx context.Context, originalName string, r io.Reader, size int64, contentType string) (string, error) {
	key := m.folder + "/" + objectName(originalName)

	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %q: %w", ErrUpload, key, err)
	}

	return m.publicBase + "/" + key, nil
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
