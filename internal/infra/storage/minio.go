package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
)

// Store archives run reports to a MinIO/S3 bucket
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	now        func() time.Time
}

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region, now: time.Now}, nil
}

// ObjectKey groups reports by UTC day
func ObjectKey(at time.Time, runID string) string {
	return fmt.Sprintf("runs/%s/%s.json", at.UTC().Format("2006-01-02"), runID)
}

// Archive uploads the report as JSON and returns its URL
func (s *Store) Archive(ctx context.Context, runID string, report domain.Report) (string, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	key := ObjectKey(s.now(), runID)
	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", err
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucketName, key)
	return url, nil
}
