package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores an object and returns a reference to it.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (location string, err error)
}

// Options configure the MinIO/S3 connection. Endpoint may carry a scheme.
type Options struct {
	Endpoint  string
	UseSSL    bool
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

// Client writes invoice snapshots to a private bucket, created on first use.
// Objects are addressed as s3://<bucket>/<key> and never exposed publicly.
type Client struct {
	bucket string
	region string
	minio  *minio.Client
	logger *slog.Logger

	bucketOnce sync.Once
	bucketErr  error
}

func NewClient(o Options, logger *slog.Logger) (*Client, error) {
	endpoint := strings.TrimSpace(o.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(o.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	mc, err := minio.New(parseEndpoint(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(o.AccessKey), strings.TrimSpace(o.SecretKey), ""),
		Secure: o.UseSSL,
		Region: o.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{bucket: bucket, region: o.Region, minio: mc, logger: logger}, nil
}

func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := c.minio.PutObject(ctx, c.bucket, key, reader, -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	location := Location(c.bucket, key)
	c.logger.DebugContext(ctx, "object stored", "location", location, "size", info.Size, "etag", info.ETag)
	return location, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.bucketOnce.Do(func() {
		exists, err := c.minio.BucketExists(ctx, c.bucket)
		switch {
		case err != nil:
			c.bucketErr = fmt.Errorf("s3: check bucket: %w", err)
		case !exists:
			if err := c.minio.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
				c.bucketErr = fmt.Errorf("s3: create bucket: %w", err)
			}
		}
	})
	return c.bucketErr
}

// NoopUploader fails every upload. It stands in when no endpoint is set.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", errors.New("s3: uploader is not configured")
}

// Location formats the reference returned for a stored object.
func Location(bucket, key string) string {
	return "s3://" + bucket + "/" + strings.TrimLeft(key, "/")
}

func cleanKey(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("s3: object key %q escapes its prefix", key)
	}
	return key, nil
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var (
	_ Uploader = (*Client)(nil)
	_ Uploader = NoopUploader{}
)
