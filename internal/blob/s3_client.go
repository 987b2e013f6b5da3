package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures the MinIO/S3 client.
type S3Config struct {
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
}

// S3Client implements ObjectStore using the minio-go SDK.
type S3Client struct {
	client *minio.Client
	cfg    *S3Config
}

// NewS3Client creates a MinIO/S3 client from config.
func NewS3Client(cfg *S3Config) (*S3Client, error) {
	if cfg == nil {
		return nil, wrapError(CodeEndpointUnreachable, true, fmt.Errorf("config is required"))
	}
	if cfg.EndpointURL == "" {
		return nil, wrapError(CodeEndpointUnreachable, true, fmt.Errorf("endpoint URL is required"))
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, wrapError(CodeAuthInvalid, false, fmt.Errorf("credentials are required"))
	}

	u, err := url.Parse(cfg.EndpointURL)
	if err != nil {
		return nil, wrapError(CodeEndpointUnreachable, true, fmt.Errorf("invalid endpoint URL: %w", err))
	}
	endpoint := u.Host
	if endpoint == "" {
		endpoint = cfg.EndpointURL
	}

	useSSL := cfg.UseSSL
	if u.Scheme == "https" {
		useSSL = true
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, wrapError(CodeEndpointUnreachable, true, fmt.Errorf("failed to create minio client: %w", err))
	}

	return &S3Client{client: client, cfg: cfg}, nil
}

func (s *S3Client) Ping(ctx context.Context) error {
	// List buckets as a health check
	_, err := s.client.ListBuckets(ctx)
	if err != nil {
		return classifyMinioError(err)
	}
	return nil
}

func (s *S3Client) EnsureBucket(ctx context.Context, bucket string) error {
	if bucket == "" {
		return wrapError(CodeBucketNotFound, false, fmt.Errorf("bucket name is required"))
	}
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return classifyMinioError(err)
	}
	if exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.cfg.Region})
	if err != nil {
		return classifyMinioError(err)
	}
	return nil
}

func (s *S3Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if bucket == "" {
		return false, nil
	}
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, classifyMinioError(err)
	}
	return exists, nil
}

func (s *S3Client) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	if bucket == "" {
		return wrapError(CodeBucketNotFound, false, fmt.Errorf("bucket is required"))
	}
	if key == "" {
		return wrapError(CodeWriteFailed, false, fmt.Errorf("object key is required"))
	}
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return classifyMinioError(err)
	}
	return nil
}

func (s *S3Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		return nil, wrapError(CodeBucketNotFound, false, fmt.Errorf("bucket is required"))
	}
	if key == "" {
		return nil, wrapError(CodeObjectNotFound, false, fmt.Errorf("object key is required"))
	}
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyMinioError(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classifyMinioError(err)
	}
	return data, nil
}

func (s *S3Client) ListPrefix(ctx context.Context, bucket, prefix string) ([]string, error) {
	if bucket == "" {
		return nil, wrapError(CodeBucketNotFound, false, fmt.Errorf("bucket is required"))
	}
	var keys []string
	objectCh := s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range objectCh {
		if obj.Err != nil {
			return nil, classifyMinioError(obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// classifyMinioError converts minio-go errors to our structured Error type.
func classifyMinioError(err error) *Error {
	if err == nil {
		return nil
	}

	if minioErr, ok := err.(minio.ErrorResponse); ok {
		switch minioErr.Code {
		case "NoSuchBucket":
			return wrapError(CodeBucketNotFound, false, err)
		case "NoSuchKey":
			return wrapError(CodeObjectNotFound, false, err)
		case "AccessDenied":
			return wrapError(CodePermissionDenied, false, err)
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return wrapError(CodeAuthInvalid, false, err)
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "no such bucket"):
		return wrapError(CodeBucketNotFound, false, err)
	case strings.Contains(errStr, "no such key"), strings.Contains(errStr, "not found"):
		return wrapError(CodeObjectNotFound, false, err)
	case strings.Contains(errStr, "access denied"), strings.Contains(errStr, "forbidden"):
		return wrapError(CodePermissionDenied, false, err)
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "timeout"):
		return wrapError(CodeEndpointUnreachable, true, err)
	}
	return wrapError(CodeEndpointUnreachable, true, err)
}
