package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	appconfig "github.com/sceneyard/sceneyard/internal/config"
)

// PresignExpiry bounds how long a signed upload/download URL stays valid.
const PresignExpiry = 15 * time.Minute

var ErrObjectNotFound = errors.New("object not found")

// Object is a fetched storage object with the headers handlers pass through.
type Object struct {
	Body         io.ReadCloser
	ContentType  string
	ETag         string
	CacheControl string
	Bytes        int64
}

// Client wraps an S3-compatible bucket (R2, MinIO, S3). The application
// never proxies presigned-PUT payloads; clients write to storage directly.
type Client struct {
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	uploader      *manager.Uploader
	bucket        string
	publicBaseURL string
}

// NewClient builds a storage client from configuration. Static credentials
// and a custom endpoint keep it compatible with non-AWS providers.
func NewClient(ctx context.Context, cfg *appconfig.Config) (*Client, error) {
	if cfg.StorageAccessKeyID == "" || cfg.StorageSecretKey == "" || cfg.StorageBucket == "" || cfg.StorageEndpoint == "" {
		return nil, fmt.Errorf("storage credentials (STORAGE_ENDPOINT, STORAGE_ACCESS_KEY_ID, STORAGE_SECRET_ACCESS_KEY, STORAGE_BUCKET) must be set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.StorageAccessKeyID, cfg.StorageSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		o.UsePathStyle = true
	})

	return &Client{
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		uploader:      manager.NewUploader(s3Client),
		bucket:        cfg.StorageBucket,
		publicBaseURL: strings.TrimSuffix(cfg.StoragePublicBaseURL, "/"),
	}, nil
}

// PresignPut returns a time-bounded URL the client can PUT bytes to,
// bypassing the application server for the payload.
func (c *Client) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	req, err := c.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign PUT for %s: %w", key, err)
	}
	return req.URL, nil
}

// PresignGet returns a time-bounded URL for reading a private object.
func (c *Client) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign GET for %s: %w", key, err)
	}
	return req.URL, nil
}

// Upload writes an object through the application server. Fallback path for
// clients that cannot use presigned PUTs.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", key, c.bucket, err)
	}
	return nil
}

// Get fetches an object for streaming back to the client. The caller owns
// Body and must close it.
func (c *Client) Get(ctx context.Context, key string) (*Object, error) {
	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get %s from bucket %s: %w", key, c.bucket, err)
	}

	obj := &Object{
		Body:         out.Body,
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
		CacheControl: aws.ToString(out.CacheControl),
		Bytes:        aws.ToInt64(out.ContentLength),
	}
	return obj, nil
}

// Delete removes an object.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from bucket %s: %w", key, c.bucket, err)
	}
	return nil
}

// PublicURL joins the configured public base URL with a key. Empty when no
// public base is configured.
func (c *Client) PublicURL(key string) string {
	if c.publicBaseURL == "" {
		return ""
	}
	return c.publicBaseURL + "/" + key
}
