// Package minio archives session artifacts to S3-compatible object storage.
package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client the archiver uses.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError
}

type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	Region        string        `mapstructure:"region"`
	Bucket        string        `mapstructure:"bucket"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	// RetentionDays expires archived objects; 0 keeps them.
	RetentionDays int `mapstructure:"retention_days"`
}

type MinIOClient struct {
	client MinIOAPI
	config *MinIOConfig
	logger logging.Logger
}

func NewMinIOClient(ctx context.Context, cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	applyDefaults(cfg)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	c, err := NewMinIOClientWithAPI(ctx, client, cfg, log)
	if err != nil {
		return nil, err
	}
	c.logger.Info("MinIO client connected", logging.String("endpoint", cfg.Endpoint), logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// NewMinIOClientWithAPI wires an existing API implementation and prepares
// the bucket.
func NewMinIOClientWithAPI(ctx context.Context, api MinIOAPI, cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	applyDefaults(cfg)
	c := &MinIOClient{client: api, config: cfg, logger: log.Named("minio")}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	if err := c.SetupLifecycleRules(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "cdforge-artifacts"
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
}

func (c *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to reach object storage")
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to create bucket "+c.config.Bucket)
	}
	c.logger.Info("Created bucket", logging.String("bucket", c.config.Bucket))
	return nil
}

func (c *MinIOClient) SetupLifecycleRules(ctx context.Context) error {
	if c.config.RetentionDays <= 0 {
		return nil
	}
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{{
		ID:     "session-artifacts-expiry",
		Status: "Enabled",
		Expiration: lifecycle.Expiration{
			Days: lifecycle.ExpirationDays(c.config.RetentionDays),
		},
	}}
	if err := c.client.SetBucketLifecycle(ctx, c.config.Bucket, cfg); err != nil {
		// Some S3 implementations reject lifecycle configuration.
		c.logger.Warn("failed to set lifecycle rules", logging.String("bucket", c.config.Bucket), logging.Err(err))
	}
	return nil
}

func (c *MinIOClient) Bucket() string {
	return c.config.Bucket
}

// HealthCheck reports whether the bucket is reachable.
func (c *MinIOClient) HealthCheck(ctx context.Context) error {
	ok, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "object storage unavailable")
	}
	if !ok {
		return errors.New(errors.CodeStorageError, "bucket missing: "+c.config.Bucket)
	}
	return nil
}

func (c *MinIOClient) PresignedGetURL(ctx context.Context, objectName string) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, c.config.Bucket, objectName, c.config.PresignExpiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeStorageError, "failed to presign object URL")
	}
	return u.String(), nil
}

//Personal.AI order the ending
