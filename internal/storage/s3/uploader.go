// Package s3 uploads rendered files to an S3 or S3-compatible bucket when
// the optional upload target is configured.
package s3

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pausetrim/internal/config"
)

// Uploader pushes local files into a bucket.
type Uploader struct {
	client *s3.Client
	bucket string
	region string
	prefix string
}

// NewUploader builds an uploader from config. Returns nil when uploads are
// disabled; callers treat a nil uploader as "skip".
func NewUploader(ctx context.Context, cfg *config.Config) (*Uploader, error) {
	if cfg == nil || !cfg.S3.Enabled {
		return nil, nil
	}

	var configOpts []func(*awsconfig.LoadOptions) error
	configOpts = append(configOpts, awsconfig.WithRegion(cfg.S3.Region))
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.S3.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &Uploader{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.S3.Bucket,
		region: cfg.S3.Region,
		prefix: strings.Trim(cfg.S3.Prefix, "/"),
	}, nil
}

// Key returns the object key the uploader would use for localPath.
func (u *Uploader) Key(localPath string) string {
	name := filepath.Base(localPath)
	if u == nil || u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

// UploadFile uploads localPath to the configured bucket and returns the
// object URL.
func (u *Uploader) UploadFile(ctx context.Context, localPath string) (string, error) {
	if u == nil {
		return "", nil
	}
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload source: %w", err)
	}
	defer file.Close()

	key := u.Key(localPath)
	if _, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   file,
	}); err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}
