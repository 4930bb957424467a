package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mrz1836/ledgerbox/internal/version"
)

// ErrNoBucket indicates an S3 store was configured without a bucket.
var ErrNoBucket = errors.New("s3 bucket is not configured")

// S3API is the subset of the S3 client used by S3.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config configures an S3 store. Endpoint is set for S3-compatible
// services such as MinIO or R2.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// S3 stores backups as objects under a key prefix.
type S3 struct {
	client S3API
	bucket string
	prefix string
}

// NewS3 creates an S3 store using the default AWS credential chain.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithAppID(version.AppID()),
	}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return NewS3WithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3WithClient creates an S3 store over an existing client.
func NewS3WithClient(client S3API, bucket, prefix string) *S3 {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// Put uploads data and returns an s3:// URL.
func (s *S3) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	key := s.prefix + name
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// Get downloads the named object.
func (s *S3) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + name),
	})
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", name, err)
	}
	return out.Body, nil
}

// List returns the backup names under the prefix.
func (s *S3) List(ctx context.Context) ([]string, error) {
	names := []string{}
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", s.bucket, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if strings.Contains(name, "/") || !IsBackupName(name) {
				continue
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func contentType(name string) string {
	if strings.HasSuffix(name, ".age") {
		return "application/octet-stream"
	}
	return "application/json"
}
