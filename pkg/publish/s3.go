package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dd0wney/cluso-pdbgraph/pkg/contact"
)

// Content types of uploaded edge lists
const (
	ContentTypePlain  = "text/plain; charset=utf-8"
	ContentTypeSnappy = "application/x-snappy-framed"
)

// putObjectAPI is the part of *s3.Client the uploader needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures NewS3Uploader. Static credentials are used when both
// keys are set; otherwise the default AWS credential chain applies.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	PathStyle bool
	AccessKey string
	SecretKey string
}

// S3Uploader stores edge list files in a bucket.
type S3Uploader struct {
	client putObjectAPI
	bucket string
	prefix string
}

// NewS3Uploader builds an S3 client from opts.
func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(opts.Endpoint))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
	})
	return newS3Uploader(client, bucket, opts.Prefix), nil
}

func newS3Uploader(client putObjectAPI, bucket, prefix string) *S3Uploader {
	return &S3Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Name implements Publisher.
func (u *S3Uploader) Name() string { return "s3" }

// Publish uploads the file at a.Path under ObjectKey.
func (u *S3Uploader) Publish(ctx context.Context, a *Artifact) error {
	if err := a.validate(); err != nil {
		return err
	}
	if a.Path == "" {
		return fmt.Errorf("%w: no file to upload", ErrInvalidArtifact)
	}

	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("failed to open edge list: %w", err)
	}
	defer f.Close()

	contentType := ContentTypePlain
	if a.Compressed {
		contentType = ContentTypeSnappy
	}

	key := ObjectKey(u.prefix, a)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"pdbref":         a.PDBRef,
			"edgelisttype":   string(a.Type),
			"hydrogenstatus": a.HydrogenStatus,
			"scaling":        contact.FormatScale(a.Scaling),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s: %w", key, u.bucket, err)
	}
	return nil
}

// ObjectKey is prefix/pdbref/type/hydrogenstatus/file name.
func ObjectKey(prefix string, a *Artifact) string {
	return path.Join(strings.Trim(prefix, "/"), a.PDBRef, string(a.Type), a.HydrogenStatus, filepath.Base(a.Path))
}
