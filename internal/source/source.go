// Package source opens input files by location: a local path or an
// s3://bucket/key object URL.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// Opener returns a reader for the data at a location.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// ObjectGetter is the part of the S3 client used to fetch objects.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures the S3 client used for s3:// locations.
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // optional, e.g. MinIO
	PathStyle bool   `yaml:"path_style"`
}

// Multi opens local paths directly and s3:// URLs through an S3 client that
// is created on first use.
type Multi struct {
	cfg S3Config

	once    sync.Once
	client  ObjectGetter
	initErr error
}

// New returns an opener. The AWS configuration is only loaded when an s3://
// location is opened.
func New(cfg S3Config) *Multi {
	return &Multi{cfg: cfg}
}

// NewWithClient returns an opener using a preconfigured object getter.
func NewWithClient(client ObjectGetter) *Multi {
	m := &Multi{client: client}
	m.once.Do(func() {})
	return m
}

// Open implements Opener.
func (m *Multi) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !IsS3(location) {
		return os.Open(location)
	}

	bucket, key, err := ParseS3(location)
	if err != nil {
		return nil, err
	}
	client, err := m.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", location, err)
	}
	return out.Body, nil
}

func (m *Multi) s3Client(ctx context.Context) (ObjectGetter, error) {
	m.once.Do(func() {
		region := m.cfg.Region
		if region == "" {
			region = "us-east-1"
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			m.initErr = fmt.Errorf("load AWS config: %w", err)
			return
		}
		m.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if m.cfg.PathStyle {
				o.UsePathStyle = true
			}
			if m.cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(m.cfg.Endpoint)
			}
		})
	})
	return m.client, m.initErr
}

// IsS3 reports whether location is an s3:// URL.
func IsS3(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

// ParseS3 splits an s3://bucket/key URL.
func ParseS3(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location %q (want s3://bucket/key)", location)
	}
	return bucket, key, nil
}

var _ Opener = (*Multi)(nil)
