package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/agentstation/tablemerge/pkg/dataset"
	pkgerrors "github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
)

// S3API is the subset of the S3 client used to fetch objects.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client from the default AWS configuration
// chain. A non-empty region overrides the configured one.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.NewConfigError("aws", "cannot load AWS configuration", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// S3Source reads a CSV object from S3.
type S3Source struct {
	client     S3API
	bucket     string
	key        string
	name       string
	sampleSize int
}

// ParseS3URI splits "s3://bucket/key" into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "s3" || u.Host == "" || strings.Trim(u.Path, "/") == "" {
		return "", "", &pkgerrors.ValidationError{Field: "uri", Value: uri, Message: "expected s3://bucket/key"}
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// NewS3 creates a reader for the object at s3://bucket/key.
func NewS3(client S3API, bucket, key string, opts ...CSVOption) *S3Source {
	c := &CSVSource{name: datasetName(key)}
	for _, opt := range opts {
		opt(c)
	}
	return &S3Source{client: client, bucket: bucket, key: key, name: c.name, sampleSize: c.sampleSize}
}

// Type returns TypeS3.
func (s *S3Source) Type() Type { return TypeS3 }

// Name returns the dataset name.
func (s *S3Source) Name() string { return s.name }

// URI returns the object location.
func (s *S3Source) URI() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

// Read downloads and parses the object.
func (s *S3Source) Read(ctx context.Context) (*dataset.Dataset, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NewNotFoundError("object", s.URI())
		}
		return nil, pkgerrors.WrapResource("get", "object", s.URI(), err)
	}
	defer func() { _ = out.Body.Close() }()

	d, err := ParseCSV(s.name, s.URI(), out.Body, s.sampleSize)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug().
		Str("dataset", s.name).
		Str("uri", s.URI()).
		Int("rows", d.Len()).
		Msg("Read CSV object")
	return d, nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return true
		}
	}
	return false
}
