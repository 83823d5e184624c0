package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3API is the subset of the S3 client used to fetch snapshots
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads an account snapshot stored as an S3 object
type S3Source struct {
	client S3API
	bucket string
	key    string
}

// NewS3Source creates a source for the object at bucket/key
func NewS3Source(client S3API, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

// S3SourceFactory builds an S3 source for s3://bucket/key using the default AWS credential chain
func S3SourceFactory(ctx context.Context, location string) (Source, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3Source(s3.NewFromConfig(cfg), bucket, key), nil
}

// ParseS3Location splits s3://bucket/key into its bucket and key
func ParseS3Location(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, SchemeS3+"://")
	if !ok {
		return "", "", fmt.Errorf("invalid s3 location %q", location)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 location %q must include bucket and key", location)
	}
	return bucket, key, nil
}

func (s *S3Source) Load(ctx context.Context) (*ParseResult, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	res, err := ParseCSV(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s3://%s/%s: %w", s.bucket, s.key, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("bucket", s.bucket).
		Str("key", s.key).
		Int("rows", len(res.Records)).
		Int("warnings", len(res.Warnings)).
		Msg("account source loaded")

	return res, nil
}
