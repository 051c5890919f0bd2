package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"poster-backend/internal/shared/storage/object"
)

// Store reads objects from Amazon S3. Keys take the form "bucket/key".
type Store struct {
	client *s3.Client
	prefix string
}

// New creates a new S3-backed object reader using the default credential chain.
func New(ctx context.Context, region, prefix string) (*Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client: s3.NewFromConfig(cfg),
		prefix: normalizePrefix(prefix),
	}, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (object.Object, error) {
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}

	bucket, key, err := splitBucketKey(storageKey)
	if err != nil {
		return object.Object{}, err
	}
	objectKey := applyPrefix(s.prefix, key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return object.Object{}, fmt.Errorf("s3 get object bucket=%s key=%s: %w", bucket, objectKey, err)
	}
	return object.Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
	}, nil
}

func splitBucketKey(storageKey string) (string, string, error) {
	trimmed := strings.TrimLeft(strings.TrimSpace(storageKey), "/")
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || strings.Trim(key, "/") == "" {
		return "", "", object.ErrInvalidKey
	}
	return bucket, key, nil
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ object.Opener = (*Store)(nil)
