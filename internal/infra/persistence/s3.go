package persistence

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const s3Suffix = ".json"

// S3Medium is a persistent byte-string medium storing one object per
// root entry under a bucket prefix. Root-entry names are percent-escaped
// into object key components.
type S3Medium struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Medium creates the medium. prefix may be empty; a non-empty
// prefix is normalized to end with "/".
func NewS3Medium(cfg aws.Config, bucket, prefix string, logger *slog.Logger) *S3Medium {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Medium{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// Load reads the object stored under root.
func (s *S3Medium) Load(ctx context.Context, root string) (string, bool, error) {
	key := s.objectKey(root)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", false, nil
		}
		return "", false, err
	}
	defer func() {
		if err := out.Body.Close(); err != nil {
			s.logger.Error("failed to close S3 object body", "key", key, "error", err)
		}
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Store writes the document as the object under root.
func (s *S3Medium) Store(ctx context.Context, root string, doc string) error {
	key := s.objectKey(root)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader([]byte(doc)),
	})
	return err
}

// Remove deletes the object under root. S3 treats deletion of a missing
// object as success, matching the medium contract.
func (s *S3Medium) Remove(ctx context.Context, root string) error {
	key := s.objectKey(root)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	return err
}

// Keys lists all root-entry names under the prefix.
func (s *S3Medium) Keys(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &s.prefix,
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(*obj.Key, s.prefix)
			if !strings.HasSuffix(name, s3Suffix) {
				continue
			}
			root, err := url.PathUnescape(strings.TrimSuffix(name, s3Suffix))
			if err != nil {
				s.logger.Error("unparseable object key while listing", "key", *obj.Key, "error", err)
				continue
			}
			keys = append(keys, root)
		}
	}
	return keys, nil
}

// Clear deletes every object under the prefix.
func (s *S3Medium) Clear(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	for _, root := range keys {
		if err := s.Remove(ctx, root); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Medium) objectKey(root string) string {
	return s.prefix + url.PathEscape(root) + s3Suffix
}
