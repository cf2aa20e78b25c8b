package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func NewS3Client(logger *slog.Logger, client AWSS3Client, keyPrefix string) *S3Client {
	return &S3Client{
		logger:    logger,
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// S3Client wraps the AWS SDK client with the small object-store surface this
// service needs. All object keys are placed under the configured prefix.
type S3Client struct {
	logger    *slog.Logger
	client    AWSS3Client
	keyPrefix string
}

type AWSS3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

func (s S3Client) Upload(ctx context.Context, bucket string, key string, body []byte) error {
	s.logger.InfoContext(ctx, "Uploading", "bucket", bucket, "key", key, "size", len(body))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("error uploading object to bucket %q using key %q: %s", bucket, key, err)
	}
	return nil
}

func (s S3Client) Download(ctx context.Context, bucket string, key string, dst io.Writer, cb func(contentLength int64)) error {
	object, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("error downloading object from bucket %q using key %q: %s", bucket, key, err)
	}
	defer func() {
		_ = object.Body.Close()
	}()

	cb(aws.ToInt64(object.ContentLength))

	_, err = io.Copy(dst, object.Body)

	return err
}

func (s S3Client) Delete(ctx context.Context, bucket string, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("error deleting object from bucket %q using key %q: %s", bucket, key, err)
	}
	return nil
}

func (s S3Client) objectKey(key string) string {
	if s.keyPrefix == "" || s.keyPrefix == "/" {
		return key
	}
	return path.Join(s.keyPrefix, key)
}
