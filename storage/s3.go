// Package storage uploads artifacts to an S3-compatible object store and hands back
// their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/KAsare1/Gymhub-server/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// ErrUpload is returned when the object store rejects or never acknowledges an upload.
var ErrUpload = errors.New("upload failed")

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes objects with a public-read ACL.
type S3Store struct {
	client  putObjectAPI
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewS3Store builds a client for the configured endpoint. An empty endpoint targets AWS.
func NewS3Store(cfg config.StorageConfig, logger *zap.Logger) *S3Store {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return newS3Store(s3.New(opts), cfg, logger)
}

func newS3Store(client putObjectAPI, cfg config.StorageConfig, logger *zap.Logger) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
		logger:  logger.With(zap.String("component", "storage")),
	}
}

func publicBaseURL(cfg config.StorageConfig) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimRight(cfg.PublicURL, "/")
	case cfg.Endpoint != "" && cfg.UsePathStyle:
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	case cfg.Endpoint != "":
		return strings.Replace(strings.TrimRight(cfg.Endpoint, "/"), "://", "://"+cfg.Bucket+".", 1)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Put stores data under namespace/key and returns the object's public URL.
func (s *S3Store) Put(ctx context.Context, data []byte, namespace, key string) (string, error) {
	objectKey := path.Join(namespace, key)
	contentType := http.DetectContentType(data)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", ErrUpload, objectKey, err)
	}

	s.logger.Debug("object stored",
		zap.String("key", objectKey),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)),
	)
	return s.baseURL + "/" + objectKey, nil
}
