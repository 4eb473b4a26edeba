// Package storage keeps recipe images in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mobile/backend/config"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image is too large")
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// ObjectAPI is the part of the S3 client the store uses
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner signs GET URLs for private buckets
type Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ImageStore uploads, deletes and links recipe images
type ImageStore struct {
	api        ObjectAPI
	presigner  Presigner
	bucket     string
	publicBase string
	ttl        time.Duration
	maxBytes   int64
	log        *zap.Logger
}

// NewImageStore wraps a configured S3 client
func NewImageStore(client *s3.Client, cfg config.StorageConfig, log *zap.Logger) *ImageStore {
	return NewImageStoreWith(client, s3.NewPresignClient(client), cfg, log)
}

// NewImageStoreWith builds a store over any ObjectAPI; presigner may be nil when
// a public base URL is configured
func NewImageStoreWith(api ObjectAPI, presigner Presigner, cfg config.StorageConfig, log *zap.Logger) *ImageStore {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &ImageStore{
		api:        api,
		presigner:  presigner,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		ttl:        ttl,
		maxBytes:   maxBytes,
		log:        logger.OrNop(log).Named("storage"),
	}
}

// MaxBytes is the upload size limit
func (s *ImageStore) MaxBytes() int64 { return s.maxBytes }

// ExtensionFor maps an image content type to the object extension
func ExtensionFor(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := extensions[ct]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return ext, nil
}

// ObjectKey is {userId}/{recipeId}.{ext}
func ObjectKey(userID, recipeID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/%s.%s", userID, recipeID, ext)
}

// Upload stores the image and returns its object key. size may be -1 when unknown;
// the body is then read up to the limit.
func (s *ImageStore) Upload(ctx context.Context, userID, recipeID uuid.UUID, contentType string, body io.Reader, size int64) (string, error) {
	ext, err := ExtensionFor(contentType)
	if err != nil {
		return "", err
	}
	if size > s.maxBytes {
		return "", ErrTooLarge
	}

	var reader io.Reader = body
	if size < 0 {
		data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
		if err != nil {
			return "", fmt.Errorf("failed to read image: %w", err)
		}
		if int64(len(data)) > s.maxBytes {
			return "", ErrTooLarge
		}
		reader = bytes.NewReader(data)
		size = int64(len(data))
	}

	key := ObjectKey(userID, recipeID, ext)
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentTypes[ext]),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	s.log.Info("image uploaded", zap.String("key", key), zap.Int64("bytes", size))
	return key, nil
}

// Delete removes the object; an empty key is a no-op
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	s.log.Info("image deleted", zap.String("key", key))
	return nil
}

// URL returns a link the client can load: the public URL when a public base is
// configured, otherwise a presigned GET
func (s *ImageStore) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	if s.publicBase != "" {
		return s.publicBase + "/" + key, nil
	}
	if s.presigner == nil {
		return "", errors.New("no presigner configured")
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}
