package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"warbler/internal/config"
	"warbler/internal/logging"
	"warbler/internal/model"
)

const profileImageQuality = 85

// objectStore is the part of the S3 API profile images need.
type objectStore interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// MediaService stores profile images in an S3-compatible bucket (Cloudflare R2).
type MediaService struct {
	store     objectStore
	bucket    string
	publicURL string
	newKey    func() string
	logger    *zap.Logger
}

// NewMediaService connects to the R2 bucket named in cfg.
// It returns ErrStorageUnavailable when the R2 settings are incomplete.
func NewMediaService(ctx context.Context, cfg *config.Config) (*MediaService, error) {
	if !cfg.StorageEnabled() {
		return nil, model.ErrStorageUnavailable
	}

	client, err := newR2Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newMediaService(client, cfg.R2BucketName, cfg.R2PublicURL), nil
}

func newR2Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID))
		o.UsePathStyle = true
	}), nil
}

func newMediaService(store objectStore, bucket, publicURL string) *MediaService {
	return &MediaService{
		store:     store,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		newKey:    func() string { return profileImageKey(uuid.NewString()) },
		logger:    logging.WithComponent("media_service"),
	}
}

// UploadProfileImage crops the upload to a square JPEG and stores it under a
// fresh key. size is the length the client declared for the upload.
func (s *MediaService) UploadProfileImage(ctx context.Context, r io.Reader, size int64) (*model.UploadResult, error) {
	img, err := decodeProfileImage(r, size, model.MaxImageSizeBytes)
	if err != nil {
		return nil, err
	}

	body, err := encodeProfileImage(img)
	if err != nil {
		return nil, err
	}

	key := s.newKey()
	_, err = s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(model.ContentTypeJPEG),
		CacheControl: aws.String(model.ImageCacheControl),
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}

	s.logger.Info("profile image stored", zap.String("key", key), zap.Int("bytes", len(body)))
	return &model.UploadResult{URL: s.publicURL + "/" + key, Key: key}, nil
}

// DiscardProfileImage deletes an image stored by UploadProfileImage that
// never made it onto a profile.
func (s *MediaService) DiscardProfileImage(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, model.ProfileImageFolder+"/") {
		return fmt.Errorf("refusing to delete %q outside %s/", key, model.ProfileImageFolder)
	}
	_, err := s.store.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.logger.Info("profile image discarded", zap.String("key", key))
	return nil
}

func profileImageKey(id string) string {
	return model.ProfileImageFolder + "/" + id + model.ProfileImageExt
}

// decodeProfileImage reads at most maxSize bytes and decodes them. The type
// is sniffed from the content; the client's Content-Type is not trusted.
func decodeProfileImage(r io.Reader, size, maxSize int64) (image.Image, error) {
	if size > maxSize {
		return nil, model.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, model.ErrFileTooLarge
	}

	if !model.IsAllowedImageType(http.DetectContentType(data)) {
		return nil, model.ErrInvalidImageType
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImageType, err)
	}
	return img, nil
}

func encodeProfileImage(img image.Image) ([]byte, error) {
	square := imaging.Fill(img, model.ProfileImageWidth, model.ProfileImageHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.JPEG, imaging.JPEGQuality(profileImageQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
