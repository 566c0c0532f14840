package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// MaxImageSize bounds parcel image uploads.
const MaxImageSize = 5 << 20

var ErrNotImage = errors.New("file is not an image")

// ImageStore saves uploaded images on S3 when a bucket is configured and on
// local disk otherwise.
type ImageStore struct {
	uploader  *s3manager.Uploader
	bucket    string
	region    string
	uploadDir string
	baseURL   string
}

// NewImageStore picks S3 when bucket is set. AWS credentials come from the
// standard AWS environment variables or instance role.
func NewImageStore(bucket, region, uploadDir, baseURL string, logger zerolog.Logger) (*ImageStore, error) {
	s := &ImageStore{
		bucket:    bucket,
		region:    region,
		uploadDir: uploadDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}

	if bucket != "" {
		sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
		if err != nil {
			return nil, errors.Wrap(err, "create aws session")
		}
		s.uploader = s3manager.NewUploader(sess)
		logger.Info().Str("bucket", bucket).Msg("storing images on S3")
		return s, nil
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload directory")
	}
	logger.Warn().Str("dir", uploadDir).Msg("S3 not configured, storing images on local disk")
	return s, nil
}

// UsesS3 reports whether uploads go to S3.
func (s *ImageStore) UsesS3() bool {
	return s.uploader != nil
}

// UploadDir is the local directory served under /uploads.
func (s *ImageStore) UploadDir() string {
	return s.uploadDir
}

// Upload stores file under folder and returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > MaxImageSize {
		return "", errors.Wrapf(ErrNotImage, "image larger than %d bytes", MaxImageSize)
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxImageSize+1))
	if err != nil {
		return "", errors.Wrap(err, "read upload")
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	key := path.Join(folder, name)

	if s.UsesS3() {
		_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", errors.Wrap(err, "upload to s3")
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
	}

	dir := filepath.Join(s.uploadDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create folder")
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", errors.Wrap(err, "save upload")
	}
	return fmt.Sprintf("%s/uploads/%s", s.baseURL, key), nil
}
