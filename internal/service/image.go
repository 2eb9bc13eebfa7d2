package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/macrolog/backend/config"
)

const presignedURLExpiry = 15 * time.Minute

// allowed photo content types, keyed by extension
var photoContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// PhotoService stores progress photos in S3.
type PhotoService struct {
	s3 *config.S3Config
}

func NewPhotoService(s3cfg *config.S3Config) *PhotoService {
	return &PhotoService{s3: s3cfg}
}

// UploadProgressPhoto stores the uploaded file under the user's prefix and
// returns the object URL to persist on the progress entry.
func (s *PhotoService) UploadProgressPhoto(ctx context.Context, userID, entryID uuid.UUID, file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := photoContentTypes[ext]
	if !ok {
		return "", fmt.Errorf("unsupported image type: %s", ext)
	}

	key := fmt.Sprintf("progress-photos/%s/%s%s", userID, entryID, ext)
	_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3.BucketName, key), nil
}

// PhotoURL returns a presigned GET URL for a stored photo key.
func (s *PhotoService) PhotoURL(ctx context.Context, key string) (string, error) {
	return s.s3.GeneratePresignedURL(ctx, key, presignedURLExpiry)
}
