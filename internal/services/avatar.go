package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const avatarURLExpiry = 5 * time.Minute

// ErrUploadsDisabled is returned when no bucket is configured
var ErrUploadsDisabled = errors.New("avatar uploads are not configured")

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Presigner signs S3 PUT requests
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Options configures the avatar bucket
type S3Options struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// AvatarUpload is the response with a pre-signed URL
type AvatarUpload struct {
	UploadURL string `json:"upload_url"`
	AvatarRef string `json:"avatar_ref"`
	ExpiresIn int    `json:"expires_in"`
}

// AvatarService hands out pre-signed URLs for profile pictures
type AvatarService struct {
	userRepo  *repository.UserRepository
	presigner Presigner
	bucket    string
	baseURL   string
}

// NewAvatarService builds an S3 backed avatar service. An empty bucket disables uploads.
func NewAvatarService(ctx context.Context, userRepo *repository.UserRepository, opts S3Options) (*AvatarService, error) {
	if opts.Bucket == "" {
		return &AvatarService{userRepo: userRepo}, nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewAvatarServiceWithPresigner(userRepo, s3.NewPresignClient(client), opts.Bucket, objectBaseURL(opts)), nil
}

// NewAvatarServiceWithPresigner builds an avatar service around an existing presigner
func NewAvatarServiceWithPresigner(userRepo *repository.UserRepository, presigner Presigner, bucket, baseURL string) *AvatarService {
	return &AvatarService{
		userRepo:  userRepo,
		presigner: presigner,
		bucket:    bucket,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Enabled reports whether uploads are configured
func (s *AvatarService) Enabled() bool {
	return s.presigner != nil && s.bucket != ""
}

// PresignUpload returns a pre-signed PUT URL and records the object as the user's avatar
func (s *AvatarService) PresignUpload(ctx context.Context, userID, contentType string) (*AvatarUpload, error) {
	if !s.Enabled() {
		return nil, ErrUploadsDisabled
	}
	ext, ok := avatarExtensions[strings.ToLower(contentType)]
	if !ok {
		return nil, invalidf("unsupported content type %q", contentType)
	}
	if !s.userRepo.Exists(ctx, userID) {
		return nil, notFound("user", userID)
	}

	// avatars/{user_id}/{uuid}.{ext}
	key := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.New().String(), ext)

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = avatarURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	ref := s.baseURL + "/" + key
	if _, err := s.userRepo.Update(ctx, userID, func(u *models.User) error {
		u.AvatarRef = ref
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to record avatar: %w", err)
	}

	log.Info().Str("user_id", userID).Str("key", key).Msg("Avatar upload URL issued")

	return &AvatarUpload{
		UploadURL: request.URL,
		AvatarRef: ref,
		ExpiresIn: int(avatarURLExpiry.Seconds()),
	}, nil
}

func objectBaseURL(opts S3Options) string {
	if opts.Endpoint != "" {
		return strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
}
