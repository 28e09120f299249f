// Package reliability keeps copies of generated analyses off-site and runs
// periodic database maintenance.
package reliability

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/domain"
)

// ArchiveConfig locates an S3-compatible bucket (AWS S3, Cloudflare R2, MinIO)
type ArchiveConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Uploader is the part of manager.Uploader used by AnalysisArchive
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// AnalysisArchive stores each analysis as a markdown object under
// analyses/<user_id>/<uuid>.md
type AnalysisArchive struct {
	bucket   string
	uploader Uploader
	log      zerolog.Logger
}

// NewAnalysisArchive builds an S3 client for cfg and wraps it in an archive
func NewAnalysisArchive(ctx context.Context, cfg ArchiveConfig, log zerolog.Logger) (*AnalysisArchive, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewAnalysisArchiveWithUploader(cfg.Bucket, manager.NewUploader(client), log), nil
}

// NewAnalysisArchiveWithUploader creates an archive over an existing uploader
func NewAnalysisArchiveWithUploader(bucket string, uploader Uploader, log zerolog.Logger) *AnalysisArchive {
	return &AnalysisArchive{
		bucket:   bucket,
		uploader: uploader,
		log:      log.With().Str("service", "analysis_archive").Str("bucket", bucket).Logger(),
	}
}

// ObjectKey returns the bucket key for an analysis
func ObjectKey(a domain.Analysis) string {
	return fmt.Sprintf("analyses/%d/%s.md", a.UserID, a.UUID)
}

// Archive uploads the analysis
func (s *AnalysisArchive) Archive(ctx context.Context, a domain.Analysis) error {
	key := ObjectKey(a)
	start := time.Now()

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(a.Content),
		ContentType: aws.String("text/markdown; charset=utf-8"),
		Metadata: map[string]string{
			"user-id":    strconv.FormatInt(a.UserID, 10),
			"language":   string(a.Language),
			"created-at": a.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.log.Info().
		Str("key", key).
		Dur("duration_ms", time.Since(start)).
		Msg("Analysis archived")
	return nil
}

// NoopArchive is used when no bucket is configured
type NoopArchive struct{}

// Archive does nothing
func (NoopArchive) Archive(context.Context, domain.Analysis) error { return nil }
