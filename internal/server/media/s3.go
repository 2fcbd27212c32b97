package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/google/uuid"
)

// Uploader stores an encoded image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, encoded string) (string, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	now = time.Now
)

// S3Uploader writes images to a bucket on an S3-compatible endpoint such as MinIO.
type S3Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
	maxBytes  int64
}

func NewS3Uploader(ctx context.Context, cfg *sc.Config) (*S3Uploader, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Uploader{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: strings.TrimRight(cfg.S3PublicURL, "/"),
		maxBytes:  cfg.MaxImageBytes,
	}, nil
}

// StorageKey returns a fresh object key of the form images/YYYY/M/D/<uuid>.<ext>.
func StorageKey(ext string) string {
	d := now()
	return fmt.Sprintf("images/%d/%d/%d/%s.%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// Upload decodes encoded and stores it. Decoding problems come back as
// validation errors; storage failures are wrapped.
func (u *S3Uploader) Upload(ctx context.Context, encoded string) (string, error) {
	img, err := DecodeImage(encoded, u.maxBytes)
	if err != nil {
		return "", err
	}

	key := StorageKey(img.Ext())
	err = putObject(u.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return u.publicURL + "/" + key, nil
}
