package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/filedo/internal/netx"
	sc "github.com/dmitrijs2005/filedo/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Publisher copies staged archives to an S3-compatible bucket through a
// presigned PUT and hands out a presigned GET for downloading them.
type S3Publisher struct {
	config     *sc.Config
	httpClient *http.Client
}

func NewS3Publisher(config *sc.Config, httpClient *http.Client) *S3Publisher {
	return &S3Publisher{config: config, httpClient: httpClient}
}

// ArchiveStorageKey places archives under a per-day prefix.
func ArchiveStorageKey(archiveName string, now time.Time) string {
	return fmt.Sprintf("archives/%d/%d/%d/%s", now.Year(), now.Month(), now.Day(), archiveName)
}

func (p *S3Publisher) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.config.S3RootUser,
			p.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if p.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// Publish uploads the archive at archivePath and returns a presigned
// download URL valid for the configured presign validity.
func (p *S3Publisher) Publish(ctx context.Context, archivePath, archiveName string) (string, error) {
	presignClient, err := p.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := p.config.S3Bucket
	key := ArchiveStorageKey(archiveName, time.Now().UTC())
	expires := s3.WithPresignExpires(p.config.PresignValidity)

	put, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, expires)
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	if err := netx.UploadPresigned(ctx, p.httpClient, put.URL, netx.ContentTypeZip, f, info.Size()); err != nil {
		return "", err
	}

	get, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, expires)
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return get.URL, nil
}
