package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Client struct {
	Client     *s3.Client
	Presigner  *s3.PresignClient
	Downloader *manager.Downloader
	Uploader   *manager.Uploader
	BucketName string
}

// NewS3Client connects to an S3-compatible endpoint. Credentials come from
// S3_ACCESS_KEY_ID and S3_ACCESS_KEY_SECRET.
func NewS3Client(ctx context.Context, bucketName, endpoint, region string) (*S3Client, error) {
	accessKeyId := os.Getenv("S3_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("S3_ACCESS_KEY_SECRET")

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = usePathStyle(endpoint)
	})

	return &S3Client{
		Client:     client,
		Presigner:  s3.NewPresignClient(client),
		Downloader: manager.NewDownloader(client),
		Uploader:   manager.NewUploader(client),
		BucketName: bucketName,
	}, nil
}

// usePathStyle detects MinIO and local emulators, which don't serve
// virtual-hosted bucket names.
func usePathStyle(endpoint string) bool {
	return strings.Contains(endpoint, "minio") ||
		strings.Contains(endpoint, "localhost") ||
		strings.Contains(endpoint, "127.0.0.1")
}

// Key joins object key parts with "/", ignoring empty parts.
func Key(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			kept = append(kept, p)
		}
	}
	return path.Join(kept...)
}

func (s *S3Client) DownloadFile(ctx context.Context, objectKey, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	file, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = s.Downloader.Download(ctx, file, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("download %s: %w", objectKey, err)
	}
	return nil
}

func (s *S3Client) UploadFile(ctx context.Context, localPath, objectKey string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = s.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.BucketName),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(ContentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectKey, err)
	}
	return nil
}

// UploadDir uploads every regular file below dir under prefix, skipping
// dotfiles such as the sweep lock. It returns the uploaded keys.
func (s *S3Client) UploadDir(ctx context.Context, dir, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := Key(prefix, filepath.ToSlash(rel))
		if err := s.UploadFile(ctx, p, key); err != nil {
			return err
		}
		keys = append(keys, key)
		return nil
	})
	return keys, err
}

// GetObject opens an object for reading. The caller closes the body.
func (s *S3Client) GetObject(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (s *S3Client) GeneratePresignedPut(ctx context.Context, objectKey string, ttl time.Duration) (*v4.PresignedHTTPRequest, error) {
	return s.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(ttl))
}

func (s *S3Client) GeneratePresignedGet(ctx context.Context, objectKey string, ttl time.Duration) (*v4.PresignedHTTPRequest, error) {
	return s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(ttl))
}

// ContentType guesses the MIME type of a sweep artifact from its extension.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".pdf":
		return "application/pdf"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
