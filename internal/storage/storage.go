package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// ErrUpload is returned, wrapped, whenever an image could not be stored.
var ErrUpload = errors.New("image upload failed")

// ImageFile is an image received from a client.
type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// MinioUploader stores images in an S3 compatible bucket.
type MinioUploader struct {
	cfg    Config
	client *minio.Client
}

func NewMinioUploader(cfg Config) (*MinioUploader, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "minio client")
	}
	cfg.Endpoint = endpoint
	return &MinioUploader{cfg: cfg, client: client}, nil
}

func (u *MinioUploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.cfg.Bucket)
	if err != nil {
		return errors.Wrapf(err, "check bucket %s", u.cfg.Bucket)
	}
	if exists {
		return nil
	}
	return errors.Wrapf(u.client.MakeBucket(ctx, u.cfg.Bucket, minio.MakeBucketOptions{}), "make bucket %s", u.cfg.Bucket)
}

// Upload stores the image under dir with a random name and returns its URL.
func (u *MinioUploader) Upload(ctx context.Context, file ImageFile, dir string) (string, error) {
	if file.Body == nil {
		return "", errors.Wrap(ErrUpload, "empty image")
	}
	key := objectKey(dir, file.Filename, uuid.NewString())
	_, err := u.client.PutObject(ctx, u.cfg.Bucket, key, file.Body, file.Size, minio.PutObjectOptions{
		ContentType: file.ContentType,
	})
	if err != nil {
		return "", errors.Wrapf(ErrUpload, "put %s: %v", key, err)
	}
	return objectURL(u.cfg, key), nil
}

// objectKey builds "<dir>/<name><ext>", keeping the original file extension.
func objectKey(dir, filename, name string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(strings.Trim(dir, "/"), name+ext)
}

func objectURL(cfg Config, key string) string {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, cfg.Endpoint, cfg.Bucket, key)
}
