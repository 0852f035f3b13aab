package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"mangareader/pkg/errors"
)

const publicURLPrefix = "https://storage.googleapis.com/"

// MaxImageSize bounds avatar and page uploads.
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// UploadImage stores an image under folder and returns its public URL.
func (c *CloudStorageClient) UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error) {
	name, err := objectName(folder, contentType, time.Now())
	if err != nil {
		return "", err
	}

	obj := c.client.Bucket(c.bucketName).Object(name)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, io.LimitReader(file, MaxImageSize+1)); err != nil {
		_ = wc.Close()
		return "", errors.Internal("Failed to upload image", err)
	}
	if err := wc.Close(); err != nil {
		return "", errors.Internal("Failed to upload image", err)
	}
	if wc.Attrs() != nil && wc.Attrs().Size > MaxImageSize {
		_ = obj.Delete(ctx)
		return "", errors.Validation("image must be at most 5MB")
	}

	return publicURL(c.bucketName, name), nil
}

// DeleteImage removes an object previously returned by UploadImage. URLs
// outside this bucket are ignored.
func (c *CloudStorageClient) DeleteImage(ctx context.Context, fileURL string) error {
	name, ok := parsePublicURL(c.bucketName, fileURL)
	if !ok {
		return nil
	}

	err := c.client.Bucket(c.bucketName).Object(name).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return errors.Internal("Failed to delete image", err)
	}
	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

func objectName(folder, contentType string, now time.Time) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", errors.Validation("file must be a jpeg, png, gif or webp image")
	}
	folder = strings.Trim(folder, "/")
	return fmt.Sprintf("public/%s/%s-%s%s", folder, uuid.New().String(), now.Format("20060102150405"), ext), nil
}

func publicURL(bucket, name string) string {
	return publicURLPrefix + bucket + "/" + name
}

func parsePublicURL(bucket, fileURL string) (string, bool) {
	if !strings.HasPrefix(fileURL, publicURLPrefix) {
		return "", false
	}
	parts := strings.SplitN(fileURL[len(publicURLPrefix):], "/", 2)
	if len(parts) != 2 || parts[0] != bucket || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
