package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

// ObjectPutter is the subset of the S3 client the exporter needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader,
		objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

var _ ObjectPutter = (*minio.Client)(nil)

// parseS3Destination splits "s3://bucket/prefix" into bucket and prefix.
func parseS3Destination(destination string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(destination, "s3://")
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", &domain.ValidationError{Field: "destination", Reason: "s3 URL missing bucket"}
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

func (e *Exporter) copyToS3(ctx context.Context, srcPath, rel, destination string) error {
	bucket, prefix, err := parseS3Destination(destination)
	if err != nil {
		return err
	}

	if e.s3 == nil {
		client, err := newS3ClientFromEnv()
		if err != nil {
			return err
		}
		e.s3 = client
	}

	file, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("reading canonical file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("reading canonical file: %w", err)
	}

	object := path.Join(prefix, filepath.ToSlash(rel))
	_, err = e.s3.PutObject(ctx, bucket, object, file, stat.Size(), minio.PutObjectOptions{
		ContentType: "text/markdown",
	})
	if err != nil {
		return fmt.Errorf("uploading to %s: %w", destination, err)
	}
	return nil
}

// newS3ClientFromEnv builds an S3 client from INKWELL_S3_* variables.
func newS3ClientFromEnv() (*minio.Client, error) {
	endpoint := os.Getenv("INKWELL_S3_ENDPOINT")
	if endpoint == "" {
		return nil, &domain.ValidationError{Field: "destination", Reason: "INKWELL_S3_ENDPOINT not set"}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			os.Getenv("INKWELL_S3_ACCESS_KEY"),
			os.Getenv("INKWELL_S3_SECRET_KEY"), ""),
		Secure: os.Getenv("INKWELL_S3_USE_SSL") != "false",
	})
	if err != nil {
		return nil, fmt.Errorf("s3 connection: %w", err)
	}
	return client, nil
}
