package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/itsmostafa/bomfold/internal/bomerr"
	"github.com/itsmostafa/bomfold/internal/materialize"
)

// Environment variables read by StoreConfigFromEnv.
const (
	EnvS3Endpoint  = "BOMFOLD_S3_ENDPOINT"
	EnvS3AccessKey = "BOMFOLD_S3_ACCESS_KEY"
	EnvS3SecretKey = "BOMFOLD_S3_SECRET_KEY"
)

// StoreConfig locates an S3-compatible endpoint, e.g. http://localhost:9000.
type StoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
}

// StoreConfigFromEnv reads the BOMFOLD_S3_* variables.
func StoreConfigFromEnv() StoreConfig {
	return StoreConfig{
		Endpoint:  os.Getenv(EnvS3Endpoint),
		AccessKey: os.Getenv(EnvS3AccessKey),
		SecretKey: os.Getenv(EnvS3SecretKey),
	}
}

// NewMinio builds a client from an endpoint URL. The scheme picks TLS.
func NewMinio(config StoreConfig) (*minio.Client, error) {
	if config.Endpoint == "" {
		return nil, bomerr.InvalidArgument("object store endpoint is not configured (set %s)", EnvS3Endpoint)
	}

	// * initialize minio client
	parsed, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, bomerr.InvalidArgument("failed to parse object store endpoint: %v", err)
	}
	if parsed.Host == "" {
		return nil, bomerr.InvalidArgument("object store endpoint %q has no host", config.Endpoint)
	}

	client, err := minio.New(parsed.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store client: %w", err)
	}
	return client, nil
}

// Uploader is the part of *minio.Client the object store sink needs.
type Uploader interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Object formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ObjectStore uploads the document under Bucket/Prefix. CSV produces two
// objects, JSON a single item_sync.json.
type ObjectStore struct {
	Client Uploader
	Bucket string
	Prefix string
	Format string
}

func (s *ObjectStore) Write(ctx context.Context, out *materialize.Output) error {
	switch s.Format {
	case FormatCSV, "":
		if err := s.putCSV(ctx, BOMsName+".csv", bomRecords(out)); err != nil {
			return err
		}
		return s.putCSV(ctx, BOMEntriesName+".csv", entryRecords(out))
	case FormatJSON:
		var buf bytes.Buffer
		if err := (&JSON{W: &buf}).Write(ctx, out); err != nil {
			return err
		}
		return s.put(ctx, "item_sync.json", "application/json", &buf)
	default:
		return bomerr.InvalidArgument("unsupported object format %q (valid options: csv, json)", s.Format)
	}
}

// ObjectName joins the prefix and a file name.
func (s *ObjectStore) ObjectName(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}

func (s *ObjectStore) putCSV(ctx context.Context, name string, records [][]string) error {
	var buf bytes.Buffer
	if err := writeCSV(&buf, records); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return s.put(ctx, name, "text/csv", &buf)
}

func (s *ObjectStore) put(ctx context.Context, name, contentType string, buf *bytes.Buffer) error {
	object := s.ObjectName(name)
	_, err := s.Client.PutObject(ctx, s.Bucket, object, buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", s.Bucket, object, err)
	}
	return nil
}
