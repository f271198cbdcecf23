package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/haojie06/canvas-relay/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultContentType = "image/png"
	genericContentType = "application/octet-stream"
)

var (
	tracer            = otel.Tracer("canvas-relay/storage")
	ErrObjectTooLarge = errors.New("object exceeds size limit")
)

type Options struct {
	Endpoint string

	Region string

	AccessKey string // static credentials, empty falls back to env and IAM

	SecretKey string

	UseSSL bool

	MaxObjectBytes int64
}

// Object is a fully buffered object body.
type Object struct {
	Data        []byte
	ContentType string
}

type Client struct {
	client   *minio.Client
	maxBytes int64
}

func NewClient(opts Options) (*Client, error) {
	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
	if opts.AccessKey != "" {
		creds = credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, "")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &Client{client: client, maxBytes: opts.MaxObjectBytes}, nil
}

func NewClientFromConfig(c config.StorageConfig) (*Client, error) {
	return NewClient(Options{
		Endpoint:       c.Endpoint,
		Region:         c.Region,
		AccessKey:      c.AccessKey,
		SecretKey:      c.SecretKey,
		UseSSL:         c.UseSSL,
		MaxObjectBytes: c.MaxObjectBytes,
	})
}

// Put writes data as a single object, the write lands fully or not at all.
func (c *Client) Put(ctx context.Context, loc Locator, data []byte, contentType string) error {
	ctx, span := tracer.Start(ctx, "storage_put")
	defer span.End()
	span.SetAttributes(
		attribute.String("storage.bucket", loc.Bucket),
		attribute.String("storage.key", loc.Key),
		attribute.Int("storage.size", len(data)),
	)

	_, err := c.client.PutObject(ctx, loc.Bucket, loc.Key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put failed")
		return fmt.Errorf("failed to put %s: %w", loc, err)
	}
	return nil
}

// Get drains the object into memory, refusing anything above the size limit.
func (c *Client) Get(ctx context.Context, loc Locator) (*Object, error) {
	ctx, span := tracer.Start(ctx, "storage_get")
	defer span.End()
	span.SetAttributes(
		attribute.String("storage.bucket", loc.Bucket),
		attribute.String("storage.key", loc.Key),
	)

	obj, err := c.client.GetObject(ctx, loc.Bucket, loc.Key, minio.GetObjectOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get failed")
		return nil, fmt.Errorf("failed to get %s: %w", loc, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stat failed")
		return nil, fmt.Errorf("failed to stat %s: %w", loc, err)
	}
	if info.Size > c.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrObjectTooLarge, loc, info.Size, c.maxBytes)
	}

	data, err := readBounded(obj, info.Size, c.maxBytes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return nil, fmt.Errorf("failed to read %s: %w", loc, err)
	}
	span.SetAttributes(attribute.Int("storage.size", len(data)))

	return &Object{Data: data, ContentType: reportedContentType(info.ContentType)}, nil
}

// reportedContentType maps "no type" to the image default. minio-go fills a
// missing header with application/octet-stream, so that counts as missing.
func reportedContentType(contentType string) string {
	if contentType == "" || contentType == genericContentType {
		return DefaultContentType
	}
	return contentType
}

// readBounded drains r chunk by chunk into one buffer. sizeHint presizes the
// buffer, limit is enforced even when the hint is wrong.
func readBounded(r io.Reader, sizeHint, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	if sizeHint > 0 && sizeHint <= limit {
		buf.Grow(int(sizeHint))
	}
	n, err := buf.ReadFrom(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrObjectTooLarge, limit)
	}
	return buf.Bytes(), nil
}
