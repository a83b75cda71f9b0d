// Package archive stores finished campaign reports in S3 as
// zstd-compressed JSON under <prefix>/<id>.json.zst.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "reports"

const keySuffix = ".json.zst"

// ErrNotFound is returned by Get when no report is stored under the ID.
var ErrNotFound = errors.New("report not found in archive")

// S3API is the subset of the S3 client the archive uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// S3Archive writes reports to one bucket.
type S3Archive struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Archive returns an archive for bucket. An empty prefix uses
// DefaultPrefix.
func NewS3Archive(client S3API, bucket, prefix string) *S3Archive {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &S3Archive{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a report ID.
func (a *S3Archive) Key(id string) string {
	return path.Join(a.prefix, id+keySuffix)
}

// Put compresses report as JSON and uploads it. It returns the object key.
func (a *S3Archive) Put(ctx context.Context, id string, report any) (string, error) {
	start := time.Now()
	body, err := encode(report)
	if err != nil {
		return "", fmt.Errorf("encode report %s: %w", id, err)
	}

	key := a.Key(id)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          &a.bucket,
		Key:             &key,
		Body:            bytes.NewReader(body),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("zstd"),
	})
	if err != nil {
		return "", fmt.Errorf("S3 PutObject %s: %w", key, err)
	}

	log.Info().
		Str("bucket", a.bucket).
		Str("key", key).
		Int("compressed_bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Report archived to S3")
	return key, nil
}

// Get downloads the report stored under id and decodes it into out.
func (a *S3Archive) Get(ctx context.Context, id string, out any) error {
	key := a.Key(id)
	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &a.bucket, Key: &key})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("S3 GetObject %s: %w", key, err)
	}
	defer result.Body.Close()

	if err := decode(result.Body, out); err != nil {
		return fmt.Errorf("decode report %s: %w", id, err)
	}
	log.Debug().Str("key", key).Msg("Report read from S3 archive")
	return nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	if err := json.NewEncoder(zw).Encode(v); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(r io.Reader, out any) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer zr.Close()
	return json.NewDecoder(zr).Decode(out)
}
