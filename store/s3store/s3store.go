// Package s3store keeps records as objects in an S3 compatible bucket (AWS S3 or
// MinIO), one object per record under a key prefix.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/chandan-cmd-dev/quant-go/store"
)

const (
	defaultRegion = "us-east-1"
	defaultPrefix = "records/"
	contentType   = "application/x-quant-record"
	objectSuffix  = ".qb"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// Config holds explicit construction parameters. Empty credentials fall back to
// the default AWS credential chain.
type Config struct {
	Region          string
	Bucket          string
	Prefix          string
	Endpoint        string // custom endpoint, e.g. MinIO
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
}

// Environment variables read by OpenFromEnv:
//
//	QUANT_S3_BUCKET      bucket (required)
//	QUANT_S3_REGION      region (default us-east-1)
//	QUANT_S3_PREFIX      key prefix (default records/)
//	QUANT_S3_ENDPOINT    endpoint URL, for MinIO
//	QUANT_S3_PATH_STYLE  true|false
func OpenFromEnv(ctx context.Context) (*Store, error) {
	bucket := os.Getenv("QUANT_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("QUANT_S3_BUCKET required for the s3 store")
	}
	return New(ctx, Config{
		Bucket:    bucket,
		Region:    os.Getenv("QUANT_S3_REGION"),
		Prefix:    os.Getenv("QUANT_S3_PREFIX"),
		Endpoint:  os.Getenv("QUANT_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("QUANT_S3_PATH_STYLE"), "true"),
	})
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient wraps an existing client. An empty prefix means "records/".
func NewWithClient(client *s3.Client, bucket, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) key(id uuid.UUID) string { return s.prefix + id.String() + objectSuffix }

func notFound(err error) bool {
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}

func (s *Store) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	switch {
	case err == nil:
		return true, nil
	case notFound(err):
		return false, nil
	}
	return false, err
}

// Put emulates create-only semantics with a HEAD request first.
func (s *Store) Put(ctx context.Context, rec store.Record) error {
	payload, err := store.Encode(rec)
	if err != nil {
		return err
	}
	key := s.key(rec.ID)
	ok, err := s.exists(ctx, key)
	if err != nil {
		return fmt.Errorf("head %s: %w", key, err)
	}
	if ok {
		return fmt.Errorf("%w: %s", store.ErrExists, rec.ID)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"label": rec.Label},
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (store.Record, error) {
	return s.get(ctx, s.key(id))
}

func (s *Store) get(ctx context.Context, key string) (store.Record, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if notFound(err) {
		return store.Record{}, fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("get %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()
	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return store.Record{}, fmt.Errorf("read %s: %w", key, err)
	}
	return store.Decode(payload)
}

func (s *Store) List(ctx context.Context) ([]store.Record, error) {
	var out []store.Record
	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &s.prefix, ContinuationToken: token})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", s.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, objectSuffix) {
				continue
			}
			rec, err := s.get(ctx, key)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		if aws.ToBool(page.IsTruncated) && page.NextContinuationToken != nil {
			token = page.NextContinuationToken
			continue
		}
		break
	}
	store.SortRecords(out)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	key := s.key(id)
	ok, err := s.exists(ctx, key)
	if err != nil {
		return fmt.Errorf("head %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
