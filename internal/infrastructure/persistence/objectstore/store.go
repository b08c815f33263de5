// Package objectstore keeps the invoice collection as a JSON object in an
// S3-compatible bucket (AWS S3, MinIO and the like).
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence"
)

// Config holds object storage settings
type Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
	KeyPrefix    string
}

// objectAPI is the subset of the S3 client the store uses
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Store implements port.InvoiceStore on a single object
type Store struct {
	client objectAPI
	bucket string
	key    string
	logger *zap.Logger
}

// NewStore builds an S3 client from cfg
func NewStore(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("object storage bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("object storage credentials are required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid object storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	return NewStoreWithClient(client, cfg.Bucket, cfg.KeyPrefix, logger), nil
}

// NewStoreWithClient creates a store with an existing client. The object key is
// keyPrefix + port.CollectionName + ".json".
func NewStoreWithClient(client objectAPI, bucket, keyPrefix string, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		key:    keyPrefix + port.CollectionName + ".json",
		logger: logger,
	}
}

// Load reads the collection; a missing object is an empty collection
func (s *Store) Load(ctx context.Context) ([]*entity.Invoice, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return []*entity.Invoice{}, nil
		}
		s.logger.Error("Failed to get invoice collection",
			zap.String("bucket", s.bucket),
			zap.String("key", s.key),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get object %s: %w", s.key, err)
	}
	defer out.Body.Close()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", s.key, err)
	}
	return persistence.DecodeCollection(payload)
}

// Save uploads the whole collection
func (s *Store) Save(ctx context.Context, invoices []*entity.Invoice) error {
	payload, err := persistence.EncodeCollection(invoices)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		s.logger.Error("Failed to put invoice collection",
			zap.String("bucket", s.bucket),
			zap.String("key", s.key),
			zap.Int("count", len(invoices)),
			zap.Error(err))
		return fmt.Errorf("failed to put object %s: %w", s.key, err)
	}
	return nil
}

// Ping checks that the bucket is reachable
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("failed to reach bucket %s: %w", s.bucket, err)
	}
	return nil
}

var (
	_ port.InvoiceStore  = (*Store)(nil)
	_ port.HealthChecker = (*Store)(nil)
)
