package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Totarae/openelex/internal/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3API часть клиента S3, которая нужна архиву
type S3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config параметры архива
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // MinIO, LocalStack
	Prefix   string
}

// S3Archive копирует тела документов в S3, метаданные хранит во вложенном Storage.
type S3Archive struct {
	Storage
	client S3API
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Client создаёт клиент S3 из стандартной цепочки учётных данных AWS
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Archive оборачивает next архивом в бакете
func NewS3Archive(next Storage, client S3API, bucket, prefix string, logger *zap.Logger) *S3Archive {
	return &S3Archive{
		Storage: next,
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		logger:  logger,
	}
}

// ObjectKey ключ объекта по содержимому: {prefix}{jurisdiction}/{sha256}.csv.
// Исправленный порталом файл получает новый ключ, старая версия остаётся в архиве.
func (a *S3Archive) ObjectKey(doc *model.Document) string {
	return a.prefix + doc.Jurisdiction + "/" + checksum(doc) + ".csv"
}

func checksum(doc *model.Document) string {
	if doc.Checksum != "" {
		return doc.Checksum
	}
	sum := sha256.Sum256(doc.Body)
	return hex.EncodeToString(sum[:])
}

// Save загружает тело в S3, если объекта ещё нет, затем сохраняет документ в next
func (a *S3Archive) Save(ctx context.Context, doc *model.Document) error {
	key := a.ObjectKey(doc)

	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	var notFound *types.NotFound
	switch {
	case err == nil:
		// та же версия уже в архиве
	case errors.As(err, &notFound):
		if err := a.put(ctx, key, doc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("s3 head %s failed: %w", key, err)
	}

	return a.Storage.Save(ctx, doc)
}

func (a *S3Archive) put(ctx context.Context, key string, doc *model.Document) error {
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "text/csv"
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc.Body),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"source-url":   doc.URL,
			"document-key": doc.Key,
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put %s failed: %w", key, err)
	}
	a.logger.Info("Archived document", zap.String("bucket", a.bucket), zap.String("key", key))
	return nil
}
