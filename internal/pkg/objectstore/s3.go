package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gofiber/fiber/v2/log"
)

// S3Store writes blobs to an S3 compatible bucket
type S3Store struct {
	client *s3.Client
	config *Config
}

// NewS3Store creates the S3 client and checks that the bucket is reachable
func NewS3Store(cfg *Config) (*S3Store, error) {
	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// MinIO and other S3 compatible services
			o.UsePathStyle = true
		}
	})

	store := &S3Store{client: client, config: cfg}
	if err := store.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to S3: %w", err)
	}

	log.Infof("[S3Store] Initialized S3 store for bucket: %s", cfg.BucketName)
	return store, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.config.BucketName),
	})
	if err == nil {
		return nil
	}
	if !s.config.CreateBucket {
		return fmt.Errorf("bucket %s not accessible: %w", s.config.BucketName, err)
	}

	log.Warnf("[S3Store] Bucket %s not found, attempting to create it", s.config.BucketName)
	input := &s3.CreateBucketInput{Bucket: aws.String(s.config.BucketName)}
	if s.config.EndpointURL == "" && s.config.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.config.Region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.config.BucketName, err)
	}
	log.Infof("[S3Store] Created bucket: %s", s.config.BucketName)
	return nil
}

// Put uploads data under path
func (s *S3Store) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if err := checkPath(path); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.BucketName),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.config.BucketName, path, err)
	}
	return nil
}

// Delete removes the object at path. A missing object is not an error.
func (s *S3Store) Delete(ctx context.Context, path string) error {
	if err := checkPath(path); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(path),
	})
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return nil
	}
	return fmt.Errorf("failed to delete s3://%s/%s: %w", s.config.BucketName, path, err)
}
