package objectstore

import (
	"errors"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/env"
)

const (
	DriverS3     = "s3"
	DriverLocal  = "local"
	DriverMemory = "memory"
)

// DefaultBucket is the bucket evidence files are written to.
const DefaultBucket = "evidence"

// Config holds object storage configuration
type Config struct {
	Driver          string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	LocalRoot       string
	CreateBucket    bool
}

// LoadConfig loads storage configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Driver:          env.GetEnv("STORAGE_DRIVER", DriverS3),
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", DefaultBucket),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		LocalRoot:       env.GetEnv("LOCAL_STORAGE_ROOT", "uploads"),
		CreateBucket:    !env.IsProd(),
	}

	if config.Driver == DriverS3 {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required for the s3 storage driver")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required for the s3 storage driver")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required for the s3 storage driver")
		}
	}

	return config, nil
}
