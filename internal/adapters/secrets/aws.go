package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	secretsmanagertypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// AWSConfig contains configuration for the AWS Secrets Manager store.
type AWSConfig struct {
	// AWS region, e.g. "us-east-1"
	Region string

	// Optional profile name for local development
	Profile string

	// Optional custom endpoint for LocalStack testing
	Endpoint string

	CacheTTL    time.Duration
	EnableCache bool
}

// DefaultAWSConfig returns the default AWS store configuration.
func DefaultAWSConfig(region string) *AWSConfig {
	return &AWSConfig{
		Region:      region,
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

type awsStore struct {
	client *secretsmanager.Client
	config *AWSConfig
	logger ports.Logger
	cache  *secretCache
}

// NewAWSStore creates a Store backed by AWS Secrets Manager.
func NewAWSStore(ctx context.Context, cfg *AWSConfig, logger ports.Logger) (Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOptions := []func(*secretsmanager.Options){}
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager store initialized",
		ports.String("region", cfg.Region),
		ports.Bool("cache_enabled", cfg.EnableCache),
	)

	return &awsStore{
		client: secretsmanager.NewFromConfig(awsConfig, clientOptions...),
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

func (s *awsStore) GetSecret(ctx context.Context, path string) (*Secret, error) {
	if cached := s.cache.get(path); cached != nil {
		s.logger.Debug("Secret retrieved from cache", ports.String("path", path))
		return cached, nil
	}

	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		s.logger.Error("Failed to retrieve secret", ports.String("path", path), ports.Err(err))
		return nil, fmt.Errorf("failed to get secret %s: %w", path, err)
	}

	secret := &Secret{
		Value:    aws.ToString(result.SecretString),
		Version:  aws.ToString(result.VersionId),
		Metadata: make(map[string]string),
	}
	if result.CreatedDate != nil {
		secret.CreatedAt = result.CreatedDate.Format(time.RFC3339)
	}
	if result.ARN != nil {
		secret.Metadata["arn"] = *result.ARN
	}
	if result.Name != nil {
		secret.Metadata["name"] = *result.Name
	}

	s.cache.set(path, secret)
	return secret, nil
}

func (s *awsStore) PutSecret(ctx context.Context, path, value string, metadata map[string]string) (string, error) {
	s.logger.Info("Putting secret to AWS Secrets Manager", ports.String("path", path))

	result, err := s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(path),
		SecretString: aws.String(value),
	})
	if err == nil {
		s.cache.invalidate(path)
		return aws.ToString(result.VersionId), nil
	}

	// Secret may not exist yet; create it
	createInput := &secretsmanager.CreateSecretInput{
		Name:         aws.String(path),
		SecretString: aws.String(value),
	}
	if len(metadata) > 0 {
		tags := make([]secretsmanagertypes.Tag, 0, len(metadata))
		for key, val := range metadata {
			tags = append(tags, secretsmanagertypes.Tag{
				Key:   aws.String(key),
				Value: aws.String(val),
			})
		}
		createInput.Tags = tags
	}

	createResult, createErr := s.client.CreateSecret(ctx, createInput)
	if createErr != nil {
		s.logger.Error("Failed to create secret", ports.String("path", path), ports.Err(createErr))
		return "", fmt.Errorf("failed to create secret: %w", createErr)
	}

	s.cache.invalidate(path)
	return aws.ToString(createResult.VersionId), nil
}
