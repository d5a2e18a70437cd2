package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// VaultConfig contains configuration for the HashiCorp Vault store.
type VaultConfig struct {
	// Vault server address, e.g. "https://vault.example.com:8200"
	Address string

	// Authentication method: "token" or "approle"
	AuthMethod string

	// Token for token authentication
	Token string

	// AppRole credentials
	RoleID   string
	SecretID string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV secrets engine mount path (default: "secret")
	MountPath string

	// KV version: "v1" or "v2" (default: "v2")
	KVVersion string

	CacheTTL    time.Duration
	EnableCache bool

	TLSSkipVerify bool
}

// DefaultVaultConfig returns the default Vault store configuration.
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:     address,
		AuthMethod:  "token",
		MountPath:   "secret",
		KVVersion:   "v2",
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

type vaultStore struct {
	client *vault.Client
	config *VaultConfig
	logger ports.Logger
	cache  *secretCache
}

// NewVaultStore creates a Store backed by HashiCorp Vault.
func NewVaultStore(ctx context.Context, cfg *VaultConfig, logger ports.Logger) (Store, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSSkipVerify {
		if err := vaultConfig.ConfigureTLS(&vault.TLSConfig{Insecure: true}); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if err := authenticate(client, cfg); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	logger.Info("Vault store initialized",
		ports.String("address", cfg.Address),
		ports.String("auth_method", cfg.AuthMethod),
		ports.String("mount_path", cfg.MountPath),
	)

	return &vaultStore{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

func authenticate(client *vault.Client, cfg *VaultConfig) error {
	switch cfg.AuthMethod {
	case "token":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}
		resp, err := client.Logical().Write("auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

func (s *vaultStore) dataPath(path string) string {
	if s.config.KVVersion == "v2" {
		return fmt.Sprintf("%s/data/%s", s.config.MountPath, path)
	}
	return fmt.Sprintf("%s/%s", s.config.MountPath, path)
}

func (s *vaultStore) GetSecret(ctx context.Context, path string) (*Secret, error) {
	if cached := s.cache.get(path); cached != nil {
		s.logger.Debug("Secret retrieved from cache", ports.String("path", path))
		return cached, nil
	}

	raw, err := s.client.Logical().ReadWithContext(ctx, s.dataPath(path))
	if err != nil {
		s.logger.Error("Failed to retrieve secret from Vault", ports.String("path", path), ports.Err(err))
		return nil, fmt.Errorf("failed to read secret from Vault: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	var (
		secretData  map[string]interface{}
		version     string
		createdTime string
	)
	if s.config.KVVersion == "v2" {
		data, ok := raw.Data["data"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid secret format from Vault")
		}
		secretData = data
		if metadata, ok := raw.Data["metadata"].(map[string]interface{}); ok {
			if v, ok := metadata["version"].(json.Number); ok {
				version = v.String()
			}
			if ct, ok := metadata["created_time"].(string); ok {
				createdTime = ct
			}
		}
	} else {
		secretData = raw.Data
		version = "1"
	}

	// The secret value lives under the "value" key by convention.
	value, _ := secretData["value"].(string)
	if value == "" {
		for _, v := range secretData {
			if str, ok := v.(string); ok {
				value = str
				break
			}
		}
	}
	if value == "" {
		return nil, fmt.Errorf("secret %s has no string value", path)
	}

	secret := &Secret{
		Value:     value,
		Version:   version,
		CreatedAt: createdTime,
	}
	s.cache.set(path, secret)
	return secret, nil
}

func (s *vaultStore) PutSecret(ctx context.Context, path, value string, metadata map[string]string) (string, error) {
	s.logger.Info("Storing secret to Vault", ports.String("path", path))

	payload := map[string]interface{}{"value": value}
	for k, v := range metadata {
		payload[k] = v
	}
	if s.config.KVVersion == "v2" {
		payload = map[string]interface{}{"data": payload}
	}

	resp, err := s.client.Logical().WriteWithContext(ctx, s.dataPath(path), payload)
	if err != nil {
		return "", fmt.Errorf("failed to write secret to Vault: %w", err)
	}

	version := "1"
	if resp != nil {
		if v, ok := resp.Data["version"].(json.Number); ok {
			version = v.String()
		}
	}
	s.cache.invalidate(path)
	return version, nil
}
