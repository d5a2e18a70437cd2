package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// localStore implements Store on the local filesystem.
// WARNING: development only. Use AWS Secrets Manager or Vault in production.
type localStore struct {
	basePath string
	logger   ports.Logger
}

// NewLocalStore creates a filesystem-backed secret store rooted at basePath.
func NewLocalStore(basePath string, logger ports.Logger) Store {
	return &localStore{basePath: basePath, logger: logger}
}

func (s *localStore) GetSecret(ctx context.Context, secretPath string) (*Secret, error) {
	filePath := filepath.Join(s.basePath, secretPath)

	s.logger.Debug("Reading secret from filesystem", ports.String("path", secretPath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("secret not found: %s", secretPath)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	// Support both plain text and JSON format
	var secretData struct {
		Value     string            `json:"value"`
		Tags      map[string]string `json:"tags"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &secretData); err == nil && secretData.Value != "" {
		return &Secret{
			Value:     secretData.Value,
			Version:   "v1",
			Metadata:  secretData.Tags,
			CreatedAt: secretData.CreatedAt,
		}, nil
	}

	return &Secret{
		Value:   strings.TrimSpace(string(data)),
		Version: "v1",
	}, nil
}

func (s *localStore) PutSecret(ctx context.Context, secretPath, value string, metadata map[string]string) (string, error) {
	filePath := filepath.Join(s.basePath, secretPath)

	s.logger.Info("Storing secret to filesystem", ports.String("path", secretPath))

	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	secretData := map[string]interface{}{
		"value":      value,
		"tags":       metadata,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(secretData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal secret: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write secret: %w", err)
	}
	return "v1", nil
}
