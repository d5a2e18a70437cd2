package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider is a company a subscription is held with. Optional URLs point at
// the provider's site and its cancellation page.
type Provider struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	OwnerID         *uuid.UUID
	Name            string
	Category        string
	Website         string
	CancellationURL string
	ID              uuid.UUID
}

// NewProvider validates and constructs a provider.
func NewProvider(ownerID *uuid.UUID, name, category, website, cancellationURL string) (*Provider, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewDomainError(ErrorCodeValidationMissingField, "provider name is required")
	}
	now := time.Now().UTC()
	return &Provider{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Name:            strings.TrimSpace(name),
		Category:        strings.TrimSpace(category),
		Website:         strings.TrimSpace(website),
		CancellationURL: strings.TrimSpace(cancellationURL),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
