// Package store persists connector configuration records keyed by
// connector id. Records are replaced atomically as whole documents; there
// is no partial-field mutation across separate writes.
package store

import (
	"context"

	"vmsgate/pkg/models"
)

// Store is the credential store contract the token manager depends on.
type Store interface {
	// Load returns the config for id, or a not-found APIError.
	Load(ctx context.Context, id string) (*models.ConnectorConfig, error)
	// Save atomically replaces the record for cfg.ID.
	Save(ctx context.Context, cfg *models.ConnectorConfig) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.ConnectorConfig, error)
}
