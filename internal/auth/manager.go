// Package auth manages the credential/token lifecycle for connectors.
// Cloud connectors use OAuth password/refresh grants against the relay;
// local connectors use session logins. Acquired tokens are persisted back
// to the credential store before being handed out.
package auth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vmsgate/internal/metrics"
	"vmsgate/internal/store"
	"vmsgate/internal/transport"
	"vmsgate/pkg/models"
)

// Manager implements ensureValidToken for all deployment types.
//
// There is deliberately no mutual exclusion across calls for the same
// connector: concurrent refreshes race, each completes independently, and
// the last persisted token wins. Every racer's token is valid.
type Manager struct {
	store       store.Store
	standard    transport.Factory
	insecure    transport.Factory // nil when the capability is disabled
	relayDomain string
	margin      time.Duration
	now         func() time.Time
	log         *zap.Logger
}

func NewManager(st store.Store, standard, insecure transport.Factory, relayDomain string, margin time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		store:       st,
		standard:    standard,
		insecure:    insecure,
		relayDomain: relayDomain,
		margin:      margin,
		now:         time.Now,
		log:         log,
	}
}

// EnsureValidToken returns the connector's config together with a
// currently-valid token, acquiring and persisting a new one when the
// cached token is missing, stale, or forceRefresh is set.
func (m *Manager) EnsureValidToken(ctx context.Context, connectorID string, forceRefresh bool) (*models.ConnectorConfig, *models.Token, error) {
	cfg, err := m.store.Load(ctx, connectorID)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	// Common zero-latency path: the cached token still has margin left.
	if !forceRefresh && cfg.Token.ValidFor(m.margin, m.now()) {
		metrics.TokenCacheHits.Inc()
		return cfg, cfg.Token, nil
	}

	tok, err := m.acquire(ctx, cfg, forceRefresh)
	if err != nil {
		return nil, nil, models.NewAuthError(
			fmt.Sprintf("authentication failed for connector %s", connectorID), err)
	}

	updated := cfg.WithToken(tok)
	if err := m.store.Save(ctx, updated); err != nil {
		// A token that cannot be remembered would leave other readers on
		// stale cached state; the call fails even though the vendor
		// accepted the credentials.
		return nil, nil, models.NewPersistenceError("token obtained but could not be persisted", err)
	}
	m.log.Info("token acquired",
		zap.String("connector", connectorID),
		zap.String("deployment", string(cfg.Type)),
		zap.Int64("expiresAt", tok.ExpiresAt))
	return updated, tok, nil
}

// acquire runs the strategy chain: refresh grant (cloud, stored refresh
// token, not forced), then a fresh credential fetch. A failed refresh
// falls through to the fetch so a dead refresh token is not mistaken for
// dead credentials.
func (m *Manager) acquire(ctx context.Context, cfg *models.ConnectorConfig, force bool) (*models.Token, error) {
	if cfg.Type == models.DeploymentCloud {
		if !force && cfg.Token != nil && cfg.Token.RefreshToken != "" {
			tok, err := m.refreshGrant(ctx, cfg)
			if err == nil {
				return tok, nil
			}
			m.log.Warn("refresh grant failed, retrying with password grant",
				zap.String("connector", cfg.ID), zap.Error(err))
		}
		return m.passwordGrant(ctx, cfg)
	}
	return m.sessionLogin(ctx, cfg)
}
