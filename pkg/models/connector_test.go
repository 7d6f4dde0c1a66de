package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cloudConfig() *ConnectorConfig {
	return &ConnectorConfig{
		ID:          "c1",
		Type:        DeploymentCloud,
		Credentials: Credentials{Username: "admin", Password: "secret"},
		Cloud:       &CloudConfig{SelectedSystemID: "sys1"},
	}
}

func localConfig() *ConnectorConfig {
	return &ConnectorConfig{
		ID:          "l1",
		Type:        DeploymentLocal,
		Credentials: Credentials{Username: "admin", Password: "secret"},
		Local:       &LocalConfig{Host: "10.0.0.5", Port: 7001},
	}
}

func TestConnectorValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConnectorConfig)
		base    *ConnectorConfig
		wantErr bool
	}{
		{name: "valid cloud", base: cloudConfig(), mutate: func(*ConnectorConfig) {}},
		{name: "valid local", base: localConfig(), mutate: func(*ConnectorConfig) {}},
		{name: "missing id", base: cloudConfig(), mutate: func(c *ConnectorConfig) { c.ID = "" }, wantErr: true},
		{name: "missing password", base: cloudConfig(), mutate: func(c *ConnectorConfig) { c.Credentials.Password = "" }, wantErr: true},
		{name: "cloud without system id", base: cloudConfig(), mutate: func(c *ConnectorConfig) { c.Cloud.SelectedSystemID = "" }, wantErr: true},
		{name: "cloud without cloud arm", base: cloudConfig(), mutate: func(c *ConnectorConfig) { c.Cloud = nil }, wantErr: true},
		{name: "cloud with local arm", base: cloudConfig(), mutate: func(c *ConnectorConfig) { c.Local = &LocalConfig{Host: "h", Port: 1} }, wantErr: true},
		{name: "local without host", base: localConfig(), mutate: func(c *ConnectorConfig) { c.Local.Host = "" }, wantErr: true},
		{name: "local without port", base: localConfig(), mutate: func(c *ConnectorConfig) { c.Local.Port = 0 }, wantErr: true},
		{name: "local with cloud arm", base: localConfig(), mutate: func(c *ConnectorConfig) { c.Cloud = &CloudConfig{SelectedSystemID: "s"} }, wantErr: true},
		{name: "unknown type", base: cloudConfig(), mutate: func(c *ConnectorConfig) { c.Type = "hybrid" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.base
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsKind(err, KindConfig), "expected a config error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://sys1.relay.vmsproxy.com", cloudConfig().BaseURL("relay.vmsproxy.com"))
	assert.Equal(t, "https://10.0.0.5:7001", localConfig().BaseURL("relay.vmsproxy.com"))
}

func TestWithTokenReplacesWithoutMutating(t *testing.T) {
	cfg := cloudConfig()
	old := &Token{AccessToken: "old"}
	cfg.Token = old

	updated := cfg.WithToken(&Token{AccessToken: "new"})
	assert.Equal(t, "new", updated.Token.AccessToken)
	assert.Same(t, old, cfg.Token, "original config must keep its token")
}

func TestTokenValidFor(t *testing.T) {
	now := time.Now()
	margin := time.Minute

	var nilTok *Token
	assert.False(t, nilTok.ValidFor(margin, now))
	assert.False(t, (&Token{}).ValidFor(margin, now))

	fresh := &Token{AccessToken: "a", ExpiresAt: now.Add(time.Hour).UnixMilli()}
	assert.True(t, fresh.ValidFor(margin, now))

	// Expiring within the margin counts as stale.
	closeCall := &Token{AccessToken: "a", ExpiresAt: now.Add(10 * time.Second).UnixMilli()}
	assert.False(t, closeCall.ValidFor(margin, now))
}
