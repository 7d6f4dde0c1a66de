package models

import "fmt"

// DeploymentType selects how a connector reaches its VMS system.
type DeploymentType string

const (
	DeploymentCloud DeploymentType = "cloud"
	DeploymentLocal DeploymentType = "local"
)

// Credentials are the VMS account used for token acquisition.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CloudConfig carries the fields that only exist for cloud-relay connectors.
type CloudConfig struct {
	// SelectedSystemID identifies which cloud-hosted system requests are
	// relayed through. Forms the relay subdomain.
	SelectedSystemID string `json:"selectedSystemId"`
}

// LocalConfig carries the fields that only exist for directly-reachable
// on-premises connectors.
type LocalConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// IgnoreTLSErrors disables certificate validation. Requires the
	// insecure transport to be enabled at startup.
	IgnoreTLSErrors bool `json:"ignoreTlsErrors,omitempty"`
}

// ConnectorConfig is one VMS connection. The Cloud/Local arms are a tagged
// variant keyed by Type; exactly one of them is set for a valid config.
type ConnectorConfig struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	Type        DeploymentType `json:"deploymentType"`
	Credentials Credentials    `json:"credentials"`
	Cloud       *CloudConfig   `json:"cloud,omitempty"`
	Local       *LocalConfig   `json:"local,omitempty"`
	Token       *Token         `json:"token,omitempty"`
}

// Validate checks the invariants for the connector's deployment type.
// Violations are configuration errors, never network errors.
func (c *ConnectorConfig) Validate() error {
	if c.ID == "" {
		return NewConfigError("connector id is empty")
	}
	if c.Credentials.Username == "" || c.Credentials.Password == "" {
		return NewConfigError(fmt.Sprintf("connector %s is missing credentials", c.ID))
	}
	switch c.Type {
	case DeploymentCloud:
		if c.Cloud == nil || c.Cloud.SelectedSystemID == "" {
			return NewConfigError(fmt.Sprintf("cloud connector %s has no selected system id", c.ID))
		}
		if c.Local != nil {
			return NewConfigError(fmt.Sprintf("cloud connector %s carries local-only fields", c.ID))
		}
	case DeploymentLocal:
		if c.Local == nil || c.Local.Host == "" || c.Local.Port == 0 {
			return NewConfigError(fmt.Sprintf("local connector %s has no host/port", c.ID))
		}
		if c.Cloud != nil {
			return NewConfigError(fmt.Sprintf("local connector %s carries cloud-only fields", c.ID))
		}
	default:
		return NewConfigError(fmt.Sprintf("connector %s has unknown deployment type %q", c.ID, c.Type))
	}
	return nil
}

// BaseURL returns the vendor endpoint requests for this connector go to.
// Cloud connectors relay through a per-system subdomain of the relay
// domain; local connectors are reached directly.
func (c *ConnectorConfig) BaseURL(relayDomain string) string {
	if c.Type == DeploymentCloud {
		return fmt.Sprintf("https://%s.%s", c.Cloud.SelectedSystemID, relayDomain)
	}
	return fmt.Sprintf("https://%s:%d", c.Local.Host, c.Local.Port)
}

// WithToken returns a copy of the config with the cached token replaced.
// Tokens are never mutated in place.
func (c *ConnectorConfig) WithToken(t *Token) *ConnectorConfig {
	out := *c
	out.Token = t
	return &out
}
