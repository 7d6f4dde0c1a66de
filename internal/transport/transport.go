// Package transport builds the HTTP clients used against vendor
// endpoints. Two factories exist: the standard one always validates TLS
// certificates; the insecure one skips validation for local appliances
// with self-signed certificates. Which one a connector gets is decided in
// one place (Select), so the dispatcher's retry and shape logic is written
// once regardless of transport.
package transport

import (
	"crypto/tls"

	"github.com/go-resty/resty/v2"

	"vmsgate/pkg/models"
)

// Factory builds a configured resty client for a vendor base URL.
// Factories are stateless and safe for concurrent use.
type Factory interface {
	Client(baseURL string) *resty.Client
	Name() string
}

// Standard validates TLS certificates.
type Standard struct{}

func NewStandard() *Standard { return &Standard{} }

func (*Standard) Name() string { return "standard" }

func (*Standard) Client(baseURL string) *resty.Client {
	return base(baseURL)
}

// Insecure disables certificate validation. It is an explicitly injected
// capability: when it is not constructed at startup, connectors that ask
// for it fail with a configuration error rather than silently falling
// back to validated TLS.
type Insecure struct{}

func NewInsecure() *Insecure { return &Insecure{} }

func (*Insecure) Name() string { return "insecure" }

func (*Insecure) Client(baseURL string) *resty.Client {
	c := base(baseURL)
	c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	return c
}

func base(baseURL string) *resty.Client {
	c := resty.New()
	c.SetBaseURL(baseURL)
	c.SetHeader("Accept", "application/json")
	return c
}

// Select picks the factory for a connector. insecure may be nil when the
// capability was not enabled at startup.
func Select(standard, insecure Factory, cfg *models.ConnectorConfig) (Factory, error) {
	if cfg.Type == models.DeploymentLocal && cfg.Local != nil && cfg.Local.IgnoreTLSErrors {
		if insecure == nil {
			return nil, models.NewConfigError(
				"connector " + cfg.ID + " sets ignoreTlsErrors but the insecure transport is not enabled")
		}
		return insecure, nil
	}
	return standard, nil
}
