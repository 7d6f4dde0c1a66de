package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"

	"vmsgate/internal/metrics"
	"vmsgate/internal/transport"
	"vmsgate/pkg/models"
)

const (
	cloudTokenPath   = "/cdb/oauth2/token"
	localSessionPath = "/rest/v2/login/sessions"
)

// cloudTokenResponse is the OAuth grant result. Expiry fields arrive as
// strings or numbers of uncertain validity depending on vendor version,
// so they are kept raw and interpreted by computeExpiry.
type cloudTokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    json.RawMessage `json:"expires_at"`
	ExpiresIn    json.RawMessage `json:"expires_in"`
	Scope        string          `json:"scope"`
}

type localSessionResponse struct {
	Token      string `json:"token"`
	ExpiresInS int64  `json:"expiresInS"`
	ID         string `json:"id"`
}

func (m *Manager) passwordGrant(ctx context.Context, cfg *models.ConnectorConfig) (*models.Token, error) {
	scope := "cloudSystemId=" + cfg.Cloud.SelectedSystemID
	body := map[string]string{
		"grant_type":    "password",
		"response_type": "token",
		"username":      cfg.Credentials.Username,
		"password":      cfg.Credentials.Password,
		"scope":         scope,
	}
	out, err := m.cloudTokenCall(ctx, cfg, body)
	if err != nil {
		metrics.TokenAcquisitions.WithLabelValues("password", "error").Inc()
		return nil, err
	}
	metrics.TokenAcquisitions.WithLabelValues("password", "ok").Inc()
	return m.cloudToken(out, scope), nil
}

func (m *Manager) refreshGrant(ctx context.Context, cfg *models.ConnectorConfig) (*models.Token, error) {
	scope := "cloudSystemId=" + cfg.Cloud.SelectedSystemID
	body := map[string]string{
		"grant_type":    "refresh_token",
		"response_type": "token",
		"refresh_token": cfg.Token.RefreshToken,
		"scope":         scope,
	}
	out, err := m.cloudTokenCall(ctx, cfg, body)
	if err != nil {
		metrics.TokenAcquisitions.WithLabelValues("refresh", "error").Inc()
		return nil, err
	}
	metrics.TokenAcquisitions.WithLabelValues("refresh", "ok").Inc()
	tok := m.cloudToken(out, scope)
	if tok.RefreshToken == "" {
		// Some grants rotate the refresh token, some omit it. Keep the
		// old one when the vendor stays silent.
		tok.RefreshToken = cfg.Token.RefreshToken
	}
	return tok, nil
}

func (m *Manager) cloudToken(out *cloudTokenResponse, scope string) *models.Token {
	exp := computeExpiry(m.now(), rawString(out.ExpiresAt), rawString(out.ExpiresIn))
	return &models.Token{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    exp.UnixMilli(),
		Scope:        scope,
	}
}

func (m *Manager) cloudTokenCall(ctx context.Context, cfg *models.ConnectorConfig, body map[string]string) (*cloudTokenResponse, error) {
	c, err := m.client(cfg)
	if err != nil {
		return nil, err
	}

	resp, err := c.R().
		SetContext(ctx).
		SetBody(body).
		Post(cloudTokenPath)
	if err != nil {
		return nil, models.NewTransportError("cloud token request failed", err)
	}
	if resp.IsError() {
		return nil, models.NewVendorError(resp.StatusCode(), resp.Body())
	}

	var out cloudTokenResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil || out.AccessToken == "" {
		return nil, &models.APIError{
			Kind:    models.KindResponseShape,
			Message: "cloud token response is missing an access token",
			Raw:     resp.Body(),
			Cause:   err,
		}
	}
	return &out, nil
}

func (m *Manager) sessionLogin(ctx context.Context, cfg *models.ConnectorConfig) (*models.Token, error) {
	c, err := m.client(cfg)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"username":  cfg.Credentials.Username,
		"password":  cfg.Credentials.Password,
		"setCookie": false,
	}
	resp, err := c.R().
		SetContext(ctx).
		SetBody(body).
		Post(localSessionPath)
	if err != nil {
		metrics.TokenAcquisitions.WithLabelValues("session", "error").Inc()
		return nil, models.NewTransportError("session login request failed", err)
	}
	if resp.IsError() {
		metrics.TokenAcquisitions.WithLabelValues("session", "error").Inc()
		return nil, models.NewVendorError(resp.StatusCode(), resp.Body())
	}

	var out localSessionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil || out.Token == "" {
		metrics.TokenAcquisitions.WithLabelValues("session", "error").Inc()
		return nil, &models.APIError{
			Kind:    models.KindResponseShape,
			Message: "session login response is missing a token",
			Raw:     resp.Body(),
			Cause:   err,
		}
	}
	metrics.TokenAcquisitions.WithLabelValues("session", "ok").Inc()

	exp := m.now().Add(time.Hour)
	if out.ExpiresInS > 0 {
		exp = m.now().Add(time.Duration(out.ExpiresInS) * time.Second)
	}
	return &models.Token{
		AccessToken: out.Token,
		SessionID:   out.ID,
		ExpiresAt:   exp.UnixMilli(),
	}, nil
}

func (m *Manager) client(cfg *models.ConnectorConfig) (*resty.Client, error) {
	f, err := transport.Select(m.standard, m.insecure, cfg)
	if err != nil {
		return nil, err
	}
	return f.Client(cfg.BaseURL(m.relayDomain)), nil
}
