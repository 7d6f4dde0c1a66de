package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vmsgate/internal/store"
	"vmsgate/internal/transport"
	"vmsgate/pkg/models"
)

// stubFactory routes every request to a test server regardless of the
// connector's base URL, standing in for DNS we don't have in tests.
type stubFactory struct{ url string }

func (f stubFactory) Name() string { return "stub" }

func (f stubFactory) Client(string) *resty.Client {
	return resty.New().SetBaseURL(f.url)
}

func cloudConnector(tok *models.Token) *models.ConnectorConfig {
	return &models.ConnectorConfig{
		ID:          "c1",
		Type:        models.DeploymentCloud,
		Credentials: models.Credentials{Username: "admin", Password: "secret"},
		Cloud:       &models.CloudConfig{SelectedSystemID: "sys1"},
		Token:       tok,
	}
}

// cloudVendor answers the OAuth token endpoint, recording each grant type
// it sees. Refresh grants fail when refreshFails is set.
func cloudVendor(t *testing.T, refreshFails bool, grants *[]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cdb/oauth2/token", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*grants = append(*grants, body["grant_type"])

		if body["grant_type"] == "refresh_token" && refreshFails {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errorId":"unauthorized","errorString":"refresh token revoked"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok-" + body["grant_type"],
			"refresh_token": "refresh-next",
			"expires_in":    "3600",
		})
	}
}

func newTestManager(t *testing.T, st store.Store, vendorURL string) *Manager {
	t.Helper()
	m := NewManager(st, stubFactory{url: vendorURL}, nil, "relay.test", time.Minute, zap.NewNop())
	return m
}

func TestCachedTokenServedWithoutNetworkCalls(t *testing.T) {
	var grants []string
	srv := httptest.NewServer(cloudVendor(t, false, &grants))
	defer srv.Close()

	st := store.NewMemoryStore()
	cached := &models.Token{AccessToken: "cached", ExpiresAt: time.Now().Add(time.Hour).UnixMilli()}
	require.NoError(t, st.Save(context.Background(), cloudConnector(cached)))

	m := newTestManager(t, st, srv.URL)
	_, tok, err := m.EnsureValidToken(context.Background(), "c1", false)
	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)
	assert.Empty(t, grants, "a fresh cached token must not hit the vendor")
}

func TestForcedRefreshAlwaysHitsVendor(t *testing.T) {
	var grants []string
	srv := httptest.NewServer(cloudVendor(t, false, &grants))
	defer srv.Close()

	st := store.NewMemoryStore()
	cached := &models.Token{
		AccessToken:  "cached",
		RefreshToken: "refresh-old",
		ExpiresAt:    time.Now().Add(time.Hour).UnixMilli(),
	}
	require.NoError(t, st.Save(context.Background(), cloudConnector(cached)))

	m := newTestManager(t, st, srv.URL)
	_, tok, err := m.EnsureValidToken(context.Background(), "c1", true)
	require.NoError(t, err)

	// Forced refresh skips both the cache and the refresh grant.
	assert.Equal(t, []string{"password"}, grants)
	assert.Equal(t, "tok-password", tok.AccessToken)

	persisted, err := st.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "tok-password", persisted.Token.AccessToken)
}

func TestRefreshGrantPreferredWhenTokenStale(t *testing.T) {
	var grants []string
	srv := httptest.NewServer(cloudVendor(t, false, &grants))
	defer srv.Close()

	st := store.NewMemoryStore()
	stale := &models.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-old",
		ExpiresAt:    time.Now().Add(10 * time.Second).UnixMilli(), // inside the 60s margin
	}
	require.NoError(t, st.Save(context.Background(), cloudConnector(stale)))

	m := newTestManager(t, st, srv.URL)
	_, tok, err := m.EnsureValidToken(context.Background(), "c1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"refresh_token"}, grants)
	assert.Equal(t, "tok-refresh_token", tok.AccessToken)
	assert.True(t, tok.ValidFor(time.Minute, time.Now()))
}

func TestRefreshFailureFallsBackToPasswordGrant(t *testing.T) {
	var grants []string
	srv := httptest.NewServer(cloudVendor(t, true, &grants))
	defer srv.Close()

	st := store.NewMemoryStore()
	stale := &models.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-dead",
		ExpiresAt:    time.Now().Add(10 * time.Second).UnixMilli(),
	}
	require.NoError(t, st.Save(context.Background(), cloudConnector(stale)))

	m := newTestManager(t, st, srv.URL)
	_, tok, err := m.EnsureValidToken(context.Background(), "c1", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"refresh_token", "password"}, grants)
	assert.Equal(t, "tok-password", tok.AccessToken)

	persisted, err := st.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "tok-password", persisted.Token.AccessToken)
}

func TestAllStrategiesExhaustedSurfacesAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorId":"unauthorized","errorString":"bad credentials"}`))
	}))
	defer srv.Close()

	st := store.NewMemoryStore()
	require.NoError(t, st.Save(context.Background(), cloudConnector(nil)))

	m := newTestManager(t, st, srv.URL)
	_, _, err := m.EnsureValidToken(context.Background(), "c1", false)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindAuth), "expected auth kind, got %v", err)
}

func TestLocalSessionLogin(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v2/login/sessions", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin", body["username"])
		assert.Equal(t, false, body["setCookie"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "session-tok",
			"expiresInS": 1800,
			"id":         "sess-1",
		})
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := &models.ConnectorConfig{
		ID:          "l1",
		Type:        models.DeploymentLocal,
		Credentials: models.Credentials{Username: "admin", Password: "secret"},
		Local:       &models.LocalConfig{Host: u.Hostname(), Port: port, IgnoreTLSErrors: true},
	}
	st := store.NewMemoryStore()
	require.NoError(t, st.Save(context.Background(), cfg))

	m := NewManager(st, transport.NewStandard(), transport.NewInsecure(), "relay.test", time.Minute, zap.NewNop())
	before := time.Now()
	_, tok, err := m.EnsureValidToken(context.Background(), "l1", false)
	require.NoError(t, err)

	assert.Equal(t, "session-tok", tok.AccessToken)
	assert.Equal(t, "sess-1", tok.SessionID)
	assert.Empty(t, tok.RefreshToken)
	wantExp := before.Add(1800 * time.Second).UnixMilli()
	assert.InDelta(t, wantExp, tok.ExpiresAt, float64((5 * time.Second).Milliseconds()))
}

func TestLocalInsecureTransportMissingIsConfigError(t *testing.T) {
	cfg := &models.ConnectorConfig{
		ID:          "l1",
		Type:        models.DeploymentLocal,
		Credentials: models.Credentials{Username: "admin", Password: "secret"},
		Local:       &models.LocalConfig{Host: "10.0.0.5", Port: 7001, IgnoreTLSErrors: true},
	}
	st := store.NewMemoryStore()
	require.NoError(t, st.Save(context.Background(), cfg))

	m := NewManager(st, transport.NewStandard(), nil, "relay.test", time.Minute, zap.NewNop())
	_, _, err := m.EnsureValidToken(context.Background(), "l1", false)
	require.Error(t, err)
	ae := models.AsAPIError(err)
	assert.Equal(t, models.KindAuth, ae.Kind)
	assert.True(t, models.IsKind(ae.Cause, models.KindConfig),
		"the root cause should be the missing insecure capability, got %v", ae.Cause)
}

func TestMissingConnectorIsNotFound(t *testing.T) {
	m := newTestManager(t, store.NewMemoryStore(), "http://unused")
	_, _, err := m.EnsureValidToken(context.Background(), "ghost", false)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestInvalidConfigFailsBeforeAnyNetworkCall(t *testing.T) {
	var grants []string
	srv := httptest.NewServer(cloudVendor(t, false, &grants))
	defer srv.Close()

	st := store.NewMemoryStore()
	broken := cloudConnector(nil)
	broken.Cloud.SelectedSystemID = ""
	require.NoError(t, st.Save(context.Background(), broken))

	m := newTestManager(t, st, srv.URL)
	_, _, err := m.EnsureValidToken(context.Background(), "c1", false)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindConfig))
	assert.Empty(t, grants)
}

// failingStore accepts loads but refuses writes.
type failingStore struct{ store.Store }

func (f failingStore) Save(context.Context, *models.ConnectorConfig) error {
	return errors.New("disk full")
}

func TestPersistenceFailureIsFatal(t *testing.T) {
	var grants []string
	srv := httptest.NewServer(cloudVendor(t, false, &grants))
	defer srv.Close()

	inner := store.NewMemoryStore()
	require.NoError(t, inner.Save(context.Background(), cloudConnector(nil)))

	m := newTestManager(t, failingStore{inner}, srv.URL)
	_, _, err := m.EnsureValidToken(context.Background(), "c1", false)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindPersistence),
		"an unpersistable token must fail the call, got %v", err)
	assert.NotEmpty(t, grants, "the token was acquired before persistence failed")
}
