package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKindSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewConfigError("bad"))
	assert.True(t, IsKind(err, KindConfig))
	assert.False(t, IsKind(err, KindAuth))
	assert.False(t, IsKind(errors.New("plain"), KindConfig))
}

func TestAsAPIErrorNormalizesUnknownErrors(t *testing.T) {
	ae := AsAPIError(errors.New("connection refused"))
	assert.Equal(t, KindTransport, ae.Kind)
	assert.Equal(t, "connection refused", ae.Message)

	orig := NewAuthError("denied", nil)
	assert.Same(t, orig, AsAPIError(fmt.Errorf("wrapped: %w", orig)))
}

func TestNewVendorErrorParsesBody(t *testing.T) {
	body := []byte(`{"error":"3","errorId":"sessionExpired","errorString":"Session has expired"}`)
	ae := NewVendorError(401, body)
	assert.Equal(t, KindVendor, ae.Kind)
	assert.Equal(t, 401, ae.StatusCode)
	assert.Equal(t, "sessionExpired", ae.ErrorID)
	assert.Equal(t, "Session has expired", ae.Message)
	assert.Equal(t, body, ae.Raw)

	// Unparseable bodies still yield a usable carrier.
	ae = NewVendorError(502, []byte("<html>bad gateway</html>"))
	assert.Equal(t, 502, ae.StatusCode)
	assert.Contains(t, ae.Message, "502")
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, IsAuthFailure(NewVendorError(401, nil)))
	assert.True(t, IsAuthFailure(NewVendorError(403, []byte(`{"errorId":"sessionExpired"}`))))
	assert.True(t, IsAuthFailure(NewVendorError(403, []byte(`{"errorId":"unauthorized"}`))))
	assert.False(t, IsAuthFailure(NewVendorError(403, []byte(`{"errorId":"forbidden"}`))))
	assert.False(t, IsAuthFailure(NewVendorError(500, nil)))
	// Only vendor-signaled failures are retryable; local auth errors are not.
	assert.False(t, IsAuthFailure(NewAuthError("exhausted", nil)))
}
