package models

import "time"

// Token is a capability to call the vendor API. Cloud tokens may carry a
// refresh token and a system scope; local tokens carry a session id.
type Token struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	// ExpiresAt is an absolute instant in epoch milliseconds. Always
	// populated, with fallback defaults when the vendor omits expiry data.
	ExpiresAt int64  `json:"expiresAt"`
	SessionID string `json:"sessionId,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

// ValidFor reports whether the token is still usable at now, leaving at
// least margin before expiry.
func (t *Token) ValidFor(margin time.Duration, now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return t.ExpiresAt > now.Add(margin).UnixMilli()
}
