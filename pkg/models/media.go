package models

import "net/url"

// MediaTransport names the container/transport a media request uses.
type MediaTransport string

const (
	// TransportHLS is segmented HTTP streaming (playlist document).
	TransportHLS MediaTransport = "hls"
	// TransportWebM is the raw clip container: one binary response,
	// seekable via a start-position query parameter.
	TransportWebM MediaTransport = "webm"
)

// MediaAuthMode names how a media request authenticates.
type MediaAuthMode string

const (
	// AuthBearer uses the connector's access token as a bearer header.
	AuthBearer MediaAuthMode = "bearer"
	// AuthTicket uses a short-lived, server-scoped token as a query
	// parameter instead of a header.
	AuthTicket MediaAuthMode = "ticket"
)

// MediaPlan is the negotiated request for one camera's media.
type MediaPlan struct {
	Transport   MediaTransport `json:"transport"`
	AuthMode    MediaAuthMode  `json:"authMode"`
	Path        string         `json:"-"`
	Query       url.Values     `json:"-"`
	ContentType string         `json:"-"`
}

// RedirectPath is the vendor path+query a caller could fetch directly.
func (p *MediaPlan) RedirectPath() string {
	if len(p.Query) == 0 {
		return p.Path
	}
	return p.Path + "?" + p.Query.Encode()
}
