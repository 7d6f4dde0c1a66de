package models

// MediaStreamInfo describes one stream a device exposes and the transports
// it can be fetched over.
type MediaStreamInfo struct {
	Codec      string   `json:"codec,omitempty"`
	Transports []string `json:"transports"`
}

// SupportsHLS reports whether the stream advertises segmented HTTP
// streaming.
func (m MediaStreamInfo) SupportsHLS() bool {
	for _, t := range m.Transports {
		if t == "hls" {
			return true
		}
	}
	return false
}

// Device is the vendor's per-camera metadata. ServerID identifies the
// physical server hosting the camera within a system and is required for
// ticket-based media auth.
type Device struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ServerID     string            `json:"serverId"`
	Status       string            `json:"status,omitempty"`
	MediaStreams []MediaStreamInfo `json:"mediaStreams,omitempty"`
}
