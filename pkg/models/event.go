package models

import "encoding/json"

// EventRequest is the body for POST /api/createEvent (generic event).
type EventRequest struct {
	Source      string         `json:"source,omitempty"`
	Caption     string         `json:"caption"`
	Description string         `json:"description,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Metadata    *EventMetadata `json:"metadata,omitempty"`
}

// EventMetadata associates an event with cameras.
type EventMetadata struct {
	CameraRefs []string `json:"cameraRefs,omitempty"`
}

// CreateEventResponse is the createEvent result envelope. The endpoint can
// signal failure through the embedded error code even on HTTP 200, so both
// the status and Error must be checked. The code arrives as a number or a
// quoted string depending on vendor version.
type CreateEventResponse struct {
	Error       json.Number `json:"error"`
	ErrorString string      `json:"errorString,omitempty"`
}

// OK reports whether the embedded error code signals success.
func (r *CreateEventResponse) OK() bool {
	return r.Error.String() == "" || r.Error.String() == "0"
}
