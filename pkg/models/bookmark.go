package models

// Bookmark is the body for POST /rest/v2/devices/{deviceId}/bookmarks.
// IDs are client-generated; the endpoint signals success by HTTP status
// alone (unlike createEvent, which also embeds an error code).
type Bookmark struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	StartTimeMs int64    `json:"startTimeMs"`
	DurationMs  int64    `json:"durationMs"`
	Tags        []string `json:"tags,omitempty"`
}
