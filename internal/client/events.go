package client

import (
	"context"
	"net/http"

	"vmsgate/pkg/models"
)

// CreateEvent posts a generic event. This endpoint can report failure
// inside a 200 response, so both the HTTP status and the embedded error
// code are checked.
func (d *Dispatcher) CreateEvent(ctx context.Context, connectorID string, ev *models.EventRequest) error {
	var out models.CreateEventResponse
	_, err := d.Execute(ctx, ForConnector(connectorID), Request{
		Method: http.MethodPost,
		Path:   "/api/createEvent",
		Body:   ev,
		Shape:  ShapeJSON,
		Out:    &out,
	})
	if err != nil {
		return err
	}
	if !out.OK() {
		return &models.APIError{
			Kind:    models.KindVendor,
			ErrorID: out.Error.String(),
			Message: "createEvent reported error " + out.Error.String() + ": " + out.ErrorString,
		}
	}
	return nil
}
