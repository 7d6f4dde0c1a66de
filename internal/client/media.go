package client

import (
	"context"
	"net/http"

	"vmsgate/pkg/models"
)

// FetchMedia executes a negotiated media plan and returns the vendor
// response un-consumed for the stream proxy to relay. Ticket-authed plans
// carry their credential in the query and send no bearer header.
func (d *Dispatcher) FetchMedia(ctx context.Context, cfg *models.ConnectorConfig, tok *models.Token, plan *models.MediaPlan) (*Response, error) {
	if plan.AuthMode == models.AuthTicket {
		tok = nil
	}
	return d.Execute(ctx, WithToken(cfg, tok), Request{
		Method: http.MethodGet,
		Path:   plan.Path,
		Query:  plan.Query,
		Shape:  ShapeStream,
	})
}

// GetThumbnail fetches a still image for a camera.
func (d *Dispatcher) GetThumbnail(ctx context.Context, connectorID, cameraID string) ([]byte, string, error) {
	resp, err := d.Execute(ctx, ForConnector(connectorID), Request{
		Method: http.MethodGet,
		Path:   "/rest/v2/devices/" + cameraID + "/image",
		Shape:  ShapeBinary,
	})
	if err != nil {
		return nil, "", err
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return resp.Body, contentType, nil
}
