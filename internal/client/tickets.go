package client

import (
	"context"
	"net/http"

	"vmsgate/pkg/models"
)

type ticketResponse struct {
	Token string `json:"token"`
}

// IssueTicket requests a short-lived credential scoped to one server,
// usable as a query parameter in place of the bearer header. Callers hold
// a resolved config+token already, so this never goes through the
// connector-id retry path.
func (d *Dispatcher) IssueTicket(ctx context.Context, cfg *models.ConnectorConfig, tok *models.Token, serverID string) (string, error) {
	var out ticketResponse
	_, err := d.Execute(ctx, WithToken(cfg, tok), Request{
		Method: http.MethodPost,
		Path:   "/rest/v2/login/tickets/" + serverID,
		Shape:  ShapeJSON,
		Out:    &out,
	})
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &models.APIError{
			Kind:    models.KindResponseShape,
			Message: "ticket response is missing a token",
		}
	}
	return out.Token, nil
}
