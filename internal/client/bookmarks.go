package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"vmsgate/pkg/models"
)

// CreateBookmark attaches a bookmark to a camera's recorded footage.
// Unlike createEvent, this endpoint signals success by HTTP status alone.
func (d *Dispatcher) CreateBookmark(ctx context.Context, connectorID, cameraID string, bm *models.Bookmark) (*models.Bookmark, error) {
	if bm.ID == "" {
		bm.ID = uuid.NewString()
	}
	_, err := d.Execute(ctx, ForConnector(connectorID), Request{
		Method: http.MethodPost,
		Path:   "/rest/v2/devices/" + cameraID + "/bookmarks",
		Body:   bm,
		Shape:  ShapeJSON,
	})
	if err != nil {
		return nil, err
	}
	return bm, nil
}
