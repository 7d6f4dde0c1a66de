package client

import (
	"context"
	"net/http"

	"vmsgate/pkg/models"
)

// GetDevices lists all devices visible to the connector.
func (d *Dispatcher) GetDevices(ctx context.Context, target Target) ([]models.Device, error) {
	var devices []models.Device
	_, err := d.Execute(ctx, target, Request{
		Method: http.MethodGet,
		Path:   "/rest/v2/devices",
		Shape:  ShapeJSON,
		Out:    &devices,
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDevice fetches one device's metadata, including its serverId and
// media-stream capability descriptors.
func (d *Dispatcher) GetDevice(ctx context.Context, target Target, deviceID string) (*models.Device, error) {
	var device models.Device
	_, err := d.Execute(ctx, target, Request{
		Method: http.MethodGet,
		Path:   "/rest/v2/devices/" + deviceID,
		Shape:  ShapeJSON,
		Out:    &device,
	})
	if err != nil {
		return nil, err
	}
	return &device, nil
}
