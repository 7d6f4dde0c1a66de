// Package media decides which transport/container a camera's media is
// requested over and how that specific request authenticates.
package media

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"vmsgate/internal/client"
	"vmsgate/internal/metrics"
	"vmsgate/pkg/models"
)

// tokenSource and vendorAPI are the slices of auth.Manager and
// client.Dispatcher the negotiator needs.
type tokenSource interface {
	EnsureValidToken(ctx context.Context, connectorID string, forceRefresh bool) (*models.ConnectorConfig, *models.Token, error)
}

type vendorAPI interface {
	GetDevice(ctx context.Context, target client.Target, deviceID string) (*models.Device, error)
	IssueTicket(ctx context.Context, cfg *models.ConnectorConfig, tok *models.Token, serverID string) (string, error)
	FetchMedia(ctx context.Context, cfg *models.ConnectorConfig, tok *models.Token, plan *models.MediaPlan) (*client.Response, error)
}

// Negotiation is a resolved media request: the connector it runs as and
// the plan to execute.
type Negotiation struct {
	Config *models.ConnectorConfig
	Token  *models.Token
	Plan   *models.MediaPlan
}

type Negotiator struct {
	tokens tokenSource
	api    vendorAPI
	log    *zap.Logger
}

func NewNegotiator(tokens tokenSource, api vendorAPI, log *zap.Logger) *Negotiator {
	return &Negotiator{tokens: tokens, api: api, log: log}
}

// Plan chooses the transport and auth mode for one camera request.
// A nil posMs means live playback.
//
// Local deployments always use the raw clip container: appliances are not
// assumed to expose segmented streaming. Cloud live playback always uses
// segmented streaming. Cloud recorded playback uses segmented streaming
// iff the device's first media stream advertises it.
func (n *Negotiator) Plan(ctx context.Context, connectorID, cameraID string, posMs *int64) (*Negotiation, error) {
	cfg, tok, err := n.tokens.EnsureValidToken(ctx, connectorID, false)
	if err != nil {
		return nil, err
	}

	live := posMs == nil
	var device *models.Device

	kind := models.TransportWebM
	if cfg.Type == models.DeploymentCloud {
		if live {
			kind = models.TransportHLS
		} else {
			// The capability decision needs the device descriptor; a
			// failed fetch fails the plan rather than guessing.
			device, err = n.api.GetDevice(ctx, client.WithToken(cfg, tok), cameraID)
			if err != nil {
				return nil, err
			}
			if len(device.MediaStreams) > 0 && device.MediaStreams[0].SupportsHLS() {
				kind = models.TransportHLS
			}
		}
	}

	plan := &models.MediaPlan{
		Transport: kind,
		AuthMode:  models.AuthBearer,
		Query:     url.Values{},
	}
	if posMs != nil {
		plan.Query.Set("pos", strconv.FormatInt(*posMs, 10))
	}

	switch kind {
	case models.TransportHLS:
		// Tickets are not applicable to segmented streaming; it always
		// authenticates with the bearer token.
		plan.Path = "/hls/" + cameraID + ".m3u8"
		plan.ContentType = "application/vnd.apple.mpegurl"
	default:
		plan.Path = "/media/" + cameraID + ".webm"
		plan.ContentType = "video/webm"
		n.ticketAuth(ctx, cfg, tok, cameraID, device, plan)
	}

	metrics.MediaPlans.WithLabelValues(string(plan.Transport), string(plan.AuthMode)).Inc()
	return &Negotiation{Config: cfg, Token: tok, Plan: plan}, nil
}

// ticketAuth upgrades a raw-clip plan to ticket auth when the camera's
// server is known and issuance succeeds. Any failure along the way leaves
// the plan on bearer auth: the bearer token is always a valid, if less
// optimal, substitute.
func (n *Negotiator) ticketAuth(ctx context.Context, cfg *models.ConnectorConfig, tok *models.Token, cameraID string, device *models.Device, plan *models.MediaPlan) {
	if device == nil {
		var err error
		device, err = n.api.GetDevice(ctx, client.WithToken(cfg, tok), cameraID)
		if err != nil {
			n.log.Warn("device lookup for ticket auth failed, staying on bearer",
				zap.String("camera", cameraID), zap.Error(err))
			return
		}
	}
	if device.ServerID == "" {
		return
	}
	ticket, err := n.api.IssueTicket(ctx, cfg, tok, device.ServerID)
	if err != nil {
		metrics.TicketFallbacks.Inc()
		n.log.Warn("ticket issuance failed, falling back to bearer auth",
			zap.String("camera", cameraID),
			zap.String("server", device.ServerID),
			zap.Error(err))
		return
	}
	plan.AuthMode = models.AuthTicket
	plan.Query.Set("_ticket", ticket)
}

// Fetch plans and executes the media request, returning the vendor
// response un-consumed for the stream proxy.
func (n *Negotiator) Fetch(ctx context.Context, connectorID, cameraID string, posMs *int64) (*Negotiation, *client.Response, error) {
	neg, err := n.Plan(ctx, connectorID, cameraID, posMs)
	if err != nil {
		return nil, nil, err
	}
	resp, err := n.api.FetchMedia(ctx, neg.Config, neg.Token, neg.Plan)
	if err != nil {
		return nil, nil, err
	}
	return neg, resp, nil
}
