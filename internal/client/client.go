// Package client executes HTTP calls against a connector's VMS endpoint.
// It owns the base-URL rule, transport selection, redirect bounds,
// response-shape interpretation, and the single retry after an auth-class
// failure. No raw transport errors escape this package.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"vmsgate/internal/metrics"
	"vmsgate/internal/transport"
	"vmsgate/pkg/models"
)

// maxRedirects bounds automatic redirect following for cloud relays.
// Exceeding it is a terminal error, not a retry condition.
const maxRedirects = 5

// errorBodyLimit caps how much of an error payload is read for diagnostics.
const errorBodyLimit = 64 << 10

// ErrRedirectLimit is returned when a cloud relay keeps redirecting past
// the allowed number of hops.
var ErrRedirectLimit = errors.New("redirect limit exceeded")

// TokenSource resolves connector ids into config and a valid token.
// Implemented by auth.Manager.
type TokenSource interface {
	EnsureValidToken(ctx context.Context, connectorID string, forceRefresh bool) (*models.ConnectorConfig, *models.Token, error)
}

// Shape selects how a response body is interpreted.
type Shape int

const (
	// ShapeJSON parses the body into Request.Out. A 204/no-content
	// response yields an empty result, not an error.
	ShapeJSON Shape = iota
	// ShapeBinary returns raw bytes with their content type.
	ShapeBinary
	// ShapeStream hands the response back un-consumed for the caller to
	// pipe onward. The caller owns closing Response.Raw.Body.
	ShapeStream
)

// Target names what a request runs as: a connector id (resolved through
// the token source, eligible for the one-shot auth retry) or a direct
// config+token pair obtained out of band (never retried — there is no
// connector context to refresh against).
type Target struct {
	ConnectorID string
	Config      *models.ConnectorConfig
	Token       *models.Token
}

// ForConnector targets a stored connector by id.
func ForConnector(id string) Target { return Target{ConnectorID: id} }

// WithToken targets a config with an already-obtained token. A nil token
// sends the request unauthenticated (query-credential requests).
func WithToken(cfg *models.ConnectorConfig, tok *models.Token) Target {
	return Target{Config: cfg, Token: tok}
}

// Request is one vendor API call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
	Shape   Shape
	Out     any // JSON destination for ShapeJSON
}

// Response is the interpreted result.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte         // ShapeJSON / ShapeBinary
	Raw         *http.Response // ShapeStream only
}

// Dispatcher executes requests for connectors.
type Dispatcher struct {
	tokens      TokenSource
	standard    transport.Factory
	insecure    transport.Factory // nil when the capability is disabled
	relayDomain string
	log         *zap.Logger
}

func NewDispatcher(tokens TokenSource, standard, insecure transport.Factory, relayDomain string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		tokens:      tokens,
		standard:    standard,
		insecure:    insecure,
		relayDomain: relayDomain,
		log:         log,
	}
}

// Execute runs req against target. Connector-id targets that fail with an
// auth-class error get exactly one retry after a forced token refresh; a
// second failure is surfaced as-is.
func (d *Dispatcher) Execute(ctx context.Context, target Target, req Request) (*Response, error) {
	cfg, tok := target.Config, target.Token
	if target.ConnectorID != "" {
		var err error
		cfg, tok, err = d.tokens.EnsureValidToken(ctx, target.ConnectorID, false)
		if err != nil {
			return nil, err
		}
	}

	resp, err := d.attempt(ctx, cfg, tok, req)
	if err == nil || target.ConnectorID == "" || !models.IsAuthFailure(err) {
		return resp, err
	}

	metrics.AuthRetries.Inc()
	d.log.Info("auth failure, retrying once with refreshed token",
		zap.String("connector", target.ConnectorID),
		zap.String("path", req.Path))
	cfg, tok, err = d.tokens.EnsureValidToken(ctx, target.ConnectorID, true)
	if err != nil {
		return nil, err
	}
	return d.attempt(ctx, cfg, tok, req)
}

func (d *Dispatcher) attempt(ctx context.Context, cfg *models.ConnectorConfig, tok *models.Token, req Request) (*Response, error) {
	factory, err := transport.Select(d.standard, d.insecure, cfg)
	if err != nil {
		return nil, err
	}

	c := factory.Client(cfg.BaseURL(d.relayDomain))
	if cfg.Type == models.DeploymentCloud {
		// Cloud relays answer with redirects to the serving node; follow
		// them up to the fixed bound. Local appliances keep the
		// underlying client's default policy.
		c.SetRedirectPolicy(resty.RedirectPolicyFunc(func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrRedirectLimit
			}
			return nil
		}))
	}

	r := c.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if tok != nil {
		r.SetAuthToken(tok.AccessToken)
	}
	for k, vs := range req.Query {
		for _, v := range vs {
			r.QueryParam.Add(k, v)
		}
	}
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		if errors.Is(err, ErrRedirectLimit) {
			return nil, &models.APIError{
				Kind:    models.KindTransport,
				ErrorID: "redirectLimit",
				Message: fmt.Sprintf("gave up after %d redirects for %s", maxRedirects, req.Path),
				Cause:   err,
			}
		}
		return nil, models.NewTransportError(fmt.Sprintf("request to %s failed", req.Path), err)
	}

	metrics.DispatchRequests.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode())).Inc()
	return d.interpret(resp, req)
}

// interpret is the single response-interpretation routine shared by both
// transports and all shapes.
func (d *Dispatcher) interpret(resp *resty.Response, req Request) (*Response, error) {
	raw := resp.RawResponse

	if resp.IsError() {
		defer raw.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(raw.Body, errorBodyLimit))
		return nil, models.NewVendorError(resp.StatusCode(), body)
	}

	out := &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: raw.Header.Get("Content-Type"),
	}

	switch req.Shape {
	case ShapeStream:
		out.Raw = raw
		return out, nil

	case ShapeBinary:
		defer raw.Body.Close()
		body, err := io.ReadAll(raw.Body)
		if err != nil {
			return nil, models.NewTransportError("reading response body failed", err)
		}
		out.Body = body
		return out, nil

	default: // ShapeJSON
		defer raw.Body.Close()
		body, err := io.ReadAll(raw.Body)
		if err != nil {
			return nil, models.NewTransportError("reading response body failed", err)
		}
		out.Body = body
		if resp.StatusCode() == http.StatusNoContent || len(body) == 0 || req.Out == nil {
			return out, nil
		}
		if err := json.Unmarshal(body, req.Out); err != nil {
			return nil, &models.APIError{
				Kind:    models.KindResponseShape,
				Message: fmt.Sprintf("response from %s is not the expected JSON shape", req.Path),
				Raw:     body,
				Cause:   err,
			}
		}
		return out, nil
	}
}
