package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vmsgate/internal/client"
	"vmsgate/internal/media"
	"vmsgate/pkg/models"
)

// errorResponse is what callers see for any failure: a status code, a
// short message, and optionally a diagnostic detail. The raw vendor
// payload never crosses this boundary.
type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

func (s *Server) respondError(c *gin.Context, err error) {
	ae := models.AsAPIError(err)
	status := httpStatus(ae)
	detail := ae.Detail
	if detail == "" && ae.ErrorID != "" {
		detail = "vendor code: " + ae.ErrorID
	}
	c.JSON(status, errorResponse{StatusCode: status, Message: ae.Message, Detail: detail})
}

func httpStatus(ae *models.APIError) int {
	switch ae.Kind {
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConfig:
		return http.StatusBadRequest
	case models.KindAuth:
		return http.StatusUnauthorized
	case models.KindVendor:
		if ae.StatusCode > 0 {
			return ae.StatusCode
		}
		return http.StatusBadGateway
	case models.KindTransport, models.KindResponseShape:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// sanitize strips the secrets a read endpoint must not echo back.
func sanitize(cfg *models.ConnectorConfig) *models.ConnectorConfig {
	out := *cfg
	out.Credentials.Password = ""
	out.Token = nil
	return &out
}

func (s *Server) createConnector(c *gin.Context) {
	var cfg models.ConnectorConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		s.respondError(c, models.NewConfigError("request body is not a connector config: "+err.Error()))
		return
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if err := cfg.Validate(); err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.cfg.Store.Save(c.Request.Context(), &cfg); err != nil {
		s.respondError(c, err)
		return
	}
	s.log.Info("connector created", zap.String("connector", cfg.ID), zap.String("deployment", string(cfg.Type)))
	c.JSON(http.StatusCreated, sanitize(&cfg))
}

func (s *Server) listConnectors(c *gin.Context) {
	cfgs, err := s.cfg.Store.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]*models.ConnectorConfig, 0, len(cfgs))
	for _, cfg := range cfgs {
		out = append(out, sanitize(cfg))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getConnector(c *gin.Context) {
	cfg, err := s.cfg.Store.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sanitize(cfg))
}

func (s *Server) deleteConnector(c *gin.Context) {
	if err := s.cfg.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listDevices(c *gin.Context) {
	devices, err := s.cfg.Dispatcher.GetDevices(c.Request.Context(), client.ForConnector(c.Param("id")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, devices)
}

func (s *Server) getDevice(c *gin.Context) {
	device, err := s.cfg.Dispatcher.GetDevice(c.Request.Context(), client.ForConnector(c.Param("id")), c.Param("deviceId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

func (s *Server) createEvent(c *gin.Context) {
	var ev models.EventRequest
	if err := c.ShouldBindJSON(&ev); err != nil {
		s.respondError(c, models.NewConfigError("request body is not an event: "+err.Error()))
		return
	}
	if err := s.cfg.Dispatcher.CreateEvent(c.Request.Context(), c.Param("id"), &ev); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

func (s *Server) createBookmark(c *gin.Context) {
	var body struct {
		CameraID string `json:"cameraId"`
		models.Bookmark
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, models.NewConfigError("request body is not a bookmark: "+err.Error()))
		return
	}
	if body.CameraID == "" {
		s.respondError(c, models.NewConfigError("bookmark is missing cameraId"))
		return
	}
	bm, err := s.cfg.Dispatcher.CreateBookmark(c.Request.Context(), c.Param("id"), body.CameraID, &body.Bookmark)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bm)
}

func (s *Server) getThumbnail(c *gin.Context) {
	data, contentType, err := s.cfg.Dispatcher.GetThumbnail(c.Request.Context(), c.Param("id"), c.Param("cameraId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// position pulls the optional playback position from the query; nil means
// live.
func position(c *gin.Context) (*int64, error) {
	raw := c.Query("pos")
	if raw == "" {
		return nil, nil
	}
	pos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || pos < 0 {
		return nil, models.NewConfigError("pos must be a non-negative millisecond offset")
	}
	return &pos, nil
}

func (s *Server) planMedia(c *gin.Context) {
	pos, err := position(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	neg, err := s.cfg.Media.Plan(c.Request.Context(), c.Param("id"), c.Param("cameraId"), pos)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transport":    neg.Plan.Transport,
		"authMode":     neg.Plan.AuthMode,
		"redirectPath": neg.Plan.RedirectPath(),
	})
}

func (s *Server) fetchMedia(c *gin.Context) {
	pos, err := position(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	neg, resp, err := s.cfg.Media.Fetch(c.Request.Context(), c.Param("id"), c.Param("cameraId"), pos)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if neg.Plan.Transport == models.TransportHLS {
		s.relayPlaylist(c, neg, resp)
		return
	}
	Relay(c.Writer, resp.Raw, neg.Plan.ContentType, s.log)
}

// relayPlaylist buffers the (small) playlist document and rewrites its
// URIs to absolute vendor URLs before returning it.
func (s *Server) relayPlaylist(c *gin.Context, neg *media.Negotiation, resp *client.Response) {
	defer resp.Raw.Body.Close()

	body, err := io.ReadAll(resp.Raw.Body)
	if err != nil {
		s.respondError(c, models.NewTransportError("reading playlist failed", err))
		return
	}

	base, err := url.Parse(neg.Config.BaseURL(s.cfg.RelayDomain) + neg.Plan.RedirectPath())
	if err != nil {
		s.respondError(c, models.NewTransportError("building playlist base url failed", err))
		return
	}
	rewritten, err := media.RewritePlaylist(body, base)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, neg.Plan.ContentType, rewritten)
}
