package api

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"vmsgate/internal/metrics"
)

// relayErrorLimit caps how much of a failed vendor body is surfaced.
const relayErrorLimit = 64 << 10

// Relay pipes a vendor media response to the caller without buffering the
// payload, which may be large or effectively unbounded for live streams.
// Status code, Content-Type (with fallback) and Content-Length are copied;
// Cache-Control is forced to no-cache. A caller that disconnects mid-copy
// ends the copy, and closing the body releases the vendor connection.
func Relay(w http.ResponseWriter, resp *http.Response, fallbackType string, log *zap.Logger) {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Surface the error body as diagnostic text instead of forwarding
		// a broken stream.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, relayErrorLimit))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write(body)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = fallbackType
	}
	w.Header().Set("Content-Type", contentType)
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		w.Header().Set("Content-Length", cl)
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(resp.StatusCode)

	n, err := io.Copy(w, resp.Body)
	metrics.ProxiedBytes.Add(float64(n))
	if err != nil {
		log.Debug("media relay ended early", zap.Int64("bytes", n), zap.Error(err))
	}
}
