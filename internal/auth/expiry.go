package auth

import (
	"strconv"
	"strings"
	"time"
)

const (
	defaultTokenLifetime  = 24 * time.Hour
	fallbackTokenLifetime = time.Hour
)

// computeExpiry turns the vendor's expiry fields into an absolute instant.
// Applied in order: absolute expiry (epoch ms) if numeric and in the
// future; else relative lifetime (seconds) if numeric and positive; else
// now+24h. If the chosen value still is not in the future, now+1h. The
// result is therefore always strictly after now, whatever the vendor sent.
func computeExpiry(now time.Time, absolute, relative string) time.Time {
	var exp time.Time
	if ms, err := strconv.ParseInt(absolute, 10, 64); err == nil && ms > now.UnixMilli() {
		exp = time.UnixMilli(ms)
	} else if s, err := strconv.ParseInt(relative, 10, 64); err == nil && s > 0 {
		exp = now.Add(time.Duration(s) * time.Second)
	} else {
		exp = now.Add(defaultTokenLifetime)
	}
	if !exp.After(now) {
		exp = now.Add(fallbackTokenLifetime)
	}
	return exp
}

// rawString renders a raw JSON scalar as its unquoted text, so "86400"
// and 86400 are treated alike.
func rawString(raw []byte) string {
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}
