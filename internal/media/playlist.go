package media

import (
	"bytes"
	"net/url"

	"github.com/grafov/m3u8"

	"vmsgate/pkg/models"
)

// RewritePlaylist makes every URI in a playlist document absolute against
// the vendor URL it was fetched from, carrying the base's query credential
// onto segments that have none. Callers receive a playlist they can play
// without knowing the vendor topology.
func RewritePlaylist(body []byte, base *url.URL) ([]byte, error) {
	pl, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), true)
	if err != nil {
		return nil, &models.APIError{
			Kind:    models.KindResponseShape,
			Message: "vendor response is not a valid playlist document",
			Raw:     body,
			Cause:   err,
		}
	}

	switch listType {
	case m3u8.MEDIA:
		mp := pl.(*m3u8.MediaPlaylist)
		for _, seg := range mp.Segments {
			if seg == nil {
				continue
			}
			seg.URI = absolutize(base, seg.URI)
		}
		return mp.Encode().Bytes(), nil
	case m3u8.MASTER:
		mp := pl.(*m3u8.MasterPlaylist)
		for _, v := range mp.Variants {
			if v == nil {
				continue
			}
			v.URI = absolutize(base, v.URI)
		}
		return mp.Encode().Bytes(), nil
	}
	return body, nil
}

func absolutize(base *url.URL, uri string) string {
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	abs := base.ResolveReference(ref)
	if abs.RawQuery == "" {
		abs.RawQuery = base.RawQuery
	}
	return abs.String()
}
