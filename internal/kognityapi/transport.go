package kognityapi

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
)

// decompressTransport advertises brotli alongside gzip and decodes whichever
// encoding the server picked. The stdlib transport only handles gzip, and
// Kognity's CDN prefers br when offered.
type decompressTransport struct {
	base http.RoundTripper
}

func newDecompressTransport() *decompressTransport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DisableCompression = true // decompression handled here, including brotli
	return &decompressTransport{base: t}
}

func (d *decompressTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	}

	resp, err := d.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	switch resp.Header.Get("Content-Encoding") {
	case "br":
		resp.Body = struct {
			io.Reader
			io.Closer
		}{brotli.NewReader(resp.Body), resp.Body}
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		resp.Body = gz
	case "deflate":
		resp.Body = struct {
			io.Reader
			io.Closer
		}{flate.NewReader(resp.Body), resp.Body}
	default:
		return resp, nil
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	return resp, nil
}
