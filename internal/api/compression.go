package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// decompressMiddleware accepts zstd-encoded request bodies. Requests
// without Content-Encoding pass through unchanged.
func decompressMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encoding := r.Header.Get("Content-Encoding")
			switch {
			case encoding == "" || strings.EqualFold(encoding, "identity"):
				next.ServeHTTP(w, r)
			case strings.EqualFold(encoding, "zstd"):
				decoder, err := zstd.NewReader(r.Body, zstd.WithDecoderMaxMemory(maxBodyBytes*8))
				if err != nil {
					respondError(w, http.StatusBadRequest, "Invalid zstd body")
					return
				}
				defer decoder.Close()

				r.Body = io.NopCloser(decoder)
				r.Header.Del("Content-Encoding")
				r.Header.Del("Content-Length")
				r.ContentLength = -1
				next.ServeHTTP(w, r)
			default:
				respondError(w, http.StatusUnsupportedMediaType, "Unsupported Content-Encoding: "+encoding)
			}
		})
	}
}
