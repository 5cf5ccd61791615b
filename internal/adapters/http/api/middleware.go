// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/holoboard/holoboard/pkg/metrics"
)

// MetricsMiddleware records a request counter and latency histogram per
// endpoint. The status code is captured through a wrapping writer since
// handlers write it directly.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(sw.status))
		metrics.RecordHTTPRequestDuration(float64(time.Since(start).Milliseconds()))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
