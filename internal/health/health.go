// Package health serves liveness and readiness probes on the
// observability listener.
package health

import (
	"net/http"
	"sync/atomic"
)

// ready flips once startup validation (config parse, catalog lookup,
// parameter checks) has completed.
var ready atomic.Bool

// SetReady marks startup as complete.
func SetReady() { ready.Store(true) }

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Readyz returns 200 "ready\n" once startup has completed, 503 before.
func Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if !ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("starting\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready\n"))
}
