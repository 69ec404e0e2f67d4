package health

import (
	"net/http"
	"sync/atomic"
	"time"
)

var (
	ready    atomic.Bool
	loadedAt atomic.Int64
)

// SetReady marks readiness state
func SetReady(v bool) { ready.Store(v) }

// Ready returns current readiness
func Ready() bool { return ready.Load() }

// MarkLoaded records when the active restriction index was built.
func MarkLoaded(t time.Time) { loadedAt.Store(t.UnixMilli()) }

// Healthz is a simple liveness probe
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz is ready only after a restriction index has been loaded and SetReady(true) was called.
func Readyz(w http.ResponseWriter, r *http.Request) {
	if Ready() && loadedAt.Load() > 0 {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	http.Error(w, "not ready", http.StatusServiceUnavailable)
}
