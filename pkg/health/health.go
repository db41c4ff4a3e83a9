// Package health provides liveness and readiness probes for the API server.
//
// Each registered probe runs on its own goroutine at a fixed interval and
// flips state only after consecutive failures or successes cross its
// threshold, so a single flaky run does not flap the endpoint.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// kind separates liveness probes (is the process functional) from readiness
// probes (should it receive traffic).
type kind int

const (
	kindLiveness kind = iota
	kindReadiness
)

// Default thresholds: three strikes to go unhealthy, one success to recover.
const (
	failuresToUnhealthy = 3
	successesToHealthy  = 1
)

// probe is one registered check plus its runtime state. The counters are
// touched only by the probe's own goroutine; healthy and lastErr are shared
// with HTTP handlers through atomics.
type probe struct {
	name    string
	kind    kind
	timeout time.Duration
	check   CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	fails int
	oks   int
}

func (p *probe) runOnce(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.check(checkCtx)
	cancel()

	p.lastErr.Store(&err)
	if err != nil {
		p.oks = 0
		p.fails++
		if p.fails >= failuresToUnhealthy {
			p.healthy.Store(false)
		}
		return
	}
	p.fails = 0
	p.oks++
	if p.oks >= successesToHealthy {
		p.healthy.Store(true)
	}
}

func (p *probe) failure() (string, bool) {
	if p.healthy.Load() {
		return "", false
	}
	if errp := p.lastErr.Load(); errp != nil && *errp != nil {
		return (*errp).Error(), true
	}
	return "check is unhealthy", true
}

// Health owns all probes for a service and serves the /livez and /readyz
// endpoints.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	probes []*probe
	cancel context.CancelFunc
}

// New creates a Health service in the not-ready state. Register probes, call
// Start, then SetReady(true) once initialization completes.
func New() *Health {
	return &Health{}
}

func (h *Health) add(name string, k kind, timeout time.Duration, check CheckFunc) {
	p := &probe{name: name, kind: k, timeout: timeout, check: check}
	p.healthy.Store(true) // healthy until proven otherwise

	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes = append(h.probes, p)
}

// AddLivenessCheck registers a probe that decides whether the process is
// alive (goroutine leaks, GC stalls).
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(name, kindLiveness, timeout, check)
}

// AddReadinessCheck registers a probe that decides whether the service
// should receive traffic (dependency availability, warmup).
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(name, kindReadiness, timeout, check)
}

// Start launches one goroutine per registered probe, each running at the
// given interval until Stop or context cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := append([]*probe(nil), h.probes...)
	h.mu.Unlock()

	for _, p := range probes {
		go func(p *probe) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			p.runOnce(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.runOnce(ctx)
				}
			}
		}(p)
	}
}

// Stop cancels all probe goroutines. Safe to call repeatedly.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate: true after initialization,
// false at the start of graceful shutdown to drain traffic.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// is currently healthy.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	for _, p := range h.snapshot(kindReadiness) {
		if !p.healthy.Load() {
			return false
		}
	}
	return true
}

func (h *Health) snapshot(k kind) []*probe {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*probe, 0, len(h.probes))
	for _, p := range h.probes {
		if p.kind == k {
			out = append(out, p)
		}
	}
	return out
}

// LiveEndpoint serves /livez: 200 while all liveness probes pass, 503 with
// per-probe failure details otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(kindLiveness))
}

// ReadyEndpoint serves /readyz: 200 only when the service is marked ready
// and all readiness probes pass.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(kindReadiness)
	if !h.ready.Load() {
		failures = append(failures, failureEntry{"_readiness", "service is not ready"})
	}
	writeStatus(w, failures)
}

type failureEntry struct {
	name    string
	message string
}

func (h *Health) failures(k kind) []failureEntry {
	var out []failureEntry
	for _, p := range h.snapshot(k) {
		if msg, failed := p.failure(); failed {
			out = append(out, failureEntry{p.name, msg})
		}
	}
	return out
}

func writeStatus(w http.ResponseWriter, failures []failureEntry) {
	status := http.StatusOK

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		if len(failures) == 0 {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, f := range failures {
					e.Field(f.name, func(e *jx.Encoder) { e.Str(f.message) })
				}
			})
		})
	})
	if len(failures) > 0 {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
