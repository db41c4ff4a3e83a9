package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_FailureThreshold(t *testing.T) {
	p := &probe{name: "flaky", timeout: time.Second, check: func(ctx context.Context) error {
		return errors.New("down")
	}}
	p.healthy.Store(true)

	ctx := context.Background()
	p.runOnce(ctx)
	p.runOnce(ctx)
	assert.True(t, p.healthy.Load(), "two failures stay below the threshold")

	p.runOnce(ctx)
	assert.False(t, p.healthy.Load(), "third consecutive failure flips unhealthy")
}

func TestProbe_SingleSuccessRecovers(t *testing.T) {
	healthy := false
	p := &probe{name: "dep", timeout: time.Second, check: func(ctx context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	}}
	p.healthy.Store(true)

	ctx := context.Background()
	for range failuresToUnhealthy {
		p.runOnce(ctx)
	}
	require.False(t, p.healthy.Load())

	healthy = true
	p.runOnce(ctx)
	assert.True(t, p.healthy.Load())
}

func TestProbe_FailureMessage(t *testing.T) {
	p := &probe{name: "dep", timeout: time.Second, check: func(ctx context.Context) error {
		return errors.New("connection refused")
	}}

	ctx := context.Background()
	for range failuresToUnhealthy {
		p.runOnce(ctx)
	}

	msg, failed := p.failure()
	assert.True(t, failed)
	assert.Equal(t, "connection refused", msg)
}

func TestLiveEndpoint(t *testing.T) {
	h := New()
	h.AddLivenessCheck("always_ok", time.Second, func(ctx context.Context) error {
		return nil
	})

	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestLiveEndpoint_Unhealthy(t *testing.T) {
	h := New()
	h.AddLivenessCheck("broken", time.Second, func(ctx context.Context) error {
		return errors.New("stuck")
	})
	// Drive the probe past the failure threshold directly.
	for _, p := range h.snapshot(kindLiveness) {
		for range failuresToUnhealthy {
			p.runOnce(context.Background())
		}
	}

	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status": "unhealthy", "checks": {"broken": "stuck"}}`, rec.Body.String())
}

func TestReadyEndpoint_GatedOnSetReady(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetReady(true)
	rec = httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Shutdown drains: flipping back immediately fails readiness again.
	h.SetReady(false)
	rec = httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIsReady(t *testing.T) {
	h := New()
	assert.False(t, h.IsReady())

	h.SetReady(true)
	assert.True(t, h.IsReady())

	h.AddReadinessCheck("dep", time.Second, func(ctx context.Context) error {
		return errors.New("down")
	})
	for _, p := range h.snapshot(kindReadiness) {
		for range failuresToUnhealthy {
			p.runOnce(context.Background())
		}
	}
	assert.False(t, h.IsReady())
}

func TestStartStop(t *testing.T) {
	h := New()
	runs := make(chan struct{}, 16)
	h.AddLivenessCheck("tick", time.Second, func(ctx context.Context) error {
		select {
		case runs <- struct{}{}:
		default:
		}
		return nil
	})

	h.Start(context.Background(), 5*time.Millisecond)
	defer h.Stop()

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("probe never ran")
	}

	h.Stop()
	h.Stop() // idempotent
}

func TestGoroutineCountCheck(t *testing.T) {
	ctx := context.Background()

	ok := GoroutineCountCheck(runtime.NumGoroutine() + 1000)
	assert.NoError(t, ok(ctx))

	tooLow := GoroutineCountCheck(0)
	assert.Error(t, tooLow(ctx))
}

func TestGCMaxPauseCheck(t *testing.T) {
	runtime.GC()
	check := GCMaxPauseCheck(time.Hour)
	assert.NoError(t, check(context.Background()))
}
