package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/entrega-app/entrega/internal/domain/cart"
	"github.com/entrega-app/entrega/internal/domain/catalog"
	"github.com/entrega-app/entrega/internal/domain/order"
	"github.com/entrega-app/entrega/internal/domain/promo"
	"github.com/entrega-app/entrega/internal/handler"
	"github.com/entrega-app/entrega/pkg/health"
	"github.com/entrega-app/entrega/pkg/httpmiddleware"
	"github.com/entrega-app/entrega/seed"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Embedded seed data: catalog and promo codes, loaded concurrently.
	cat, promos, err := loadSeeds(ctx)
	if err != nil {
		return errors.Wrap(err, "load seed data")
	}
	lg.Info("Seed data loaded", zap.Int("promo_codes", promos.Count()))

	// State containers. The ledger owns the delivery simulation; it is
	// closed after the server drains so in-flight reads stay consistent.
	carts := cart.NewStore(cfg.DeliveryFeeAmount())
	ledger := order.NewLedger(order.LedgerConfig{
		StageInterval: cfg.Simulation.StageInterval,
	}, lg.Named("ledger"))

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(time.Second))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// HTTP handlers.
	h, err := handler.New(handler.Config{
		DefaultEtaMinutes: cfg.DefaultEtaMinutes,
		TracerProvider:    m.TracerProvider(),
		MeterProvider:     m.MeterProvider(),
	}, cat, carts, promos, ledger)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	api := otelhttp.NewHandler(mux, "entrega-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(api,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "X-Session-ID"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		ledger.Close()
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// loadSeeds decompresses and parses the embedded catalog and promo code
// list, in parallel since both are independent.
func loadSeeds(ctx context.Context) (*catalog.Memory, *promo.Index, error) {
	var (
		cat    *catalog.Memory
		promos *promo.Index
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := seed.OpenCatalog()
		if err != nil {
			return err
		}
		defer r.Close()

		cat, err = catalog.Load(r)
		return errors.Wrap(err, "catalog")
	})
	g.Go(func() error {
		r, err := seed.OpenPromoCodes()
		if err != nil {
			return err
		}
		defer r.Close()

		promos, err = promo.Load(r)
		return errors.Wrap(err, "promo codes")
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return cat, promos, nil
}
