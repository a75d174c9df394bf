package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitroom/internal/auth"
	"github.com/mmynk/splitroom/internal/config"
	"github.com/mmynk/splitroom/internal/middleware"
	"github.com/mmynk/splitroom/internal/realtime"
	"github.com/mmynk/splitroom/internal/receipt"
	"github.com/mmynk/splitroom/internal/service"
	"github.com/mmynk/splitroom/internal/storage/sqlite"
	"github.com/mmynk/splitroom/internal/worker"
	"github.com/mmynk/splitroom/pkg/api/apiconnect"
	"github.com/mmynk/splitroom/pkg/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	broker, err := realtime.NewBroker(cfg.Broker())
	if err != nil {
		return err
	}
	defer broker.Close()
	slog.Info("Realtime broker ready", "provider", cfg.BrokerProvider)

	scanner, err := newScanner(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg, cfg.MetricsNamespace)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.DefaultCost)

	opts := connect.WithInterceptors(
		middleware.NewLoggingInterceptor(),
		metrics,
		middleware.NewAuthInterceptor(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
			apiconnect.AuthServiceSignInGuestProcedure,
		),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(service.NewAuthService(authenticator, store, jwtManager, logger), opts))
	mux.Handle(apiconnect.NewRoomServiceHandler(service.NewRoomService(store, broker, cfg.Policy(), cfg.DefaultLocale), opts))
	mux.Handle(apiconnect.NewBillServiceHandler(service.NewBillService(store, broker, cfg.DefaultLocale), opts))
	mux.Handle(apiconnect.NewReceiptServiceHandler(service.NewReceiptService(store, broker, scanner), opts))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	sweeper := worker.NewSweeper(store, worker.SweeperConfig{Interval: cfg.SweepInterval}, reg, cfg.MetricsNamespace, logger)
	go func() {
		if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Sweeper stopped", "error", err)
		}
	}()

	// Wrap with h2c for HTTP/2 without TLS (required for Connect streaming)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newScanner picks the receipt backend. Without an API key scanning is
// reported as unavailable.
func newScanner(ctx context.Context, cfg *config.Config) (receipt.Scanner, error) {
	if !cfg.ScanningEnabled() {
		slog.Warn("GEMINI_API_KEY not set, receipt scanning disabled")
		return receipt.DisabledScanner{}, nil
	}
	gemini, err := receipt.NewGeminiScanner(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	if cfg.ScanCacheSize == 0 {
		return gemini, nil
	}
	return receipt.NewCachedScanner(gemini, cfg.ScanCacheSize)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
