package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/hisab/internal/auth"
	"github.com/mmynk/hisab/internal/cache"
	"github.com/mmynk/hisab/internal/config"
	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/internal/middleware"
	"github.com/mmynk/hisab/internal/notify"
	"github.com/mmynk/hisab/internal/service"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/internal/storage/memory"
	"github.com/mmynk/hisab/internal/storage/mongo"
	"github.com/mmynk/hisab/internal/storage/postgres"
	"github.com/mmynk/hisab/internal/storage/sqlite"
	"github.com/mmynk/hisab/internal/websocket"
	"github.com/mmynk/hisab/pkg/api/apiconnect"
	"github.com/mmynk/hisab/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.StoreDriver)

	hub := websocket.NewHub(slog.Default())
	opts := []ledger.Option{ledger.WithNotifier(notify.NewDispatcher(store, hub))}

	if cfg.RedisAddr != "" {
		balances, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.BalanceCacheTTL)
		if err != nil {
			// Balances are always recomputable, so run without the cache.
			slog.Warn("Balance cache unavailable", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer balances.Close()
			opts = append(opts, ledger.WithCache(balances))
			slog.Info("Balance cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.BalanceCacheTTL)
		}
	}

	l := ledger.New(store, opts...)
	verifier := auth.NewJWTVerifier(cfg.AuthSecret, cfg.AuthIssuer)

	mux := http.NewServeMux()
	registerServices(mux, l, verifier)

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			slog.Warn("Health check failed", "error", err)
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	mux.Handle("/ws", websocket.HandleWebSocket(hub, middleware.Authenticate(verifier), cfg.AllowedOrigins))

	// Add logging and CORS middleware
	loggedHandler := loggingMiddleware(corsMiddleware(mux, cfg.AllowedOrigins))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(loggedHandler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("Shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// registerServices mounts every Connect service on mux behind the metrics,
// auth and logging interceptors.
func registerServices(mux *http.ServeMux, l *ledger.Ledger, verifier *auth.JWTVerifier) {
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		middleware.RequireAuth(verifier),
		middleware.LoggingInterceptor(),
	)

	mux.Handle(apiconnect.NewUserServiceHandler(service.NewUserService(l), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(service.NewGroupService(l), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(service.NewExpenseService(l), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(service.NewSettlementService(l), interceptors))
	mux.Handle(apiconnect.NewNotificationServiceHandler(service.NewNotificationService(l), interceptors))
}

// openStore opens the backend named by cfg.StoreDriver.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		slog.Warn("Using in-memory storage, data is lost on restart")
		return memory.New(), nil
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return sqlite.New(cfg.DBPath)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	case config.DriverMongo:
		return mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StoreDriver)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := allowedOrigin(r.Header.Get("Origin"), allowedOrigins); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func allowedOrigin(origin string, allowed []string) string {
	for _, a := range allowed {
		if a == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(a, origin) {
			return origin
		}
	}
	return ""
}
