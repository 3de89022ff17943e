package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"Pumpsizer/internal/auth"
	"Pumpsizer/internal/calc/premium/autodesign"
	"Pumpsizer/internal/calc/premium/batch"
	"Pumpsizer/internal/calc/premium/importer"
	"Pumpsizer/internal/calc/premium/recommend"
	"Pumpsizer/internal/calc/pump"
	"Pumpsizer/internal/calc/report"
	"Pumpsizer/internal/config"
	"Pumpsizer/internal/logging"
	"Pumpsizer/internal/repo"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func HandleList(r *mux.Router, authEnv *auth.Authenv, limiter *auth.IPRateLimiter, logger *slog.Logger) {
	r.Use(logging.RequestLogger(logger))

	api := r.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	// Tool handlers log through the request logger, which carries the caller's
	// login once AuthMiddleware has run.
	pumpH := &pump.Handler{}
	api.HandleFunc("/tools/pump/fittings", pumpH.Fittings).Methods("GET")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	reportH := &report.Handler{}
	batchH := &batch.Handler{}
	importH := &importer.Handler{}
	motorH := &recommend.Handler{}
	pipeH := &autodesign.Handler{}

	secureApi.HandleFunc("/tools/pump/calc", pumpH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/pump/report", reportH.Generate).Methods("POST")
	secureApi.HandleFunc("/tools/pump/batch", batchH.Pump).Methods("POST")
	secureApi.HandleFunc("/tools/pump/import", importH.Pump).Methods("POST")
	secureApi.HandleFunc("/tools/pump/motor", motorH.Motor).Methods("POST")
	secureApi.HandleFunc("/tools/pump/pipe", pipeH.Pipe).Methods("POST")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.NewStructuredLogger(os.Stdout, level).With("env", cfg.Env)
	slog.SetDefault(logger)

	db, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.LogError(logger, "database unavailable", err)
		os.Exit(1)
	}
	defer db.Close()
	userRepo := repo.NewPostgresUserDB(db)
	if err := userRepo.Migrate(ctx); err != nil {
		logging.LogError(logger, "migration failed", err)
		os.Exit(1)
	}

	authEnv := &auth.Authenv{JWTkey: cfg.TokenKey, Repo: userRepo, Logger: logger}
	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	router := mux.NewRouter()
	HandleList(router, authEnv, limiter, logger)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           CORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "addr", cfg.Addr, "tls", cfg.TLS())
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.LogError(logger, "server error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	start := time.Now()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.LogError(logger, "shutdown failed", err)
	}
	wg.Wait()
	logging.LogOperation(logger, "server stopped", slog.Duration("duration", time.Since(start)))
}
