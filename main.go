package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/LinhLe223/GMV-MAX/src/config"
	"github.com/LinhLe223/GMV-MAX/src/database"
	"github.com/LinhLe223/GMV-MAX/src/handlers"
	"github.com/LinhLe223/GMV-MAX/src/logger"
	"github.com/LinhLe223/GMV-MAX/src/security"
	"github.com/LinhLe223/GMV-MAX/src/services"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.FromContext(r.Context()).Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(origins []string) func(http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowedOrigins[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowedOrigins[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, X-Request-ID, If-None-Match")
				w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, ETag, Content-Disposition")
			} else if origin == "" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}

			if r.Method == http.MethodOptions {
				logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("GMV Max reconciliation server starting...")

	authService := security.NewAuthService(config.Cfg)
	if authService.Enabled() && len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	costStructure, err := config.LoadCostStructure(config.Cfg.CostStructurePath)
	if err != nil {
		logger.L.Error("Failed to load cost structure, using zero fees", "path", config.Cfg.CostStructurePath, "error", err)
	}

	logger.L.Info("Initializing result cache...")
	resultCache := cache.New(config.Cfg.ResultCacheTTL, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	reconciliationService := services.NewReconciliationService(database.DB, config.Cfg, costStructure, resultCache)
	if err := reconciliationService.Restore(context.Background()); err != nil {
		logger.L.Warn("Cached sources could not be restored, starting empty", "error", err)
	}

	authHandler := handlers.NewAuthHandler(authService)
	uploadHandler := handlers.NewUploadHandler(reconciliationService, config.Cfg.MaxUploadSizeBytes)
	reportHandler := handlers.NewReportHandler(reconciliationService)
	adsHandler := handlers.NewAdsHandler(reconciliationService)
	datasetHandler := handlers.NewDatasetHandler(reconciliationService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)

	protect := func(handler http.HandlerFunc) http.Handler {
		return authHandler.AuthMiddleware(handler)
	}

	apiRouter.Handle("POST /api/upload", protect(uploadHandler.HandleUpload))
	apiRouter.Handle("GET /api/creators", protect(reportHandler.HandleListCreators))
	apiRouter.Handle("GET /api/creators/{key}/videos", protect(reportHandler.HandleCreatorVideos))
	apiRouter.Handle("GET /api/creators/{key}/orders", protect(reportHandler.HandleCreatorOrders))
	apiRouter.Handle("GET /api/products", protect(reportHandler.HandleListProducts))
	apiRouter.Handle("GET /api/products/{key}/creators", protect(reportHandler.HandleProductCreators))
	apiRouter.Handle("GET /api/summary", protect(reportHandler.HandleSummary))
	apiRouter.Handle("GET /api/unmapped", protect(reportHandler.HandleUnmapped))
	apiRouter.Handle("GET /api/diagnostics", protect(reportHandler.HandleDiagnostics))
	apiRouter.Handle("GET /api/analysis", protect(reportHandler.HandleAnalysis))
	apiRouter.Handle("GET /api/export", protect(reportHandler.HandleExport))
	apiRouter.Handle("GET /api/ads/summary", protect(adsHandler.HandleSummary))
	apiRouter.Handle("GET /api/ads/campaigns", protect(adsHandler.HandleCampaigns))
	apiRouter.Handle("GET /api/ads/campaign-creators", protect(adsHandler.HandleCampaignCreators))
	apiRouter.Handle("GET /api/ads/roi-distribution", protect(adsHandler.HandleRoiDistribution))
	apiRouter.Handle("GET /api/cost-structure", protect(datasetHandler.HandleGetCostStructure))
	apiRouter.Handle("PUT /api/cost-structure", protect(datasetHandler.HandlePutCostStructure))
	apiRouter.Handle("DELETE /api/dataset", protect(datasetHandler.HandleDeleteDataset))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "GMV Max backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := handlers.RequestIDMiddleware(enableCORS(config.Cfg.AllowedOrigins)(rateLimitMiddleware(rootMux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
