package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ymctelemetry/config"
	"ymctelemetry/database"
	_ "ymctelemetry/docs" // Swagger 문서
	"ymctelemetry/handlers"
	"ymctelemetry/logger"
	"ymctelemetry/middleware"
	"ymctelemetry/models"
	"ymctelemetry/scheduler"
	"ymctelemetry/services"
	"ymctelemetry/utils"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Yandex Music Controller Telemetry API
// @version 1.0
// @description Stream Deck 플러그인 텔레메트리 수집 서버

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT 토큰을 입력하세요. 형식: Bearer {token}

func main() {
	configPath := flag.String("config", "", "path to config file (yaml)")
	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv("TELEMETRY_CONFIG")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 로거 초기화
	logConfig := logger.Config{
		Level:    logger.ParseLevel(cfg.Log.Level),
		LogDir:   cfg.Log.Dir,
		MaxAge:   7, // 7일
		UseColor: true,
	}

	if err := logger.Initialize(logConfig); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}

	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Info("🚀 Telemetry Server Starting")
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// 데이터베이스 초기화 (sqlite 또는 mysql)
	if err := database.Initialize(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// JWT 설정 (대시보드 인증)
	utils.ConfigureJWT(cfg.Dashboard.JWTSecret, time.Duration(cfg.Dashboard.TokenTTLHours)*time.Hour)

	// 서비스 계층 초기화
	sqlExecutor := services.NewSQLExecutor(database.DB)

	actionTracker, err := services.NewActionTracker(sqlExecutor, cfg.Validation.ActionNamePattern, cfg.Validation.MaxActionLength)
	if err != nil {
		logger.Fatal("Failed to initialize action tracker: %v", err)
	}
	installationTracker := services.NewInstallationTracker(sqlExecutor)
	errorTracker := services.NewErrorTracker(sqlExecutor, 10)

	rateLimiter := services.NewRateLimiter(sqlExecutor, database.Driver(),
		map[string]int{
			services.EndpointAction:       cfg.RateLimit.MaxRequests,
			services.EndpointInstallation: cfg.RateLimit.InstallationMaxRequests,
		},
		cfg.RateLimit.WindowSeconds,
		cfg.RateLimit.CleanupProbability,
	)

	trackingHandler := handlers.NewTrackingHandler(actionTracker, installationTracker, errorTracker, rateLimiter, cfg.RateLimit.Enabled)
	dashboardHandler := handlers.NewDashboardHandler(actionTracker, installationTracker, errorTracker)
	authHandler := handlers.NewAuthHandler(cfg.Dashboard)

	// 보존 기간 스위퍼 (기본 비활성)
	if cfg.Retention.Enabled {
		scheduler.StartRetentionSweeper(cfg.Retention.Days)
	}

	// 라우터 설정
	mux := http.NewServeMux()

	// Swagger 문서
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Public 엔드포인트
	mux.HandleFunc("/health", healthHandler)

	corsMiddleware := middleware.CORSMiddleware(cfg.CORS)

	// 수집 API (플러그인 클라이언트)
	mux.HandleFunc("/api/count-action",
		middleware.ChainMiddleware(
			trackingHandler.CountAction,
			middleware.LoggingMiddleware,
			corsMiddleware,
			middleware.SetJSONHeader,
		))

	mux.HandleFunc("/api/report-installation",
		middleware.ChainMiddleware(
			trackingHandler.ReportInstallation,
			middleware.LoggingMiddleware,
			corsMiddleware,
			middleware.SetJSONHeader,
		))

	mux.HandleFunc("/api/report-error",
		middleware.ChainMiddleware(
			trackingHandler.ReportError,
			middleware.LoggingMiddleware,
			corsMiddleware,
			middleware.SetJSONHeader,
		))

	// 인증 API (대시보드)
	mux.HandleFunc("/api/dashboard/login",
		middleware.ChainMiddleware(
			authHandler.Login,
			middleware.LoggingMiddleware,
			corsMiddleware,
			middleware.SetJSONHeader,
		))

	// 대시보드 API (인증 필요)
	dashboardRoutes := map[string]http.HandlerFunc{
		"/api/dashboard/stats":             dashboardHandler.Stats,
		"/api/dashboard/top-actions":       dashboardHandler.TopActions,
		"/api/dashboard/recent-actions":    dashboardHandler.RecentActions,
		"/api/dashboard/visitors":          dashboardHandler.Visitors,
		"/api/dashboard/installations":     dashboardHandler.Installations,
		"/api/dashboard/version-breakdown": dashboardHandler.VersionBreakdown,
		"/api/dashboard/os-breakdown":      dashboardHandler.OSBreakdown,
		"/api/dashboard/recent-errors":     dashboardHandler.RecentErrors,
		"/api/dashboard/error-breakdown":   dashboardHandler.ErrorBreakdown,
	}
	for path, handler := range dashboardRoutes {
		mux.HandleFunc(path,
			middleware.ChainMiddleware(
				handler,
				middleware.LoggingMiddleware,
				corsMiddleware,
				middleware.AuthMiddleware,
				middleware.SetJSONHeader,
			))
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 종료 시그널 처리
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown failed: %v", err)
		}
	}()

	logger.Info("Server listening on %s", cfg.Server.Addr)
	logger.Info("Swagger UI: http://localhost%s/swagger/index.html", cfg.Server.Addr)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}

// healthHandler 헬스 체크
// @Summary 헬스 체크
// @Tags 시스템
// @Produce json
// @Success 200 {object} models.APIResponse "서버 정상"
// @Router /health [get]
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.SuccessResponse(map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}))
}
