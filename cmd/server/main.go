package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spdash/dashboard/internal/config"
	"github.com/spdash/dashboard/internal/delivery/http"
	"github.com/spdash/dashboard/internal/repository/postgres"
	"github.com/spdash/dashboard/internal/service"
	"github.com/spdash/dashboard/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Fetch log repository
	repo := openRepository(cfg.DatabaseURL)

	// Dependency Injection: Services
	client := service.NewSPClient(cfg.APIBaseURL, cfg.RequestTimeout,
		service.WithRateLimit(cfg.BackendRPS, cfg.BackendBurst),
	)
	dashboardSvc := service.NewDashboardService(client, repo)
	sessions := service.NewSessionManager(dashboardSvc, cfg.SessionTTL)

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Fatalf("template error: %v", err)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sessions.Run(sweepCtx, time.Minute)

	app := http.NewApp(http.NewHandler(dashboardSvc, sessions, renderer, cfg.TileURL))

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on %s (backend %s, env %s)", cfg.ListenAddr(), cfg.APIBaseURL, cfg.Env)
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	stopSweep()
	sessions.Close()
	dashboardSvc.WaitBackground()
	if closer, ok := repo.(interface{ Close() }); ok {
		closer.Close()
	}
	log.Println("Server exited gracefully")
}

// openRepository connects to PostgreSQL, falling back to the in-memory
// repository when no database is configured or reachable.
func openRepository(databaseURL string) service.FetchLogRepository {
	if databaseURL == "" {
		log.Println("DATABASE_URL not set, keeping fetch logs in memory")
		return postgres.NewMockRepository()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err == nil {
		err = pool.Ping(ctx)
	}
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Keeping fetch logs in memory")
		if pool != nil {
			pool.Close()
		}
		return postgres.NewMockRepository()
	}

	repo := postgres.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Printf("Warning: %v", err)
	}
	log.Println("Connected to PostgreSQL")
	return repo
}
