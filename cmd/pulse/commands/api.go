package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/finpulse/internal/api"
	"github.com/wonny/finpulse/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- PulseScore / 리스크 / 기회 / 시장 개요 조회 엔드포인트 제공
- DATABASE_URL 설정 시 점수 이력 조회 제공

Endpoints:
  GET  /                              - Service info
  GET  /health                        - Health check
  GET  /metrics                       - Prometheus metrics
  GET  /api/pulsescore/{symbol}       - PulseScore
  GET  /api/pulsescore/{symbol}/history - 점수 이력
  GET  /api/risk/{symbol}             - 리스크 분석
  GET  /api/stock/{symbol}            - 기술적 스냅샷
  GET  /api/opportunities             - 기회 스크리닝
  GET  /api/market/overview           - 시장 개요

Example:
  go run ./cmd/pulse api
  go run ./cmd/pulse api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FinPulse API Server ===")

	a, err := bootstrap(cmd.Context(), bootstrapOptions{
		withMetrics: true,
		withHistory: true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	// Handlers; history and health take an untyped nil without a database
	h := api.Handlers{
		Pulse: handlers.NewPulseHandler(a.service, log),
	}
	if a.history != nil {
		h.History = handlers.NewHistoryHandler(a.history, log)
		h.Health = handlers.NewHealthHandler(a.db, a.service.ConfigHash())
	} else {
		h.History = handlers.NewHistoryHandler(nil, log)
		h.Health = handlers.NewHealthHandler(nil, a.service.ConfigHash())
	}

	h.Health.WithCache(a.redis)

	router := api.NewRouter(h, a.metrics, log)
	server := api.New(a.cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	PrintList([]string{
		"GET  /health",
		"GET  /api/pulsescore/{symbol}",
		"GET  /api/risk/{symbol}",
		"GET  /api/stock/{symbol}",
		"GET  /api/opportunities",
		"GET  /api/market/overview",
	})
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
