package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	adoptionserver "github.com/Apurer/pet-adoption-api/go"

	adoptionworkflows "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/workflows"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
)

const serviceName = "pet-adoption-api"

// Run boots the adoption HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stores, cleanupStores, err := BuildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupStores()
	services, cleanupServices, err := BuildServices(ctx, cfg, instruments, stores)
	if err != nil {
		return err
	}
	defer cleanupServices()

	var decisions adoptionports.WorkflowOrchestrator = adoptionworkflows.NewInlineDecisionWorkflows(services.Adoptions)
	if temporalClient, err := ConnectTemporalClient(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, deciding requests inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		decisions = adoptionworkflows.NewTemporalDecisionWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := adoptionserver.ApiHandleFunctions{
		AdoptionRequestsAPI: adoptionserver.NewAdoptionRequestsAPI(services.Adoptions, decisions),
		AnimalsAPI:          adoptionserver.NewAnimalsAPI(services.Animals),
		UsersAPI:            adoptionserver.NewUsersAPI(services.Users),
		Auth:                adoptionserver.NewAuthenticator(services.Tokens),
		Limiter:             adoptionserver.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), otelgin.Middleware(serviceName))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "backend": stores.Backend})
	})
	router = adoptionserver.NewRouterWithGinEngine(router, handlers)

	addr := ":" + cfg.Port
	server := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("adoption API listening", slog.String("addr", addr), slog.String("backend", stores.Backend))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("adoption API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down adoption API")
		return server.Shutdown(shutdownCtx)
	}
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
