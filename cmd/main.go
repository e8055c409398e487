package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"macrolog/config"
	"macrolog/controllers"
	"macrolog/routes"
	"macrolog/services"
	"macrolog/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func loadAWS(ctx context.Context, region string) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

func newAIClient(ctx context.Context, cfg config.AIConfig) (services.AIClient, error) {
	if cfg.Provider == "bedrock" {
		awsCfg, err := loadAWS(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return services.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil
	}
	return services.NewGatewayClient(cfg.GatewayURL, cfg.APIKey, cfg.Model), nil
}

func newArchiver(ctx context.Context, cfg config.ExportConfig, fallbackRegion string) (services.Archiver, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}
	region := cfg.S3Region
	if region == "" {
		region = fallbackRegion
	}
	awsCfg, err := loadAWS(ctx, region)
	if err != nil {
		return nil, err
	}
	return utils.NewExportArchiver(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.PublicURL), nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.SlogLevel())
	slog.SetDefault(logger)
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg.DB)
	if err != nil {
		return err
	}
	loc := cfg.Location()

	sessions, err := services.NewSessionManager(services.SessionOptions{
		Secret:        []byte(cfg.Auth.JWTSecret),
		Issuer:        cfg.Auth.Issuer,
		RedirectURL:   cfg.Auth.RedirectURL,
		RedirectAfter: cfg.Auth.RedirectAfter,
	})
	if err != nil {
		return err
	}
	defer sessions.Close()

	ai, err := newAIClient(ctx, cfg.AI)
	if err != nil {
		return err
	}
	archiver, err := newArchiver(ctx, cfg.Export, cfg.AI.AWSRegion)
	if err != nil {
		return err
	}

	hub := services.NewRealtimeHub()
	defer hub.CloseAll()
	bus := services.NewChangeBus(hub, logger)

	usda := services.NewUSDAService(cfg.Lookup.USDAAPIKey, cfg.Lookup.USDABaseURL, cfg.Lookup.Timeout)
	off := services.NewOpenFoodFactsService(cfg.Lookup.OFFBaseURL, cfg.Lookup.Timeout, cfg.Lookup.BarcodeCacheTTL)

	settingsSvc := services.NewSettingsService(db)
	statsSvc := services.NewDailyStatsService(db)
	goalSvc := services.NewGoalService(db, settingsSvc, statsSvc)
	mealSvc := services.NewMealService(db, bus)
	librarySvc := services.NewLibraryService(db)
	analysisSvc := services.NewAnalysisService(ai, librarySvc, usda, off, services.AnalysisOptions{
		LookupTimeout:    cfg.Lookup.Timeout,
		AverageEstimates: cfg.Lookup.AverageEstimates,
	}, logger)
	suggestionSvc := services.NewSuggestionService(ai, librarySvc, goalSvc, loc, logger)

	h := routes.Controllers{
		Meals:     controllers.NewMealController(mealSvc, loc),
		Library:   controllers.NewLibraryController(librarySvc),
		Functions: controllers.NewFunctionsController(analysisSvc, suggestionSvc),
		Food:      controllers.NewFoodController(services.NewFoodService(off, usda, logger)),
		Daily:     controllers.NewDailyController(goalSvc, statsSvc, loc),
		Settings:  controllers.NewSettingsController(settingsSvc),
		Analytics: controllers.NewAnalyticsController(services.NewAnalyticsService(db, goalSvc), loc),
		Export:    controllers.NewExportController(services.NewExportService(mealSvc, archiver), loc),
		Realtime:  controllers.NewRealtimeController(hub),
	}
	if cfg.Auth.DevTokens {
		logger.Warn("dev token endpoint enabled")
		h.Dev = controllers.NewDevController(sessions, bus)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(h, sessions, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "ai_provider", cfg.AI.Provider, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
