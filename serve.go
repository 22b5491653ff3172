package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fyodorov-ai/tsiolkovsky/common"
	"github.com/fyodorov-ai/tsiolkovsky/common/client"
	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/common/helper"
	"github.com/fyodorov-ai/tsiolkovsky/common/logger"
	"github.com/fyodorov-ai/tsiolkovsky/common/telemetry"
	"github.com/fyodorov-ai/tsiolkovsky/controller"
	"github.com/fyodorov-ai/tsiolkovsky/model"
	"github.com/fyodorov-ai/tsiolkovsky/monitor"
	"github.com/fyodorov-ai/tsiolkovsky/router"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	cmd.Flags().IntP("port", "p", 0, "Listen port (overrides PORT)")
	cmd.Flags().String("env-file", ".env", "Dotenv file loaded outside production")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := loadEnvironment(envFile); err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		config.Port = port
	}

	logger.SetupLogger()
	logger.Logger.Info(fmt.Sprintf("%s %s started", common.Banner, common.Version))
	if err := config.ValidateStore(); err != nil {
		logger.Logger.Error("invalid store configuration", zap.Error(err))
		return err
	}

	switch {
	case config.GinMode != "":
		gin.SetMode(config.GinMode)
	case config.DebugEnabled:
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := buildStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	otelProviders, err := telemetry.InitOpenTelemetry(ctx, store)
	if err != nil {
		return errors.Wrap(err, "init opentelemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otelProviders.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Warn("failed to shutdown opentelemetry", zap.Error(err))
		}
	}()

	if err := monitor.InitMonitoring(common.Version, runtime.Version(), time.Now()); err != nil {
		return errors.Wrap(err, "init monitoring")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           router.NewEngine(controller.New(store)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen and serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadEnvironment applies the dotenv file outside production. A missing file is
// fine, a malformed one is not.
func loadEnvironment(path string) error {
	if !config.IsProduction() && path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrapf(err, "load %s", path)
		}
	}
	config.Load()
	return nil
}

func buildStore() (model.Store, error) {
	switch config.StoreDriver {
	case config.StoreDriverSQL:
		db, dialect, err := model.OpenDB(config.SQLDSN)
		if err != nil {
			return nil, errors.Wrap(err, "open database")
		}
		store := model.NewGormStore(db, dialect)
		if config.AutoMigrate {
			if err := model.Migrate(db); err != nil {
				_ = store.Close()
				return nil, errors.Wrap(err, "migrate database")
			}
		}
		logger.Logger.Info("using sql store", zap.String("dialect", store.Dialect()))
		return store, nil
	case config.StoreDriverSupabase:
		client.Init()
		logger.Logger.Info("using supabase store",
			zap.String("project_url", config.SupabaseProjectURL),
			zap.String("api_key", helper.MaskAPIKey(config.SupabaseAPIKey)))
		return model.NewSupabaseStore(config.SupabaseProjectURL, config.SupabaseAPIKey, client.StoreHTTPClient), nil
	default:
		return nil, errors.Errorf("unsupported STORE_DRIVER %q", config.StoreDriver)
	}
}
