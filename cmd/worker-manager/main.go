// cmd/worker-manager/main.go
package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"sms-ride-workers/internal/common/aws"
	"sms-ride-workers/internal/common/camunda"
	"sms-ride-workers/internal/common/config"
	"sms-ride-workers/internal/common/database"
	"sms-ride-workers/internal/common/gmaps"
	"sms-ride-workers/internal/common/logger"
	"sms-ride-workers/internal/common/lyft"
	"sms-ride-workers/internal/common/observability"
	"sms-ride-workers/internal/server"
	"sms-ride-workers/internal/smsutils"

	ssr "sms-ride-workers/internal/workers/communication/send-sms-reply"
	er "sms-ride-workers/internal/workers/ride/estimate-ride"
	rr "sms-ride-workers/internal/workers/ride/request-ride"
	psm "sms-ride-workers/internal/workers/sms/parse-sms-message"
)

func main() {
	bootLog := logger.New("info", "console")
	defer bootLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init Zeebe Client with retry ---
	zeebeClient, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = camunda.RetryWithBackoff(ctx, camunda.DefaultRetryConfig, log, "postgres connection", func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return err
		}
		return nil
	})
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("postgres schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = camunda.RetryWithBackoff(ctx, camunda.DefaultRetryConfig, log, "redis connection", func() error {
		return redis.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init External Service Clients ---
	var geocoder smsutils.Geocoder = gmaps.NewClient(
		cfg.APIs.GMaps.BaseURL,
		cfg.APIs.GMaps.APIKey,
		config.GetDuration(cfg.APIs.GMaps.Timeout),
	)
	if cfg.APIs.GMaps.CacheTTL > 0 {
		geocoder = gmaps.NewCachedGeocoder(geocoder, redis.Client, time.Duration(cfg.APIs.GMaps.CacheTTL)*time.Second, log)
	}

	lyftClient := lyft.NewClient(cfg.APIs.Lyft.BaseURL, config.GetDuration(cfg.APIs.Lyft.Timeout))
	rideRepo := database.NewRideRepository(pg.DB)

	var smsSender ssr.SMSSender
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.SMS.Region, cfg.Notifications.SMS.SenderID)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		smsSender = snsClient
	}

	// --- Register Workers ---
	var workers []worker.JobWorker
	register := func(taskType string, handler worker.JobHandler) {
		if w := camunda.StartWorker(zeebeClient, taskType, cfg.Workers[taskType], handler, obs, log); w != nil {
			workers = append(workers, w)
		}
	}

	psmCfg := psm.LoadConfig()
	psmCfg.Timeout = workerTimeout(cfg, psm.TaskType, psmCfg.Timeout)
	register(psm.TaskType, psm.NewHandler(psmCfg, geocoder, log).Handle)

	rrCfg := rr.LoadConfig()
	rrCfg.Timeout = workerTimeout(cfg, rr.TaskType, rrCfg.Timeout)
	rrCfg.DefaultRideType = lyft.RideType(cfg.APIs.Lyft.DefaultRideType)
	register(rr.TaskType, rr.NewHandler(rrCfg, lyftClient, rideRepo, log).Handle)

	erCfg := er.LoadConfig()
	erCfg.Timeout = workerTimeout(cfg, er.TaskType, erCfg.Timeout)
	erCfg.DefaultRideType = lyft.RideType(cfg.APIs.Lyft.DefaultRideType)
	register(er.TaskType, er.NewHandler(erCfg, lyftClient, log).Handle)

	ssrCfg := ssr.DefaultConfig()
	ssrCfg.Enabled = cfg.Notifications.SMS.Enabled
	ssrCfg.Timeout = workerTimeout(cfg, ssr.TaskType, ssrCfg.Timeout)
	if err := ssrCfg.Validate(); err != nil {
		zapLog.Fatal("invalid send-sms-reply config", zap.Error(err))
	}
	register(ssr.TaskType, ssr.NewHandler(ssrCfg, smsSender, log).Handle)

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- HTTP Route Layer ---
	srv := server.New(server.Options{
		Rides:      lyftClient,
		Store:      rideRepo,
		Classifier: smsutils.NewClassifier(geocoder),
		Sessions:   server.NewSessionStore(redis.Client, time.Duration(cfg.App.SessionTTL)*time.Second, cfg.App.SessionSecret),
		Checks: map[string]server.ReadinessCheck{
			"postgres": pg.Ping,
			"redis":    redis.Ping,
			"zeebe": func(ctx context.Context) error {
				return camunda.HealthCheck(ctx, zeebeClient, 2*time.Second)
			},
		},
		StaticDir: cfg.App.StaticDir,
		Logger:    log,
	})
	httpServer := srv.HTTPServer(cfg.App.Addr())

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			cancel()
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received, stopping workers...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// workerTimeout prefers the configured per-worker timeout over the handler default.
func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if wcfg, ok := cfg.Workers[taskType]; ok && wcfg.Timeout > 0 {
		return config.GetDuration(wcfg.Timeout)
	}
	return fallback
}
