package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/config"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/httpserver"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/logging"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/metrics"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/store"
)

var (
	flagEnvFile string
	flagPort    string
	flagPrefix  string
)

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "REST API nad posledními hodnotami senzorů",
	Long:  "api-service čte poslední readings senzorů z Valkey a nabízí dotazy na jednotlivé senzory, seznamy a statistiky.",
	RunE:  runService,
}

func init() {
	rootCmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "volitelný .env soubor")
	rootCmd.Flags().StringVar(&flagPort, "port", "", "HTTP port (přebije HTTP_PORT)")
	rootCmd.Flags().StringVar(&flagPrefix, "key-prefix", "", "prefix klíčů ve Valkey (přebije REDIS_KEY_PREFIX)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runService(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}
	cfg := LoadConfig()
	if cmd.Flags().Changed("port") {
		cfg.HTTPPort = flagPort
	}
	if cmd.Flags().Changed("key-prefix") {
		cfg.KeyPrefix = flagPrefix
	}

	// 1. Setup Logger
	logger, logOut, closeLogs := logging.Setup(serviceName, cfg.LogLevel, cfg.MQTTBroker)
	defer closeLogs()
	logger.Info("Startuji API Service", "valkey", cfg.ValkeyAddr, "key_prefix", cfg.KeyPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Úložiště
	st, err := store.NewRedisStore(ctx, cfg.ValkeyAddr)
	if err != nil {
		logger.Error("Kritická chyba připojení k Valkey", "error", err)
		return err
	}
	defer st.Close()

	// 3. Service + HTTP
	m := metrics.New(serviceName)
	svc := NewService(st, cfg.KeyPrefix, logger, m)

	router := httpserver.NewRouter(m)
	NewAPIHandler(svc, logger).RegisterRoutes(router)
	srv := httpserver.New(httpserver.Options{
		Port:           cfg.HTTPPort,
		AllowedOrigins: cfg.AllowedOrigins,
		AccessLog:      logOut,
	}, router, logger)

	// 4. Graceful Shutdown
	if err := httpserver.Run(ctx, srv, logger); err != nil {
		logger.Error("HTTP server selhal", "error", err)
		return err
	}
	logger.Info("Vypínám službu...")
	return nil
}
