package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/bus"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/config"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/httpserver"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/logging"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/metrics"
)

var (
	flagEnvFile     string
	flagPort        string
	flagSensorCount int
	flagInterval    time.Duration
	flagAutoStart   bool
)

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Simulátor senzorů publikující do Kafky",
	Long:  "producer-service generuje teplotu a tlak pro N virtuálních senzorů a posílá je do Kafky. Simulace se ovládá přes /api/producer.",
	RunE:  runService,
}

func init() {
	rootCmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "volitelný .env soubor")
	rootCmd.Flags().StringVar(&flagPort, "port", "", "HTTP port (přebije HTTP_PORT)")
	rootCmd.Flags().IntVar(&flagSensorCount, "sensor-count", 0, "počet senzorů (přebije SENSOR_COUNT)")
	rootCmd.Flags().DurationVar(&flagInterval, "interval", 0, "interval generování (přebije SENSOR_INTERVAL)")
	rootCmd.Flags().BoolVar(&flagAutoStart, "autostart", false, "spustit simulaci hned po startu")
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
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.HTTPPort = flagPort
	}
	if flags.Changed("sensor-count") {
		cfg.SensorCount = flagSensorCount
	}
	if flags.Changed("interval") {
		cfg.SensorInterval = flagInterval
	}
	if flags.Changed("autostart") {
		cfg.AutoStart = flagAutoStart
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 1. Setup Logger
	logger, logOut, closeLogs := logging.Setup(serviceName, cfg.LogLevel, cfg.MQTTBroker)
	defer closeLogs()
	logger.Info("Startuji Producer Service",
		"brokers", cfg.KafkaBrokers, "topic", cfg.Topic,
		"sensor_count", cfg.SensorCount, "interval", cfg.SensorInterval, "autostart", cfg.AutoStart)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Katalog senzorů (volitelný)
	var locator Locator
	if cfg.PostgresURL != "" {
		dbPool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Error("Kritická chyba: Nelze se připojit k DB", "error", err)
			return err
		}
		defer dbPool.Close()

		catalog := NewCatalog(dbPool, logger)
		if err := catalog.LoadSensors(ctx); err != nil {
			// Bez katalogu se dá simulovat, senzory dostanou výchozí popis.
			logger.Warn("Katalog senzorů nenačten, používám výchozí hodnoty", "error", err)
		}
		go catalog.StartAutoRefresh(ctx, cfg.CatalogRefreshInterval)
		locator = catalog
	}

	// 3. Kafka + Engine
	publisher := bus.NewKafkaPublisher(cfg.KafkaBrokers, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Chyba při zavírání Kafka writeru", "error", err)
		}
	}()

	m := metrics.New(serviceName)
	engine := NewEngine(EngineConfig{
		Topic:       cfg.Topic,
		SensorCount: cfg.SensorCount,
		Interval:    cfg.SensorInterval,
		BaseOffset:  cfg.BaseOffset,
	}, publisher, locator, logger, m)

	if cfg.AutoStart {
		engine.Start()
	}
	// Při vypnutí služby se simulace vždy zastaví (no-op, pokud neběží).
	defer engine.Stop()

	// 4. HTTP
	router := httpserver.NewRouter(m)
	NewAPIHandler(engine, logger).RegisterRoutes(router)
	srv := httpserver.New(httpserver.Options{
		Port:           cfg.HTTPPort,
		AllowedOrigins: cfg.AllowedOrigins,
		AccessLog:      logOut,
	}, router, logger)

	// 5. Graceful Shutdown
	if err := httpserver.Run(ctx, srv, logger); err != nil {
		logger.Error("HTTP server selhal", "error", err)
		return err
	}
	logger.Info("Vypínám službu...")
	return nil
}
