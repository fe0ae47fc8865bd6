package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/bus"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/config"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/httpserver"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/logging"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/metrics"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/store"
)

var (
	flagEnvFile     string
	flagPort        string
	flagConcurrency int
)

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Kafka -> Valkey ingestion pipeline",
	Long:  "consumer-service čte měření senzorů z Kafky a drží poslední hodnotu každého senzoru ve Valkey s TTL.",
	RunE:  runService,
}

func init() {
	rootCmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "volitelný .env soubor")
	rootCmd.Flags().StringVar(&flagPort, "port", "", "HTTP port (přebije HTTP_PORT)")
	rootCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "počet kafka readerů (přebije CONSUMER_CONCURRENCY)")
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
	if cmd.Flags().Changed("port") {
		cfg.HTTPPort = flagPort
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = flagConcurrency
	}

	// 1. Setup Logger
	logger, logOut, closeLogs := logging.Setup(serviceName, cfg.LogLevel, cfg.MQTTBroker)
	defer closeLogs()
	logger.Info("Startuji Consumer Service",
		"brokers", cfg.KafkaBrokers, "topic", cfg.Topic, "group", cfg.GroupID,
		"concurrency", cfg.Concurrency, "valkey", cfg.ValkeyAddr, "ttl", cfg.ReadingTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Úložiště
	st, err := store.NewRedisStore(ctx, cfg.ValkeyAddr)
	if err != nil {
		logger.Error("Kritická chyba připojení k Valkey", "error", err)
		return err
	}
	defer st.Close()
	logger.Info("Valkey připojeno")

	// 3. Pipeline + Kafka consumer
	m := metrics.New(serviceName)
	pipeline := NewPipeline(st, cfg.KeyPrefix, cfg.ReadingTTL, logger, m)

	consumer := bus.NewKafkaConsumer(bus.ConsumerConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		Concurrency: cfg.Concurrency,
	}, pipeline.HandleMessage, logger)
	consumer.Run(ctx)
	logger.Info("Poslouchám na topicu", "topic", cfg.Topic)

	// 4. HTTP
	router := httpserver.NewRouter(m)
	NewAPIHandler(pipeline, logger).RegisterRoutes(router)
	srv := httpserver.New(httpserver.Options{
		Port:           cfg.HTTPPort,
		AllowedOrigins: cfg.AllowedOrigins,
		AccessLog:      logOut,
	}, router, logger)

	// 5. Graceful Shutdown
	if err := httpserver.Run(ctx, srv, logger); err != nil {
		logger.Error("HTTP server selhal", "error", err)
		stop()
		consumer.Wait()
		return err
	}

	logger.Info("Vypínám službu...")
	consumer.Wait()
	logger.Info("Consumer zastaven", "messages_processed", pipeline.ProcessedCount())
	return nil
}
