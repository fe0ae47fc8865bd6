package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/config"
	"github.com/ojasvikumarr/LiveSensorMonitoringSystem/internal/logging"
)

const serviceName = "log-collector"

var (
	flagEnvFile string
	flagLogDir  string
)

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Sběr logů služeb z MQTT do souborů",
	Long:  "log-collector poslouchá na logs/# a každou zprávu připíše do <LOG_DIR>/<služba>.log.",
	RunE:  runService,
}

func init() {
	rootCmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "volitelný .env soubor")
	rootCmd.Flags().StringVar(&flagLogDir, "log-dir", "", "adresář pro logy (přebije LOG_DIR)")
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
	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir = flagLogDir
	}

	// 1. Vlastní logger jen na stdout, jinak by collector sbíral sám sebe.
	logger := logging.New(serviceName, cfg.LogLevel)
	logger.Info("Startuji Log Collector", "dir", cfg.LogDir)

	// 2. Příprava adresáře pro logy
	collector, err := NewCollector(cfg.LogDir, logger)
	if err != nil {
		logger.Error("Nelze vytvořit adresář pro logy", "error", err)
		return err
	}

	// 3. Připojení k MQTT
	client, err := logging.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID, 10*time.Second)
	if err != nil {
		logger.Error("MQTT Connection failed", "error", err)
		return err
	}
	defer client.Disconnect(250)

	// 4. Subscribe
	if token := client.Subscribe(cfg.LogTopic, 0, collector.HandleMessage); token.Wait() && token.Error() != nil {
		logger.Error("Subscribe failed", "error", token.Error())
		return token.Error()
	}
	logger.Info("Poslouchám logy", "topic", cfg.LogTopic)

	// 5. Wait loop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Vypínám službu...")
	return nil
}
