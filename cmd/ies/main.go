package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	agentrun "github.com/iamnno/IES/internal/cmd/agent"
	clientcmd "github.com/iamnno/IES/internal/cmd/client"
	serverrun "github.com/iamnno/IES/internal/cmd/server"
	logpkg "github.com/iamnno/IES/pkg/log"
)

func main() {
	// Optional .env overlay for local development; absence is fine.
	_ = godotenv.Load()

	// Respect IES_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("IES_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "ies",
		Short: "IES telemetry pipeline CLI",
		Long:  "IES is a single-binary vehicle telemetry pipeline. This CLI runs the hub server, replays agent recordings, and manages stored records.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the IES hub server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			backend, _ := cmd.Flags().GetString("store")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			switch fsyncMode {
			case "", "always", "interval", "never":
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if logLevel != "" {
				_ = os.Setenv("IES_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("IES_LOG_FORMAT", logFormat)
			}
			if err := serverrun.Run(ctx, serverrun.Options{
				ConfigPath:   configPath,
				HTTPAddr:     httpAddr,
				DataDir:      dataDir,
				StoreBackend: backend,
				Fsync:        fsyncMode,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "JSON config file (optional)")
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default :8080)")
	serverStartCmd.Flags().String("store", "", "Store backend: pebble|sqlite (default pebble)")
	serverStartCmd.Flags().String("fsync", "", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().String("log-level", os.Getenv("IES_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("IES_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// agent replay
	agentCmd := &cobra.Command{Use: "agent", Short: "Agent commands"}
	agentReplayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded sensor CSVs against a hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			accPath, _ := cmd.Flags().GetString("acc")
			gpsPath, _ := cmd.Flags().GetString("gps")
			parkingPath, _ := cmd.Flags().GetString("parking")
			hubURL, _ := cmd.Flags().GetString("hub")
			userID, _ := cmd.Flags().GetInt64("user")
			intervalMs, _ := cmd.Flags().GetInt("interval-ms")
			batchSize, _ := cmd.Flags().GetInt("batch-size")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return agentrun.Run(ctx, agentrun.Options{
				AccPath:     accPath,
				GpsPath:     gpsPath,
				ParkingPath: parkingPath,
				HubURL:      hubURL,
				UserID:      userID,
				Interval:    time.Duration(intervalMs) * time.Millisecond,
				BatchSize:   batchSize,
			}, logger)
		},
	}
	agentReplayCmd.Flags().String("acc", "data/accelerometer.csv", "Accelerometer CSV path")
	agentReplayCmd.Flags().String("gps", "data/gps.csv", "GPS CSV path")
	agentReplayCmd.Flags().String("parking", "data/parking.csv", "Parking CSV path")
	agentReplayCmd.Flags().String("hub", apiURL(), "Hub base URL")
	agentReplayCmd.Flags().Int64("user", 0, "Owner user id stamped on forwarded records (required)")
	agentReplayCmd.Flags().Int("interval-ms", 1000, "Tick interval in ms")
	agentReplayCmd.Flags().Int("batch-size", 25, "Records per forwarded batch")
	_ = agentReplayCmd.MarkFlagRequired("user")
	agentCmd.AddCommand(agentReplayCmd)
	rootCmd.AddCommand(agentCmd)

	// records commands
	rootCmd.AddCommand(clientcmd.NewRecordsCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("IES_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
