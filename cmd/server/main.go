package main

import (
	"context"
	"fmt"
	"ipk-chat/infrastructure/tcp"
	"ipk-chat/internal"
	"ipk-chat/moderation"
	"ipk-chat/observability"
	"ipk-chat/runtime"
	"ipk-chat/runtime/workers"
	"ipk-chat/services"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

var version = "dev"

type options struct {
	host     string
	port     int
	logLevel string
	envFile  string
}

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run parses the command line and starts the server. Command line errors are
// configuration errors.
func run(args []string) (int, error) {
	var opts options
	code := exitOK

	rootCmd := &cobra.Command{
		Use:           "ipk-chat-server",
		Short:         "Line oriented TCP chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			code, err = serve(cmd, opts)
			return err
		},
	}
	rootCmd.Flags().StringVar(&opts.host, "host", "", "listen host, overrides CHAT_HOST")
	rootCmd.Flags().IntVar(&opts.port, "port", 0, "listen port, overrides CHAT_PORT")
	rootCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR, overrides LOG_LEVEL")
	rootCmd.Flags().StringVar(&opts.envFile, "env-file", "", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("ipk-chat-server", version)
		},
	})
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		if code == exitOK {
			code = exitConfig
		}
		return code, err
	}
	return code, nil
}

func serve(cmd *cobra.Command, opts options) (int, error) {
	// 1. Configuration & Logger
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			return exitConfig, fmt.Errorf("env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}
	config, err := internal.LoadFromEnviron()
	if err != nil {
		return exitConfig, err
	}
	if cmd.Flags().Changed("host") {
		config.Host = opts.host
	}
	if cmd.Flags().Changed("port") {
		config.Port = opts.port
	}
	if cmd.Flags().Changed("log-level") {
		config.LogLevel = opts.logLevel
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Content policy
	policy, lists, err := moderation.NewPolicyFromFS(moderation.DefaultWords, config.BlockedWordsOverride(), config.SegmentWordsOverride())
	if err != nil {
		return exitConfig, fmt.Errorf("content policy: %w", err)
	}
	log.Info("Content policy loaded", "blocked", len(lists.Blocked), "triggers", len(lists.Triggers))

	// 3. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	// 4. Chat core
	registry := runtime.NewRoomRegistry()
	broadcaster := runtime.NewBroadcaster(log, registry)
	chat := services.NewChatService(log, registry, broadcaster, metrics, policy, services.ChatSettings{
		SharedSecret:      config.SharedSecret,
		DefaultDelivery:   config.DefaultDelivery(),
		TriggeredDelivery: config.TriggeredDelivery(),
	})
	server := tcp.NewServer(tcp.Config{
		Address:         config.Address(),
		ShutdownTimeout: config.ShutdownTimeout,
	}, log, tcp.NewHandler(log, chat, config.MaxFrameSize))
	if err := server.Listen(); err != nil {
		return exitRuntime, err
	}

	// 5. Supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(server)
	if config.MetricsAddress != "" {
		sup.Add(workers.NewMetricsServerWorker(log, config.MetricsAddress, reg))
	}
	if config.ReportInterval > 0 {
		sup.Add(workers.NewReporterWorker(log, registry, config.ReportInterval))
	}

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting chat server", "address", config.Address(), "metrics", config.MetricsAddress, "version", version)
	sup.Run(ctx)
	log.Info("Program stopped cleanly")
	return exitOK, nil
}
