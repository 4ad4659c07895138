package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sabbivikas/mi-amore/internal/app"
	"github.com/sabbivikas/mi-amore/internal/telemetry"
)

var serveFlags struct {
	addr        string
	tickRate    int
	networkRate int
	redisAddr   string
	logJSON     bool
	logFile     string
	clientDir   string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the game server",
	Long:  `Start the HTTP and WebSocket server. MI_AMORE_* environment variables set defaults; flags override them.`,
	RunE:  runServe,
}

func init() {
	def := app.DefaultConfig()
	flags := serveCmd.Flags()
	flags.StringVar(&serveFlags.addr, "addr", def.Addr, "listen address")
	flags.IntVar(&serveFlags.tickRate, "tick-rate", def.TickRate, "simulation steps per second")
	flags.IntVar(&serveFlags.networkRate, "network-rate", def.NetworkRate, "state broadcasts per second")
	flags.StringVar(&serveFlags.redisAddr, "redis", "", "redis address for match results (memory when empty)")
	flags.BoolVar(&serveFlags.logJSON, "log-json", false, "also emit lifecycle events as JSON lines")
	flags.StringVar(&serveFlags.logFile, "log-file", "", "file for the JSON event log (stdout when empty)")
	flags.StringVar(&serveFlags.clientDir, "client-dir", def.ClientDir, "directory of static client files")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := telemetry.WrapLogger(log.Default())
	cfg := app.ApplyEnv(app.DefaultConfig(), os.Getenv, logger)
	cfg.Logger = logger

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = serveFlags.addr
	}
	if flags.Changed("tick-rate") {
		cfg.TickRate = serveFlags.tickRate
	}
	if flags.Changed("network-rate") {
		cfg.NetworkRate = serveFlags.networkRate
	}
	if flags.Changed("redis") {
		cfg.RedisAddr = serveFlags.redisAddr
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = serveFlags.logJSON
	}
	if flags.Changed("log-file") {
		cfg.LogFile = serveFlags.logFile
	}
	if flags.Changed("client-dir") {
		cfg.ClientDir = serveFlags.clientDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx, cfg)
}
