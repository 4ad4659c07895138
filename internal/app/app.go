package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	server "github.com/sabbivikas/mi-amore"
	servernet "github.com/sabbivikas/mi-amore/internal/net"
	"github.com/sabbivikas/mi-amore/internal/net/ws"
	"github.com/sabbivikas/mi-amore/internal/redis"
	"github.com/sabbivikas/mi-amore/internal/sim"
	"github.com/sabbivikas/mi-amore/internal/store"
	"github.com/sabbivikas/mi-amore/internal/telemetry"
	"github.com/sabbivikas/mi-amore/logging"
	loggingSinks "github.com/sabbivikas/mi-amore/logging/sinks"
)

const (
	DefaultAddr            = ":8080"
	DefaultClientDir       = "client"
	DefaultShutdownTimeout = 10 * time.Second
	redisPingTimeout       = 2 * time.Second
)

type Config struct {
	Addr        string
	TickRate    int
	NetworkRate int
	// RedisAddr enables the Redis match store; empty keeps results in memory.
	// A comma separated list connects to a Redis cluster.
	RedisAddr string
	LogJSON   bool
	// LogFile receives the json sink in append mode; empty writes to LogOutput.
	LogFile   string
	ClientDir string

	ShutdownTimeout time.Duration
	Logger          telemetry.Logger
	// Listener, when set, is served instead of listening on Addr.
	Listener net.Listener
	// LogOutput receives the console and json sinks; nil writes to stdout.
	LogOutput io.Writer
}

func DefaultConfig() Config {
	return Config{
		Addr:            DefaultAddr,
		TickRate:        sim.DefaultTickRate,
		NetworkRate:     sim.DefaultNetworkRate,
		ClientDir:       DefaultClientDir,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// ApplyEnv overrides cfg from MI_AMORE_* variables read through getenv.
// Invalid values are logged and ignored.
func ApplyEnv(cfg Config, getenv func(string) string, logger telemetry.Logger) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}

	if raw := getenv("MI_AMORE_ADDR"); raw != "" {
		cfg.Addr = raw
	}
	if raw := getenv("MI_AMORE_TICK_RATE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TickRate = value
		} else {
			logger.Printf("invalid MI_AMORE_TICK_RATE=%q: %v", raw, err)
		}
	}
	if raw := getenv("MI_AMORE_NETWORK_RATE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.NetworkRate = value
		} else {
			logger.Printf("invalid MI_AMORE_NETWORK_RATE=%q: %v", raw, err)
		}
	}
	if raw := getenv("MI_AMORE_REDIS_ADDR"); raw != "" {
		cfg.RedisAddr = raw
	}
	if raw := getenv("MI_AMORE_LOG_JSON"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.LogJSON = value
		} else {
			logger.Printf("invalid MI_AMORE_LOG_JSON=%q: %v", raw, err)
		}
	}
	if raw := getenv("MI_AMORE_LOG_FILE"); raw != "" {
		cfg.LogFile = raw
	}
	if raw := getenv("MI_AMORE_CLIENT_DIR"); raw != "" {
		cfg.ClientDir = raw
	}
	return cfg
}

func Run(ctx context.Context, cfg Config) error {
	def := DefaultConfig()
	if cfg.TickRate <= 0 {
		cfg.TickRate = def.TickRate
	}
	if cfg.NetworkRate <= 0 {
		cfg.NetworkRate = def.NetworkRate
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}

	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}
	stdLogger := log.New(logWriter{telemetryLogger}, "", 0)

	out := cfg.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logConfig := logging.DefaultConfig()
	if cfg.LogJSON {
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, logging.SinkJSON)
		logConfig.JSON.FilePath = cfg.LogFile
	}
	sinks, closeFiles, err := buildSinks(logConfig, out)
	if err != nil {
		return err
	}
	defer closeFiles()
	router := logging.NewRouter(logging.ClockFunc(time.Now), logConfig, sinks)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	recorder, closeRecorder := openRecorder(ctx, cfg.RedisAddr, telemetryLogger)
	defer closeRecorder()

	metrics := telemetry.NewCounters()
	hubCfg := server.DefaultHubConfig()
	hubCfg.Logger = telemetryLogger
	hubCfg.Publisher = router
	hubCfg.Metrics = metrics
	hubCfg.Recorder = recorder
	hubCfg.TickRate = cfg.TickRate
	hubCfg.NetworkRate = cfg.NetworkRate
	hub := server.NewHubWithConfig(hubCfg)

	loop := sim.DefaultLoopConfig()
	loop.TickRate = cfg.TickRate
	loop.FixedStep = time.Second / time.Duration(cfg.TickRate)
	scheduler := sim.NewScheduler(hub, loop, nil, sim.LoopHooks{
		AfterFrame: func(result sim.FrameResult) {
			metrics.RecordTick(result.Duration)
		},
	}, telemetryLogger)

	simCtx, stopSim := context.WithCancel(ctx)
	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		scheduler.Run(simCtx)
	}()
	defer func() {
		stopSim()
		<-simDone
	}()

	sessions := ws.NewHandler(hub, ws.HandlerConfig{Logger: stdLogger, Metrics: metrics})
	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir: cfg.ClientDir,
		Logger:    stdLogger,
		Metrics:   metrics,
		Router:    router,
		Sessions:  sessions,
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	listener := cfg.Listener
	if listener == nil {
		listener, err = net.Listen("tcp", cfg.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
		}
	}
	telemetryLogger.Printf("server listening on %s (tick %d Hz, network %d Hz)", listener.Addr(), cfg.TickRate, cfg.NetworkRate)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	telemetryLogger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetryLogger.Printf("http shutdown: %v", err)
	}
	stopSim()
	<-simDone
	// Websocket connections are hijacked, so srv.Shutdown leaves them open.
	hub.Shutdown()
	if err := sessions.Wait(shutdownCtx); err != nil {
		telemetryLogger.Printf("websocket sessions still open: %v", err)
	}
	if err := hub.Close(shutdownCtx); err != nil {
		telemetryLogger.Printf("pending match records abandoned: %v", err)
	}
	return nil
}

func buildSinks(cfg logging.Config, out io.Writer) ([]logging.NamedSink, func(), error) {
	var sinks []logging.NamedSink
	closeFiles := func() {}
	if cfg.HasSink(logging.SinkConsole) {
		sinks = append(sinks, logging.NamedSink{Name: logging.SinkConsole, Sink: loggingSinks.NewConsole(out)})
	}
	if cfg.HasSink(logging.SinkJSON) {
		w := out
		if cfg.JSON.FilePath != "" {
			f, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to open json log %s: %w", cfg.JSON.FilePath, err)
			}
			w = f
			closeFiles = func() { _ = f.Close() }
		}
		sinks = append(sinks, logging.NamedSink{Name: logging.SinkJSON, Sink: loggingSinks.NewJSON(w, cfg.JSON.FlushInterval)})
	}
	return sinks, closeFiles, nil
}

// redisEndpoints splits a comma separated address list. More than one
// endpoint selects cluster mode.
func redisEndpoints(addr string) []string {
	var endpoints []string
	for _, part := range strings.Split(addr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			endpoints = append(endpoints, part)
		}
	}
	return endpoints
}

// openRecorder connects the Redis store, falling back to memory when Redis
// is not configured or unreachable.
func openRecorder(ctx context.Context, addr string, logger telemetry.Logger) (store.Recorder, func()) {
	memory := func() (store.Recorder, func()) {
		return store.NewMemory(store.MaxRecentLimit), func() {}
	}
	endpoints := redisEndpoints(addr)
	if len(endpoints) == 0 {
		return memory()
	}
	opts := &redis.Options{DialTimeout: redisPingTimeout}
	var client redis.Client
	var err error
	if len(endpoints) > 1 {
		client, err = redis.NewClusterClient(endpoints, opts)
	} else {
		client, err = redis.NewClient(endpoints[0], opts)
	}
	if err != nil {
		logger.Printf("redis disabled: %v", err)
		return memory()
	}
	if err := redis.Ping(ctx, client, redisPingTimeout); err != nil {
		logger.Printf("redis at %s unreachable, keeping match results in memory: %v", addr, err)
		client.Close()
		return memory()
	}
	recorder, err := store.NewRedis(&store.RedisConfig{Client: client})
	if err != nil {
		logger.Printf("redis store disabled: %v", err)
		client.Close()
		return memory()
	}
	logger.Printf("recording matches to redis at %s", addr)
	return recorder, func() {
		if err := client.Close(); err != nil {
			logger.Printf("failed to close redis client: %v", err)
		}
	}
}

// logWriter adapts a telemetry.Logger into an io.Writer for *log.Logger
// consumers.
type logWriter struct {
	logger telemetry.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.logger.Printf("%s", msg)
	return len(p), nil
}
