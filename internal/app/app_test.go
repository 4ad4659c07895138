package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabbivikas/mi-amore/internal/store"
	"github.com/sabbivikas/mi-amore/internal/telemetry"
)

type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureLogger) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func (c *captureLogger) contains(substr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range c.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

var _ telemetry.Logger = (*captureLogger)(nil)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestApplyEnvOverrides(t *testing.T) {
	logger := &captureLogger{}
	cfg := ApplyEnv(DefaultConfig(), envMap(map[string]string{
		"MI_AMORE_ADDR":         ":9000",
		"MI_AMORE_TICK_RATE":    "30",
		"MI_AMORE_NETWORK_RATE": "10",
		"MI_AMORE_REDIS_ADDR":   "localhost:6379",
		"MI_AMORE_LOG_JSON":     "true",
		"MI_AMORE_LOG_FILE":     "/tmp/events.jsonl",
		"MI_AMORE_CLIENT_DIR":   "/srv/client",
	}), logger)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 30, cfg.TickRate)
	assert.Equal(t, 10, cfg.NetworkRate)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "/tmp/events.jsonl", cfg.LogFile)
	assert.Equal(t, "/srv/client", cfg.ClientDir)
	assert.Empty(t, logger.lines)
}

func TestApplyEnvKeepsDefaultsOnInvalidValues(t *testing.T) {
	logger := &captureLogger{}
	cfg := ApplyEnv(DefaultConfig(), envMap(map[string]string{
		"MI_AMORE_TICK_RATE":    "fast",
		"MI_AMORE_NETWORK_RATE": "-4",
		"MI_AMORE_LOG_JSON":     "maybe",
	}), logger)

	def := DefaultConfig()
	assert.Equal(t, def.TickRate, cfg.TickRate)
	assert.Equal(t, def.NetworkRate, cfg.NetworkRate)
	assert.False(t, cfg.LogJSON)
	assert.True(t, logger.contains(`invalid MI_AMORE_TICK_RATE="fast"`))
	assert.True(t, logger.contains(`invalid MI_AMORE_NETWORK_RATE="-4"`))
	assert.True(t, logger.contains(`invalid MI_AMORE_LOG_JSON="maybe"`))
}

// start runs the app on an ephemeral port and returns its base URL and a stop
// function that waits for Run to return.
func start(t *testing.T, cfg Config) (string, func() error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg.Listener = ln
	cfg.LogOutput = io.Discard
	cfg.ShutdownTimeout = 2 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	var once sync.Once
	var runErr error
	stop := func() error {
		once.Do(func() {
			cancel()
			select {
			case runErr = <-done:
			case <-time.After(5 * time.Second):
				runErr = fmt.Errorf("app did not shut down")
			}
		})
		return runErr
	}
	t.Cleanup(func() { _ = stop() })
	return "http://" + ln.Addr().String(), stop
}

func TestRunServesAndShutsDown(t *testing.T) {
	logger := &captureLogger{}
	base, stop := start(t, Config{Logger: logger, ClientDir: t.TempDir()})

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", strings.TrimSpace(string(body)))

	require.NoError(t, stop())
	assert.True(t, logger.contains("shutting down"))

	_, err = http.Get(base + "/health")
	assert.Error(t, err)
}

func TestRunFallsBackToMemoryWhenRedisIsDown(t *testing.T) {
	logger := &captureLogger{}
	base, stop := start(t, Config{Logger: logger, RedisAddr: "127.0.0.1:1"})

	resp, err := http.Get(base + "/matches/recent")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, logger.contains("unreachable, keeping match results in memory"))
	require.NoError(t, stop())
}

func TestRunRecordsToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := &captureLogger{}
	base, stop := start(t, Config{Logger: logger, RedisAddr: mr.Addr(), TickRate: 30})

	resp, err := http.Get(base + "/diagnostics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var payload struct {
		Hub struct {
			TickRate int `json:"tickRate"`
		} `json:"hub"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 30, payload.Hub.TickRate)
	assert.True(t, logger.contains("recording matches to redis"))
	require.NoError(t, stop())
}

func TestRunWritesJSONLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	_, stop := start(t, Config{Logger: &captureLogger{}, LogJSON: true, LogFile: path})
	require.NoError(t, stop())
	assert.FileExists(t, path)
}

func TestRunRejectsUnwritableLogFile(t *testing.T) {
	cfg := Config{
		Logger:    &captureLogger{},
		LogJSON:   true,
		LogFile:   filepath.Join(t.TempDir(), "missing", "events.jsonl"),
		LogOutput: io.Discard,
	}
	err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open json log")
}

func TestRedisEndpoints(t *testing.T) {
	assert.Empty(t, redisEndpoints(""))
	assert.Empty(t, redisEndpoints(" , "))
	assert.Equal(t, []string{"localhost:6379"}, redisEndpoints(" localhost:6379 "))
	assert.Equal(t, []string{"a:7000", "b:7001", "c:7002"}, redisEndpoints("a:7000, b:7001,,c:7002"))
}

func TestOpenRecorderFallsBackForUnreachableCluster(t *testing.T) {
	logger := &captureLogger{}
	recorder, closeRecorder := openRecorder(context.Background(), "127.0.0.1:1,127.0.0.1:2", logger)
	defer closeRecorder()

	assert.IsType(t, &store.Memory{}, recorder)
	assert.True(t, logger.contains("unreachable, keeping match results in memory"))
}

func TestRunClosesWebsocketsOnShutdown(t *testing.T) {
	logger := &captureLogger{}
	base, stop := start(t, Config{Logger: logger})

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	if resp != nil {
		resp.Body.Close()
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	require.NoError(t, stop())
	assert.False(t, logger.contains("websocket sessions still open"))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
