package telemetry

import (
	"bytes"
	"log"
	"testing"
	"time"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WrapLogger(log.New(&buf, "", 0))
		logger.Printf("room %s started", "ABCDE")
		if got := buf.String(); got != "room ABCDE started\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
	})

	t.Run("nil func", func(t *testing.T) {
		var fn LoggerFunc
		fn.Printf("ignored")
	})
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(WrapLogger(log.New(&buf, "", 0)), "hub")
	logger.Printf("room %s failed: %d%%", "ABCDE", 100)
	if got := buf.String(); got != "[hub] room ABCDE failed: 100%\n" {
		t.Fatalf("unexpected log output: %q", got)
	}

	WithComponent(nil, "sim").Printf("ignored")
}

func TestCounters(t *testing.T) {
	counters := NewCounters()
	var metrics Metrics = counters

	metrics.Add(MetricMessagesSent, 2)
	metrics.Store(MetricMessagesSent, 5)
	metrics.Add(MetricMessagesSent, 3)
	counters.RecordTick(1500 * time.Microsecond)

	if got := counters.Get(MetricMessagesSent); got != 8 {
		t.Fatalf("unexpected counter value: %d", got)
	}
	snapshot := counters.Snapshot()
	if snapshot[MetricTicks] != 1 || snapshot[MetricTickMicros] != 1500 {
		t.Fatalf("unexpected tick metrics: %v", snapshot)
	}
	keys := counters.Keys()
	if len(keys) != 3 || keys[0] != MetricMessagesSent {
		t.Fatalf("unexpected keys: %v", keys)
	}

	var nilCounters *Counters
	nilCounters.Add("ignored", 1)
	if nilCounters.Snapshot() != nil {
		t.Fatalf("expected nil snapshot")
	}
}
