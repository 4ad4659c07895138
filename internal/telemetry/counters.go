package telemetry

import (
	"sort"
	"sync"
	"time"
)

const (
	MetricMessagesSent    = "messages_sent"
	MetricMessagesDropped = "messages_dropped"
	MetricBytesSent       = "bytes_sent"
	MetricTicks           = "ticks"
	MetricTickMicros      = "tick_duration_us"
	MetricRoomsFailed     = "rooms_failed"
	MetricMatchesRecorded = "matches_recorded"
	MetricRecordFailures  = "match_record_failures"
	MetricMessagesInvalid = "messages_invalid"
)

// Counters is an in-process Metrics implementation read by the diagnostics
// endpoint.
type Counters struct {
	mu     sync.Mutex
	values map[string]uint64
}

func NewCounters() *Counters {
	return &Counters{values: make(map[string]uint64)}
}

func (c *Counters) Add(key string, delta uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.values[key] += delta
	c.mu.Unlock()
}

func (c *Counters) Store(key string, value uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
}

func (c *Counters) Get(key string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

// RecordTick stores the latest tick duration and counts the tick.
func (c *Counters) RecordTick(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.Add(MetricTicks, 1)
	c.Store(MetricTickMicros, uint64(d.Microseconds()))
}

// Snapshot copies every counter.
func (c *Counters) Snapshot() map[string]uint64 {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Keys lists the recorded counters in sorted order.
func (c *Counters) Keys() []string {
	snapshot := c.Snapshot()
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
