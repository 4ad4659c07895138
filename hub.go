// Package server hosts every room of the game. The Hub owns connection
// sessions, the room registry and the shared id counters, and is stepped by
// the simulation scheduler.
package server

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sabbivikas/mi-amore/internal/errors"
	"github.com/sabbivikas/mi-amore/internal/match"
	"github.com/sabbivikas/mi-amore/internal/net/proto"
	"github.com/sabbivikas/mi-amore/internal/pkg/idgen"
	"github.com/sabbivikas/mi-amore/internal/sim"
	"github.com/sabbivikas/mi-amore/internal/state"
	"github.com/sabbivikas/mi-amore/internal/store"
	"github.com/sabbivikas/mi-amore/internal/telemetry"
	"github.com/sabbivikas/mi-amore/internal/world"
	"github.com/sabbivikas/mi-amore/logging"
	"github.com/sabbivikas/mi-amore/logging/lifecycle"
)

const (
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	RoomCodeLength   = 5

	DefaultQueueSize     = 64
	DefaultRecordTimeout = 5 * time.Second

	maxCodeAttempts = 64
	seedSalt        = 133742

	msgRoomNotFound = "Room not found."
	msgNoRoomCode   = "Could not allocate a room code. Try again."
)

// HubConfig wires the hub's collaborators. Zero values fall back to the
// defaults used in production.
type HubConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	Metrics   *telemetry.Counters
	// Recorder persists finished matches; nil disables recording.
	Recorder   store.Recorder
	MatchIDs   idgen.Generator
	SessionIDs idgen.Generator
	Clock      logging.Clock

	// RoomCodes proposes candidate room codes; collisions are retried.
	RoomCodes func() string
	Seeds     func() uint32
	// Terrain builds the height field for a new room; nil uses the seeded
	// procedural terrain.
	Terrain func(seed uint32) world.HeightField

	TickRate      int
	NetworkRate   int
	QueueSize     int
	RecordTimeout time.Duration
}

// DefaultHubConfig returns the production defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		TickRate:      sim.DefaultTickRate,
		NetworkRate:   sim.DefaultNetworkRate,
		QueueSize:     DefaultQueueSize,
		RecordTimeout: DefaultRecordTimeout,
	}
}

// Subscriber is one connected client. Encoded messages are queued on a
// buffered channel drained by the connection's writer; the channel is closed
// when the player disconnects.
type Subscriber struct {
	SessionID string
	PlayerID  int

	codec   proto.Codec
	queue   chan []byte
	closed  bool
	dropped atomic.Uint64
}

func (s *Subscriber) Outbound() <-chan []byte { return s.queue }
func (s *Subscriber) Codec() proto.Codec      { return s.codec }

// Dropped counts messages discarded because the queue was full.
func (s *Subscriber) Dropped() uint64 { return s.dropped.Load() }

// counters hands out process-wide ids. Access is serialized by the hub mutex.
type counters struct {
	player int
	zombie int
	heart  int
}

func (c *counters) NextZombieID() int {
	c.zombie++
	return c.zombie
}

func (c *counters) NextHeartID() int {
	c.heart++
	return c.heart
}

// Hub owns all rooms and subscribers. One mutex serializes every mutation so
// rooms observe a single-threaded world.
type Hub struct {
	mu sync.Mutex

	cfg        HubConfig
	logger     telemetry.Logger
	pub        logging.Publisher
	metrics    *telemetry.Counters
	recorder   store.Recorder
	matchIDs   idgen.Generator
	sessionIDs idgen.Generator
	clock      logging.Clock
	rng        *rand.Rand

	ids         counters
	rooms       map[string]*match.Room
	roomOf      map[int]string
	subscribers map[int]*Subscriber
	simNow      time.Time

	// draining is set by Shutdown; closed by Close. Both are guarded by mu.
	draining bool
	closed   bool
	records  sync.WaitGroup
}

// NewHub creates a hub with the default configuration.
func NewHub() *Hub {
	return NewHubWithConfig(DefaultHubConfig())
}

// NewHubWithConfig creates a hub with cfg, filling unset fields.
func NewHubWithConfig(cfg HubConfig) *Hub {
	def := DefaultHubConfig()
	if cfg.TickRate <= 0 {
		cfg.TickRate = def.TickRate
	}
	if cfg.NetworkRate <= 0 {
		cfg.NetworkRate = def.NetworkRate
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = def.RecordTimeout
	}

	h := &Hub{
		cfg:         cfg,
		logger:      cfg.Logger,
		pub:         cfg.Publisher,
		metrics:     cfg.Metrics,
		recorder:    cfg.Recorder,
		matchIDs:    cfg.MatchIDs,
		sessionIDs:  cfg.SessionIDs,
		clock:       cfg.Clock,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		rooms:       make(map[string]*match.Room),
		roomOf:      make(map[int]string),
		subscribers: make(map[int]*Subscriber),
	}
	h.logger = telemetry.WithComponent(h.logger, "hub")
	if h.pub == nil {
		h.pub = logging.NopPublisher()
	}
	if h.matchIDs == nil {
		h.matchIDs = idgen.NewUUID("match")
	}
	if h.sessionIDs == nil {
		h.sessionIDs = idgen.NewUUID("")
	}
	if h.clock == nil {
		h.clock = logging.ClockFunc(time.Now)
	}
	if h.cfg.RoomCodes == nil {
		h.cfg.RoomCodes = h.randomRoomCode
	}
	if h.cfg.Seeds == nil {
		h.cfg.Seeds = h.randomSeed
	}
	return h
}

func (h *Hub) randomRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		code[i] = RoomCodeAlphabet[h.rng.Intn(len(RoomCodeAlphabet))]
	}
	return string(code)
}

func (h *Hub) randomSeed() uint32 {
	return uint32(h.rng.Int31n(math.MaxInt32) ^ seedSalt)
}

// Connect registers a new player session and queues its welcome message.
func (h *Hub) Connect(codec proto.Codec) *Subscriber {
	if codec == nil {
		codec = proto.JSON
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ids.player++
	sub := &Subscriber{
		SessionID: h.sessionIDs.Generate(),
		PlayerID:  h.ids.player,
		codec:     codec,
		queue:     make(chan []byte, h.cfg.QueueSize),
	}
	if h.draining {
		sub.closed = true
		close(sub.queue)
		return sub
	}
	h.subscribers[sub.PlayerID] = sub
	h.sendLocked(sub.PlayerID, &proto.Welcome{PlayerID: sub.PlayerID})
	return sub
}

// Disconnect removes the player from its room, deletes the room when it
// empties and closes the subscriber's queue.
func (h *Hub) Disconnect(playerID int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(playerID, h.nowLocked())
}

// Shutdown disconnects every player so running matches end as abandoned and
// every writer sees its queue close. Later connections are closed at once.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.draining {
		return
	}
	h.draining = true

	ids := make([]int, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	now := h.nowLocked()
	for _, id := range ids {
		h.dropLocked(id, now)
	}
	h.logger.Printf("shut down %d sessions", len(ids))
}

func (h *Hub) dropLocked(playerID int, now time.Time) {
	h.leaveLocked(playerID, now)
	sub, ok := h.subscribers[playerID]
	if !ok {
		return
	}
	delete(h.subscribers, playerID)
	sub.closed = true
	close(sub.queue)
}

// Dispatch applies one decoded client message. Lobby failures are reported to
// the player as an error message and returned; messages from players without
// a room are ignored.
func (h *Hub) Dispatch(playerID int, msg proto.ClientMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[playerID]; !ok {
		return nil
	}
	now := h.nowLocked()

	var err error
	switch m := msg.(type) {
	case proto.CreateRoom:
		err = h.createRoomLocked(playerID, state.ParseCharacter(m.Character), now)
	case proto.JoinRoom:
		err = h.joinRoomLocked(playerID, string(m.Code), state.ParseCharacter(m.Character), now)
	default:
		h.roomMessageLocked(playerID, msg, now)
	}
	if err != nil {
		h.sendLocked(playerID, &proto.Error{Message: errors.GetMessage(err)})
	}
	return err
}

func (h *Hub) roomMessageLocked(playerID int, msg proto.ClientMessage, now time.Time) {
	room := h.roomForLocked(playerID)
	if room == nil {
		return
	}
	switch m := msg.(type) {
	case proto.Input:
		room.SetInput(playerID, m.Input)
	case proto.PlayerDied:
		room.PlayerDied(playerID, m.Reason, now)
	case proto.GirlAttack:
		room.GirlAttack(playerID, m.Step, now)
	case proto.BoyAttack:
		room.BoyAttack(playerID, m.AttackType, now)
	case proto.BoyDance:
		room.BoyDance(playerID, m.DurationMs, now)
	case proto.ProposalResponse:
		room.ProposalResponse(playerID, m.Accept, now)
	}
}

func (h *Hub) createRoomLocked(playerID int, character state.Character, now time.Time) error {
	code, err := h.allocateCodeLocked()
	if err != nil {
		return err
	}
	seed := h.cfg.Seeds()
	opts := match.Options{
		Code:        code,
		Seed:        seed,
		IDs:         &h.ids,
		Messenger:   hubMessenger{h},
		Publisher:   h.pub,
		NetworkRate: h.cfg.NetworkRate,
		OnEnded:     h.recordLocked,
	}
	if h.cfg.Terrain != nil {
		opts.Field = h.cfg.Terrain(seed)
	}
	room := match.NewRoom(opts)
	h.rooms[code] = room
	lifecycle.RoomCreated(context.Background(), logging.WithRoom(h.pub, code), logging.RoomRef(code), lifecycle.RoomCreatedPayload{WorldSeed: seed})

	_, hadRoom := h.roomOf[playerID]
	if err := room.Attach(playerID, character, now); err != nil {
		delete(h.rooms, code)
		return err
	}
	if hadRoom {
		h.leaveLocked(playerID, now)
	}
	h.roomOf[playerID] = code
	h.logger.Printf("room %s created by player %d", code, playerID)
	return nil
}

func (h *Hub) joinRoomLocked(playerID int, rawCode string, character state.Character, now time.Time) error {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	current, hadRoom := h.roomOf[playerID]
	if hadRoom && current == code {
		return nil
	}
	room, ok := h.rooms[code]
	if !ok {
		return errors.NotFound(msgRoomNotFound)
	}
	if err := room.Attach(playerID, character, now); err != nil {
		return err
	}
	if hadRoom {
		h.leaveLocked(playerID, now)
	}
	h.roomOf[playerID] = code
	return nil
}

func (h *Hub) allocateCodeLocked() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := strings.ToUpper(h.cfg.RoomCodes())
		if _, taken := h.rooms[code]; !taken && code != "" {
			return code, nil
		}
	}
	return "", errors.ResourceExhausted(msgNoRoomCode)
}

// leaveLocked detaches the player from its current room, if any.
func (h *Hub) leaveLocked(playerID int, now time.Time) {
	code, ok := h.roomOf[playerID]
	if !ok {
		return
	}
	delete(h.roomOf, playerID)
	room, ok := h.rooms[code]
	if !ok {
		return
	}
	if room.Remove(playerID, now) == 0 {
		delete(h.rooms, code)
	}
}

func (h *Hub) roomForLocked(playerID int) *match.Room {
	code, ok := h.roomOf[playerID]
	if !ok {
		return nil
	}
	return h.rooms[code]
}

func (h *Hub) nowLocked() time.Time {
	if h.simNow.IsZero() {
		return h.clock.Now()
	}
	return h.simNow
}

// Step advances every room by one fixed step. A panic inside one room ends
// that room only.
func (h *Hub) Step(now time.Time, dt time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.simNow = now
	for _, code := range h.roomCodesLocked() {
		room := h.rooms[code]
		h.guardLocked(code, room, now, func() { room.Step(now, dt) })
	}
}

// Broadcast sends due state snapshots.
func (h *Hub) Broadcast(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.simNow = now
	for _, code := range h.roomCodesLocked() {
		room := h.rooms[code]
		h.guardLocked(code, room, now, func() { room.MaybeBroadcast(now) })
	}
}

var _ sim.Stepper = (*Hub)(nil)

func (h *Hub) roomCodesLocked() []string {
	codes := make([]string, 0, len(h.rooms))
	for code := range h.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (h *Hub) guardLocked(code string, room *match.Room, now time.Time, fn func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			h.failRoomLocked(code, room, now, fmt.Errorf("%v", recovered))
		}
	}()
	fn()
}

func (h *Hub) failRoomLocked(code string, room *match.Room, now time.Time, cause error) {
	h.logger.Printf("room %s failed: %v", code, cause)
	h.metrics.Add(telemetry.MetricRoomsFailed, 1)
	lifecycle.RoomFailed(context.Background(), logging.WithRoom(h.pub, code), 0, logging.RoomRef(code), lifecycle.RoomFailedPayload{Error: cause.Error()})
	defer func() {
		if recovered := recover(); recovered != nil {
			h.logger.Printf("room %s failed while stopping: %v", code, recovered)
		}
	}()
	room.Fail(now)
}

// hubMessenger lets rooms deliver through the hub while its lock is held.
type hubMessenger struct {
	h *Hub
}

func (m hubMessenger) Send(playerID int, msg proto.ServerMessage) {
	m.h.sendLocked(playerID, msg)
}

// sendLocked encodes msg for the player's codec and queues it without
// blocking. A full queue drops the message.
func (h *Hub) sendLocked(playerID int, msg proto.ServerMessage) {
	sub, ok := h.subscribers[playerID]
	if !ok || sub.closed {
		return
	}
	data, err := proto.Encode(sub.codec, msg)
	if err != nil {
		h.logger.Printf("failed to encode %s for player %d: %v", msg.MessageType(), playerID, err)
		return
	}
	select {
	case sub.queue <- data:
		h.metrics.Add(telemetry.MetricMessagesSent, 1)
		h.metrics.Add(telemetry.MetricBytesSent, uint64(len(data)))
	default:
		sub.dropped.Add(1)
		h.metrics.Add(telemetry.MetricMessagesDropped, 1)
	}
}

// recordLocked persists a finished match off the simulation goroutine.
func (h *Hub) recordLocked(summary match.Summary) {
	if h.recorder == nil {
		return
	}
	if h.closed {
		h.logger.Printf("hub closed, dropping %s result for room %s", summary.Outcome, summary.Code)
		return
	}
	result := store.Result{
		MatchID:         h.matchIDs.Generate(),
		RoomCode:        summary.Code,
		WorldSeed:       summary.WorldSeed,
		StartedAt:       summary.StartedAt,
		EndedAt:         summary.EndedAt,
		Duration:        summary.Timer,
		Accepted:        summary.Accepted,
		Outcome:         string(summary.Outcome),
		HeartsCollected: summary.HeartsCollected,
		Difficulty:      summary.Difficulty,
	}
	for _, v := range summary.Votes {
		result.Votes = append(result.Votes, store.Vote{PlayerID: v.ID, Vote: v.Vote})
	}

	h.records.Add(1)
	go func() {
		defer h.records.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.RecordTimeout)
		defer cancel()
		if err := h.recorder.Record(ctx, result); err != nil {
			h.metrics.Add(telemetry.MetricRecordFailures, 1)
			h.logger.Printf("failed to record match %s in room %s: %v", result.MatchID, result.RoomCode, err)
			return
		}
		h.metrics.Add(telemetry.MetricMatchesRecorded, 1)
	}()
}

// RecentMatches lists recorded matches, newest first.
func (h *Hub) RecentMatches(ctx context.Context, limit int) ([]store.Result, error) {
	if h.recorder == nil {
		return []store.Result{}, nil
	}
	return h.recorder.Recent(ctx, limit)
}

// Close stops accepting match records and waits for in-flight ones until ctx
// is done. Call Shutdown first so running matches are recorded.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.records.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RoomDiagnostics describes one room for the diagnostics endpoint.
type RoomDiagnostics struct {
	Code            string `json:"code"`
	Players         int    `json:"players"`
	Started         bool   `json:"started"`
	Ended           bool   `json:"ended"`
	TimerSec        int64  `json:"timerSec"`
	Zombies         int    `json:"zombies"`
	HeartsCollected int    `json:"heartsCollected"`
}

// Diagnostics is a point-in-time view of the hub.
type Diagnostics struct {
	Connections   int               `json:"connections"`
	Players       int               `json:"players"`
	ActiveMatches int               `json:"activeMatches"`
	TickRate      int               `json:"tickRate"`
	NetworkRate   int               `json:"networkRate"`
	Rooms         []RoomDiagnostics `json:"rooms"`
}

// DiagnosticsSnapshot copies room and session counts under the lock.
func (h *Hub) DiagnosticsSnapshot() Diagnostics {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := Diagnostics{
		Connections: len(h.subscribers),
		TickRate:    h.cfg.TickRate,
		NetworkRate: h.cfg.NetworkRate,
		Rooms:       make([]RoomDiagnostics, 0, len(h.rooms)),
	}
	for _, code := range h.roomCodesLocked() {
		room := h.rooms[code]
		out.Players += room.PlayerCount()
		if room.Simulating() {
			out.ActiveMatches++
		}
		out.Rooms = append(out.Rooms, RoomDiagnostics{
			Code:            code,
			Players:         room.PlayerCount(),
			Started:         room.Started(),
			Ended:           room.Ended(),
			TimerSec:        int64(room.Timer() / time.Second),
			Zombies:         len(room.Zombies()),
			HeartsCollected: room.HeartsCollected(),
		})
	}
	return out
}

// RoomOf reports the code of the player's room.
func (h *Hub) RoomOf(playerID int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	code, ok := h.roomOf[playerID]
	return code, ok
}
