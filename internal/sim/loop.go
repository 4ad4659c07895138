// Package sim drives rooms with a fixed-timestep accumulator and gates the
// slower network broadcast cadence.
package sim

import (
	"context"
	"time"

	"github.com/sabbivikas/mi-amore/internal/telemetry"
	"github.com/sabbivikas/mi-amore/logging"
)

const (
	DefaultTickRate    = 60
	DefaultNetworkRate = 20
	DefaultMaxFrame    = 100 * time.Millisecond
	DefaultMaxSteps    = 8
)

// Stepper is advanced by the scheduler. Step runs once per fixed step with
// the simulated clock; Broadcast runs once per wall frame after the steps.
type Stepper interface {
	Step(now time.Time, dt time.Duration)
	Broadcast(now time.Time)
}

// LoopConfig tunes the scheduler.
type LoopConfig struct {
	// TickRate is how often the wall-clock ticker fires.
	TickRate int
	// FixedStep is the simulated duration of one step.
	FixedStep time.Duration
	// MaxFrame clamps the wall time credited to the accumulator per frame.
	MaxFrame time.Duration
	// MaxSteps caps the steps executed per frame.
	MaxSteps int
}

// DefaultLoopConfig steps at 60 Hz.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		TickRate:  DefaultTickRate,
		FixedStep: time.Second / DefaultTickRate,
		MaxFrame:  DefaultMaxFrame,
		MaxSteps:  DefaultMaxSteps,
	}
}

func (c LoopConfig) normalized() LoopConfig {
	def := DefaultLoopConfig()
	if c.TickRate <= 0 {
		c.TickRate = def.TickRate
	}
	if c.FixedStep <= 0 {
		c.FixedStep = def.FixedStep
	}
	if c.MaxFrame <= 0 {
		c.MaxFrame = def.MaxFrame
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = def.MaxSteps
	}
	return c
}

// FrameResult describes one wall-clock frame.
type FrameResult struct {
	Steps   int
	Clamped bool
	SimNow  time.Time
	// Backlog is the accumulated time left unsimulated after the frame.
	Backlog  time.Duration
	Duration time.Duration
}

// LoopHooks observe the scheduler.
type LoopHooks struct {
	AfterFrame func(FrameResult)
}

// Scheduler accumulates wall time and converts it into fixed steps. The
// simulated clock advances by exactly FixedStep per step, so simulation
// behaviour is independent of ticker jitter.
type Scheduler struct {
	stepper Stepper
	config  LoopConfig
	clock   logging.Clock
	hooks   LoopHooks
	logger  telemetry.Logger

	lastWall    time.Time
	simNow      time.Time
	accumulator time.Duration
	started     bool
}

func NewScheduler(stepper Stepper, cfg LoopConfig, clock logging.Clock, hooks LoopHooks, logger telemetry.Logger) *Scheduler {
	if clock == nil {
		clock = logging.ClockFunc(time.Now)
	}
	return &Scheduler{
		stepper: stepper,
		config:  cfg.normalized(),
		clock:   clock,
		hooks:   hooks,
		logger:  telemetry.WithComponent(logger, "sim"),
	}
}

func (s *Scheduler) Config() LoopConfig {
	return s.config
}

// SimNow is the simulated clock after the last frame.
func (s *Scheduler) SimNow() time.Time {
	return s.simNow
}

// Frame credits the wall time elapsed since the previous frame and runs the
// resulting fixed steps followed by one broadcast pass.
func (s *Scheduler) Frame(wall time.Time) FrameResult {
	if !s.started {
		s.started = true
		s.lastWall = wall
		s.simNow = wall
	}

	elapsed := wall.Sub(s.lastWall)
	s.lastWall = wall
	result := FrameResult{}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > s.config.MaxFrame {
		elapsed = s.config.MaxFrame
		result.Clamped = true
	}
	s.accumulator += elapsed

	for s.accumulator >= s.config.FixedStep && result.Steps < s.config.MaxSteps {
		s.simNow = s.simNow.Add(s.config.FixedStep)
		s.stepper.Step(s.simNow, s.config.FixedStep)
		s.accumulator -= s.config.FixedStep
		result.Steps++
	}
	s.stepper.Broadcast(s.simNow)

	result.SimNow = s.simNow
	result.Backlog = s.accumulator
	return result
}

// Run drives Frame from a ticker until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.config.TickRate))
	defer ticker.Stop()

	s.Frame(s.clock.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := s.clock.Now()
			result := s.Frame(start)
			result.Duration = s.clock.Now().Sub(start)
			if result.Clamped {
				s.logger.Printf("frame clamped to %s, %d steps, backlog %s", s.config.MaxFrame, result.Steps, result.Backlog)
			}
			if s.hooks.AfterFrame != nil {
				s.hooks.AfterFrame(result)
			}
		}
	}
}
