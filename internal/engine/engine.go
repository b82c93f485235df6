// Package engine runs the polling loop: sample the screen, classify the
// game state, debounce it, and dispatch actions on confirmed transitions.
package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/config"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

// Engine owns the single poll-loop goroutine. Sampling, classification,
// debouncing and dispatch for one poll complete fully before the next
// begins; a slow remote call simply delays the next poll.
type Engine struct {
	logger     *zap.Logger
	cfg        *config.Config
	sampler    domain.Sampler
	classifier domain.Classifier
	dispatcher domain.Dispatcher

	machine *StateMachine
	coords  []domain.Coordinate

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates the engine.
func New(
	logger *zap.Logger,
	cfg *config.Config,
	sampler domain.Sampler,
	classifier domain.Classifier,
	dispatcher domain.Dispatcher,
) *Engine {
	return &Engine{
		logger:     logger,
		cfg:        cfg,
		sampler:    sampler,
		classifier: classifier,
		dispatcher: dispatcher,
		machine:    NewStateMachine(cfg.StartupState, cfg.ConfirmThreshold),
		coords:     cfg.Coordinates(),
	}
}

// Start launches the poll loop in a goroutine and returns immediately.
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Engine starting",
		zap.Duration("pollInterval", e.cfg.PollInterval),
		zap.Int("confirmThreshold", e.cfg.ConfirmThreshold),
		zap.Int("pixels", len(e.coords)),
		zap.String("startupState", string(e.cfg.StartupState)))

	// The fx OnStart context only covers startup, so the loop runs on its
	// own context cancelled by Stop.
	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.runLoop(loopCtx)
	return nil
}

// runLoop polls at the configured interval until the context is cancelled.
func (e *Engine) runLoop(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return
		case <-ticker.C:
			e.pollOnce(ctx)
		}
	}
}

// pollOnce is one full sample -> classify -> debounce -> dispatch pass.
func (e *Engine) pollOnce(ctx context.Context) {
	samples, err := e.sampler.Sample(e.coords)
	if err != nil {
		var capture *domain.CaptureError
		if errors.As(err, &capture) {
			// Skip the poll: confirmed state unchanged, counter untouched.
			e.logger.Warn("Capture failed, skipping poll", zap.Error(err))
			return
		}
		e.logger.Error("Sampler failed", zap.Error(err))
		return
	}

	candidate := e.classifier.Classify(samples)
	e.logger.Debug("Poll classified",
		zap.String("candidate", string(candidate)),
		zap.String("confirmed", string(e.machine.Confirmed())))

	transition, ok := e.machine.Observe(candidate)
	if !ok {
		return
	}

	e.logger.Info("State transition confirmed",
		zap.String("from", string(transition.From)),
		zap.String("to", string(transition.To)))

	e.dispatcher.Dispatch(ctx, transition)
}

// Stop cancels the loop, waits for the in-flight poll to finish, then runs
// the configured shutdown actions (e.g. restoring the volume).
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping")

	if e.cancel != nil {
		e.cancel()
		select {
		case <-e.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if len(e.cfg.OnExit) > 0 {
		e.logger.Info("Running shutdown actions", zap.Int("count", len(e.cfg.OnExit)))
		e.dispatcher.RunActions(ctx, e.cfg.OnExit)
	}

	return nil
}
