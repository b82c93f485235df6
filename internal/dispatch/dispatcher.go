// Package dispatch executes the configured action list for a confirmed
// state transition against the remote control client.
package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

// Dispatcher resolves transitions to action lists and runs them in order.
// It is partial-failure tolerant: a failed Play must not block a
// subsequent SetVolume, so errors are logged and execution continues.
type Dispatcher struct {
	logger     *zap.Logger
	mapping    domain.ActionMapping
	controller domain.Controller
	presence   domain.PresenceChecker
}

// New creates a dispatcher. presence may be a stub on platforms without a
// session bus; it is only consulted to enrich device-unavailable logs.
func New(
	logger *zap.Logger,
	mapping domain.ActionMapping,
	controller domain.Controller,
	presence domain.PresenceChecker,
) *Dispatcher {
	return &Dispatcher{
		logger:     logger,
		mapping:    mapping,
		controller: controller,
		presence:   presence,
	}
}

// Dispatch runs the actions configured for t. A transition-specific
// mapping wins over the destination-state mapping; an unmapped transition
// is a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, t domain.Transition) {
	actions := d.mapping.Lookup(t)
	if len(actions) == 0 {
		d.logger.Debug("No actions mapped for transition", zap.Stringer("transition", t))
		return
	}

	d.logger.Info("Dispatching actions",
		zap.Stringer("transition", t),
		zap.Int("count", len(actions)))

	d.RunActions(ctx, actions)
}

// RunActions executes actions sequentially, synchronously, continuing
// past failures.
func (d *Dispatcher) RunActions(ctx context.Context, actions []domain.Action) {
	for _, action := range actions {
		if err := action.Execute(ctx, d.controller); err != nil {
			d.logFailure(ctx, action, err)
			continue
		}
		d.logger.Info("Action executed", zap.Stringer("action", action))
	}
}

// logFailure records a failed action. Device-unavailable gets special
// treatment: it is the most common failure in practice, and on Linux the
// session bus can tell whether the local client is even running.
func (d *Dispatcher) logFailure(ctx context.Context, action domain.Action, err error) {
	if !domain.IsDeviceUnavailable(err) {
		d.logger.Error("Action failed",
			zap.Stringer("action", action),
			zap.Error(err))
		return
	}

	fields := []zap.Field{zap.Stringer("action", action), zap.Error(err)}
	if running, perr := d.presence.LocalClientRunning(ctx); perr == nil {
		if running {
			fields = append(fields, zap.String("hint", "client is running but has no active device; start playback once manually"))
		} else {
			fields = append(fields, zap.String("hint", "no local client detected; is it open?"))
		}
	}
	d.logger.Warn("No active playback device", fields...)
}
