package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Action is a single remote playback command. The set is closed: each
// variant knows how to execute itself against a Controller, so adding a
// kind means adding a type here and a case to ParseAction.
type Action interface {
	Execute(ctx context.Context, c Controller) error
	String() string
}

// PlayAction resumes playback.
type PlayAction struct{}

func (PlayAction) Execute(ctx context.Context, c Controller) error {
	return c.Play(ctx)
}

func (PlayAction) String() string { return "play" }

// PauseAction pauses playback.
type PauseAction struct{}

func (PauseAction) Execute(ctx context.Context, c Controller) error {
	return c.Pause(ctx)
}

func (PauseAction) String() string { return "pause" }

// SetVolumeAction sets the playback volume to a fixed level.
type SetVolumeAction struct {
	Level int
}

func (a SetVolumeAction) Execute(ctx context.Context, c Controller) error {
	return c.SetVolume(ctx, a.Level)
}

func (a SetVolumeAction) String() string {
	return fmt.Sprintf("set_volume:%d", a.Level)
}

// ParseAction turns a configuration action identifier ("play", "pause",
// "set_volume:80") into its Action variant. Volume levels are validated
// here so a bad mapping fails at startup, not mid-game.
func ParseAction(s string) (Action, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch name {
	case "play":
		if hasArg {
			return nil, fmt.Errorf("action %q takes no argument", name)
		}
		return PlayAction{}, nil
	case "pause":
		if hasArg {
			return nil, fmt.Errorf("action %q takes no argument", name)
		}
		return PauseAction{}, nil
	case "set_volume":
		if !hasArg {
			return nil, fmt.Errorf("action %q requires a level, e.g. %q", name, "set_volume:80")
		}
		level, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("action %q: invalid level %q", name, arg)
		}
		if level < 0 || level > 100 {
			return nil, fmt.Errorf("action %q: level %d: %w", name, level, ErrVolumeOutOfRange)
		}
		return SetVolumeAction{Level: level}, nil
	default:
		return nil, fmt.Errorf("unrecognized action %q", s)
	}
}

// ActionMapping resolves the ordered action list for a confirmed transition.
// Loaded once at startup, read-only thereafter.
type ActionMapping struct {
	// ByState maps a destination state to its actions.
	ByState map[GameState][]Action

	// ByTransition maps a specific (from,to) pair to its actions and
	// takes precedence over ByState when both are configured.
	ByTransition map[Transition][]Action
}

// Lookup returns the actions configured for t, or nil when the transition
// is unmapped (dispatch is then a no-op).
func (m ActionMapping) Lookup(t Transition) []Action {
	if acts, ok := m.ByTransition[t]; ok {
		return acts
	}
	return m.ByState[t.To]
}
