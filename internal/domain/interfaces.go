package domain

import "context"

// Sampler reads the current on-screen color at each requested coordinate.
type Sampler interface {
	// Sample captures the screen once and returns the color at every
	// coordinate. A failed capture returns a *CaptureError and the caller
	// should skip the poll.
	Sample(coords []Coordinate) (map[Coordinate]ColorSample, error)
}

// Classifier maps a sampled pixel snapshot to a candidate game state.
type Classifier interface {
	// Classify returns the first configured signature that fully matches,
	// or StateUnknown when none does.
	Classify(samples map[Coordinate]ColorSample) GameState
}

// Controller issues playback commands to the remote music service.
//
//go:generate mockgen -destination=mocks/controller_mock.go -package=mocks github.com/ThePyrotechnic/overwatch-spotify/internal/domain Controller
type Controller interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error

	// SetVolume sets the playback volume. level must be in [0,100];
	// out-of-range values fail with ErrVolumeOutOfRange before any
	// network call is made.
	SetVolume(ctx context.Context, level int) error
}

// Dispatcher executes the configured action list for a confirmed transition.
type Dispatcher interface {
	Dispatch(ctx context.Context, t Transition)

	// RunActions executes an explicit action list in order, logging and
	// continuing past failures. Used for the configured shutdown actions.
	RunActions(ctx context.Context, actions []Action)
}

// CredentialStore persists OAuth credentials across runs.
type CredentialStore interface {
	// Load returns the stored client id/secret and refresh token.
	// A missing refresh token is not an error; the Credentials field is
	// simply empty and an interactive authorization is required.
	Load() (Credentials, error)

	// SaveClient persists the application client id and secret.
	SaveClient(id, secret string) error

	// SaveRefreshToken persists a (possibly rotated) refresh token.
	SaveRefreshToken(token string) error
}

// PresenceChecker reports whether a local Spotify client is running.
// It exists to tell "no active playback device" apart from "the client
// is not even open", the most common real-world failure.
type PresenceChecker interface {
	// LocalClientRunning returns ErrUnsupported on platforms without a
	// session bus to inspect.
	LocalClientRunning(ctx context.Context) (bool, error)
}
