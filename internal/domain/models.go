package domain

import (
	"fmt"
	"time"
)

// GameState names one of the detectable in-game states.
// States are declared by configuration; only StateUnknown has fixed meaning.
type GameState string

const (
	// StateUnknown means no configured signature matched the screen.
	// It never confirms and never triggers a transition.
	StateUnknown GameState = "unknown"

	// States recognized by the default configuration
	StateInMenu          GameState = "in_menu"
	StateWaiting         GameState = "waiting"
	StateCharacterSelect GameState = "character_select"
)

// Coordinate is a fixed on-screen position. Immutable, part of configuration.
type Coordinate struct {
	X int
	Y int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// ColorSample is the RGB value read at a Coordinate during one poll.
type ColorSample struct {
	R uint8
	G uint8
	B uint8
}

func (s ColorSample) String() string {
	return fmt.Sprintf("#%02x%02x%02x", s.R, s.G, s.B)
}

// MatchKind selects how a signature's pixels are compared against samples.
type MatchKind string

const (
	// MatchColor compares each sampled pixel against a reference color;
	// every channel must be within the signature's tolerance.
	MatchColor MatchKind = "color"

	// MatchGreyscale accepts any shade of grey: all three channels must be
	// within the signature's tolerance of the brightest channel. Used for
	// screens whose exact brightness varies (e.g. the map-loading overlay).
	MatchGreyscale MatchKind = "greyscale"
)

// StateSignature associates a game state with the pixel colors expected
// on screen while that state is active. Read-only at runtime.
type StateSignature struct {
	State     GameState
	Kind      MatchKind
	Color     ColorSample // reference color, MatchColor only
	Tolerance int         // per-channel distance budget
	MaxMisses int         // pixels allowed to miss (the cursor can cover one)
	Pixels    []Coordinate
}

// Transition is a confirmed change from one game state to another,
// the unit of work for the dispatcher.
type Transition struct {
	From GameState
	To   GameState
}

func (t Transition) String() string {
	return string(t.From) + "->" + string(t.To)
}

// Credentials holds the OAuth state for the remote service. The access
// token and expiry rotate on refresh; the rest persists across runs.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Expired reports whether the access token needs a refresh before use.
// A small margin avoids racing the server-side expiry.
func (c Credentials) Expired(now time.Time) bool {
	const margin = 30 * time.Second
	return c.AccessToken == "" || !now.Add(margin).Before(c.Expiry)
}
