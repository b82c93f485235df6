package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

// DefaultPath is where Load looks when no path is given and the
// OWSPOTIFY_CONFIG environment variable is unset.
const DefaultPath = "owspotify.yaml"

// Config is the validated runtime configuration. Loaded once at startup,
// read-only thereafter.
type Config struct {
	PollInterval     time.Duration
	ConfirmThreshold int
	StartupState     domain.GameState
	Signatures       []domain.StateSignature
	Mapping          domain.ActionMapping
	OnExit           []domain.Action
	RedirectURI      string
	Logging          Logging
}

// Logging controls the log sink.
type Logging struct {
	Level string // zap level name; empty means info
	File  string // append target; empty means stderr
}

// fileConfig is the user-facing YAML layout. Keep defaults and validation
// centralized in Load so the rest of the code can assume a well-formed Config.
type fileConfig struct {
	PollIntervalMS   int             `yaml:"poll_interval_ms"`
	ConfirmThreshold int             `yaml:"confirm_threshold"`
	Tolerance        int             `yaml:"tolerance"`
	StartupState     string          `yaml:"startup_state"`
	Signatures       []fileSignature `yaml:"signatures"`

	// Actions maps a destination state to its ordered action list.
	Actions map[string][]string `yaml:"actions"`

	// Transitions configures (from,to)-specific action lists, which take
	// precedence over the per-state map.
	Transitions []fileTransition `yaml:"transitions"`

	// OnExit runs once during shutdown (e.g. restore volume).
	OnExit []string `yaml:"on_exit"`

	Spotify struct {
		RedirectURI string `yaml:"redirect_uri"`
	} `yaml:"spotify"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

type fileSignature struct {
	State     string  `yaml:"state"`
	Match     string  `yaml:"match"`
	Color     []int   `yaml:"color"`
	Tolerance *int    `yaml:"tolerance"` // nil means the global default
	MaxMisses int     `yaml:"max_misses"`
	Pixels    [][]int `yaml:"pixels"`
}

type fileTransition struct {
	From    string   `yaml:"from"`
	To      string   `yaml:"to"`
	Actions []string `yaml:"actions"`
}

const (
	defaultPollInterval     = time.Second
	defaultConfirmThreshold = 3
	defaultTolerance        = 2
	defaultRedirectURI      = "https://localhost/"
)

// Load reads, defaults and validates the configuration.
//
// An explicit path (argument or OWSPOTIFY_CONFIG) must exist; a missing file
// there is a startup failure. When no path was given and DefaultPath does not
// exist, the built-in defaults are used instead. Malformed YAML or invalid
// values are always fatal.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		if env := os.Getenv("OWSPOTIFY_CONFIG"); env != "" {
			path = env
			explicit = true
		} else {
			path = DefaultPath
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg, err := fc.build()
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (fc fileConfig) build() (*Config, error) {
	cfg := &Config{
		PollInterval:     defaultPollInterval,
		ConfirmThreshold: defaultConfirmThreshold,
		StartupState:     domain.StateUnknown,
		RedirectURI:      defaultRedirectURI,
		Logging:          Logging{Level: fc.Logging.Level, File: fc.Logging.File},
		Mapping: domain.ActionMapping{
			ByState:      make(map[domain.GameState][]domain.Action),
			ByTransition: make(map[domain.Transition][]domain.Action),
		},
	}

	if fc.PollIntervalMS < 0 {
		return nil, fmt.Errorf("poll_interval_ms must be positive, got %d", fc.PollIntervalMS)
	}
	if fc.PollIntervalMS > 0 {
		cfg.PollInterval = time.Duration(fc.PollIntervalMS) * time.Millisecond
	}

	if fc.ConfirmThreshold < 0 {
		return nil, fmt.Errorf("confirm_threshold must be at least 1, got %d", fc.ConfirmThreshold)
	}
	if fc.ConfirmThreshold > 0 {
		cfg.ConfirmThreshold = fc.ConfirmThreshold
	}

	tolerance := defaultTolerance
	if fc.Tolerance > 0 {
		tolerance = fc.Tolerance
	}

	if fc.StartupState != "" {
		cfg.StartupState = domain.GameState(fc.StartupState)
	}

	if len(fc.Signatures) == 0 {
		return nil, errors.New("at least one signature is required")
	}
	for i, fs := range fc.Signatures {
		sig, err := fs.build(tolerance)
		if err != nil {
			return nil, fmt.Errorf("signature %d (%s): %w", i, fs.State, err)
		}
		cfg.Signatures = append(cfg.Signatures, sig)
	}

	for state, names := range fc.Actions {
		actions, err := parseActions(names)
		if err != nil {
			return nil, fmt.Errorf("actions for state %q: %w", state, err)
		}
		cfg.Mapping.ByState[domain.GameState(state)] = actions
	}

	for i, ft := range fc.Transitions {
		if ft.From == "" || ft.To == "" {
			return nil, fmt.Errorf("transition %d: from and to are required", i)
		}
		actions, err := parseActions(ft.Actions)
		if err != nil {
			return nil, fmt.Errorf("transition %s->%s: %w", ft.From, ft.To, err)
		}
		key := domain.Transition{From: domain.GameState(ft.From), To: domain.GameState(ft.To)}
		cfg.Mapping.ByTransition[key] = actions
	}

	onExit, err := parseActions(fc.OnExit)
	if err != nil {
		return nil, fmt.Errorf("on_exit: %w", err)
	}
	cfg.OnExit = onExit

	if fc.Spotify.RedirectURI != "" {
		cfg.RedirectURI = fc.Spotify.RedirectURI
	}

	return cfg, nil
}

func (fs fileSignature) build(defaultTol int) (domain.StateSignature, error) {
	var sig domain.StateSignature

	if fs.State == "" {
		return sig, errors.New("state name is required")
	}
	if domain.GameState(fs.State) == domain.StateUnknown {
		return sig, fmt.Errorf("state %q is reserved", fs.State)
	}
	sig.State = domain.GameState(fs.State)

	switch domain.MatchKind(fs.Match) {
	case domain.MatchColor, "":
		sig.Kind = domain.MatchColor
		if len(fs.Color) != 3 {
			return sig, fmt.Errorf("color match requires a [r,g,b] color, got %v", fs.Color)
		}
		for _, c := range fs.Color {
			if c < 0 || c > 255 {
				return sig, fmt.Errorf("color channel %d out of range [0,255]", c)
			}
		}
		sig.Color = domain.ColorSample{R: uint8(fs.Color[0]), G: uint8(fs.Color[1]), B: uint8(fs.Color[2])}
	case domain.MatchGreyscale:
		sig.Kind = domain.MatchGreyscale
		if len(fs.Color) != 0 {
			return sig, errors.New("greyscale match takes no reference color")
		}
	default:
		return sig, fmt.Errorf("unknown match kind %q", fs.Match)
	}

	sig.Tolerance = defaultTol
	if fs.Tolerance != nil {
		if *fs.Tolerance < 0 {
			return sig, fmt.Errorf("tolerance must not be negative, got %d", *fs.Tolerance)
		}
		sig.Tolerance = *fs.Tolerance
	}

	if len(fs.Pixels) == 0 {
		return sig, errors.New("at least one pixel is required")
	}
	for _, p := range fs.Pixels {
		if len(p) != 2 {
			return sig, fmt.Errorf("pixel %v must be [x,y]", p)
		}
		if p[0] < 0 || p[1] < 0 {
			return sig, fmt.Errorf("pixel %v has negative coordinates", p)
		}
		sig.Pixels = append(sig.Pixels, domain.Coordinate{X: p[0], Y: p[1]})
	}

	if fs.MaxMisses < 0 || fs.MaxMisses >= len(sig.Pixels) {
		return sig, fmt.Errorf("max_misses %d must be in [0,%d)", fs.MaxMisses, len(sig.Pixels))
	}
	sig.MaxMisses = fs.MaxMisses

	return sig, nil
}

func parseActions(names []string) ([]domain.Action, error) {
	var actions []domain.Action
	for _, name := range names {
		a, err := domain.ParseAction(name)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// Coordinates returns every signature pixel once, in configuration order.
// This is the ordered set the sampler reads each poll.
func (c *Config) Coordinates() []domain.Coordinate {
	seen := make(map[domain.Coordinate]struct{})
	var coords []domain.Coordinate
	for _, sig := range c.Signatures {
		for _, p := range sig.Pixels {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			coords = append(coords, p)
		}
	}
	return coords
}
