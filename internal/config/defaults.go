package config

import (
	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

// Default returns the built-in configuration used when no config file
// exists. The signature pixels target a 2560x1440 display; other setups
// should run `owspotify calibrate` and write their own file.
func Default() *Config {
	return &Config{
		PollInterval:     defaultPollInterval,
		ConfirmThreshold: defaultConfirmThreshold,
		StartupState:     domain.StateUnknown,
		RedirectURI:      defaultRedirectURI,
		Signatures: []domain.StateSignature{
			{
				State:     domain.StateInMenu,
				Kind:      domain.MatchColor,
				Color:     domain.ColorSample{R: 24, G: 113, B: 186},
				Tolerance: 2,
				MaxMisses: 1,
				Pixels: []domain.Coordinate{
					{X: 1936, Y: 49}, {X: 1936, Y: 109}, {X: 1989, Y: 49}, {X: 1976, Y: 87},
				},
			},
			{
				State:     domain.StateWaiting,
				Kind:      domain.MatchGreyscale,
				Tolerance: 12,
				Pixels: []domain.Coordinate{
					{X: 2369, Y: 1204}, {X: 2415, Y: 1245}, {X: 2377, Y: 1249}, {X: 2343, Y: 1270},
				},
			},
			{
				State:     domain.StateCharacterSelect,
				Kind:      domain.MatchColor,
				Color:     domain.ColorSample{R: 255, G: 255, B: 255},
				Tolerance: 3,
				MaxMisses: 1,
				Pixels: []domain.Coordinate{
					{X: 2357, Y: 250}, {X: 2402, Y: 250}, {X: 2437, Y: 250}, {X: 2483, Y: 250},
				},
			},
		},
		Mapping: domain.ActionMapping{
			ByState: map[domain.GameState][]domain.Action{
				domain.StateInMenu:          {domain.SetVolumeAction{Level: 80}, domain.PlayAction{}},
				domain.StateWaiting:         {domain.SetVolumeAction{Level: 80}},
				domain.StateCharacterSelect: {domain.PauseAction{}},
			},
			ByTransition: map[domain.Transition][]domain.Action{},
		},
	}
}
