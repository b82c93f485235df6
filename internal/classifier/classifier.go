// Package classifier maps a sampled pixel snapshot to a candidate game
// state by comparing it against the configured state signatures.
package classifier

import (
	"go.uber.org/zap"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

// SignatureClassifier evaluates signatures in configuration order; the
// first fully-matching signature wins. When none matches it returns
// StateUnknown, which the state machine treats as a no-op poll.
type SignatureClassifier struct {
	logger     *zap.Logger
	signatures []domain.StateSignature
}

// New creates a classifier for the given ordered signature set.
func New(logger *zap.Logger, signatures []domain.StateSignature) *SignatureClassifier {
	return &SignatureClassifier{logger: logger, signatures: signatures}
}

// Classify returns the candidate state for one poll's samples.
func (c *SignatureClassifier) Classify(samples map[domain.Coordinate]domain.ColorSample) domain.GameState {
	for _, sig := range c.signatures {
		if c.matches(sig, samples) {
			return sig.State
		}
	}
	return domain.StateUnknown
}

// matches checks a single signature against the samples. A signature
// tolerates up to MaxMisses failing pixels so that the mouse cursor
// covering one does not break detection.
func (c *SignatureClassifier) matches(sig domain.StateSignature, samples map[domain.Coordinate]domain.ColorSample) bool {
	misses := 0
	for _, p := range sig.Pixels {
		sample, ok := samples[p]
		if !ok || !PixelMatches(sig, sample) {
			misses++
			if misses > sig.MaxMisses {
				return false
			}
		}
	}
	return true
}

// PixelMatches reports whether a single sample satisfies the signature's
// match rule. Shared with the calibration tool.
func PixelMatches(sig domain.StateSignature, sample domain.ColorSample) bool {
	switch sig.Kind {
	case domain.MatchGreyscale:
		return isGreyscale(sample, sig.Tolerance)
	default:
		return withinTolerance(sample, sig.Color, sig.Tolerance)
	}
}

// withinTolerance reports whether every channel of sample is within
// tolerance of the reference color.
func withinTolerance(sample, ref domain.ColorSample, tolerance int) bool {
	return channelClose(sample.R, ref.R, tolerance) &&
		channelClose(sample.G, ref.G, tolerance) &&
		channelClose(sample.B, ref.B, tolerance)
}

// isGreyscale reports whether the sample is a shade of grey: every channel
// within tolerance of the brightest one.
func isGreyscale(sample domain.ColorSample, tolerance int) bool {
	brightest := max(sample.R, max(sample.G, sample.B))
	return channelClose(sample.R, brightest, tolerance) &&
		channelClose(sample.G, brightest, tolerance) &&
		channelClose(sample.B, brightest, tolerance)
}

func channelClose(a, b uint8, tolerance int) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
