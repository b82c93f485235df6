// Package sampler reads on-screen pixel colors through the OS screen
// capture primitive. One poll is one capture: the bounding rectangle of
// all requested coordinates is grabbed once and the pixels are read out
// of the captured frame.
package sampler

import (
	"errors"
	"image"

	"go.uber.org/zap"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

// Grabber is the screen capture seam. The real implementation wraps
// kbinani/screenshot; tests substitute synthetic frames.
type Grabber interface {
	NumActiveDisplays() int
	DisplayBounds(display int) image.Rectangle
	CaptureRect(rect image.Rectangle) (*image.RGBA, error)
}

// ScreenSampler captures pixel colors from the primary display.
type ScreenSampler struct {
	logger *zap.Logger
	grab   Grabber
}

// New creates a sampler backed by the real screen.
func New(logger *zap.Logger) *ScreenSampler {
	return &ScreenSampler{logger: logger, grab: screenGrabber{}}
}

// NewWithGrabber creates a sampler with a custom capture backend.
func NewWithGrabber(logger *zap.Logger, grab Grabber) *ScreenSampler {
	return &ScreenSampler{logger: logger, grab: grab}
}

// Sample captures the screen once and returns the color at every coordinate.
// A failed capture returns a *domain.CaptureError; the caller skips the poll.
func (s *ScreenSampler) Sample(coords []domain.Coordinate) (map[domain.Coordinate]domain.ColorSample, error) {
	samples := make(map[domain.Coordinate]domain.ColorSample, len(coords))
	if len(coords) == 0 {
		return samples, nil
	}

	if s.grab.NumActiveDisplays() <= 0 {
		return nil, &domain.CaptureError{Err: errors.New("no active displays")}
	}

	rect := boundingRect(coords)
	img, err := s.grab.CaptureRect(rect)
	if err != nil {
		return nil, &domain.CaptureError{Err: err}
	}

	for _, c := range coords {
		px := img.RGBAAt(c.X-rect.Min.X, c.Y-rect.Min.Y)
		samples[c] = domain.ColorSample{R: px.R, G: px.G, B: px.B}
	}

	s.logger.Debug("Screen sampled",
		zap.Int("pixels", len(coords)),
		zap.Stringer("rect", rect))

	return samples, nil
}

// boundingRect returns the smallest rectangle covering every coordinate.
// image.Rectangle maxima are exclusive, hence the +1.
func boundingRect(coords []domain.Coordinate) image.Rectangle {
	rect := image.Rect(coords[0].X, coords[0].Y, coords[0].X+1, coords[0].Y+1)
	for _, c := range coords[1:] {
		rect = rect.Union(image.Rect(c.X, c.Y, c.X+1, c.Y+1))
	}
	return rect
}
