package sampler

import (
	"image"

	"github.com/kbinani/screenshot"
)

// screenGrabber is the real capture backend.
type screenGrabber struct{}

// NewGrabber returns the real screen capture backend, for components that
// capture outside the poll loop (e.g. the calibration tool).
func NewGrabber() Grabber {
	return screenGrabber{}
}

func (screenGrabber) NumActiveDisplays() int {
	return screenshot.NumActiveDisplays()
}

func (screenGrabber) DisplayBounds(display int) image.Rectangle {
	return screenshot.GetDisplayBounds(display)
}

func (screenGrabber) CaptureRect(rect image.Rectangle) (*image.RGBA, error) {
	return screenshot.CaptureRect(rect)
}
