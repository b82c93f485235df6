// Package calibrate captures the screen once and reports how the
// configured signatures compare against what is actually on it. Signature
// coordinates are resolution- and brightness-sensitive, so users on other
// setups need a way to find their own pixels; the cropped snapshots this
// writes make that a matter of opening a few PNGs.
package calibrate

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/classifier"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/sampler"
)

// BoxSize is the side length of the square cropped around each signature
// pixel in the saved snapshots.
const BoxSize = 48

// PixelReport compares one signature pixel against the captured screen.
type PixelReport struct {
	Coordinate domain.Coordinate
	Sampled    domain.ColorSample
	Matches    bool
	Snapshot   string // path of the saved crop, empty if saving failed
}

// SignatureReport aggregates one signature's pixels.
type SignatureReport struct {
	State   domain.GameState
	Kind    domain.MatchKind
	Color   domain.ColorSample // reference color, color match only
	Pixels  []PixelReport
	Matched bool // whether the signature would match this frame
}

// Tool runs the calibration capture.
type Tool struct {
	logger *zap.Logger
	grab   sampler.Grabber
}

// New creates a calibration tool backed by the real screen.
func New(logger *zap.Logger) *Tool {
	return &Tool{logger: logger, grab: sampler.NewGrabber()}
}

// NewWithGrabber creates a tool with a custom capture backend.
func NewWithGrabber(logger *zap.Logger, grab sampler.Grabber) *Tool {
	return &Tool{logger: logger, grab: grab}
}

// Run captures the primary display, writes a cropped snapshot around every
// signature pixel into outDir and returns the comparison report.
func (t *Tool) Run(signatures []domain.StateSignature, outDir string) ([]SignatureReport, error) {
	if t.grab.NumActiveDisplays() <= 0 {
		return nil, &domain.CaptureError{Err: errors.New("no active displays")}
	}

	bounds := t.grab.DisplayBounds(0)
	frame, err := t.grab.CaptureRect(bounds)
	if err != nil {
		return nil, &domain.CaptureError{Err: err}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outDir, err)
	}

	t.logger.Info("Screen captured for calibration",
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
		zap.String("outDir", outDir))

	var reports []SignatureReport
	for _, sig := range signatures {
		reports = append(reports, t.reportSignature(sig, frame, bounds, outDir))
	}
	return reports, nil
}

func (t *Tool) reportSignature(sig domain.StateSignature, frame *image.RGBA, bounds image.Rectangle, outDir string) SignatureReport {
	report := SignatureReport{State: sig.State, Kind: sig.Kind, Color: sig.Color}

	misses := 0
	for _, p := range sig.Pixels {
		pr := PixelReport{Coordinate: p}

		if !image.Pt(p.X, p.Y).In(bounds) {
			// Off-screen pixel: the config targets a bigger display.
			misses++
			report.Pixels = append(report.Pixels, pr)
			continue
		}

		px := frame.RGBAAt(p.X-bounds.Min.X, p.Y-bounds.Min.Y)
		pr.Sampled = domain.ColorSample{R: px.R, G: px.G, B: px.B}
		pr.Matches = classifier.PixelMatches(sig, pr.Sampled)
		if !pr.Matches {
			misses++
		}

		pr.Snapshot = t.saveCrop(sig, p, frame, bounds, outDir)
		report.Pixels = append(report.Pixels, pr)
	}

	report.Matched = misses <= sig.MaxMisses
	return report
}

// saveCrop writes a BoxSize square around the pixel. Failures are logged
// and reported as an empty path; the color report is still useful without
// the image.
func (t *Tool) saveCrop(sig domain.StateSignature, p domain.Coordinate, frame *image.RGBA, bounds image.Rectangle, outDir string) string {
	half := BoxSize / 2
	box := image.Rect(
		p.X-bounds.Min.X-half, p.Y-bounds.Min.Y-half,
		p.X-bounds.Min.X+half, p.Y-bounds.Min.Y+half,
	).Intersect(frame.Bounds())

	crop := imaging.Crop(frame, box)
	path := filepath.Join(outDir, fmt.Sprintf("%s_%dx%d.png", sig.State, p.X, p.Y))
	if err := imaging.Save(crop, path); err != nil {
		t.logger.Warn("Could not save snapshot",
			zap.String("path", path),
			zap.Error(err))
		return ""
	}
	return path
}
