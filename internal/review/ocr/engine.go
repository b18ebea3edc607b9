// Package ocr defines the module's OCR engine boundary. The pipeline never
// talks to Tesseract directly; it consumes this interface so tests and
// alternative providers can be swapped in.
package ocr

import (
	"context"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
)

// Result captures OCR output for a single image.
type Result struct {
	// Text is the linearized recognized text.
	Text string
	// Confidence is the mean word confidence on a 0-100 scale. Valid only
	// when ConfidenceKnown is true; engines that cannot score their output
	// leave it unset.
	Confidence      float64
	ConfidenceKnown bool
	// Words carries per-token confidence and pixel bounding boxes.
	Words []domain.OCRWord
}

// Options tune a single recognition call.
type Options struct {
	// Languages are trained-data hints, e.g. "eng", "deu".
	Languages []string
	// CharWhitelist restricts recognition to the given characters.
	// Empty means unrestricted.
	CharWhitelist string
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, opts Options) (Result, error)
}
