package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine using the gosseract client. A fresh
// client is created per call; gosseract clients are not safe for concurrent
// reuse across files.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize performs OCR on a single encoded image.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, opts Options) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(opts.Languages) > 0 {
		if err := c.SetLanguage(opts.Languages...); err != nil {
			return Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if opts.CharWhitelist != "" {
		if err := c.SetWhitelist(opts.CharWhitelist); err != nil {
			return Result{}, fmt.Errorf("set whitelist: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}

	words, avgConf := extractWords(c)

	res := Result{
		Text:  strings.TrimSpace(text),
		Words: words,
	}
	if len(words) > 0 {
		res.Confidence = avgConf
		res.ConfidenceKnown = true
	}
	return res, nil
}

// extractWords pulls word-level boxes and confidences. Gosseract reports
// confidence on a 0-100 scale, which is the module's canonical scale.
func extractWords(c *gosseract.Client) ([]domain.OCRWord, float64) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil, 0
	}

	words := make([]domain.OCRWord, 0, len(boxes))
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
		words = append(words, domain.OCRWord{
			Text:       b.Word,
			Confidence: b.Confidence,
			BBox: domain.BoundingBox{
				X:      b.Box.Min.X,
				Y:      b.Box.Min.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
		})
	}
	return words, sum / float64(len(words))
}
