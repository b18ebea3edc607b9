// Package extract decides, per uploaded file, how raw bytes become
// reviewable content: native PDF text, an alternate parser, full-page
// rasterization, or OCR for standalone images. Every fallback edge is driven
// by the explicit strategy table in strategy.go.
package extract

import (
	"context"
	"os"
	"strings"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/internal/review/normalize"
	"github.com/docuflow/docuflow-backend/internal/review/ocr"
	"github.com/docuflow/docuflow-backend/pkg/errors"
	"github.com/docuflow/docuflow-backend/pkg/logger"
)

const (
	// minNativeTextLen: shorter native output triggers the alternate parser.
	minNativeTextLen = 50

	// OCR acceptance thresholds for the image path.
	minOCRConfidence    = 70.0
	minOCRTextLen       = 100
	minOCRTextLenNoConf = 50
)

// NativeParser extracts embedded text from a paged document.
type NativeParser interface {
	ExtractText(path string) (text string, pageCount int, err error)
}

// AltParser is the second, independent text extraction service.
type AltParser interface {
	Parse(ctx context.Context, data []byte, filename string) (string, error)
}

// Rasterizer renders document pages to images.
type Rasterizer interface {
	PDFToImages(ctx context.Context, path string) ([]domain.PageImage, error)
}

// Preprocessor prepares encoded image bytes for OCR.
type Preprocessor func(data []byte) ([]byte, error)

// Orchestrator routes one SourceDocument through the extraction strategies.
// It owns no state between calls; per-file parallelism is safe.
type Orchestrator struct {
	native     NativeParser
	alt        AltParser
	raster     Rasterizer
	engine     ocr.Engine
	preprocess Preprocessor
	languages  []string
	log        *logger.Logger
}

// NewOrchestrator wires the extraction collaborators together.
func NewOrchestrator(native NativeParser, alt AltParser, raster Rasterizer, engine ocr.Engine, languages []string, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		native:     native,
		alt:        alt,
		raster:     raster,
		engine:     engine,
		preprocess: PreprocessForOCR,
		languages:  languages,
		log:        log.WithComponent("extract"),
	}
}

// Extract produces exactly one ExtractionResult for the document, or a
// file-scoped error. Errors never abort a batch; the caller records them on
// the per-file result.
func (o *Orchestrator) Extract(ctx context.Context, doc domain.SourceDocument) (*domain.ExtractionResult, error) {
	switch doc.DeclaredType {
	case domain.DeclaredTypeDocument:
		return o.extractDocument(ctx, doc)
	case domain.DeclaredTypeImage:
		return o.extractImage(ctx, doc)
	default:
		return nil, errors.Extraction(doc.Path, errors.BadRequest("unsupported file type: "+doc.Extension))
	}
}

// extractDocument walks the document strategy chain:
// native text → alternate parser → rasterization.
func (o *Orchestrator) extractDocument(ctx context.Context, doc domain.SourceDocument) (*domain.ExtractionResult, error) {
	strategy := StrategyNativeText

	text, pageCount, err := o.native.ExtractText(doc.Path)
	if err != nil {
		o.log.Warn().Err(err).Str("file", doc.Path).Msg("native extraction failed, continuing with fallback chain")
		text = ""
	}
	trimmed := strings.TrimSpace(text)

	// Insufficient native text: consult the alternate parser and adopt its
	// output only when it actually yields more.
	if len(trimmed) < minNativeTextLen && pageCount > 0 {
		next, _ := strategy.Next()
		if altText, ok := o.tryAltParser(ctx, doc); ok {
			if altTrimmed := strings.TrimSpace(altText); len(altTrimmed) > len(trimmed) {
				text = altText
				trimmed = altTrimmed
				strategy = next
			}
		}
	}

	// Empty or meaningless text is unreviewable: rasterize every page for
	// vision analysis. This is the terminal branch.
	if trimmed == "" || IsMeaninglessContent(text) {
		pages, err := o.raster.PDFToImages(ctx, doc.Path)
		if err != nil {
			o.log.Error().Err(err).Str("file", doc.Path).Msg("rasterization failed after text strategies")
			return nil, errors.Extraction(doc.Path, err)
		}
		return &domain.ExtractionResult{
			Kind:     domain.KindImageBasedPage,
			Pages:    pages,
			Strategy: string(StrategyRasterize),
		}, nil
	}

	return &domain.ExtractionResult{
		Kind:      domain.KindTextContent,
		Text:      text,
		PageCount: pageCount,
		Strategy:  string(strategy),
	}, nil
}

func (o *Orchestrator) tryAltParser(ctx context.Context, doc domain.SourceDocument) (string, bool) {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		o.log.Warn().Err(err).Str("file", doc.Path).Msg("cannot read file for alternate parser")
		return "", false
	}

	altText, err := o.alt.Parse(ctx, data, doc.Path)
	if err != nil {
		o.log.Warn().Err(err).Str("file", doc.Path).Msg("alternate parser failed")
		return "", false
	}
	return altText, true
}

// extractImage runs preprocess → OCR → normalize. OCR failures degrade to an
// empty low-confidence result so the caller routes the raw image to vision
// analysis instead of failing the file.
func (o *Orchestrator) extractImage(ctx context.Context, doc domain.SourceDocument) (*domain.ExtractionResult, error) {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return nil, errors.Extraction(doc.Path, err)
	}

	prepared, err := o.preprocess(data)
	if err != nil {
		o.log.Warn().Err(err).Str("file", doc.Path).Msg("image preprocessing failed, using original bytes")
		prepared = data
	}

	res, err := o.engine.Recognize(ctx, prepared, ocr.Options{Languages: o.languages})
	if err != nil {
		o.log.Error().Err(err).Str("file", doc.Path).Msg("OCR failed, image will go to vision analysis")
		return &domain.ExtractionResult{
			Kind:     domain.KindSingleImageOCR,
			Strategy: string(StrategyImageOCR),
		}, nil
	}

	lines := normalize.Normalize(res.Text, res.Words)

	return &domain.ExtractionResult{
		Kind:            domain.KindSingleImageOCR,
		Text:            normalize.Text(lines),
		Confidence:      res.Confidence,
		ConfidenceKnown: res.ConfidenceKnown,
		Words:           res.Words,
		Strategy:        string(StrategyImageOCR),
	}, nil
}

// ShouldUseVisionFallback tells the review step whether to send images
// instead of extracted text to the model. Rasterized pages always go to
// vision; OCR results go to vision when confidence or volume is too low.
func ShouldUseVisionFallback(res *domain.ExtractionResult) bool {
	switch res.Kind {
	case domain.KindImageBasedPage:
		return true
	case domain.KindSingleImageOCR:
		n := len(strings.TrimSpace(res.Text))
		if res.ConfidenceKnown {
			return res.Confidence < minOCRConfidence || n < minOCRTextLen
		}
		return n < minOCRTextLenNoConf
	default:
		return false
	}
}

// imageExtensions and documentExtensions drive upload routing.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".rtf": true,
}

// DeclaredTypeForExtension maps a file extension (with leading dot, any
// case) to the pipeline's declared type. ok is false for unsupported types.
func DeclaredTypeForExtension(ext string) (domain.DeclaredType, bool) {
	ext = strings.ToLower(ext)
	if imageExtensions[ext] {
		return domain.DeclaredTypeImage, true
	}
	if documentExtensions[ext] {
		return domain.DeclaredTypeDocument, true
	}
	return "", false
}
