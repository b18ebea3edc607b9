package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/internal/review/ocr"
	apperrors "github.com/docuflow/docuflow-backend/pkg/errors"
	"github.com/docuflow/docuflow-backend/pkg/logger"
)

type fakeNative struct {
	text  string
	pages int
	err   error
}

func (f *fakeNative) ExtractText(path string) (string, int, error) {
	return f.text, f.pages, f.err
}

type fakeAlt struct {
	text   string
	err    error
	called bool
}

func (f *fakeAlt) Parse(ctx context.Context, data []byte, filename string) (string, error) {
	f.called = true
	return f.text, f.err
}

type fakeRaster struct {
	pages  []domain.PageImage
	err    error
	called bool
}

func (f *fakeRaster) PDFToImages(ctx context.Context, path string) ([]domain.PageImage, error) {
	f.called = true
	return f.pages, f.err
}

type fakeEngine struct {
	res ocr.Result
	err error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, image []byte, opts ocr.Options) (ocr.Result, error) {
	return f.res, f.err
}

func pageImages(n int) []domain.PageImage {
	pages := make([]domain.PageImage, n)
	for i := range pages {
		pages[i] = domain.PageImage{PageNumber: i + 1, Width: 800, Height: 1100}
	}
	return pages
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestOrchestrator(native NativeParser, alt AltParser, raster Rasterizer, engine ocr.Engine) *Orchestrator {
	o := NewOrchestrator(native, alt, raster, engine, []string{"eng"}, logger.Nop())
	// Images in these tests are plain bytes, not real encodings.
	o.preprocess = func(data []byte) ([]byte, error) { return data, nil }
	return o
}

func TestExtractDocumentNativeTextSufficient(t *testing.T) {
	text := "This appliance must be connected to a grounded outlet before first use, as described below."
	native := &fakeNative{text: text, pages: 2}
	alt := &fakeAlt{}
	raster := &fakeRaster{}
	o := newTestOrchestrator(native, alt, raster, &fakeEngine{})

	res, err := o.Extract(context.Background(), domain.SourceDocument{
		Path:         "manual.pdf",
		DeclaredType: domain.DeclaredTypeDocument,
		Extension:    ".pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.KindTextContent, res.Kind)
	assert.Equal(t, text, res.Text)
	assert.Equal(t, 2, res.PageCount)
	assert.Equal(t, string(StrategyNativeText), res.Strategy)
	assert.False(t, alt.called, "alternate parser must not run when native text suffices")
	assert.False(t, raster.called)
}

func TestExtractDocumentAdoptsAltParserText(t *testing.T) {
	path := writeTempFile(t, "scan.pdf", "binary pdf bytes")
	altText := "Warning: do not operate the device near water. Keep the power cord away from heated surfaces."
	native := &fakeNative{text: "p. 4", pages: 4}
	alt := &fakeAlt{text: altText}
	raster := &fakeRaster{}
	o := newTestOrchestrator(native, alt, raster, &fakeEngine{})

	res, err := o.Extract(context.Background(), domain.SourceDocument{
		Path:         path,
		DeclaredType: domain.DeclaredTypeDocument,
		Extension:    ".pdf",
	})

	require.NoError(t, err)
	assert.True(t, alt.called)
	assert.Equal(t, domain.KindTextContent, res.Kind)
	assert.Equal(t, altText, res.Text)
	assert.Equal(t, string(StrategyAltParser), res.Strategy)
	assert.False(t, raster.called)
}

func TestExtractDocumentSkipsAltParserWithoutPageCount(t *testing.T) {
	path := writeTempFile(t, "scan.pdf", "binary pdf bytes")
	native := &fakeNative{text: "Section 2: cleaning and care instructions", pages: 0}
	alt := &fakeAlt{text: ""}
	o := newTestOrchestrator(native, alt, &fakeRaster{}, &fakeEngine{})

	res, err := o.Extract(context.Background(), domain.SourceDocument{
		Path:         path,
		DeclaredType: domain.DeclaredTypeDocument,
		Extension:    ".pdf",
	})

	require.NoError(t, err)
	assert.False(t, alt.called, "alternate parser needs a known page count")
	assert.Equal(t, string(StrategyNativeText), res.Strategy)
}

func TestExtractDocumentRasterizesMeaninglessText(t *testing.T) {
	// Page-number artifacts only: every line is numeric.
	path := writeTempFile(t, "scan.pdf", "binary pdf bytes")
	native := &fakeNative{text: "0102\n0304\n0506", pages: 3}
	alt := &fakeAlt{err: assert.AnError}
	raster := &fakeRaster{pages: pageImages(3)}
	o := newTestOrchestrator(native, alt, raster, &fakeEngine{})

	res, err := o.Extract(context.Background(), domain.SourceDocument{
		Path:         path,
		DeclaredType: domain.DeclaredTypeDocument,
		Extension:    ".pdf",
	})

	require.NoError(t, err)
	assert.True(t, alt.called)
	assert.True(t, raster.called)
	assert.Equal(t, domain.KindImageBasedPage, res.Kind)
	assert.Len(t, res.Pages, 3)
	assert.Empty(t, res.Text)
	assert.Equal(t, string(StrategyRasterize), res.Strategy)
}

func TestExtractDocumentRasterizesSparseMultiPageText(t *testing.T) {
	// A 3-page scan whose embedded text is just stray page labels. The
	// trimmed output is 10 characters but only 6 are non-whitespace, so
	// the content heuristic sends every page to rasterization.
	path := writeTempFile(t, "labels.pdf", "binary pdf bytes")
	native := &fakeNative{text: "p. 4  p. 5", pages: 3}
	alt := &fakeAlt{err: assert.AnError}
	raster := &fakeRaster{pages: pageImages(3)}
	o := newTestOrchestrator(native, alt, raster, &fakeEngine{})

	res, err := o.Extract(context.Background(), domain.SourceDocument{
		Path:         path,
		DeclaredType: domain.DeclaredTypeDocument,
		Extension:    ".pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.KindImageBasedPage, res.Kind)
	assert.Len(t, res.Pages, 3)
	assert.Equal(t, string(StrategyRasterize), res.Strategy)
}

func TestExtractDocumentRasterizesEmptyNativeOutput(t *testing.T) {
	path := writeTempFile(t, "empty.pdf", "binary pdf bytes")
	native := &fakeNative{text: "   \n  ", pages: 1}
	alt := &fakeAlt{text: " "}
	raster := &fakeRaster{pages: pageImages(1)}
	o := newTestOrchestrator(native, alt, raster, &fakeEngine{})

	res, err := o.Extract(context.Background(), domain.SourceDocument{
		Path:         path,
		DeclaredType: domain.DeclaredTypeDocument,
		Extension:    ".pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.KindImageBasedPage, res.Kind)
	assert.Len(t, res.Pages, 1)
}

func TestExtractDocumentRasterizationFailure(t *testing.T) {
	path := writeTempFile(t, "broken.pdf", "binary pdf bytes")
	native := &fakeNative{text: "", pages: 0}
	raster := &fakeRaster{err: assert.AnError}
	o := newTestOrchestrator(native, &fakeAlt{}, raster, &fakeEngine{})

	_, err := o.Extract(context.Background(), domain.SourceDocument{
		Path:         path,
		DeclaredType: domain.DeclaredTypeDocument,
		Extension:    ".pdf",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExtraction)
}

func TestExtractImageRunsOCRAndNormalization(t *testing.T) {
	path := writeTempFile(t, "label.png", "png bytes")
	engine := &fakeEngine{res: ocr.Result{
		Text:            "Store  at 72 ° F orabove",
		Confidence:      91,
		ConfidenceKnown: true,
		Words: []domain.OCRWord{
			{Text: "Store", Confidence: 92, BBox: domain.BoundingBox{Height: 12}},
			{Text: "at", Confidence: 90, BBox: domain.BoundingBox{Height: 12}},
		},
	}}
	o := newTestOrchestrator(&fakeNative{}, &fakeAlt{}, &fakeRaster{}, engine)

	res, err := o.Extract(context.Background(), domain.SourceDocument{
		Path:         path,
		DeclaredType: domain.DeclaredTypeImage,
		Extension:    ".png",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.KindSingleImageOCR, res.Kind)
	assert.Equal(t, "Store at 72°F or above", res.Text)
	assert.Equal(t, 91.0, res.Confidence)
	assert.True(t, res.ConfidenceKnown)
	assert.Equal(t, string(StrategyImageOCR), res.Strategy)
}

func TestExtractImageOCRFailureDegradesToEmptyResult(t *testing.T) {
	path := writeTempFile(t, "label.png", "png bytes")
	engine := &fakeEngine{err: assert.AnError}
	o := newTestOrchestrator(&fakeNative{}, &fakeAlt{}, &fakeRaster{}, engine)

	res, err := o.Extract(context.Background(), domain.SourceDocument{
		Path:         path,
		DeclaredType: domain.DeclaredTypeImage,
		Extension:    ".png",
	})

	require.NoError(t, err, "OCR failures degrade instead of failing the file")
	assert.Equal(t, domain.KindSingleImageOCR, res.Kind)
	assert.Empty(t, res.Text)
	assert.False(t, res.ConfidenceKnown)
	assert.True(t, ShouldUseVisionFallback(res))
}

func TestExtractUnsupportedType(t *testing.T) {
	o := newTestOrchestrator(&fakeNative{}, &fakeAlt{}, &fakeRaster{}, &fakeEngine{})

	_, err := o.Extract(context.Background(), domain.SourceDocument{
		Path:         "archive.zip",
		DeclaredType: domain.DeclaredType("archive"),
		Extension:    ".zip",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExtraction)
}

func TestShouldUseVisionFallback(t *testing.T) {
	longText := strings.Repeat("legible words here ", 10) // > 100 chars

	tests := []struct {
		name string
		res  *domain.ExtractionResult
		want bool
	}{
		{
			name: "low confidence with plenty of text",
			res: &domain.ExtractionResult{
				Kind: domain.KindSingleImageOCR, Text: longText,
				Confidence: 65, ConfidenceKnown: true,
			},
			want: true,
		},
		{
			name: "high confidence with plenty of text",
			res: &domain.ExtractionResult{
				Kind: domain.KindSingleImageOCR, Text: longText,
				Confidence: 88, ConfidenceKnown: true,
			},
			want: false,
		},
		{
			name: "high confidence but little text",
			res: &domain.ExtractionResult{
				Kind: domain.KindSingleImageOCR, Text: "CAUTION HOT SURFACE",
				Confidence: 95, ConfidenceKnown: true,
			},
			want: true,
		},
		{
			name: "unknown confidence below the stricter floor",
			res: &domain.ExtractionResult{
				Kind: domain.KindSingleImageOCR, Text: "CAUTION HOT SURFACE",
			},
			want: true,
		},
		{
			name: "unknown confidence with enough text",
			res: &domain.ExtractionResult{
				Kind: domain.KindSingleImageOCR,
				Text: "CAUTION: the surface stays hot for several minutes",
			},
			want: false,
		},
		{
			name: "rasterized pages always go to vision",
			res:  &domain.ExtractionResult{Kind: domain.KindImageBasedPage, Pages: pageImages(2)},
			want: true,
		},
		{
			name: "document text never goes to vision",
			res:  &domain.ExtractionResult{Kind: domain.KindTextContent, Text: "short"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldUseVisionFallback(tt.res))
		})
	}
}

func TestDeclaredTypeForExtension(t *testing.T) {
	tests := []struct {
		ext      string
		declared domain.DeclaredType
		ok       bool
	}{
		{".pdf", domain.DeclaredTypeDocument, true},
		{".DOCX", domain.DeclaredTypeDocument, true},
		{".png", domain.DeclaredTypeImage, true},
		{".JPG", domain.DeclaredTypeImage, true},
		{".tiff", domain.DeclaredTypeImage, true},
		{".zip", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		declared, ok := DeclaredTypeForExtension(tt.ext)
		assert.Equal(t, tt.ok, ok, tt.ext)
		assert.Equal(t, tt.declared, declared, tt.ext)
	}
}
