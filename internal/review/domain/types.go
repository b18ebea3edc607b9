package domain

import "time"

// DeclaredType categorizes an upload as a paged document or a standalone image
type DeclaredType string

const (
	DeclaredTypeDocument DeclaredType = "document"
	DeclaredTypeImage    DeclaredType = "image"
)

// JobStatus represents the processing state of a review job
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// SourceDocument describes one uploaded file for the duration of a single
// extraction call. Read-only once created.
type SourceDocument struct {
	Path         string       `json:"path"`
	DeclaredType DeclaredType `json:"declared_type"`
	Extension    string       `json:"extension"`
}

// ExtractionKind tags the variant carried by an ExtractionResult
type ExtractionKind string

const (
	KindTextContent    ExtractionKind = "text"
	KindImageBasedPage ExtractionKind = "image_pages"
	KindSingleImageOCR ExtractionKind = "single_image_ocr"
)

// BoundingBox is a pixel-space rectangle with the origin in the upper-left corner
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OCRWord is a single recognized token with its confidence and position
type OCRWord struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
}

// PageImage is one rasterized document page
type PageImage struct {
	PageNumber int    `json:"page_number"`
	ImageBytes []byte `json:"-"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// ExtractionResult is the tagged union produced by one extraction run.
// Exactly one variant is populated, selected by Kind:
//   - KindTextContent: Text + PageCount
//   - KindImageBasedPage: Pages
//   - KindSingleImageOCR: Text + Confidence (+Words)
type ExtractionResult struct {
	Kind      ExtractionKind `json:"kind"`
	Text      string         `json:"text,omitempty"`
	PageCount int            `json:"page_count,omitempty"`
	Pages     []PageImage    `json:"pages,omitempty"`
	// Confidence is the mean OCR confidence on a 0-100 scale.
	// Valid only when ConfidenceKnown is true.
	Confidence      float64   `json:"confidence,omitempty"`
	ConfidenceKnown bool      `json:"confidence_known,omitempty"`
	Words           []OCRWord `json:"words,omitempty"`
	// Strategy names the extraction path that produced this result
	// (native_text, alt_parser, rasterize, image_ocr).
	Strategy string `json:"strategy"`
}

// LineClass is the layout classification of a normalized OCR line
type LineClass string

const (
	LineTitle   LineClass = "title"
	LineBullet  LineClass = "bullet"
	LineContent LineClass = "content"
)

// NormalizedLine is one raw OCR line after the cleanup pipeline.
// Immutable once produced.
type NormalizedLine struct {
	LineNumber     int       `json:"line_number"`
	RawText        string    `json:"raw_text"`
	Classification LineClass `json:"classification"`
	CleanedText    string    `json:"cleaned_text"`
}

// Severity levels for review issues
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Issue categories
const (
	CategoryBasic    = "basic"
	CategoryAdvanced = "advanced"
)

// RawIssue is a single problem proposed by the review model, before validation.
// Confidence is canonically 0-100; the review client converts fractional
// (0.0-1.0) wire values at the boundary.
type RawIssue struct {
	Type         string  `json:"type"`
	Severity     string  `json:"severity"`
	Location     string  `json:"location"`
	OriginalText string  `json:"original_text"`
	SuggestedFix string  `json:"suggested_fix"`
	Explanation  string  `json:"explanation"`
	Confidence   float64 `json:"confidence"`
	Category     string  `json:"category"`
}

// IssueLocator is a best-effort source position for an accepted issue
type IssueLocator struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

// ValidatedIssue is a RawIssue plus the validation decision
type ValidatedIssue struct {
	RawIssue
	Accepted     bool          `json:"accepted"`
	RejectReason string        `json:"reject_reason,omitempty"`
	Locator      *IssueLocator `json:"locator,omitempty"`
}

// ReviewSummary aggregates accepted issues. Derived, never stored apart from
// its issue list; counts always sum to the number of accepted issues.
type ReviewSummary struct {
	TotalAccepted int            `json:"total_accepted"`
	BySeverity    map[string]int `json:"by_severity"`
	ByType        map[string]int `json:"by_type"`
	ByCategory    map[string]int `json:"by_category"`
}

// FileResult is the per-file outcome recorded on a batch. A failed file
// carries Error and Success=false alongside successful entries.
type FileResult struct {
	Path            string           `json:"path"`
	Success         bool             `json:"success"`
	Error           string           `json:"error,omitempty"`
	Strategy        string           `json:"strategy,omitempty"`
	Issues          []ValidatedIssue `json:"issues,omitempty"`
	Summary         *ReviewSummary   `json:"summary,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	QualityScore    int              `json:"quality_score,omitempty"`
	DurationMs      int64            `json:"duration_ms"`
}

// ReviewJob is one batch review run, polled by ID
type ReviewJob struct {
	JobID      string       `json:"job_id"`
	Status     JobStatus    `json:"status"`
	TotalFiles int          `json:"total_files"`
	Results    []FileResult `json:"results,omitempty"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
