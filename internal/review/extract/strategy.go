package extract

// Strategy names one extraction approach. The orchestrator walks an explicit
// fallback chain instead of nesting conditionals, so every edge can be
// exercised on its own.
type Strategy string

const (
	// Document path: native text → alternate parser → rasterization.
	StrategyNativeText Strategy = "native_text"
	StrategyAltParser  Strategy = "alt_parser"
	StrategyRasterize  Strategy = "rasterize"

	// Image path: OCR, with vision analysis as the caller-side fallback.
	StrategyImageOCR Strategy = "image_ocr"
	StrategyVision   Strategy = "vision"
)

// transitions is the fallback table: the strategy tried when the current one
// yields insufficient content. Terminal strategies have no entry.
var transitions = map[Strategy]Strategy{
	StrategyNativeText: StrategyAltParser,
	StrategyAltParser:  StrategyRasterize,
	StrategyImageOCR:   StrategyVision,
}

// Next returns the fallback strategy, or false when the current strategy is
// terminal.
func (s Strategy) Next() (Strategy, bool) {
	next, ok := transitions[s]
	return next, ok
}
