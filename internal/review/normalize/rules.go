package normalize

import "regexp"

// Rule is one ordered matcher → replacement entry. Rules are applied in
// listed order so later rules can rely on earlier ones.
type Rule struct {
	Matcher     *regexp.Regexp
	Replacement string
}

// apply runs every rule against s in order.
func apply(rules []Rule, s string) string {
	for _, r := range rules {
		s = r.Matcher.ReplaceAllString(s, r.Replacement)
	}
	return s
}

// garbageSubstrings are artifact sequences scanners emit that carry no
// content. Removed verbatim before any other processing.
var garbageSubstrings = []string{
	"\f",
	"­", // soft hyphen
	"​", // zero-width space
	"\ufeff", // BOM
	"¬", // ¬, a common misread of list dashes
	"¤", // ¤
	"¶", // pilcrow
}

// garbageRules collapse symbol clutter left behind by OCR.
var garbageRules = []Rule{
	// repeated bullet/symbol clusters become a single bullet
	{regexp.MustCompile(`[•◦▪●○‣·*]{2,}`), "•"},
	// stray trailing scanner noise
	{regexp.MustCompile(`[~^|\\_]+\s*$`), ""},
	// whitespace runs
	{regexp.MustCompile(`[ \t]+`), " "},
}

// charMap normalizes full-width punctuation and common glyph variants to
// their canonical half-width forms.
var charMap = map[rune]rune{
	'，': ',',
	'．': '.',
	'：': ':',
	'；': ';',
	'！': '!',
	'？': '?',
	'（': '(',
	'）': ')',
	'［': '[',
	'］': ']',
	'　': ' ',
	'“': '"',
	'”': '"',
	'„': '"',
	'‘': '\'',
	'’': '\'',
	'–': '-',
	'—': '-',
	'―': '-',
	'º': '°',
	'˚': '°',
	'⁰': '°',
	'◦': '•',
	'▪': '•',
	'●': '•',
	'○': '•',
	'‣': '•',
	'・': '•',
	'·': '•',
}

// titleCorrections recover canonical headings from garbled OCR output.
// Keys and patterns are matched against the upper-cased line; replacements
// are already canonical so a corrected line is never matched again.
var titleExactCorrections = map[string]string{
	"SAFETYINSTRUCTIONS":   "SAFETY INSTRUCTIONS",
	"5AFETY INSTRUCTIONS":  "SAFETY INSTRUCTIONS",
	"SAFETY 1NSTRUCTIONS":  "SAFETY INSTRUCTIONS",
	"0PERATING PROCEDURES": "OPERATING PROCEDURES",
	"MA1NTENANCE":          "MAINTENANCE",
	"WARN1NG":              "WARNING",
	"CAUT1ON":              "CAUTION",
}

var titleRegexCorrections = []Rule{
	{regexp.MustCompile(`^[5S]AFE[TY1I]{1,2}\s*[I1]NSTRUCT[I1]ONS$`), "SAFETY INSTRUCTIONS"},
	{regexp.MustCompile(`^[0O]PERAT[I1]NG\s+PROCEDURES$`), "OPERATING PROCEDURES"},
	{regexp.MustCompile(`^TROUBLE\s*SH[O0]{2}T[I1]NG$`), "TROUBLESHOOTING"},
}

// contentRules repair known OCR damage inside body text. Every rule is a
// no-op on already-repaired text.
var contentRules = []Rule{
	// "72 ° F" → "72°F"
	{regexp.MustCompile(`(\d+)\s*°\s*([CF])`), "$1°$2"},
	// "orabove" / "orbelow" fused by lost spaces
	{regexp.MustCompile(`\bor(above|below)\b`), "or $1"},
	// degree value fused with the following word: "72°For" → "72°F or"
	{regexp.MustCompile(`(\d+°[CF])(or|and|to)\b`), "$1 $2"},
	// common fused words
	{regexp.MustCompile(`\bDonot\b`), "Do not"},
	{regexp.MustCompile(`\bdonot\b`), "do not"},
	{regexp.MustCompile(`\bcannot([a-z])`), "cannot $1"},
}

// finalRules normalize whitespace and punctuation spacing as the last step.
var finalRules = []Rule{
	{regexp.MustCompile(`\s+`), " "},
	// no space before closing punctuation
	{regexp.MustCompile(`\s+([,.!?;:])`), "$1"},
	// exactly one space after punctuation followed by a letter; numbers are
	// left alone so decimals and section refs survive
	{regexp.MustCompile(`([,.!?;:])([A-Za-z])`), "$1 $2"},
}
