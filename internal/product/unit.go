package product

import "regexp"

// sizePattern pairs a regexp with the canonical unit its match normalizes
// to. The table is ordered and the first match wins: compound units must be
// tried before their bare suffixes ("fl oz" before "oz", "ml" before bare
// "l"), so reordering entries changes behavior.
type sizePattern struct {
	re   *regexp.Regexp
	unit string
}

// RE2 has no lookahead, so bare single-letter units rely on \b to avoid
// matching inside longer tokens ("2kg" must not read as grams).
var sizePatterns = []sizePattern{
	// Fluid ounces
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*fl\.?\s*oz`), "fl oz"},
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*fluid\s*ounces?`), "fl oz"},

	// Regular ounces
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*oz\b`), "oz"},
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*ounces?`), "oz"},

	// Pounds
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*lbs?\b`), "lbs"},
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*pounds?`), "lbs"},

	// Grams
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g\b`), "g"},
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*grams?`), "g"},

	// Kilograms
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*kg\b`), "kg"},
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*kilograms?`), "kg"},

	// Milliliters
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*ml\b`), "ml"},
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*milliliters?`), "ml"},

	// Liters
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*l\b`), "L"},
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*liters?`), "L"},
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*litres?`), "L"},

	// Count / pack / pieces
	{regexp.MustCompile(`(?i)(\d+)\s*count\b`), "count"},
	{regexp.MustCompile(`(?i)(\d+)\s*ct\b`), "count"},
	{regexp.MustCompile(`(?i)(\d+)\s*pack\b`), "pack"},
	{regexp.MustCompile(`(?i)(\d+)\s*pieces?\b`), "pieces"},
	{regexp.MustCompile(`(?i)(\d+)\s*pcs?\b`), "pieces"},

	// Fallback for labels that already say "units"
	{regexp.MustCompile(`(?i)(\d+)\s*units?\b`), "units"},
}

// ExtractSize scans a product name and raw quantity field for a package
// size and returns it as "<number> <unit>" with the unit normalized to a
// fixed vocabulary. It returns "" when nothing matches; callers treat that
// as "no size available", not an error.
func ExtractSize(productName, rawQuantity string) string {
	text := productName + " " + rawQuantity

	for _, p := range sizePatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			return m[1] + " " + p.unit
		}
	}
	return ""
}
