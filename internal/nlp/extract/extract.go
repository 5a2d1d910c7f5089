// Package extract pulls numbers, names and codes out of free-form utterances.
// Every function is pure and total: malformed input never errors, absence is
// reported as an empty value and callers substitute their domain defaults.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberPattern  = regexp.MustCompile(`(?:₹\s*)?\d[\d,]*(?:\.\d+)?`)
	hsnPattern     = regexp.MustCompile(`(?i)hsn\s*:?\s*(\d+)`)
	gstinPattern   = regexp.MustCompile(`(?i)\b(\d{2}[A-Z]{5}\d{4}[A-Z][0-9A-Z]Z[0-9A-Z])\b`)
	paymentPattern = regexp.MustCompile(`(?i)\b(?:paid|received|advance)\b\s*(?:of|:)?\s*₹?\s*(\d[\d,]*(?:\.\d+)?)`)

	// Item name patterns in priority order: "for <qty> <words>" beats a bare
	// "<qty> <words>" so the quantity tied to the item wins over other digits.
	itemPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bfor\s+\d[\d,]*(?:\.\d+)?\s+([A-Za-z][A-Za-z ]*?)(?:\s+at\b|\s+of\b|\s*₹|\s+\d|$)`),
		regexp.MustCompile(`(?i)\b\d[\d,]*(?:\.\d+)?\s+([A-Za-z][A-Za-z ]*?)(?:\s+at\b|\s+of\b|\s*₹|\s+\d|$)`),
	}
)

// baseSkipWords are filler tokens that never belong to a name, regardless of
// which domain handler is extracting.
var baseSkipWords = []string{
	"from", "to", "for", "at", "with", "named",
	"add", "create", "new", "the", "a", "an", "of",
}

// Numbers returns every numeric token in order of appearance. Currency
// symbols and grouping commas are stripped; anything that still fails to
// parse is dropped silently.
func Numbers(text string) []float64 {
	matches := numberPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]float64, 0, len(matches))
	for _, raw := range matches {
		cleaned := strings.NewReplacer("₹", "", ",", "", " ", "").Replace(raw)
		val, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		out = append(out, val)
	}
	return out
}

// Name extracts a party or item name by skipping command words and
// accumulating the token run that follows them. Accumulation stops at the
// first quantity/price marker or at another skip word. Empty string means
// nothing was found; the caller decides the fallback.
func Name(text string, domainKeywords ...string) string {
	skip := make(map[string]bool, len(baseSkipWords)+len(domainKeywords))
	for _, w := range baseSkipWords {
		skip[w] = true
	}
	for _, w := range domainKeywords {
		skip[strings.ToLower(w)] = true
	}

	var span []string
	started := false
	for _, tok := range strings.Fields(text) {
		word := strings.Trim(tok, ",.!?")
		lower := strings.ToLower(word)

		if skip[lower] {
			if len(span) > 0 {
				break
			}
			started = true
			continue
		}
		if !started {
			continue
		}
		if isQuantityMarker(word, lower) {
			break
		}
		span = append(span, word)
	}

	return strings.TrimSpace(strings.Join(span, " "))
}

// ItemName captures the word run that follows a quantity, trying the
// "for <qty> <words>" shape first. Empty string when neither pattern fits.
func ItemName(text string) string {
	for _, pattern := range itemPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// HSNCode returns the digits following an "hsn" marker, or empty.
func HSNCode(text string) string {
	if m := hsnPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// HSNSpan reports the full matched "hsn ..." span so callers can blank it
// out before running Numbers over the rest of the utterance.
func HSNSpan(text string) string {
	return hsnPattern.FindString(text)
}

// GSTIN returns the 15-character registration number in canonical upper
// case, or empty when the utterance carries none.
func GSTIN(text string) string {
	if m := gstinPattern.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// Payment returns the amount following a paid/received/advance marker.
func Payment(text string) (float64, bool) {
	m := paymentPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	cleaned := strings.ReplaceAll(m[1], ",", "")
	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

func isQuantityMarker(word, lower string) bool {
	switch lower {
	case "for", "at", "with", "each", "per":
		return true
	}
	if strings.HasPrefix(word, "₹") {
		return true
	}
	if len(word) > 0 && word[0] >= '0' && word[0] <= '9' {
		return true
	}
	return false
}
