package intake

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalized carries both renditions of a message: the cleaned original
// (digits canonicalized, whitespace collapsed, case preserved for Latin
// abbreviations like "XL") and a folded form used for matching.
type Normalized struct {
	Original string
	Folded   string
}

// foldTransformer strips combining marks after canonical decomposition.
// For Arabic this removes tashkeel and unifies hamza-carrying alef forms;
// for Latin it drops accents.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a raw message. Total and idempotent:
// Normalize(n.Original).Original == n.Original for every input.
func Normalize(raw string) Normalized {
	original := collapseWhitespace(asciiDigits(raw))
	return Normalized{
		Original: original,
		Folded:   Fold(original),
	}
}

// Fold lower-cases and strips diacritics from already-canonicalized text.
// Used by the lexicon so synonym keys and message tokens compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, "ة", "ه")
	folded = strings.ReplaceAll(folded, "ى", "ي")
	return folded
}

// asciiDigits maps Arabic-Indic (٠-٩) and Extended Arabic-Indic (۰-۹)
// digits to ASCII.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}

// collapseWhitespace squeezes runs of spaces and tabs into one space and
// trims every line, preserving line breaks for the tokenizer.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
