package intake

import (
	"regexp"
	"strconv"
	"strings"
)

// Segment is one semantic unit of a message line: either the whole line or
// one piece of a line joined by "+" or " - " separators.
type Segment struct {
	Raw    string   // original text, case preserved
	Folded string   // folded rendition for matching
	Tokens []string // folded, space-split
}

// Line is one physical message line with its sub-segments.
type Line struct {
	Raw      string
	Folded   string
	Tokens   []string
	Segments []Segment
}

// Tokenize splits a normalized message into lines and sub-segments.
// Multi-item-per-line input ("قميص احمر + L") becomes one line with two
// segments; the extractor's carry-forward rule merges attribute-only
// segments back into the preceding product mention.
func Tokenize(n Normalized) []Line {
	if n.Original == "" {
		return nil
	}
	rawLines := strings.Split(n.Original, "\n")
	lines := make([]Line, 0, len(rawLines))
	for _, raw := range rawLines {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		folded := Fold(raw)
		line := Line{
			Raw:    raw,
			Folded: folded,
			Tokens: strings.Fields(folded),
		}
		for _, piece := range splitSegments(raw) {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			pieceFolded := Fold(piece)
			line.Segments = append(line.Segments, Segment{
				Raw:    piece,
				Folded: pieceFolded,
				Tokens: strings.Fields(pieceFolded),
			})
		}
		if len(line.Segments) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitSegments cuts a line on "+" and on dashes that are padded by
// spaces. A bare dash inside a token (phone numbers, "t-shirt") is left
// alone.
func splitSegments(line string) []string {
	var segments []string
	var current strings.Builder
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '+' {
			segments = append(segments, current.String())
			current.Reset()
			continue
		}
		if (r == '-' || r == '–' || r == '—') && i > 0 && i+1 < len(runes) && runes[i-1] == ' ' && runes[i+1] == ' ' {
			segments = append(segments, current.String())
			current.Reset()
			i++ // skip the space after the dash
			continue
		}
		current.WriteRune(r)
	}
	segments = append(segments, current.String())
	return segments
}

var quantityMarkers = []*regexp.Regexp{
	// ×N / xN / *N
	regexp.MustCompile(`(?i)(?:^|\s)[x×*]\s?(\d{1,3})(?:\s|$)`),
	// N× / Nx
	regexp.MustCompile(`(?i)(?:^|\s)(\d{1,3})\s?[x×*](?:\s|$)`),
	// عدد N
	regexp.MustCompile(`عدد\s?(\d{1,3})`),
}

// extractQuantity pulls an explicit quantity marker out of a segment and
// returns the remaining text. Quantity defaults to 1 when no marker is
// present.
func extractQuantity(folded string) (quantity int, remainder string) {
	for _, marker := range quantityMarkers {
		match := marker.FindStringSubmatchIndex(folded)
		if match == nil {
			continue
		}
		value, err := strconv.Atoi(folded[match[2]:match[3]])
		if err != nil || value <= 0 {
			continue
		}
		remainder = strings.TrimSpace(folded[:match[0]] + " " + folded[match[1]:])
		return value, remainder
	}
	return 1, strings.TrimSpace(folded)
}

// barcodePattern is a digit run long enough to be a barcode, not a phone
// fragment or a quantity.
var barcodePattern = regexp.MustCompile(`\d{8,}`)

// extractBarcode pulls a barcode-length digit run out of a segment.
// Phone-length runs (10-11 digits) are left for the field extractor, which
// classifies phones before product candidates are built.
func extractBarcode(folded string) (barcode string, remainder string) {
	location := barcodePattern.FindStringIndex(folded)
	if location == nil {
		return "", folded
	}
	barcode = folded[location[0]:location[1]]
	remainder = strings.TrimSpace(strings.TrimSpace(folded[:location[0]]) + " " + strings.TrimSpace(folded[location[1]:]))
	return barcode, remainder
}
