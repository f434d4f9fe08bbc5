package intake

import (
	"regexp"
	"strconv"
	"strings"
)

// Extractor classifies message segments into order fields and product
// candidates using a fixed precedence: delivery keyword, phone, amount,
// address, carry-forward attributes, customer name, product, note.
type Extractor struct {
	lexicon *Lexicon
}

func NewExtractor(lexicon *Lexicon) *Extractor {
	return &Extractor{lexicon: lexicon}
}

// Extraction is the extractor's output: the order skeleton plus the
// product candidates to be matched against the catalog.
type Extraction struct {
	Order      ParsedOrder
	Candidates []ProductCandidate
}

var (
	phonePattern  = regexp.MustCompile(`^\d{10,11}$`)
	amountPattern = regexp.MustCompile(`^(\d+)\s?(الف|k)?$`)
	digitsOnly    = regexp.MustCompile(`^\d+$`)
	hasLetter     = regexp.MustCompile(`\p{L}`)
)

// Extract walks every line and segment of the normalized message.
func (x *Extractor) Extract(n Normalized) *Extraction {
	ext := &Extraction{}
	order := &ext.Order

	pickupExplicit := false
	for _, line := range Tokenize(n) {
		// Index into ext.Candidates of the candidate the current line is
		// building, for the carry-forward rule. Reset per line.
		lineCandidate := -1
		// True once a segment of this line matched the gazetteer; later
		// segments of the same line extend the address ("بغداد - الكرادة").
		lineAddress := false

		for _, segment := range line.Segments {
			tokens := segment.Tokens

			// 1. Delivery-mode keyword.
			if mode, consumed, ok := x.deliverySegment(tokens); ok {
				if mode == DeliveryPickup {
					pickupExplicit = true
					order.DeliveryType = DeliveryPickup
				} else if order.DeliveryType == "" || !pickupExplicit {
					order.DeliveryType = mode
				}
				order.Lines = append(order.Lines, ParsedLine{Kind: LineDeliveryModeHint, Raw: segment.Raw, Value: string(mode)})
				if consumed {
					continue
				}
				tokens = x.stripDeliveryWords(tokens)
				if len(tokens) == 0 {
					continue
				}
			}

			// 2. Phone: 10-11 digits once spaces and dashes are stripped.
			if digits := strings.NewReplacer(" ", "", "-", "").Replace(segment.Folded); phonePattern.MatchString(digits) {
				switch {
				case order.PrimaryPhone == "":
					order.PrimaryPhone = digits
					order.Lines = append(order.Lines, ParsedLine{Kind: LinePhone, Raw: segment.Raw, Value: digits})
				case order.SecondaryPhone == "" && digits != order.PrimaryPhone:
					order.SecondaryPhone = digits
					order.Lines = append(order.Lines, ParsedLine{Kind: LineSecondaryPhone, Raw: segment.Raw, Value: digits})
				}
				continue
			}

			// Carry-forward: an attribute-only segment refines the product
			// candidate started earlier on the same line.
			if lineCandidate >= 0 && x.mergeAttributes(&ext.Candidates[lineCandidate], segment) {
				order.Lines = append(order.Lines, ParsedLine{Kind: LineProductCandidate, Raw: segment.Raw})
				continue
			}

			// 3. Amount: digits with an optional thousands suffix.
			if value, ok := x.amountSegment(segment.Folded); ok {
				order.TotalAmount = value
				order.ExplicitAmount = true
				order.Lines = append(order.Lines, ParsedLine{Kind: LineAmount, Raw: segment.Raw, Value: strconv.FormatInt(value, 10)})
				continue
			}

			// 4. Province/city or generic address noun.
			if city, ok := x.lexicon.MatchesPlace(tokens); ok {
				if order.Address == "" {
					order.Address = segment.Raw
				} else {
					order.Address += " - " + segment.Raw
				}
				if city != "" && order.City == "" {
					order.City = city
				}
				if !pickupExplicit {
					order.DeliveryType = DeliveryCourier
				}
				order.Lines = append(order.Lines, ParsedLine{Kind: LineAddressHint, Raw: segment.Raw, Value: city})
				lineAddress = true
				continue
			}

			// Address continuation: the rest of a gazetteer-matched line
			// is district/street detail.
			if lineAddress && hasLetter.MatchString(segment.Folded) {
				order.Address += " - " + segment.Raw
				order.Lines = append(order.Lines, ParsedLine{Kind: LineAddressHint, Raw: segment.Raw})
				continue
			}

			// 6. Customer name: the first otherwise-unclassified segment
			// before any phone was seen, as long as it does not look like
			// a product mention.
			if order.CustomerName == "" && order.PrimaryPhone == "" && x.looksLikeName(segment) {
				order.CustomerName = segment.Raw
				order.Lines = append(order.Lines, ParsedLine{Kind: LineCustomerName, Raw: segment.Raw, Value: segment.Raw})
				continue
			}

			// 5/7. Anything with letters is a product candidate.
			if hasLetter.MatchString(segment.Folded) {
				ext.Candidates = append(ext.Candidates, x.buildCandidate(segment))
				lineCandidate = len(ext.Candidates) - 1
				order.Lines = append(order.Lines, ParsedLine{Kind: LineProductCandidate, Raw: segment.Raw})
				continue
			}

			// 8. Leftovers become notes.
			if order.Notes == "" {
				order.Notes = segment.Raw
			} else {
				order.Notes += "\n" + segment.Raw
			}
			order.Lines = append(order.Lines, ParsedLine{Kind: LineNote, Raw: segment.Raw})
		}
	}

	if order.DeliveryType == "" {
		order.DeliveryType = DeliveryPickup
	}
	return ext
}

// deliverySegment reports whether tokens carry a delivery keyword and
// whether the whole segment is consumed by it.
func (x *Extractor) deliverySegment(tokens []string) (mode DeliveryType, consumed bool, ok bool) {
	found := false
	others := 0
	for _, token := range tokens {
		if m, hit := x.lexicon.DeliveryMode(token); hit {
			if !found {
				mode = m
				found = true
			}
			continue
		}
		others++
	}
	if !found {
		return "", false, false
	}
	return mode, others == 0, true
}

func (x *Extractor) stripDeliveryWords(tokens []string) []string {
	kept := tokens[:0:0]
	for _, token := range tokens {
		if _, hit := x.lexicon.DeliveryMode(token); hit {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}

// amountSegment parses an explicit price line. "25 الف" and "25k" mean
// 25000; a bare digit run is taken at face value.
func (x *Extractor) amountSegment(folded string) (int64, bool) {
	match := amountPattern.FindStringSubmatch(folded)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	if match[2] != "" {
		value *= 1000
	}
	return value, true
}

// looksLikeName rejects segments carrying product signals: digits, size
// or color tokens, quantity markers.
func (x *Extractor) looksLikeName(segment Segment) bool {
	if !hasLetter.MatchString(segment.Folded) {
		return false
	}
	if strings.ContainsAny(segment.Folded, "0123456789") {
		return false
	}
	if _, ok := x.lexicon.ExtractSize(segment.Tokens); ok {
		return false
	}
	if _, _, ok := x.lexicon.FindColor(segment.Tokens); ok {
		return false
	}
	return true
}

// buildCandidate extracts quantity, barcode, size and color from a
// product segment, in that order, leaving the residual product name.
// When a color token is present the name is everything before it: the
// product name precedes its color descriptor.
func (x *Extractor) buildCandidate(segment Segment) ProductCandidate {
	candidate := ProductCandidate{RawText: segment.Raw, Quantity: 1}

	quantity, rest := extractQuantity(segment.Folded)
	explicitQty := rest != strings.TrimSpace(segment.Folded)
	candidate.Quantity = quantity

	candidate.Barcode, rest = extractBarcode(rest)

	tokens := strings.Fields(rest)

	// A trailing small number with no quantity marker is still a
	// quantity ("قميص ابيض 2").
	if !explicitQty && len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		if digitsOnly.MatchString(last) && len(last) <= 3 {
			if value, err := strconv.Atoi(last); err == nil && value > 0 {
				candidate.Quantity = value
				tokens = tokens[:len(tokens)-1]
			}
		}
	}

	// Size before color: a trailing size ("قميص ابيض لارج") must be
	// picked up before the color truncates the token stream.
	if size, ok := x.lexicon.ExtractSize(tokens); ok {
		candidate.SizeCode = size
		tokens = x.removeSizeTokens(tokens)
	}

	if color, index, ok := x.lexicon.FindColor(tokens); ok {
		candidate.Color = color
		tokens = tokens[:index]
	}

	candidate.NameText = strings.Join(tokens, " ")
	return candidate
}

// removeSizeTokens drops every size synonym span from the token stream.
func (x *Extractor) removeSizeTokens(tokens []string) []string {
	matches := x.lexicon.findSizes(tokens)
	if len(matches) == 0 {
		return tokens
	}
	drop := make(map[int]struct{})
	for _, match := range matches {
		for i := match.start; i < match.end; i++ {
			drop[i] = struct{}{}
		}
	}
	kept := tokens[:0:0]
	for i, token := range tokens {
		if _, skip := drop[i]; skip {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}

// mergeAttributes applies the carry-forward rule: a segment containing
// only size/color tokens (or a bare quantity) refines the candidate from
// the preceding segment of the same line. A later size mention overrides
// an earlier one.
func (x *Extractor) mergeAttributes(candidate *ProductCandidate, segment Segment) bool {
	tokens := segment.Tokens
	if len(tokens) == 0 {
		return false
	}

	// Bare small number: a quantity for the running candidate.
	if len(tokens) == 1 && digitsOnly.MatchString(tokens[0]) && len(tokens[0]) <= 3 {
		if value, err := strconv.Atoi(tokens[0]); err == nil && value > 0 {
			candidate.Quantity = value
			return true
		}
		return false
	}

	size, hasSize := x.lexicon.ExtractSize(tokens)
	remaining := tokens
	if hasSize {
		remaining = x.removeSizeTokens(remaining)
	}
	color := ""
	hasColor := false
	if len(remaining) > 0 {
		if name, index, ok := x.lexicon.FindColor(remaining); ok && len(remaining) == 1 && index == 0 {
			color = name
			hasColor = true
			remaining = nil
		}
	}
	if len(remaining) > 0 || (!hasSize && !hasColor) {
		return false
	}

	if hasSize {
		candidate.SizeCode = size
	}
	if hasColor && candidate.Color == "" {
		candidate.Color = color
	}
	return true
}
