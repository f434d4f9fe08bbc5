package intake

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical size codes every natural-language size expression maps to.
const (
	SizeS    = "S"
	SizeM    = "M"
	SizeL    = "L"
	SizeXL   = "XL"
	SizeXXL  = "XXL"
	SizeXXXL = "XXXL"
)

// Lexicon holds the static vocabulary of the intake pipeline: size
// synonyms, color names, the province/city gazetteer, address nouns and
// delivery-mode keywords. Built once at startup and never mutated at
// request time; every lookup key is stored folded so matching is
// case- and diacritic-insensitive.
type Lexicon struct {
	sizes         map[string]string
	colors        map[string]string
	provinces     map[string]string
	addressNouns  map[string]struct{}
	deliveryWords map[string]DeliveryType
	categories    map[string]struct{}
}

// LexiconFile is the optional YAML overlay merged over the compiled-in
// defaults. Every entry is additive.
type LexiconFile struct {
	Sizes        map[string]string `yaml:"sizes"`
	Colors       []string          `yaml:"colors"`
	Provinces    []string          `yaml:"provinces"`
	AddressNouns []string          `yaml:"address_nouns"`
}

var defaultSizeSynonyms = map[string][]string{
	SizeS:    {"s", "small", "سمول", "صغير"},
	SizeM:    {"m", "medium", "ميديم", "مديم", "متوسط", "وسط"},
	SizeL:    {"l", "large", "لارج", "كبير"},
	SizeXL:   {"xl", "اكس", "اكسل", "اكس لارج"},
	SizeXXL:  {"xxl", "2xl", "اكسين", "دبل اكس"},
	SizeXXXL: {"xxxl", "3xl", "ثلاثة اكس", "ثلاث اكس"},
}

// Basic colors carried as a fallback for catalogs whose color table is
// incomplete. Folded synonym → display name.
var defaultColors = map[string][]string{
	"اسود":    {"اسود", "أسود", "black"},
	"ابيض":    {"ابيض", "أبيض", "white"},
	"احمر":    {"احمر", "أحمر", "red"},
	"اخضر":    {"اخضر", "أخضر", "green"},
	"ازرق":    {"ازرق", "أزرق", "blue"},
	"اصفر":    {"اصفر", "أصفر", "yellow"},
	"بني":     {"بني", "brown"},
	"رمادي":   {"رمادي", "رصاصي", "gray", "grey"},
	"وردي":    {"وردي", "زهري", "pink"},
	"بنفسجي":  {"بنفسجي", "purple"},
	"برتقالي": {"برتقالي", "orange"},
	"بيج":     {"بيج", "beige"},
	"كحلي":    {"كحلي", "نيلي", "navy"},
	"ذهبي":    {"ذهبي", "gold"},
	"فضي":     {"فضي", "silver"},
	"سمائي":   {"سمائي", "سماوي", "sky"},
}

var defaultProvinces = map[string][]string{
	"بغداد":     {"بغداد", "baghdad"},
	"البصرة":    {"البصرة", "البصره", "بصرة", "بصره", "basra"},
	"نينوى":     {"نينوى", "الموصل", "موصل", "mosul"},
	"اربيل":     {"اربيل", "أربيل", "erbil"},
	"كركوك":     {"كركوك", "kirkuk"},
	"النجف":     {"النجف", "نجف", "najaf"},
	"كربلاء":    {"كربلاء", "karbala"},
	"الانبار":   {"الانبار", "الأنبار", "انبار", "الرمادي", "رمادي"},
	"ديالى":     {"ديالى", "بعقوبة", "بعقوبه"},
	"واسط":      {"واسط", "الكوت", "كوت"},
	"ميسان":     {"ميسان", "العمارة", "عمارة", "عماره"},
	"ذي قار":    {"ذي قار", "الناصرية", "ناصرية", "ناصريه"},
	"المثنى":    {"المثنى", "السماوة", "سماوة", "سماوه"},
	"القادسية":  {"القادسية", "الديوانية", "ديوانية", "ديوانيه"},
	"بابل":      {"بابل", "الحلة", "حلة", "حله"},
	"صلاح الدين": {"صلاح الدين", "تكريت"},
	"دهوك":      {"دهوك", "duhok"},
	"السليمانية": {"السليمانية", "سليمانية", "سليمانيه"},
	"حلبجة":     {"حلبجة", "حلبجه"},
}

var defaultAddressNouns = []string{
	"منطقة", "شارع", "حي", "قضاء", "ناحية", "محلة", "زقاق", "مجمع", "قرب", "مقابل", "عمارة", "فرع",
}

var defaultDeliveryWords = map[DeliveryType][]string{
	DeliveryCourier: {"توصيل", "ديلفري", "شحن", "ارسال", "delivery"},
	DeliveryPickup:  {"محلي", "استلام", "بيك اب", "pickup"},
}

// Categories whose products are sold per (color, size) and therefore need
// both attributes before an order can auto-approve.
var defaultAttributeCategories = []string{
	"ملابس", "احذية", "clothing", "apparel", "footwear", "shoes",
}

// NewLexicon builds the lexicon from the compiled-in defaults.
func NewLexicon() *Lexicon {
	l := &Lexicon{
		sizes:         make(map[string]string),
		colors:        make(map[string]string),
		provinces:     make(map[string]string),
		addressNouns:  make(map[string]struct{}),
		deliveryWords: make(map[string]DeliveryType),
		categories:    make(map[string]struct{}),
	}
	for code, synonyms := range defaultSizeSynonyms {
		for _, synonym := range synonyms {
			l.sizes[Fold(synonym)] = code
		}
	}
	for name, synonyms := range defaultColors {
		for _, synonym := range synonyms {
			l.colors[Fold(synonym)] = name
		}
	}
	for name, variants := range defaultProvinces {
		for _, variant := range variants {
			l.provinces[Fold(variant)] = name
		}
	}
	for _, noun := range defaultAddressNouns {
		l.addressNouns[Fold(noun)] = struct{}{}
	}
	for mode, words := range defaultDeliveryWords {
		for _, word := range words {
			l.deliveryWords[Fold(word)] = mode
		}
	}
	for _, category := range defaultAttributeCategories {
		l.categories[Fold(category)] = struct{}{}
	}
	return l
}

// LoadLexiconFile merges a YAML overlay into a fresh default lexicon.
func LoadLexiconFile(path string) (*Lexicon, error) {
	l := NewLexicon()
	if path == "" {
		return l, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	var file LexiconFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file: %w", err)
	}
	for synonym, code := range file.Sizes {
		code = strings.ToUpper(strings.TrimSpace(code))
		switch code {
		case SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL:
			l.sizes[Fold(synonym)] = code
		default:
			return nil, fmt.Errorf("lexicon file maps %q to unknown size code %q", synonym, code)
		}
	}
	l.AddColors(file.Colors)
	for _, province := range file.Provinces {
		if folded := Fold(province); folded != "" {
			l.provinces[folded] = strings.TrimSpace(province)
		}
	}
	for _, noun := range file.AddressNouns {
		if folded := Fold(noun); folded != "" {
			l.addressNouns[folded] = struct{}{}
		}
	}
	return l, nil
}

// AddColors unions live catalog color names into the lexicon. Existing
// entries win so the fallback display names stay stable.
func (l *Lexicon) AddColors(names []string) {
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		folded := Fold(trimmed)
		if _, exists := l.colors[folded]; !exists {
			l.colors[folded] = trimmed
		}
	}
}

// CanonicalSize resolves a single size expression to its code. The empty
// string means the expression is not a size.
func (l *Lexicon) CanonicalSize(text string) string {
	return l.sizes[Fold(strings.TrimSpace(text))]
}

// sizeMatch is one size hit inside a token stream.
type sizeMatch struct {
	code  string
	start int // token index of the first token of the synonym
	end   int // token index one past the synonym
}

// findSizes scans folded tokens for size synonyms, longest span first, so
// "اكس لارج" is taken as XL rather than as a bare "اكس".
func (l *Lexicon) findSizes(tokens []string) []sizeMatch {
	var matches []sizeMatch
	for i := 0; i < len(tokens); i++ {
		matched := false
		for span := 3; span >= 2; span-- {
			if i+span > len(tokens) {
				continue
			}
			joined := strings.Join(tokens[i:i+span], " ")
			if code, ok := l.sizes[joined]; ok {
				matches = append(matches, sizeMatch{code: code, start: i, end: i + span})
				i += span - 1
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if code, ok := l.sizes[tokens[i]]; ok {
			matches = append(matches, sizeMatch{code: code, start: i, end: i + 1})
		}
	}
	return matches
}

// ExtractSize returns the canonical size of a token stream. When several
// sizes appear the last one wins: a later mention is a correction.
func (l *Lexicon) ExtractSize(tokens []string) (string, bool) {
	matches := l.findSizes(tokens)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1].code, true
}

// FindColor returns the first color token and its index.
func (l *Lexicon) FindColor(tokens []string) (name string, index int, ok bool) {
	for i, token := range tokens {
		if color, found := l.colors[token]; found {
			return color, i, true
		}
	}
	return "", -1, false
}

// DeliveryMode resolves a whole segment to a delivery mode keyword.
func (l *Lexicon) DeliveryMode(folded string) (DeliveryType, bool) {
	mode, ok := l.deliveryWords[strings.TrimSpace(folded)]
	return mode, ok
}

// MatchesPlace reports whether any token (or token pair, for two-word
// provinces) names a known province/city or a generic address noun.
func (l *Lexicon) MatchesPlace(tokens []string) (province string, ok bool) {
	for i, token := range tokens {
		if name, found := l.provinces[token]; found {
			return name, true
		}
		if i+1 < len(tokens) {
			if name, found := l.provinces[token+" "+tokens[i+1]]; found {
				return name, true
			}
		}
		if _, found := l.addressNouns[token]; found {
			return "", true
		}
	}
	return "", false
}

// RequiresAttributes reports whether a product category is sold per
// (color, size) combination.
func (l *Lexicon) RequiresAttributes(category string) bool {
	_, ok := l.categories[Fold(category)]
	return ok
}
