package intake

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultMatchThreshold is the similarity a catalog hit must reach to be
// considered confident. Below it the first hit is still used as a weak
// fallback, flagged for review.
const DefaultMatchThreshold = 0.6

// CatalogSearcher is the read-only catalog capability the matcher
// consumes. Implementations return products with their active variants
// and stock snapshots.
type CatalogSearcher interface {
	// SearchProducts returns products whose name contains the query,
	// case-insensitively.
	SearchProducts(ctx context.Context, query string) ([]CatalogProduct, error)
	// ProductByBarcode resolves an exact barcode to its product.
	ProductByBarcode(ctx context.Context, barcode string) (*CatalogProduct, error)
}

// Matcher resolves product candidates to catalog products and variants.
type Matcher struct {
	catalog   CatalogSearcher
	lexicon   *Lexicon
	threshold float64
	logger    *slog.Logger
}

func NewMatcher(catalog CatalogSearcher, lexicon *Lexicon, threshold float64, logger *slog.Logger) *Matcher {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		catalog:   catalog,
		lexicon:   lexicon,
		threshold: threshold,
		logger:    logger,
	}
}

// Resolve matches one candidate. Lookup failures never escape: they
// degrade to a not_found item so one bad candidate cannot abort the
// message.
func (m *Matcher) Resolve(ctx context.Context, candidate ProductCandidate, scope AccessScope) ResolvedLineItem {
	item := ResolvedLineItem{
		Candidate: candidate,
		Quantity:  candidate.Quantity,
		Status:    StatusNotFound,
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	product, weak := m.findProduct(ctx, candidate)
	if product == nil {
		return item
	}
	item.Product = product
	item.WeakMatch = weak

	if !scope.Allows(product.DepartmentID) {
		item.Status = StatusNotPermitted
		return item
	}

	if len(product.Variants) > 0 {
		variant := m.selectVariant(product, candidate)
		if variant != nil {
			item.Variant = variant
			item.UnitPrice = variant.UnitPrice
		}
		m.recordMissingAttributes(&item, product, candidate)
	}
	return item
}

// findProduct runs the lookup ladder: barcode, contains-match on the
// residual name, then a looser keyword OR-match.
func (m *Matcher) findProduct(ctx context.Context, candidate ProductCandidate) (product *CatalogProduct, weak bool) {
	if candidate.Barcode != "" {
		hit, err := m.catalog.ProductByBarcode(ctx, candidate.Barcode)
		if err != nil {
			m.logger.Warn("barcode lookup failed", "barcode", candidate.Barcode, "error", err)
		} else if hit != nil {
			return hit, false
		}
	}

	name := strings.TrimSpace(candidate.NameText)
	if name == "" {
		return nil, false
	}

	hits, err := m.catalog.SearchProducts(ctx, name)
	if err != nil {
		m.logger.Warn("catalog search failed", "query", name, "error", err)
		return nil, false
	}
	if len(hits) == 0 {
		hits = m.keywordRetry(ctx, name)
	}
	if len(hits) == 0 {
		return nil, false
	}

	best, bestScore := pickBestMatch(name, hits)
	if bestScore >= m.threshold {
		return best, false
	}
	// Below-threshold hits are still used, but flagged: any ambiguity
	// downstream forces review instead of silently shipping a guess.
	first := hits[0]
	return &first, true
}

// keywordRetry OR-matches each keyword token (>2 chars) against product
// names and merges the hits.
func (m *Matcher) keywordRetry(ctx context.Context, name string) []CatalogProduct {
	var merged []CatalogProduct
	seen := make(map[int64]struct{})
	for _, keyword := range strings.Fields(name) {
		if len([]rune(keyword)) <= 2 {
			continue
		}
		hits, err := m.catalog.SearchProducts(ctx, keyword)
		if err != nil {
			m.logger.Warn("keyword retry failed", "keyword", keyword, "error", err)
			continue
		}
		for _, hit := range hits {
			if _, dup := seen[hit.ID]; dup {
				continue
			}
			seen[hit.ID] = struct{}{}
			merged = append(merged, hit)
		}
	}
	return merged
}

// pickBestMatch scores every hit by normalized edit-distance similarity
// against the query and returns the best one.
func pickBestMatch(query string, hits []CatalogProduct) (*CatalogProduct, float64) {
	best := 0
	bestScore := -1.0
	for i, hit := range hits {
		score := Similarity(query, Fold(hit.Name))
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return &hits[best], bestScore
}

// selectVariant picks the concrete variant: exact barcode, then exact
// (color, size), then the first variant as a weak fallback.
func (m *Matcher) selectVariant(product *CatalogProduct, candidate ProductCandidate) *CatalogVariant {
	if candidate.Barcode != "" {
		for i := range product.Variants {
			if product.Variants[i].Barcode == candidate.Barcode {
				return &product.Variants[i]
			}
		}
	}
	if candidate.Color != "" || candidate.SizeCode != "" {
		for i := range product.Variants {
			variant := &product.Variants[i]
			if candidate.Color != "" && !sameColor(variant.ColorName, candidate.Color) {
				continue
			}
			if candidate.SizeCode != "" && !strings.EqualFold(variant.SizeCode, candidate.SizeCode) {
				continue
			}
			return variant
		}
	}
	if len(product.Variants) > 0 {
		return &product.Variants[0]
	}
	return nil
}

// recordMissingAttributes flags attributes the customer never gave for a
// product that offers a choice. Recorded independently of whether a
// fallback variant was still selected.
func (m *Matcher) recordMissingAttributes(item *ResolvedLineItem, product *CatalogProduct, candidate ProductCandidate) {
	if candidate.Barcode != "" && item.Variant != nil {
		return
	}
	colors := make(map[string]struct{})
	sizes := make(map[string]struct{})
	for _, variant := range product.Variants {
		if variant.ColorName != "" {
			colors[Fold(variant.ColorName)] = struct{}{}
		}
		if variant.SizeCode != "" {
			sizes[Fold(variant.SizeCode)] = struct{}{}
		}
	}
	if candidate.Color == "" && len(colors) > 1 {
		item.Missing.NeedColor = true
	}
	if candidate.SizeCode == "" && len(sizes) > 1 {
		item.Missing.NeedSize = true
	}
}

func sameColor(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Similarity is normalized edit-distance similarity:
// (longerLen - distance) / longerLen, in [0, 1].
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	if longer == 0 {
		return 1
	}
	return float64(longer-editDistance(ra, rb)) / float64(longer)
}

// editDistance is the Levenshtein distance over runes.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	previous := make([]int, len(b)+1)
	current := make([]int, len(b)+1)
	for j := range previous {
		previous[j] = j
	}
	for i := 1; i <= len(a); i++ {
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = minInt(previous[j]+1, current[j-1]+1, previous[j-1]+cost)
		}
		previous, current = current, previous
	}
	return previous[len(b)]
}

func minInt(values ...int) int {
	least := values[0]
	for _, v := range values[1:] {
		if v < least {
			least = v
		}
	}
	return least
}
