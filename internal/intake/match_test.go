package intake

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeCatalog struct {
	products  []CatalogProduct
	searchErr error
}

func (f *fakeCatalog) SearchProducts(_ context.Context, query string) ([]CatalogProduct, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var hits []CatalogProduct
	for _, product := range f.products {
		if strings.Contains(Fold(product.Name), Fold(query)) {
			hits = append(hits, product)
		}
	}
	return hits, nil
}

func (f *fakeCatalog) ProductByBarcode(_ context.Context, barcode string) (*CatalogProduct, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	for _, product := range f.products {
		for _, variant := range product.Variants {
			if variant.Barcode == barcode {
				p := product
				return &p, nil
			}
		}
	}
	return nil, nil
}

func shirtProduct() CatalogProduct {
	return CatalogProduct{
		ID:           1,
		Name:         "قميص رجالي",
		Category:     "ملابس",
		DepartmentID: 10,
		Variants: []CatalogVariant{
			{ProductID: 1, VariantID: 11, ProductName: "قميص رجالي", ColorName: "ابيض", SizeCode: "L", Barcode: "6291041500213", UnitPrice: 15000, OnHandQty: 5, ReservedQty: 1},
			{ProductID: 1, VariantID: 12, ProductName: "قميص رجالي", ColorName: "ابيض", SizeCode: "M", Barcode: "6291041500214", UnitPrice: 15000, OnHandQty: 3, ReservedQty: 0},
			{ProductID: 1, VariantID: 13, ProductName: "قميص رجالي", ColorName: "احمر", SizeCode: "L", Barcode: "6291041500215", UnitPrice: 16000, OnHandQty: 0, ReservedQty: 0},
		},
	}
}

func newTestMatcher(catalog CatalogSearcher) *Matcher {
	return NewMatcher(catalog, NewLexicon(), 0, nil)
}

func TestMatcher_ExactName(t *testing.T) {
	matcher := newTestMatcher(&fakeCatalog{products: []CatalogProduct{shirtProduct()}})

	item := matcher.Resolve(context.Background(), ProductCandidate{
		RawText: "قميص رجالي ابيض L", NameText: "قميص رجالي", Quantity: 1, Color: "ابيض", SizeCode: "L",
	}, FullAccess())

	if item.Product == nil || item.Product.ID != 1 {
		t.Fatalf("product not matched: %+v", item.Product)
	}
	if item.Variant == nil || item.Variant.VariantID != 11 {
		t.Fatalf("wrong variant: %+v", item.Variant)
	}
	if item.WeakMatch {
		t.Error("full-name match flagged weak")
	}
	if item.UnitPrice != 15000 {
		t.Errorf("unit price = %d", item.UnitPrice)
	}
}

func TestMatcher_PartialNameIsWeak(t *testing.T) {
	matcher := newTestMatcher(&fakeCatalog{products: []CatalogProduct{shirtProduct()}})

	// A bare "قميص" does hit the product but scores below the
	// similarity threshold against the full catalog name.
	item := matcher.Resolve(context.Background(), ProductCandidate{
		RawText: "قميص", NameText: "قميص", Quantity: 1, Color: "ابيض", SizeCode: "L",
	}, FullAccess())

	if item.Product == nil {
		t.Fatal("partial name not matched")
	}
	if !item.WeakMatch {
		t.Error("partial name should be flagged weak")
	}
}

func TestMatcher_Barcode(t *testing.T) {
	matcher := newTestMatcher(&fakeCatalog{products: []CatalogProduct{shirtProduct()}})

	item := matcher.Resolve(context.Background(), ProductCandidate{
		RawText: "6291041500215", Barcode: "6291041500215", Quantity: 1,
	}, FullAccess())

	if item.Variant == nil || item.Variant.VariantID != 13 {
		t.Fatalf("barcode variant not selected: %+v", item.Variant)
	}
	if item.Missing.NeedColor || item.Missing.NeedSize {
		t.Error("barcode match should not flag missing attributes")
	}
}

func TestMatcher_NotFound(t *testing.T) {
	matcher := newTestMatcher(&fakeCatalog{products: []CatalogProduct{shirtProduct()}})

	item := matcher.Resolve(context.Background(), ProductCandidate{
		RawText: "حذاء رياضي", NameText: "حذاء رياضي", Quantity: 1,
	}, FullAccess())

	if item.Status != StatusNotFound {
		t.Errorf("status = %q, want not_found", item.Status)
	}
}

func TestMatcher_LookupErrorDegrades(t *testing.T) {
	matcher := newTestMatcher(&fakeCatalog{searchErr: errors.New("connection refused")})

	item := matcher.Resolve(context.Background(), ProductCandidate{
		RawText: "قميص", NameText: "قميص", Quantity: 1,
	}, FullAccess())

	if item.Status != StatusNotFound {
		t.Errorf("status = %q, want not_found on lookup failure", item.Status)
	}
}

func TestMatcher_ScopeRejection(t *testing.T) {
	matcher := newTestMatcher(&fakeCatalog{products: []CatalogProduct{shirtProduct()}})

	item := matcher.Resolve(context.Background(), ProductCandidate{
		RawText: "قميص", NameText: "قميص", Quantity: 1,
	}, ScopeFor(99))

	if item.Status != StatusNotPermitted {
		t.Errorf("status = %q, want not_permitted", item.Status)
	}
	if item.Variant != nil {
		t.Error("variant resolution should stop on scope rejection")
	}
}

func TestMatcher_MissingAttributes(t *testing.T) {
	matcher := newTestMatcher(&fakeCatalog{products: []CatalogProduct{shirtProduct()}})

	item := matcher.Resolve(context.Background(), ProductCandidate{
		RawText: "قميص", NameText: "قميص", Quantity: 1,
	}, FullAccess())

	if !item.Missing.NeedColor || !item.Missing.NeedSize {
		t.Errorf("missing flags = %+v, want both", item.Missing)
	}
	// A fallback variant is still chosen.
	if item.Variant == nil {
		t.Error("no fallback variant selected")
	}
}

func TestMatcher_KeywordRetry(t *testing.T) {
	matcher := newTestMatcher(&fakeCatalog{products: []CatalogProduct{shirtProduct()}})

	// "قميص صيفي" has no contains hit; the retry matches on the "قميص"
	// keyword alone.
	item := matcher.Resolve(context.Background(), ProductCandidate{
		RawText: "قميص صيفي", NameText: "قميص صيفي", Quantity: 1,
	}, FullAccess())

	if item.Product == nil {
		t.Fatal("keyword retry found nothing")
	}
	if item.Product.ID != 1 {
		t.Errorf("product id = %d", item.Product.ID)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"kitten", "sitting", (7.0 - 3.0) / 7.0},
		{"abc", "xyz", 0},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"قميص", "قمیص", 1},
	}
	for _, tt := range tests {
		if got := editDistance([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
