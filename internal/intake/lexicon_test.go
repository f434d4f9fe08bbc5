package intake

import (
	"strings"
	"testing"
)

func TestLexicon_CanonicalSize(t *testing.T) {
	tests := []struct {
		synonym string
		want    string
	}{
		{"S", SizeS}, {"small", SizeS}, {"سمول", SizeS}, {"صغير", SizeS},
		{"M", SizeM}, {"medium", SizeM}, {"ميديم", SizeM}, {"مديم", SizeM}, {"متوسط", SizeM}, {"وسط", SizeM},
		{"L", SizeL}, {"large", SizeL}, {"لارج", SizeL}, {"كبير", SizeL},
		{"XL", SizeXL}, {"اكس", SizeXL}, {"اكسل", SizeXL}, {"اكس لارج", SizeXL},
		{"XXL", SizeXXL}, {"2XL", SizeXXL}, {"اكسين", SizeXXL}, {"دبل اكس", SizeXXL},
		{"XXXL", SizeXXXL}, {"3XL", SizeXXXL}, {"ثلاثة اكس", SizeXXXL}, {"ثلاث اكس", SizeXXXL},
		// Hamza-carrying and diacritic variants fold to the same key.
		{"أكس", SizeXL},
		{"كَبِير", SizeL},
	}

	lexicon := NewLexicon()
	for _, tt := range tests {
		t.Run(tt.synonym, func(t *testing.T) {
			if got := lexicon.CanonicalSize(tt.synonym); got != tt.want {
				t.Errorf("CanonicalSize(%q) = %q, want %q", tt.synonym, got, tt.want)
			}
		})
	}

	if got := lexicon.CanonicalSize("قميص"); got != "" {
		t.Errorf("CanonicalSize on a non-size returned %q", got)
	}
}

func TestLexicon_LastSizeWins(t *testing.T) {
	lexicon := NewLexicon()
	tests := []struct {
		text string
		want string
	}{
		{"قميص احمر L XL", SizeXL},
		{"قميص كبير صغير", SizeS},
		{"بنطلون اكس لارج", SizeXL},
		{"دبل اكس ثم سمول", SizeS},
	}

	for _, tt := range tests {
		tokens := strings.Fields(Fold(tt.text))
		got, ok := lexicon.ExtractSize(tokens)
		if !ok {
			t.Errorf("ExtractSize(%q): no size found", tt.text)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractSize(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestLexicon_AddColors(t *testing.T) {
	lexicon := NewLexicon()
	lexicon.AddColors([]string{"نبيتي", "احمر", "", "نبيتي"})

	if name, _, ok := lexicon.FindColor([]string{"نبيتي"}); !ok || name != "نبيتي" {
		t.Errorf("catalog color not found: ok=%v name=%q", ok, name)
	}
	// The fallback display name survives a catalog duplicate.
	if name, _, ok := lexicon.FindColor([]string{"احمر"}); !ok || name != "احمر" {
		t.Errorf("fallback color overridden: ok=%v name=%q", ok, name)
	}
	if name, _, ok := lexicon.FindColor([]string{"red"}); !ok || name != "احمر" {
		t.Errorf("english synonym broken: ok=%v name=%q", ok, name)
	}
}

func TestLexicon_MatchesPlace(t *testing.T) {
	lexicon := NewLexicon()
	tests := []struct {
		text         string
		wantOK       bool
		wantProvince string
	}{
		{"بغداد", true, "بغداد"},
		{"البصره", true, "البصرة"},
		{"تكريت", true, "صلاح الدين"},
		{"صلاح الدين", true, "صلاح الدين"},
		{"شارع الرئيسي", true, ""},
		{"حي الجامعة", true, ""},
		{"قميص احمر", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			province, ok := lexicon.MatchesPlace(strings.Fields(Fold(tt.text)))
			if ok != tt.wantOK {
				t.Fatalf("MatchesPlace(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if province != tt.wantProvince {
				t.Errorf("MatchesPlace(%q) province = %q, want %q", tt.text, province, tt.wantProvince)
			}
		})
	}
}

func TestLexicon_RequiresAttributes(t *testing.T) {
	lexicon := NewLexicon()
	if !lexicon.RequiresAttributes("ملابس") {
		t.Error("ملابس should require attributes")
	}
	if !lexicon.RequiresAttributes("Clothing") {
		t.Error("Clothing should require attributes")
	}
	if lexicon.RequiresAttributes("عطور") {
		t.Error("عطور should not require attributes")
	}
}

func TestLexicon_DeliveryMode(t *testing.T) {
	lexicon := NewLexicon()
	if mode, ok := lexicon.DeliveryMode(Fold("توصيل")); !ok || mode != DeliveryCourier {
		t.Errorf("توصيل: ok=%v mode=%q", ok, mode)
	}
	if mode, ok := lexicon.DeliveryMode(Fold("محلي")); !ok || mode != DeliveryPickup {
		t.Errorf("محلي: ok=%v mode=%q", ok, mode)
	}
	if _, ok := lexicon.DeliveryMode("بغداد"); ok {
		t.Error("بغداد is not a delivery keyword")
	}
}
