package intake

import (
	"testing"
)

func extract(t *testing.T, message string) *Extraction {
	t.Helper()
	return NewExtractor(NewLexicon()).Extract(Normalize(message))
}

func TestExtract_PhoneStandalone(t *testing.T) {
	ext := extract(t, "07728020024")
	if ext.Order.PrimaryPhone != "07728020024" {
		t.Errorf("primary phone = %q, want 07728020024", ext.Order.PrimaryPhone)
	}
	if ext.Order.ExplicitAmount {
		t.Error("phone misclassified as amount")
	}
	if ext.Order.Address != "" {
		t.Errorf("phone misclassified as address: %q", ext.Order.Address)
	}
}

func TestExtract_Phones(t *testing.T) {
	ext := extract(t, "0770 123 4567\n0781-234-5678\n07701234567")
	if ext.Order.PrimaryPhone != "07701234567" {
		t.Errorf("primary = %q", ext.Order.PrimaryPhone)
	}
	if ext.Order.SecondaryPhone != "07812345678" {
		t.Errorf("secondary = %q", ext.Order.SecondaryPhone)
	}
}

func TestExtract_Amount(t *testing.T) {
	tests := []struct {
		line string
		want int64
	}{
		{"25 الف", 25000},
		{"25 ألف", 25000},
		{"25k", 25000},
		{"25000", 25000},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ext := extract(t, tt.line)
			if !ext.Order.ExplicitAmount {
				t.Fatal("amount not recognized")
			}
			if ext.Order.TotalAmount != tt.want {
				t.Errorf("amount = %d, want %d", ext.Order.TotalAmount, tt.want)
			}
		})
	}
}

func TestExtract_DeliveryMode(t *testing.T) {
	pickup := extract(t, "محلي\nقميص احمر L")
	if pickup.Order.DeliveryType != DeliveryPickup {
		t.Errorf("delivery type = %q, want pickup", pickup.Order.DeliveryType)
	}

	// An address implies courier delivery.
	address := extract(t, "بغداد الكرادة\nقميص احمر L")
	if address.Order.DeliveryType != DeliveryCourier {
		t.Errorf("delivery type = %q, want courier", address.Order.DeliveryType)
	}

	// Explicit pickup is not overridden by an address mention.
	both := extract(t, "محلي\nبغداد\nقميص احمر L")
	if both.Order.DeliveryType != DeliveryPickup {
		t.Errorf("delivery type = %q, want pickup to stick", both.Order.DeliveryType)
	}

	// Without any hint, orders default to pickup.
	plain := extract(t, "قميص احمر L")
	if plain.Order.DeliveryType != DeliveryPickup {
		t.Errorf("delivery type = %q, want pickup default", plain.Order.DeliveryType)
	}
}

func TestExtract_EndToEndFixture(t *testing.T) {
	ext := extract(t, "أحمد علي - بغداد - الكرادة\nقميص أبيض - كبير - 2")

	order := ext.Order
	if order.CustomerName != "أحمد علي" {
		t.Errorf("customer name = %q", order.CustomerName)
	}
	if order.City != "بغداد" {
		t.Errorf("city = %q", order.City)
	}
	if order.Address != "بغداد - الكرادة" {
		t.Errorf("address = %q", order.Address)
	}
	if order.DeliveryType != DeliveryCourier {
		t.Errorf("delivery type = %q", order.DeliveryType)
	}

	if len(ext.Candidates) != 1 {
		t.Fatalf("got %d candidates: %+v", len(ext.Candidates), ext.Candidates)
	}
	candidate := ext.Candidates[0]
	if candidate.RawText != "قميص أبيض" {
		t.Errorf("raw text = %q", candidate.RawText)
	}
	if candidate.NameText != "قميص" {
		t.Errorf("name text = %q", candidate.NameText)
	}
	if candidate.Color != "ابيض" {
		t.Errorf("color = %q", candidate.Color)
	}
	if candidate.SizeCode != SizeL {
		t.Errorf("size = %q", candidate.SizeCode)
	}
	if candidate.Quantity != 2 {
		t.Errorf("quantity = %d", candidate.Quantity)
	}
}

func TestExtract_CarryForward(t *testing.T) {
	ext := extract(t, "قميص احمر + L")
	if len(ext.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(ext.Candidates))
	}
	candidate := ext.Candidates[0]
	if candidate.Color != "احمر" {
		t.Errorf("color = %q", candidate.Color)
	}
	if candidate.SizeCode != SizeL {
		t.Errorf("size = %q", candidate.SizeCode)
	}
	if candidate.NameText != "قميص" {
		t.Errorf("name = %q", candidate.NameText)
	}
}

func TestExtract_AttributeOrderWithinSegment(t *testing.T) {
	// Size and color must both survive regardless of which comes last in
	// the segment.
	tests := []struct {
		name string
		line string
	}{
		{"color then size", "قميص ابيض لارج"},
		{"size then color", "قميص لارج ابيض"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := extract(t, "07701234567\n"+tt.line)
			if len(ext.Candidates) != 1 {
				t.Fatalf("got %d candidates", len(ext.Candidates))
			}
			candidate := ext.Candidates[0]
			if candidate.Color != "ابيض" {
				t.Errorf("color = %q, want ابيض", candidate.Color)
			}
			if candidate.SizeCode != SizeL {
				t.Errorf("size = %q, want L", candidate.SizeCode)
			}
			if candidate.NameText != "قميص" {
				t.Errorf("name = %q, want قميص", candidate.NameText)
			}
		})
	}
}

func TestExtract_LastSizeWinsInCandidate(t *testing.T) {
	ext := extract(t, "07701234567\nقميص L XL")
	if len(ext.Candidates) != 1 {
		t.Fatalf("got %d candidates", len(ext.Candidates))
	}
	if ext.Candidates[0].SizeCode != SizeXL {
		t.Errorf("size = %q, want XL", ext.Candidates[0].SizeCode)
	}
}

func TestExtract_ProductFirstMessageHasNoName(t *testing.T) {
	ext := extract(t, "قميص احمر L\n07701234567")
	if ext.Order.CustomerName != "" {
		t.Errorf("customer name = %q, want empty", ext.Order.CustomerName)
	}
	if len(ext.Candidates) != 1 {
		t.Fatalf("got %d candidates", len(ext.Candidates))
	}
}

func TestExtract_TrailingNumberIsQuantity(t *testing.T) {
	ext := extract(t, "07701234567\nقميص ابيض 2")
	if len(ext.Candidates) != 1 {
		t.Fatalf("got %d candidates", len(ext.Candidates))
	}
	if ext.Candidates[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", ext.Candidates[0].Quantity)
	}
}

func TestExtract_Barcode(t *testing.T) {
	ext := extract(t, "07701234567\n6291041500213 قميص")
	if len(ext.Candidates) != 1 {
		t.Fatalf("got %d candidates", len(ext.Candidates))
	}
	if ext.Candidates[0].Barcode != "6291041500213" {
		t.Errorf("barcode = %q", ext.Candidates[0].Barcode)
	}
}

func TestExtract_Notes(t *testing.T) {
	ext := extract(t, "07701234567\n!!!")
	if ext.Order.Notes != "!!!" {
		t.Errorf("notes = %q", ext.Order.Notes)
	}
	if len(ext.Candidates) != 0 {
		t.Errorf("symbols became a candidate: %+v", ext.Candidates)
	}
}

func TestExtract_EmptyMessage(t *testing.T) {
	ext := extract(t, "   \n  ")
	if len(ext.Candidates) != 0 {
		t.Errorf("candidates from empty message: %+v", ext.Candidates)
	}
	if ext.Order.CustomerName != "" || ext.Order.PrimaryPhone != "" {
		t.Errorf("fields from empty message: %+v", ext.Order)
	}
}
