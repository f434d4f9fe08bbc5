package intake

import (
	"strings"
	"testing"
)

func TestComposeReply_AllAvailable(t *testing.T) {
	product := shirtProduct()
	order := &ParsedOrder{
		PrimaryPhone: "07701234567",
		DeliveryType: DeliveryCourier,
		TotalAmount:  35000,
		LineItems: []ResolvedLineItem{
			{
				Candidate: ProductCandidate{NameText: "قميص"},
				Product:   &product,
				Variant:   &product.Variants[0],
				Quantity:  2,
				UnitPrice: 15000,
				Status:    StatusOK,
			},
		},
	}

	reply := ComposeReply(order)
	if !strings.HasPrefix(reply, "✅ تم استلام الطلب") {
		t.Errorf("reply = %q, want the confirmation header", reply)
	}
	if !strings.Contains(reply, "الهاتف: 07701234567") {
		t.Errorf("reply missing phone line: %q", reply)
	}
	if !strings.Contains(reply, "✅ قميص رجالي (ابيض) L × 2") {
		t.Errorf("reply missing item line: %q", reply)
	}
	if !strings.Contains(reply, "المجموع: 35,000 د.ع (مع التوصيل)") {
		t.Errorf("reply missing total: %q", reply)
	}
}

func TestComposeReply_Mixed(t *testing.T) {
	product := shirtProduct()
	order := &ParsedOrder{
		DeliveryType: DeliveryPickup,
		TotalAmount:  15000,
		LineItems: []ResolvedLineItem{
			{
				Candidate: ProductCandidate{NameText: "قميص"},
				Product:   &product,
				Variant:   &product.Variants[0],
				Quantity:  1,
				UnitPrice: 15000,
				Status:    StatusOK,
			},
			{
				Candidate: ProductCandidate{RawText: "بنطرون جينز", NameText: "بنطرون جينز"},
				Quantity:  1,
				Status:    StatusNotFound,
			},
		},
	}

	reply := ComposeReply(order)
	if !strings.HasPrefix(reply, "⚠️ الطلب يحتاج مراجعة") {
		t.Errorf("reply = %q, want the review header", reply)
	}
	if !strings.Contains(reply, "❌ غير متوفر بنطرون جينز × 1") {
		t.Errorf("reply missing rejected line: %q", reply)
	}
	if !strings.Contains(reply, "غير موجود في الكتالوج") {
		t.Errorf("reply missing the not-found reason: %q", reply)
	}
	if !strings.Contains(reply, "الرجاء اختيار بديل قبل الموافقة على الطلب.") {
		t.Errorf("reply missing the alternative prompt: %q", reply)
	}
	if !strings.Contains(reply, "المجموع الجزئي: 15,000 د.ع") {
		t.Errorf("reply missing partial total: %q", reply)
	}
	if strings.Contains(reply, "مع التوصيل") {
		t.Errorf("pickup order mentions delivery: %q", reply)
	}
}

func TestComposeReply_NothingParsed(t *testing.T) {
	reply := ComposeReply(&ParsedOrder{})
	if !strings.Contains(reply, "لم نتمكن من قراءة أي منتج") {
		t.Errorf("reply = %q", reply)
	}
	if strings.Contains(reply, "المجموع") {
		t.Errorf("empty order shows a total: %q", reply)
	}
}

func TestComposeReply_NoTotalWithoutBillableItems(t *testing.T) {
	order := &ParsedOrder{
		DeliveryType: DeliveryCourier,
		LineItems: []ResolvedLineItem{
			{Candidate: ProductCandidate{RawText: "عباية"}, Quantity: 1, Status: StatusNotFound},
		},
	}
	reply := ComposeReply(order)
	if strings.Contains(reply, "المجموع") {
		t.Errorf("total rendered without billable items: %q", reply)
	}
}

func TestComposeReply_ExplicitAmountSuppressesDeliveryNote(t *testing.T) {
	product := shirtProduct()
	order := &ParsedOrder{
		DeliveryType:   DeliveryCourier,
		TotalAmount:    25000,
		ExplicitAmount: true,
		LineItems: []ResolvedLineItem{
			{
				Candidate: ProductCandidate{NameText: "قميص"},
				Product:   &product,
				Variant:   &product.Variants[0],
				Quantity:  1,
				UnitPrice: 15000,
				Status:    StatusOK,
			},
		},
	}
	reply := ComposeReply(order)
	if !strings.Contains(reply, "المجموع: 25,000 د.ع") {
		t.Errorf("reply = %q", reply)
	}
	if strings.Contains(reply, "مع التوصيل") {
		t.Errorf("explicit amount still annotated with delivery: %q", reply)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0"},
		{500, "500"},
		{1000, "1,000"},
		{30000, "30,000"},
		{1250000, "1,250,000"},
		{-15000, "-15,000"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.amount); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
