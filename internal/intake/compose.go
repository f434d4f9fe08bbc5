package intake

import (
	"fmt"
	"strconv"
	"strings"
)

// ComposeReply renders the outbound confirmation for an order. Three
// templates: all items available, a mix, or nothing available. A numeric
// total appears only when at least one item is billable.
func ComposeReply(order *ParsedOrder) string {
	var okItems, badItems []ResolvedLineItem
	for _, item := range order.LineItems {
		if item.Billable() {
			okItems = append(okItems, item)
		} else {
			badItems = append(badItems, item)
		}
	}

	var b strings.Builder
	switch {
	case len(order.LineItems) == 0:
		b.WriteString("⚠️ لم نتمكن من قراءة أي منتج من الرسالة\n")
		b.WriteString("الرجاء إعادة إرسال الطلب بصيغة أوضح.")
		return b.String()
	case len(badItems) == 0:
		b.WriteString("✅ تم استلام الطلب\n")
	default:
		b.WriteString("⚠️ الطلب يحتاج مراجعة\n")
	}

	if order.PrimaryPhone != "" {
		b.WriteString("الهاتف: " + order.PrimaryPhone + "\n")
	}

	for _, item := range okItems {
		b.WriteString("✅ " + itemLine(item) + "\n")
	}
	for _, item := range badItems {
		b.WriteString("❌ غير متوفر " + itemLine(item))
		if _, text, ok := itemReason(item); ok {
			b.WriteString(" — " + text)
		}
		b.WriteString("\n")
	}

	if len(badItems) > 0 {
		b.WriteString("الرجاء اختيار بديل قبل الموافقة على الطلب.\n")
	}

	if len(okItems) > 0 {
		label := "المجموع"
		if len(badItems) > 0 {
			label = "المجموع الجزئي"
		}
		b.WriteString(label + ": " + FormatAmount(order.TotalAmount) + " د.ع")
		if order.DeliveryType == DeliveryCourier && !order.ExplicitAmount {
			b.WriteString(" (مع التوصيل)")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// itemLine renders one item as "name (color) size × qty".
func itemLine(item ResolvedLineItem) string {
	name := itemName(item)
	color := item.Candidate.Color
	size := item.Candidate.SizeCode
	if item.Variant != nil {
		if item.Variant.ColorName != "" {
			color = item.Variant.ColorName
		}
		if item.Variant.SizeCode != "" {
			size = item.Variant.SizeCode
		}
	}

	var b strings.Builder
	b.WriteString(name)
	if color != "" {
		b.WriteString(" (" + color + ")")
	}
	if size != "" {
		b.WriteString(" " + size)
	}
	fmt.Fprintf(&b, " × %d", item.Quantity)
	return b.String()
}

// FormatAmount groups digits in thousands: 30000 → "30,000".
func FormatAmount(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}
