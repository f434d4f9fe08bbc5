package intake

import (
	"fmt"
	"sort"
)

// ReasonNoItems is reported when a message yields no product candidates
// at all.
const ReasonNoItems = "could not parse any items"

// reason priorities, most severe first. The primary reason shown on the
// review card is the highest-priority one; all reasons are listed as
// details.
const (
	prioritySizeSoldOut      = 1
	priorityColorUnavailable = 2
	priorityInsufficient     = 3
	priorityNotFound         = 4
	priorityNotPermitted     = 5
	priorityGeneric          = 6
)

type reviewReason struct {
	priority int
	order    int // arrival order, stable within one priority
	text     string
}

// DecideReview aggregates per-item outcomes into the order-level review
// verdict: the flag, the ordered de-duplicated reason list and the
// primary reason.
func DecideReview(order *ParsedOrder, upstreamFlag bool) {
	var reasons []reviewReason
	add := func(priority int, text string) {
		reasons = append(reasons, reviewReason{priority: priority, order: len(reasons), text: text})
	}

	needsReview := upstreamFlag
	if len(order.LineItems) == 0 {
		needsReview = true
		add(priorityNotFound, ReasonNoItems)
	}
	for _, item := range order.LineItems {
		if item.Status != StatusOK {
			needsReview = true
		}
		if priority, text, ok := itemReason(item); ok {
			needsReview = true
			add(priority, text)
		}
	}

	sort.SliceStable(reasons, func(i, j int) bool {
		if reasons[i].priority != reasons[j].priority {
			return reasons[i].priority < reasons[j].priority
		}
		return reasons[i].order < reasons[j].order
	})

	order.NeedsReview = needsReview
	order.ReviewReasons = order.ReviewReasons[:0]
	seen := make(map[string]struct{}, len(reasons))
	for _, r := range reasons {
		if _, dup := seen[r.text]; dup {
			continue
		}
		seen[r.text] = struct{}{}
		order.ReviewReasons = append(order.ReviewReasons, r.text)
	}
	if len(order.ReviewReasons) > 0 {
		order.PrimaryReason = order.ReviewReasons[0]
	} else {
		order.PrimaryReason = ""
	}
}

// itemReason produces the single reason for one problematic item,
// first matching pattern wins.
func itemReason(item ResolvedLineItem) (priority int, text string, ok bool) {
	name := itemName(item)

	switch item.Status {
	case StatusOut, StatusInsufficient:
		if item.Variant != nil && item.Product != nil {
			color := item.Variant.ColorName
			size := item.Variant.SizeCode
			if size != "" && colorHasOtherSizeInStock(item.Product, color, size) {
				return prioritySizeSoldOut, fmt.Sprintf("المقاس %s نافذ من %s باللون %s", size, name, color), true
			}
			if size != "" && sizeHasOtherColorInStock(item.Product, color, size) {
				return priorityColorUnavailable, fmt.Sprintf("اللون %s غير متوفر لـ %s بالمقاس %s", color, name, size), true
			}
		}
		if item.Status == StatusInsufficient {
			return priorityInsufficient, fmt.Sprintf("المتوفر من %s هو %d فقط والمطلوب %d", name, item.AvailableQty, item.Quantity), true
		}
		return priorityGeneric, fmt.Sprintf("%s نافذ من المخزون", name), true
	case StatusNotFound:
		return priorityNotFound, fmt.Sprintf("المنتج \"%s\" غير موجود في الكتالوج", name), true
	case StatusNotPermitted:
		return priorityNotPermitted, fmt.Sprintf("%s خارج صلاحية القسم", name), true
	case StatusMissingAttributes:
		switch {
		case item.Missing.NeedColor && item.Missing.NeedSize:
			return priorityGeneric, fmt.Sprintf("حدد اللون والمقاس لـ %s", name), true
		case item.Missing.NeedSize:
			return priorityGeneric, fmt.Sprintf("حدد المقاس لـ %s", name), true
		case item.Missing.NeedColor:
			return priorityGeneric, fmt.Sprintf("حدد اللون لـ %s", name), true
		default:
			return priorityGeneric, fmt.Sprintf("حدد اللون والمقاس لـ %s", name), true
		}
	}

	// A below-threshold match with sufficient stock is accepted as-is;
	// the WeakMatch flag stays on the item for the review card but does
	// not by itself force review.
	return 0, "", false
}

// itemName prefers the catalog name; an unmatched item falls back to what
// the customer wrote.
func itemName(item ResolvedLineItem) string {
	if item.Product != nil {
		return item.Product.Name
	}
	if item.Candidate.NameText != "" {
		return item.Candidate.NameText
	}
	return item.Candidate.RawText
}

// colorHasOtherSizeInStock reports whether the requested color is stocked
// in some other size, the "size sold out" case.
func colorHasOtherSizeInStock(product *CatalogProduct, color, size string) bool {
	for _, variant := range product.Variants {
		if !sameColor(variant.ColorName, color) {
			continue
		}
		if Fold(variant.SizeCode) == Fold(size) {
			continue
		}
		if variant.AvailableQty() > 0 {
			return true
		}
	}
	return false
}

// sizeHasOtherColorInStock reports whether the requested size is stocked
// in some other color, the "color unavailable" case.
func sizeHasOtherColorInStock(product *CatalogProduct, color, size string) bool {
	for _, variant := range product.Variants {
		if Fold(variant.SizeCode) != Fold(size) {
			continue
		}
		if sameColor(variant.ColorName, color) {
			continue
		}
		if variant.AvailableQty() > 0 {
			return true
		}
	}
	return false
}
