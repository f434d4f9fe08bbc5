package intake

import (
	"context"
	"log/slog"
)

// StockLevel is the inventory answer for one variant.
type StockLevel struct {
	OnHand   int
	Reserved int
}

// Available is sellable stock, clamped at zero.
func (s StockLevel) Available() int {
	available := s.OnHand - s.Reserved
	if available < 0 {
		return 0
	}
	return available
}

// StockReader is the inventory capability: authoritative counts for one
// variant. The catalog search already carries stock snapshots; this read
// refreshes the chosen variant so the ok/insufficient decision is made on
// live numbers.
type StockReader interface {
	VariantStock(ctx context.Context, productID, variantID int64) (StockLevel, error)
}

// AvailabilityResolver assigns the final status to each matched item.
type AvailabilityResolver struct {
	stock   StockReader
	lexicon *Lexicon
	logger  *slog.Logger
}

func NewAvailabilityResolver(stock StockReader, lexicon *Lexicon, logger *slog.Logger) *AvailabilityResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvailabilityResolver{stock: stock, lexicon: lexicon, logger: logger}
}

// Resolve finalizes one item's availability status. The status ladder,
// most severe first: not_found, not_permitted, missing_attributes, out,
// insufficient, ok. A failed inventory read falls back to the catalog
// snapshot rather than failing the item.
func (r *AvailabilityResolver) Resolve(ctx context.Context, item *ResolvedLineItem) {
	if item.Status == StatusNotPermitted {
		item.AvailableQty = 0
		return
	}
	if item.Product == nil || item.Variant == nil {
		item.Status = StatusNotFound
		item.AvailableQty = 0
		return
	}

	if r.lexicon.RequiresAttributes(item.Product.Category) {
		if item.Candidate.Barcode == "" && (item.Candidate.Color == "" || item.Candidate.SizeCode == "") {
			item.Status = StatusMissingAttributes
			item.AvailableQty = r.availableFor(ctx, item)
			return
		}
	}

	item.AvailableQty = r.availableFor(ctx, item)
	requested := item.Quantity
	switch {
	case item.AvailableQty == 0:
		item.Status = StatusOut
	case item.AvailableQty < requested:
		item.Status = StatusInsufficient
	default:
		item.Status = StatusOK
	}
}

func (r *AvailabilityResolver) availableFor(ctx context.Context, item *ResolvedLineItem) int {
	if r.stock != nil {
		level, err := r.stock.VariantStock(ctx, item.Variant.ProductID, item.Variant.VariantID)
		if err == nil {
			return level.Available()
		}
		r.logger.Warn("inventory lookup failed, using catalog snapshot",
			"product_id", item.Variant.ProductID,
			"variant_id", item.Variant.VariantID,
			"error", err)
	}
	return item.Variant.AvailableQty()
}

// ComputeTotal sums unit price × quantity over billable items only and
// adds the delivery fee when the order ships and at least one item is
// billable. An order with zero billable items never carries a fee.
func ComputeTotal(order *ParsedOrder, deliveryFee int64) int64 {
	var total int64
	billable := 0
	for _, item := range order.LineItems {
		if !item.Billable() {
			continue
		}
		total += item.UnitPrice * int64(item.Quantity)
		billable++
	}
	if billable > 0 && order.DeliveryType == DeliveryCourier {
		total += deliveryFee
	}
	return total
}
