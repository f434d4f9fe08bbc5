package intake

// Package intake turns a free-form chat message into a structured,
// availability-checked order. It is a pure library: transport, storage and
// UI collaborators are provided through the interfaces in engine.go.

import (
	"time"
)

// InboundMessage is the canonical shape of one chat message as the engine
// sees it. Built once at the messaging boundary; immutable afterwards.
type InboundMessage struct {
	ChannelMessageID string
	SenderChannelID  int64
	RawText          string
	ReceivedAt       time.Time
}

// LineKind classifies one text segment of the inbound message.
type LineKind string

const (
	LinePhone            LineKind = "phone"
	LineSecondaryPhone   LineKind = "secondary_phone"
	LineAmount           LineKind = "amount"
	LineDeliveryModeHint LineKind = "delivery_mode_hint"
	LineAddressHint      LineKind = "address_hint"
	LineProductCandidate LineKind = "product_candidate"
	LineNote             LineKind = "note"
	LineCustomerName     LineKind = "customer_name"
)

// ParsedLine records how a segment was classified and what was extracted
// from it. Kept on the order so the review card can show its work.
type ParsedLine struct {
	Kind  LineKind `json:"kind"`
	Raw   string   `json:"raw"`
	Value string   `json:"value,omitempty"`
}

// ProductCandidate is one product mention after tokenization, with its
// attributes already canonicalized (size code, lexicon color name).
type ProductCandidate struct {
	RawText  string `json:"raw_text"`
	NameText string `json:"name_text"`
	Quantity int    `json:"quantity"`
	SizeCode string `json:"size_code,omitempty"`
	Color    string `json:"color,omitempty"`
	Barcode  string `json:"barcode,omitempty"`
}

// CatalogVariant is a read-only snapshot of one (color, size) combination.
// Stock counts reflect the moment the catalog was queried.
type CatalogVariant struct {
	ProductID   int64  `json:"product_id"`
	VariantID   int64  `json:"variant_id"`
	ProductName string `json:"product_name"`
	ColorName   string `json:"color_name"`
	SizeCode    string `json:"size_code"`
	Barcode     string `json:"barcode"`
	UnitPrice   int64  `json:"unit_price"`
	OnHandQty   int    `json:"on_hand_qty"`
	ReservedQty int    `json:"reserved_qty"`
}

// AvailableQty is sellable stock: on-hand minus reserved, never negative.
func (v CatalogVariant) AvailableQty() int {
	available := v.OnHandQty - v.ReservedQty
	if available < 0 {
		return 0
	}
	return available
}

// CatalogProduct groups the active variants of one catalog product.
type CatalogProduct struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	DepartmentID int64            `json:"department_id"`
	Variants     []CatalogVariant `json:"variants"`
}

// AvailabilityStatus is the per-item outcome of availability resolution.
type AvailabilityStatus string

const (
	StatusOK                AvailabilityStatus = "ok"
	StatusInsufficient      AvailabilityStatus = "insufficient"
	StatusOut               AvailabilityStatus = "out"
	StatusMissingAttributes AvailabilityStatus = "missing_attributes"
	StatusNotFound          AvailabilityStatus = "not_found"
	StatusNotPermitted      AvailabilityStatus = "not_permitted"
)

// MissingAttributes flags attributes the customer never specified for a
// product that has more than one choice. Independent of variant selection.
type MissingAttributes struct {
	NeedColor bool `json:"need_color"`
	NeedSize  bool `json:"need_size"`
}

// ResolvedLineItem is one candidate after matching and availability
// resolution. Created by the matcher, finalized by the availability
// resolver, read-only afterwards.
type ResolvedLineItem struct {
	Candidate    ProductCandidate   `json:"candidate"`
	Product      *CatalogProduct    `json:"product,omitempty"`
	Variant      *CatalogVariant    `json:"variant,omitempty"`
	Quantity     int                `json:"quantity"`
	UnitPrice    int64              `json:"unit_price"`
	Status       AvailabilityStatus `json:"status"`
	AvailableQty int                `json:"available_qty"`
	Missing      MissingAttributes  `json:"missing"`
	WeakMatch    bool               `json:"weak_match"`
}

// Billable reports whether the item contributes to the order total.
func (i ResolvedLineItem) Billable() bool {
	return i.Status == StatusOK
}

// DeliveryType distinguishes courier delivery from local pickup.
type DeliveryType string

const (
	DeliveryCourier DeliveryType = "توصيل"
	DeliveryPickup  DeliveryType = "محلي"
)

// ParsedOrder is the finished pipeline output handed to the persister.
type ParsedOrder struct {
	CustomerName   string             `json:"customer_name"`
	PrimaryPhone   string             `json:"primary_phone"`
	SecondaryPhone string             `json:"secondary_phone,omitempty"`
	Address        string             `json:"address"`
	City           string             `json:"city,omitempty"`
	DeliveryType   DeliveryType       `json:"delivery_type"`
	LineItems      []ResolvedLineItem `json:"line_items"`
	Notes          string             `json:"notes,omitempty"`

	// TotalAmount is the billable total. When ExplicitAmount is set the
	// operator quoted a price in the message and TotalAmount carries it;
	// ComputedTotal keeps the engine's own arithmetic for the review card.
	TotalAmount    int64 `json:"total_amount"`
	ComputedTotal  int64 `json:"computed_total"`
	ExplicitAmount bool  `json:"explicit_amount"`

	NeedsReview   bool         `json:"needs_review"`
	ReviewReasons []string     `json:"review_reasons"`
	PrimaryReason string       `json:"primary_reason,omitempty"`
	Lines         []ParsedLine `json:"lines"`
}

// AccessScope is the caller's catalog visibility: either everything or an
// allow-list of department ids.
type AccessScope struct {
	Full        bool
	Departments map[int64]struct{}
}

// FullAccess returns a scope that allows every department.
func FullAccess() AccessScope {
	return AccessScope{Full: true}
}

// ScopeFor returns a scope restricted to the given department ids.
func ScopeFor(departmentIDs ...int64) AccessScope {
	departments := make(map[int64]struct{}, len(departmentIDs))
	for _, id := range departmentIDs {
		departments[id] = struct{}{}
	}
	return AccessScope{Departments: departments}
}

// Allows reports whether the scope covers a department.
func (s AccessScope) Allows(departmentID int64) bool {
	if s.Full {
		return true
	}
	_, ok := s.Departments[departmentID]
	return ok
}
