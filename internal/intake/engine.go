package intake

import (
	"context"
	"log/slog"
	"sync"
)

// OrderPersister stores the finalized order. Called exactly once per
// message; the engine never retries internally.
type OrderPersister interface {
	SaveOrder(ctx context.Context, order *ParsedOrder, msg InboundMessage) (orderID string, err error)
}

// EngineConfig carries the tunables of one engine instance.
type EngineConfig struct {
	// DeliveryFee is the flat courier fee added to billable orders.
	DeliveryFee int64
	// MatchThreshold overrides DefaultMatchThreshold when positive.
	MatchThreshold float64
	// MaxConcurrentItems bounds per-message catalog fan-out. Items share
	// no mutable state, so resolving them in parallel is safe.
	MaxConcurrentItems int
}

// Engine is the unified intake pipeline. Both the messaging boundary and
// the review surface go through it, so they can never disagree about an
// order's availability or review state.
type Engine struct {
	extractor    *Extractor
	matcher      *Matcher
	availability *AvailabilityResolver
	persister    OrderPersister
	deliveryFee  int64
	concurrency  int
	logger       *slog.Logger
}

func NewEngine(catalog CatalogSearcher, stock StockReader, persister OrderPersister, lexicon *Lexicon, cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if lexicon == nil {
		lexicon = NewLexicon()
	}
	concurrency := cfg.MaxConcurrentItems
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Engine{
		extractor:    NewExtractor(lexicon),
		matcher:      NewMatcher(catalog, lexicon, cfg.MatchThreshold, logger.With("component", "intake_matcher")),
		availability: NewAvailabilityResolver(stock, lexicon, logger.With("component", "intake_availability")),
		persister:    persister,
		deliveryFee:  cfg.DeliveryFee,
		concurrency:  concurrency,
		logger:       logger,
	}
}

// Result is one pipeline run's output. PersistErr is reported, not
// raised: a valid parse stays valid even when storage is down.
type Result struct {
	Order      *ParsedOrder
	Reply      string
	OrderID    string
	Persisted  bool
	PersistErr error
}

// Evaluate runs the pipeline without persisting. Total by construction:
// malformed input yields an empty order flagged for review, never an
// error.
func (e *Engine) Evaluate(ctx context.Context, rawText string, scope AccessScope, flaggedUpstream bool) *Result {
	extraction := e.extractor.Extract(Normalize(rawText))
	order := &extraction.Order

	order.LineItems = e.resolveItems(ctx, extraction.Candidates, scope)
	e.finalize(order, flaggedUpstream)

	return &Result{Order: order, Reply: ComposeReply(order)}
}

// Process runs Evaluate and hands the order to the persister once.
func (e *Engine) Process(ctx context.Context, msg InboundMessage, scope AccessScope) *Result {
	result := e.Evaluate(ctx, msg.RawText, scope, false)
	if e.persister == nil {
		return result
	}
	orderID, err := e.persister.SaveOrder(ctx, result.Order, msg)
	if err != nil {
		e.logger.Error("failed to persist parsed order",
			"channel_message_id", msg.ChannelMessageID,
			"sender_channel_id", msg.SenderChannelID,
			"error", err)
		result.PersistErr = err
		return result
	}
	result.OrderID = orderID
	result.Persisted = true
	return result
}

// Reevaluate re-derives availability and review state for an already
// parsed order, using its stored candidates against the current catalog.
// This is the single code path the review card shares with the webhook.
func (e *Engine) Reevaluate(ctx context.Context, order *ParsedOrder, scope AccessScope) *Result {
	candidates := make([]ProductCandidate, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		candidates = append(candidates, item.Candidate)
	}

	fresh := *order
	fresh.LineItems = e.resolveItems(ctx, candidates, scope)
	fresh.ReviewReasons = nil // do not alias the stored order's slice
	e.finalize(&fresh, false)

	return &Result{Order: &fresh, Reply: ComposeReply(&fresh)}
}

// resolveItems matches and availability-checks every candidate,
// fanning out up to the configured bound. Results land at their
// candidate's index, so ordering is stable.
func (e *Engine) resolveItems(ctx context.Context, candidates []ProductCandidate, scope AccessScope) []ResolvedLineItem {
	if len(candidates) == 0 {
		return nil
	}
	items := make([]ResolvedLineItem, len(candidates))
	semaphore := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int, candidate ProductCandidate) {
			defer wg.Done()
			defer func() { <-semaphore }()
			item := e.matcher.Resolve(ctx, candidate, scope)
			e.availability.Resolve(ctx, &item)
			items[i] = item
		}(i, candidate)
	}
	wg.Wait()
	return items
}

// finalize computes totals and the review verdict. An explicit amount
// from the message overrides the computed total but both are kept.
func (e *Engine) finalize(order *ParsedOrder, flaggedUpstream bool) {
	order.ComputedTotal = ComputeTotal(order, e.deliveryFee)
	if !order.ExplicitAmount {
		order.TotalAmount = order.ComputedTotal
	}
	DecideReview(order, flaggedUpstream)
}
