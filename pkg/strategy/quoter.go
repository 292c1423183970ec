package strategy

import (
	"math"

	"quotebot/pkg/exchange"
)

// Params control quoting behaviour. Spread is the total width between the
// quoted bid and ask; SkewFactor scales how strongly quotes lean against the
// current inventory; DefaultPrice anchors quotes when an instrument's book is
// completely empty.
type Params struct {
	Spread       float64
	SkewFactor   float64
	DefaultPrice float64
	BaseSize     int64

	// Disabled lists tickers that must not be quoted. Empty by default:
	// the strategy quotes every instrument it was constructed with.
	Disabled map[string]bool
}

// DefaultParams returns the stock quoting configuration.
func DefaultParams() Params {
	return Params{
		Spread:       1.0,
		SkewFactor:   0.5,
		DefaultPrice: 1000.0,
		BaseSize:     5,
	}
}

// Quote is one two-sided priced quote for an instrument.
type Quote struct {
	BuyPrice  float64
	SellPrice float64
	Size      int64
}

// MidPrice derives the reference price from the top of the book.
// Fallback order: both sides -> midpoint, bids only -> best bid,
// asks only -> best ask, empty book -> fallback.
func MidPrice(bids, asks []exchange.Rest, fallback float64) float64 {
	switch {
	case len(bids) > 0 && len(asks) > 0:
		return (bids[0].Price + asks[0].Price) / 2
	case len(bids) > 0:
		return bids[0].Price
	case len(asks) > 0:
		return asks[0].Price
	default:
		return fallback
	}
}

// AlignToTick rounds price to the nearest multiple of tick, ties away from
// zero. Prices are positive in practice, so this is round-half-up.
// A non-positive tick is treated as 1.0.
func AlignToTick(price, tick float64) float64 {
	if tick <= 0 {
		tick = 1.0
	}
	return math.Round(price/tick) * tick
}

// positionSkew computes the inventory lean. A long position skews both
// quotes down (sell more readily, buy less), a short position skews them up.
// Unbounded instruments carry no skew.
func positionSkew(pos, limit int64, factor float64) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(pos) / float64(limit) * factor
}

// quoteSize shrinks the order size as inventory approaches the limit.
// Both thresholds test the original position; the stricter rule wins.
func quoteSize(base, pos, limit int64) int64 {
	size := base
	if limit <= 0 {
		return size
	}
	dist := pos
	if dist < 0 {
		dist = -dist
	}
	if float64(dist) > 0.8*float64(limit) {
		size = max(1, base/2)
	}
	if float64(dist) > 0.9*float64(limit) {
		size = 1
	}
	return size
}

// ComputeQuote runs the full pricing pipeline for one instrument: reference
// mid, inventory skew, half-spread placement, tick alignment, size policy.
// It is a pure function of its inputs.
func ComputeQuote(side exchange.BookSide, inst exchange.Instrument, pos int64, p Params) Quote {
	mid := MidPrice(side.Bids, side.Asks, p.DefaultPrice)
	skew := positionSkew(pos, inst.PosLimit, p.SkewFactor)
	half := p.Spread / 2

	return Quote{
		BuyPrice:  AlignToTick(mid-half-skew, inst.TickSize),
		SellPrice: AlignToTick(mid+half-skew, inst.TickSize),
		Size:      quoteSize(p.BaseSize, pos, inst.PosLimit),
	}
}
