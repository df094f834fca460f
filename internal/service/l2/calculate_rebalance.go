package l2_service

import (
	"iter"
	"mirrorbalance/internal/domain"
	"mirrorbalance/internal/logger"

	"github.com/shopspring/decimal"
)

const ratioPrecision = 16

type RebalanceTotals struct {
	PrimaryTotal   decimal.Decimal
	SecondaryTotal decimal.Decimal
	// Ratio is SecondaryTotal / PrimaryTotal
	Ratio decimal.Decimal
}

// ResolveInstrument finds the name and lot size for figi, trying shares,
// then ETFs, then currencies. Unknown FIGIs get a placeholder name and a
// lot of 1 and are reported as a warning, not an error.
func ResolveInstrument(catalogs domain.Catalogs, figi string) (domain.Instrument, bool) {
	instrument, ok := catalogs.Resolve(figi)
	if !ok {
		logger.Warn("instrument %s not found in any catalog, reporting as %q", figi, instrument.Name)
	}
	return instrument, ok
}

// lotsFor converts a currency amount into whole lots, rounding half away
// from zero. A position without a price has no meaningful lot count.
func lotsFor(amount, price decimal.Decimal, lot int64) int64 {
	if price.IsZero() {
		return 0
	}
	if lot <= 0 {
		lot = 1
	}
	unitCost := price.Mul(decimal.NewFromInt(lot))
	return amount.DivRound(unitCost, ratioPrecision).Round(0).IntPart()
}

func finalPosition(pair domain.ReconciledPair, ratio decimal.Decimal, catalogs domain.Catalogs) domain.FinalPosition {
	l, r := pair.Primary, pair.Secondary

	target := l.CurrentPrice.Mul(l.Quantity).Mul(ratio)
	amount := target.Sub(r.CurrentPrice.Mul(r.Quantity))

	instrument, resolved := ResolveInstrument(catalogs, pair.Figi())
	lots := lotsFor(amount, l.CurrentPrice, instrument.Lot)

	logger.Debug(
		"%s (%s): primary %s x %s, secondary %s x %s, target %s, amount %s, lot %d, lots %d",
		pair.Figi(), instrument.Name,
		l.Quantity, l.CurrentPrice,
		r.Quantity, r.CurrentPrice,
		target, amount, instrument.Lot, lots,
	)

	return domain.FinalPosition{
		Figi:            pair.Figi(),
		Name:            instrument.Name,
		RebalanceAmount: amount,
		RebalanceLots:   lots,
		Resolved:        resolved,
	}
}

// CalculateRebalance computes the totals of both portfolios up front and
// returns a sequence that yields one FinalPosition per pair, in pair
// order. The sequence is computed lazily against the fixed ratio, so it
// can be ranged over more than once.
func CalculateRebalance(pairs []domain.ReconciledPair, catalogs domain.Catalogs) (iter.Seq[domain.FinalPosition], *RebalanceTotals, error) {
	totals := RebalanceTotals{
		PrimaryTotal:   decimal.Zero,
		SecondaryTotal: decimal.Zero,
	}
	for _, pair := range pairs {
		totals.PrimaryTotal = totals.PrimaryTotal.Add(pair.Primary.Value())
		totals.SecondaryTotal = totals.SecondaryTotal.Add(pair.Secondary.Value())
	}

	if totals.PrimaryTotal.IsZero() {
		return nil, nil, domain.ErrZeroPrimaryValue
	}
	totals.Ratio = totals.SecondaryTotal.DivRound(totals.PrimaryTotal, ratioPrecision)

	logger.Debug(
		"primary total %s, secondary total %s, ratio %s",
		totals.PrimaryTotal, totals.SecondaryTotal, totals.Ratio,
	)

	seq := func(yield func(domain.FinalPosition) bool) {
		for _, pair := range pairs {
			if !yield(finalPosition(pair, totals.Ratio, catalogs)) {
				return
			}
		}
	}

	return seq, &totals, nil
}
