package domain

import (
	"github.com/shopspring/decimal"
)

const InstrumentTypeCurrency = "currency"

// PortfolioPosition is a read-only snapshot of one holding. The owning
// account is implied by whichever portfolio it was fetched from.
type PortfolioPosition struct {
	Figi           string
	InstrumentType string
	Quantity       decimal.Decimal
	CurrentPrice   decimal.Decimal
}

func (p PortfolioPosition) Value() decimal.Decimal {
	return p.Quantity.Mul(p.CurrentPrice)
}

// Zeroed returns a copy that keeps the FIGI, type and price but holds nothing
func (p PortfolioPosition) Zeroed() PortfolioPosition {
	p.Quantity = decimal.Zero
	return p
}

// ReconciledPair lines up the primary and secondary holdings of one FIGI.
// Either side may be a zeroed placeholder.
type ReconciledPair struct {
	Primary   PortfolioPosition
	Secondary PortfolioPosition
}

func (p ReconciledPair) Figi() string {
	return p.Primary.Figi
}
