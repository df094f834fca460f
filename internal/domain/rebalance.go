package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinalPosition is the advisory outcome for one instrument. A positive
// amount means the secondary account should buy, a negative one sell.
type FinalPosition struct {
	Figi            string
	Name            string
	RebalanceAmount decimal.Decimal
	RebalanceLots   int64
	Resolved        bool
}

// SortForReport orders positions by descending rebalance amount so the
// largest purchases come first. Equal amounts fall back to FIGI.
func SortForReport(positions []FinalPosition) {
	sort.SliceStable(positions, func(i, j int) bool {
		if c := positions[i].RebalanceAmount.Cmp(positions[j].RebalanceAmount); c != 0 {
			return c > 0
		}
		return positions[i].Figi < positions[j].Figi
	})
}

type RebalanceReport struct {
	RunID            uuid.UUID
	PrimaryAccount   string
	SecondaryAccount string
	PrimaryTotal     decimal.Decimal
	SecondaryTotal   decimal.Decimal
	Ratio            decimal.Decimal
	Positions        []FinalPosition
	GeneratedAt      time.Time
	Profile          *Profile
}
