package l2_service

import (
	"fmt"
	"mirrorbalance/internal/domain"
)

func indexByFigi(positions []domain.PortfolioPosition) (map[string]domain.PortfolioPosition, error) {
	out := make(map[string]domain.PortfolioPosition, len(positions))
	for _, p := range positions {
		if _, ok := out[p.Figi]; ok {
			return nil, fmt.Errorf("figi %s: %w", p.Figi, domain.ErrDuplicateFigi)
		}
		out[p.Figi] = p
	}
	return out, nil
}

// Reconcile pads both position sets so that each holds exactly one entry
// for every FIGI held by either side. A FIGI held only on one side is
// added to the other as a zero-quantity copy, after that side's own
// positions and in the order it appears in the input. The inputs are not
// modified.
func Reconcile(primary, secondary []domain.PortfolioPosition) ([]domain.PortfolioPosition, []domain.PortfolioPosition, error) {
	primaryByFigi, err := indexByFigi(primary)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid primary portfolio: %w", err)
	}
	secondaryByFigi, err := indexByFigi(secondary)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid secondary portfolio: %w", err)
	}

	primaryOut := append([]domain.PortfolioPosition{}, primary...)
	secondaryOut := append([]domain.PortfolioPosition{}, secondary...)

	for _, p := range primary {
		if _, ok := secondaryByFigi[p.Figi]; !ok {
			secondaryOut = append(secondaryOut, p.Zeroed())
		}
	}
	for _, s := range secondary {
		if _, ok := primaryByFigi[s.Figi]; !ok {
			primaryOut = append(primaryOut, s.Zeroed())
		}
	}

	return primaryOut, secondaryOut, nil
}

// Pair joins reconciled position sets on FIGI, in primary order. FIGIs
// missing from either side are skipped, which cannot happen for the
// output of Reconcile.
func Pair(primary, secondary []domain.PortfolioPosition) ([]domain.ReconciledPair, error) {
	if _, err := indexByFigi(primary); err != nil {
		return nil, fmt.Errorf("invalid primary portfolio: %w", err)
	}
	secondaryByFigi, err := indexByFigi(secondary)
	if err != nil {
		return nil, fmt.Errorf("invalid secondary portfolio: %w", err)
	}

	out := make([]domain.ReconciledPair, 0, len(primary))
	for _, p := range primary {
		s, ok := secondaryByFigi[p.Figi]
		if !ok {
			continue
		}
		out = append(out, domain.ReconciledPair{
			Primary:   p,
			Secondary: s,
		})
	}
	return out, nil
}
