package l1_service

import (
	"context"
	"fmt"
	"mirrorbalance/internal/domain"
	"mirrorbalance/internal/logger"
	"mirrorbalance/internal/repository"
	"strings"

	"github.com/maja42/goval"
)

// PositionFilter reports whether a position takes part in rebalancing
type PositionFilter func(p domain.PortfolioPosition) (bool, error)

// ExcludeInstrumentTypes drops positions of any of the given instrument types
func ExcludeInstrumentTypes(instrumentTypes ...string) PositionFilter {
	excluded := map[string]struct{}{}
	for _, t := range instrumentTypes {
		excluded[strings.ToLower(t)] = struct{}{}
	}
	return func(p domain.PortfolioPosition) (bool, error) {
		_, ok := excluded[strings.ToLower(p.InstrumentType)]
		return !ok, nil
	}
}

func positionVariables(p domain.PortfolioPosition) map[string]interface{} {
	return map[string]interface{}{
		"instrumentType": p.InstrumentType,
		"figi":           p.Figi,
		"quantity":       p.Quantity.InexactFloat64(),
		"price":          p.CurrentPrice.InexactFloat64(),
	}
}

// NewExpressionFilter compiles a boolean expression over the variables
// instrumentType, figi, quantity and price, e.g.
//
//	instrumentType != "currency" && quantity > 0
//
// The expression is evaluated once against an empty position so that
// syntax errors surface at startup rather than mid-run.
func NewExpressionFilter(expression string) (PositionFilter, error) {
	eval := goval.NewEvaluator()
	filter := func(p domain.PortfolioPosition) (bool, error) {
		result, err := eval.Evaluate(expression, positionVariables(p), nil)
		if err != nil {
			return false, fmt.Errorf("failed to evaluate position filter %q: %w", expression, err)
		}
		keep, ok := result.(bool)
		if !ok {
			return false, fmt.Errorf("position filter %q returned %T, expected bool", expression, result)
		}
		return keep, nil
	}

	if _, err := filter(domain.PortfolioPosition{}); err != nil {
		return nil, err
	}
	return filter, nil
}

type PortfolioService interface {
	GetPositions(ctx context.Context, accountName string, filter PositionFilter) ([]domain.PortfolioPosition, error)
}

type portfolioServiceHandler struct {
	InvestRepository   repository.InvestRepository
	ReferenceDataCache ReferenceDataCache
}

func NewPortfolioService(investRepository repository.InvestRepository, referenceDataCache ReferenceDataCache) PortfolioService {
	return portfolioServiceHandler{
		InvestRepository:   investRepository,
		ReferenceDataCache: referenceDataCache,
	}
}

// GetPositions fetches the current holdings of the named open account.
// Portfolios are never cached. A nil filter keeps every position.
func (h portfolioServiceHandler) GetPositions(ctx context.Context, accountName string, filter PositionFilter) ([]domain.PortfolioPosition, error) {
	accounts, err := h.ReferenceDataCache.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	account, ok := accounts[accountName]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", accountName, domain.ErrNotFound)
	}

	positions, err := h.InvestRepository.GetPortfolio(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio for account %q: %w", accountName, err)
	}

	if filter == nil {
		return positions, nil
	}

	out := []domain.PortfolioPosition{}
	for _, p := range positions {
		keep, err := filter(p)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, p)
		}
	}

	logger.FromContext(ctx).Debugf("account %s: kept %d of %d positions", accountName, len(out), len(positions))
	return out, nil
}
