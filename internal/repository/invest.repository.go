package repository

import (
	"context"
	"fmt"
	"mirrorbalance/internal/domain"
	"mirrorbalance/pkg/tinkoff"
)

// InvestRepository is the brokerage data provider the rebalancer reads from.
// Implementations return provider errors wrapped with %w and never retry.
type InvestRepository interface {
	GetAccounts(ctx context.Context) ([]domain.Account, error)
	GetShares(ctx context.Context) ([]domain.Instrument, error)
	GetEtfs(ctx context.Context) ([]domain.Instrument, error)
	GetCurrencies(ctx context.Context) ([]domain.Instrument, error)
	GetPortfolio(ctx context.Context, account domain.Account) ([]domain.PortfolioPosition, error)
}

type tinkoffInvestRepositoryHandler struct {
	Client *tinkoff.Client
}

func NewTinkoffInvestRepository(client *tinkoff.Client) InvestRepository {
	return tinkoffInvestRepositoryHandler{
		Client: client,
	}
}

func accountStatusFromTinkoff(status string) domain.AccountStatus {
	switch status {
	case tinkoff.AccountStatusOpen:
		return domain.AccountStatusOpen
	case tinkoff.AccountStatusNew:
		return domain.AccountStatusNew
	}
	return domain.AccountStatusClosed
}

func (h tinkoffInvestRepositoryHandler) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := h.Client.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	out := []domain.Account{}
	for _, a := range accounts {
		out = append(out, domain.Account{
			ID:     a.ID,
			Name:   a.Name,
			Status: accountStatusFromTinkoff(a.Status),
		})
	}
	return out, nil
}

func instrumentsFromTinkoff(in []tinkoff.Instrument, kind domain.InstrumentKind) []domain.Instrument {
	out := make([]domain.Instrument, 0, len(in))
	for _, i := range in {
		out = append(out, domain.Instrument{
			Figi:   i.Figi,
			Ticker: i.Ticker,
			Name:   i.Name,
			Lot:    i.Lot,
			Kind:   kind,
		})
	}
	return out
}

func (h tinkoffInvestRepositoryHandler) GetShares(ctx context.Context) ([]domain.Instrument, error) {
	shares, err := h.Client.Shares(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	return instrumentsFromTinkoff(shares, domain.InstrumentKindShare), nil
}

func (h tinkoffInvestRepositoryHandler) GetEtfs(ctx context.Context) ([]domain.Instrument, error) {
	etfs, err := h.Client.Etfs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get etfs: %w", err)
	}
	return instrumentsFromTinkoff(etfs, domain.InstrumentKindEtf), nil
}

func (h tinkoffInvestRepositoryHandler) GetCurrencies(ctx context.Context) ([]domain.Instrument, error) {
	currencies, err := h.Client.Currencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get currencies: %w", err)
	}
	return instrumentsFromTinkoff(currencies, domain.InstrumentKindCurrency), nil
}

func (h tinkoffInvestRepositoryHandler) GetPortfolio(ctx context.Context, account domain.Account) ([]domain.PortfolioPosition, error) {
	portfolio, err := h.Client.GetPortfolio(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio for account %s: %w", account.ID, err)
	}

	out := make([]domain.PortfolioPosition, 0, len(portfolio.Positions))
	for _, p := range portfolio.Positions {
		quantity, err := p.Quantity.Decimal()
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for %s: %w", p.Figi, err)
		}
		price, err := p.CurrentPrice.Decimal()
		if err != nil {
			return nil, fmt.Errorf("invalid current price for %s: %w", p.Figi, err)
		}
		out = append(out, domain.PortfolioPosition{
			Figi:           p.Figi,
			InstrumentType: p.InstrumentType,
			Quantity:       quantity,
			CurrentPrice:   price,
		})
	}

	return out, nil
}
