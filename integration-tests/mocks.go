package integration_tests

import (
	"context"
	"fmt"
	"mirrorbalance/internal/domain"
	"mirrorbalance/internal/repository"

	"github.com/shopspring/decimal"
)

// NewMockInvestRepositoryForTests returns a provider with canned accounts,
// catalogs and portfolios. It backs the "mock" provider for local runs.
func NewMockInvestRepositoryForTests() repository.InvestRepository {
	return mockInvestForTestsHandler{}
}

type mockInvestForTestsHandler struct{}

const (
	MockPrimaryAccount   = "main"
	MockSecondaryAccount = "iis"
)

func (m mockInvestForTestsHandler) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	return []domain.Account{
		{ID: "2000111", Name: MockPrimaryAccount, Status: domain.AccountStatusOpen},
		{ID: "2000222", Name: MockSecondaryAccount, Status: domain.AccountStatusOpen},
		{ID: "2000333", Name: "broker-old", Status: domain.AccountStatusClosed},
	}, nil
}

func (m mockInvestForTestsHandler) GetShares(ctx context.Context) ([]domain.Instrument, error) {
	return []domain.Instrument{
		{Figi: "BBG004730N88", Ticker: "SBER", Name: "Сбер Банк", Lot: 10, Kind: domain.InstrumentKindShare},
		{Figi: "BBG004731032", Ticker: "LKOH", Name: "ЛУКОЙЛ", Lot: 1, Kind: domain.InstrumentKindShare},
		{Figi: "BBG004730RP0", Ticker: "GAZP", Name: "Газпром", Lot: 10, Kind: domain.InstrumentKindShare},
	}, nil
}

func (m mockInvestForTestsHandler) GetEtfs(ctx context.Context) ([]domain.Instrument, error) {
	return []domain.Instrument{
		{Figi: "BBG333333333", Ticker: "TMOS", Name: "Тинькофф iMOEX", Lot: 1, Kind: domain.InstrumentKindEtf},
	}, nil
}

func (m mockInvestForTestsHandler) GetCurrencies(ctx context.Context) ([]domain.Instrument, error) {
	return []domain.Instrument{
		{Figi: "BBG0013HGFT4", Ticker: "USD000UTSTOM", Name: "Доллар США", Lot: 1000, Kind: domain.InstrumentKindCurrency},
	}, nil
}

func mockPosition(figi, instrumentType string, qty, price int64) domain.PortfolioPosition {
	return domain.PortfolioPosition{
		Figi:           figi,
		InstrumentType: instrumentType,
		Quantity:       decimal.NewFromInt(qty),
		CurrentPrice:   decimal.NewFromInt(price),
	}
}

func (m mockInvestForTestsHandler) GetPortfolio(ctx context.Context, account domain.Account) ([]domain.PortfolioPosition, error) {
	switch account.Name {
	case MockPrimaryAccount:
		return []domain.PortfolioPosition{
			mockPosition("BBG004730N88", "share", 100, 300),
			mockPosition("BBG333333333", "etf", 1000, 10),
			mockPosition("RUB000UTSTOM", "currency", 50000, 1),
		}, nil
	case MockSecondaryAccount:
		return []domain.PortfolioPosition{
			mockPosition("BBG004730N88", "share", 10, 300),
			mockPosition("BBG004731032", "share", 1, 7000),
			mockPosition("RUB000UTSTOM", "currency", 3000, 1),
		}, nil
	}
	return nil, fmt.Errorf("no portfolio for account %s: %w", account.ID, domain.ErrNotFound)
}
