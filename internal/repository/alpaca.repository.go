package repository

import (
	"context"
	"fmt"
	"mirrorbalance/internal/domain"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"
)

const (
	alpacaAccountActive = "ACTIVE"
	// AlpacaCashFigi identifies the synthetic position holding account cash
	AlpacaCashFigi = "ALPACA:CASH"
)

// alpacaClient is the part of *alpaca.Client the repository needs
type alpacaClient interface {
	GetAccount() (*alpaca.Account, error)
	GetPositions() ([]alpaca.Position, error)
	GetAssets(req alpaca.GetAssetsRequest) ([]alpaca.Asset, error)
}

type AlpacaAccountCredentials struct {
	Name      string
	ApiKey    string
	ApiSecret string
	Endpoint  string
}

type alpacaAccount struct {
	Name   string
	Client alpacaClient
}

// alpacaInvestRepositoryHandler serves every configured key pair as one
// named account. Alpaca identifies instruments by asset id, which plays the
// role of the FIGI. There are no separate ETF or currency catalogs.
type alpacaInvestRepositoryHandler struct {
	Accounts []alpacaAccount
}

func NewAlpacaInvestRepository(credentials []AlpacaAccountCredentials) InvestRepository {
	accounts := []alpacaAccount{}
	for _, c := range credentials {
		accounts = append(accounts, alpacaAccount{
			Name: c.Name,
			Client: alpaca.NewClient(alpaca.ClientOpts{
				APIKey:    c.ApiKey,
				APISecret: c.ApiSecret,
				BaseURL:   c.Endpoint,
			}),
		})
	}

	return alpacaInvestRepositoryHandler{
		Accounts: accounts,
	}
}

func (h alpacaInvestRepositoryHandler) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	out := []domain.Account{}
	for _, a := range h.Accounts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		acct, err := a.Client.GetAccount()
		if err != nil {
			return nil, fmt.Errorf("failed to get alpaca account %s: %w", a.Name, err)
		}
		status := domain.AccountStatusClosed
		if acct.Status == alpacaAccountActive {
			status = domain.AccountStatusOpen
		}
		out = append(out, domain.Account{
			ID:     acct.ID,
			Name:   a.Name,
			Status: status,
		})
	}

	return out, nil
}

func (h alpacaInvestRepositoryHandler) GetShares(ctx context.Context) ([]domain.Instrument, error) {
	if len(h.Accounts) == 0 {
		return []domain.Instrument{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assets, err := h.Accounts[0].Client.GetAssets(alpaca.GetAssetsRequest{
		Status:     "active",
		AssetClass: string(alpaca.USEquity),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get alpaca assets: %w", err)
	}

	out := make([]domain.Instrument, 0, len(assets))
	for _, a := range assets {
		out = append(out, domain.Instrument{
			Figi:   a.ID,
			Ticker: a.Symbol,
			Name:   a.Name,
			Lot:    1,
			Kind:   domain.InstrumentKindShare,
		})
	}
	return out, nil
}

func (h alpacaInvestRepositoryHandler) GetEtfs(ctx context.Context) ([]domain.Instrument, error) {
	return []domain.Instrument{}, nil
}

func (h alpacaInvestRepositoryHandler) GetCurrencies(ctx context.Context) ([]domain.Instrument, error) {
	return []domain.Instrument{{
		Figi: AlpacaCashFigi,
		Name: "US Dollar",
		Lot:  1,
		Kind: domain.InstrumentKindCurrency,
	}}, nil
}

func (h alpacaInvestRepositoryHandler) GetPortfolio(ctx context.Context, account domain.Account) ([]domain.PortfolioPosition, error) {
	var client alpacaClient
	for _, a := range h.Accounts {
		if a.Name == account.Name {
			client = a.Client
		}
	}
	if client == nil {
		return nil, fmt.Errorf("no alpaca credentials for account %s: %w", account.Name, domain.ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	positions, err := client.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to get alpaca positions for %s: %w", account.Name, err)
	}
	acct, err := client.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("failed to get alpaca account %s: %w", account.Name, err)
	}

	out := make([]domain.PortfolioPosition, 0, len(positions)+1)
	for _, p := range positions {
		price := decimal.Zero
		if p.CurrentPrice != nil {
			price = *p.CurrentPrice
		}
		out = append(out, domain.PortfolioPosition{
			Figi:           p.AssetID,
			InstrumentType: string(p.AssetClass),
			Quantity:       p.Qty,
			CurrentPrice:   price,
		})
	}
	out = append(out, domain.PortfolioPosition{
		Figi:           AlpacaCashFigi,
		InstrumentType: domain.InstrumentTypeCurrency,
		Quantity:       acct.Cash,
		CurrentPrice:   decimal.NewFromInt(1),
	})

	return out, nil
}
