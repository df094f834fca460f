package cmd

import (
	"context"
	"fmt"
	"mirrorbalance/api"
	integration_tests "mirrorbalance/integration-tests"
	"mirrorbalance/internal/app"
	"mirrorbalance/internal/logger"
	"mirrorbalance/internal/repository"
	l1_service "mirrorbalance/internal/service/l1"
	l3_service "mirrorbalance/internal/service/l3"
	"mirrorbalance/internal/util"
	"mirrorbalance/pkg/tinkoff"
	"os"
	"strings"
)

func newInvestRepository(secrets *util.Secrets) (repository.InvestRepository, error) {
	if strings.EqualFold(os.Getenv("MIRROR_ENV"), "test") {
		return integration_tests.NewMockInvestRepositoryForTests(), nil
	}

	switch secrets.Provider {
	case util.ProviderTinkoff:
		client := tinkoff.NewClient(
			secrets.Tinkoff.Token,
			secrets.Tinkoff.BaseURL,
			secrets.Tinkoff.RequestsPerSecond,
		)
		return repository.NewTinkoffInvestRepository(client), nil
	case util.ProviderAlpaca:
		credentials := []repository.AlpacaAccountCredentials{}
		for _, a := range secrets.Alpaca {
			credentials = append(credentials, repository.AlpacaAccountCredentials{
				Name:      a.Name,
				ApiKey:    a.ApiKey,
				ApiSecret: a.ApiSecret,
				Endpoint:  a.Endpoint,
			})
		}
		return repository.NewAlpacaInvestRepository(credentials), nil
	case util.ProviderMock:
		return integration_tests.NewMockInvestRepositoryForTests(), nil
	}
	return nil, fmt.Errorf("unknown provider %q", secrets.Provider)
}

func InitializeDependencies() (*api.ApiHandler, *util.Secrets, error) {
	secrets, err := util.LoadSecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	apiHandler, err := NewDependencies(context.Background(), secrets)
	if err != nil {
		return nil, nil, err
	}
	return apiHandler, secrets, nil
}

func NewDependencies(ctx context.Context, secrets *util.Secrets) (*api.ApiHandler, error) {
	investRepository, err := newInvestRepository(secrets)
	if err != nil {
		return nil, err
	}

	var primaryFilter l1_service.PositionFilter
	if expr := secrets.PrimaryFilterExpression(); expr != "" {
		primaryFilter, err = l1_service.NewExpressionFilter(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid primaryFilter: %w", err)
		}
	}

	referenceDataCache := l1_service.NewReferenceDataCache(investRepository, secrets.CacheTtl.Duration)
	portfolioService := l1_service.NewPortfolioService(investRepository, referenceDataCache)
	rebalanceService := l3_service.NewRebalanceService(
		portfolioService,
		referenceDataCache,
		l3_service.RebalanceConfig{
			PrimaryAccount:   secrets.PrimaryAccount,
			SecondaryAccount: secrets.SecondaryAccount,
			PrimaryFilter:    primaryFilter,
			JobTimeout:       secrets.JobTimeout.Duration,
		},
	)

	rebalancerHandler := app.RebalancerHandler{
		RebalanceService: rebalanceService,
	}
	if secrets.SES != nil {
		emailRepository, err := repository.NewEmailRepository(ctx, secrets.SES.Region, secrets.SES.FromEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to create email repository: %w", err)
		}
		rebalancerHandler.ReportEmailService = l3_service.NewReportEmailService(emailRepository)
		rebalancerHandler.ReportRecipient = secrets.SES.ToEmail
	}

	logger.Info(
		"initialized %s provider, mirroring %s into %s",
		secrets.Provider, secrets.PrimaryAccount, secrets.SecondaryAccount,
	)

	return &api.ApiHandler{
		ReferenceDataCache: referenceDataCache,
		RebalancerHandler:  rebalancerHandler,
		JwtSecret:          secrets.Api.JwtSecret,
	}, nil
}
