package l3_service

import (
	"context"
	"fmt"
	"mirrorbalance/internal/domain"
	"mirrorbalance/internal/logger"
	l1_service "mirrorbalance/internal/service/l1"
	l2_service "mirrorbalance/internal/service/l2"
	"slices"
	"time"

	"github.com/google/uuid"
)

// RebalanceService produces an advisory report of the trades that would
// make the secondary account mirror the primary one
type RebalanceService interface {
	Rebalance(ctx context.Context) (*domain.RebalanceReport, error)
}

type RebalanceConfig struct {
	PrimaryAccount   string
	SecondaryAccount string
	// PrimaryFilter applies to the primary account only; the secondary
	// account is always taken whole
	PrimaryFilter l1_service.PositionFilter
	JobTimeout    time.Duration
}

type rebalanceServiceHandler struct {
	PortfolioService   l1_service.PortfolioService
	ReferenceDataCache l1_service.ReferenceDataCache
	Config             RebalanceConfig
}

func NewRebalanceService(
	portfolioService l1_service.PortfolioService,
	referenceDataCache l1_service.ReferenceDataCache,
	config RebalanceConfig,
) RebalanceService {
	return rebalanceServiceHandler{
		PortfolioService:   portfolioService,
		ReferenceDataCache: referenceDataCache,
		Config:             config,
	}
}

// Rebalance runs one reconciliation of the configured accounts. Any
// failure aborts the run and no partial report is returned.
func (h rebalanceServiceHandler) Rebalance(ctx context.Context) (*domain.RebalanceReport, error) {
	if h.Config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Config.JobTimeout)
		defer cancel()
	}

	runID := uuid.New()
	log := logger.FromContext(ctx).With("runID", runID.String())
	ctx = logger.NewContext(ctx, log)

	profile, endProfile := domain.NewProfile()

	log.Infof("rebalancing %s against %s", h.Config.SecondaryAccount, h.Config.PrimaryAccount)

	_, endSpan := profile.StartNewSpan("get primary positions")
	primary, err := h.PortfolioService.GetPositions(ctx, h.Config.PrimaryAccount, h.Config.PrimaryFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to get primary positions: %w", err)
	}
	endSpan()

	_, endSpan = profile.StartNewSpan("get secondary positions")
	secondary, err := h.PortfolioService.GetPositions(ctx, h.Config.SecondaryAccount, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get secondary positions: %w", err)
	}
	endSpan()

	_, endSpan = profile.StartNewSpan("load instrument catalogs")
	catalogs, err := h.ReferenceDataCache.Catalogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load instrument catalogs: %w", err)
	}
	endSpan()

	_, endSpan = profile.StartNewSpan("reconcile")
	primary, secondary, err = l2_service.Reconcile(primary, secondary)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile portfolios: %w", err)
	}
	pairs, err := l2_service.Pair(primary, secondary)
	if err != nil {
		return nil, fmt.Errorf("failed to pair positions: %w", err)
	}
	endSpan()

	_, endSpan = profile.StartNewSpan("calculate")
	seq, totals, err := l2_service.CalculateRebalance(pairs, *catalogs)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate rebalance: %w", err)
	}
	positions := slices.Collect(seq)
	domain.SortForReport(positions)
	endSpan()

	endProfile()
	if spans, err := profile.ToJsonBytes(); err == nil {
		log.Debugf("profile: %s", spans)
	}

	log.Infow(
		"rebalance complete",
		"primaryTotal", totals.PrimaryTotal.String(),
		"secondaryTotal", totals.SecondaryTotal.String(),
		"ratio", totals.Ratio.String(),
		"positions", len(positions),
		"totalMs", *profile.TotalMs,
	)

	return &domain.RebalanceReport{
		RunID:            runID,
		PrimaryAccount:   h.Config.PrimaryAccount,
		SecondaryAccount: h.Config.SecondaryAccount,
		PrimaryTotal:     totals.PrimaryTotal,
		SecondaryTotal:   totals.SecondaryTotal,
		Ratio:            totals.Ratio,
		Positions:        positions,
		GeneratedAt:      time.Now().UTC(),
		Profile:          profile,
	}, nil
}
