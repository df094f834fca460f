package app

import (
	"context"
	"fmt"
	"mirrorbalance/internal/domain"
	l3_service "mirrorbalance/internal/service/l3"
)

type RebalancerHandler struct {
	RebalanceService l3_service.RebalanceService
	// ReportEmailService is nil when email delivery is not configured
	ReportEmailService l3_service.ReportEmailService
	ReportRecipient    string
}

type RebalanceInput struct {
	Format    l3_service.ReportFormat
	SendEmail bool
}

type RebalanceResult struct {
	Report   *domain.RebalanceReport
	Rendered []byte
}

// Rebalance runs one advisory rebalance, renders the report and, when
// asked, emails it. Nothing is traded.
func (h RebalancerHandler) Rebalance(ctx context.Context, in RebalanceInput) (*RebalanceResult, error) {
	if in.SendEmail && h.ReportEmailService == nil {
		return nil, fmt.Errorf("email requested but ses is not configured")
	}

	report, err := h.RebalanceService.Rebalance(ctx)
	if err != nil {
		return nil, err
	}

	rendered, err := l3_service.RenderReport(*report, in.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	if in.SendEmail {
		err = h.ReportEmailService.SendReport(ctx, h.ReportRecipient, *report)
		if err != nil {
			return nil, err
		}
	}

	return &RebalanceResult{
		Report:   report,
		Rendered: rendered,
	}, nil
}
