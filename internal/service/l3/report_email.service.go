package l3_service

import (
	"context"
	"fmt"
	"mirrorbalance/internal/domain"
	"mirrorbalance/internal/logger"
	"mirrorbalance/internal/repository"
)

// ReportEmailService delivers rendered rebalance reports. It renders but
// never computes; the report is passed in complete.
type ReportEmailService interface {
	SendReport(ctx context.Context, to string, report domain.RebalanceReport) error

	// GenerateReportEmail returns the subject, HTML body and plain text
	// body for a report
	GenerateReportEmail(report domain.RebalanceReport) (string, string, string, error)
}

type reportEmailServiceHandler struct {
	EmailRepository repository.EmailRepository
}

func NewReportEmailService(emailRepository repository.EmailRepository) ReportEmailService {
	return &reportEmailServiceHandler{
		EmailRepository: emailRepository,
	}
}

func (h *reportEmailServiceHandler) GenerateReportEmail(report domain.RebalanceReport) (string, string, string, error) {
	subject := fmt.Sprintf(
		"Rebalance %s against %s (%s)",
		report.SecondaryAccount,
		report.PrimaryAccount,
		report.GeneratedAt.Format("Jan 2, 2006"),
	)

	html, err := RenderHTML(report)
	if err != nil {
		return "", "", "", err
	}

	return subject, html, RenderText(report), nil
}

func (h *reportEmailServiceHandler) SendReport(ctx context.Context, to string, report domain.RebalanceReport) error {
	if to == "" {
		return fmt.Errorf("no recipient for report email")
	}

	subject, html, text, err := h.GenerateReportEmail(report)
	if err != nil {
		return fmt.Errorf("failed to generate report email: %w", err)
	}

	if err := h.EmailRepository.SendEmail(ctx, to, subject, html, text); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	logger.FromContext(ctx).Infof("sent report %s to %s", report.RunID, to)
	return nil
}
