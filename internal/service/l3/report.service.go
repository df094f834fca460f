package l3_service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mirrorbalance/internal/domain"
	"strings"
	"text/template"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type ReportFormat string

const (
	ReportFormatText     ReportFormat = "text"
	ReportFormatCsv      ReportFormat = "csv"
	ReportFormatJson     ReportFormat = "json"
	ReportFormatMarkdown ReportFormat = "markdown"
)

func ParseReportFormat(s string) (ReportFormat, error) {
	switch f := ReportFormat(strings.ToLower(s)); f {
	case ReportFormatText, ReportFormatCsv, ReportFormatJson, ReportFormatMarkdown:
		return f, nil
	case "":
		return ReportFormatText, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

func (f ReportFormat) ContentType() string {
	switch f {
	case ReportFormatCsv:
		return "text/csv; charset=utf-8"
	case ReportFormatJson:
		return "application/json; charset=utf-8"
	case ReportFormatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

type ReportSummary struct {
	PrimaryTotal   decimal.Decimal `json:"primaryTotal"`
	SecondaryTotal decimal.Decimal `json:"secondaryTotal"`
	Ratio          decimal.Decimal `json:"ratio"`
	TotalBuy       decimal.Decimal `json:"totalBuy"`
	TotalSell      decimal.Decimal `json:"totalSell"`
	NumPositions   int             `json:"numPositions"`
	NumUnresolved  int             `json:"numUnresolved"`

	// drift is |rebalance amount| as a percent of the secondary total
	DriftMeanPercent  float64 `json:"driftMeanPercent"`
	DriftMaxPercent   float64 `json:"driftMaxPercent"`
	DriftStdevPercent float64 `json:"driftStdevPercent"`
}

// Summarize aggregates a report. Drift figures stay zero when the
// secondary account is empty.
func Summarize(report domain.RebalanceReport) (*ReportSummary, error) {
	out := ReportSummary{
		PrimaryTotal:   report.PrimaryTotal,
		SecondaryTotal: report.SecondaryTotal,
		Ratio:          report.Ratio,
		TotalBuy:       decimal.Zero,
		TotalSell:      decimal.Zero,
		NumPositions:   len(report.Positions),
	}

	drifts := []float64{}
	for _, p := range report.Positions {
		if p.RebalanceAmount.IsPositive() {
			out.TotalBuy = out.TotalBuy.Add(p.RebalanceAmount)
		} else {
			out.TotalSell = out.TotalSell.Add(p.RebalanceAmount.Abs())
		}
		if !p.Resolved {
			out.NumUnresolved++
		}
		if !report.SecondaryTotal.IsZero() {
			drift := p.RebalanceAmount.Abs().Div(report.SecondaryTotal).Mul(decimal.NewFromInt(100))
			drifts = append(drifts, drift.InexactFloat64())
		}
	}

	if len(drifts) == 0 {
		return &out, nil
	}

	var err error
	out.DriftMeanPercent, err = stats.Mean(drifts)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate mean drift: %w", err)
	}
	out.DriftMaxPercent, err = stats.Max(drifts)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate max drift: %w", err)
	}
	out.DriftStdevPercent, err = stats.StandardDeviationPopulation(drifts)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate drift stdev: %w", err)
	}

	return &out, nil
}

// RenderText writes one "<name>: <lots>" line per position, lots with
// two decimals, in report order
func RenderText(report domain.RebalanceReport) string {
	sb := strings.Builder{}
	for _, p := range report.Positions {
		sb.WriteString(fmt.Sprintf("%s: %.2f\n", p.Name, float64(p.RebalanceLots)))
	}
	return sb.String()
}

type reportCsvRow struct {
	Figi            string `csv:"figi"`
	Name            string `csv:"name"`
	RebalanceAmount string `csv:"rebalance_amount"`
	RebalanceLots   int64  `csv:"rebalance_lots"`
	Resolved        bool   `csv:"resolved"`
}

func RenderCSV(report domain.RebalanceReport) ([]byte, error) {
	rows := []*reportCsvRow{}
	for _, p := range report.Positions {
		rows = append(rows, &reportCsvRow{
			Figi:            p.Figi,
			Name:            p.Name,
			RebalanceAmount: p.RebalanceAmount.StringFixed(2),
			RebalanceLots:   p.RebalanceLots,
			Resolved:        p.Resolved,
		})
	}

	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report csv: %w", err)
	}
	return out, nil
}

type reportPositionJson struct {
	Figi            string          `json:"figi"`
	Name            string          `json:"name"`
	RebalanceAmount decimal.Decimal `json:"rebalanceAmount"`
	RebalanceLots   int64           `json:"rebalanceLots"`
	Resolved        bool            `json:"resolved"`
}

type ReportJson struct {
	RunID            string               `json:"runID"`
	PrimaryAccount   string               `json:"primaryAccount"`
	SecondaryAccount string               `json:"secondaryAccount"`
	GeneratedAt      time.Time            `json:"generatedAt"`
	Summary          ReportSummary        `json:"summary"`
	Positions        []reportPositionJson `json:"positions"`
	Profile          *domain.Profile      `json:"profile,omitempty"`
}

func NewReportJson(report domain.RebalanceReport) (*ReportJson, error) {
	summary, err := Summarize(report)
	if err != nil {
		return nil, err
	}

	positions := []reportPositionJson{}
	for _, p := range report.Positions {
		positions = append(positions, reportPositionJson{
			Figi:            p.Figi,
			Name:            p.Name,
			RebalanceAmount: p.RebalanceAmount.Round(2),
			RebalanceLots:   p.RebalanceLots,
			Resolved:        p.Resolved,
		})
	}

	return &ReportJson{
		RunID:            report.RunID.String(),
		PrimaryAccount:   report.PrimaryAccount,
		SecondaryAccount: report.SecondaryAccount,
		GeneratedAt:      report.GeneratedAt,
		Summary:          *summary,
		Positions:        positions,
		Profile:          report.Profile,
	}, nil
}

const markdownTemplate = `# Rebalance {{ .SecondaryAccount }} against {{ .PrimaryAccount }}

Generated {{ .GeneratedAt.Format "2006-01-02 15:04 MST" }}, run ` + "`{{ .RunID }}`" + `

| | |
|---|---:|
| Primary total | {{ fixed .Summary.PrimaryTotal }} |
| Secondary total | {{ fixed .Summary.SecondaryTotal }} |
| Ratio | {{ .Summary.Ratio.StringFixed 4 }} |
| Total to buy | {{ fixed .Summary.TotalBuy }} |
| Total to sell | {{ fixed .Summary.TotalSell }} |
| Mean drift | {{ printf "%.2f" .Summary.DriftMeanPercent }}% |
| Max drift | {{ printf "%.2f" .Summary.DriftMaxPercent }}% |

| Instrument | FIGI | Amount | Lots |
|---|---|---:|---:|
{{- range .Positions }}
| {{ .Name }} | {{ .Figi }} | {{ fixed .RebalanceAmount }} | {{ .RebalanceLots }} |
{{- end }}
`

var reportMarkdownTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"fixed": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(markdownTemplate))

func RenderMarkdown(report domain.RebalanceReport) (string, error) {
	view, err := NewReportJson(report)
	if err != nil {
		return "", err
	}
	buf := bytes.Buffer{}
	if err := reportMarkdownTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render report markdown: %w", err)
	}
	return buf.String(), nil
}

func RenderHTML(report domain.RebalanceReport) (string, error) {
	md, err := RenderMarkdown(report)
	if err != nil {
		return "", err
	}
	converter := goldmark.New(goldmark.WithExtensions(extension.Table))
	buf := bytes.Buffer{}
	if err := converter.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to convert report to html: %w", err)
	}
	return buf.String(), nil
}

// RenderReport renders the report in the given format
func RenderReport(report domain.RebalanceReport, format ReportFormat) ([]byte, error) {
	switch format {
	case ReportFormatText, "":
		return []byte(RenderText(report)), nil
	case ReportFormatCsv:
		return RenderCSV(report)
	case ReportFormatMarkdown:
		md, err := RenderMarkdown(report)
		if err != nil {
			return nil, err
		}
		return []byte(md), nil
	case ReportFormatJson:
		view, err := NewReportJson(report)
		if err != nil {
			return nil, err
		}
		out, err := json.MarshalIndent(view, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report json: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}
