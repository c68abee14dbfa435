package main

import (
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RateComparisonCell holds one method's outcome at one rate
type RateComparisonCell struct {
	Result     LoanResult
	Solved     SolvedTerm
	Infeasible bool   // Target payment cannot repay the loan at this rate
	ReportFile string // Relative path of the detailed report, if generated
}

// RateComparisonRow holds both methods at one rate
type RateComparisonRow struct {
	RatePercent      float64
	EqualInstallment RateComparisonCell
	EqualPrincipal   RateComparisonCell
}

// RateComparison is a table of totals across a range of annual rates
type RateComparison struct {
	Request   CalculationRequest
	Rows      []RateComparisonRow
	Timestamp string
	OutputDir string
}

// buildRates generates rates from min to max with the given step.
// Rates are rounded to 0.01% so repeated float addition does not drift.
func buildRates(min, max, step float64) []float64 {
	if step <= 0 || max < min {
		return nil
	}
	lo := decimal.NewFromFloat(min)
	hi := decimal.NewFromFloat(max)
	inc := decimal.NewFromFloat(step)

	var rates []float64
	for r := lo; r.LessThanOrEqual(hi); r = r.Add(inc) {
		rates = append(rates, r.Round(2).InexactFloat64())
	}
	return rates
}

// RunRateComparison calculates the configured loan at every rate in the comparison range
func RunRateComparison(config *Config) (*RateComparison, error) {
	rc := config.RateComparison
	rateMin, rateMax, step := rc.RateMin, rc.RateMax, rc.StepSize

	// Defaults if not configured
	if rateMin == 0 && rateMax == 0 {
		rateMin, rateMax = 3.0, 20.0
	}
	if step == 0 {
		step = 1.0
	}

	rates := buildRates(rateMin, rateMax, step)
	if len(rates) == 0 {
		return nil, ValidationError{Field: "rate_comparison", Message: "rate range is empty"}
	}

	timestamp := time.Now().Format("2006-01-02_1504")
	comparison := &RateComparison{
		Request:   config.Loan,
		Timestamp: timestamp,
		OutputDir: reportDirName("rate_comparison", timestamp),
	}
	if config.Output.ReportDir != "" {
		comparison.OutputDir = filepath.Join(config.Output.ReportDir, comparison.OutputDir)
	}

	for _, rate := range rates {
		row := RateComparisonRow{RatePercent: rate}
		var err error
		if row.EqualInstallment, err = compareCell(config.Loan, rate, EqualInstallment); err != nil {
			return nil, err
		}
		if row.EqualPrincipal, err = compareCell(config.Loan, rate, EqualPrincipal); err != nil {
			return nil, err
		}
		comparison.Rows = append(comparison.Rows, row)
	}

	return comparison, nil
}

func compareCell(base CalculationRequest, rate float64, method RepaymentMethod) (RateComparisonCell, error) {
	req := base
	req.AnnualRatePercent = rate
	req.Method = method

	result, solved, err := CalculateRequest(req)
	if errors.Is(err, ErrInfeasibleRepayment) {
		return RateComparisonCell{Infeasible: true}, nil
	}
	if err != nil {
		return RateComparisonCell{}, fmt.Errorf("rate %s: %w", FormatRate(rate), err)
	}
	return RateComparisonCell{Result: result, Solved: solved}, nil
}

// PrintRateComparison prints the comparison as a console table
func PrintRateComparison(w io.Writer, c *RateComparison) {
	printBanner(w, "RATE COMPARISON")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Principal %s", FormatYen(c.Request.Principal))
	if c.Request.Mode == ModeByPayment {
		fmt.Fprintf(w, ", payment %s / month\n\n", FormatYen(c.Request.MonthlyPayment))
	} else {
		fmt.Fprintf(w, ", %d months\n\n", c.Request.TermMonths)
	}

	fmt.Fprintf(w, "  %6s │ %6s %14s %14s │ %6s %14s %14s\n",
		"Rate", "Months", "Equal total", "Interest", "Months", "Princ. total", "Interest")
	fmt.Fprintln(w, "  "+strings.Repeat("─", 88))
	for _, row := range c.Rows {
		fmt.Fprintf(w, "  %6s │ %s │ %s\n", FormatRate(row.RatePercent),
			consoleCell(row.EqualInstallment), consoleCell(row.EqualPrincipal))
	}
	fmt.Fprintln(w)
}

func consoleCell(cell RateComparisonCell) string {
	if cell.Infeasible {
		return fmt.Sprintf("%6s %14s %14s", "-", "infeasible", "-")
	}
	r := cell.Result
	return fmt.Sprintf("%6d %14s %14s", r.Terms.TermMonths, FormatNumber(r.TotalPayment), FormatNumber(r.TotalInterest))
}

// interestShade picks a background for an interest ratio cell (0% white to 50%+ deep orange)
func interestShade(ratio decimal.Decimal) string {
	switch {
	case ratio.LessThan(decimal.NewFromInt(5)):
		return "#ffffff"
	case ratio.LessThan(decimal.NewFromInt(10)):
		return "#fff7ed"
	case ratio.LessThan(decimal.NewFromInt(20)):
		return "#ffedd5"
	case ratio.LessThan(decimal.NewFromInt(35)):
		return "#fed7aa"
	default:
		return "#fdba74"
	}
}

func writeRateCell(w io.Writer, cell RateComparisonCell) {
	if cell.Infeasible {
		fmt.Fprintf(w, `<td colspan="3" class="error">%s</td>`, html.EscapeString(InfeasibleMessage))
		return
	}
	r := cell.Result
	ratio := InterestRatio(r.TotalInterest, r.TotalPayment)
	total := FormatYen(r.TotalPayment)
	if cell.ReportFile != "" {
		total = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(cell.ReportFile), total)
	}
	fmt.Fprintf(w, `<td>%s</td><td>%s</td><td style="background:%s">%s (%s%%)</td>`,
		FormatPeriod(r.Terms.TermMonths), total, interestShade(ratio), FormatYen(r.TotalInterest), ratio.StringFixed(1))
}

// WriteRateComparisonHTML writes the comparison as a standalone HTML document
func WriteRateComparisonHTML(w io.Writer, c *RateComparison) {
	writeHTMLHead(w, "金利別の比較")
	fmt.Fprintf(w, `<h1>金利別の比較</h1>
<p class="subtitle">借入額 %s</p>
<div class="card"><table class="rates">
<thead>
<tr><th rowspan="2">年利</th><th colspan="3">元利均等返済</th><th colspan="3">元金均等返済</th></tr>
<tr><th>期間</th><th>総返済額</th><th>利息</th><th>期間</th><th>総返済額</th><th>利息</th></tr>
</thead>
<tbody>
`, FormatYen(c.Request.Principal))
	for _, row := range c.Rows {
		fmt.Fprintf(w, `<tr><td>%s</td>`, FormatRate(row.RatePercent))
		writeRateCell(w, row.EqualInstallment)
		writeRateCell(w, row.EqualPrincipal)
		fmt.Fprintln(w, `</tr>`)
	}
	fmt.Fprintln(w, `</tbody></table></div>`)
	writeHTMLFooter(w)
}

// GenerateRateComparisonReport writes one detailed report per feasible cell plus index.html
func GenerateRateComparisonReport(c *RateComparison) (string, error) {
	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	count := 0
	for i := range c.Rows {
		row := &c.Rows[i]
		for _, cell := range []*RateComparisonCell{&row.EqualInstallment, &row.EqualPrincipal} {
			if cell.Infeasible {
				continue
			}
			name := sanitizeFilename(fmt.Sprintf("rate_%s_%s.html",
				decimal.NewFromFloat(row.RatePercent).StringFixed(2), cell.Result.Terms.Method.ShortName()))
			if err := GenerateHTMLReport(cell.Result, cell.Solved, filepath.Join(c.OutputDir, name)); err != nil {
				return "", fmt.Errorf("failed to generate report for %s: %w", FormatRate(row.RatePercent), err)
			}
			cell.ReportFile = name
			count++
		}
	}

	filename := filepath.Join(c.OutputDir, "index.html")
	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	WriteRateComparisonHTML(f, c)
	fmt.Printf("  Generated %d reports in %s/\n", count, c.OutputDir)
	return filename, nil
}
