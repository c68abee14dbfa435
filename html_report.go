package main

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"time"
)

// reportCSS is shared by every standalone HTML report
const reportCSS = `
        :root {
            --primary: #2563eb;
            --principal: #3182CE;
            --interest: #DD6B20;
            --danger: #dc2626;
            --bg: #f8fafc;
            --card-bg: #ffffff;
            --text: #1e293b;
            --text-muted: #64748b;
            --border: #e2e8f0;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', 'Hiragino Sans', 'Noto Sans JP', sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.6;
            padding: 2rem;
        }
        .container { max-width: 1100px; margin: 0 auto; }
        h1 { font-size: 1.75rem; margin-bottom: 0.5rem; color: var(--primary); }
        h2 {
            font-size: 1.25rem;
            margin: 1.5rem 0 1rem;
            padding-bottom: 0.5rem;
            border-bottom: 2px solid var(--primary);
        }
        .subtitle { color: var(--text-muted); margin-bottom: 1.5rem; }
        .card {
            background: var(--card-bg);
            border-radius: 8px;
            box-shadow: 0 1px 3px rgba(0,0,0,0.1);
            padding: 1.5rem;
            margin-bottom: 1.5rem;
        }
        .grid { display: grid; gap: 1rem; }
        .grid-4 { grid-template-columns: repeat(4, 1fr); }
        @media (max-width: 768px) { .grid-4 { grid-template-columns: 1fr 1fr; } }
        .metric { text-align: center; padding: 1rem; border-radius: 8px; background: var(--bg); }
        .metric-value { font-size: 1.4rem; font-weight: 700; color: var(--primary); }
        .metric-label { font-size: 0.875rem; color: var(--text-muted); }
        .metric-note { font-size: 0.75rem; color: var(--text-muted); }
        table { width: 100%; border-collapse: collapse; font-size: 0.875rem; }
        th, td { padding: 0.5rem; text-align: right; border-bottom: 1px solid var(--border); }
        th { background: var(--bg); font-weight: 600; }
        th:first-child, td:first-child { text-align: left; }
        tr:hover { background: #f1f5f9; }
        tr.separator td { text-align: center; color: var(--text-muted); }
        tfoot td { font-weight: 700; background: var(--bg); }
        .chart-tabs { display: flex; gap: 0.5rem; margin-bottom: 1rem; }
        .chart-tabs button {
            border: 1px solid var(--border); background: var(--card-bg);
            padding: 0.4rem 1rem; border-radius: 9999px; cursor: pointer;
        }
        .chart-tabs button.active { background: var(--primary); color: #fff; border-color: var(--primary); }
        .chart-panel { display: none; }
        .chart-panel.active { display: block; }
        svg.chart { width: 100%; height: auto; }
        .error { color: var(--danger); font-weight: 600; }
        .footer {
            text-align: center; color: var(--text-muted); font-size: 0.75rem;
            margin-top: 2rem; padding-top: 1rem; border-top: 1px solid var(--border);
        }
`

// chartTabsScript switches between chart panels inside the same .charts block
const chartTabsScript = `<script>
document.addEventListener('click', function (e) {
    var btn = e.target.closest('.chart-tabs button');
    if (!btn) return;
    var box = btn.closest('.charts');
    box.querySelectorAll('.chart-tabs button').forEach(function (b) { b.classList.toggle('active', b === btn); });
    box.querySelectorAll('.chart-panel').forEach(function (p) { p.classList.toggle('active', p.dataset.chart === btn.dataset.chart); });
});
</script>`

func writeHTMLHead(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>%s</style>
</head>
<body>
<div class="container">
`, html.EscapeString(title), reportCSS)
}

func writeHTMLFooter(w io.Writer) {
	fmt.Fprintf(w, `<div class="footer">Generated %s by goLoanSchedule. Amounts are rounded to whole yen.</div>
</div>
%s
</body>
</html>
`, time.Now().Format("2006-01-02 15:04"), chartTabsScript)
}

func writeMetric(w io.Writer, label, value, note string) {
	fmt.Fprintf(w, `<div class="metric"><div class="metric-label">%s</div><div class="metric-value">%s</div><div class="metric-note">%s</div></div>
`, html.EscapeString(label), html.EscapeString(value), html.EscapeString(note))
}

// chartTab is one selectable chart in a .charts block
type chartTab struct {
	ID    string
	Label string
	Chart ChartData
}

func writeChartTabs(w io.Writer, tabs []chartTab) {
	fmt.Fprintln(w, `<div class="card charts"><div class="chart-tabs">`)
	for i, t := range tabs {
		active := ""
		if i == 0 {
			active = ` class="active"`
		}
		fmt.Fprintf(w, `<button type="button" data-chart="%s"%s>%s</button>`, t.ID, active, html.EscapeString(t.Label))
	}
	fmt.Fprintln(w, `</div>`)
	for i, t := range tabs {
		active := ""
		if i == 0 {
			active = " active"
		}
		fmt.Fprintf(w, `<div class="chart-panel%s" data-chart="%s">%s</div>
`, active, t.ID, t.Chart.SVG())
	}
	fmt.Fprintln(w, `</div>`)
}

// WriteScheduleTable writes the schedule table; the preview rows decide which months appear
func WriteScheduleTable(w io.Writer, rows []PreviewRow) {
	fmt.Fprintln(w, `<table class="schedule">
<thead><tr><th>回</th><th>返済額</th><th>元金</th><th>利息</th><th>残高</th></tr></thead>
<tbody>`)
	for _, row := range rows {
		if row.Separator {
			fmt.Fprintln(w, `<tr class="separator"><td colspan="5">...</td></tr>`)
			continue
		}
		e := row.Entry
		fmt.Fprintf(w, "<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			e.Month, FormatYen(e.Payment), FormatYen(e.Principal), FormatYen(e.Interest), FormatYen(e.Balance))
	}
	fmt.Fprintln(w, `</tbody></table>`)
}

// WriteLoanResultHTML writes the result cards, chart tabs and schedule preview for one loan.
// The fragment is embedded in standalone reports and returned by the web UI.
func WriteLoanResultHTML(w io.Writer, result LoanResult, solved SolvedTerm) {
	fmt.Fprintln(w, `<div class="result" id="loan-result">`)
	if solved.Solved {
		fmt.Fprintf(w, `<p class="subtitle solved">返済額 %s で返済期間 %s (%dヶ月) を算出しました。</p>
`, FormatYen(solved.TargetPayment), FormatPeriod(solved.Terms.TermMonths), solved.Terms.TermMonths)
	}

	fmt.Fprintln(w, `<div class="card"><div class="grid grid-4">`)
	writeMetric(w, "月々の返済額", FormatYen(result.Summary.First), PaymentNote(result.Summary))
	writeMetric(w, "総返済額", FormatYen(result.TotalPayment), TotalNote(result))
	writeMetric(w, "利息総額", FormatYen(result.TotalInterest), InterestNote(result))
	writeMetric(w, "返済期間", FormatPeriod(result.Terms.TermMonths), result.Terms.Method.JapaneseName())
	fmt.Fprintln(w, `</div></div>`)

	writeChartTabs(w, []chartTab{
		{ID: "balance", Label: "残高推移", Chart: BalanceChart(result.Schedule)},
		{ID: "breakdown", Label: "元金・利息内訳", Chart: BreakdownChart(result.Schedule)},
	})

	fmt.Fprintln(w, `<div class="card"><h2>返済スケジュール</h2>`)
	WriteScheduleTable(w, SchedulePreview(result.Schedule))
	if IsTruncated(result.Schedule) {
		fmt.Fprintf(w, `<p class="subtitle">全%d回のうち最初の%d回と最後の%d回を表示しています。</p>
`, len(result.Schedule), previewHead, previewTail)
	}
	fmt.Fprintln(w, `</div></div>`)
}

// WriteErrorHTML writes a user-facing error block in place of a result
func WriteErrorHTML(w io.Writer, err error) {
	fmt.Fprintf(w, `<div class="result"><p class="error">%s</p></div>
`, html.EscapeString(UserMessage(err)))
}

// WriteLoanReport writes a standalone HTML document for one loan
func WriteLoanReport(w io.Writer, result LoanResult, solved SolvedTerm) {
	writeHTMLHead(w, "返済シミュレーション")
	fmt.Fprintf(w, `<h1>返済シミュレーション</h1>
<p class="subtitle">借入額 %s ・ 年利 %s ・ %s</p>
`, FormatYen(result.Terms.Principal), FormatRate(result.Terms.AnnualRatePercent), result.Terms.Method.JapaneseName())
	WriteLoanResultHTML(w, result, solved)
	writeHTMLFooter(w)
}

// WriteMultiLoanResultHTML writes the combined cards, chart tabs and per-lender breakdown
func WriteMultiLoanResultHTML(w io.Writer, m MultiLoanResult) {
	fmt.Fprintln(w, `<div class="result" id="multi-result">`)
	fmt.Fprintln(w, `<div class="card"><div class="grid grid-4">`)
	writeMetric(w, "月々の返済額合計", FormatYen(m.FirstMonthTotal()), "初回の合計")
	writeMetric(w, "借入総額", FormatYen(m.PrincipalTotal), fmt.Sprintf("%d社", len(m.Loans)))
	writeMetric(w, "総返済額", FormatYen(m.PaymentTotal), "借入額 + "+FormatYen(m.PaymentTotal-m.PrincipalTotal))
	writeMetric(w, "利息総額", FormatYen(m.InterestTotal), "総返済額の"+InterestRatio(m.InterestTotal, m.PaymentTotal).StringFixed(1)+"%")
	fmt.Fprintln(w, `</div></div>`)

	writeChartTabs(w, []chartTab{
		{ID: "stacked", Label: "月々の返済額", Chart: StackedPaymentChart(m)},
		{ID: "pie", Label: "借入額の内訳", Chart: PrincipalPieChart(m)},
		{ID: "balance", Label: "合計残高推移", Chart: TotalBalanceChart(m)},
	})

	fmt.Fprintln(w, `<div class="card"><h2>業者別の内訳</h2>
<table class="breakdown">
<thead><tr><th>業者</th><th>借入額</th><th>年利</th><th>期間</th><th>月々の返済額</th><th>総返済額</th><th>利息</th></tr></thead>
<tbody>`)
	for _, l := range m.Loans {
		r := l.Result
		fmt.Fprintf(w, `<tr data-lender="%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>
`, html.EscapeString(l.Lender.ID), html.EscapeString(l.Lender.Name), FormatYen(r.Terms.Principal), FormatRate(r.Terms.AnnualRatePercent),
			FormatPeriod(r.Terms.TermMonths), FormatYen(r.Summary.First), FormatYen(r.TotalPayment), FormatYen(r.TotalInterest))
	}
	fmt.Fprintf(w, `</tbody>
<tfoot><tr><td>合計</td><td>%s</td><td></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr></tfoot>
</table></div></div>
`, FormatYen(m.PrincipalTotal), FormatPeriod(m.MaxMonths()), FormatYen(m.FirstMonthTotal()), FormatYen(m.PaymentTotal), FormatYen(m.InterestTotal))
}

// WriteMultiLoanReport writes a standalone HTML document for several lenders
func WriteMultiLoanReport(w io.Writer, m MultiLoanResult) {
	writeHTMLHead(w, "複数借入シミュレーション")
	fmt.Fprintln(w, `<h1>複数借入シミュレーション</h1>
<p class="subtitle">元利均等返済</p>`)
	WriteMultiLoanResultHTML(w, m)
	writeHTMLFooter(w)
}

// GenerateHTMLReport writes the single-loan report to filename
func GenerateHTMLReport(result LoanResult, solved SolvedTerm, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	WriteLoanReport(f, result, solved)
	return nil
}

// GenerateMultiLoanHTMLReport writes the multi-loan report to filename
func GenerateMultiLoanHTMLReport(m MultiLoanResult, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	WriteMultiLoanReport(f, m)
	return nil
}

// reportDirName returns the dated folder reports are written into
func reportDirName(prefix, timestamp string) string {
	if prefix == "" {
		prefix = "reports"
	}
	return fmt.Sprintf("%s_%s", prefix, timestamp)
}

// GenerateHTMLReportsInDir writes the loan report (and the multi-loan report, if any) into outputDir.
// It returns the path of the first report written.
func GenerateHTMLReportsInDir(result *LoanResult, solved SolvedTerm, multi *MultiLoanResult, outputDir string) (string, error) {
	if outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var first string
	if result != nil {
		filename := sanitizeFilename(fmt.Sprintf("loan_%s_%dm.html", result.Terms.Method.ShortName(), result.Terms.TermMonths))
		fullPath := filepath.Join(outputDir, filename)
		if err := GenerateHTMLReport(*result, solved, fullPath); err != nil {
			return "", fmt.Errorf("failed to generate loan report: %w", err)
		}
		first = fullPath
	}

	if multi != nil {
		fullPath := filepath.Join(outputDir, "multi_loan.html")
		if err := GenerateMultiLoanHTMLReport(*multi, fullPath); err != nil {
			return "", fmt.Errorf("failed to generate multi-loan report: %w", err)
		}
		if first == "" {
			first = fullPath
		}
	}

	if first == "" {
		return "", fmt.Errorf("nothing to report")
	}
	return first, nil
}

// sanitizeFilename replaces characters that are not safe in filenames
func sanitizeFilename(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '/' || c == '\\' || c == ':' || c == '*' || c == '?' || c == '"' || c == '<' || c == '>' || c == '|' || c == ' ' {
			result = append(result, '_')
		} else {
			result = append(result, c)
		}
	}
	return string(result)
}
