package main

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ChartKind selects how a ChartData is drawn
type ChartKind string

const (
	ChartLine       ChartKind = "line"
	ChartStackedBar ChartKind = "stacked-bar"
	ChartPie        ChartKind = "pie"
)

const (
	colorPrincipal = "#3182CE"
	colorInterest  = "#DD6B20"
	colorFill      = "rgba(49, 130, 206, 0.1)"
	chartWidth     = 720
	chartHeight    = 320
	chartPadLeft   = 90
	chartPadRight  = 20
	chartPadTop    = 30
	chartPadBottom = 40
)

// lenderColors cycles for multi-loan charts
var lenderColors = []string{"#E60012", "#00A7E1", "#00A040", "#ED6103", "#005BAC"}

// ChartSeries is one named sequence of values
type ChartSeries struct {
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Values []int64 `json:"values"`
}

// ChartData is a chart ready to be drawn. Labels index the x axis (or pie slices).
type ChartData struct {
	Kind   ChartKind     `json:"kind"`
	Title  string        `json:"title"`
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

func monthLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	return labels
}

// BalanceChart plots the remaining balance by month
func BalanceChart(s Schedule) ChartData {
	values := make([]int64, len(s))
	for i, e := range s {
		values[i] = e.Balance
	}
	return ChartData{
		Kind:   ChartLine,
		Title:  "残高推移",
		Labels: monthLabels(len(s)),
		Series: []ChartSeries{{Label: "残高", Color: colorPrincipal, Values: values}},
	}
}

// BreakdownChart stacks the principal and interest portions of each payment
func BreakdownChart(s Schedule) ChartData {
	principal := make([]int64, len(s))
	interest := make([]int64, len(s))
	for i, e := range s {
		principal[i] = e.Principal
		interest[i] = e.Interest
	}
	return ChartData{
		Kind:   ChartStackedBar,
		Title:  "元金・利息内訳",
		Labels: monthLabels(len(s)),
		Series: []ChartSeries{
			{Label: "元金", Color: colorPrincipal, Values: principal},
			{Label: "利息", Color: colorInterest, Values: interest},
		},
	}
}

// StackedPaymentChart stacks each lender's monthly payment. Ended loans contribute 0.
func StackedPaymentChart(m MultiLoanResult) ChartData {
	n := m.MaxMonths()
	chart := ChartData{Kind: ChartStackedBar, Title: "月々の返済額（業者別）", Labels: monthLabels(n)}
	for i, l := range m.Loans {
		values := make([]int64, n)
		for month := 1; month <= n; month++ {
			values[month-1] = PaymentAt(l.Result, month)
		}
		chart.Series = append(chart.Series, ChartSeries{
			Label:  l.Lender.Name,
			Color:  lenderColors[i%len(lenderColors)],
			Values: values,
		})
	}
	return chart
}

// PrincipalPieChart shows each lender's share of the combined principal
func PrincipalPieChart(m MultiLoanResult) ChartData {
	chart := ChartData{Kind: ChartPie, Title: "借入額の内訳"}
	values := make([]int64, 0, len(m.Loans))
	for _, l := range m.Loans {
		chart.Labels = append(chart.Labels, l.Lender.Name)
		values = append(values, l.Result.Terms.Principal)
	}
	chart.Series = []ChartSeries{{Label: "借入額", Values: values}}
	return chart
}

// TotalBalanceChart plots the combined balance by month
func TotalBalanceChart(m MultiLoanResult) ChartData {
	return ChartData{
		Kind:   ChartLine,
		Title:  "合計残高推移",
		Labels: monthLabels(m.MaxMonths()),
		Series: []ChartSeries{{Label: "合計残高", Color: colorPrincipal, Values: m.BalanceTotals}},
	}
}

// Share returns value as a percentage of the series total, rounded to one decimal
func Share(values []int64, i int) decimal.Decimal {
	var total int64
	for _, v := range values {
		total += v
	}
	if total == 0 || i < 0 || i >= len(values) {
		return decimal.Zero
	}
	return decimal.NewFromInt(values[i]).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total)).Round(1)
}

// SVG renders the chart as a standalone inline <svg> element
func (c ChartData) SVG() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg class="chart chart-%s" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-label="%s">`,
		c.Kind, chartWidth, chartHeight, html.EscapeString(c.Title))
	fmt.Fprintf(&b, `<text x="%d" y="18" font-size="14" font-weight="600">%s</text>`, chartPadLeft, html.EscapeString(c.Title))

	switch c.Kind {
	case ChartLine:
		c.writeLine(&b)
	case ChartStackedBar:
		c.writeStackedBars(&b)
	case ChartPie:
		c.writePie(&b)
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func plotWidth() float64  { return float64(chartWidth - chartPadLeft - chartPadRight) }
func plotHeight() float64 { return float64(chartHeight - chartPadTop - chartPadBottom) }

// yFor maps a value onto the plot area, 0 at the bottom axis
func yFor(v, max int64) float64 {
	if max <= 0 {
		return float64(chartPadTop) + plotHeight()
	}
	return float64(chartPadTop) + plotHeight()*(1-float64(v)/float64(max))
}

func (c ChartData) writeAxes(b *strings.Builder, max int64) {
	x0 := float64(chartPadLeft)
	y0 := float64(chartPadTop) + plotHeight()
	fmt.Fprintf(b, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%.1f" stroke="#CBD5E0"/>`, x0, chartPadTop, x0, y0)
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#CBD5E0"/>`, x0, y0, x0+plotWidth(), y0)
	fmt.Fprintf(b, `<text x="%.1f" y="%d" font-size="11" text-anchor="end">%s</text>`, x0-6, chartPadTop+4, FormatYen(max))
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="11" text-anchor="end">0</text>`, x0-6, y0+4)
	if n := len(c.Labels); n > 0 {
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="11">%s</text>`, x0, y0+16, html.EscapeString(c.Labels[0]))
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="11" text-anchor="end">%s</text>`, x0+plotWidth(), y0+16, html.EscapeString(c.Labels[n-1]))
	}
}

func (c ChartData) writeLine(b *strings.Builder) {
	var max int64
	for _, s := range c.Series {
		for _, v := range s.Values {
			if v > max {
				max = v
			}
		}
	}
	c.writeAxes(b, max)

	for _, s := range c.Series {
		n := len(s.Values)
		if n == 0 {
			continue
		}
		step := 0.0
		if n > 1 {
			step = plotWidth() / float64(n-1)
		}
		points := make([]string, n)
		for i, v := range s.Values {
			points[i] = fmt.Sprintf("%.1f,%.1f", float64(chartPadLeft)+step*float64(i), yFor(v, max))
		}
		base := float64(chartPadTop) + plotHeight()
		fmt.Fprintf(b, `<polygon fill="%s" points="%.1f,%.1f %s %.1f,%.1f"/>`,
			colorFill, float64(chartPadLeft), base, strings.Join(points, " "), float64(chartPadLeft)+step*float64(n-1), base)
		fmt.Fprintf(b, `<polyline class="series" data-label="%s" fill="none" stroke="%s" stroke-width="2" points="%s"/>`,
			html.EscapeString(s.Label), s.Color, strings.Join(points, " "))
	}
}

func (c ChartData) writeStackedBars(b *strings.Builder) {
	n := len(c.Labels)
	totals := make([]int64, n)
	var max int64
	for _, s := range c.Series {
		for i := 0; i < n && i < len(s.Values); i++ {
			totals[i] += s.Values[i]
			if totals[i] > max {
				max = totals[i]
			}
		}
	}
	c.writeAxes(b, max)
	if n == 0 {
		return
	}

	slot := plotWidth() / float64(n)
	width := math.Max(slot*0.8, 0.5)
	stacked := make([]int64, n)
	for _, s := range c.Series {
		fmt.Fprintf(b, `<g class="series" data-label="%s" fill="%s">`, html.EscapeString(s.Label), s.Color)
		for i := 0; i < n && i < len(s.Values); i++ {
			if s.Values[i] == 0 {
				continue
			}
			top := yFor(stacked[i]+s.Values[i], max)
			bottom := yFor(stacked[i], max)
			fmt.Fprintf(b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`,
				float64(chartPadLeft)+slot*float64(i)+(slot-width)/2, top, width, bottom-top)
			stacked[i] += s.Values[i]
		}
		b.WriteString(`</g>`)
	}
	c.writeLegend(b)
}

func (c ChartData) writeLegend(b *strings.Builder) {
	x := float64(chartPadLeft)
	y := float64(chartHeight) - 8
	for _, s := range c.Series {
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="10" height="10" fill="%s"/>`, x+120, y-9, s.Color)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="11">%s</text>`, x+134, y, html.EscapeString(s.Label))
		x += 110
	}
}

func (c ChartData) writePie(b *strings.Builder) {
	if len(c.Series) == 0 {
		return
	}
	values := c.Series[0].Values
	var total int64
	for _, v := range values {
		total += v
	}
	if total <= 0 {
		return
	}

	cx, cy := float64(chartWidth)/3, float64(chartHeight)/2+10
	radius := plotHeight() / 2
	angle := -math.Pi / 2
	for i, v := range values {
		color := lenderColors[i%len(lenderColors)]
		label := ""
		if i < len(c.Labels) {
			label = c.Labels[i]
		}
		if v == total {
			fmt.Fprintf(b, `<circle class="slice" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`, cx, cy, radius, color)
		} else if v > 0 {
			sweep := 2 * math.Pi * float64(v) / float64(total)
			x1, y1 := cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)
			x2, y2 := cx+radius*math.Cos(angle+sweep), cy+radius*math.Sin(angle+sweep)
			large := 0
			if sweep > math.Pi {
				large = 1
			}
			fmt.Fprintf(b, `<path class="slice" fill="%s" d="M%.1f,%.1f L%.1f,%.1f A%.1f,%.1f 0 %d 1 %.1f,%.1f Z"/>`,
				color, cx, cy, x1, y1, radius, radius, large, x2, y2)
			angle += sweep
		}

		ly := float64(chartPadTop) + 20 + float64(i)*20
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="10" height="10" fill="%s"/>`, cx+radius+40, ly-9, color)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="12">%s: %s (%s%%)</text>`,
			cx+radius+56, ly, html.EscapeString(label), FormatYen(v), Share(values, i).StringFixed(1))
	}
}
