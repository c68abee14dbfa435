package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	yenSuffix       = "円"
	previewHead     = 12
	previewTail     = 3
	previewMaxRows  = previewHead + previewTail
	flatPaymentNote = "毎月一定"
)

// groupDigits inserts a comma every three digits (ja-JP style)
func groupDigits(n int64) string {
	negative := n < 0
	if negative {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		var b strings.Builder
		lead := len(s) % 3
		if lead > 0 {
			b.WriteString(s[:lead])
		}
		for i := lead; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if negative {
		return "-" + s
	}
	return s
}

// FormatNumber formats an amount with digit grouping and no unit
func FormatNumber(amount int64) string {
	return groupDigits(amount)
}

// FormatYen formats an amount as e.g. "1,000,000円"
func FormatYen(amount int64) string {
	return groupDigits(amount) + yenSuffix
}

// FormatMan formats round amounts in units of 10,000 (e.g. "10万円"), used for slider labels
func FormatMan(amount int64) string {
	if amount != 0 && amount%10000 == 0 {
		return strconv.FormatInt(amount/10000, 10) + "万" + yenSuffix
	}
	return FormatYen(amount)
}

// FormatPeriod formats a term in months as years and months
func FormatPeriod(months int) string {
	years := months / monthsPerYear
	rest := months % monthsPerYear
	switch {
	case years == 0:
		return fmt.Sprintf("%dヶ月", rest)
	case rest == 0:
		return fmt.Sprintf("%d年", years)
	default:
		return fmt.Sprintf("%d年%dヶ月", years, rest)
	}
}

// FormatPeriodASCII is FormatPeriod for outputs limited to Latin-1 (PDF)
func FormatPeriodASCII(months int) string {
	years := months / monthsPerYear
	rest := months % monthsPerYear
	switch {
	case years == 0:
		return fmt.Sprintf("%d mo", rest)
	case rest == 0:
		return fmt.Sprintf("%d yr", years)
	default:
		return fmt.Sprintf("%d yr %d mo", years, rest)
	}
}

// FormatRate formats an annual percentage with one decimal place
func FormatRate(annualRatePercent float64) string {
	return strconv.FormatFloat(annualRatePercent, 'f', 1, 64) + "%"
}

// InterestRatio returns total interest as a percentage of total payment, rounded to one decimal
func InterestRatio(totalInterest, totalPayment int64) decimal.Decimal {
	if totalPayment == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(totalInterest).
		Mul(decimal.NewFromInt(percentDivisor)).
		Div(decimal.NewFromInt(totalPayment)).
		Round(1)
}

// InterestNote describes interest as a share of total payment
func InterestNote(r LoanResult) string {
	return fmt.Sprintf("総返済額の%s%%", InterestRatio(r.TotalInterest, r.TotalPayment).StringFixed(1))
}

// TotalNote describes how much more than the principal is repaid
func TotalNote(r LoanResult) string {
	return "借入額 + " + FormatYen(r.TotalPayment-r.Terms.Principal)
}

// PaymentNote describes the payment series: flat, flat with an adjusted final
// payment, or first-to-last for a declining series
func PaymentNote(s PaymentSummary) string {
	switch {
	case s.IsFlat():
		return flatPaymentNote
	case s.HasFinalAdjustment():
		return flatPaymentNote + "（最終回 " + FormatYen(s.Last) + "）"
	}
	return "初回 → 最終回: " + FormatYen(s.Last)
}

// PreviewRow is either a schedule entry or the "..." marker between head and tail
type PreviewRow struct {
	Entry     ScheduleEntry
	Separator bool
}

// SchedulePreview returns the first 12 and last 3 entries with a separator
// between them. Schedules of 15 entries or fewer are returned whole.
func SchedulePreview(schedule Schedule) []PreviewRow {
	if len(schedule) <= previewMaxRows {
		return fullRows(schedule)
	}
	rows := make([]PreviewRow, 0, previewMaxRows+1)
	for _, e := range schedule[:previewHead] {
		rows = append(rows, PreviewRow{Entry: e})
	}
	rows = append(rows, PreviewRow{Separator: true})
	for _, e := range schedule[len(schedule)-previewTail:] {
		rows = append(rows, PreviewRow{Entry: e})
	}
	return rows
}

// IsTruncated reports whether SchedulePreview hides rows of this schedule
func IsTruncated(schedule Schedule) bool {
	return len(schedule) > previewMaxRows
}

func fullRows(schedule Schedule) []PreviewRow {
	rows := make([]PreviewRow, 0, len(schedule))
	for _, e := range schedule {
		rows = append(rows, PreviewRow{Entry: e})
	}
	return rows
}
