package main

import (
	"fmt"
	"io"
	"strings"
)

const consoleWidth = 78

// printBanner prints a boxed title line
func printBanner(w io.Writer, title string) {
	fmt.Fprintln(w, "╔"+strings.Repeat("═", consoleWidth)+"╗")
	fmt.Fprintf(w, "║ %-*s ║\n", consoleWidth-2, title)
	fmt.Fprintln(w, "╚"+strings.Repeat("═", consoleWidth)+"╝")
}

// PrintHeader prints the calculator header with the loan inputs
func PrintHeader(w io.Writer, req CalculationRequest) {
	printBanner(w, "LOAN AMORTIZATION SCHEDULE")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Loan:")
	fmt.Fprintln(w, "─────")
	fmt.Fprintf(w, "  Principal:     %s\n", FormatYen(req.Principal))
	fmt.Fprintf(w, "  Annual rate:   %s\n", FormatRate(req.AnnualRatePercent))
	fmt.Fprintf(w, "  Method:        %s (%s)\n", req.Method.JapaneseName(), req.Method)
	if req.Mode == ModeByPayment {
		fmt.Fprintf(w, "  Payment:       %s / month (term solved)\n", FormatYen(req.MonthlyPayment))
	} else {
		fmt.Fprintf(w, "  Term:          %s (%d months)\n", FormatPeriod(req.TermMonths), req.TermMonths)
	}
	fmt.Fprintln(w)
}

// PrintSolvedTerm explains how the term was derived from a target payment
func PrintSolvedTerm(w io.Writer, solved SolvedTerm) {
	if !solved.Solved {
		return
	}
	fmt.Fprintf(w, "  Target payment %s (minimum %s) repays the loan in %s (%d months)\n\n",
		FormatYen(solved.TargetPayment), FormatYen(solved.MinimumPayment),
		FormatPeriod(solved.Terms.TermMonths), solved.Terms.TermMonths)
}

// PrintLoanResult prints the result cards and the schedule.
// Without details long schedules are shown as the first 12 and last 3 months.
func PrintLoanResult(w io.Writer, result LoanResult, details bool) {
	printBanner(w, fmt.Sprintf("Result: %s, %s", result.Terms.Method, FormatPeriod(result.Terms.TermMonths)))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-16s %20s   %s\n", "Monthly payment", FormatYen(result.Summary.First), PaymentNote(result.Summary))
	fmt.Fprintf(w, "  %-16s %20s   %s\n", "Total payment", FormatYen(result.TotalPayment), TotalNote(result))
	fmt.Fprintf(w, "  %-16s %20s   %s\n", "Total interest", FormatYen(result.TotalInterest), InterestNote(result))
	fmt.Fprintf(w, "  %-16s %20s\n", "Term", FormatPeriod(result.Terms.TermMonths))
	fmt.Fprintln(w)

	rows := SchedulePreview(result.Schedule)
	if details {
		rows = fullRows(result.Schedule)
	}
	printScheduleTable(w, rows)

	if !details && IsTruncated(result.Schedule) {
		fmt.Fprintf(w, "  (%d of %d months shown, use -details for the full schedule)\n",
			previewMaxRows, len(result.Schedule))
	}
	fmt.Fprintln(w)
}

func printScheduleTable(w io.Writer, rows []PreviewRow) {
	fmt.Fprintf(w, "  %5s │ %14s │ %14s │ %14s │ %16s\n", "Month", "Payment", "Principal", "Interest", "Balance")
	fmt.Fprintln(w, "  "+strings.Repeat("─", 74))
	for _, row := range rows {
		if row.Separator {
			fmt.Fprintf(w, "  %5s │ %14s │ %14s │ %14s │ %16s\n", "...", "...", "...", "...", "...")
			continue
		}
		e := row.Entry
		fmt.Fprintf(w, "  %5d │ %14s │ %14s │ %14s │ %16s\n",
			e.Month, FormatNumber(e.Payment), FormatNumber(e.Principal), FormatNumber(e.Interest), FormatNumber(e.Balance))
	}
}

// PrintMultiLoanResult prints the combined totals and a per-lender breakdown
func PrintMultiLoanResult(w io.Writer, m MultiLoanResult) {
	printBanner(w, fmt.Sprintf("MULTI-LOAN SUMMARY (%d lenders)", len(m.Loans)))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-24s %20s\n", "First month (combined)", FormatYen(m.FirstMonthTotal()))
	fmt.Fprintf(w, "  %-24s %20s\n", "Total principal", FormatYen(m.PrincipalTotal))
	fmt.Fprintf(w, "  %-24s %20s\n", "Total payment", FormatYen(m.PaymentTotal))
	fmt.Fprintf(w, "  %-24s %20s\n", "Total interest", FormatYen(m.InterestTotal))
	fmt.Fprintf(w, "  %-24s %20s\n", "Longest term", FormatPeriod(m.MaxMonths()))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-12s │ %14s │ %7s │ %6s │ %14s │ %14s │ %14s\n",
		"Lender", "Principal", "Rate", "Months", "Monthly", "Total", "Interest")
	fmt.Fprintln(w, "  "+strings.Repeat("─", 98))
	for _, l := range m.Loans {
		r := l.Result
		fmt.Fprintf(w, "  %-12s │ %14s │ %7s │ %6d │ %14s │ %14s │ %14s\n",
			l.Lender.ID, FormatNumber(r.Terms.Principal), FormatRate(r.Terms.AnnualRatePercent),
			r.Terms.TermMonths, FormatNumber(r.Summary.First), FormatNumber(r.TotalPayment), FormatNumber(r.TotalInterest))
	}
	fmt.Fprintln(w, "  "+strings.Repeat("─", 98))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Lenders:")
	for _, l := range m.Loans {
		fmt.Fprintf(w, "    %-12s %s\n", l.Lender.ID, l.Lender.Name)
	}
	fmt.Fprintln(w)
}

// PrintMinimumPayment prints the payment floor shown next to the payment input
func PrintMinimumPayment(w io.Writer, principal int64, annualRatePercent float64) {
	fmt.Fprintf(w, "  Minimum monthly payment for %s at %s: %s\n",
		FormatYen(principal), FormatRate(annualRatePercent), FormatYen(MinimumPaymentFor(principal, annualRatePercent)))
}
