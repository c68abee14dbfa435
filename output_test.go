package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintLoanResult_Preview(t *testing.T) {
	result, _ := Calculate(LoanTerms{Principal: 1000000, AnnualRatePercent: 15, TermMonths: 120})

	var buf bytes.Buffer
	PrintLoanResult(&buf, result, false)
	out := buf.String()

	if !strings.Contains(out, "15 of 120 months shown") {
		t.Error("expected the truncation note")
	}
	if strings.Contains(out, "\n     60 │") {
		t.Error("month 60 should be hidden from the preview")
	}

	buf.Reset()
	PrintLoanResult(&buf, result, true)
	if !strings.Contains(buf.String(), "│") || strings.Contains(buf.String(), "months shown") {
		t.Error("details should print the full schedule without a truncation note")
	}
	if !strings.Contains(buf.String(), "\n     60 │") {
		t.Error("details should include month 60")
	}
}

func TestPrintHeaderAndSolvedTerm(t *testing.T) {
	req := CalculationRequest{Mode: ModeByPayment, Principal: 1000000, AnnualRatePercent: 15, MonthlyPayment: 100000}
	_, solved, err := CalculateRequest(req)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	PrintHeader(&buf, req)
	PrintSolvedTerm(&buf, solved)
	out := buf.String()
	for _, want := range []string{"1,000,000円", "15.0%", "元利均等返済", "100,000円 / month", "11ヶ月 (11 months)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintMultiLoanResult(t *testing.T) {
	m, _ := CalculateMultiLoan([]LenderLoan{DefaultLenderLoan(testLenderA), DefaultLenderLoan(testLenderB)})

	var buf bytes.Buffer
	PrintMultiLoanResult(&buf, m)
	out := buf.String()
	for _, want := range []string{"2 lenders", "200,000円", "lender-a", "Bクレジット"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestPrintMinimumPayment(t *testing.T) {
	var buf bytes.Buffer
	PrintMinimumPayment(&buf, 1000000, 0)
	if !strings.Contains(buf.String(), "8,334円") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
