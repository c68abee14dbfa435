package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
)

// readPDF opens generated bytes and returns the page count and extracted text
func readPDF(t *testing.T, data []byte) (int, string) {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("generated PDF could not be parsed: %v", err)
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			t.Fatalf("page %d: %v", i, err)
		}
		text.WriteString(content)
	}
	return r.NumPage(), text.String()
}

func TestPDFText(t *testing.T) {
	if got := pdfText("¥1,000"); got != "\xa51,000" {
		t.Errorf("yen sign: got %q", got)
	}
	if got := pdfText("Aコンシューマー"); got != "A???????" {
		t.Errorf("non-Latin-1: got %q", got)
	}
	if got := FormatYenPDF(90258); got != "\xa590,258" {
		t.Errorf("FormatYenPDF: got %q", got)
	}
}

func TestGenerateSchedulePDFReport(t *testing.T) {
	result, solved, err := CalculateRequest(CalculationRequest{Principal: 1000000, AnnualRatePercent: 15, TermMonths: 12})
	if err != nil {
		t.Fatal(err)
	}

	data, err := GenerateSchedulePDFReport(result, solved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}

	pages, text := readPDF(t, data)
	if pages != 1 {
		t.Errorf("a 12-month schedule should fit on one page, got %d", pages)
	}
	if !strings.Contains(text, "Amortization Schedule") {
		t.Error("expected the title in the PDF text")
	}
}

func TestGenerateSchedulePDFReport_LongSchedulePaginates(t *testing.T) {
	result, err := Calculate(LoanTerms{Principal: 3000000, AnnualRatePercent: 3, TermMonths: 120, Method: EqualPrincipal})
	if err != nil {
		t.Fatal(err)
	}

	data, err := GenerateSchedulePDFReport(result, SolvedTerm{Terms: result.Terms})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pages, _ := readPDF(t, data)
	if pages < 2 {
		t.Errorf("a 120-month schedule should span several pages, got %d", pages)
	}
}

func TestGenerateSchedulePDFReport_Empty(t *testing.T) {
	if _, err := GenerateSchedulePDFReport(LoanResult{}, SolvedTerm{}); err == nil {
		t.Error("expected an error for an empty schedule")
	}
}

func TestGenerateMultiLoanPDFReport(t *testing.T) {
	m, err := CalculateMultiLoan([]LenderLoan{DefaultLenderLoan(testLenderA), DefaultLenderLoan(testLenderB)})
	if err != nil {
		t.Fatal(err)
	}

	data, err := GenerateMultiLoanPDFReport(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pages, text := readPDF(t, data)
	// Summary page plus one schedule page per lender
	if pages != 3 {
		t.Errorf("expected 3 pages, got %d", pages)
	}
	if !strings.Contains(text, "lender-b") {
		t.Error("expected lender IDs in the PDF text")
	}

	if _, err := GenerateMultiLoanPDFReport(MultiLoanResult{}); err == nil {
		t.Error("expected an error for no loans")
	}
}
