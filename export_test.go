package main

import (
	"bytes"
	"encoding/csv"
	"testing"
)

func TestWriteScheduleCSV(t *testing.T) {
	result, _ := Calculate(LoanTerms{Principal: 1000000, AnnualRatePercent: 15, TermMonths: 12})

	var buf bytes.Buffer
	if err := WriteScheduleCSV(&buf, result.Schedule); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 13 {
		t.Fatalf("expected header + 12 rows, got %d", len(records))
	}
	if got := records[0]; got[0] != "month" || got[4] != "balance" {
		t.Errorf("unexpected header: %v", got)
	}
	first := records[1]
	if first[0] != "1" || first[1] != "90258" || first[2] != "77758" || first[3] != "12500" || first[4] != "922242" {
		t.Errorf("unexpected first row: %v", first)
	}
	if records[12][4] != "0" {
		t.Errorf("final balance should be 0, got %s", records[12][4])
	}
}

func TestWriteMultiLoanCSV(t *testing.T) {
	m, _ := CalculateMultiLoan([]LenderLoan{
		{Lender: testLenderA, Principal: 100000, AnnualRatePercent: 15, TermMonths: 3},
		{Lender: testLenderB, Principal: 100000, AnnualRatePercent: 18, TermMonths: 6},
	})

	var buf bytes.Buffer
	if err := WriteMultiLoanCSV(&buf, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	// header + 3 + 6 lender rows + 6 totals
	if len(records) != 16 {
		t.Fatalf("expected 16 records, got %d", len(records))
	}
	if records[0][0] != "lender" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "lender-a" || records[4][0] != "lender-b" {
		t.Errorf("lender blocks out of order: %v / %v", records[1], records[4])
	}
	totals := records[10:]
	for i, rec := range totals {
		if rec[0] != "total" {
			t.Errorf("row %d should be a total, got %v", i, rec)
		}
	}
	if totals[5][5] != "0" {
		t.Errorf("combined final balance should be 0, got %s", totals[5][5])
	}
}

func TestScheduleFilename(t *testing.T) {
	terms := LoanTerms{Principal: 1000000, TermMonths: 12, Method: EqualPrincipal}
	if got := scheduleFilename(terms, "csv"); got != "schedule-principal-1000000-12m.csv" {
		t.Errorf("got %q", got)
	}
}
