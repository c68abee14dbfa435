package main

import "testing"

// =============================================================================
// Number Formatting Tests
// =============================================================================

func TestFormatYen(t *testing.T) {
	tests := []struct {
		amount   int64
		expected string
	}{
		{0, "0円"},
		{999, "999円"},
		{1000, "1,000円"},
		{90258, "90,258円"},
		{1000000, "1,000,000円"},
		{-12500, "-12,500円"},
	}

	for _, tc := range tests {
		if got := FormatYen(tc.amount); got != tc.expected {
			t.Errorf("FormatYen(%d) = %q, want %q", tc.amount, got, tc.expected)
		}
	}
}

func TestFormatMan(t *testing.T) {
	tests := []struct {
		amount   int64
		expected string
	}{
		{100000, "10万円"},
		{2000000, "200万円"},
		{15000, "15,000円"},
		{0, "0円"},
	}

	for _, tc := range tests {
		if got := FormatMan(tc.amount); got != tc.expected {
			t.Errorf("FormatMan(%d) = %q, want %q", tc.amount, got, tc.expected)
		}
	}
}

func TestFormatPeriod(t *testing.T) {
	tests := []struct {
		months   int
		expected string
		ascii    string
	}{
		{5, "5ヶ月", "5 mo"},
		{12, "1年", "1 yr"},
		{14, "1年2ヶ月", "1 yr 2 mo"},
		{360, "30年", "30 yr"},
	}

	for _, tc := range tests {
		if got := FormatPeriod(tc.months); got != tc.expected {
			t.Errorf("FormatPeriod(%d) = %q, want %q", tc.months, got, tc.expected)
		}
		if got := FormatPeriodASCII(tc.months); got != tc.ascii {
			t.Errorf("FormatPeriodASCII(%d) = %q, want %q", tc.months, got, tc.ascii)
		}
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(15); got != "15.0%" {
		t.Errorf("got %q", got)
	}
	if got := FormatRate(14.6); got != "14.6%" {
		t.Errorf("got %q", got)
	}
}

// =============================================================================
// Result Notes Tests
// =============================================================================

func TestInterestRatio(t *testing.T) {
	if got := InterestRatio(83100, 1083100).StringFixed(1); got != "7.7" {
		t.Errorf("expected 7.7, got %s", got)
	}
	if got := InterestRatio(0, 0).StringFixed(1); got != "0.0" {
		t.Errorf("expected 0.0 for an empty result, got %s", got)
	}
}

func TestResultNotes(t *testing.T) {
	ei, _ := Calculate(LoanTerms{Principal: 1000000, AnnualRatePercent: 15, TermMonths: 12, Method: EqualInstallment})
	ep, _ := Calculate(LoanTerms{Principal: 1000000, AnnualRatePercent: 15, TermMonths: 12, Method: EqualPrincipal})

	flat, _ := Calculate(LoanTerms{Principal: 120000, AnnualRatePercent: 0, TermMonths: 12, Method: EqualInstallment})

	if got := PaymentNote(flat.Summary); got != "毎月一定" {
		t.Errorf("flat note: got %q", got)
	}
	if got := PaymentNote(ei.Summary); got != "毎月一定（最終回 90,262円）" {
		t.Errorf("equal installment note: got %q", got)
	}
	if got := PaymentNote(ep.Summary); got != "初回 → 最終回: 84,375円" {
		t.Errorf("equal principal note: got %q", got)
	}
	if got := TotalNote(ep); got != "借入額 + "+FormatYen(ep.TotalInterest) {
		t.Errorf("total note: got %q", got)
	}
	want := "総返済額の" + InterestRatio(ei.TotalInterest, ei.TotalPayment).StringFixed(1) + "%"
	if got := InterestNote(ei); got != want {
		t.Errorf("interest note: got %q, want %q", got, want)
	}
}

// =============================================================================
// Schedule Preview Tests
// =============================================================================

func TestSchedulePreview(t *testing.T) {
	tests := []struct {
		months    int
		rows      int
		truncated bool
	}{
		{1, 1, false},
		{15, 15, false},
		{16, 16, true},
		{120, 16, true},
	}

	for _, tc := range tests {
		s := GenerateEqualInstallmentSchedule(LoanTerms{Principal: 1000000, AnnualRatePercent: 15, TermMonths: tc.months})
		rows := SchedulePreview(s)
		if len(rows) != tc.rows {
			t.Errorf("%d months: expected %d rows, got %d", tc.months, tc.rows, len(rows))
		}
		if IsTruncated(s) != tc.truncated {
			t.Errorf("%d months: expected truncated=%v", tc.months, tc.truncated)
		}
	}
}

func TestSchedulePreview_HeadSeparatorTail(t *testing.T) {
	s := GenerateEqualInstallmentSchedule(LoanTerms{Principal: 1000000, AnnualRatePercent: 15, TermMonths: 120})
	rows := SchedulePreview(s)

	for i := 0; i < 12; i++ {
		if rows[i].Separator || rows[i].Entry.Month != i+1 {
			t.Errorf("row %d: expected month %d, got %+v", i, i+1, rows[i])
		}
	}
	if !rows[12].Separator {
		t.Error("row 12 should be the separator")
	}
	for i, month := range []int{118, 119, 120} {
		if rows[13+i].Entry.Month != month {
			t.Errorf("tail row %d: expected month %d, got %d", i, month, rows[13+i].Entry.Month)
		}
	}
}
