package main

import (
	"fmt"
	"testing"
)

// =============================================================================
// Schedule Invariant Tests
// =============================================================================
// These run every schedule in a grid of principals, rates, terms and methods
// and check properties that must hold regardless of the inputs.

type invariantCase struct {
	name  string
	terms LoanTerms
}

func invariantGrid() []invariantCase {
	principals := []int64{1, 999, 10000, 100000, 1000000, 12345678}
	rates := []float64{0, 0.1, 3, 14.6, 15, 18, 29.2}
	terms := []int{1, 2, 7, 12, 36, 120, 360}
	methods := []RepaymentMethod{EqualInstallment, EqualPrincipal}

	var cases []invariantCase
	for _, p := range principals {
		for _, r := range rates {
			for _, n := range terms {
				for _, m := range methods {
					cases = append(cases, invariantCase{
						name:  fmt.Sprintf("%s/P=%d/r=%.1f/n=%d", m.ShortName(), p, r, n),
						terms: LoanTerms{Principal: p, AnnualRatePercent: r, TermMonths: n, Method: m},
					})
				}
			}
		}
	}
	return cases
}

func TestInvariant_FinalBalanceIsZero(t *testing.T) {
	for _, tc := range invariantGrid() {
		s, err := GenerateSchedule(tc.terms)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if len(s) != tc.terms.TermMonths {
			t.Errorf("%s: expected %d entries, got %d", tc.name, tc.terms.TermMonths, len(s))
			continue
		}
		if last := s[len(s)-1].Balance; last != 0 {
			t.Errorf("%s: final balance %d", tc.name, last)
		}
	}
}

func TestInvariant_PrincipalPortionsSumToPrincipal(t *testing.T) {
	for _, tc := range invariantGrid() {
		s, _ := GenerateSchedule(tc.terms)
		var sum int64
		for _, e := range s {
			sum += e.Principal
		}
		if sum != tc.terms.Principal {
			t.Errorf("%s: principal portions sum to %d, want %d", tc.name, sum, tc.terms.Principal)
		}
	}
}

func TestInvariant_TotalInterestMatchesSum(t *testing.T) {
	for _, tc := range invariantGrid() {
		result, err := Calculate(tc.terms)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if result.TotalInterest != SumInterest(result.Schedule) {
			t.Errorf("%s: total interest %d, sum of interest %d", tc.name, result.TotalInterest, SumInterest(result.Schedule))
		}
		if result.TotalPayment != result.Terms.Principal+result.TotalInterest {
			t.Errorf("%s: total payment %d != principal + interest", tc.name, result.TotalPayment)
		}
	}
}

func TestInvariant_EntryComponentsAddUp(t *testing.T) {
	for _, tc := range invariantGrid() {
		s, _ := GenerateSchedule(tc.terms)
		prev := tc.terms.Principal
		for i, e := range s {
			if e.Month != i+1 {
				t.Errorf("%s: entry %d has month %d", tc.name, i, e.Month)
			}
			if e.Payment != e.Principal+e.Interest {
				t.Errorf("%s: month %d payment %d != %d + %d", tc.name, e.Month, e.Payment, e.Principal, e.Interest)
			}
			if e.Payment < 0 || e.Principal < 0 || e.Interest < 0 || e.Balance < 0 {
				t.Errorf("%s: month %d has a negative amount: %+v", tc.name, e.Month, e)
			}
			if e.Balance > prev {
				t.Errorf("%s: balance rose from %d to %d in month %d", tc.name, prev, e.Balance, e.Month)
			}
			if e.Balance != prev-e.Principal {
				t.Errorf("%s: month %d balance %d != %d - %d", tc.name, e.Month, e.Balance, prev, e.Principal)
			}
			prev = e.Balance
		}
	}
}

func TestInvariant_ZeroRateChargesNoInterest(t *testing.T) {
	for _, tc := range invariantGrid() {
		if tc.terms.AnnualRatePercent != 0 {
			continue
		}
		result, _ := Calculate(tc.terms)
		if result.TotalInterest != 0 {
			t.Errorf("%s: interest-free loan charged %d", tc.name, result.TotalInterest)
		}
	}
}

// practicalRange keeps the cases inside the everyday input range:
// 10,000 to 2,000,000 yen, 1% to 20%, up to 10 years
func practicalRange(t LoanTerms) bool {
	return t.Principal >= 10000 && t.Principal <= 2000000 &&
		t.AnnualRatePercent >= 1 && t.AnnualRatePercent <= 20 &&
		t.TermMonths <= 120
}

func TestInvariant_EqualPrincipalPaymentsDecline(t *testing.T) {
	for _, tc := range invariantGrid() {
		if tc.terms.Method != EqualPrincipal {
			continue
		}
		s, _ := GenerateSchedule(tc.terms)

		// Payments never rise. They fall every month once the fixed portion
		// earns at least one yen of interest, so rounding cannot hold them level.
		portion := roundUnit(float64(tc.terms.Principal) / float64(tc.terms.TermMonths))
		strict := tc.terms.AnnualRatePercent > 0 && float64(portion)*tc.terms.MonthlyRate() >= 1
		for i := 1; i < len(s); i++ {
			if s[i].Payment > s[i-1].Payment {
				t.Errorf("%s: month %d payment %d rose above %d", tc.name, s[i].Month, s[i].Payment, s[i-1].Payment)
				break
			}
			if strict && s[i].Payment == s[i-1].Payment {
				t.Errorf("%s: month %d payment %d did not decline", tc.name, s[i].Month, s[i].Payment)
				break
			}
		}
	}
}

func TestInvariant_EqualInstallmentPaymentsFlat(t *testing.T) {
	for _, tc := range invariantGrid() {
		if tc.terms.Method != EqualInstallment || !practicalRange(tc.terms) {
			continue
		}
		s, _ := GenerateSchedule(tc.terms)

		// Every payment but the last, which settles the rounding, is the fixed amount
		fixed := EqualInstallmentPayment(tc.terms.Principal, tc.terms.MonthlyRate(), tc.terms.TermMonths)
		for _, e := range s[:len(s)-1] {
			if e.Payment != fixed {
				t.Errorf("%s: month %d paid %d, expected %d", tc.name, e.Month, e.Payment, fixed)
				break
			}
		}
	}
}

func TestInvariant_EqualPrincipalCostsNoMoreInterest(t *testing.T) {
	for _, r := range []float64{15, 18, 29.2} {
		for _, n := range []int{12, 36, 120, 360} {
			ei, _ := Calculate(LoanTerms{Principal: 1000000, AnnualRatePercent: r, TermMonths: n, Method: EqualInstallment})
			ep, _ := Calculate(LoanTerms{Principal: 1000000, AnnualRatePercent: r, TermMonths: n, Method: EqualPrincipal})
			if ep.TotalInterest > ei.TotalInterest {
				t.Errorf("r=%.1f n=%d: equal principal interest %d exceeds equal installment %d",
					r, n, ep.TotalInterest, ei.TotalInterest)
			}
		}
	}
}

func TestInvariant_SolvedTermFitsPayment(t *testing.T) {
	principals := []int64{50000, 300000, 1000000, 5000000}
	rates := []float64{0, 3, 15, 18}
	for _, p := range principals {
		for _, r := range rates {
			minimum := MinimumPaymentFor(p, r)
			for _, payment := range []int64{minimum, minimum * 2, minimum * 5, p / 3, p} {
				months, err := SolveTermFromEqualInstallmentPayment(p, r, payment)
				if err != nil {
					t.Errorf("P=%d r=%.1f pay=%d: unexpected error: %v", p, r, payment, err)
					continue
				}
				if months < 1 {
					t.Errorf("P=%d r=%.1f pay=%d: solved %d months", p, r, payment, months)
					continue
				}
				if got := EqualInstallmentPayment(p, MonthlyRate(r), months); got > payment {
					t.Errorf("P=%d r=%.1f pay=%d: %d months needs %d", p, r, payment, months, got)
				}
			}
		}
	}
}

func TestInvariant_MinimumPaymentIsFeasible(t *testing.T) {
	for _, p := range []int64{100000, 1000000, 999999999} {
		for _, r := range []float64{0, 0.5, 15, 18, 20} {
			minimum := MinimumPaymentFor(p, r)
			if _, err := SolveTermFromEqualInstallmentPayment(p, r, minimum); err != nil {
				t.Errorf("P=%d r=%.1f: minimum payment %d is infeasible: %v", p, r, minimum, err)
			}
		}
	}
}
