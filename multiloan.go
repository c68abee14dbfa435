package main

import (
	"errors"
	"fmt"
)

// ErrDuplicateLender is returned when the same lender appears twice in a batch
var ErrDuplicateLender = errors.New("duplicate lender")

// CalculateMultiLoan calculates one equal-installment loan per lender and the
// combined figures across all of them. Loans are kept in input order.
func CalculateMultiLoan(loans []LenderLoan) (MultiLoanResult, error) {
	if len(loans) == 0 {
		return MultiLoanResult{}, ValidationError{Field: "lenders", Message: "select at least one lender"}
	}

	seen := make(map[string]bool, len(loans))
	result := MultiLoanResult{Loans: make([]LenderResult, 0, len(loans))}

	for _, loan := range loans {
		if loan.Lender.ID == "" {
			return MultiLoanResult{}, ValidationError{Field: "lender.id", Message: "lender id is required"}
		}
		if seen[loan.Lender.ID] {
			return MultiLoanResult{}, fmt.Errorf("%w: %s", ErrDuplicateLender, loan.Lender.ID)
		}
		seen[loan.Lender.ID] = true

		calc, err := Calculate(loan.Terms())
		if err != nil {
			return MultiLoanResult{}, fmt.Errorf("lender %s: %w", loan.Lender.ID, err)
		}
		result.Loans = append(result.Loans, LenderResult{Lender: loan.Lender, Result: calc})
	}

	result.MonthlyTotals = CombinedMonthlyPayments(result.Loans)
	result.BalanceTotals = CombinedBalances(result.Loans)
	for _, l := range result.Loans {
		result.PrincipalTotal += l.Result.Terms.Principal
		result.PaymentTotal += l.Result.TotalPayment
		result.InterestTotal += l.Result.TotalInterest
	}

	return result, nil
}

// maxTerm returns the longest schedule length across loans
func maxTerm(loans []LenderResult) int {
	longest := 0
	for _, l := range loans {
		if n := len(l.Result.Schedule); n > longest {
			longest = n
		}
	}
	return longest
}

// CombinedMonthlyPayments sums payments by month index.
// Loans that have ended contribute 0 for the remaining months.
func CombinedMonthlyPayments(loans []LenderResult) []int64 {
	totals := make([]int64, maxTerm(loans))
	for _, l := range loans {
		for i, e := range l.Result.Schedule {
			totals[i] += e.Payment
		}
	}
	return totals
}

// CombinedBalances sums remaining balances by month index
func CombinedBalances(loans []LenderResult) []int64 {
	totals := make([]int64, maxTerm(loans))
	for _, l := range loans {
		for i, e := range l.Result.Schedule {
			totals[i] += e.Balance
		}
	}
	return totals
}

// PaymentAt returns the payment a single loan requires in a 1-based month,
// or 0 once the loan has been repaid
func PaymentAt(r LoanResult, month int) int64 {
	if month < 1 || month > len(r.Schedule) {
		return 0
	}
	return r.Schedule[month-1].Payment
}

// DefaultLenderLoan returns the starting values for a newly selected lender:
// 100,000 over 12 months at the lender's default rate
func DefaultLenderLoan(l Lender) LenderLoan {
	return LenderLoan{
		Lender:            l,
		Principal:         100000,
		AnnualRatePercent: l.DefaultRatePercent,
		TermMonths:        12,
	}
}
