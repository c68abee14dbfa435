package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput is returned for degenerate loan terms (non-positive principal or term, bad rate)
	ErrInvalidInput = errors.New("invalid loan input")
	// ErrInfeasibleRepayment is returned when a target payment never reduces the balance
	ErrInfeasibleRepayment = errors.New("payment does not exceed monthly interest")
	// ErrInconsistentTotals is returned if total interest disagrees with the sum of interest portions
	ErrInconsistentTotals = errors.New("schedule totals are inconsistent")
)

const (
	monthsPerYear         = 12
	percentDivisor        = 100
	minimumPaymentMargin  = "1.1" // 10% over pure interest
	interestFreeFloorTerm = 120   // 10-year floor used for the interest-free minimum payment
	maxSearchMonths       = 360   // 30-year ceiling for the equal-principal term search
	termEpsilon           = 1e-9
)

// MonthlyRate converts an annual percentage (e.g. 15.0) to a monthly decimal rate (0.0125)
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / percentDivisor / monthsPerYear
}

// roundUnit rounds half away from zero to the nearest currency unit
func roundUnit(x float64) int64 {
	return int64(math.Round(x))
}

// monthlyInterest is the interest charged on balance for one month.
// A zero rate always yields exactly 0.
func monthlyInterest(balance int64, monthlyRate float64) int64 {
	if monthlyRate == 0 {
		return 0
	}
	return roundUnit(float64(balance) * monthlyRate)
}

// monthlyInterestExact returns principal × annualRate / 1200 without float drift
func monthlyInterestExact(principal int64, annualRatePercent float64) decimal.Decimal {
	return decimal.NewFromInt(principal).
		Mul(decimal.NewFromFloat(annualRatePercent)).
		Div(decimal.NewFromInt(percentDivisor * monthsPerYear))
}

// ValidateTerms rejects terms that would produce NaN or divide-by-zero artifacts
func ValidateTerms(t LoanTerms) error {
	if t.Principal <= 0 {
		return ValidationError{Field: "principal", Message: fmt.Sprintf("principal must be positive (got %d)", t.Principal)}
	}
	if t.TermMonths <= 0 {
		return ValidationError{Field: "term_months", Message: fmt.Sprintf("term must be at least 1 month (got %d)", t.TermMonths)}
	}
	if math.IsNaN(t.AnnualRatePercent) || math.IsInf(t.AnnualRatePercent, 0) || t.AnnualRatePercent < 0 {
		return ValidationError{Field: "annual_rate_percent", Message: fmt.Sprintf("rate must be a non-negative number (got %v)", t.AnnualRatePercent)}
	}
	if !t.Method.IsValid() {
		return ValidationError{Field: "method", Message: fmt.Sprintf("unknown repayment method %d", int(t.Method))}
	}
	return nil
}

// EqualInstallmentPayment calculates the fixed monthly payment for an equal-installment loan
// Using formula: M = P * [r(1+r)^n] / [(1+r)^n - 1]
func EqualInstallmentPayment(principal int64, monthlyRate float64, termMonths int) int64 {
	if termMonths <= 0 {
		return 0
	}
	p := float64(principal)
	if monthlyRate == 0 {
		return roundUnit(p / float64(termMonths))
	}

	factor := math.Pow(1+monthlyRate, float64(termMonths))
	return roundUnit(p * (monthlyRate * factor) / (factor - 1))
}

// GenerateEqualInstallmentSchedule builds a schedule with a constant payment.
// The principal portion never exceeds the outstanding balance, and the final
// entry settles whatever rounding left behind so the loan closes at exactly 0.
func GenerateEqualInstallmentSchedule(t LoanTerms) Schedule {
	r := t.MonthlyRate()
	payment := EqualInstallmentPayment(t.Principal, r, t.TermMonths)

	schedule := make(Schedule, 0, t.TermMonths)
	balance := t.Principal
	for month := 1; month <= t.TermMonths; month++ {
		interest := monthlyInterest(balance, r)
		principal := payment - interest
		if principal < 0 {
			principal = 0
		}
		if principal > balance || month == t.TermMonths {
			principal = balance
		}
		balance -= principal

		schedule = append(schedule, ScheduleEntry{
			Month:     month,
			Payment:   principal + interest,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}
	return schedule
}

// GenerateEqualPrincipalSchedule builds a schedule with a constant principal portion
// and a payment that declines as interest shrinks.
// When round(P/n) leaves yen over, the first months each carry one extra yen so
// the loan closes at exactly 0 without raising a later payment.
func GenerateEqualPrincipalSchedule(t LoanTerms) Schedule {
	r := t.MonthlyRate()
	portion := roundUnit(float64(t.Principal) / float64(t.TermMonths))
	remainder := t.Principal - portion*int64(t.TermMonths)

	schedule := make(Schedule, 0, t.TermMonths)
	balance := t.Principal
	for month := 1; month <= t.TermMonths; month++ {
		interest := monthlyInterest(balance, r)
		principal := portion
		if int64(month) <= remainder {
			principal++
		}
		if principal > balance {
			principal = balance
		}
		balance -= principal

		schedule = append(schedule, ScheduleEntry{
			Month:     month,
			Payment:   principal + interest,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}
	return schedule
}

// GenerateSchedule validates the terms and dispatches on the repayment method
func GenerateSchedule(t LoanTerms) (Schedule, error) {
	if err := ValidateTerms(t); err != nil {
		return nil, err
	}
	switch t.Method {
	case EqualPrincipal:
		return GenerateEqualPrincipalSchedule(t), nil
	default:
		return GenerateEqualInstallmentSchedule(t), nil
	}
}

// TotalPayment returns the sum of all payments in the schedule
func TotalPayment(schedule Schedule) int64 {
	var total int64
	for _, e := range schedule {
		total += e.Payment
	}
	return total
}

// TotalInterest returns total payments minus the original principal
func TotalInterest(t LoanTerms, schedule Schedule) int64 {
	return TotalPayment(schedule) - t.Principal
}

// SumInterest adds up the interest portions of every entry
func SumInterest(schedule Schedule) int64 {
	var total int64
	for _, e := range schedule {
		total += e.Interest
	}
	return total
}

// Summarize returns the first and last payment of a schedule
func Summarize(schedule Schedule, method RepaymentMethod) PaymentSummary {
	summary := PaymentSummary{Method: method}
	if len(schedule) == 0 {
		return summary
	}
	summary.First = schedule[0].Payment
	summary.Last = schedule[len(schedule)-1].Payment
	return summary
}

// Calculate runs a complete calculation for one loan
func Calculate(t LoanTerms) (LoanResult, error) {
	schedule, err := GenerateSchedule(t)
	if err != nil {
		return LoanResult{}, err
	}

	result := LoanResult{
		Terms:         t,
		Schedule:      schedule,
		Summary:       Summarize(schedule, t.Method),
		TotalPayment:  TotalPayment(schedule),
		TotalInterest: TotalInterest(t, schedule),
	}

	if sum := SumInterest(schedule); sum != result.TotalInterest {
		return LoanResult{}, fmt.Errorf("%w: total interest %d, sum of interest portions %d",
			ErrInconsistentTotals, result.TotalInterest, sum)
	}
	return result, nil
}

// MinimumPayment is the lowest monthly payment the UI accepts for these terms.
// Interest-free loans use a 10-year floor; otherwise 10% over pure interest. Always rounded up.
func MinimumPayment(t LoanTerms) int64 {
	if t.Principal <= 0 {
		return 0
	}
	if t.MonthlyRate() == 0 {
		return ceilDiv(t.Principal, interestFreeFloorTerm)
	}
	margin := decimal.RequireFromString(minimumPaymentMargin)
	return monthlyInterestExact(t.Principal, t.AnnualRatePercent).Mul(margin).Ceil().IntPart()
}

// ceilDiv divides two positive integers rounding up
func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// SolveTermFromEqualInstallmentPayment inverts the annuity formula to find how many
// months a fixed payment takes to repay the principal.
// Returns ErrInfeasibleRepayment if the payment does not exceed the first month's interest.
func SolveTermFromEqualInstallmentPayment(principal int64, annualRatePercent float64, monthlyPayment int64) (int, error) {
	if principal <= 0 {
		return 0, ValidationError{Field: "principal", Message: fmt.Sprintf("principal must be positive (got %d)", principal)}
	}
	if math.IsNaN(annualRatePercent) || annualRatePercent < 0 {
		return 0, ValidationError{Field: "annual_rate_percent", Message: fmt.Sprintf("rate must be a non-negative number (got %v)", annualRatePercent)}
	}

	interestOnly := monthlyInterestExact(principal, annualRatePercent)
	if monthlyPayment <= interestOnly.Ceil().IntPart() {
		return 0, fmt.Errorf("%w: payment %d, interest %s", ErrInfeasibleRepayment, monthlyPayment, interestOnly.StringFixed(0))
	}

	r := MonthlyRate(annualRatePercent)
	if r == 0 {
		return int(ceilDiv(principal, monthlyPayment)), nil
	}

	pay := float64(monthlyPayment)
	denominator := pay - float64(principal)*r
	if denominator <= 0 {
		return 0, fmt.Errorf("%w: payment %d", ErrInfeasibleRepayment, monthlyPayment)
	}
	ratio := pay / denominator
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0, fmt.Errorf("%w: payment %d", ErrInfeasibleRepayment, monthlyPayment)
	}

	months := math.Log(ratio) / math.Log(1+r)
	if math.IsNaN(months) || math.IsInf(months, 0) || months <= 0 {
		return 0, fmt.Errorf("%w: payment %d", ErrInfeasibleRepayment, monthlyPayment)
	}
	return int(math.Ceil(months - termEpsilon)), nil
}

// SolveTermFromEqualPrincipalFirstPayment finds the shortest term whose first
// equal-principal payment fits within monthlyPayment.
//
// There is no closed form, so terms 1..360 are tried in order. If none fits the
// search ceiling (360) is returned; that term may still need a higher first payment.
func SolveTermFromEqualPrincipalFirstPayment(principal int64, annualRatePercent float64, monthlyPayment int64) (int, error) {
	if principal <= 0 {
		return 0, ValidationError{Field: "principal", Message: fmt.Sprintf("principal must be positive (got %d)", principal)}
	}
	if math.IsNaN(annualRatePercent) || annualRatePercent < 0 {
		return 0, ValidationError{Field: "annual_rate_percent", Message: fmt.Sprintf("rate must be a non-negative number (got %v)", annualRatePercent)}
	}
	if monthlyPayment <= 0 {
		return 0, ValidationError{Field: "monthly_payment", Message: fmt.Sprintf("payment must be positive (got %d)", monthlyPayment)}
	}

	p := float64(principal)
	interest := p * MonthlyRate(annualRatePercent)
	for m := 1; m <= maxSearchMonths; m++ {
		firstPayment := p/float64(m) + interest
		if firstPayment <= float64(monthlyPayment) {
			return m, nil
		}
	}
	return maxSearchMonths, nil
}
