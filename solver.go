package main

import (
	"errors"
	"fmt"
)

// CalculationMode selects which input drives the term
type CalculationMode string

const (
	ModeByPeriod  CalculationMode = "period" // Term given, payment derived
	ModeByPayment CalculationMode = "amount" // Payment given, term solved
)

// InfeasibleMessage is shown to the user when a target payment cannot repay the loan
const InfeasibleMessage = "入力された返済額では返済できません。返済額を増やしてください。"

// CalculationRequest is the raw input from a form, flag set or config file
type CalculationRequest struct {
	Mode              CalculationMode `yaml:"mode" json:"mode"`
	Principal         int64           `yaml:"principal" json:"principal"`
	AnnualRatePercent float64         `yaml:"annual_rate" json:"annual_rate"`
	TermMonths        int             `yaml:"term_months" json:"term_months"`
	MonthlyPayment    int64           `yaml:"monthly_payment,omitempty" json:"monthly_payment,omitempty"`
	Method            RepaymentMethod `yaml:"method" json:"method"`
}

// SolvedTerm records how the term of a calculation was obtained
type SolvedTerm struct {
	Terms          LoanTerms `json:"terms"`
	Solved         bool      `json:"solved"`          // True if TermMonths came from a target payment
	TargetPayment  int64     `json:"target_payment"`  // Payment the user asked for (after clamping)
	MinimumPayment int64     `json:"minimum_payment"` // Lower bound shown next to the payment input
}

// SolveTerm picks the term solver that matches the repayment method
func SolveTerm(principal int64, annualRatePercent float64, monthlyPayment int64, method RepaymentMethod) (int, error) {
	switch method {
	case EqualInstallment:
		return SolveTermFromEqualInstallmentPayment(principal, annualRatePercent, monthlyPayment)
	case EqualPrincipal:
		return SolveTermFromEqualPrincipalFirstPayment(principal, annualRatePercent, monthlyPayment)
	default:
		return 0, ValidationError{Field: "method", Message: fmt.Sprintf("unknown repayment method %d", int(method))}
	}
}

// MinimumPaymentFor returns the payment floor for a principal and rate.
// The floor does not depend on the term, so the interest-free 10-year reference term is used.
func MinimumPaymentFor(principal int64, annualRatePercent float64) int64 {
	return MinimumPayment(LoanTerms{
		Principal:         principal,
		AnnualRatePercent: annualRatePercent,
		TermMonths:        interestFreeFloorTerm,
		Method:            EqualInstallment,
	})
}

// ClampPayment raises a requested payment to the minimum for the loan
func ClampPayment(principal int64, annualRatePercent float64, payment int64) int64 {
	if minimum := MinimumPaymentFor(principal, annualRatePercent); payment < minimum {
		return minimum
	}
	return payment
}

// ResolveTerms turns a request into engine input, solving for the term when the
// request is driven by a target payment.
func ResolveTerms(req CalculationRequest) (SolvedTerm, error) {
	if !req.Method.IsValid() {
		return SolvedTerm{}, ValidationError{Field: "method", Message: fmt.Sprintf("unknown repayment method %d", int(req.Method))}
	}

	solved := SolvedTerm{
		Terms: LoanTerms{
			Principal:         req.Principal,
			AnnualRatePercent: req.AnnualRatePercent,
			TermMonths:        req.TermMonths,
			Method:            req.Method,
		},
	}
	if req.Principal > 0 {
		solved.MinimumPayment = MinimumPaymentFor(req.Principal, req.AnnualRatePercent)
	}

	switch req.Mode {
	case "", ModeByPeriod:
		return solved, ValidateTerms(solved.Terms)
	case ModeByPayment:
		months, err := SolveTerm(req.Principal, req.AnnualRatePercent, req.MonthlyPayment, req.Method)
		if err != nil {
			return SolvedTerm{}, err
		}
		if months <= 0 {
			return SolvedTerm{}, fmt.Errorf("%w: solved term %d", ErrInfeasibleRepayment, months)
		}
		solved.Terms.TermMonths = months
		solved.Solved = true
		solved.TargetPayment = req.MonthlyPayment
		return solved, ValidateTerms(solved.Terms)
	default:
		return SolvedTerm{}, ValidationError{Field: "mode", Message: fmt.Sprintf("unknown calculation mode %q", req.Mode)}
	}
}

// CalculateRequest resolves the term and runs the engine
func CalculateRequest(req CalculationRequest) (LoanResult, SolvedTerm, error) {
	solved, err := ResolveTerms(req)
	if err != nil {
		return LoanResult{}, SolvedTerm{}, err
	}
	result, err := Calculate(solved.Terms)
	if err != nil {
		return LoanResult{}, SolvedTerm{}, err
	}
	return result, solved, nil
}

// UserMessage converts an engine error into the text shown to the user
func UserMessage(err error) string {
	var ve ValidationError
	switch {
	case errors.Is(err, ErrInfeasibleRepayment):
		return InfeasibleMessage
	case errors.As(err, &ve):
		return ve.Message
	default:
		return err.Error()
	}
}
