package main

import (
	"fmt"
	"strings"
)

// RepaymentMethod selects how each monthly payment is split between principal and interest
type RepaymentMethod int

const (
	EqualInstallment RepaymentMethod = iota // 元利均等: constant total payment
	EqualPrincipal                          // 元金均等: constant principal portion
)

func (m RepaymentMethod) String() string {
	switch m {
	case EqualInstallment:
		return "Equal Installment"
	case EqualPrincipal:
		return "Equal Principal"
	default:
		return "Unknown"
	}
}

// ShortName returns the identifier used in config files, flags and the web API
func (m RepaymentMethod) ShortName() string {
	switch m {
	case EqualInstallment:
		return "equal"
	case EqualPrincipal:
		return "principal"
	default:
		return "unknown"
	}
}

// JapaneseName returns the label shown in the UI and reports
func (m RepaymentMethod) JapaneseName() string {
	switch m {
	case EqualInstallment:
		return "元利均等返済"
	case EqualPrincipal:
		return "元金均等返済"
	default:
		return "不明"
	}
}

// IsValid reports whether m is one of the known methods
func (m RepaymentMethod) IsValid() bool {
	return m == EqualInstallment || m == EqualPrincipal
}

// ParseRepaymentMethod accepts the short names plus a few common aliases.
// An empty string means EqualInstallment.
func ParseRepaymentMethod(s string) (RepaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "equal", "installment", "equal-installment", "annuity", "元利均等":
		return EqualInstallment, nil
	case "principal", "equal-principal", "differential", "元金均等":
		return EqualPrincipal, nil
	default:
		return EqualInstallment, fmt.Errorf("%w: unknown repayment method %q", ErrInvalidInput, s)
	}
}

// MarshalText lets the method round-trip through YAML and JSON as its short name
func (m RepaymentMethod) MarshalText() ([]byte, error) {
	return []byte(m.ShortName()), nil
}

// UnmarshalText parses a short name or alias
func (m *RepaymentMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseRepaymentMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// LoanTerms is the immutable input to a single calculation
type LoanTerms struct {
	Principal         int64           `json:"principal"`
	AnnualRatePercent float64         `json:"annual_rate_percent"`
	TermMonths        int             `json:"term_months"`
	Method            RepaymentMethod `json:"method"`
}

// MonthlyRate returns the periodic rate for these terms
func (t LoanTerms) MonthlyRate() float64 {
	return MonthlyRate(t.AnnualRatePercent)
}

// ScheduleEntry is one month of an amortization schedule
type ScheduleEntry struct {
	Month     int   `json:"month"`     // 1-based
	Payment   int64 `json:"payment"`   // Principal + Interest
	Principal int64 `json:"principal"` // Portion that reduces the balance
	Interest  int64 `json:"interest"`  // Interest charged on the opening balance
	Balance   int64 `json:"balance"`   // Remaining balance after this payment
}

// Schedule is an ordered, chronological list of entries
type Schedule []ScheduleEntry

// PaymentSummary describes the shape of the payment series
type PaymentSummary struct {
	First  int64           `json:"first"`
	Last   int64           `json:"last"`
	Method RepaymentMethod `json:"method"`
}

// IsFlat returns true when every payment in the series is the same amount
func (s PaymentSummary) IsFlat() bool {
	return s.Method == EqualInstallment && s.First == s.Last
}

// HasFinalAdjustment reports an equal-installment series whose last payment
// absorbed rounding and differs from the fixed amount
func (s PaymentSummary) HasFinalAdjustment() bool {
	return s.Method == EqualInstallment && s.First != s.Last
}

// LoanResult holds the complete output of one calculation
type LoanResult struct {
	Terms         LoanTerms      `json:"terms"`
	Schedule      Schedule       `json:"schedule"`
	Summary       PaymentSummary `json:"summary"`
	TotalPayment  int64          `json:"total_payment"`
	TotalInterest int64          `json:"total_interest"`
}

// Lender is an entry in the lender catalogue used by multi-loan mode
type Lender struct {
	ID                 string  `yaml:"id" json:"id"`
	Name               string  `yaml:"name" json:"name"`
	DefaultRatePercent float64 `yaml:"default_rate" json:"default_rate"`
}

// LenderLoan is one selected lender with its own principal, rate and term
type LenderLoan struct {
	Lender            Lender  `json:"lender"`
	Principal         int64   `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermMonths        int     `json:"term_months"`
}

// Terms returns the engine input for this loan. Multi-loan mode always uses EqualInstallment.
func (l LenderLoan) Terms() LoanTerms {
	return LoanTerms{
		Principal:         l.Principal,
		AnnualRatePercent: l.AnnualRatePercent,
		TermMonths:        l.TermMonths,
		Method:            EqualInstallment,
	}
}

// LenderResult pairs a lender with its calculated loan
type LenderResult struct {
	Lender Lender     `json:"lender"`
	Result LoanResult `json:"result"`
}

// MultiLoanResult holds per-lender results plus cross-loan aggregates
type MultiLoanResult struct {
	Loans          []LenderResult `json:"loans"` // In input order
	MonthlyTotals  []int64        `json:"monthly_totals"` // Index 0 is month 1
	BalanceTotals  []int64        `json:"balance_totals"`
	PrincipalTotal int64          `json:"principal_total"`
	PaymentTotal   int64          `json:"payment_total"`
	InterestTotal  int64          `json:"interest_total"`
}

// MaxMonths returns the longest term across all loans
func (r MultiLoanResult) MaxMonths() int {
	return len(r.MonthlyTotals)
}

// FirstMonthTotal returns the combined payment due in month 1
func (r MultiLoanResult) FirstMonthTotal() int64 {
	if len(r.MonthlyTotals) == 0 {
		return 0
	}
	return r.MonthlyTotals[0]
}

// Find returns the result for a lender ID
func (r MultiLoanResult) Find(lenderID string) (LenderResult, bool) {
	for _, l := range r.Loans {
		if l.Lender.ID == lenderID {
			return l, true
		}
	}
	return LenderResult{}, false
}
