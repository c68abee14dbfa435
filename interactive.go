package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalidInput)
func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

const maxPrincipal = 1000000000 // 1 billion

// validateMoney checks if amount is positive and reasonable
func validateMoney(amount int64, fieldName string) error {
	if amount <= 0 {
		return ValidationError{Field: fieldName, Message: "Amount must be positive"}
	}
	if amount > maxPrincipal {
		return ValidationError{Field: fieldName, Message: "Amount seems too large. Please check the value"}
	}
	return nil
}

// validateRate checks an annual rate given in percent (0-100)
func validateRate(rate float64, fieldName string) error {
	if math.IsNaN(rate) || rate < 0 || rate > 100 {
		return ValidationError{Field: fieldName, Message: fmt.Sprintf("Rate must be between 0%% and 100%% (got %.1f%%)", rate)}
	}
	return nil
}

// validateMonths checks a term is between 1 month and the 30-year search ceiling
func validateMonths(months int, fieldName string) error {
	if months < 1 || months > maxSearchMonths {
		return ValidationError{Field: fieldName, Message: fmt.Sprintf("Term must be between 1 and %d months (got %d)", maxSearchMonths, months)}
	}
	return nil
}

// InteractiveConfigBuilder handles interactive configuration creation
type InteractiveConfigBuilder struct {
	reader        *bufio.Reader
	out           io.Writer
	config        *Config
	defaultConfig *Config
}

// NewInteractiveConfigBuilder creates a builder that reads from stdin
func NewInteractiveConfigBuilder() *InteractiveConfigBuilder {
	return NewInteractiveConfigBuilderFrom(os.Stdin, os.Stdout)
}

// NewInteractiveConfigBuilderFrom creates a builder over arbitrary streams
func NewInteractiveConfigBuilderFrom(in io.Reader, out io.Writer) *InteractiveConfigBuilder {
	builder := &InteractiveConfigBuilder{
		reader: bufio.NewReader(in),
		out:    out,
		config: &Config{},
	}

	// Try to load defaults from default-config.yaml
	defaultConfig, err := LoadDefaultConfig()
	if err == nil {
		builder.defaultConfig = defaultConfig
	}

	return builder
}

// getDefault returns a default value from the default config, or the fallback
func (b *InteractiveConfigBuilder) getDefault(fieldPath string, fallback string) string {
	if b.defaultConfig != nil {
		val := GetDefaultValue(fieldPath, b.defaultConfig)
		if val != "" {
			return val
		}
	}
	return fallback
}

// getDefaultInt gets an int default from default config
func (b *InteractiveConfigBuilder) getDefaultInt(fieldPath string, fallback int) int {
	if i, err := strconv.Atoi(b.getDefault(fieldPath, "")); err == nil {
		return i
	}
	return fallback
}

// getDefaultFloat gets a float default from default config
func (b *InteractiveConfigBuilder) getDefaultFloat(fieldPath string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(b.getDefault(fieldPath, ""), 64); err == nil {
		return f
	}
	return fallback
}

// getDefaultMoney gets a money default from default config
func (b *InteractiveConfigBuilder) getDefaultMoney(fieldPath string, fallback int64) int64 {
	if v, err := parseMoney(b.getDefault(fieldPath, "")); err == nil {
		return v
	}
	return fallback
}

// parseMoney parses amounts like "100000", "100k", "1.5m", "10万" or "1,000,000円"
func parseMoney(input string) (int64, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	input = strings.TrimPrefix(input, "¥")
	input = strings.TrimSuffix(input, yenSuffix)
	input = strings.ReplaceAll(input, ",", "")

	multiplier := 1.0
	switch {
	case strings.HasSuffix(input, "k"):
		multiplier = 1000
		input = strings.TrimSuffix(input, "k")
	case strings.HasSuffix(input, "m"):
		multiplier = 1000000
		input = strings.TrimSuffix(input, "m")
	case strings.HasSuffix(input, "万"):
		multiplier = 10000
		input = strings.TrimSuffix(input, "万")
	}
	val, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(val * multiplier)), nil
}

// parseRate accepts "15", "15%" or "15.0%" and returns the percentage
func parseRate(input string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(input), "%"), 64)
}

func (b *InteractiveConfigBuilder) readLine() string {
	input, _ := b.reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// promptString asks for a string with a default value
func (b *InteractiveConfigBuilder) promptString(prompt, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(b.out, "%s [%s]: ", prompt, defaultVal)
	} else {
		fmt.Fprintf(b.out, "%s: ", prompt)
	}
	input := b.readLine()
	if input == "" {
		return defaultVal
	}
	return input
}

// promptMonths asks for a term in months with validation
func (b *InteractiveConfigBuilder) promptMonths(prompt string, defaultVal int) int {
	for {
		fmt.Fprintf(b.out, "%s [%d]: ", prompt, defaultVal)
		input := b.readLine()
		if input == "" {
			return defaultVal
		}
		val, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(b.out, "  ✗ Invalid number. Please enter a whole number of months\n")
			continue
		}
		if err := validateMonths(val, "term_months"); err != nil {
			fmt.Fprintf(b.out, "  ✗ %s\n", err.Error())
			continue
		}
		return val
	}
}

// promptRate asks for an annual rate in percent (accepts "15" or "15%")
func (b *InteractiveConfigBuilder) promptRate(prompt string, defaultVal float64) float64 {
	for {
		fmt.Fprintf(b.out, "%s [%s]: ", prompt, FormatRate(defaultVal))
		input := b.readLine()
		if input == "" {
			return defaultVal
		}
		val, err := parseRate(input)
		if err != nil {
			fmt.Fprintf(b.out, "  ✗ Invalid rate. Enter as '15' or '15%%'\n")
			continue
		}
		if err := validateRate(val, "annual_rate"); err != nil {
			fmt.Fprintf(b.out, "  ✗ %s\n", err.Error())
			continue
		}
		return val
	}
}

// promptMoney asks for a money amount with validation (accepts "100k", "10万" or "100000")
func (b *InteractiveConfigBuilder) promptMoney(prompt string, defaultVal int64) int64 {
	for {
		fmt.Fprintf(b.out, "%s [%s]: ", prompt, formatMoneyShort(defaultVal))
		input := b.readLine()
		if input == "" {
			return defaultVal
		}
		amount, err := parseMoney(input)
		if err != nil {
			fmt.Fprintf(b.out, "  ✗ Invalid amount. Enter as '100k', '10万', or '100000'\n")
			continue
		}
		if err := validateMoney(amount, "amount"); err != nil {
			fmt.Fprintf(b.out, "  ✗ %s\n", err.Error())
			continue
		}
		return amount
	}
}

// promptMethod asks for the repayment method
func (b *InteractiveConfigBuilder) promptMethod(defaultVal RepaymentMethod) RepaymentMethod {
	for {
		input := b.promptString("  Repayment method (equal / principal)", defaultVal.ShortName())
		method, err := ParseRepaymentMethod(input)
		if err != nil {
			fmt.Fprintf(b.out, "  ✗ Enter 'equal' (元利均等) or 'principal' (元金均等)\n")
			continue
		}
		return method
	}
}

func formatMoneyShort(amount int64) string {
	if amount >= 10000 && amount%10000 == 0 {
		return FormatMan(amount)
	}
	return FormatYen(amount)
}

func isYes(s string) bool {
	s = strings.ToLower(s)
	return s == "y" || s == "yes"
}

// BuildLoanConfig builds a config for a single loan
func (b *InteractiveConfigBuilder) BuildLoanConfig() *Config {
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(b.out, "║              LOAN CONFIGURATION                                              ║")
	fmt.Fprintln(b.out, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(b.out)
	if b.defaultConfig != nil {
		fmt.Fprintln(b.out, "Defaults loaded from default-config.yaml. Press Enter to accept defaults.")
	} else {
		fmt.Fprintln(b.out, "Let's set up your loan. Press Enter to accept defaults.")
	}
	fmt.Fprintln(b.out, "For money, enter '100k', '10万' or '100000'. Rates are annual percentages.")
	fmt.Fprintln(b.out)

	fmt.Fprintln(b.out, "─── Loan ───")
	loan := CalculationRequest{
		Principal:         b.promptMoney("  Principal", b.getDefaultMoney("loan.principal", 1000000)),
		AnnualRatePercent: b.promptRate("  Annual interest rate", b.getDefaultFloat("loan.annual_rate", 15.0)),
	}
	loan.Method = b.promptMethod(EqualInstallment)

	byPayment := b.promptString("  Solve the term from a monthly payment? (y/n)", "n")
	if isYes(byPayment) {
		loan.Mode = ModeByPayment
		minimum := MinimumPaymentFor(loan.Principal, loan.AnnualRatePercent)
		fmt.Fprintf(b.out, "    Minimum payment for this loan: %s\n", FormatYen(minimum))
		defaultPayment := b.getDefaultMoney("loan.monthly_payment", minimum)
		for {
			payment := ClampPayment(loan.Principal, loan.AnnualRatePercent, b.promptMoney("    Monthly payment", defaultPayment))
			if _, err := SolveTerm(loan.Principal, loan.AnnualRatePercent, payment, loan.Method); err != nil {
				fmt.Fprintf(b.out, "  ✗ %s\n", UserMessage(err))
				continue
			}
			loan.MonthlyPayment = payment
			break
		}
	} else {
		loan.Mode = ModeByPeriod
		loan.TermMonths = b.promptMonths("  Term (months)", b.getDefaultInt("loan.term_months", 12))
	}
	b.config.Loan = loan

	if b.defaultConfig != nil {
		b.config.ApplyDefaults(b.defaultConfig)
	}
	return b.config
}

// BuildMultiLoanConfig asks which lenders to include and the terms of each loan
func (b *InteractiveConfigBuilder) BuildMultiLoanConfig() *Config {
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(b.out, "║              MULTI-LOAN CONFIGURATION                                        ║")
	fmt.Fprintln(b.out, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(b.out)

	if b.defaultConfig != nil {
		b.config.ApplyDefaults(b.defaultConfig)
	}

	for _, lender := range b.config.Lenders {
		include := b.promptString(fmt.Sprintf("─── Include %s (%s)? (y/n)", lender.Name, FormatRate(lender.DefaultRatePercent)), "n")
		if !isYes(include) {
			continue
		}
		def := DefaultLenderLoan(lender)
		rate := b.promptRate("  Annual interest rate", def.AnnualRatePercent)
		b.config.MultiLoan.Loans = append(b.config.MultiLoan.Loans, LenderLoanConfig{
			LenderID:   lender.ID,
			Principal:  b.promptMoney("  Principal", def.Principal),
			AnnualRate: &rate,
			TermMonths: b.promptMonths("  Term (months)", def.TermMonths),
		})
	}

	return b.config
}

// SaveConfig saves the configuration to a YAML file
func (b *InteractiveConfigBuilder) SaveConfig(filename string) error {
	return SaveConfig(b.config, filename)
}

// ValidateLoanConfig checks if config has the fields a single-loan calculation needs
func ValidateLoanConfig(config *Config) []string {
	var missing []string

	if config.Loan.Principal <= 0 {
		missing = append(missing, "loan.principal")
	}
	switch config.Loan.Mode {
	case ModeByPayment:
		if config.Loan.MonthlyPayment <= 0 {
			missing = append(missing, "loan.monthly_payment")
		}
	default:
		if config.Loan.TermMonths <= 0 {
			missing = append(missing, "loan.term_months")
		}
	}

	return missing
}

// ValidateMultiLoanConfig checks if config selects at least one known lender
func ValidateMultiLoanConfig(config *Config) []string {
	var missing []string

	if len(config.Lenders) == 0 {
		missing = append(missing, "lenders")
	}
	if len(config.MultiLoan.Loans) == 0 {
		missing = append(missing, "multi_loan.loans")
	}
	for i, sel := range config.MultiLoan.Loans {
		if sel.LenderID == "" {
			missing = append(missing, fmt.Sprintf("multi_loan.loans[%d].lender", i))
		}
	}

	return missing
}

// ValidateRateComparisonConfig checks if config has a usable rate range
func ValidateRateComparisonConfig(config *Config) []string {
	var missing []string

	if config.RateComparison.RateMax <= 0 {
		missing = append(missing, "rate_comparison.rate_max")
	}
	if config.RateComparison.StepSize <= 0 {
		missing = append(missing, "rate_comparison.step_size")
	}

	return missing
}
