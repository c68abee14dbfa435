package main

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// Environment variables that override flag defaults
const (
	EnvConfigFile = "LOANCALC_CONFIG"
	EnvAddr       = "LOANCALC_ADDR"
	EnvLogLevel   = "LOANCALC_LOG_LEVEL"
)

// LenderLoanConfig selects a lender from the catalogue for multi-loan mode.
// Zero values fall back to the lender defaults (100,000 over 12 months at the default rate).
type LenderLoanConfig struct {
	LenderID   string   `yaml:"lender" json:"lender"`
	Principal  int64    `yaml:"principal,omitempty" json:"principal,omitempty"`
	AnnualRate *float64 `yaml:"annual_rate,omitempty" json:"annual_rate,omitempty"` // nil = lender default
	TermMonths int      `yaml:"term_months,omitempty" json:"term_months,omitempty"`
}

// MultiLoanConfig holds the selected lenders
type MultiLoanConfig struct {
	Loans []LenderLoanConfig `yaml:"loans" json:"loans"`
}

// RangeConfig describes an input slider
type RangeConfig struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

// Contains reports whether v lies within the range
func (r RangeConfig) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// UIConfig holds the input ranges used by the web UI and interactive prompts
type UIConfig struct {
	Principal RangeConfig `yaml:"principal" json:"principal"`
	Rate      RangeConfig `yaml:"rate" json:"rate"`
	Months    RangeConfig `yaml:"months" json:"months"`
}

// RateComparisonConfig holds the rate range for the rate comparison report
type RateComparisonConfig struct {
	RateMin  float64 `yaml:"rate_min" json:"rate_min"`
	RateMax  float64 `yaml:"rate_max" json:"rate_max"`
	StepSize float64 `yaml:"step_size" json:"step_size"`
}

// OutputConfig controls where reports and exports are written
type OutputConfig struct {
	ReportDir string `yaml:"report_dir" json:"report_dir"` // Prefix for dated report folders
	ExportDir string `yaml:"export_dir" json:"export_dir"` // CSV/PDF exports from the web UI
}

// LogConfig controls structured logging
type LogConfig struct {
	Level string `yaml:"level" json:"level"` // debug, info, warn, error
}

// Config is the complete application configuration
type Config struct {
	Loan           CalculationRequest   `yaml:"loan" json:"loan"`
	Lenders        []Lender             `yaml:"lenders" json:"lenders"`
	MultiLoan      MultiLoanConfig      `yaml:"multi_loan" json:"multi_loan"`
	UI             UIConfig             `yaml:"ui" json:"ui"`
	RateComparison RateComparisonConfig `yaml:"rate_comparison" json:"rate_comparison"`
	Output         OutputConfig         `yaml:"output" json:"output"`
	Log            LogConfig            `yaml:"log" json:"log"`
}

// LoadConfig loads configuration from a YAML file.
// Values missing from the file are filled from the embedded defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config Config
	err = yaml.Unmarshal([]byte(preprocessPercentages(string(data))), &config)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	if defaults, err := LoadDefaultConfig(); err == nil {
		config.ApplyDefaults(defaults)
	}
	return &config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	// Add a header comment with instructions
	header := []byte(`# Loan Schedule Configuration
# Generated interactively - feel free to edit manually
#
# loan:           single loan calculated by default
#   mode:         "period" (term given) or "amount" (monthly payment given, term solved)
#   method:       "equal" (元利均等, constant payment) or "principal" (元金均等, constant principal)
#   annual_rate:  percent, e.g. 15.0 or 15%
# lenders:        catalogue shown as checkboxes in multi-loan mode
# multi_loan:     lenders selected for multi-loan mode (always equal installment)
#
#   ./goLoanSchedule                  Desktop window (falls back to console)
#   ./goLoanSchedule -console         Console schedule for the configured loan
#   ./goLoanSchedule -multi -html     Multi-loan HTML report
#   ./goLoanSchedule -help            Show all options

`)
	content := append(header, data...)
	return os.WriteFile(filename, content, 0644)
}

// LoadDefaultConfig loads the configuration compiled into the binary
func LoadDefaultConfig() (*Config, error) {
	content := preprocessPercentages(defaultConfigYAML)

	var config Config
	err := yaml.Unmarshal([]byte(content), &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// preprocessPercentages strips a trailing % from numeric values ("15%" -> "15").
// Rates are stored as percentages, so no scaling is applied.
func preprocessPercentages(content string) string {
	re := regexp.MustCompile(`(:\s*)(\d+\.?\d*)%`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) >= 3 {
			if _, err := strconv.ParseFloat(parts[2], 64); err == nil {
				return parts[1] + parts[2]
			}
		}
		return match
	})
}

// ApplyDefaults fills zero-valued settings from defaults
func (c *Config) ApplyDefaults(defaults *Config) {
	if defaults == nil {
		return
	}
	if c.Loan.Mode == "" {
		c.Loan.Mode = ModeByPeriod
	}
	if len(c.Lenders) == 0 {
		c.Lenders = append([]Lender(nil), defaults.Lenders...)
	}
	if c.UI.Principal == (RangeConfig{}) {
		c.UI.Principal = defaults.UI.Principal
	}
	if c.UI.Rate == (RangeConfig{}) {
		c.UI.Rate = defaults.UI.Rate
	}
	if c.UI.Months == (RangeConfig{}) {
		c.UI.Months = defaults.UI.Months
	}
	if c.RateComparison == (RateComparisonConfig{}) {
		c.RateComparison = defaults.RateComparison
	}
	if c.Output.ReportDir == "" {
		c.Output.ReportDir = defaults.Output.ReportDir
	}
	if c.Output.ExportDir == "" {
		c.Output.ExportDir = defaults.Output.ExportDir
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Clone returns a copy that shares no slices with c
func (c *Config) Clone() *Config {
	clone := *c
	clone.Lenders = append([]Lender(nil), c.Lenders...)
	clone.MultiLoan.Loans = make([]LenderLoanConfig, len(c.MultiLoan.Loans))
	for i, l := range c.MultiLoan.Loans {
		clone.MultiLoan.Loans[i] = l
		if l.AnnualRate != nil {
			rate := *l.AnnualRate
			clone.MultiLoan.Loans[i].AnnualRate = &rate
		}
	}
	return &clone
}

// FindLender returns the catalogue entry for an ID
func (c *Config) FindLender(id string) (Lender, bool) {
	for _, l := range c.Lenders {
		if l.ID == id {
			return l, true
		}
	}
	return Lender{}, false
}

// LenderLoans resolves the multi-loan selection against the lender catalogue
func (c *Config) LenderLoans() ([]LenderLoan, error) {
	loans := make([]LenderLoan, 0, len(c.MultiLoan.Loans))
	for _, sel := range c.MultiLoan.Loans {
		lender, ok := c.FindLender(sel.LenderID)
		if !ok {
			return nil, ValidationError{Field: "multi_loan.loans", Message: fmt.Sprintf("unknown lender %q", sel.LenderID)}
		}
		loan := DefaultLenderLoan(lender)
		if sel.Principal > 0 {
			loan.Principal = sel.Principal
		}
		if sel.AnnualRate != nil {
			loan.AnnualRatePercent = *sel.AnnualRate
		}
		if sel.TermMonths > 0 {
			loan.TermMonths = sel.TermMonths
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

// Validate checks the whole configuration and reports every problem at once
func (c *Config) Validate() error {
	var errs []string

	switch c.Loan.Mode {
	case "", ModeByPeriod:
		if c.Loan.TermMonths <= 0 {
			errs = append(errs, "loan.term_months must be positive")
		}
	case ModeByPayment:
		if c.Loan.MonthlyPayment <= 0 {
			errs = append(errs, "loan.monthly_payment must be positive in amount mode")
		}
	default:
		errs = append(errs, fmt.Sprintf("loan.mode must be %q or %q (got %q)", ModeByPeriod, ModeByPayment, c.Loan.Mode))
	}
	if c.Loan.Principal <= 0 {
		errs = append(errs, "loan.principal must be positive")
	}
	if !validRate(c.Loan.AnnualRatePercent) {
		errs = append(errs, fmt.Sprintf("loan.annual_rate must be between 0 and 100 (got %v)", c.Loan.AnnualRatePercent))
	}

	ids := make(map[string]bool)
	for i, l := range c.Lenders {
		if l.ID == "" {
			errs = append(errs, fmt.Sprintf("lenders[%d].id is required", i))
		} else if ids[l.ID] {
			errs = append(errs, fmt.Sprintf("lenders[%d].id %q is duplicated", i, l.ID))
		}
		ids[l.ID] = true
		if l.Name == "" {
			errs = append(errs, fmt.Sprintf("lenders[%d].name is required", i))
		}
		if !validRate(l.DefaultRatePercent) {
			errs = append(errs, fmt.Sprintf("lenders[%d].default_rate must be between 0 and 100", i))
		}
	}

	selected := make(map[string]bool)
	for i, sel := range c.MultiLoan.Loans {
		if !ids[sel.LenderID] {
			errs = append(errs, fmt.Sprintf("multi_loan.loans[%d] references unknown lender %q", i, sel.LenderID))
		}
		if selected[sel.LenderID] {
			errs = append(errs, fmt.Sprintf("multi_loan.loans[%d] selects lender %q twice", i, sel.LenderID))
		}
		selected[sel.LenderID] = true
		if sel.Principal < 0 || sel.TermMonths < 0 {
			errs = append(errs, fmt.Sprintf("multi_loan.loans[%d] has a negative principal or term", i))
		}
		if sel.AnnualRate != nil && !validRate(*sel.AnnualRate) {
			errs = append(errs, fmt.Sprintf("multi_loan.loans[%d].annual_rate must be between 0 and 100", i))
		}
	}

	for name, r := range map[string]RangeConfig{"ui.principal": c.UI.Principal, "ui.rate": c.UI.Rate, "ui.months": c.UI.Months} {
		if r != (RangeConfig{}) && (r.Min > r.Max || r.Step <= 0) {
			errs = append(errs, fmt.Sprintf("%s must have min <= max and a positive step", name))
		}
	}

	rc := c.RateComparison
	if rc != (RateComparisonConfig{}) && (rc.RateMin > rc.RateMax || rc.StepSize <= 0) {
		errs = append(errs, "rate_comparison must have rate_min <= rate_max and a positive step_size")
	}

	if len(errs) > 0 {
		return errors.New("configuration validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func validRate(rate float64) bool {
	return !math.IsNaN(rate) && rate >= 0 && rate <= 100
}

// EnvSettings are values read from the environment (and an optional .env file)
type EnvSettings struct {
	ConfigFile string
	Addr       string
	LogLevel   string
}

// LoadEnvOverrides loads .env if present and returns the recognised variables.
// A missing .env file is not an error.
func LoadEnvOverrides() EnvSettings {
	_ = godotenv.Load()
	return EnvSettings{
		ConfigFile: os.Getenv(EnvConfigFile),
		Addr:       os.Getenv(EnvAddr),
		LogLevel:   os.Getenv(EnvLogLevel),
	}
}

// GetDefaultValue returns a default value from the default config for display in prompts
func GetDefaultValue(fieldPath string, defaultConfig *Config) string {
	if defaultConfig == nil {
		return ""
	}

	switch fieldPath {
	case "loan.principal":
		return strconv.FormatInt(defaultConfig.Loan.Principal, 10)
	case "loan.annual_rate":
		return strconv.FormatFloat(defaultConfig.Loan.AnnualRatePercent, 'f', 1, 64)
	case "loan.term_months":
		return strconv.Itoa(defaultConfig.Loan.TermMonths)
	case "loan.monthly_payment":
		return strconv.FormatInt(defaultConfig.Loan.MonthlyPayment, 10)
	case "loan.method":
		return defaultConfig.Loan.Method.ShortName()
	case "loan.mode":
		return string(defaultConfig.Loan.Mode)
	}
	return ""
}
