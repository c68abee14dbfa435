package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// runOptions collects the console-mode flags
type runOptions struct {
	configFile    string
	configMissing bool
	details       bool
	html          bool
	pdf           bool
	multi         bool
	rates         bool
}

func main() {
	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Loan Amortization Calculator

Calculates month-by-month repayment schedules for consumer loans and shows
the monthly payment, total payment and total interest.

REPAYMENT METHODS:
  equal       元利均等返済 (equal installment)
              The monthly payment is constant. Early payments are mostly interest.
  principal   元金均等返済 (equal principal)
              The principal portion is constant, so payments decline over time
              and total interest is lower.

MODES:
  BY PERIOD (default)
    You give the principal, annual rate and term in months.
    Output: monthly payment, totals and the schedule.

  BY PAYMENT (-payment flag)
    You give the monthly payment you can afford and the term is solved.
    The payment must exceed the monthly interest; the minimum accepted payment
    is 10%% above the first month's interest (or principal/120 at 0%%).

  MULTI-LOAN (-multi flag)
    Calculates one equal-installment loan per lender listed under multi_loan
    in the config and shows the combined monthly payment and totals.

  RATE COMPARISON (-rates flag)
    Calculates the configured loan across a range of annual rates with both
    methods. Range comes from rate_comparison in the config.

Usage:
  %s [options]

Options:
`, os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  %s                                   Desktop window (falls back to console)
  %s -ui                               Embedded browser mode (webview window)
  %s -web                              Web server mode (opens external browser)
  %s -web -addr :8080                  Web server on specific port
  %s -console                          Interactive mode selector
  %s -principal 1000000 -rate 15 -months 12
                                       Schedule for the given loan
  %s -principal 1000000 -rate 15 -payment 100000
                                       Solve the term for a monthly payment
  %s -method principal -details        Full equal-principal schedule
  %s -html                             HTML report in a dated folder
  %s -pdf                              PDF schedule in a dated folder
  %s -multi -html                      Multi-loan HTML report
  %s -rates                            Rate comparison report

Environment:
  %s   Config file path (overridden by -config)
  %s     Web server address (overridden by -addr)
  %s Log level (overridden by -log-level)
  A .env file in the working directory is loaded if present.
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0],
			EnvConfigFile, EnvAddr, EnvLogLevel)
	}

	env := LoadEnvOverrides()

	// Command line flags
	configFile := flag.String("config", envOr(env.ConfigFile, "config.yaml"), "Path to YAML configuration file")
	showDetails := flag.Bool("details", false, "Show the full schedule in console instead of the 12+3 month preview")
	generateHTML := flag.Bool("html", false, "Generate HTML reports in dated folder")
	generatePDF := flag.Bool("pdf", false, "Generate a PDF schedule in dated folder")
	runMulti := flag.Bool("multi", false, "Multi-loan mode: calculate every lender under multi_loan in the config")
	runRates := flag.Bool("rates", false, "Rate comparison across rate_comparison.rate_min..rate_max")
	principal := flag.Int64("principal", 0, "Principal in yen (overrides loan.principal)")
	rate := flag.Float64("rate", 0, "Annual interest rate in percent, e.g. 15 (overrides loan.annual_rate)")
	months := flag.Int("months", 0, "Term in months (overrides loan.term_months)")
	payment := flag.Int64("payment", 0, "Monthly payment in yen; solves the term (sets loan.mode to amount)")
	method := flag.String("method", "", "Repayment method: equal or principal (overrides loan.method)")
	consoleMode := flag.Bool("console", false, "Use console interface instead of GUI (default is GUI)")
	webMode := flag.Bool("web", false, "Start web server mode (opens external browser)")
	uiMode := flag.Bool("ui", false, "Start embedded browser mode (webview window)")
	webAddr := flag.String("addr", envOr(env.Addr, "localhost:0"), "Web server address (for -web mode, use :0 for auto port)")
	logLevel := flag.String("log-level", env.LogLevel, "Log level: debug, info, warn, error (default from config)")
	flag.Parse()

	config, configMissing, err := loadConfiguration(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	level := *logLevel
	if level == "" {
		level = config.Log.Level
	}
	logger, err := NewLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Loan flags only override what was explicitly given
	loanFlagsSet := false
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "principal":
			config.Loan.Principal = *principal
		case "rate":
			config.Loan.AnnualRatePercent = *rate
		case "months":
			config.Loan.TermMonths = *months
			config.Loan.Mode = ModeByPeriod
		case "payment":
			config.Loan.MonthlyPayment = *payment
			config.Loan.Mode = ModeByPayment
		case "method":
			m, err := ParseRepaymentMethod(*method)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			config.Loan.Method = m
		default:
			return
		}
		loanFlagsSet = true
	})

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Embedded browser mode
	if *uiMode {
		if err := runEmbeddedUI(config, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Embedded UI error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Web server mode (external browser)
	if *webMode {
		server := NewWebServer(config, *webAddr, logger)
		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Web server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := runOptions{
		configFile:    *configFile,
		configMissing: configMissing,
		details:       *showDetails,
		html:          *generateHTML,
		pdf:           *generatePDF,
		multi:         *runMulti,
		rates:         *runRates,
	}

	// Determine if we should run in console mode:
	// - Explicit -console flag, OR
	// - Any output/mode flags set (for automation/scripting)
	modeFlagsSet := opts.details || opts.html || opts.pdf || opts.multi || opts.rates || loanFlagsSet
	if *consoleMode || modeFlagsSet {
		runConsoleMode(config, opts, !modeFlagsSet, logger)
		return
	}

	// Default: GUI mode
	if err := runGUI(config, logger); err != nil {
		fmt.Fprintf(os.Stderr, "GUI error: %v\n", err)
		// Fall back to console mode if GUI fails
		fmt.Println("Falling back to console mode...")
		runConsoleMode(config, opts, true, logger)
	}
}

func envOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// loadConfiguration reads the config file, falling back to the embedded defaults when it does not exist
func loadConfiguration(configFile string) (*Config, bool, error) {
	config, err := LoadConfig(configFile)
	if err == nil {
		return config, false, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, err
	}
	config, err = LoadDefaultConfig()
	if err != nil {
		return nil, true, fmt.Errorf("embedded defaults: %w", err)
	}
	return config, true, nil
}

// runConsoleMode runs the application in console/terminal mode
func runConsoleMode(config *Config, opts runOptions, interactive bool, logger *zap.Logger) {
	log := componentLogger(logger, "console")

	// If no specific mode flags set, ask user which mode they want
	if interactive {
		switch promptForModeInitial(config, opts.configMissing) {
		case "single":
		case "single-html":
			opts.html = true
		case "single-pdf":
			opts.pdf = true
		case "single-details":
			opts.details = true
		case "multi":
			opts.multi = true
		case "multi-html":
			opts.multi = true
			opts.html = true
		case "rates":
			opts.rates = true
		case "quit":
			fmt.Println("Goodbye!")
			return
		}

		// If config is missing, build it interactively based on selected mode
		if opts.configMissing {
			builder := NewInteractiveConfigBuilder()
			if opts.multi {
				config = builder.BuildMultiLoanConfig()
			} else {
				config = builder.BuildLoanConfig()
			}
			if err := builder.SaveConfig(opts.configFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("\nConfiguration saved to %s\n", opts.configFile)
			fmt.Println("You can edit this file to adjust settings for future runs.")
			fmt.Println()
		}
	}

	timestamp := time.Now().Format("2006-01-02_1504")
	outputDir := filepath.Join(config.Output.ReportDir, reportDirName("loan", timestamp))
	if config.Output.ReportDir == "" {
		outputDir = reportDirName("loan", timestamp)
	}

	switch {
	case opts.rates:
		if missing := ValidateRateComparisonConfig(config); len(missing) > 0 {
			log.Warn("rate comparison settings missing, using defaults", zap.Strings("missing", missing))
		}
		runRateComparisonMode(config)
	case opts.multi:
		if missing := ValidateMultiLoanConfig(config); len(missing) > 0 {
			fmt.Fprintf(os.Stderr, "Error: multi-loan mode needs %s in the config\n", strings.Join(missing, ", "))
			os.Exit(1)
		}
		runMultiLoanMode(config, opts, outputDir, log)
	default:
		if missing := ValidateLoanConfig(config); len(missing) > 0 {
			fmt.Fprintf(os.Stderr, "Error: missing %s (set them in the config or with flags)\n", strings.Join(missing, ", "))
			os.Exit(1)
		}
		runSingleLoanMode(config, opts, outputDir, log)
	}
}

// runSingleLoanMode calculates the configured loan and prints or writes the result
func runSingleLoanMode(config *Config, opts runOptions, outputDir string, log *zap.Logger) {
	PrintHeader(os.Stdout, config.Loan)

	req := config.Loan
	if req.Mode == ModeByPayment {
		clamped := ClampPayment(req.Principal, req.AnnualRatePercent, req.MonthlyPayment)
		if clamped != req.MonthlyPayment {
			fmt.Printf("  Payment raised to the minimum of %s\n\n", FormatYen(clamped))
			req.MonthlyPayment = clamped
		}
	}

	result, solved, err := CalculateRequest(req)
	if err != nil {
		log.Debug("calculation failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %s\n", UserMessage(err))
		os.Exit(1)
	}
	log.Debug("calculated", termFields(result.Terms)...)

	PrintSolvedTerm(os.Stdout, solved)
	PrintLoanResult(os.Stdout, result, opts.details)

	if opts.html {
		path, err := GenerateHTMLReportsInDir(&result, solved, nil, outputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating HTML report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("HTML report: %s\n", path)
		openBrowser(path)
	}

	if opts.pdf {
		data, err := GenerateSchedulePDFReport(result, solved)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating PDF: %v\n", err)
			os.Exit(1)
		}
		path, err := writeReportFile(outputDir, scheduleFilename(result.Terms, "pdf"), data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing PDF: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("PDF schedule: %s\n", path)
	}
}

// runMultiLoanMode calculates every selected lender and the combined totals
func runMultiLoanMode(config *Config, opts runOptions, outputDir string, log *zap.Logger) {
	loans, err := config.LenderLoans()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, err := CalculateMultiLoan(loans)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", UserMessage(err))
		os.Exit(1)
	}
	log.Debug("calculated multi-loan", zap.Int("lenders", len(m.Loans)), zap.Int64("payment_total", m.PaymentTotal))

	PrintMultiLoanResult(os.Stdout, m)
	if opts.details {
		for _, l := range m.Loans {
			fmt.Printf("%s (%s)\n", l.Lender.Name, l.Lender.ID)
			PrintLoanResult(os.Stdout, l.Result, true)
		}
	}

	if opts.html {
		path, err := GenerateHTMLReportsInDir(nil, SolvedTerm{}, &m, outputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating HTML report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("HTML report: %s\n", path)
		openBrowser(path)
	}

	if opts.pdf {
		data, err := GenerateMultiLoanPDFReport(m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating PDF: %v\n", err)
			os.Exit(1)
		}
		path, err := writeReportFile(outputDir, "multi-loan.pdf", data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing PDF: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("PDF summary: %s\n", path)
	}
}

// runRateComparisonMode prints the rate comparison and writes its HTML reports
func runRateComparisonMode(config *Config) {
	comparison, err := RunRateComparison(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", UserMessage(err))
		os.Exit(1)
	}
	PrintRateComparison(os.Stdout, comparison)

	path, err := GenerateRateComparisonReport(comparison)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating rate comparison report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rate comparison report: %s\n", path)
	openBrowser(path)
}

func writeReportFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, data, 0644)
}

// openBrowser opens a file or URL with the system handler
func openBrowser(filename string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", filename)
	case "darwin":
		cmd = exec.Command("open", filename)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", filename)
	default:
		fmt.Fprintf(os.Stderr, "Cannot open browser on %s\n", runtime.GOOS)
		return
	}

	err := cmd.Start()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening browser: %v\n", err)
	}
}

// promptForModeInitial asks which console mode to run
func promptForModeInitial(config *Config, configMissing bool) string {
	fmt.Println()
	printBanner(os.Stdout, "LOAN AMORTIZATION CALCULATOR")
	fmt.Println()

	if configMissing {
		fmt.Println("No configuration file found. Select a mode to set up interactively:")
	} else {
		fmt.Println("Select mode:")
	}
	fmt.Println()

	loan := config.Loan
	if loan.Mode == ModeByPayment {
		fmt.Printf("  Single loan (%s at %s, %s/month, %s):\n",
			FormatYen(loan.Principal), FormatRate(loan.AnnualRatePercent), FormatYen(loan.MonthlyPayment), loan.Method.JapaneseName())
	} else {
		fmt.Printf("  Single loan (%s at %s over %s, %s):\n",
			FormatYen(loan.Principal), FormatRate(loan.AnnualRatePercent), FormatPeriod(loan.TermMonths), loan.Method.JapaneseName())
	}
	fmt.Println("    1) Console output      - Summary and 12+3 month schedule preview")
	fmt.Println("    2) Full schedule       - Every month in the console")
	fmt.Println("    3) HTML report         - Interactive browser report with charts")
	fmt.Println("    4) PDF schedule        - Printable schedule")
	fmt.Println()
	fmt.Printf("  Multi-loan (%d lenders selected):\n", len(config.MultiLoan.Loans))
	fmt.Println("    5) Console output      - Combined totals and per-lender breakdown")
	fmt.Println("    6) HTML report         - Combined charts and breakdown")
	fmt.Println()
	fmt.Println("  Rate comparison:")
	fmt.Println("    7) Console + HTML      - Totals across a range of rates")
	fmt.Println()
	fmt.Println("    q) Quit")
	fmt.Println()
	fmt.Print("Enter choice (1-7 or q): ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "single"
	}

	switch strings.TrimSpace(strings.ToLower(input)) {
	case "1":
		return "single"
	case "2":
		return "single-details"
	case "3":
		return "single-html"
	case "4":
		return "single-pdf"
	case "5":
		return "multi"
	case "6":
		return "multi-html"
	case "7":
		return "rates"
	case "q", "quit", "exit":
		return "quit"
	default:
		fmt.Println("Invalid choice, showing the single loan.")
		return "single"
	}
}
