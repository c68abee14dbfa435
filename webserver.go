package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

//go:embed help.md
var helpMarkdown []byte

// WebServer holds the HTTP server configuration
type WebServer struct {
	config    *Config
	addr      string
	logger    *zap.Logger
	template  *template.Template
	exportDir string
}

// NewWebServer creates a new web server instance.
// A nil config falls back to the embedded defaults.
func NewWebServer(config *Config, addr string, logger *zap.Logger) *WebServer {
	if config == nil {
		config, _ = LoadDefaultConfig()
		if config == nil {
			config = &Config{}
		}
	}
	exportDir := config.Output.ExportDir
	if exportDir == "" {
		exportDir = "exports"
	}
	return &WebServer{
		config:    config,
		addr:      addr,
		logger:    componentLogger(logger, "web"),
		template:  template.Must(template.New("ui").Funcs(template.FuncMap{"num": formatFloatAttr}).Parse(webUIHTML)),
		exportDir: exportDir,
	}
}

// APICalculateResponse is returned by the single-loan endpoints
type APICalculateResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Result  *LoanResult `json:"result,omitempty"`
	Solved  *SolvedTerm `json:"solved,omitempty"`
	HTML    string      `json:"html,omitempty"` // Rendered result block, replaces the previous one wholesale
}

// APILenderLoan is one lender form in multi-loan mode
type APILenderLoan struct {
	Lender     string  `json:"lender"`
	Principal  int64   `json:"principal"`
	AnnualRate float64 `json:"annual_rate"`
	TermMonths int     `json:"term_months"`
}

// APIMultiLoanRequest lists the selected lenders
type APIMultiLoanRequest struct {
	Loans []APILenderLoan `json:"loans"`
}

// APIMultiLoanResponse is returned by the multi-loan endpoint
type APIMultiLoanResponse struct {
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
	Result  *MultiLoanResult `json:"result,omitempty"`
	HTML    string           `json:"html,omitempty"`
}

// APIMinimumPaymentRequest asks for the payment floor
type APIMinimumPaymentRequest struct {
	Principal      int64   `json:"principal"`
	AnnualRate     float64 `json:"annual_rate"`
	MonthlyPayment int64   `json:"monthly_payment"`
}

// APIMinimumPaymentResponse carries the floor and the clamped payment
type APIMinimumPaymentResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	MinimumPayment int64  `json:"minimum_payment"`
	MonthlyPayment int64  `json:"monthly_payment"` // Request payment raised to the minimum
	Label          string `json:"label"`
}

// APISolveTermResponse carries the solved term
type APISolveTermResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	TermMonths int    `json:"term_months,omitempty"`
	Period     string `json:"period,omitempty"`
}

// ExportResponse represents the response from a file export
type ExportResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path,omitempty"`
	Message  string `json:"message"`
}

// APIPDFRequest selects a single-loan or multi-loan PDF
type APIPDFRequest struct {
	Multi bool               `json:"multi"`
	Loan  CalculationRequest `json:"loan"`
	Loans []APILenderLoan    `json:"loans"`
}

// Handler returns the routed handler with request logging
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Static/UI routes
	mux.HandleFunc("/", ws.handleIndex)
	mux.HandleFunc("/help", ws.handleHelp)
	mux.HandleFunc("/api/config", ws.handleGetConfig)
	mux.HandleFunc("/api/calculate", ws.handleCalculate)
	mux.HandleFunc("/api/calculate/multi", ws.handleCalculateMulti)
	mux.HandleFunc("/api/minimum-payment", ws.handleMinimumPayment)
	mux.HandleFunc("/api/solve-term", ws.handleSolveTerm)
	mux.HandleFunc("/api/export-csv", ws.handleExportCSV)
	mux.HandleFunc("/api/download-pdf", ws.handleDownloadPDF)
	mux.HandleFunc("/api/open-folder", ws.handleOpenFolder)

	return ws.withRequestLogging(mux)
}

// listen opens the listener and works out the browser URL
func (ws *WebServer) listen() (net.Listener, string, error) {
	// Listen on the address (use :0 for auto-assign)
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return nil, "", err
	}

	// Get the actual address (with assigned port)
	actualAddr := listener.Addr().String()
	url := fmt.Sprintf("http://%s", actualAddr)

	// If listening on all interfaces, use localhost for the URL
	if strings.HasPrefix(actualAddr, ":") || strings.HasPrefix(actualAddr, "0.0.0.0:") || strings.HasPrefix(actualAddr, "[::]:") {
		port := actualAddr[strings.LastIndex(actualAddr, ":")+1:]
		url = fmt.Sprintf("http://localhost:%s", port)
	}
	return listener, url, nil
}

// Start starts the web server and opens the browser. It blocks until the server stops.
func (ws *WebServer) Start() error {
	listener, url, err := ws.listen()
	if err != nil {
		return err
	}

	ws.logger.Info("starting web server", zap.String("addr", listener.Addr().String()), zap.String("url", url))

	// Open browser
	go openBrowser(url)

	return http.Serve(listener, ws.Handler())
}

// StartForEmbedded starts the server and returns the URL and a cleanup function.
// Unlike Start(), this does NOT open the browser and does NOT block.
// The caller is responsible for stopping the server via the cleanup function.
func (ws *WebServer) StartForEmbedded() (url string, cleanup func(), err error) {
	listener, url, err := ws.listen()
	if err != nil {
		return "", nil, err
	}

	ws.logger.Info("starting embedded web server", zap.String("addr", listener.Addr().String()))

	// Create server with proper shutdown support
	server := &http.Server{Handler: ws.Handler()}

	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			ws.logger.Error("server error", zap.Error(err))
		}
	}()

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}

	return url, cleanup, nil
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLogging tags each request with an X-Request-ID and logs its outcome
func (ws *WebServer) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		ws.logger.Debug("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// uiPage is the data rendered into webUIHTML
type uiPage struct {
	*Config
	CSS        template.CSS
	TabsScript template.HTML
	Minimum    int64
}

// handleIndex serves the main web UI
func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page := uiPage{
		Config:     ws.config,
		CSS:        template.CSS(reportCSS),
		TabsScript: template.HTML(chartTabsScript),
		Minimum:    MinimumPaymentFor(ws.config.Loan.Principal, ws.config.Loan.AnnualRatePercent),
	}

	var buf bytes.Buffer
	if err := ws.template.Execute(&buf, page); err != nil {
		ws.logger.Error("render index", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleHelp renders the embedded help text
func (ws *WebServer) handleHelp(w http.ResponseWriter, r *http.Request) {
	var body bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert(helpMarkdown, &body); err != nil {
		http.Error(w, "Failed to render help", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	writeHTMLHead(w, "ヘルプ")
	fmt.Fprintf(w, `<div class="card help">%s</div>
<p><a href="/">← 計算に戻る</a></p>
`, body.String())
	writeHTMLFooter(w)
}

// handleGetConfig returns the current configuration
func (ws *WebServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ws.config)
}

// handleCalculate runs a single-loan calculation in either mode
func (ws *WebServer) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, solved, err := CalculateRequest(req)
	if err != nil {
		ws.logger.Debug("calculation rejected", zap.Error(err))
		status := errorStatus(err)
		var buf bytes.Buffer
		WriteErrorHTML(&buf, err)
		writeJSON(w, status, APICalculateResponse{Success: false, Error: UserMessage(err), HTML: buf.String()})
		return
	}
	ws.logger.Debug("calculated", termFields(result.Terms)...)

	var buf bytes.Buffer
	WriteLoanResultHTML(&buf, result, solved)
	writeJSON(w, http.StatusOK, APICalculateResponse{
		Success: true,
		Result:  &result,
		Solved:  &solved,
		HTML:    buf.String(),
	})
}

// resolveLenderLoans maps form input onto the lender catalogue
func (ws *WebServer) resolveLenderLoans(in []APILenderLoan) ([]LenderLoan, error) {
	loans := make([]LenderLoan, 0, len(in))
	for _, l := range in {
		lender, ok := ws.config.FindLender(l.Lender)
		if !ok {
			return nil, ValidationError{Field: "lender", Message: fmt.Sprintf("unknown lender %q", l.Lender)}
		}
		loans = append(loans, LenderLoan{
			Lender:            lender,
			Principal:         l.Principal,
			AnnualRatePercent: l.AnnualRate,
			TermMonths:        l.TermMonths,
		})
	}
	return loans, nil
}

// handleCalculateMulti calculates one loan per selected lender plus the combined totals
func (ws *WebServer) handleCalculateMulti(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APIMultiLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	loans, err := ws.resolveLenderLoans(req.Loans)
	if err == nil {
		var m MultiLoanResult
		if m, err = CalculateMultiLoan(loans); err == nil {
			var buf bytes.Buffer
			WriteMultiLoanResultHTML(&buf, m)
			writeJSON(w, http.StatusOK, APIMultiLoanResponse{Success: true, Result: &m, HTML: buf.String()})
			return
		}
	}

	var buf bytes.Buffer
	WriteErrorHTML(&buf, err)
	writeJSON(w, errorStatus(err), APIMultiLoanResponse{Success: false, Error: UserMessage(err), HTML: buf.String()})
}

// handleMinimumPayment returns the payment floor and clamps the requested payment to it
func (ws *WebServer) handleMinimumPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APIMinimumPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validateMoney(req.Principal, "principal"); err != nil {
		sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateRate(req.AnnualRate, "annual_rate"); err != nil {
		sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	minimum := MinimumPaymentFor(req.Principal, req.AnnualRate)
	writeJSON(w, http.StatusOK, APIMinimumPaymentResponse{
		Success:        true,
		MinimumPayment: minimum,
		MonthlyPayment: ClampPayment(req.Principal, req.AnnualRate, req.MonthlyPayment),
		Label:          FormatYen(minimum),
	})
}

// handleSolveTerm returns how many months a target payment needs
func (ws *WebServer) handleSolveTerm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	months, err := SolveTerm(req.Principal, req.AnnualRatePercent, req.MonthlyPayment, req.Method)
	if err != nil {
		writeJSON(w, errorStatus(err), APISolveTermResponse{Success: false, Error: UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, APISolveTermResponse{Success: true, TermMonths: months, Period: FormatPeriod(months)})
}

// handleExportCSV calculates the loan and saves its full schedule as CSV
func (ws *WebServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ExportResponse{Success: false, Message: "Invalid request: " + err.Error()})
		return
	}

	result, _, err := CalculateRequest(req)
	if err != nil {
		writeJSON(w, errorStatus(err), ExportResponse{Success: false, Message: UserMessage(err)})
		return
	}

	// Create exports directory if it doesn't exist
	if err := os.MkdirAll(ws.exportDir, 0755); err != nil {
		writeJSON(w, http.StatusInternalServerError, ExportResponse{Success: false, Message: "Failed to create exports directory: " + err.Error()})
		return
	}

	filePath := filepath.Join(ws.exportDir, scheduleFilename(result.Terms, "csv"))
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}

	f, err := os.Create(filePath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ExportResponse{Success: false, Message: "Failed to write file: " + err.Error()})
		return
	}
	defer f.Close()
	if err := WriteScheduleCSV(f, result.Schedule); err != nil {
		writeJSON(w, http.StatusInternalServerError, ExportResponse{Success: false, Message: "Failed to write file: " + err.Error()})
		return
	}

	ws.logger.Info("exported csv", zap.String("path", absPath))
	writeJSON(w, http.StatusOK, ExportResponse{
		Success:  true,
		FilePath: absPath,
		Message:  fmt.Sprintf("CSV saved to %s", absPath),
	})
}

// handleDownloadPDF generates a PDF and returns it as a download
func (ws *WebServer) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APIPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	var pdfBytes []byte
	var filename string
	if req.Multi {
		loans, err := ws.resolveLenderLoans(req.Loans)
		if err != nil {
			http.Error(w, UserMessage(err), errorStatus(err))
			return
		}
		m, err := CalculateMultiLoan(loans)
		if err != nil {
			http.Error(w, UserMessage(err), errorStatus(err))
			return
		}
		if pdfBytes, err = GenerateMultiLoanPDFReport(m); err != nil {
			http.Error(w, "Failed to generate PDF: "+err.Error(), http.StatusInternalServerError)
			return
		}
		filename = "multi-loan.pdf"
	} else {
		result, solved, err := CalculateRequest(req.Loan)
		if err != nil {
			http.Error(w, UserMessage(err), errorStatus(err))
			return
		}
		if pdfBytes, err = GenerateSchedulePDFReport(result, solved); err != nil {
			http.Error(w, "Failed to generate PDF: "+err.Error(), http.StatusInternalServerError)
			return
		}
		filename = scheduleFilename(result.Terms, "pdf")
	}

	// Set headers for PDF download
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}

// OpenFolderRequest represents a request to open a folder
type OpenFolderRequest struct {
	FilePath string `json:"file_path"`
}

// handleOpenFolder opens the folder containing an exported file in the system file browser
func (ws *WebServer) handleOpenFolder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req OpenFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ExportResponse{Success: false, Message: "Invalid request: " + err.Error()})
		return
	}

	// Only folders under the export directory may be opened
	dir := filepath.Dir(req.FilePath)
	exportAbs, _ := filepath.Abs(ws.exportDir)
	dirAbs, _ := filepath.Abs(dir)
	if rel, err := filepath.Rel(exportAbs, dirAbs); err != nil || strings.HasPrefix(rel, "..") {
		writeJSON(w, http.StatusBadRequest, ExportResponse{Success: false, Message: "Folder is outside the export directory"})
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", dirAbs)
	case "windows":
		cmd = exec.Command("explorer", dirAbs)
	default: // Linux and others
		cmd = exec.Command("xdg-open", dirAbs)
	}

	if err := cmd.Start(); err != nil {
		writeJSON(w, http.StatusInternalServerError, ExportResponse{Success: false, Message: "Failed to open folder: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ExportResponse{Success: true, Message: "Folder opened"})
}

// errorStatus maps engine errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInfeasibleRepayment):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrDuplicateLender):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendJSONError sends a JSON error response
func sendJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APICalculateResponse{
		Success: false,
		Error:   message,
	})
}

// formatFloatAttr prints a float for an HTML attribute without exponent notation
func formatFloatAttr(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// webUIHTML is the embedded web interface, executed with a uiPage
const webUIHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ローン返済シミュレーター</title>
    <style>{{.CSS}}
        .tabs { display: flex; gap: 0.5rem; margin-bottom: 1rem; }
        .tabs button { padding: 0.5rem 1.25rem; border: none; border-radius: 6px; cursor: pointer; background: var(--border); }
        .tabs button.active { background: var(--primary); color: #fff; }
        .panel { display: none; }
        .panel.active { display: block; }
        .form-row { margin-bottom: 1rem; }
        .form-row label { display: flex; justify-content: space-between; font-weight: 600; margin-bottom: 0.25rem; }
        .form-row input[type=range] { width: 100%; }
        .form-row input[type=number], select { padding: 0.4rem; border: 1px solid var(--border); border-radius: 4px; }
        .actions { display: flex; gap: 0.5rem; flex-wrap: wrap; }
        .actions button { padding: 0.6rem 1.5rem; border: none; border-radius: 6px; background: var(--primary); color: #fff; cursor: pointer; }
        .actions button.secondary { background: var(--text-muted); }
        .lenders label { margin-right: 1rem; }
        .lender-form { border-left: 4px solid var(--primary); padding-left: 1rem; margin: 1rem 0; }
        .hidden { display: none; }
        #message { margin-top: 0.5rem; color: var(--text-muted); }
    </style>
</head>
<body>
<div class="container">
    <h1>ローン返済シミュレーター</h1>
    <p class="subtitle">元利均等・元金均等の返済スケジュールを計算します。<a href="/help">ヘルプ</a></p>

    <div class="tabs">
        <button type="button" class="active" data-panel="single">単一借入</button>
        <button type="button" data-panel="multi">複数借入</button>
    </div>

    <div class="panel active" id="panel-single">
        <div class="card">
            <div class="form-row">
                <label><span>計算方法</span></label>
                <label style="justify-content:flex-start;gap:1rem;font-weight:400">
                    <span><input type="radio" name="mode" value="period" {{if ne .Loan.Mode "amount"}}checked{{end}}> 返済期間から計算</span>
                    <span><input type="radio" name="mode" value="amount" {{if eq .Loan.Mode "amount"}}checked{{end}}> 返済額から計算</span>
                </label>
            </div>
            <div class="form-row">
                <label for="principal"><span>借入額</span><span id="principalValue"></span></label>
                <input type="range" id="principal" min="{{num .UI.Principal.Min}}" max="{{num .UI.Principal.Max}}" step="{{num .UI.Principal.Step}}" value="{{.Loan.Principal}}">
            </div>
            <div class="form-row">
                <label for="rate"><span>年利</span><span id="rateValue"></span></label>
                <input type="range" id="rate" min="{{num .UI.Rate.Min}}" max="{{num .UI.Rate.Max}}" step="{{num .UI.Rate.Step}}" value="{{num .Loan.AnnualRatePercent}}">
            </div>
            <div class="form-row" id="periodRow">
                <label for="months"><span>返済期間</span><span id="monthsValue"></span></label>
                <input type="range" id="months" min="{{num .UI.Months.Min}}" max="{{num .UI.Months.Max}}" step="{{num .UI.Months.Step}}" value="{{.Loan.TermMonths}}">
            </div>
            <div class="form-row hidden" id="paymentRow">
                <label for="payment"><span>月々の返済額</span><span>最低 <span id="minPayment">{{.Minimum}}</span>円</span></label>
                <input type="number" id="payment" min="{{.Minimum}}" step="1000" value="{{if .Loan.MonthlyPayment}}{{.Loan.MonthlyPayment}}{{else}}{{.Minimum}}{{end}}">
            </div>
            <div class="form-row">
                <label for="method"><span>返済方式</span></label>
                <select id="method">
                    <option value="equal" {{if eq .Loan.Method 0}}selected{{end}}>元利均等返済</option>
                    <option value="principal" {{if eq .Loan.Method 1}}selected{{end}}>元金均等返済</option>
                </select>
            </div>
            <div class="actions">
                <button type="button" id="calculateBtn">計算する</button>
                <button type="button" class="secondary" id="csvBtn">CSV保存</button>
                <button type="button" class="secondary" id="pdfBtn">PDFダウンロード</button>
            </div>
            <div id="message"></div>
        </div>
        <div id="singleResult"></div>
    </div>

    <div class="panel" id="panel-multi">
        <div class="card">
            <div class="lenders">
                {{range .Lenders}}<label><input type="checkbox" class="lender" value="{{.ID}}" data-name="{{.Name}}" data-rate="{{num .DefaultRatePercent}}"> {{.Name}} ({{printf "%.1f" .DefaultRatePercent}}%)</label>
                {{end}}
            </div>
            <div id="lenderForms"></div>
            <div class="actions">
                <button type="button" id="calculateMultiBtn">合計を計算する</button>
                <button type="button" class="secondary" id="pdfMultiBtn">PDFダウンロード</button>
            </div>
        </div>
        <div id="multiResult"></div>
    </div>
</div>
{{.TabsScript}}
<script>
function yen(n) { return Number(n).toLocaleString('ja-JP') + '円'; }
function period(m) {
    var y = Math.floor(m / 12), r = m % 12;
    if (y === 0) return r + 'ヶ月';
    if (r === 0) return y + '年';
    return y + '年' + r + 'ヶ月';
}
function $(id) { return document.getElementById(id); }
function mode() { return document.querySelector('input[name=mode]:checked').value; }

function loanRequest() {
    return {
        mode: mode(),
        principal: parseInt($('principal').value, 10),
        annual_rate: parseFloat($('rate').value),
        term_months: parseInt($('months').value, 10),
        monthly_payment: parseInt($('payment').value, 10) || 0,
        method: $('method').value
    };
}

function post(url, body) {
    return fetch(url, { method: 'POST', headers: { 'Content-Type': 'application/json' }, body: JSON.stringify(body) });
}

function updateLabels() {
    $('principalValue').textContent = yen($('principal').value);
    $('rateValue').textContent = parseFloat($('rate').value).toFixed(1) + '%';
    $('monthsValue').textContent = period(parseInt($('months').value, 10));
    var byAmount = mode() === 'amount';
    $('periodRow').classList.toggle('hidden', byAmount);
    $('paymentRow').classList.toggle('hidden', !byAmount);
}

function refreshMinimum() {
    var req = loanRequest();
    return post('/api/minimum-payment', { principal: req.principal, annual_rate: req.annual_rate, monthly_payment: req.monthly_payment })
        .then(function (r) { return r.json(); })
        .then(function (data) {
            if (!data.success) return;
            $('minPayment').textContent = Number(data.minimum_payment).toLocaleString('ja-JP');
            $('payment').min = data.minimum_payment;
            $('payment').value = data.monthly_payment;
        });
}

function calculate() {
    post('/api/calculate', loanRequest())
        .then(function (r) { return r.json(); })
        .then(function (data) { $('singleResult').innerHTML = data.html || ''; });
}

document.querySelectorAll('.tabs button').forEach(function (btn) {
    btn.addEventListener('click', function () {
        document.querySelectorAll('.tabs button').forEach(function (b) { b.classList.toggle('active', b === btn); });
        document.querySelectorAll('.panel').forEach(function (p) { p.classList.toggle('active', p.id === 'panel-' + btn.dataset.panel); });
    });
});

['principal', 'rate', 'months'].forEach(function (id) {
    $(id).addEventListener('input', function () {
        updateLabels();
        if (mode() === 'amount' && id !== 'months') refreshMinimum();
    });
});
document.querySelectorAll('input[name=mode]').forEach(function (r) {
    r.addEventListener('change', function () { updateLabels(); if (mode() === 'amount') refreshMinimum(); });
});
$('payment').addEventListener('change', refreshMinimum);
$('calculateBtn').addEventListener('click', calculate);

$('csvBtn').addEventListener('click', function () {
    post('/api/export-csv', loanRequest())
        .then(function (r) { return r.json(); })
        .then(function (data) { $('message').textContent = data.message; });
});

function downloadPDF(body) {
    post('/api/download-pdf', body).then(function (r) {
        if (!r.ok) return r.text().then(function (t) { $('message').textContent = t; });
        var name = (r.headers.get('Content-Disposition') || '').split('filename="')[1] || 'schedule.pdf"';
        return r.blob().then(function (blob) {
            var a = document.createElement('a');
            a.href = URL.createObjectURL(blob);
            a.download = name.replace('"', '');
            a.click();
        });
    });
}
$('pdfBtn').addEventListener('click', function () { downloadPDF({ multi: false, loan: loanRequest() }); });

function addLenderForm(cb) {
    var id = cb.value;
    var div = document.createElement('div');
    div.className = 'lender-form';
    div.id = 'form-' + id;
    div.dataset.lender = id;
    div.innerHTML =
        '<h3>' + cb.dataset.name + '</h3>' +
        '<div class="form-row"><label><span>借入額</span><span class="v-principal"></span></label>' +
        '<input type="range" class="f-principal" min="10000" max="2000000" step="10000" value="100000"></div>' +
        '<div class="form-row"><label><span>年利</span><span class="v-rate"></span></label>' +
        '<input type="range" class="f-rate" min="1.0" max="20.0" step="0.1" value="' + cb.dataset.rate + '"></div>' +
        '<div class="form-row"><label><span>返済期間</span><span class="v-months"></span></label>' +
        '<input type="range" class="f-months" min="1" max="120" step="1" value="12"></div>';
    $('lenderForms').appendChild(div);
    var sync = function () {
        div.querySelector('.v-principal').textContent = yen(div.querySelector('.f-principal').value);
        div.querySelector('.v-rate').textContent = parseFloat(div.querySelector('.f-rate').value).toFixed(1) + '%';
        div.querySelector('.v-months').textContent = period(parseInt(div.querySelector('.f-months').value, 10));
    };
    div.querySelectorAll('input').forEach(function (i) { i.addEventListener('input', sync); });
    sync();
}

function multiRequest() {
    var loans = [];
    document.querySelectorAll('.lender-form').forEach(function (div) {
        loans.push({
            lender: div.dataset.lender,
            principal: parseInt(div.querySelector('.f-principal').value, 10),
            annual_rate: parseFloat(div.querySelector('.f-rate').value),
            term_months: parseInt(div.querySelector('.f-months').value, 10)
        });
    });
    return { loans: loans };
}

document.querySelectorAll('.lender').forEach(function (cb) {
    cb.addEventListener('change', function () {
        if (cb.checked) { addLenderForm(cb); return; }
        var f = $('form-' + cb.value);
        if (f) f.remove();
    });
});
$('calculateMultiBtn').addEventListener('click', function () {
    post('/api/calculate/multi', multiRequest())
        .then(function (r) { return r.json(); })
        .then(function (data) { $('multiResult').innerHTML = data.html || ''; });
});
$('pdfMultiBtn').addEventListener('click', function () {
    var req = multiRequest();
    downloadPDF({ multi: true, loans: req.loans });
});

updateLabels();
calculate();
</script>
</body>
</html>
`
