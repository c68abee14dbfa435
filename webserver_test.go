package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *WebServer {
	t.Helper()
	ws := NewWebServer(nil, "127.0.0.1:0", zap.NewNop())
	ws.exportDir = t.TempDir()
	return ws
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// Page Tests
// =============================================================================

func TestHandleIndex(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	for _, sel := range []string{"input#principal", "input#rate", "input#months", "input#payment", "select#method"} {
		if doc.Find(sel).Length() != 1 {
			t.Errorf("missing %s", sel)
		}
	}
	if v, _ := doc.Find("input#principal").Attr("value"); v != "1000000" {
		t.Errorf("principal slider value: got %q", v)
	}
	if v, _ := doc.Find("input#rate").Attr("step"); v != "0.1" {
		t.Errorf("rate slider step: got %q", v)
	}
	if v, _ := doc.Find("input#payment").Attr("min"); v != "13750" {
		t.Errorf("payment minimum: got %q", v)
	}
	if n := doc.Find("input.lender").Length(); n != 5 {
		t.Errorf("expected 5 lender checkboxes, got %d", n)
	}
	if v, _ := doc.Find("input.lender").Eq(3).Attr("data-rate"); v != "17.8" {
		t.Errorf("lender-d rate: got %q", v)
	}
}

func TestHandleIndex_UnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleHelp(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/help", nil))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find(".help h1").Length() != 1 {
		t.Error("expected the help heading")
	}
	if doc.Find(".help table").Length() != 1 {
		t.Error("expected the GFM table to render")
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected the caller's request ID, got %q", got)
	}
}

// =============================================================================
// Calculation API Tests
// =============================================================================

func TestHandleCalculate(t *testing.T) {
	rec := postJSON(t, newTestServer(t).Handler(), "/api/calculate", map[string]interface{}{
		"mode": "period", "principal": 1000000, "annual_rate": 15, "term_months": 12, "method": "equal",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp APICalculateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Result == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	assertYen(t, 90258, resp.Result.Summary.First, "monthly payment")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.HTML))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find("#loan-result table.schedule tbody tr").Length() != 12 {
		t.Error("expected the full 12-month schedule in the HTML fragment")
	}
}

func TestHandleCalculate_ByPayment(t *testing.T) {
	rec := postJSON(t, newTestServer(t).Handler(), "/api/calculate", map[string]interface{}{
		"mode": "amount", "principal": 1000000, "annual_rate": 15, "monthly_payment": 100000, "method": "principal",
	})
	var resp APICalculateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Solved == nil || !resp.Solved.Solved || resp.Solved.Terms.TermMonths != 12 {
		t.Errorf("unexpected solved term: %+v", resp.Solved)
	}
}

func TestHandleCalculate_Errors(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := postJSON(t, h, "/api/calculate", map[string]interface{}{
		"mode": "amount", "principal": 1000000, "annual_rate": 15, "monthly_payment": 10000,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("infeasible payment: expected 422, got %d", rec.Code)
	}
	var resp APICalculateResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != InfeasibleMessage || !strings.Contains(resp.HTML, InfeasibleMessage) {
		t.Errorf("unexpected error response: %+v", resp)
	}

	rec = postJSON(t, h, "/api/calculate", map[string]interface{}{"principal": 0, "annual_rate": 15, "term_months": 12})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero principal: expected 400, got %d", rec.Code)
	}

	rec = postJSON(t, h, "/api/calculate", map[string]interface{}{"principal": 1000, "term_months": 12, "method": "balloon"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown method: expected 400, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calculate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: expected 405, got %d", rec.Code)
	}
}

func TestHandleCalculateMulti(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := postJSON(t, h, "/api/calculate/multi", APIMultiLoanRequest{Loans: []APILenderLoan{
		{Lender: "lender-a", Principal: 100000, AnnualRate: 15, TermMonths: 12},
		{Lender: "lender-b", Principal: 300000, AnnualRate: 18, TermMonths: 24},
	}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp APIMultiLoanResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Result == nil || resp.Result.PrincipalTotal != 400000 || resp.Result.MaxMonths() != 24 {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
	if resp.Result.Loans[1].Lender.Name != "Bクレジット" {
		t.Errorf("lender not resolved from the catalogue: %+v", resp.Result.Loans[1].Lender)
	}
	if !strings.Contains(resp.HTML, `data-lender="lender-b"`) {
		t.Error("expected the breakdown table in the HTML fragment")
	}
}

func TestHandleCalculateMulti_Errors(t *testing.T) {
	h := newTestServer(t).Handler()
	tests := []struct {
		req         APIMultiLoanRequest
		description string
	}{
		{APIMultiLoanRequest{}, "no lenders"},
		{APIMultiLoanRequest{Loans: []APILenderLoan{{Lender: "lender-z", Principal: 1000, AnnualRate: 15, TermMonths: 12}}}, "unknown lender"},
		{APIMultiLoanRequest{Loans: []APILenderLoan{
			{Lender: "lender-a", Principal: 1000, AnnualRate: 15, TermMonths: 12},
			{Lender: "lender-a", Principal: 1000, AnnualRate: 15, TermMonths: 12},
		}}, "duplicate lender"},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			rec := postJSON(t, h, "/api/calculate/multi", tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestHandleMinimumPayment(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := postJSON(t, h, "/api/minimum-payment", APIMinimumPaymentRequest{Principal: 1000000, AnnualRate: 15, MonthlyPayment: 5000})

	var resp APIMinimumPaymentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.MinimumPayment != 13750 || resp.MonthlyPayment != 13750 || resp.Label != "13,750円" {
		t.Errorf("unexpected response: %+v", resp)
	}

	rec = postJSON(t, h, "/api/minimum-payment", APIMinimumPaymentRequest{Principal: 0, AnnualRate: 15})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero principal: expected 400, got %d", rec.Code)
	}
}

func TestHandleSolveTerm(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := postJSON(t, h, "/api/solve-term", map[string]interface{}{
		"principal": 1000000, "annual_rate": 15, "monthly_payment": 100000, "method": "equal",
	})

	var resp APISolveTermResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.TermMonths != 11 || resp.Period != "11ヶ月" {
		t.Errorf("unexpected response: %+v", resp)
	}

	rec = postJSON(t, h, "/api/solve-term", map[string]interface{}{
		"principal": 1000000, "annual_rate": 15, "monthly_payment": 12500, "method": "equal",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("infeasible: expected 422, got %d", rec.Code)
	}
}

// =============================================================================
// Export API Tests
// =============================================================================

func TestHandleExportCSV(t *testing.T) {
	ws := newTestServer(t)
	rec := postJSON(t, ws.Handler(), "/api/export-csv", map[string]interface{}{
		"principal": 1000000, "annual_rate": 15, "term_months": 12, "method": "principal",
	})

	var resp ExportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Fatalf("export failed: %s", resp.Message)
	}
	if !strings.HasSuffix(resp.FilePath, "schedule-principal-1000000-12m.csv") {
		t.Errorf("unexpected file path: %s", resp.FilePath)
	}

	data, err := os.ReadFile(resp.FilePath)
	if err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 13 {
		t.Errorf("expected 13 lines, got %d", lines)
	}
}

func TestHandleDownloadPDF(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := postJSON(t, h, "/api/download-pdf", APIPDFRequest{Loan: CalculationRequest{
		Principal: 1000000, AnnualRatePercent: 15, TermMonths: 12,
	}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "schedule-equal-1000000-12m.pdf") {
		t.Errorf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}

	rec = postJSON(t, h, "/api/download-pdf", APIPDFRequest{Multi: true, Loans: []APILenderLoan{
		{Lender: "lender-c", Principal: 100000, AnnualRate: 14.5, TermMonths: 12},
	}})
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("multi-loan PDF failed: %d", rec.Code)
	}

	rec = postJSON(t, h, "/api/download-pdf", APIPDFRequest{Loan: CalculationRequest{
		Mode: ModeByPayment, Principal: 1000000, AnnualRatePercent: 15, MonthlyPayment: 100,
	}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("infeasible: expected 422, got %d", rec.Code)
	}
}

func TestHandleOpenFolder_OutsideExportDir(t *testing.T) {
	rec := postJSON(t, newTestServer(t).Handler(), "/api/open-folder", OpenFolderRequest{FilePath: "/etc/passwd"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrInfeasibleRepayment, http.StatusUnprocessableEntity},
		{ValidationError{Field: "principal"}, http.StatusBadRequest},
		{ErrDuplicateLender, http.StatusBadRequest},
		{ErrInconsistentTotals, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := errorStatus(tc.err); got != tc.status {
			t.Errorf("errorStatus(%v) = %d, want %d", tc.err, got, tc.status)
		}
	}
}
