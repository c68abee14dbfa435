package main

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// pdfText converts UTF-8 text to PDF-safe encoding.
// Standard PDF fonts are Latin-1: the yen sign maps to its single byte (0xA5)
// and any rune outside Latin-1 becomes '?'.
func pdfText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '¥':
			b.WriteByte(0xa5)
		case r < 0x80:
			b.WriteRune(r)
		case r <= 0xff:
			b.WriteByte(byte(r))
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// FormatYenPDF formats an amount for PDF output, e.g. "¥1,000,000"
func FormatYenPDF(amount int64) string {
	return pdfText("¥" + groupDigits(amount))
}

// PDFScheduleReport generates a printable amortization schedule
type PDFScheduleReport struct {
	pdf *fpdf.Fpdf
}

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
	rowHeight    = 5.0
)

var scheduleColumnWidths = []float64{20, 40, 40, 40, 40}

func newPDFScheduleReport() *PDFScheduleReport {
	report := &PDFScheduleReport{pdf: fpdf.New("P", "mm", "A4", "")}
	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(false, marginBottom)
	report.pdf.SetFooterFunc(report.drawFooter)
	return report
}

func (r *PDFScheduleReport) output() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateSchedulePDFReport creates a PDF with the loan summary and the full schedule
func GenerateSchedulePDFReport(result LoanResult, solved SolvedTerm) ([]byte, error) {
	if len(result.Schedule) == 0 {
		return nil, fmt.Errorf("%w: empty schedule", ErrInvalidInput)
	}
	report := newPDFScheduleReport()

	report.pdf.AddPage()
	report.drawTitle("Amortization Schedule")
	report.drawLoanSummary(result, solved)
	report.pdf.Ln(6)
	report.drawSectionHeader("Monthly Schedule")
	report.drawSchedule(result.Schedule)

	return report.output()
}

// GenerateMultiLoanPDFReport creates a PDF with the combined totals and one schedule per lender
func GenerateMultiLoanPDFReport(m MultiLoanResult) ([]byte, error) {
	if len(m.Loans) == 0 {
		return nil, fmt.Errorf("%w: no loans", ErrInvalidInput)
	}
	report := newPDFScheduleReport()

	report.pdf.AddPage()
	report.drawTitle("Multi-Loan Summary")

	widths := []float64{40, 30, 20, 20, 35, 35}
	report.drawTableHeader([]string{"Lender", "Principal", "Rate", "Months", "Monthly", "Total"}, widths)
	for _, l := range m.Loans {
		res := l.Result
		report.drawTableRow([]string{
			pdfText(l.Lender.ID),
			FormatYenPDF(res.Terms.Principal),
			FormatRate(res.Terms.AnnualRatePercent),
			fmt.Sprintf("%d", res.Terms.TermMonths),
			FormatYenPDF(res.Summary.First),
			FormatYenPDF(res.TotalPayment),
		}, widths, false)
	}
	report.drawTableRow([]string{
		"TOTAL",
		FormatYenPDF(m.PrincipalTotal),
		"",
		fmt.Sprintf("%d", m.MaxMonths()),
		FormatYenPDF(m.FirstMonthTotal()),
		FormatYenPDF(m.PaymentTotal),
	}, widths, true)

	report.pdf.Ln(4)
	report.pdf.SetFont("Arial", "", 10)
	report.pdf.SetTextColor(50, 50, 50)
	report.pdf.CellFormat(contentWidth, 6, "Total interest: "+FormatYenPDF(m.InterestTotal), "", 1, "L", false, 0, "")

	for _, l := range m.Loans {
		report.pdf.AddPage()
		report.drawSectionHeader(pdfText(fmt.Sprintf("%s (%s, %s)", l.Lender.ID, FormatRate(l.Result.Terms.AnnualRatePercent), FormatPeriodASCII(l.Result.Terms.TermMonths))))
		report.drawSchedule(l.Result.Schedule)
	}

	return report.output()
}

func (r *PDFScheduleReport) drawTitle(title string) {
	r.pdf.SetFont("Arial", "B", 22)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, title, "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(6)
}

func (r *PDFScheduleReport) drawLoanSummary(result LoanResult, solved SolvedTerm) {
	r.drawSectionHeader("Loan Summary")

	widths := []float64{90, 90}
	paymentNote := "constant"
	switch {
	case result.Summary.HasFinalAdjustment():
		paymentNote = "constant, final " + FormatYenPDF(result.Summary.Last)
	case !result.Summary.IsFlat():
		paymentNote = "first, last " + FormatYenPDF(result.Summary.Last)
	}

	r.drawTableHeader([]string{"Item", "Value"}, widths)
	r.drawTableRow([]string{"Principal", FormatYenPDF(result.Terms.Principal)}, widths, false)
	r.drawTableRow([]string{"Annual rate", FormatRate(result.Terms.AnnualRatePercent)}, widths, false)
	r.drawTableRow([]string{"Repayment method", result.Terms.Method.String()}, widths, false)
	r.drawTableRow([]string{"Term", fmt.Sprintf("%s (%d months)", FormatPeriodASCII(result.Terms.TermMonths), result.Terms.TermMonths)}, widths, false)
	if solved.Solved {
		r.drawTableRow([]string{"Target payment", FormatYenPDF(solved.TargetPayment)}, widths, false)
	}
	r.drawTableRow([]string{"Monthly payment (" + paymentNote + ")", FormatYenPDF(result.Summary.First)}, widths, false)
	r.drawTableRow([]string{"Total payment", FormatYenPDF(result.TotalPayment)}, widths, false)
	r.drawTableRow([]string{"Total interest (" + InterestRatio(result.TotalInterest, result.TotalPayment).StringFixed(1) + "% of payments)", FormatYenPDF(result.TotalInterest)}, widths, true)
}

// drawSchedule writes every entry, repeating the header on each new page
func (r *PDFScheduleReport) drawSchedule(schedule Schedule) {
	headers := []string{"Month", "Payment", "Principal", "Interest", "Balance"}
	r.drawTableHeader(headers, scheduleColumnWidths)
	for _, e := range schedule {
		if r.pdf.GetY()+rowHeight > pageHeight-marginBottom {
			r.pdf.AddPage()
			r.drawTableHeader(headers, scheduleColumnWidths)
		}
		r.drawTableRow([]string{
			fmt.Sprintf("%d", e.Month),
			FormatYenPDF(e.Payment),
			FormatYenPDF(e.Principal),
			FormatYenPDF(e.Interest),
			FormatYenPDF(e.Balance),
		}, scheduleColumnWidths, false)
	}
}

// Helper functions

func (r *PDFScheduleReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 14)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 9, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(4)
}

func (r *PDFScheduleReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFScheduleReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 9)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 9)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], rowHeight, cell, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFScheduleReport) drawFooter() {
	r.pdf.SetY(-15)
	r.pdf.SetFont("Arial", "I", 8)
	r.pdf.SetTextColor(128, 128, 128)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Page %d - amounts rounded to whole yen", r.pdf.PageNo()), "", 0, "C", false, 0, "")
}
