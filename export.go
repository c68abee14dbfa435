package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var scheduleCSVHeader = []string{"month", "payment", "principal", "interest", "balance"}

// WriteScheduleCSV writes the full schedule with a header row. Amounts are whole yen.
func WriteScheduleCSV(w io.Writer, schedule Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleCSVHeader); err != nil {
		return err
	}
	for _, e := range schedule {
		if err := cw.Write(scheduleRecord(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMultiLoanCSV writes one block of rows per lender, prefixed by the lender ID,
// followed by the combined monthly totals
func WriteMultiLoanCSV(w io.Writer, m MultiLoanResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"lender"}, scheduleCSVHeader...)); err != nil {
		return err
	}
	for _, l := range m.Loans {
		for _, e := range l.Result.Schedule {
			if err := cw.Write(append([]string{l.Lender.ID}, scheduleRecord(e)...)); err != nil {
				return err
			}
		}
	}
	for i, total := range m.MonthlyTotals {
		record := []string{"total", strconv.Itoa(i + 1), strconv.FormatInt(total, 10), "", "", strconv.FormatInt(m.BalanceTotals[i], 10)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func scheduleRecord(e ScheduleEntry) []string {
	return []string{
		strconv.Itoa(e.Month),
		strconv.FormatInt(e.Payment, 10),
		strconv.FormatInt(e.Principal, 10),
		strconv.FormatInt(e.Interest, 10),
		strconv.FormatInt(e.Balance, 10),
	}
}

// scheduleFilename names an export for a loan, e.g. "schedule-equal-1000000-12m.csv"
func scheduleFilename(t LoanTerms, ext string) string {
	return sanitizeFilename(fmt.Sprintf("schedule-%s-%d-%dm.%s", t.Method.ShortName(), t.Principal, t.TermMonths, ext))
}
