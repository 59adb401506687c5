package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"smartinvoice/internal/domain"
)

const sheetName = "History"

// WriteXLSX writes a single-sheet workbook with a bold header, one row per
// invoice and a totals row.
func WriteXLSX(w io.Writer, invoices []domain.InvoiceData) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := setRow(f, 1, toCells(columns)); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	rows := make([]Row, len(invoices))
	for i := range invoices {
		rows[i] = RowFor(&invoices[i])
		if err := setRow(f, i+2, rows[i].cells()); err != nil {
			return err
		}
	}

	totalLine := len(rows) + 2
	if err := setRow(f, totalLine, TotalRow(rows).cells()); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", totalLine), fmt.Sprintf("%s%d", lastCol, totalLine), headerStyle); err != nil {
		return fmt.Errorf("styling totals: %w", err)
	}

	if err := f.SetColWidth(sheetName, "A", "D", 18); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, lastCol, lastCol, 60); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// cells keeps numeric columns numeric so spreadsheet formulas work on them.
func (r Row) cells() []interface{} {
	paid := ""
	if r.InvoiceNumber != "Total" {
		paid = formatBool(r.Paid)
	}
	return []interface{}{
		r.InvoiceNumber,
		r.Date,
		r.ClientName,
		r.ClientGSTIN,
		r.ItemCount,
		r.Taxable,
		r.CGST,
		r.SGST,
		r.GrandTotal,
		paid,
		r.Words,
	}
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func setRow(f *excelize.File, line int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", line, err)
	}
	return nil
}
