package export

import (
	"encoding/csv"
	"io"

	"smartinvoice/internal/domain"
)

// BOM is the UTF-8 byte order mark Excel on Windows needs to detect the encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a BOM, the header row and one row per invoice.
func WriteCSV(w io.Writer, invoices []domain.InvoiceData) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for i := range invoices {
		if err := cw.Write(RowFor(&invoices[i]).strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
