// Package export serializes ledger rows to CSV. It renders rows exactly as
// given and computes nothing; all aggregation stays in the ledger engine.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"budget/internal/core"
)

// Header is the first row of every export, column order fixed for
// compatibility with spreadsheet imports.
var Header = []string{"Date", "Kind", "Category", "Amount", "Description"}

// WriteCSV renders transactions in the order given. Callers pass store
// output, which is already date-descending.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		record := []string{
			t.Date.String(),
			string(t.Kind),
			t.Category,
			core.FormatCents(t.Amount.Cents),
			t.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ReadCSV parses a previously exported file back into transactions, in file
// order. IDs and owner ids are not part of the export and stay zero.
func ReadCSV(r io.Reader) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, want := range Header {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected csv header column %d: %q", i, header[i])
		}
	}

	var out []core.Transaction
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		date, err := core.ParseDate(record[0])
		if err != nil {
			return nil, fmt.Errorf("csv row date %q: %w", record[0], err)
		}
		kind, err := core.ParseKind(record[1])
		if err != nil {
			return nil, fmt.Errorf("csv row kind %q: %w", record[1], err)
		}
		amount, err := core.ParseMoney(record[3])
		if err != nil {
			return nil, fmt.Errorf("csv row amount %q: %w", record[3], err)
		}

		out = append(out, core.Transaction{
			Date:        date,
			Kind:        kind,
			Category:    record[2],
			Amount:      amount,
			Description: record[4],
		})
	}
	return out, nil
}
