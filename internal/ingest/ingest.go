// Package ingest parses weekly sales report files into demand observations.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dgcastano/provision/internal/demand"
)

// Result holds the parsed observations plus counts for reporting what was
// skipped. Malformed rows do not abort the load; a weekly export with a few
// bad lines is still usable.
type Result struct {
	Observations []demand.Observation
	RowCount     int
	Skipped      int
	SkipReasons  []string
}

// ParseCSV reads a sales report in CSV form. Expected columns are product
// code, product name, weekday, and quantity. A header row is detected by a
// non-numeric quantity column and skipped. Rows with an unknown weekday, a
// non-numeric quantity, or too few columns are skipped and counted.
func ParseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	res := &Result{}
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.skip(fmt.Sprintf("unreadable row: %v", err))
			continue
		}
		res.RowCount++

		if len(record) < 4 {
			res.skip(fmt.Sprintf("row %d: expected 4 columns, got %d", res.RowCount, len(record)))
			continue
		}

		code := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		day := record[2]
		qtyText := strings.TrimSpace(record[3])

		if first {
			first = false
			if _, err := decimal.NewFromString(qtyText); err != nil {
				// Header row.
				res.RowCount--
				continue
			}
		}

		if code == "" {
			res.skip(fmt.Sprintf("row %d: empty product code", res.RowCount))
			continue
		}
		weekday, ok := demand.ParseWeekday(day)
		if !ok {
			res.skip(fmt.Sprintf("row %d: unknown weekday %q", res.RowCount, day))
			continue
		}
		qty, err := decimal.NewFromString(qtyText)
		if err != nil {
			res.skip(fmt.Sprintf("row %d: bad quantity %q", res.RowCount, qtyText))
			continue
		}
		if qty.IsNegative() {
			res.skip(fmt.Sprintf("row %d: negative quantity %q", res.RowCount, qtyText))
			continue
		}

		res.Observations = append(res.Observations, demand.Observation{
			ProductCode: code,
			ProductName: name,
			Weekday:     weekday,
			Quantity:    qty,
		})
	}

	if len(res.Observations) == 0 {
		return res, fmt.Errorf("no usable rows in report (%d skipped)", res.Skipped)
	}
	return res, nil
}

func (r *Result) skip(reason string) {
	r.Skipped++
	r.SkipReasons = append(r.SkipReasons, reason)
}
