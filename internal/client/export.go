package client

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportCSV writes the cached expense listing as CSV with a header row.
// It exports what the user currently sees, i.e. the active filter applies.
func (c *Controller) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Category", "Amount", "Description"}); err != nil {
		return err
	}
	for _, e := range c.cache.Expenses() {
		rec := []string{e.Date, string(e.Category), fmt.Sprintf("%.2f", e.Amount), e.Description}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
