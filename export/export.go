// Package export renders list results as CSV, indented JSON or an aligned text table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// ErrNoRows is returned when a table with no records is exported.
var ErrNoRows = errors.New("export: no data to export")

// Table is implemented by list results that can be exported row by row.
type Table interface {
	Header() []string
	Records() [][]string
}

// Output formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

func WriteCSV(w io.Writer, t Table) error {
	records := t.Records()
	if len(records) == 0 {
		return ErrNoRows
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteText prints the table with tab-aligned columns.
func WriteText(w io.Writer, t Table) error {
	records := t.Records()
	if len(records) == 0 {
		return ErrNoRows
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header(), "\t"))
	for _, r := range records {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// Write renders v in format. v must implement Table for the csv and table formats.
func Write(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, v)
	case FormatCSV, FormatTable, "":
		t, ok := v.(Table)
		if !ok {
			return fmt.Errorf("export: %T cannot be written as %s", v, format)
		}
		if format == FormatCSV {
			return WriteCSV(w, t)
		}
		return WriteText(w, t)
	}
	return fmt.Errorf("export: unknown format %q", format)
}
