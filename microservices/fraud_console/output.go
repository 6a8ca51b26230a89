package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/the-monkeys/fraud_support/apiclient"
	"github.com/the-monkeys/fraud_support/export"
)

type printer struct {
	w      io.Writer
	format string
}

// list writes a list result. An empty list prints a notice instead of failing.
func (p *printer) list(t export.Table) error {
	err := export.Write(p.w, p.format, t)
	if errors.Is(err, export.ErrNoRows) {
		fmt.Fprintln(p.w, "No records found.")
		return nil
	}
	return err
}

// record writes one object: as JSON it is v itself, otherwise the labelled fields.
func (p *printer) record(v any, f fields) error {
	if p.format == export.FormatJSON {
		return export.WriteJSON(p.w, v)
	}
	return export.Write(p.w, p.format, f)
}

func (p *printer) section(title string) {
	if p.format == export.FormatTable || p.format == "" {
		fmt.Fprintf(p.w, "\n== %s ==\n", title)
	}
}

// fields is a two-column table of labelled values.
type fields [][2]string

func (f fields) Header() []string { return []string{"Field", "Value"} }

func (f fields) Records() [][]string {
	rows := make([][]string, 0, len(f))
	for _, kv := range f {
		rows = append(rows, []string{kv[0], kv[1]})
	}
	return rows
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func errorText(err error) string { return apiclient.Message(err, "") }
