// Package types holds transport values shared by every domain module: timestamps as the
// backend emits them, calendar dates for analytics filters, and pagination.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the format the analytics endpoints expect for start_date/end_date.
const DateLayout = "2006-01-02"

// DefaultPageLimit is used by paginated analytics queries when no limit is given.
const DefaultPageLimit = 50

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	DateLayout,
}

// Timestamp decodes the backend's datetime values. Zone-less values are taken as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp %s is not a string: %w", data, err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Date is a calendar day. The zero value means "not provided".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate reads a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var ts Timestamp
	if err := ts.UnmarshalJSON(data); err != nil {
		return err
	}
	if ts.IsZero() {
		d.Time = time.Time{}
		return nil
	}
	*d = NewDate(ts.Time)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// DateRange bounds analytics queries. Either end may be zero.
type DateRange struct {
	Start Date
	End   Date
}

// Page carries limit/offset pagination.
type Page struct {
	Limit  int
	Offset int
}

// WithDefaults returns the page with DefaultPageLimit applied to a zero limit.
func (p Page) WithDefaults() Page {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	return p
}

// ListMeta is the pagination envelope every list endpoint returns.
type ListMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Period echoes the window an analytics projection was computed over.
type Period struct {
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
	District  string `json:"district,omitempty"`
}
