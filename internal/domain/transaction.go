package domain

import (
	"fmt"
	"strings"
	"time"
)

// Direction values for a transaction. Empty string means unknown.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Method values for a transaction. Unmatched non-empty inputs are kept
// verbatim (lower-cased); empty string means unknown.
const (
	MethodCash       = "cash"
	MethodWire       = "wire"
	MethodEFT        = "eft"
	MethodCheque     = "cheque"
	MethodMoneyOrder = "money_order"
)

// Date is a calendar date. It marshals as "2006-01-02" so artifact JSON is
// stable across runs regardless of source formatting.
type Date struct {
	time.Time
}

// DateLayout is the canonical serialized form of a Date.
const DateLayout = "2006-01-02"

// NewDate builds a Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the date as a quoted "2006-01-02" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON parses a quoted "2006-01-02" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Transaction represents one accepted row of the transaction ledger after
// header normalization and type coercion.
type Transaction struct {
	TxID                string  `json:"tx_id,omitempty"`
	ClientID            string  `json:"client_id"`
	Date                Date    `json:"date"`
	Amount              float64 `json:"amount"`
	Currency            string  `json:"currency"`
	Direction           string  `json:"direction,omitempty"`
	Method              string  `json:"method,omitempty"`
	CounterpartyName    string  `json:"counterparty_name,omitempty"`
	CounterpartyCountry string  `json:"counterparty_country,omitempty"`
	MatterID            string  `json:"matter_id,omitempty"`
}

// RejectedRow records a ledger row excluded from scoring and cases, together
// with the original cell values for audit.
type RejectedRow struct {
	Index  int               `json:"index"`
	Reason string            `json:"reason"`
	Row    map[string]string `json:"row"`
}

// Lookback is the analysis window transactions must fall within, inclusive
// at both ends. One value is shared by the scorer and the case builder for
// a single upload.
type Lookback struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains reports whether d falls inside the window, boundaries included.
func (l Lookback) Contains(d Date) bool {
	return !d.Before(l.Start.Time) && !d.After(l.End.Time)
}
