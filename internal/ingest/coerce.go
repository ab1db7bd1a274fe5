package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/opensource-finance/harrier/internal/domain"
)

// RejectReason is the single reason string recorded for ledger rows missing
// a required field. Rejected rows never participate in scoring or cases.
const RejectReason = "Missing client_id/date/amount"

// DefaultCurrency is applied when a ledger row carries no currency code.
const DefaultCurrency = "AUD"

// dateLayouts are tried in order when coercing a ledger date cell.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// TransactionSet is the coerced, validated transaction ledger.
type TransactionSet struct {
	Transactions []domain.Transaction `json:"transactions"`
	Rejects      []domain.RejectedRow `json:"rejects"`
	HeaderMap    map[string]string    `json:"headerMap"`
}

// NormalizeTransactions maps ledger columns to the canonical transaction
// vocabulary, coerces each field independently, and splits rows into
// accepted transactions and rejects. A row is accepted only when client_id
// is non-empty, the date parses, and the amount is a non-negative finite
// number.
func NormalizeTransactions(rows []map[string]string) *TransactionSet {
	mapping := resolveHeaders(headerColumns(rows), txVocab)
	normalized := applyHeaderMap(rows, mapping)

	set := &TransactionSet{
		Transactions: make([]domain.Transaction, 0, len(normalized)),
		Rejects:      []domain.RejectedRow{},
		HeaderMap:    mapping,
	}

	for i, row := range normalized {
		clientID := strings.TrimSpace(row["client_id"])
		date, dateOK := parseDate(row["date"])
		amount, amountOK := parseAmount(row["amount"])

		if clientID == "" || !dateOK || !amountOK {
			set.Rejects = append(set.Rejects, domain.RejectedRow{
				Index:  i,
				Reason: RejectReason,
				Row:    rows[i],
			})
			continue
		}

		currency := strings.ToUpper(strings.TrimSpace(row["currency"]))
		if currency == "" {
			currency = DefaultCurrency
		}

		set.Transactions = append(set.Transactions, domain.Transaction{
			TxID:                strings.TrimSpace(row["tx_id"]),
			ClientID:            clientID,
			Date:                date,
			Amount:              amount,
			Currency:            currency,
			Direction:           classifyDirection(row["direction"]),
			Method:              classifyMethod(row["method"]),
			CounterpartyName:    strings.TrimSpace(row["counterparty_name"]),
			CounterpartyCountry: strings.ToUpper(strings.TrimSpace(row["counterparty_country"])),
			MatterID:            strings.TrimSpace(row["matter_id"]),
		})
	}

	return set
}

// parseDate coerces a cell to a calendar date. Unparseable input yields
// ok=false rather than an error.
func parseDate(s string) (domain.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.NewDate(t.Year(), t.Month(), t.Day()), true
		}
	}
	return domain.Date{}, false
}

// parseAmount strips everything except digits, sign, and decimal point,
// then parses the remainder. Negative and non-finite values are rejected.
func parseAmount(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// classifyDirection maps free-text direction cells onto {in, out, ""}.
// Outbound keywords are checked first so values like "sending" resolve to
// "out" despite also containing "in".
func classifyDirection(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "":
		return ""
	case domain.DirectionIn, domain.DirectionOut:
		return v
	}
	for _, kw := range []string{"out", "debit", "send"} {
		if strings.Contains(v, kw) {
			return domain.DirectionOut
		}
	}
	for _, kw := range []string{"in", "credit", "receive"} {
		if strings.Contains(v, kw) {
			return domain.DirectionIn
		}
	}
	return ""
}

// classifyMethod maps free-text method cells onto the canonical method set,
// matching substrings in priority order. Unmatched non-empty values are
// kept verbatim, lower-cased.
func classifyMethod(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return ""
	}
	switch {
	case strings.Contains(v, "cash"):
		return domain.MethodCash
	case strings.Contains(v, "wire"):
		return domain.MethodWire
	case strings.Contains(v, "eft"):
		return domain.MethodEFT
	case strings.Contains(v, "cheque"), strings.Contains(v, "check"):
		return domain.MethodCheque
	case strings.Contains(v, "money"):
		return domain.MethodMoneyOrder
	}
	return v
}
