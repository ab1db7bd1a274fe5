package ingest

import (
	"testing"

	"github.com/opensource-finance/harrier/internal/domain"
)

func TestNormalizeTransactions(t *testing.T) {
	t.Run("AcceptedRow", func(t *testing.T) {
		rows := []map[string]string{
			{
				"transaction_id":       "T-1",
				"client_id":            "C-1",
				"date":                 "2025-03-10",
				"amount":               "$9,700.00",
				"currency":             "aud",
				"direction":            "Deposit-In",
				"method":               "Cash deposit",
				"counterparty_country": "au",
			},
		}

		set := NormalizeTransactions(rows)

		if len(set.Transactions) != 1 || len(set.Rejects) != 0 {
			t.Fatalf("expected 1 accepted and 0 rejects, got %d/%d", len(set.Transactions), len(set.Rejects))
		}
		tx := set.Transactions[0]
		if tx.TxID != "T-1" {
			t.Errorf("expected tx_id T-1, got %q", tx.TxID)
		}
		if tx.Amount != 9700 {
			t.Errorf("expected amount 9700 after stripping, got %v", tx.Amount)
		}
		if tx.Currency != "AUD" {
			t.Errorf("expected currency AUD, got %q", tx.Currency)
		}
		if tx.Direction != domain.DirectionIn {
			t.Errorf("expected direction in, got %q", tx.Direction)
		}
		if tx.Method != domain.MethodCash {
			t.Errorf("expected method cash, got %q", tx.Method)
		}
		if tx.CounterpartyCountry != "AU" {
			t.Errorf("expected country uppercased, got %q", tx.CounterpartyCountry)
		}
	})

	t.Run("MissingAmountRejected", func(t *testing.T) {
		rows := []map[string]string{
			{"client_id": "C-1", "date": "2025-03-10", "amount": ""},
		}

		set := NormalizeTransactions(rows)

		if len(set.Transactions) != 0 {
			t.Fatalf("expected no accepted rows, got %d", len(set.Transactions))
		}
		if len(set.Rejects) != 1 {
			t.Fatalf("expected 1 reject, got %d", len(set.Rejects))
		}
		rej := set.Rejects[0]
		if rej.Reason != RejectReason {
			t.Errorf("expected reason %q, got %q", RejectReason, rej.Reason)
		}
		if rej.Index != 0 {
			t.Errorf("expected index 0, got %d", rej.Index)
		}
		// The original row travels with the reject verbatim.
		if rej.Row["client_id"] != "C-1" {
			t.Errorf("expected original row preserved, got %v", rej.Row)
		}
	})

	t.Run("MissingClientIDRejected", func(t *testing.T) {
		set := NormalizeTransactions([]map[string]string{
			{"client_id": "  ", "date": "2025-03-10", "amount": "100"},
		})
		if len(set.Rejects) != 1 {
			t.Fatalf("expected 1 reject, got %d", len(set.Rejects))
		}
	})

	t.Run("UnparseableDateRejected", func(t *testing.T) {
		set := NormalizeTransactions([]map[string]string{
			{"client_id": "C-1", "date": "soon", "amount": "100"},
		})
		if len(set.Rejects) != 1 {
			t.Fatalf("expected 1 reject, got %d", len(set.Rejects))
		}
	})

	t.Run("NegativeAmountRejected", func(t *testing.T) {
		set := NormalizeTransactions([]map[string]string{
			{"client_id": "C-1", "date": "2025-03-10", "amount": "-9700"},
		})
		if len(set.Transactions) != 0 || len(set.Rejects) != 1 {
			t.Fatalf("expected negative amount rejected, got %d/%d", len(set.Transactions), len(set.Rejects))
		}
		if set.Rejects[0].Reason != RejectReason {
			t.Errorf("expected reason %q, got %q", RejectReason, set.Rejects[0].Reason)
		}
	})

	t.Run("CurrencyDefaultsToAUD", func(t *testing.T) {
		set := NormalizeTransactions([]map[string]string{
			{"client_id": "C-1", "date": "2025-03-10", "amount": "100"},
		})
		if set.Transactions[0].Currency != DefaultCurrency {
			t.Errorf("expected default currency, got %q", set.Transactions[0].Currency)
		}
	})
}

func TestParseDate(t *testing.T) {
	accepted := []string{
		"2025-03-10",
		"2025-03-10T09:30:00Z",
		"2025-03-10 09:30:00",
		"2025/03/10",
		"10/03/2025",
		"10 Mar 2025",
		"10-Mar-2025",
	}
	for _, s := range accepted {
		d, ok := parseDate(s)
		if !ok {
			t.Errorf("expected %q to parse", s)
			continue
		}
		if d.Format(domain.DateLayout) != "2025-03-10" {
			t.Errorf("%q parsed to %s", s, d.Format(domain.DateLayout))
		}
	}

	if _, ok := parseDate(""); ok {
		t.Error("expected empty date to fail")
	}
	if _, ok := parseDate("not a date"); ok {
		t.Error("expected garbage date to fail")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{"$9,700.50", 9700.50, true},
		{"AUD 1200", 1200, true},
		{"-50", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseAmount(%q) = %v,%v; want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestClassifyDirection(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"in", domain.DirectionIn},
		{"out", domain.DirectionOut},
		{"OUT", domain.DirectionOut},
		{"Debit", domain.DirectionOut},
		{"sending", domain.DirectionOut}, // "send" checked before "in"
		{"credit", domain.DirectionIn},
		{"received", domain.DirectionIn},
		{"sideways", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := classifyDirection(tc.in); got != tc.want {
			t.Errorf("classifyDirection(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassifyMethod(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Cash Deposit", domain.MethodCash},
		{"wire transfer", domain.MethodWire},
		{"EFT", domain.MethodEFT},
		{"Cheque", domain.MethodCheque},
		{"personal check", domain.MethodCheque},
		{"money order", domain.MethodMoneyOrder},
		{"Crypto", "crypto"}, // unmatched kept verbatim, lower-cased
		{"", ""},
	}
	for _, tc := range cases {
		if got := classifyMethod(tc.in); got != tc.want {
			t.Errorf("classifyMethod(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
