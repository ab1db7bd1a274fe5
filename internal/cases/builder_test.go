package cases

import (
	"testing"

	"github.com/opensource-finance/harrier/internal/domain"
)

var testLookback = domain.Lookback{
	Start: domain.NewDate(2024, 1, 1),
	End:   domain.NewDate(2025, 12, 31),
}

func tx(clientID string, day int, amount float64, direction, method, country string) domain.Transaction {
	return domain.Transaction{
		TxID:                "T-" + clientID,
		ClientID:            clientID,
		Date:                domain.NewDate(2025, 3, day),
		Amount:              amount,
		Currency:            "AUD",
		Direction:           direction,
		Method:              method,
		CounterpartyCountry: country,
	}
}

func TestBuild(t *testing.T) {
	t.Run("StructuringCase", func(t *testing.T) {
		txs := []domain.Transaction{
			tx("C-1", 1, 9700, "in", "cash", ""),
			tx("C-1", 2, 9700, "in", "cash", ""),
			tx("C-1", 3, 9700, "in", "cash", ""),
			tx("C-1", 4, 9700, "in", "cash", ""),
		}

		got := Build(txs, testLookback)

		if len(got) != 1 {
			t.Fatalf("expected 1 case, got %d", len(got))
		}
		c := got[0]
		if c.Type != domain.CaseStructuring {
			t.Errorf("expected structuring case, got %s", c.Type)
		}
		if c.ClientID != "C-1" {
			t.Errorf("expected client C-1, got %s", c.ClientID)
		}
		if len(c.Samples) != 4 {
			t.Errorf("expected 4 samples, got %d", len(c.Samples))
		}
		s := c.Samples[0]
		if s.Amount != 9700 || s.Currency != "AUD" || s.Method != "cash" {
			t.Errorf("unexpected sample %+v", s)
		}
	})

	t.Run("SamplesCappedAtFive", func(t *testing.T) {
		var txs []domain.Transaction
		for day := 1; day <= 8; day++ {
			txs = append(txs, tx("C-1", day, 9700, "in", "cash", ""))
		}

		got := Build(txs, testLookback)

		if len(got) != 1 {
			t.Fatalf("expected 1 case, got %d", len(got))
		}
		if len(got[0].Samples) != domain.MaxCaseSamples {
			t.Errorf("expected %d samples, got %d", domain.MaxCaseSamples, len(got[0].Samples))
		}
		// First occurrences in document order.
		if !got[0].Samples[0].Date.Equal(domain.NewDate(2025, 3, 1).Time) {
			t.Errorf("expected earliest document-order sample first, got %v", got[0].Samples[0].Date)
		}
	})

	t.Run("PatternOrderPerClient", func(t *testing.T) {
		txs := []domain.Transaction{
			tx("C-1", 1, 9700, "in", "cash", ""),
			tx("C-1", 2, 9700, "in", "cash", ""),
			tx("C-1", 3, 9700, "in", "cash", ""),
			tx("C-1", 4, 9700, "in", "cash", ""),
			tx("C-1", 5, 25000, "out", "wire", "RU"),
			tx("C-1", 6, 1000, "out", "wire", "CN"),
			tx("C-1", 7, 150000, "out", "eft", "AU"),
		}

		got := Build(txs, testLookback)

		if len(got) != 3 {
			t.Fatalf("expected 3 cases, got %d", len(got))
		}
		wantOrder := []string{domain.CaseStructuring, domain.CaseCorridor, domain.CaseLargeDomestic}
		for i, want := range wantOrder {
			if got[i].Type != want {
				t.Errorf("case %d: expected %s, got %s", i, want, got[i].Type)
			}
		}
	})

	t.Run("ClientsInFirstAppearanceOrder", func(t *testing.T) {
		txs := []domain.Transaction{
			tx("C-2", 1, 150000, "out", "eft", "AU"),
			tx("C-1", 2, 150000, "out", "eft", ""),
		}

		got := Build(txs, testLookback)

		if len(got) != 2 {
			t.Fatalf("expected 2 cases, got %d", len(got))
		}
		if got[0].ClientID != "C-2" || got[1].ClientID != "C-1" {
			t.Errorf("expected [C-2 C-1], got [%s %s]", got[0].ClientID, got[1].ClientID)
		}
	})

	t.Run("OutOfWindowExcluded", func(t *testing.T) {
		stale := tx("C-1", 1, 150000, "out", "eft", "AU")
		stale.Date = domain.NewDate(2020, 1, 1)

		if got := Build([]domain.Transaction{stale}, testLookback); len(got) != 0 {
			t.Errorf("expected no cases for out-of-window rows, got %d", len(got))
		}
	})

	t.Run("NoTriggersNoCases", func(t *testing.T) {
		txs := []domain.Transaction{
			tx("C-1", 1, 500, "in", "eft", ""),
			tx("C-1", 2, 900, "out", "wire", "NZ"),
		}
		if got := Build(txs, testLookback); len(got) != 0 {
			t.Errorf("expected no cases, got %d", len(got))
		}
	})
}
