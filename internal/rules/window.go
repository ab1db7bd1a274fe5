package rules

import (
	"time"

	"github.com/opensource-finance/harrier/internal/domain"
)

// Window derives the 18-month analysis window for an upload: it ends at the
// latest accepted transaction date, or at now when the ledger holds no
// accepted rows, and starts 18 calendar months earlier.
func Window(txs []domain.Transaction, now time.Time) domain.Lookback {
	end := domain.NewDate(now.UTC().Year(), now.UTC().Month(), now.UTC().Day())

	var max domain.Date
	found := false
	for _, tx := range txs {
		if !found || tx.Date.After(max.Time) {
			max = tx.Date
			found = true
		}
	}
	if found {
		end = max
	}

	return domain.Lookback{
		Start: domain.Date{Time: end.AddDate(0, -LookbackMonths, 0)},
		End:   end,
	}
}
