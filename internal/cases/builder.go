// Package cases derives structured case records from in-window
// transactions. It re-evaluates the same typology predicates the scorer
// uses, so cases and scoring reasons stay consistent by construction.
package cases

import (
	"github.com/opensource-finance/harrier/internal/domain"
	"github.com/opensource-finance/harrier/internal/rules"
)

// Rule descriptions attached to emitted cases.
const (
	ruleStructuring   = "4+ cash deposits of $9,600-$9,999 within any 7-day window"
	ruleCorridor      = "2+ outbound transfers to corridor countries with at least one of $20,000+"
	ruleLargeDomestic = "Outbound domestic transfer of $100,000 or more"
)

// Build scans all in-window transactions per client and emits one case per
// triggered pattern. Clients are visited in first-appearance order; per
// client the pattern order is structuring, corridor, large_domestic.
func Build(txs []domain.Transaction, lb domain.Lookback) []domain.Case {
	groups, order := rules.WindowedByClient(txs, lb)

	out := []domain.Case{}
	for _, clientID := range order {
		clientTxs := groups[clientID]

		if candidates := rules.StructuringCandidates(clientTxs); rules.StructuringTriggered(candidates) {
			out = append(out, domain.Case{
				Type:     domain.CaseStructuring,
				ClientID: clientID,
				Rule:     ruleStructuring,
				Samples:  samples(candidates),
			})
		}

		if hits := rules.CorridorHits(clientTxs); rules.CorridorTriggered(hits) {
			out = append(out, domain.Case{
				Type:     domain.CaseCorridor,
				ClientID: clientID,
				Rule:     ruleCorridor,
				Samples:  samples(hits),
			})
		}

		if hits := rules.LargeDomesticHits(clientTxs); len(hits) > 0 {
			out = append(out, domain.Case{
				Type:     domain.CaseLargeDomestic,
				ClientID: clientID,
				Rule:     ruleLargeDomestic,
				Samples:  samples(hits),
			})
		}
	}
	return out
}

// samples reduces hits to at most MaxCaseSamples references, keeping
// first-occurrence document order.
func samples(hits []domain.Transaction) []domain.CaseSample {
	n := len(hits)
	if n > domain.MaxCaseSamples {
		n = domain.MaxCaseSamples
	}
	out := make([]domain.CaseSample, 0, n)
	for _, tx := range hits[:n] {
		out = append(out, domain.SampleOf(tx))
	}
	return out
}
