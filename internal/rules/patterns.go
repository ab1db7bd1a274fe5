package rules

import (
	"sort"

	"github.com/opensource-finance/harrier/internal/domain"
)

// Structuring detection parameters: repeated cash deposits just under the
// AUSTRAC reporting threshold, clustered in time.
const (
	structuringMinCount  = 4
	structuringMinAmount = 9600
	structuringMaxAmount = 9999
	structuringSpanDays  = 7

	// spanEpsilon excludes exactly-7-day-plus-fractional edges introduced
	// by floating point day arithmetic.
	spanEpsilon = 1e-9
)

// Large-domestic and corridor parameters.
const (
	largeDomesticMinAmount = 100000
	corridorMinCount       = 2
	corridorMinLargeAmount = 20000
)

// StructuringCandidates returns the cash-method inbound transactions with
// amounts in the structuring band, in document order.
func StructuringCandidates(txs []domain.Transaction) []domain.Transaction {
	var hits []domain.Transaction
	for _, tx := range txs {
		if tx.Method == domain.MethodCash &&
			tx.Direction == domain.DirectionIn &&
			tx.Amount >= structuringMinAmount && tx.Amount <= structuringMaxAmount {
			hits = append(hits, tx)
		}
	}
	return hits
}

// StructuringTriggered reports whether some 4 of the candidate deposits,
// taken contiguously in date order, span at most 7 days. Every sliding
// window of exactly 4 is tested, not just the earliest.
func StructuringTriggered(candidates []domain.Transaction) bool {
	if len(candidates) < structuringMinCount {
		return false
	}

	sorted := append([]domain.Transaction(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	for i := 0; i+structuringMinCount <= len(sorted); i++ {
		first := sorted[i].Date
		last := sorted[i+structuringMinCount-1].Date
		span := last.Sub(first.Time).Hours() / 24
		if span <= structuringSpanDays-spanEpsilon {
			return true
		}
	}
	return false
}

// LargeDomesticHits returns outbound transactions of at least $100k whose
// counterparty country is empty or AU, in document order.
func LargeDomesticHits(txs []domain.Transaction) []domain.Transaction {
	var hits []domain.Transaction
	for _, tx := range txs {
		if tx.Direction == domain.DirectionOut &&
			tx.Amount >= largeDomesticMinAmount &&
			(tx.CounterpartyCountry == "" || tx.CounterpartyCountry == "AU") {
			hits = append(hits, tx)
		}
	}
	return hits
}

// CorridorHits returns outbound transactions to corridor countries, in
// document order.
func CorridorHits(txs []domain.Transaction) []domain.Transaction {
	var hits []domain.Transaction
	for _, tx := range txs {
		if tx.Direction == domain.DirectionOut && inCorridor(tx.CounterpartyCountry) {
			hits = append(hits, tx)
		}
	}
	return hits
}

// CorridorTriggered applies the corridor gate: at least two corridor
// transfers with at least one of $20k or more.
func CorridorTriggered(hits []domain.Transaction) bool {
	if len(hits) < corridorMinCount {
		return false
	}
	for _, tx := range hits {
		if tx.Amount >= corridorMinLargeAmount {
			return true
		}
	}
	return false
}

// CorridorDestinations returns the distinct corridor destination countries
// among hits, in first-occurrence order.
func CorridorDestinations(hits []domain.Transaction) []string {
	seen := make(map[string]bool, len(hits))
	var out []string
	for _, tx := range hits {
		if !seen[tx.CounterpartyCountry] {
			seen[tx.CounterpartyCountry] = true
			out = append(out, tx.CounterpartyCountry)
		}
	}
	return out
}

// windowed filters transactions to the lookback window, inclusive.
func windowed(txs []domain.Transaction, lb domain.Lookback) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if lb.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// GroupByClient partitions transactions by client_id, preserving document
// order within each group. The returned order slice lists client IDs in
// first-appearance order so callers iterate deterministically.
func GroupByClient(txs []domain.Transaction) (map[string][]domain.Transaction, []string) {
	groups := make(map[string][]domain.Transaction)
	var order []string
	for _, tx := range txs {
		if _, ok := groups[tx.ClientID]; !ok {
			order = append(order, tx.ClientID)
		}
		groups[tx.ClientID] = append(groups[tx.ClientID], tx)
	}
	return groups, order
}

// WindowedByClient windows then groups transactions; shared by the scorer
// and the case builder so both see identical inputs by construction.
func WindowedByClient(txs []domain.Transaction, lb domain.Lookback) (map[string][]domain.Transaction, []string) {
	return GroupByClient(windowed(txs, lb))
}
