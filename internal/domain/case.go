package domain

// Case pattern types. One case is emitted per (client, pattern) pair whose
// trigger condition holds over the in-window transactions.
const (
	CaseStructuring   = "structuring"
	CaseCorridor      = "corridor"
	CaseLargeDomestic = "large_domestic"
)

// MaxCaseSamples bounds the representative transactions attached to a case.
const MaxCaseSamples = 5

// CaseSample is a reduced transaction reference carried inside a case.
type CaseSample struct {
	TxID                string  `json:"tx_id,omitempty"`
	Date                Date    `json:"date"`
	Amount              float64 `json:"amount"`
	Currency            string  `json:"currency"`
	Method              string  `json:"method,omitempty"`
	CounterpartyCountry string  `json:"counterparty_country,omitempty"`
}

// Case is a structured record of a triggered typology pattern for a client.
type Case struct {
	Type     string       `json:"type"`
	ClientID string       `json:"client_id"`
	Rule     string       `json:"rule"`
	Samples  []CaseSample `json:"samples"`
}

// SampleOf reduces a transaction to its case-sample form.
func SampleOf(tx Transaction) CaseSample {
	return CaseSample{
		TxID:                tx.TxID,
		Date:                tx.Date,
		Amount:              tx.Amount,
		Currency:            tx.Currency,
		Method:              tx.Method,
		CounterpartyCountry: tx.CounterpartyCountry,
	}
}
