package ingest

import (
	"sort"
	"strings"

	"github.com/opensource-finance/harrier/internal/domain"
)

// vocabField pairs a canonical field name with its accepted header aliases.
// Resolution walks fields in declaration order; the first field whose alias
// set contains the (lower-cased, trimmed) column name wins.
type vocabField struct {
	canonical string
	aliases   []string
}

// clientVocab maps roster headers to the canonical client schema.
var clientVocab = []vocabField{
	{"client_id", []string{"client_id", "clientid", "client id", "customer_id", "customerid", "customer id", "client_ref", "client ref", "id"}},
	{"full_name", []string{"full_name", "full name", "name", "client_name", "customer_name", "legal_name"}},
	{"dob", []string{"dob", "date_of_birth", "date of birth", "birth_date", "birthdate"}},
	{"residency_country", []string{"residency_country", "residency country", "residency", "country_of_residence", "residence_country", "country"}},
	{"delivery_channel", []string{"delivery_channel", "delivery channel", "channel", "onboarding_channel"}},
	{"services", []string{"services", "service", "services_used", "service_types", "products"}},
	{"pep_flag", []string{"pep_flag", "pep flag", "pep", "is_pep", "politically_exposed"}},
	{"sanctions_flag", []string{"sanctions_flag", "sanctions flag", "sanctions", "is_sanctioned", "sanction_hit", "sanctions_hit"}},
	{"kyc_last_reviewed_at", []string{"kyc_last_reviewed_at", "kyc_last_reviewed", "kyc_reviewed_at", "kyc_review_date", "last_kyc_review", "kyc last reviewed"}},
}

// txVocab maps ledger headers to the canonical transaction schema.
var txVocab = []vocabField{
	{"tx_id", []string{"tx_id", "txid", "transaction_id", "transactionid", "transaction id", "reference", "ref", "id"}},
	{"client_id", []string{"client_id", "clientid", "client id", "customer_id", "customerid", "customer id", "client"}},
	{"date", []string{"date", "tx_date", "transaction_date", "transaction date", "value_date", "posting_date", "posted"}},
	{"amount", []string{"amount", "amt", "value", "tx_amount", "transaction_amount", "transaction amount"}},
	{"currency", []string{"currency", "ccy", "curr"}},
	{"direction", []string{"direction", "dr_cr", "debit_credit", "flow", "type"}},
	{"method", []string{"method", "payment_method", "payment method", "payment_type", "instrument", "channel"}},
	{"counterparty_name", []string{"counterparty_name", "counterparty name", "counterparty", "beneficiary", "payee", "remitter"}},
	{"counterparty_country", []string{"counterparty_country", "counterparty country", "cp_country", "beneficiary_country", "destination_country", "dest_country"}},
	{"matter_id", []string{"matter_id", "matter id", "matter", "file_id", "case_ref"}},
}

// resolveHeaders maps each original column name to its canonical name.
// Unmatched columns pass through under their lower-cased original name;
// nothing is ever dropped.
func resolveHeaders(columns []string, vocab []vocabField) map[string]string {
	mapping := make(map[string]string, len(columns))
	for _, col := range columns {
		key := strings.ToLower(strings.TrimSpace(col))
		mapped := key
		for _, field := range vocab {
			if containsAlias(field.aliases, key) {
				mapped = field.canonical
				break
			}
		}
		mapping[col] = mapped
	}
	return mapping
}

func containsAlias(aliases []string, key string) bool {
	for _, a := range aliases {
		if a == key {
			return true
		}
	}
	return false
}

// applyHeaderMap rewrites every record's keys through the header mapping.
// Columns are visited in sorted order of their original names and the first
// writer of a canonical field wins, so alias collisions resolve identically
// on every run.
func applyHeaderMap(rows []map[string]string, mapping map[string]string) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		cols := make([]string, 0, len(row))
		for k := range row {
			cols = append(cols, k)
		}
		sort.Strings(cols)

		rec := make(map[string]string, len(row))
		for _, k := range cols {
			canon, ok := mapping[k]
			if !ok {
				canon = strings.ToLower(strings.TrimSpace(k))
			}
			if _, taken := rec[canon]; taken {
				continue
			}
			rec[canon] = row[k]
		}
		out = append(out, rec)
	}
	return out
}

// headerColumns extracts the column set of a row sequence from its first
// row, which defines the header per the CSV collaborator contract.
func headerColumns(rows []map[string]string) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	return cols
}

// ClientSet is the header-normalized client roster.
type ClientSet struct {
	Clients   []domain.Client   `json:"clients"`
	HeaderMap map[string]string `json:"headerMap"`
}

// NormalizeClients maps arbitrary roster columns to the canonical client
// vocabulary and constructs immutable client records. There are no error
// conditions: unknown columns are preserved, not dropped.
func NormalizeClients(rows []map[string]string) *ClientSet {
	mapping := resolveHeaders(headerColumns(rows), clientVocab)
	normalized := applyHeaderMap(rows, mapping)

	clients := make([]domain.Client, 0, len(normalized))
	for _, row := range normalized {
		clients = append(clients, domain.Client{
			ClientID:          strings.TrimSpace(row["client_id"]),
			FullName:          strings.TrimSpace(row["full_name"]),
			DOB:               strings.TrimSpace(row["dob"]),
			ResidencyCountry:  strings.ToUpper(strings.TrimSpace(row["residency_country"])),
			DeliveryChannel:   strings.TrimSpace(row["delivery_channel"]),
			Services:          strings.TrimSpace(row["services"]),
			PEPFlag:           domain.Truthy(row["pep_flag"]),
			SanctionsFlag:     domain.Truthy(row["sanctions_flag"]),
			KYCLastReviewedAt: strings.TrimSpace(row["kyc_last_reviewed_at"]),
		})
	}

	return &ClientSet{Clients: clients, HeaderMap: mapping}
}
