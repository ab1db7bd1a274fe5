// Package rules implements the fixed AML ruleset: lookback window
// derivation, the three-family scorer, and the shared typology predicates.
package rules

import "github.com/opensource-finance/harrier/internal/domain"

// RulesetID identifies the fixed ruleset version applied to every upload.
const RulesetID = "aml-au-2025.06"

// LookbackMonths is the length of the analysis window.
const LookbackMonths = 18

// CorridorCountries is the fixed set of elevated-risk transfer destinations.
// Order here is the canonical iteration order used in reason texts.
var CorridorCountries = []string{"RU", "CN", "HK", "AE", "IN", "IR"}

// FATF list versions applied by the context-note rules.
const (
	fatfAsOf = "2025-06-13"
	dfatAsOf = "2025-05-29"
)

// callForActionCountries are FATF "call for action" jurisdictions.
var callForActionCountries = []string{"IR", "KP", "RU"}

// greyListCountries are FATF "increased monitoring" (grey list) jurisdictions
// intersecting the corridor and monitoring sets used by this ruleset.
var greyListCountries = []string{"AE", "TR", "MY", "PH", "BG", "MA"}

// inCorridor reports whether country is in the corridor set.
func inCorridor(country string) bool {
	for _, c := range CorridorCountries {
		if c == country {
			return true
		}
	}
	return false
}

// Sources returns the risk-list provenance recorded in every manifest.
func Sources() []domain.Source {
	return []domain.Source{
		{
			Name:      "FATF call for action jurisdictions",
			Publisher: "FATF",
			AsOf:      fatfAsOf,
			URL:       "https://www.fatf-gafi.org/en/publications/High-risk-and-other-monitored-jurisdictions/call-for-action-june-2025.html",
		},
		{
			Name:      "FATF increased monitoring jurisdictions",
			Publisher: "FATF",
			AsOf:      fatfAsOf,
			URL:       "https://www.fatf-gafi.org/en/publications/High-risk-and-other-monitored-jurisdictions/increased-monitoring-june-2025.html",
		},
		{
			Name:      "DFAT Consolidated List",
			Publisher: "DFAT",
			AsOf:      dfatAsOf,
			URL:       "https://www.dfat.gov.au/international-relations/security/sanctions/consolidated-list",
		},
	}
}

// Meta describes the ruleset for manifest construction.
func Meta() domain.RulesetMeta {
	return domain.RulesetMeta{
		ID:             RulesetID,
		LookbackMonths: LookbackMonths,
		Bands: map[string]int{
			domain.BandHigh:   domain.BandHighThreshold,
			domain.BandMedium: domain.BandMediumThreshold,
		},
		Caps: map[string]int{
			domain.FamilyProfile:  domain.CapProfile,
			domain.FamilyBehavior: domain.CapBehavior,
			domain.FamilyCorridor: domain.CapCorridor,
		},
		CorridorCountries: append([]string(nil), CorridorCountries...),
		Sources:           Sources(),
	}
}
