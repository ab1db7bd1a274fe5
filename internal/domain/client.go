// Package domain holds the core data model and collaborator interfaces.
package domain

import "strings"

// Client represents one row of the client roster after header normalization.
// Clients are constructed once per upload and are immutable afterwards.
type Client struct {
	ClientID         string `json:"client_id"`
	FullName         string `json:"full_name,omitempty"`
	DOB              string `json:"dob,omitempty"`
	ResidencyCountry string `json:"residency_country,omitempty"`
	DeliveryChannel  string `json:"delivery_channel,omitempty"`
	Services         string `json:"services,omitempty"`
	PEPFlag          bool   `json:"pep_flag"`
	SanctionsFlag    bool   `json:"sanctions_flag"`

	// KYCLastReviewedAt is kept as the raw date string; the scorer parses it.
	KYCLastReviewedAt string `json:"kyc_last_reviewed_at,omitempty"`
}

// Truthy reports whether a roster cell should be read as a boolean true.
// Accepted forms: "true", "yes", "y", "1" (case-insensitive, trimmed).
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}
