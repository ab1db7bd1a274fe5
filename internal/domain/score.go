package domain

// Risk bands derived from the capped total score.
const (
	BandLow    = "Low"
	BandMedium = "Medium"
	BandHigh   = "High"
)

// Band thresholds. Ties at an exact boundary belong to the higher band.
const (
	BandHighThreshold   = 30
	BandMediumThreshold = 15
)

// Scoring families and their caps. A family's raw total is clamped to its
// cap before the totals are summed.
const (
	FamilyProfile  = "profile"
	FamilyBehavior = "behavior"
	FamilyCorridor = "corridor"

	CapProfile  = 20
	CapBehavior = 25
	CapCorridor = 20
)

// Reason is one entry in a score's explanation list. Scoring reasons carry
// a family and points; context notes carry text only and never affect the
// score or band.
type Reason struct {
	Family string `json:"family,omitempty"`
	Points int    `json:"points,omitempty"`
	Text   string `json:"text"`
}

// Score is the per-client scoring result.
type Score struct {
	ClientID string   `json:"client_id"`
	Score    int      `json:"score"`
	Band     string   `json:"band"`
	Reasons  []Reason `json:"reasons"`

	// Narrative is an optional one-sentence summary produced by an external
	// summarizer. Its absence never alters score, band, or reasons.
	Narrative string `json:"narrative,omitempty"`
}

// BandFor maps a capped total score to its risk band.
func BandFor(score int) string {
	switch {
	case score >= BandHighThreshold:
		return BandHigh
	case score >= BandMediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}
