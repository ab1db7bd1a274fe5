package rules

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/opensource-finance/harrier/internal/domain"
)

// Profile rule points.
const (
	pointsPEP          = 30
	pointsSanctions    = 30
	pointsStaleKYC     = 10
	pointsRiskServices = 8
	pointsOffshore     = 6
)

// Behavior and corridor rule points.
const (
	pointsStructuring   = 25
	pointsLargeDomestic = 15
	pointsCorridor      = 20
)

// staleKYCMonths is the review age at which the KYC rule fires.
const staleKYCMonths = 12

// riskServicesRe matches service descriptions with elevated ML exposure.
var riskServicesRe = regexp.MustCompile(`(?i)remittance|property|real ?estate`)

// Scorer evaluates the fixed ruleset for each client. The optional
// Narrator enriches results with a one-sentence summary; its failure or
// absence never changes any scoring output.
type Scorer struct {
	Narrator domain.Narrator
}

// NewScorer creates a scorer with optional narrative enrichment.
func NewScorer(narrator domain.Narrator) *Scorer {
	return &Scorer{Narrator: narrator}
}

// ScoreAll evaluates every client against its in-window transactions and
// returns one score record per client, in roster order.
func (s *Scorer) ScoreAll(ctx context.Context, clients []domain.Client, txs []domain.Transaction, lb domain.Lookback) []domain.Score {
	groups, _ := WindowedByClient(txs, lb)

	scores := make([]domain.Score, 0, len(clients))
	for _, client := range clients {
		scores = append(scores, s.scoreClient(ctx, client, groups[client.ClientID], lb))
	}
	return scores
}

// familyTotals accumulates raw per-family points for one client. It is
// recreated per client and discarded after scoring.
type familyTotals map[string]int

func (t familyTotals) add(reasons *[]domain.Reason, family string, points int, text string) {
	t[family] += points
	*reasons = append(*reasons, domain.Reason{Family: family, Points: points, Text: text})
}

// capped clamps a family total to its cap.
func (t familyTotals) capped(family string, limit int) int {
	if t[family] > limit {
		return limit
	}
	return t[family]
}

func (s *Scorer) scoreClient(ctx context.Context, client domain.Client, txs []domain.Transaction, lb domain.Lookback) domain.Score {
	totals := familyTotals{}
	var reasons []domain.Reason

	// Profile family
	if client.PEPFlag {
		totals.add(&reasons, domain.FamilyProfile, pointsPEP, "PEP flag present")
	}
	if client.SanctionsFlag {
		totals.add(&reasons, domain.FamilyProfile, pointsSanctions, "Sanctions flag present (DFAT/Consolidated)")
	}
	if months, ok := kycAgeMonths(client.KYCLastReviewedAt, lb.End); ok && months >= staleKYCMonths {
		totals.add(&reasons, domain.FamilyProfile, pointsStaleKYC,
			fmt.Sprintf("KYC last reviewed %d months ago", months))
	}
	if riskServicesRe.MatchString(client.Services) {
		totals.add(&reasons, domain.FamilyProfile, pointsRiskServices,
			"Services include remittance or property exposure")
	}
	if client.ResidencyCountry != "" && client.ResidencyCountry != "AU" {
		totals.add(&reasons, domain.FamilyProfile, pointsOffshore,
			fmt.Sprintf("Offshore residency: %s", client.ResidencyCountry))
	}

	// Behavior family
	if StructuringTriggered(StructuringCandidates(txs)) {
		totals.add(&reasons, domain.FamilyBehavior, pointsStructuring,
			"Structuring pattern: 4+ cash deposits of $9,600-$9,999 within 7 days")
	}
	if hits := LargeDomesticHits(txs); len(hits) > 0 {
		totals.add(&reasons, domain.FamilyBehavior, pointsLargeDomestic,
			"Large domestic outbound transfer of $100,000 or more")
	}

	// Corridor family
	corridorHits := CorridorHits(txs)
	if CorridorTriggered(corridorHits) {
		dests := CorridorDestinations(corridorHits)
		totals.add(&reasons, domain.FamilyCorridor, pointsCorridor,
			fmt.Sprintf("%d outbound transfers to higher-risk corridors (%s)",
				len(corridorHits), strings.Join(dests, ", ")))
	}

	// Context notes: FATF list membership among corridor destinations.
	// Notes carry no points and never alter score or band.
	reasons = append(reasons, corridorNotes(corridorHits)...)

	total := totals.capped(domain.FamilyProfile, domain.CapProfile) +
		totals.capped(domain.FamilyBehavior, domain.CapBehavior) +
		totals.capped(domain.FamilyCorridor, domain.CapCorridor)

	score := domain.Score{
		ClientID: client.ClientID,
		Score:    total,
		Band:     domain.BandFor(total),
		Reasons:  reasons,
	}

	s.enrich(ctx, &score)
	return score
}

// corridorNotes emits FATF context notes for each distinct corridor
// destination present, iterating the fixed lists in declared order.
func corridorNotes(hits []domain.Transaction) []domain.Reason {
	present := make(map[string]bool)
	for _, dest := range CorridorDestinations(hits) {
		present[dest] = true
	}

	var notes []domain.Reason
	for _, c := range callForActionCountries {
		if present[c] {
			notes = append(notes, domain.Reason{
				Text: fmt.Sprintf("FATF call-for-action jurisdiction %s among destinations (list as at %s)", c, fatfAsOf),
			})
			delete(present, c)
		}
	}
	for _, c := range greyListCountries {
		if present[c] {
			notes = append(notes, domain.Reason{
				Text: fmt.Sprintf("FATF increased-monitoring jurisdiction %s among destinations (list as at %s)", c, fatfAsOf),
			})
		}
	}
	return notes
}

// kycAgeMonths computes floor(abs(days)/30) between the review date and the
// window end. An absent or unparseable date reports ok=false.
func kycAgeMonths(reviewedAt string, end domain.Date) (int, bool) {
	reviewedAt = strings.TrimSpace(reviewedAt)
	if reviewedAt == "" {
		return 0, false
	}
	d, ok := parseKYCDate(reviewedAt)
	if !ok {
		return 0, false
	}
	days := math.Abs(end.Sub(d.Time).Hours() / 24)
	return int(math.Floor(days / 30)), true
}

var kycLayouts = []string{"2006-01-02", "2006/01/02", "02/01/2006"}

func parseKYCDate(s string) (domain.Date, bool) {
	for _, layout := range kycLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.NewDate(t.Year(), t.Month(), t.Day()), true
		}
	}
	return domain.Date{}, false
}

// enrich attaches the optional narrative. Errors are logged and swallowed;
// scoring output is already final when this runs.
func (s *Scorer) enrich(ctx context.Context, score *domain.Score) {
	if s.Narrator == nil {
		return
	}
	texts := make([]string, 0, len(score.Reasons))
	for _, r := range score.Reasons {
		texts = append(texts, r.Text)
	}
	summary, err := s.Narrator.Summarize(ctx, score.ClientID, score.Band, texts)
	if err != nil {
		slog.Warn("narrative enrichment failed",
			"client_id", score.ClientID,
			"error", err,
		)
		return
	}
	score.Narrative = summary
}
