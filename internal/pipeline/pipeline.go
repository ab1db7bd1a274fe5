// Package pipeline composes the scoring stages into the per-upload run:
// normalize, coerce, window, score, build cases, hash, sign, archive.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/opensource-finance/harrier/internal/bundle"
	"github.com/opensource-finance/harrier/internal/cases"
	"github.com/opensource-finance/harrier/internal/domain"
	"github.com/opensource-finance/harrier/internal/ingest"
	"github.com/opensource-finance/harrier/internal/manifest"
	"github.com/opensource-finance/harrier/internal/rules"
)

// Pipeline runs the full scoring pipeline for one upload. Each run allocates
// its own intermediate state, so concurrent runs never interfere.
type Pipeline struct {
	Scorer   *rules.Scorer
	Manifest *manifest.Builder

	// Now supplies the processing time used when the ledger is empty and
	// for the manifest creation timestamp.
	Now func() time.Time
}

// New creates a pipeline. Both collaborators are optional: a nil narrator
// skips enrichment, a nil signer yields unsigned manifests.
func New(narrator domain.Narrator, signer domain.Signer) *Pipeline {
	return &Pipeline{
		Scorer:   rules.NewScorer(narrator),
		Manifest: manifest.NewBuilder(signer),
		Now:      time.Now,
	}
}

// Result holds everything one run produces before archiving.
type Result struct {
	Clients      *ingest.ClientSet
	Transactions *ingest.TransactionSet
	Lookback     domain.Lookback
	Scores       []domain.Score
	Cases        []domain.Case
}

// Summary condenses a result for API responses and event payloads.
type Summary struct {
	Clients      int            `json:"clients"`
	Transactions int            `json:"transactions"`
	Rejects      int            `json:"rejects"`
	Cases        int            `json:"cases"`
	Bands        map[string]int `json:"bands"`
}

// Bundle is the archived output of one run.
type Bundle struct {
	Archive      []byte
	Manifest     *domain.Manifest
	ManifestJSON []byte
}

// Run executes the five pipeline stages over pre-parsed row sets. The stages
// themselves have no failure modes; row-level problems land in rejects.
func (p *Pipeline) Run(ctx context.Context, clientRows, txRows []map[string]string) *Result {
	clientSet := ingest.NormalizeClients(clientRows)
	txSet := ingest.NormalizeTransactions(txRows)
	lb := rules.Window(txSet.Transactions, p.Now())

	return &Result{
		Clients:      clientSet,
		Transactions: txSet,
		Lookback:     lb,
		Scores:       p.Scorer.ScoreAll(ctx, clientSet.Clients, txSet.Transactions, lb),
		Cases:        cases.Build(txSet.Transactions, lb),
	}
}

// RunCSV parses both CSV streams and executes the pipeline. Structural CSV
// failures are fatal for the whole request; nothing partial is returned.
func (p *Pipeline) RunCSV(ctx context.Context, clientsCSV, txCSV io.Reader) (*Result, error) {
	clientRows, err := ingest.ReadRecords(clientsCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client roster: %w", err)
	}
	txRows, err := ingest.ReadRecords(txCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction ledger: %w", err)
	}
	return p.Run(ctx, clientRows, txRows), nil
}

// clientsDoc is the clients.json artifact shape.
type clientsDoc struct {
	HeaderMap map[string]string `json:"headerMap"`
	Clients   []domain.Client   `json:"clients"`
}

// transactionsDoc is the transactions.json artifact shape.
type transactionsDoc struct {
	HeaderMap    map[string]string    `json:"headerMap"`
	Lookback     domain.Lookback      `json:"lookback"`
	Transactions []domain.Transaction `json:"transactions"`
	Rejects      []domain.RejectedRow `json:"rejects"`
}

// casesDoc is the cases.json artifact shape.
type casesDoc struct {
	RulesetID string          `json:"rulesetId"`
	Lookback  domain.Lookback `json:"lookback"`
	Scores    []domain.Score  `json:"scores"`
	Cases     []domain.Case   `json:"cases"`
}

// Artifacts serializes the result into the named bundle files, excluding the
// manifest. File names are a contract with the verification UI.
func (p *Pipeline) Artifacts(res *Result) ([]domain.Artifact, error) {
	clientsJSON, err := json.MarshalIndent(clientsDoc{
		HeaderMap: res.Clients.HeaderMap,
		Clients:   res.Clients.Clients,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", domain.ArtifactClients, err)
	}

	txJSON, err := json.MarshalIndent(transactionsDoc{
		HeaderMap:    res.Transactions.HeaderMap,
		Lookback:     res.Lookback,
		Transactions: res.Transactions.Transactions,
		Rejects:      res.Transactions.Rejects,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", domain.ArtifactTransactions, err)
	}

	casesJSON, err := json.MarshalIndent(casesDoc{
		RulesetID: rules.RulesetID,
		Lookback:  res.Lookback,
		Scores:    res.Scores,
		Cases:     res.Cases,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", domain.ArtifactCases, err)
	}

	programHTML, err := bundle.RenderProgram(bundle.ProgramData{
		RulesetID: rules.RulesetID,
		Lookback:  res.Lookback,
		Scores:    res.Scores,
		Cases:     res.Cases,
		Rejects:   res.Transactions.Rejects,
		Sources:   rules.Sources(),
	})
	if err != nil {
		return nil, err
	}

	return []domain.Artifact{
		{Name: domain.ArtifactClients, Data: clientsJSON},
		{Name: domain.ArtifactTransactions, Data: txJSON},
		{Name: domain.ArtifactCases, Data: casesJSON},
		{Name: domain.ArtifactProgram, Data: programHTML},
	}, nil
}

// Package serializes, hashes, optionally signs, and archives the result.
// Failure anywhere leaves nothing exposed; a request either completes the
// full pipeline or fails atomically.
func (p *Pipeline) Package(res *Result) (*Bundle, error) {
	artifacts, err := p.Artifacts(res)
	if err != nil {
		return nil, err
	}

	m := p.Manifest.Build(artifacts, rules.Meta(), p.Now())

	manifestJSON, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", domain.ArtifactManifest, err)
	}

	archive, err := bundle.Archive(append(artifacts, domain.Artifact{
		Name: domain.ArtifactManifest,
		Data: manifestJSON,
	}))
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Archive:      archive,
		Manifest:     m,
		ManifestJSON: manifestJSON,
	}, nil
}

// Summarize tallies the result for responses and events.
func Summarize(res *Result) Summary {
	bands := map[string]int{
		domain.BandLow:    0,
		domain.BandMedium: 0,
		domain.BandHigh:   0,
	}
	for _, s := range res.Scores {
		bands[s.Band]++
	}
	return Summary{
		Clients:      len(res.Clients.Clients),
		Transactions: len(res.Transactions.Transactions),
		Rejects:      len(res.Transactions.Rejects),
		Cases:        len(res.Cases),
		Bands:        bands,
	}
}
