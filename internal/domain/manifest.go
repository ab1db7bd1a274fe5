package domain

import "time"

// ManifestSchema tags the manifest document format.
const ManifestSchema = "harrier.manifest/v1"

// HashAlgSHA256 is the only hash algorithm the manifest builder emits.
const HashAlgSHA256 = "sha256"

// ManifestFile is one hashed artifact entry. Entries cover every file in the
// bundle except the manifest itself, in bundle insertion order.
type ManifestFile struct {
	Name   string `json:"name"`
	Bytes  int    `json:"bytes"`
	SHA256 string `json:"sha256"`
}

// Source records the provenance of one external risk list consulted by the
// ruleset (name, publisher, and the as-of date of the version applied).
type Source struct {
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
	AsOf      string `json:"as_of"`
	URL       string `json:"url,omitempty"`
}

// RulesetMeta describes the fixed ruleset an upload was scored against.
type RulesetMeta struct {
	ID                string         `json:"id"`
	LookbackMonths    int            `json:"lookback_months"`
	Bands             map[string]int `json:"bands"`
	Caps              map[string]int `json:"caps"`
	CorridorCountries []string       `json:"corridor_countries"`
	Sources           []Source       `json:"sources"`
}

// Signing is the optional detached-signature block of a manifest. The
// signature covers the canonical JSON serialization of
// {files, created_utc, ruleset_id}.
type Signing struct {
	Algorithm string `json:"algorithm"`
	KeyID     string `json:"key_id"`
	Signature string `json:"signature"`
}

// Manifest is the hash-indexed, optionally signed inventory of an evidence
// bundle. A manifest without a signing block is a complete, valid output.
type Manifest struct {
	Schema     string         `json:"schema"`
	CreatedUTC time.Time      `json:"created_utc"`
	RulesetID  string         `json:"ruleset_id"`
	HashAlg    string         `json:"hash_alg"`
	Files      []ManifestFile `json:"files"`
	Sources    []Source       `json:"sources"`
	Signing    *Signing       `json:"signing,omitempty"`
}
