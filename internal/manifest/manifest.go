package manifest

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/opensource-finance/harrier/internal/domain"
)

// Builder assembles manifests over bundle artifacts. Signer may be nil, in
// which case manifests are emitted without a signing block.
type Builder struct {
	Signer domain.Signer
}

// NewBuilder creates a manifest builder with an optional signer.
func NewBuilder(signer domain.Signer) *Builder {
	return &Builder{Signer: signer}
}

// signedPayload is the canonical serialization target for the detached
// signature: files, creation time, and ruleset identity.
type signedPayload struct {
	Files      []domain.ManifestFile `json:"files"`
	CreatedUTC time.Time             `json:"created_utc"`
	RulesetID  string                `json:"ruleset_id"`
}

// Build hashes every artifact and assembles the manifest. Construction
// never fails on a missing or failing signer; it only omits the signing
// block. artifacts must not include the manifest itself.
func (b *Builder) Build(artifacts []domain.Artifact, meta domain.RulesetMeta, createdUTC time.Time) *domain.Manifest {
	files := make([]domain.ManifestFile, 0, len(artifacts))
	for _, a := range artifacts {
		sum := sha256.Sum256(a.Data)
		files = append(files, domain.ManifestFile{
			Name:   a.Name,
			Bytes:  len(a.Data),
			SHA256: hex.EncodeToString(sum[:]),
		})
	}

	m := &domain.Manifest{
		Schema:     domain.ManifestSchema,
		CreatedUTC: createdUTC.UTC(),
		RulesetID:  meta.ID,
		HashAlg:    domain.HashAlgSHA256,
		Files:      files,
		Sources:    meta.Sources,
	}

	if b.Signer != nil {
		if signing, err := b.sign(m); err != nil {
			slog.Warn("manifest signing failed, emitting unsigned manifest", "error", err)
		} else {
			m.Signing = signing
		}
	}

	return m
}

// SigningMessage returns the canonical byte string a manifest's detached
// signature covers. Exposed so verifiers can reconstruct it.
func SigningMessage(m *domain.Manifest) ([]byte, error) {
	return CanonicalJSON(signedPayload{
		Files:      m.Files,
		CreatedUTC: m.CreatedUTC,
		RulesetID:  m.RulesetID,
	})
}

func (b *Builder) sign(m *domain.Manifest) (*domain.Signing, error) {
	msg, err := SigningMessage(m)
	if err != nil {
		return nil, err
	}
	sig, err := b.Signer.Sign(msg)
	if err != nil {
		return nil, err
	}
	return &domain.Signing{
		Algorithm: b.Signer.Algorithm(),
		KeyID:     b.Signer.KeyID(),
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}
