package manifest

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/opensource-finance/harrier/internal/domain"
)

// Ed25519Signer produces detached ed25519 signatures over manifest
// payloads. It implements domain.Signer.
type Ed25519Signer struct {
	key   ed25519.PrivateKey
	keyID string
}

// NewEd25519Signer builds a signer from a hex-encoded 32-byte seed.
func NewEd25519Signer(seedHex, keyID string) (*Ed25519Signer, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("invalid signing seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519Signer{
		key:   ed25519.NewKeyFromSeed(seed),
		keyID: keyID,
	}, nil
}

// Sign returns a detached signature over msg.
func (s *Ed25519Signer) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(s.key, msg), nil
}

// Algorithm names the signature scheme.
func (s *Ed25519Signer) Algorithm() string { return "ed25519" }

// KeyID identifies the key material.
func (s *Ed25519Signer) KeyID() string { return s.keyID }

// PublicKey exposes the verifying key, used by tests and the verification UI.
func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// SignerFromConfig returns a signer when a seed is configured, nil when not.
// A nil signer is a valid state: manifests are then emitted unsigned.
func SignerFromConfig(cfg domain.SigningConfig) (domain.Signer, error) {
	if cfg.SeedHex == "" {
		return nil, nil
	}
	return NewEd25519Signer(cfg.SeedHex, cfg.KeyID)
}
