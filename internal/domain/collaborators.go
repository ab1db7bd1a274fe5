package domain

import "context"

// Signer produces a detached signature over a message. Absence of a signer
// is a valid configuration state: the manifest is then emitted unsigned.
type Signer interface {
	// Sign returns a detached signature over msg.
	Sign(msg []byte) ([]byte, error)

	// Algorithm names the signature scheme, e.g. "ed25519".
	Algorithm() string

	// KeyID identifies the key material used.
	KeyID() string
}

// Narrator produces an optional one-sentence plain-language summary of a
// client's scoring outcome. Failures and absence are ignored by callers;
// a narrator must never influence score, band, or reasons.
type Narrator interface {
	Summarize(ctx context.Context, clientID, band string, reasons []string) (string, error)
}
