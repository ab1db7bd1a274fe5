package domain

// Bundle artifact names. These are part of the contract consumed by the
// verification UI and must not change between releases.
const (
	ArtifactClients      = "clients.json"
	ArtifactTransactions = "transactions.json"
	ArtifactCases        = "cases.json"
	ArtifactProgram      = "program.html"
	ArtifactManifest     = "manifest.json"
)

// Artifact is one named file inside the evidence bundle. Slices of
// artifacts are ordered; the archive writer preserves insertion order.
type Artifact struct {
	Name string
	Data []byte
}
