// Package bundle renders the summary page and packs artifacts into the
// downloadable zip archive.
package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/opensource-finance/harrier/internal/domain"
)

// Archive packs artifacts into a single zip blob. Entry order inside the
// archive is the insertion order of the artifact slice.
func Archive(artifacts []domain.Artifact) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	for _, a := range artifacts {
		w, err := zw.Create(a.Name)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to add %s to archive: %w", a.Name, err)
		}
		if _, err := w.Write(a.Data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to write %s to archive: %w", a.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
