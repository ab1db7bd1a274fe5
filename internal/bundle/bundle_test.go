package bundle

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/opensource-finance/harrier/internal/domain"
)

func TestArchive(t *testing.T) {
	artifacts := []domain.Artifact{
		{Name: "clients.json", Data: []byte(`{"clients":[]}`)},
		{Name: "manifest.json", Data: []byte(`{"schema":"x"}`)},
	}

	blob, err := Archive(artifacts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		t.Fatalf("archive not readable: %v", err)
	}

	if len(zr.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(zr.File))
	}
	// Entry order inside the archive is insertion order.
	for i, want := range []string{"clients.json", "manifest.json"} {
		if zr.File[i].Name != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, zr.File[i].Name)
		}
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("failed to open entry: %v", err)
	}
	defer rc.Close()
	content, _ := io.ReadAll(rc)
	if string(content) != `{"clients":[]}` {
		t.Errorf("unexpected entry content %s", content)
	}
}

func TestRenderProgram(t *testing.T) {
	data := ProgramData{
		RulesetID: "aml-au-2025.06",
		Lookback: domain.Lookback{
			Start: domain.NewDate(2024, 1, 1),
			End:   domain.NewDate(2025, 6, 30),
		},
		Scores: []domain.Score{
			{
				ClientID: "C-1",
				Score:    30,
				Band:     domain.BandHigh,
				Reasons: []domain.Reason{
					{Family: domain.FamilyProfile, Points: 30, Text: "PEP flag present"},
					{Text: "FATF note"},
				},
				Narrative: "High-risk politically exposed client.",
			},
		},
		Cases: []domain.Case{
			{
				Type:     domain.CaseCorridor,
				ClientID: "C-1",
				Rule:     "corridor rule",
				Samples: []domain.CaseSample{
					{TxID: "T-1", Date: domain.NewDate(2025, 3, 1), Amount: 25000, Currency: "AUD", CounterpartyCountry: "RU"},
				},
			},
		},
		Rejects: []domain.RejectedRow{
			{Index: 3, Reason: "Missing client_id/date/amount"},
		},
		Sources: []domain.Source{
			{Name: "FATF call for action jurisdictions", Publisher: "FATF", AsOf: "2025-06-13"},
		},
	}

	html, err := RenderProgram(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page := string(html)

	for _, want := range []string{
		"aml-au-2025.06",
		"2024-01-01", "2025-06-30",
		"C-1",
		"PEP flag present",
		"High-risk politically exposed client.",
		"corridor rule",
		"25000.00",
		"Missing client_id/date/amount",
		"FATF call for action jurisdictions",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestRenderProgramDeterministic(t *testing.T) {
	data := ProgramData{RulesetID: "r1", Lookback: domain.Lookback{
		Start: domain.NewDate(2024, 1, 1),
		End:   domain.NewDate(2025, 6, 30),
	}}

	first, err := RenderProgram(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := RenderProgram(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("expected identical output for identical input")
	}
}
