// harrierctl - offline evidence bundle builder.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/opensource-finance/harrier/internal/domain"
	"github.com/opensource-finance/harrier/internal/manifest"
	"github.com/opensource-finance/harrier/internal/pipeline"
)

func main() {
	clientsPath := flag.String("clients", "", "path to the client roster CSV (required)")
	txPath := flag.String("transactions", "", "path to the transaction ledger CSV (required)")
	outPath := flag.String("out", "bundle.zip", "path to write the evidence bundle zip")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *clientsPath == "" || *txPath == "" {
		fmt.Fprintln(os.Stderr, "usage: harrierctl -clients roster.csv -transactions ledger.csv [-out bundle.zip]")
		os.Exit(2)
	}

	if err := run(*clientsPath, *txPath, *outPath); err != nil {
		slog.Error("bundle build failed", "error", err)
		os.Exit(1)
	}
}

func run(clientsPath, txPath, outPath string) error {
	clientsFile, err := os.Open(clientsPath)
	if err != nil {
		return fmt.Errorf("failed to open client roster: %w", err)
	}
	defer clientsFile.Close()

	txFile, err := os.Open(txPath)
	if err != nil {
		return fmt.Errorf("failed to open transaction ledger: %w", err)
	}
	defer txFile.Close()

	cfg := domain.FromEnv()
	signer, err := manifest.SignerFromConfig(cfg.Signing)
	if err != nil {
		return err
	}

	// Narrative enrichment is skipped offline; bundles carry no narratives.
	pipe := pipeline.New(nil, signer)

	res, err := pipe.RunCSV(context.Background(), clientsFile, txFile)
	if err != nil {
		return err
	}

	b, err := pipe.Package(res)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, b.Archive, 0o644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}

	summary := pipeline.Summarize(res)
	fmt.Printf("bundle written to %s\n", outPath)
	fmt.Printf("  clients:      %d\n", summary.Clients)
	fmt.Printf("  transactions: %d (%d rejected)\n", summary.Transactions, summary.Rejects)
	fmt.Printf("  cases:        %d\n", summary.Cases)
	fmt.Printf("  bands:        High=%d Medium=%d Low=%d\n",
		summary.Bands[domain.BandHigh], summary.Bands[domain.BandMedium], summary.Bands[domain.BandLow])
	if b.Manifest.Signing != nil {
		fmt.Printf("  manifest:     signed (%s, key %s)\n", b.Manifest.Signing.Algorithm, b.Manifest.Signing.KeyID)
	} else {
		fmt.Printf("  manifest:     unsigned\n")
	}
	return nil
}
