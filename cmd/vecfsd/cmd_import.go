package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vecfs-dev/vecfs/internal/embedder"
	"github.com/vecfs-dev/vecfs/internal/store"
)

// importRecord is the on-disk shape `vecfsd import` reads: the same
// fields a memorize call takes, plus an optional score for carrying
// reinforcement history across a migration.
type importRecord struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score,omitempty"`
}

func importCmd() *cobra.Command {
	var (
		filePath string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-embed and store memories from a JSON or JSONL file",
		Long: `Import memories from a JSON array file or JSONL (JSON Lines) file.

Each record has an id, text, and optional metadata and score. Texts are
embedded concurrently before being written to the store one at a time.

Use - as the file path to read from stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			var r io.Reader
			if filePath == "" || filePath == "-" {
				r = os.Stdin
			} else {
				f, err := os.Open(filePath)
				if err != nil {
					return fmt.Errorf("import: opening file: %w", err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			records, err := decodeImportRecords(r, format)
			if err != nil {
				return err
			}

			emb := newEmbedder(logger)
			if emb == nil {
				return fmt.Errorf("import: no embedder configured")
			}

			texts := make([]string, len(records))
			for i, rec := range records {
				texts[i] = rec.Text
			}

			vecs, err := embedder.EmbedBatch(ctx, emb, texts, embedder.ModeDocument)
			if err != nil {
				return fmt.Errorf("import: embedding: %w", err)
			}

			st := newStore()
			defer func() { _ = st.Close() }()

			var imported int
			for i, rec := range records {
				metadata := make(map[string]any, len(rec.Metadata)+1)
				for k, v := range rec.Metadata {
					metadata[k] = v
				}
				metadata["text"] = rec.Text

				if _, err := st.StoreEntry(ctx, store.Entry{
					ID:       rec.ID,
					Vector:   vecs[i],
					Metadata: metadata,
					Score:    rec.Score,
				}); err != nil {
					return fmt.Errorf("import: storing %q: %w", rec.ID, err)
				}
				imported++
			}

			fmt.Printf("Imported %d memories\n", imported)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "-", "path to input file (- for stdin)")
	cmd.Flags().StringVar(&format, "format", "json", "input format: json or jsonl")
	return cmd
}

func decodeImportRecords(r io.Reader, format string) ([]importRecord, error) {
	switch strings.ToLower(format) {
	case "json":
		var records []importRecord
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("import: decoding JSON: %w", err)
		}
		return records, nil
	case "jsonl":
		var records []importRecord
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var rec importRecord
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				return nil, fmt.Errorf("import: decoding JSONL line: %w", err)
			}
			records = append(records, rec)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("import: reading JSONL: %w", err)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("import: unsupported format %q (use json or jsonl)", format)
	}
}
