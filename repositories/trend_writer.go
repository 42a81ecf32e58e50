package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"trend-collector/domain"
)

// TrendWriter appends ranked trends to an NDJSON log, one TrendItem per line.
type TrendWriter struct {
	FilePath string
}

func (w *TrendWriter) Append(result domain.CollectionResult) error {
	if dir := filepath.Dir(w.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(w.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open trend log: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, t := range result.Trends {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("failed to write trend %q: %w", t.Keyword, err)
		}
	}
	return nil
}
