package docsource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wmcfinance/echeque-processor/internal/pipeline"
)

// FromDir reads every PDF in dir (non-recursive) into memory, sorted by
// filename so batches are deterministic.
func FromDir(dir string) ([]pipeline.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	return FromFiles(paths)
}

// FromFiles reads the given PDF paths into pipeline documents. Filenames keep
// only the base name, matching how uploads arrive without directory context.
func FromFiles(paths []string) ([]pipeline.Document, error) {
	docs := make([]pipeline.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", p, err)
		}
		docs = append(docs, pipeline.Document{
			Filename: filepath.Base(p),
			Content:  data,
		})
	}
	return docs, nil
}
