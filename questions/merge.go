package questions

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// MergeDir reads every .json file in a directory and merges their question
// arrays into one document, keeping the first occurrence of each question
// number. Files that fail to parse are skipped with a logged warning;
// processing the directory fails only when it cannot be listed at all.
func MergeDir(dir string) (*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("questions: read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	merged := &File{}
	seen := make(map[int]bool)

	for _, name := range names {
		path := filepath.Join(dir, name)
		f, err := Load(path)
		if err != nil {
			log.Printf("merge: skipping %s: %v", name, err)
			continue
		}
		for _, q := range f.Questions {
			if seen[q.Number] {
				continue
			}
			seen[q.Number] = true
			merged.Questions = append(merged.Questions, q)
		}
	}

	merged.SortByNumber()
	return merged, nil
}
