package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// recordExt is the file extension that marks a candidate record.
const recordExt = ".json"

// DiscoverRecords walks the directory tree rooted at root and returns the
// paths of all record files, at any depth. Non-record files are ignored.
func DiscoverRecords(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), recordExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list record files under %s: %w", root, err)
	}
	return paths, nil
}

// FileID derives the identifier for a record file: its base name without
// the record extension. The identifier keys the output table rows.
func FileID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), recordExt)
}
