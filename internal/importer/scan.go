package importer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// statementExtensions are the file types Scan picks up.
var statementExtensions = map[string]bool{
	".csv":  true,
	".json": true,
	".ofx":  true,
	".qfx":  true,
}

// Scan walks a directory tree and returns the statement files it finds, in
// walk order. A path to a single file returns just that file.
func Scan(root string) ([]string, error) {
	root = expandHome(root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if statementExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return files, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
