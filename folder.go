package ipf

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AddFolderAuto discovers child directories of parent whose name ends in
// ".ipf" and ingests each as a pack named after the directory's basename
// (§4.6, add_folder(parent) mode). The files are added to a as in-memory
// entries, so they need no backing reader; every added file is marked modified.
func (a *Archive) AddFolderAuto(parent string) error {
	children, err := os.ReadDir(parent)
	if err != nil {
		return fmt.Errorf("ipf: reading %q: %w", parent, err)
	}

	for _, child := range children {
		if !child.IsDir() || !strings.HasSuffix(child.Name(), ".ipf") {
			continue
		}
		if err := a.AddFolder(child.Name(), filepath.Join(parent, child.Name())); err != nil {
			return err
		}
	}
	return nil
}

// AddFolder ingests every file under folder recursively into pack packName
// (§4.6, add_folder(pack_name, folder) mode). Each file's path is relative
// to folder, with backslashes normalized to forward slashes; content is the
// raw file bytes, and every resulting entry is marked modified.
func (a *Archive) AddFolder(packName, folder string) error {
	return filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return fmt.Errorf("ipf: computing relative path for %q: %w", path, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("ipf: reading %q: %w", path, err)
		}

		a.AddFile(packName, normalizePath(rel), data)
		return nil
	})
}
