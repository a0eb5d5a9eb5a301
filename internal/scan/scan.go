// Package scan lists the candidate files waiting in the working directory.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Candidate is a file found in the working directory.
type Candidate struct {
	Name string
	Path string
	Size int64
}

// ListCandidates returns the regular files directly inside dir whose
// extension matches one of exts (case-insensitive), sorted by name.
// Subdirectories, including the role directories, are not descended into.
func ListCandidates(dir string, exts []string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		if !allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := regularInfo(path, entry)
		if err != nil || info == nil {
			// Vanished between listing and stat, or not a regular file.
			continue
		}
		candidates = append(candidates, Candidate{Name: entry.Name(), Path: path, Size: info.Size()})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })
	return candidates, nil
}

func regularInfo(path string, entry fs.DirEntry) (fs.FileInfo, error) {
	var (
		info fs.FileInfo
		err  error
	)
	if entry.Type()&fs.ModeSymlink != 0 {
		info, err = os.Stat(path)
	} else {
		info, err = entry.Info()
	}
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}
	return info, nil
}
