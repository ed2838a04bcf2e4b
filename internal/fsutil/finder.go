// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns their full paths in sorted order.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Instance is one problem file discovered under a corpus root.
type Instance struct {
	// Path is the file path as discovered (root joined with the relative path).
	Path string
	// RelDir is the directory of the file relative to the corpus root, "." for top-level files.
	RelDir string
	// Base is the file name without its extension.
	Base string
}

// Name returns the instance name used as the summary table key: the relative
// path without extension, slash-separated. Top-level files get their base name.
func (i Instance) Name() string {
	if i.RelDir == "." || i.RelDir == "" {
		return i.Base
	}
	return filepath.ToSlash(filepath.Join(i.RelDir, i.Base))
}

// WalkCorpus enumerates all instances with the given extension under root in a
// stable, sorted order. The root must exist and be a readable directory.
func WalkCorpus(root, extension string) ([]Instance, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("corpus root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	paths, err := FindFilesByExtension(root, extension)
	if err != nil {
		return nil, fmt.Errorf("walking corpus %s: %w", root, err)
	}

	instances := make([]Instance, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, filepath.Dir(p))
		if err != nil {
			return nil, fmt.Errorf("relative path of %s: %w", p, err)
		}
		instances = append(instances, Instance{
			Path:   p,
			RelDir: rel,
			Base:   strings.TrimSuffix(filepath.Base(p), extension),
		})
	}
	return instances, nil
}
