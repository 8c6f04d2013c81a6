// Package filesystem loads documents from local directories and watches
// them for changes.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/logger"
)

// DefaultExtensions lists the file extensions indexed when none are
// configured.
var DefaultExtensions = []string{".md", ".markdown", ".txt", ".rst"}

// Loader reads documents from the local filesystem.
type Loader struct {
	extensions map[string]bool
}

// NewLoader creates a loader accepting the given extensions (lowercase,
// dot-prefixed). Empty means DefaultExtensions.
func NewLoader(extensions []string) *Loader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	accepted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		accepted[ext] = true
	}

	return &Loader{extensions: accepted}
}

// Accepts reports whether path has an accepted extension.
func (l *Loader) Accepts(path string) bool {
	return l.extensions[strings.ToLower(filepath.Ext(path))]
}

// Load reads every matching document under the given paths. Directories
// are walked recursively; hidden directories are skipped. A path naming a
// file directly is loaded regardless of its extension.
func (l *Loader) Load(ctx context.Context, paths []string) ([]domain.RawDocument, error) {
	var docs []domain.RawDocument

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}

		if !info.IsDir() {
			doc, err := l.loadFile(path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
			continue
		}

		err = filepath.WalkDir(path, func(entryPath string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			if entry.IsDir() {
				// Skip hidden directories (.git, .cache, ...).
				if name := entry.Name(); strings.HasPrefix(name, ".") && entryPath != path {
					return filepath.SkipDir
				}
				return nil
			}

			if !l.Accepts(entryPath) {
				return nil
			}

			doc, err := l.loadFile(entryPath)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}

	logger.Debug("Loaded %d documents from %d paths", len(docs), len(paths))
	return docs, nil
}

// loadFile reads one file into a RawDocument keyed by its cleaned path.
func (l *Loader) loadFile(path string) (domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return domain.NewRawDocument(filepath.Clean(path), string(content)), nil
}
