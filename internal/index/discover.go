// Package index is the indexing orchestrator (spec.md §4.H): recursive
// discovery, a parallel worker pool with one tree-sitter parser pool per
// worker, the per-file extract-and-persist pipeline, the post-scan resolver
// pass, the embedding queue, and fsnotify-driven incremental updates.
// Grounded on the teacher's internal/indexing package: pipeline.go's
// FileScanner (filepath.Walk + doublestar exclude/include patterns +
// symlink-cycle guard), master_index.go's pipeline-component wiring shape,
// and watcher.go's fsnotify + debounce loop — generalized from the
// teacher's in-memory core.* indexes to this module's store/lexical/
// vectorindex trio.
package index

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/juliecode/julie/internal/config"
)

// ignoreFileName is the project-local ignore file spec.md §4.H names
// (gitignore-style globs, additive to the built-in blacklist).
const ignoreFileName = ".julieignore"

// defaultDirBlacklist never descends into these directory names, regardless
// of .julieignore contents (teacher's exclusion_patterns_test.go fixtures:
// .git, node_modules, vendor, plus this module's own build/output dirs).
var defaultDirBlacklist = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	".vs": true, ".idea": true, ".vscode": true,
	"node_modules": true, "vendor": true, "target": true,
	"build": true, "dist": true, "out": true, "bin": true, "obj": true,
	".julie": true, ".next": true, "__pycache__": true, ".venv": true, "venv": true,
}

// Discovered is one file found by discoverer.Walk, paired with the canonical
// language tag languageForPath resolved for it.
type Discovered struct {
	Path     string
	Language string
	Size     int64
}

// discoverer walks a root directory applying the built-in blacklist, the
// optional .julieignore globs, and the extension table, collecting every
// file that has a registered extractor language.
type discoverer struct {
	root        string
	ignoreGlobs []string
	maxFileSize int64
}

// newDiscoverer loads root's .julieignore (if present) and the config's
// MaxFileSize ceiling (spec.md §4.H discovery phase).
func newDiscoverer(root string, cfg *config.Config) *discoverer {
	d := &discoverer{root: root, maxFileSize: cfg.Index.MaxFileSize}
	if d.maxFileSize <= 0 {
		d.maxFileSize = config.DefaultMaxFileSize
	}
	if data, err := os.ReadFile(filepath.Join(root, ignoreFileName)); err == nil {
		d.ignoreGlobs = parseIgnoreLines(string(data))
	}
	d.ignoreGlobs = append(d.ignoreGlobs, cfg.Index.ExtraIgnore...)
	return d
}

func parseIgnoreLines(content string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(content); i++ {
		if i == len(content) || content[i] == '\n' {
			line := content[start:i]
			start = i + 1
			line = trimLine(line)
			if line == "" || line[0] == '#' {
				continue
			}
			out = append(out, line)
		}
	}
	return out
}

func trimLine(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t' || s[j-1] == '\r') {
		j--
	}
	return s[i:j]
}

func (d *discoverer) ignored(relPath string) bool {
	for _, pat := range d.ignoreGlobs {
		if ok, err := doublestar.Match(pat, relPath); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pat, relPath+"/"); err == nil && ok {
			return true
		}
	}
	return false
}

// Walk discovers every indexable file under d.root, honoring the built-in
// directory blacklist, .julieignore globs, and the per-file size ceiling,
// and invokes fn for each one. Symlinked directories are never followed
// (the teacher's cycle guard is unnecessary here since we simply never
// descend into a symlink).
func (d *discoverer) Walk(ctx context.Context, fn func(Discovered) error) error {
	return filepath.Walk(d.root, func(path string, info os.FileInfo, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if walkErr != nil {
			return nil // a single unreadable entry doesn't abort the scan
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if path != d.root && (defaultDirBlacklist[info.Name()] || d.ignored(rel)) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if defaultDirBlacklist[filepath.Base(filepath.Dir(path))] {
			return nil
		}
		if d.ignored(rel) {
			return nil
		}
		if info.Size() > d.maxFileSize {
			return nil
		}

		lang, ok := languageForPath(path)
		if !ok {
			return nil
		}

		return fn(Discovered{Path: path, Language: lang, Size: info.Size()})
	})
}
