// Package config is Julie's project configuration: a small struct covering
// indexing limits and worker parallelism, loaded from an optional
// `.julie.toml` (or legacy `.julieconfig`) file and merged over a
// user-global `~/.julie.toml`, the same two-tier base-then-project shape
// the teacher's internal/config.Load/LoadWithRoot use for `.lci.kdl` —
// retargeted at TOML (SPEC_FULL §6) via github.com/pelletier/go-toml/v2,
// the teacher's own dependency for structured config, rather than the
// teacher's KDL library (no KDL precedent survives in this module's scope;
// TOML is the language-appropriate, already-in-require-block choice).
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Default indexing limits (spec.md §4.H discovery phase).
const (
	DefaultMaxFileSize    int64 = 5 * 1024 * 1024
	DefaultMaxTotalSizeMB int64 = 2048
	DefaultMaxFileCount         = 200000
)

// Config is the subset of project settings the indexing orchestrator and
// CLI actually consult. Unlike the teacher's config (which also carries
// search-ranking weights, semantic-scoring weights, and feature flags for
// its own in-memory search engine), Julie's ranking and matching knobs
// live as explicit operation parameters in internal/query and
// internal/lexical rather than global config, so this struct stays small.
type Config struct {
	Project     Project     `toml:"project"`
	Index       Index       `toml:"index"`
	Performance Performance `toml:"performance"`
}

type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

type Index struct {
	MaxFileSize      int64    `toml:"max_file_size"`
	MaxTotalSizeMB   int64    `toml:"max_total_size_mb"`
	MaxFileCount     int      `toml:"max_file_count"`
	FollowSymlinks   bool     `toml:"follow_symlinks"`
	RespectGitignore bool     `toml:"respect_gitignore"`
	ExtraIgnore      []string `toml:"extra_ignore"` // additive globs, same shape as .julieignore lines
}

type Performance struct {
	ParallelFileWorkers int `toml:"parallel_file_workers"` // 0 = auto-detect (NumCPU)
	IndexingTimeoutSec  int `toml:"indexing_timeout_sec"`
}

// configFileNames are tried in order in both the home directory and the
// project root — `.julie.toml` is canonical, `.julieconfig` a legacy alias
// (spec.md §6 names both).
var configFileNames = []string{".julie.toml", ".julieconfig"}

// Load loads configuration for root, merging a user-global config (from the
// user's home directory, if present) under a project-local one (spec.md
// §6's workspace layout; merge precedence follows the teacher's
// LoadWithRoot: project overrides global, falling back to defaults when
// neither file exists).
func Load(root string) (*Config, error) {
	base, err := loadFirst(homeDirOrEmpty())
	if err != nil {
		return nil, err
	}
	project, err := loadFirst(root)
	if err != nil {
		return nil, err
	}

	cfg := Default(root)
	if base != nil {
		cfg = merge(cfg, base)
	}
	if project != nil {
		cfg = merge(cfg, project)
	}
	if cfg.Project.Root == "" {
		cfg.Project.Root = root
	}
	absRoot, err := filepath.Abs(cfg.Project.Root)
	if err == nil {
		cfg.Project.Root = absRoot
	}
	return cfg, nil
}

func homeDirOrEmpty() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return dir
}

// loadFirst tries each of configFileNames under dir in order, returning the
// first one found parsed, or nil if dir has none.
func loadFirst(dir string) (*Config, error) {
	if dir == "" {
		return nil, nil
	}
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg, parseErr := parseTOML(data)
		if parseErr != nil {
			return nil, parseErr
		}
		return cfg, nil
	}
	return nil, nil
}

// merge overlays override's non-zero fields onto base, field by field — the
// same override-wins/fall-back-to-base semantics as the teacher's
// mergeConfigs. ExtraIgnore is the one slice field, and follows the
// teacher's Include/Exclude precedent of concatenating rather than
// replacing.
func merge(base *Config, override *Config) *Config {
	out := *base
	if override.Project.Root != "" {
		out.Project.Root = override.Project.Root
	}
	if override.Project.Name != "" {
		out.Project.Name = override.Project.Name
	}
	if override.Index.MaxFileSize != 0 {
		out.Index.MaxFileSize = override.Index.MaxFileSize
	}
	if override.Index.MaxTotalSizeMB != 0 {
		out.Index.MaxTotalSizeMB = override.Index.MaxTotalSizeMB
	}
	if override.Index.MaxFileCount != 0 {
		out.Index.MaxFileCount = override.Index.MaxFileCount
	}
	out.Index.FollowSymlinks = override.Index.FollowSymlinks || base.Index.FollowSymlinks
	out.Index.RespectGitignore = override.Index.RespectGitignore || base.Index.RespectGitignore
	out.Index.ExtraIgnore = append(append([]string{}, base.Index.ExtraIgnore...), override.Index.ExtraIgnore...)
	if override.Performance.ParallelFileWorkers != 0 {
		out.Performance.ParallelFileWorkers = override.Performance.ParallelFileWorkers
	}
	if override.Performance.IndexingTimeoutSec != 0 {
		out.Performance.IndexingTimeoutSec = override.Performance.IndexingTimeoutSec
	}
	return &out
}

// Default returns the built-in configuration for a project rooted at root.
func Default(root string) *Config {
	return &Config{
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:      DefaultMaxFileSize,
			MaxTotalSizeMB:   DefaultMaxTotalSizeMB,
			MaxFileCount:     DefaultMaxFileCount,
			FollowSymlinks:   false,
			RespectGitignore: true,
		},
		Performance: Performance{
			ParallelFileWorkers: runtime.NumCPU(),
			IndexingTimeoutSec:  120,
		},
	}
}
