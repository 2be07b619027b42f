package query

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/juliecode/julie/internal/model"
)

// RenameParams bundles rename_symbol's inputs (spec.md §4.I: "old_name,
// new_name, dry_run").
type RenameParams struct {
	OldName string
	NewName string
	DryRun  bool
}

// LineDiff is one changed line within a FileRenamePlan.
type LineDiff struct {
	Line   int    `json:"line"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// FileRenamePlan is one file's portion of a rename: the byte-range symbol/
// identifier occurrences renamed plus any import-statement rewrites,
// collapsed to a line-level diff (spec.md §4.I: "return a per-file diff
// plan").
type FileRenamePlan struct {
	FilePath        string     `json:"file_path"`
	SymbolCount     int        `json:"symbol_count"`
	IdentifierCount int        `json:"identifier_count"`
	ImportRewrites  int        `json:"import_rewrites"`
	Diff            []LineDiff `json:"diff"`
}

// RenamePlan is rename_symbol's full structured result: one FileRenamePlan
// per affected file, plus whether the plan was committed to disk.
type RenamePlan struct {
	OldName   string            `json:"old_name"`
	NewName   string            `json:"new_name"`
	DryRun    bool              `json:"dry_run"`
	Committed bool              `json:"committed"`
	Files     []FileRenamePlan  `json:"files"`
}

// importRewriteTemplates are the import-statement patterns spec.md §4.I
// names (five regexes: the brace-list form is split by whether the name is
// followed by `}` or `,`), each with the {name} occurrence captured separately from its
// surrounding text so only that occurrence is substituted — module paths
// and surrounding names are preserved byte-for-byte.
var importRewriteTemplates = []string{
	`(\bimport\s+\{\s*)%s(\s*\})`,
	`(\bimport\s+\{\s*)%s(\s*,)`,
	`(,\s*)%s(\s*\})`,
	`(\bfrom\s+\S+\s+import\s+)%s(\b)`,
	`(\buse\s+.*?::)%s(\b)`,
}

func compileImportRewrites(name string) []*regexp.Regexp {
	escaped := regexp.QuoteMeta(name)
	out := make([]*regexp.Regexp, len(importRewriteTemplates))
	for i, tmpl := range importRewriteTemplates {
		out[i] = regexp.MustCompile(fmt.Sprintf(tmpl, escaped))
	}
	return out
}

// RenameSymbol collects every symbol and identifier named OldName, groups
// them by file, rewrites each occurrence plus any import-statement using
// it, and returns a per-file diff. Nothing touches disk unless DryRun is
// false (spec.md §4.I rename_symbol).
func (svc *Service) RenameSymbol(ctx context.Context, p RenameParams) (RenamePlan, error) {
	plan := RenamePlan{OldName: p.OldName, NewName: p.NewName, DryRun: p.DryRun}

	syms, err := svc.store.SymbolsByName(ctx, p.OldName)
	if err != nil {
		return plan, err
	}
	idents, err := svc.store.GetIdentifiersByNames(ctx, []string{p.OldName})
	if err != nil {
		return plan, err
	}

	byFile := make(map[string][]occurrence)
	symbolCounts := make(map[string]int)
	identCounts := make(map[string]int)

	for _, s := range syms {
		byFile[s.FilePath] = append(byFile[s.FilePath], occurrence{s.StartByte, s.EndByte})
		symbolCounts[s.FilePath]++
	}
	for _, id := range idents {
		if id.Kind == model.IdentifierImport {
			continue // left to the import-statement regex pass below
		}
		byFile[id.FilePath] = append(byFile[id.FilePath], occurrence{id.StartByte, id.EndByte})
		identCounts[id.FilePath]++
	}

	importRegexes := compileImportRewrites(p.OldName)

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return plan, err
		}
		occs := byFile[path]
		sort.Slice(occs, func(i, j int) bool { return occs[i].start < occs[j].start })

		renamed := renameByteRanges(string(data), occs, p.OldName, p.NewName)

		importHits := 0
		for _, re := range importRegexes {
			renamed = re.ReplaceAllStringFunc(renamed, func(m string) string {
				importHits++
				return re.ReplaceAllString(m, "${1}"+p.NewName+"${2}")
			})
		}

		diff := lineDiff(string(data), renamed)
		plan.Files = append(plan.Files, FileRenamePlan{
			FilePath: path, SymbolCount: symbolCounts[path], IdentifierCount: identCounts[path],
			ImportRewrites: importHits, Diff: diff,
		})

		if !p.DryRun {
			if err := os.WriteFile(path, []byte(renamed), 0644); err != nil {
				return plan, err
			}
		}
	}

	plan.Committed = !p.DryRun && len(plan.Files) > 0
	return plan, nil
}

// occurrence is one byte-range where oldName appears as a symbol
// definition or identifier usage within a file.
type occurrence struct {
	start, end int
}

// renameByteRanges replaces each occurrence span with newName, applied
// from the end of the string backward so earlier offsets stay valid. A
// span whose current text no longer matches oldName (stale store data) is
// skipped rather than corrupting the file.
func renameByteRanges(content string, occs []occurrence, oldName, newName string) string {
	b := []byte(content)
	for i := len(occs) - 1; i >= 0; i-- {
		o := occs[i]
		if o.start < 0 || o.end > len(b) || o.start > o.end {
			continue
		}
		if string(b[o.start:o.end]) != oldName {
			continue
		}
		b = append(b[:o.start], append([]byte(newName), b[o.end:]...)...)
	}
	return string(b)
}

// lineDiff returns one LineDiff per line index where before != after.
// Byte-range renames never change line count (no newlines are introduced
// or removed), so index-aligned comparison is safe.
func lineDiff(before, after string) []LineDiff {
	beforeLines := strings.Split(before, "\n")
	afterLines := strings.Split(after, "\n")
	n := len(beforeLines)
	if len(afterLines) < n {
		n = len(afterLines)
	}
	var diffs []LineDiff
	for i := 0; i < n; i++ {
		if beforeLines[i] != afterLines[i] {
			diffs = append(diffs, LineDiff{Line: i + 1, Before: beforeLines[i], After: afterLines[i]})
		}
	}
	return diffs
}
