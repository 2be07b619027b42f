package index

import "strings"

// extToLanguage maps a file extension (with leading dot, lowercased) to the
// canonical language tag internal/extract.Factory dispatches on. This table
// lives here rather than in internal/extract because extension-to-language
// is a discovery-time concern (spec.md §6's 32 canonical tags); the factory
// itself only ever sees the resolved tag (see internal/extract/factory.go's
// package doc).
var extToLanguage = map[string]string{
	".go": "go",

	".py": "python", ".pyw": "python",

	".js": "javascript", ".jsx": "javascript", ".mjs": "javascript", ".cjs": "javascript",
	".ts": "typescript", ".tsx": "typescript",

	".java": "java",
	".c": "c", ".h": "c",
	".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".hpp": "cpp", ".hh": "cpp",
	".rs": "rust",
	".cs": "csharp",
	".php": "php", ".phtml": "php",
	".zig": "zig",

	".sh": "bash", ".bash": "bash", ".zsh": "bash",
	".html": "html", ".htm": "html",
	".css": "css",

	".json": "json",
	".dart": "dart",
	".gd": "gdscript",
	".kt": "kotlin", ".kts": "kotlin",
	".lua": "lua",
	".md": "markdown", ".markdown": "markdown",
	".ps1": "powershell", ".psm1": "powershell",
	".qml": "qml",
	".r": "r", ".R": "r",
	".razor": "razor", ".cshtml": "razor",
	".rb": "ruby",
	".sql": "sql",
	".swift": "swift",
	".toml": "toml",
	".vue": "vue",
	".xml": "xml",
	".yaml": "yaml", ".yml": "yaml",
}

// languageForPath returns the canonical language tag for a path, and false
// if the extension isn't registered (the orchestrator skips such files).
func languageForPath(path string) (string, bool) {
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 {
		return "", false
	}
	lang, ok := extToLanguage[strings.ToLower(path[dot:])]
	return lang, ok
}
