package scanner

import (
	"path/filepath"
	"strings"
)

// languageMap maps file extensions to the languages the analyzer supports.
var languageMap = map[string]string{
	".py": "python",
	".go": "go",
}

// Language detects the language of a file from its extension. The second
// return value is false for unsupported files.
func Language(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := languageMap[ext]
	return lang, ok
}
