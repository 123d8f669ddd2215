package editor

import "webide-cli/internal/paths"

const ModeText = "text"

var extModes = map[string]string{
	"js":     "javascript",
	"json":   "json",
	"html":   "html",
	"css":    "css",
	"xml":    "xml",
	"md":     "markdown",
	"java":   "java",
	"kt":     "kotlin",
	"py":     "python",
	"c":      "c_cpp",
	"cpp":    "c_cpp",
	"h":      "c_cpp",
	"gradle": "groovy",
	"txt":    ModeText,
}

var modeNames = map[string]string{
	"javascript": "JavaScript",
	"json":       "JSON",
	"html":       "HTML",
	"css":        "CSS",
	"xml":        "XML",
	"markdown":   "Markdown",
	"java":       "Java",
	"kotlin":     "Kotlin",
	"python":     "Python",
	"c_cpp":      "C/C++",
	"groovy":     "Groovy",
	ModeText:     "Plain Text",
}

// ModeFor derives the syntax mode from the file extension.
func ModeFor(path string) string {
	if m, ok := extModes[paths.Ext(paths.Base(path))]; ok {
		return m
	}
	return ModeText
}

// LanguageName is the status bar label for a mode.
func LanguageName(mode string) string {
	if n, ok := modeNames[mode]; ok {
		return n
	}
	return mode
}
