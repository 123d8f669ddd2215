package filetree

import "webide-cli/internal/paths"

var fileIcons = map[string]string{
	"html":   "📄",
	"css":    "🎨",
	"js":     "📜",
	"json":   "📋",
	"md":     "📝",
	"txt":    "📃",
	"png":    "🖼",
	"jpg":    "🖼",
	"jpeg":   "🖼",
	"gif":    "🖼",
	"svg":    "🖼",
	"xml":    "📄",
	"java":   "☕",
	"kt":     "🔷",
	"py":     "🐍",
	"c":      "🔧",
	"cpp":    "🔧",
	"h":      "🔧",
	"gradle": "🐘",
}

// Icon returns the glyph shown before a tree entry.
func Icon(name string, isDir bool) string {
	if isDir {
		return "📁"
	}
	if icon, ok := fileIcons[paths.Ext(name)]; ok {
		return icon
	}
	return "📄"
}
