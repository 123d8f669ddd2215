// Package paths holds the pure helpers that compute host paths and validate
// user supplied names. Host paths are always '/'-separated regardless of the
// OS the process runs on, so nothing here uses path/filepath.
package paths

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	storageRoot    = "/storage/emulated/0"
	appDirName     = "WebIDE+"
	projectsDir    = "Projects"
	ConfigFileName = "web.json"

	// DefaultPackageName is used when a sidecar has no package_name.
	DefaultPackageName = "com.example.app"
)

// InvalidNameChars are the characters rejected in project, file and folder names.
const InvalidNameChars = `<>:"/\|?*`

var (
	multiSlash      = regexp.MustCompile(`/+`)
	packageNameRe   = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9]`)
	leadingDigitsRe = regexp.MustCompile(`^[0-9]+`)
)

// ValidationError reports a name that fails a naming rule.
type ValidationError struct {
	Field string
	Value string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Rule)
}

func StorageRoot() string { return storageRoot }

func ProjectsRoot() string {
	return Join(StorageRoot(), appDirName, projectsDir)
}

func ProjectPath(name string) string {
	return Join(ProjectsRoot(), name)
}

func ProjectConfigPath(name string) string {
	return Join(ProjectPath(name), ConfigFileName)
}

// Join drops empty parts, joins the rest with '/' and collapses repeated slashes.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return multiSlash.ReplaceAllString(strings.Join(kept, "/"), "/")
}

// Parent returns everything before the last '/'. A path without a slash has
// an empty parent.
func Parent(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Base returns everything after the last '/'.
func Base(p string) string {
	return p[strings.LastIndex(p, "/")+1:]
}

// IsUnder reports whether p equals dir or lies below it.
func IsUnder(p, dir string) bool {
	if p == dir {
		return true
	}
	return strings.HasPrefix(p, strings.TrimSuffix(dir, "/")+"/")
}

// Rebase maps p from under oldDir to the same relative location under newDir.
// Paths not under oldDir are returned unchanged.
func Rebase(p, oldDir, newDir string) string {
	if !IsUnder(p, oldDir) {
		return p
	}
	return newDir + strings.TrimPrefix(p, oldDir)
}

func ValidName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return !strings.ContainsAny(name, InvalidNameChars)
}

// CheckName returns a *ValidationError when name is not a valid project,
// file or folder name.
func CheckName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: field, Value: name, Rule: "must not be empty"}
	}
	if strings.ContainsAny(name, InvalidNameChars) {
		return &ValidationError{Field: field, Value: name, Rule: "must not contain any of " + InvalidNameChars}
	}
	return nil
}

func ValidPackageName(s string) bool {
	return packageNameRe.MatchString(s)
}

// GeneratePackageName derives a reverse-domain identifier from a project name.
func GeneratePackageName(projectName string) string {
	clean := nonAlnumRe.ReplaceAllString(strings.ToLower(projectName), "")
	clean = leadingDigitsRe.ReplaceAllString(clean, "")
	if clean == "" {
		clean = "app"
	}
	return "com.example." + clean
}

// Ext returns the lower-cased extension without the dot, or "" when the name
// has none.
func Ext(name string) string {
	name = Base(name)
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

func NameWithoutExt(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name
	}
	return name[:i]
}
