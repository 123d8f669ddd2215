package main

import (
	"os"
	"strings"

	"webide-cli/internal/cli"
)

const deepLinkPrefix = "project="

func deepLinkProject(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, deepLinkPrefix) {
		return "", false
	}
	name := strings.TrimSpace(strings.TrimPrefix(s, deepLinkPrefix))
	return name, name != ""
}

func rewriteDeepLinkArgs(argv []string) []string {
	// Convenience: `webide project=Demo` works like `webide edit Demo`, the
	// same shape as the page's ?project= launch parameter.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv
	// before parsing. Persistent flags may come first, so find the first
	// positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--storage":   true,
		"--bridge":    true,
		"--format":    true,
		"--log-level": true,
	}

	rewrite := func(i int) []string {
		name, _ := deepLinkProject(argv[i])
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "edit", name)
		out = append(out, argv[i+1:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				if _, ok := deepLinkProject(argv[i+1]); ok {
					return rewrite(i + 1)
				}
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		// First positional token.
		if _, ok := deepLinkProject(a); ok {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDeepLinkArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
