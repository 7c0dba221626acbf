package main

import (
	"os"
	"strings"

	"home-cli/internal/cli"
	"home-cli/internal/keys"
)

func isSettingKey(s string) bool {
	s = strings.TrimSpace(s)
	return keys.InNamespace(s) && len(s) > len(keys.Namespace)
}

func rewriteDirectKeyLookupArgs(argv []string) []string {
	// Convenience: `home home.links.v1` works like `home settings get home.links.v1`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (e.g. `home --dir ... home.links.v1`), so look for the
	// first positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":    true,
		"--format": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "settings", "get")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// The subcommand has to precede "--" or cobra reads it as a plain argument.
			if i+1 < len(argv) && isSettingKey(argv[i+1]) {
				return rewrite(i)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if isSettingKey(a) {
			return rewrite(i)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectKeyLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
