// Package keys is the registry of persisted setting names.
//
// Every feature that persists state owns one versioned Key instead of a bare
// string, so a format change means registering a new version rather than
// silently reusing an old name.
package keys

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Namespace prefixes every key this application owns. Only keys under it are
// exported and imported.
const Namespace = "home."

type Key struct {
	Name    string
	Version int
}

func (k Key) String() string {
	return fmt.Sprintf("%s%s.v%d", Namespace, k.Name, k.Version)
}

var (
	State   = Key{Name: "state", Version: 1}
	Links   = Key{Name: "links", Version: 1}
	Weather = Key{Name: "weather", Version: 1}
	Search  = Key{Name: "search", Version: 1}
	Theme   = Key{Name: "theme", Version: 1}
)

// Registered lists the keys known to this build, sorted by their string form.
func Registered() []Key {
	out := []Key{State, Links, Weather, Search, Theme}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Parse splits "home.<name>.v<n>" into a Key. It reports false for names
// outside the namespace or without a version suffix.
func Parse(s string) (Key, bool) {
	if !strings.HasPrefix(s, Namespace) {
		return Key{}, false
	}
	rest := strings.TrimPrefix(s, Namespace)
	i := strings.LastIndex(rest, ".v")
	if i <= 0 {
		return Key{}, false
	}
	n, err := strconv.Atoi(rest[i+2:])
	if err != nil || n <= 0 || strconv.Itoa(n) != rest[i+2:] {
		return Key{}, false
	}
	return Key{Name: rest[:i], Version: n}, true
}

// Known reports whether s names a registered key.
func Known(s string) bool {
	for _, k := range Registered() {
		if k.String() == s {
			return true
		}
	}
	return false
}

// InNamespace reports whether s carries the Namespace prefix.
func InNamespace(s string) bool {
	return strings.HasPrefix(s, Namespace)
}
