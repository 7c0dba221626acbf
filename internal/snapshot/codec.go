// Package snapshot reads and writes the plain-text settings export: every
// persisted key under keys.Namespace, base64-encoded one block per key.
//
//	# buk1t-home settings export
//	# exportedAt: 2025-02-01T00:00:00.000Z
//	# version: v5.0.0
//	[home.links.v1]
//	W10=
//
// The header markers and block layout are shared with files exported by the
// browser start page, so both can import each other's files.
package snapshot

import (
	"encoding/base64"
	"sort"
	"strings"
	"time"

	"home-cli/internal/keys"
	"home-cli/internal/store"
)

const (
	headerTag   = "# buk1t-home settings export"
	emptyMarker = "# (no keys found)"

	// ExportedAtLayout is ISO-8601 in UTC with millisecond precision.
	ExportedAtLayout = "2006-01-02T15:04:05.000Z"
)

// Entry is one persisted key and its raw (decoded) value.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Document is a snapshot ready to encode, or the result of a full decode.
type Document struct {
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
	Entries    []Entry   `json:"entries"`
}

// Map returns the entries as key -> value.
func (d Document) Map() map[string]string {
	out := make(map[string]string, len(d.Entries))
	for _, e := range d.Entries {
		out[e.Key] = e.Value
	}
	return out
}

// ExportKeys lists the keys an export covers: everything under the namespace
// plus the theme key, deduplicated and sorted.
func ExportKeys(port store.Port) []string {
	seen := map[string]bool{keys.Theme.String(): true}
	for _, k := range port.Keys(keys.Namespace) {
		seen[k] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Collect reads every export key that currently has a value.
func Collect(port store.Port, exportedAt time.Time, version string) Document {
	doc := Document{ExportedAt: exportedAt.UTC(), Version: version, Entries: []Entry{}}
	for _, k := range ExportKeys(port) {
		v, ok := port.Get(k)
		if !ok {
			continue
		}
		doc.Entries = append(doc.Entries, Entry{Key: k, Value: v})
	}
	return doc
}

// Encode renders doc in export format. Entries are written in the order given.
func Encode(doc Document) string {
	version := doc.Version
	if version == "" {
		version = "dev"
	}
	var b strings.Builder
	b.WriteString(headerTag + "\n")
	b.WriteString("# exportedAt: " + doc.ExportedAt.UTC().Format(ExportedAtLayout) + "\n")
	b.WriteString("# version: " + version + "\n")
	if len(doc.Entries) == 0 {
		b.WriteString(emptyMarker + "\n")
		return b.String()
	}
	for _, e := range doc.Entries {
		b.WriteString("[" + e.Key + "]\n")
		b.WriteString(base64.StdEncoding.EncodeToString([]byte(e.Value)))
		b.WriteString("\n\n")
	}
	return b.String()
}

// Export collects and encodes in one step.
func Export(port store.Port, exportedAt time.Time, version string) (string, Document) {
	doc := Collect(port, exportedAt, version)
	return Encode(doc), doc
}

// Filename is the suggested download name: home-settings-2025-02-01T09-30-00.txt.
func Filename(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05")
	return "home-settings-" + strings.ReplaceAll(stamp, ":", "-") + ".txt"
}
