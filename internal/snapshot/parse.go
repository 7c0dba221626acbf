package snapshot

import (
	"regexp"
	"strings"
	"time"
)

var lineSplit = regexp.MustCompile(`\r?\n`)

// Parsed is the raw result of reading an export file. Values are still
// base64-encoded; see Stage.
type Parsed struct {
	ExportedAt time.Time
	Version    string
	// Keys is the order in which blocks first appeared.
	Keys    []string
	Encoded map[string]string
}

// Parse reads the line grammar of an export file. It never fails: unknown
// lines are skipped, and a key block keeps only its first value line.
func Parse(text string) Parsed {
	p := Parsed{Encoded: map[string]string{}}
	pending := ""
	havePending := false

	for _, raw := range lineSplit.Split(text, -1) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			p.readMeta(line)
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") && len(line) >= 2 {
			pending = strings.TrimSpace(line[1 : len(line)-1])
			havePending = pending != ""
			continue
		}
		if !havePending {
			continue
		}
		if _, dup := p.Encoded[pending]; !dup {
			p.Keys = append(p.Keys, pending)
		}
		p.Encoded[pending] = line
		havePending = false
	}
	return p
}

func (p *Parsed) readMeta(line string) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	name, value, ok := strings.Cut(body, ":")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	switch strings.TrimSpace(name) {
	case "exportedAt":
		if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
			p.ExportedAt = t.UTC()
		}
	case "version":
		p.Version = value
	}
}
