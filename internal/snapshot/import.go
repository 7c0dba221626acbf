package snapshot

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"home-cli/internal/keys"
	"home-cli/internal/store"
)

// ImportError explains why a file was rejected. Storage is untouched when
// one is returned.
type ImportError struct {
	Reason string
	// Key is the offending key, if any.
	Key string
}

func (e *ImportError) Error() string { return e.Reason }

// minValueLen rejects blocks whose decoded value is too short to be a real
// setting (every persisted value is at least "[]" or "{}").
const minValueLen = 2

// Stage validates a parsed file and decodes every value. Nothing is written;
// the returned Document holds the full replacement set in file order.
func Stage(p Parsed) (Document, error) {
	doc := Document{ExportedAt: p.ExportedAt, Version: p.Version, Entries: []Entry{}}
	owned := 0
	for _, k := range p.Keys {
		if keys.InNamespace(k) {
			owned++
		}
	}
	if owned == 0 {
		return Document{}, &ImportError{Reason: "No " + keys.Namespace + "* keys found in file."}
	}
	for _, k := range p.Keys {
		if !keys.InNamespace(k) {
			return Document{}, &ImportError{Reason: fmt.Sprintf("Key %s is not a %s* setting", k, keys.Namespace), Key: k}
		}
	}
	for _, k := range p.Keys {
		enc := p.Encoded[k]
		if len(enc) < minValueLen {
			return Document{}, &ImportError{Reason: "Missing value for " + k, Key: k}
		}
		v, err := decodeValue(enc)
		if err != nil {
			return Document{}, &ImportError{Reason: "Could not decode " + k, Key: k}
		}
		if len(v) < minValueLen {
			return Document{}, &ImportError{Reason: "Missing value for " + k, Key: k}
		}
		doc.Entries = append(doc.Entries, Entry{Key: k, Value: v})
	}
	return doc, nil
}

func decodeValue(enc string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(enc, "="))
		if err != nil {
			return "", err
		}
	}
	if !utf8.Valid(b) {
		return "", errors.New("value is not valid UTF-8")
	}
	return string(b), nil
}

// Apply replaces every namespaced key with doc's entries in one atomic step,
// so keys missing from doc are removed and a failure leaves storage as it was.
func Apply(port store.PrefixReplacer, doc Document) error {
	if err := port.ReplacePrefix(keys.Namespace, doc.Map()); err != nil {
		return fmt.Errorf("apply import: %w", err)
	}
	return nil
}

// Import parses, stages and applies text.
func Import(port store.PrefixReplacer, text string) (Document, error) {
	doc, err := Stage(Parse(text))
	if err != nil {
		return Document{}, err
	}
	if err := Apply(port, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}
