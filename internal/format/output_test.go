package format

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type payload struct {
	ID       string   `json:"id"`
	Checked  bool     `json:"checked"`
	Created  int64    `json:"created"`
	Pending  *int64   `json:"pendingArchiveAt"`
	Ratio    float64  `json:"ratio"`
	Tags     []string `json:"tags"`
	Archived []string `json:"archived"`
}

func samplePayload() payload {
	return payload{ID: "a", Checked: true, Created: 1738368000123, Ratio: 0.5, Tags: []string{"x", "y z"}, Archived: []string{}}
}

func TestWrite_JSON(t *testing.T) {
	var b bytes.Buffer
	if err := Write(&b, samplePayload(), "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{"id":"a","checked":true,"created":1738368000123,"pendingArchiveAt":null,"ratio":0.5,"tags":["x","y z"],"archived":[]}` + "\n"
	if b.String() != want {
		t.Fatalf("got %q\nwant %q", b.String(), want)
	}
}

func TestWrite_EDN(t *testing.T) {
	var b bytes.Buffer
	if err := Write(&b, samplePayload(), "edn", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{:archived [] :checked true :created 1738368000123 :id "a" :pendingArchiveAt nil :ratio 0.5 :tags ["x" "y z"]}` + "\n"
	if b.String() != want {
		t.Fatalf("got %q\nwant %q", b.String(), want)
	}
}

func TestWrite_EDNPretty(t *testing.T) {
	var b bytes.Buffer
	if err := WriteEDN(&b, map[string]any{"data": []int{1, 2}, "meta": map[string]any{}}, true); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	want := "{\n  :data [\n    1\n    2\n  ]\n  :meta {}\n}\n"
	if b.String() != want {
		t.Fatalf("got %q\nwant %q", b.String(), want)
	}
}

func TestWrite_YAMLUsesJSONNames(t *testing.T) {
	var b bytes.Buffer
	if err := Write(&b, samplePayload(), "yaml", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var back map[string]any
	if err := yaml.Unmarshal(b.Bytes(), &back); err != nil {
		t.Fatalf("yaml.Unmarshal: %v\n%s", err, b.String())
	}
	if back["id"] != "a" || back["checked"] != true || back["pendingArchiveAt"] != nil {
		t.Fatalf("unexpected yaml: %s", b.String())
	}
	if !strings.Contains(b.String(), "created: 1738368000123\n") {
		t.Fatalf("created missing: %s", b.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, 1, "xml", false)
	if err == nil || !strings.Contains(err.Error(), "unknown format: xml") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
	if Valid("xml") || !Valid("") || !Valid("YAML") {
		t.Fatalf("Valid disagrees with Write")
	}
}

func TestKeyword(t *testing.T) {
	for in, want := range map[string]string{
		"archivedAt": ":archivedAt",
		" two words": ":two-words",
		"a:b":        ":a-b",
		"":           ":_",
	} {
		if got := Keyword(in); got != want {
			t.Fatalf("Keyword(%q) = %q, want %q", in, got, want)
		}
	}
}
