package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTUIState_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	f := TUIStateFile{Dir: t.TempDir()}
	if got := f.Load(); got != (TUIState{Version: 1}) {
		t.Fatalf("missing file: got %#v", got)
	}

	want := TUIState{Version: 1, View: "archive", FocusTaskID: "task-1"}
	if err := f.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := f.Load(); got != want {
		t.Fatalf("roundtrip mismatch:\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestTUIState_UnchangedSaveSkipsWrite(t *testing.T) {
	t.Parallel()

	f := TUIStateFile{Dir: t.TempDir()}
	st := TUIState{View: "tasks", FocusTaskID: "a"}
	if err := f.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	old := time.Unix(1_000_000, 0)
	if err := os.Chtimes(f.path(), old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if err := f.Save(st); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	fi, err := os.Stat(f.path())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !fi.ModTime().Equal(old) {
		t.Fatalf("expected unchanged state not to be rewritten")
	}
}

func TestTUIState_BadFilesTreatedAsMissing(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"corrupt": "{not json",
		"newer":   `{"version": 9, "view": "archive"}`,
	} {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, tuiStateFileName), []byte(body), 0o644); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		if got := (TUIStateFile{Dir: dir}).Load(); got != (TUIState{Version: 1}) {
			t.Fatalf("%s: expected empty state; got %#v", name, got)
		}
	}
}

func TestTUIState_NoDirIsNoop(t *testing.T) {
	t.Parallel()

	var f TUIStateFile
	if err := f.Save(TUIState{View: "archive"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := f.Load(); got.View != "" {
		t.Fatalf("got %#v", got)
	}
}
