package journal

import (
	"os"
	"path/filepath"
	"testing"
)

func tempJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "choices.jsonl")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j, path
}

func TestRecordAndRead(t *testing.T) {
	j, path := tempJournal(t)

	entries := []Entry{
		{Seq: "s1", Store: "notes.xml", EntryID: "mail", TimeMS: 1000, Weight: 1, TopAfter: "mail"},
		{Seq: "s2", Store: "notes.xml", EntryID: "chat", TimeMS: 2000, Weight: 13, TopAfter: "chat"},
	}
	for _, e := range entries {
		if err := j.Record(e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d entries, want 2", len(got))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestRecord_FillsSeqAndTime(t *testing.T) {
	j, path := tempJournal(t)

	if err := j.Record(Entry{EntryID: "mail", Weight: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("read %d entries, want 1", len(got))
	}
	if got[0].Seq == "" {
		t.Errorf("seq should be auto-filled")
	}
	if got[0].TimeMS == 0 {
		t.Errorf("time should be auto-filled")
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("missing journal should read as empty, got %v", got)
	}
}

func TestRead_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonl")
	if err := os.WriteFile(path, []byte("{\"seq\":\"s1\",\"entry_id\":\"a\",\"time_ms\":1,\"weight\":1}\nnot json\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Read(path); err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestAppendAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "choices.jsonl")

	for _, id := range []string{"a", "b"} {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if err := j.Record(Entry{EntryID: id, TimeMS: 1, Weight: 1}); err != nil {
			t.Fatalf("record: %v", err)
		}
		j.Close()
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0].EntryID != "a" || got[1].EntryID != "b" {
		t.Fatalf("got %+v, want a then b", got)
	}
}
