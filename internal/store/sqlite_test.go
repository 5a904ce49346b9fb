package store

import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/choicerank/internal/history"
)

func tempDBStore(t *testing.T) *DBStore {
	t.Helper()
	s, err := NewDBStore(filepath.Join(t.TempDir(), "choices.db"))
	if err != nil {
		t.Fatalf("NewDBStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDBStore_RoundTrip(t *testing.T) {
	s := tempDBStore(t)
	want := sampleRecords()

	if err := s.Save("targets.xml", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("targets.xml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("loaded %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDBStore_UnknownNameIsEmpty(t *testing.T) {
	s := tempDBStore(t)

	got, err := s.Load("never-saved.xml")
	if err != nil {
		t.Fatalf("unknown store must not be an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("unknown store should load as nil, got %v", got)
	}
}

func TestDBStore_SaveReplacesRows(t *testing.T) {
	s := tempDBStore(t)

	if err := s.Save("targets.xml", sampleRecords()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Save("targets.xml", []history.Record{{EntryID: "only", Time: 9, Weight: 1}}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.Load("targets.xml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].EntryID != "only" {
		t.Fatalf("save did not replace the rows: %v", got)
	}
}

func TestDBStore_StoresAreIndependent(t *testing.T) {
	s := tempDBStore(t)

	if err := s.Save("a.xml", sampleRecords()[:1]); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := s.Save("b.xml", sampleRecords()); err != nil {
		t.Fatalf("save b: %v", err)
	}

	a, err := s.Load("a.xml")
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	b, err := s.Load("b.xml")
	if err != nil {
		t.Fatalf("load b: %v", err)
	}
	if len(a) != 1 || len(b) != 3 {
		t.Fatalf("stores bled into each other: a=%d b=%d", len(a), len(b))
	}
}

func TestDBStore_RevisionChangesPerSave(t *testing.T) {
	s := tempDBStore(t)

	if err := s.Save("targets.xml", sampleRecords()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	first, err := s.ListStores()
	if err != nil {
		t.Fatalf("ListStores: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("listed %d stores, want 1", len(first))
	}
	if first[0].RecordCount != 3 {
		t.Errorf("record count %d, want 3", first[0].RecordCount)
	}
	if first[0].Revision == "" {
		t.Errorf("revision should be stamped")
	}

	if err := s.Save("targets.xml", sampleRecords()[:1]); err != nil {
		t.Fatalf("second save: %v", err)
	}
	second, err := s.ListStores()
	if err != nil {
		t.Fatalf("ListStores: %v", err)
	}
	if second[0].Revision == first[0].Revision {
		t.Errorf("revision did not change across saves")
	}
	if second[0].RecordCount != 1 {
		t.Errorf("record count %d, want 1", second[0].RecordCount)
	}
}
