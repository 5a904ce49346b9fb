package store

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/choicerank/internal/history"
)

// #region store-interface

// Store persists named choice histories. Implementations are safe for use
// from the single background worker; they are not required to tolerate
// concurrent calls for the same name.
type Store interface {
	// Load returns the records for name, oldest first. A store holding no
	// data for name returns (nil, nil), not an error.
	Load(name string) ([]history.Record, error)
	// Save replaces everything stored under name with records.
	Save(name string, records []history.Record) error
}

// #endregion store-interface

// #region name

// HistoryExtension is appended to store names that lack it.
const HistoryExtension = ".xml"

// NormalizeName appends HistoryExtension when name does not already end
// with it, so "targets" and "targets.xml" address the same store.
func NormalizeName(name string) string {
	if strings.HasSuffix(name, HistoryExtension) {
		return name
	}
	return name + HistoryExtension
}

// #endregion name

// #region xml-format

// historyDoc mirrors the on-disk XML document. The root tag and attribute
// names are fixed; attribute values stay strings so that missing attributes
// fail the load instead of silently zeroing.
type historyDoc struct {
	XMLName xml.Name    `xml:"historical-records"`
	Records []xmlRecord `xml:"historical-record"`
}

type xmlRecord struct {
	EntryID string `xml:"entry-id,attr"`
	Time    string `xml:"time,attr"`
	Weight  string `xml:"weight,attr"`
}

func (r xmlRecord) toRecord() (history.Record, error) {
	if r.EntryID == "" {
		return history.Record{}, errors.New("record missing entry-id")
	}
	t, err := strconv.ParseInt(r.Time, 10, 64)
	if err != nil {
		return history.Record{}, fmt.Errorf("record time: %w", err)
	}
	w, err := strconv.ParseFloat(r.Weight, 32)
	if err != nil {
		return history.Record{}, fmt.Errorf("record weight: %w", err)
	}
	return history.Record{EntryID: r.EntryID, Time: t, Weight: float32(w)}, nil
}

func toXMLRecord(r history.Record) xmlRecord {
	return xmlRecord{
		EntryID: r.EntryID,
		Time:    strconv.FormatInt(r.Time, 10),
		Weight:  strconv.FormatFloat(float64(r.Weight), 'f', -1, 32),
	}
}

// #endregion xml-format

// #region file-store

// FileStore keeps one XML history file per store name under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load reads one history file. A missing file is an empty history.
func (s *FileStore) Load(name string) ([]history.Record, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history %s: %w", name, err)
	}
	var doc historyDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", name, err)
	}
	records := make([]history.Record, 0, len(doc.Records))
	for _, xr := range doc.Records {
		rec, err := xr.toRecord()
		if err != nil {
			return nil, fmt.Errorf("parse history %s: %w", name, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Save rewrites the whole history file for name.
func (s *FileStore) Save(name string, records []history.Record) error {
	doc := historyDoc{Records: make([]xmlRecord, len(records))}
	for i, r := range records {
		doc.Records[i] = toXMLRecord(r)
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history %s: %w", name, err)
	}
	payload := append([]byte(xml.Header), data...)
	payload = append(payload, '\n')
	if err := os.WriteFile(s.path(name), payload, 0o644); err != nil {
		return fmt.Errorf("write history %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// ListStores reports every history file in the directory, sorted by name.
// Revision stays empty; files carry no revision stamp, so SavedAt falls
// back to the file modification time.
func (s *FileStore) ListStores() ([]StoreInfo, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list history dir: %w", err)
	}
	var infos []StoreInfo
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), HistoryExtension) {
			continue
		}
		records, err := s.Load(de.Name())
		if err != nil {
			return nil, err
		}
		info := StoreInfo{Name: de.Name(), RecordCount: len(records)}
		if fi, err := de.Info(); err == nil {
			info.SavedAt = fi.ModTime()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// #endregion file-store
