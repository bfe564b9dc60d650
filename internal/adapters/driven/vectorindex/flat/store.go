package flat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure FileStore implements the interface.
var _ driven.IndexStore = (*FileStore)(nil)

// File name suffixes of an identity's pair.
const (
	IndexSuffix    = "_index.flat"
	MetadataSuffix = "_metadata.json"
)

// FileStore keeps index pairs in a directory.
// Writes replace each file atomically, vectors first, so a reader always
// sees a complete file. A crash between the two renames leaves the
// vector file ahead of the metadata, which Load repairs.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// IndexPath returns the vector file path for identity.
func (s *FileStore) IndexPath(identity string) string {
	return filepath.Join(s.dir, identity+IndexSuffix)
}

// MetadataPath returns the metadata file path for identity.
func (s *FileStore) MetadataPath(identity string) string {
	return filepath.Join(s.dir, identity+MetadataSuffix)
}

// New creates an empty index.
func (s *FileStore) New(dim int) driven.VectorIndex {
	return New(dim)
}

// Exists reports whether both files are present.
func (s *FileStore) Exists(identity string) (bool, error) {
	for _, p := range []string{s.IndexPath(identity), s.MetadataPath(identity)} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

// Load reads and cross-checks the pair.
func (s *FileStore) Load(identity string) (driven.VectorIndex, []domain.Record, error) {
	ok, err := s.Exists(identity)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, identity)
	}

	idx, err := s.readIndex(identity)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.readMetadata(identity)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case len(records) > idx.Len():
		return nil, nil, fmt.Errorf("%w: %s has %d records but %d vectors",
			domain.ErrIndexCorrupt, identity, len(records), idx.Len())
	case idx.Len() > len(records):
		logger.Warn("index %s: %d vectors but %d records, dropping the unpaired vectors",
			identity, idx.Len(), len(records))
		idx.Truncate(len(records))
	}

	if err := verifyPairing(idx, records); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", identity, err)
	}
	return idx, records, nil
}

// Save writes the vector file, then the metadata file.
func (s *FileStore) Save(identity string, index driven.VectorIndex, records []domain.Record) error {
	idx, ok := index.(*Index)
	if !ok {
		return fmt.Errorf("flat: cannot save index of type %T", index)
	}
	if idx.Len() != len(records) {
		return fmt.Errorf("%w: %d vectors but %d records", domain.ErrIndexCorrupt, idx.Len(), len(records))
	}
	if err := verifyPairing(idx, records); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	if err := writeAtomic(s.IndexPath(identity), func(w io.Writer) error {
		_, err := idx.WriteTo(w)
		return err
	}); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}

	if err := writeAtomic(s.MetadataPath(identity), func(w io.Writer) error {
		return encodeMetadata(w, records)
	}); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	logger.Debug("index %s: saved %d entries to %s", identity, len(records), s.dir)
	return nil
}

// Delete removes both files.
func (s *FileStore) Delete(identity string) error {
	var errs []error
	for _, p := range []string{s.IndexPath(identity), s.MetadataPath(identity)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *FileStore) readIndex(identity string) (*Index, error) {
	f, err := os.Open(s.IndexPath(identity))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(f.Name()), err)
	}
	return idx, nil
}

func (s *FileStore) readMetadata(identity string) ([]domain.Record, error) {
	data, err := os.ReadFile(s.MetadataPath(identity))
	if err != nil {
		return nil, err
	}
	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexCorrupt, identity+MetadataSuffix, err)
	}
	return records, nil
}

// verifyPairing checks that entry i of both halves carries ChunkID i.
func verifyPairing(idx *Index, records []domain.Record) error {
	for i, id := range idx.ids {
		if id != domain.ChunkID(i) {
			return fmt.Errorf("%w: vector %d has id %d", domain.ErrIndexCorrupt, i, id)
		}
	}
	for i, r := range records {
		if r.ID != domain.ChunkID(i) {
			return fmt.Errorf("%w: record %d has id %d", domain.ErrIndexCorrupt, i, r.ID)
		}
	}
	return nil
}

// encodeMetadata writes records as a 2-space indented JSON array,
// leaving non-ASCII text and HTML characters unescaped.
func encodeMetadata(w io.Writer, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// writeAtomic writes path through a synced temp file and a rename.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	syncDir(filepath.Dir(path))
	return nil
}

// syncDir flushes a directory entry so a rename survives a crash.
// Not every platform supports it, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	d.Close()
}
