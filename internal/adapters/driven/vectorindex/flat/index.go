package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/viant/vec/search"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// File header values.
const (
	magic   = "FLIX"
	version = uint32(1)
)

// Index is an append-only exhaustive index. Scores are cosine similarity,
// which equals the inner product for unit vectors.
// It is not safe for concurrent mutation.
type Index struct {
	dim     int
	ids     []domain.ChunkID
	vectors []search.Float32s
	mags    []float32
}

// New creates an empty index of the given width.
func New(dim int) *Index {
	return &Index{dim: dim}
}

// Dimensions returns the vector width.
func (x *Index) Dimensions() int {
	return x.dim
}

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	return len(x.vectors)
}

// Add appends vectors. Each gets the next position as its ChunkID.
// Nothing is added if any vector has the wrong width.
func (x *Index) Add(vectors [][]float32) ([]domain.ChunkID, error) {
	for i, v := range vectors {
		if len(v) != x.dim {
			return nil, fmt.Errorf("%w: vector %d has %d values, index has %d",
				domain.ErrDimensionMismatch, i, len(v), x.dim)
		}
	}

	ids := make([]domain.ChunkID, len(vectors))
	for i, v := range vectors {
		id := domain.ChunkID(len(x.vectors))
		vec := search.Float32s(append([]float32(nil), v...))
		x.ids = append(x.ids, id)
		x.vectors = append(x.vectors, vec)
		x.mags = append(x.mags, vec.Magnitude())
		ids[i] = id
	}
	return ids, nil
}

// Search scores every vector against query and returns the best k,
// highest score first. Equal scores keep insertion order.
func (x *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d values, index has %d",
			domain.ErrDimensionMismatch, len(query), x.dim)
	}
	if k <= 0 || len(x.vectors) == 0 {
		return nil, nil
	}

	q := search.Float32s(query)
	qmag := q.Magnitude()

	// CosineDistance is the portable entry point; the magnitude variant
	// is only exported on some architectures.

	hits := make([]driven.VectorHit, len(x.vectors))
	for i, v := range x.vectors {
		score := 0.0
		if qmag != 0 && x.mags[i] != 0 {
			score = 1 - float64(v.CosineDistance(q))
		}
		hits[i] = driven.VectorHit{ID: x.ids[i], Score: score}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// IDs returns the stored ChunkIDs in order.
func (x *Index) IDs() []domain.ChunkID {
	return append([]domain.ChunkID(nil), x.ids...)
}

// Truncate drops every vector from position n onwards.
func (x *Index) Truncate(n int) {
	if n < 0 || n >= len(x.vectors) {
		return
	}
	x.ids = x.ids[:n]
	x.vectors = x.vectors[:n]
	x.mags = x.mags[:n]
}

// header is the fixed-size file prefix after the magic bytes.
type header struct {
	Version uint32
	Dim     uint32
	Count   uint64
}

// WriteTo encodes the index.
func (x *Index) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}

	if _, err := io.WriteString(cw, magic); err != nil {
		return cw.n, err
	}
	hdr := header{Version: version, Dim: uint32(x.dim), Count: uint64(len(x.vectors))}
	if err := binary.Write(cw, binary.LittleEndian, hdr); err != nil {
		return cw.n, err
	}
	for i, v := range x.vectors {
		if err := binary.Write(cw, binary.LittleEndian, uint64(x.ids[i])); err != nil {
			return cw.n, err
		}
		if err := binary.Write(cw, binary.LittleEndian, []float32(v)); err != nil {
			return cw.n, err
		}
	}
	return cw.n, bw.Flush()
}

// Decode reads an index written by WriteTo.
func Decode(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)

	var m [len(magic)]byte
	if _, err := io.ReadFull(br, m[:]); err != nil {
		return nil, fmt.Errorf("%w: read magic: %w", domain.ErrIndexCorrupt, err)
	}
	if string(m[:]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", domain.ErrIndexCorrupt, m[:])
	}

	var hdr header
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrIndexCorrupt, err)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrIndexCorrupt, hdr.Version)
	}
	if hdr.Dim == 0 || hdr.Dim > math.MaxInt32 {
		return nil, fmt.Errorf("%w: invalid width %d", domain.ErrIndexCorrupt, hdr.Dim)
	}

	x := New(int(hdr.Dim))
	for i := uint64(0); i < hdr.Count; i++ {
		var id uint64
		if err := binary.Read(br, binary.LittleEndian, &id); err != nil {
			return nil, truncated(i, hdr.Count, err)
		}
		vec := make([]float32, hdr.Dim)
		if err := binary.Read(br, binary.LittleEndian, vec); err != nil {
			return nil, truncated(i, hdr.Count, err)
		}
		v := search.Float32s(vec)
		x.ids = append(x.ids, domain.ChunkID(id))
		x.vectors = append(x.vectors, v)
		x.mags = append(x.mags, v.Magnitude())
	}
	return x, nil
}

func truncated(at, count uint64, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: file ends at vector %d of %d", domain.ErrIndexCorrupt, at, count)
	}
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
