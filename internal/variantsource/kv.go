package variantsource

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"os"

	"modernc.org/kv"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

// byPosition orders kv keys by chromosome then position, so that a range
// query can Seek to the window's lower bound and Next until it passes the
// upper bound.
func byPosition(x, y []byte) int { return bytes.Compare(x, y) }

// kvKey packs chrom and pos into a byte-comparable key: chrom, a NUL
// separator (so "chr1" and "chr10" never share a prefix), then the
// position as a fixed-width big-endian uint32.
func kvKey(chrom string, pos int) []byte {
	buf := make([]byte, len(chrom)+1+4)
	copy(buf, chrom)
	buf[len(chrom)] = 0
	binary.BigEndian.PutUint32(buf[len(chrom)+1:], uint32(pos))
	return buf
}

// maxSpanKey is a reserved key (impossible to collide with kvKey, whose
// first byte is always a chromosome-name character) tracking the widest
// variant span ever Put, so Query knows how far before a window's start a
// variant anchor could still overlap it.
var maxSpanKey = []byte{0x00, 'm', 'a', 'x', 's', 'p', 'a', 'n'}

// KVSource is a file-backed VariantSource using modernc.org/kv, suitable
// for variant sets too large to hold as an in-memory interval index but
// still small enough for a single local file.
type KVSource struct {
	db *kv.DB
}

// OpenKV opens (creating if absent) a kv-backed variant store at path.
func OpenKV(path string) (*KVSource, error) {
	opts := &kv.Options{Compare: byPosition}
	db, err := kv.Open(path, opts)
	if err != nil {
		if os.IsNotExist(err) {
			db, err = kv.Create(path, opts)
		}
		if err != nil {
			return nil, &design.VariantSourceError{Reason: "opening kv store " + path, Err: err}
		}
	}
	return &KVSource{db: db}, nil
}

// Put indexes a variant under its chromosome/position key. Multiple
// variants sharing a chromosome and position are gob-appended to the same
// value so Query can return all of them.
func (s *KVSource) Put(v design.Variant) error {
	key := kvKey(v.Chrom, v.Pos)
	existing, err := s.db.Get(nil, key)
	if err != nil {
		return &design.VariantSourceError{Reason: "reading existing kv entry", Err: err}
	}

	var variants []design.Variant
	if existing != nil {
		if err := gob.NewDecoder(bytes.NewReader(existing)).Decode(&variants); err != nil {
			return &design.VariantSourceError{Reason: "decoding existing kv entry", Err: err}
		}
	}
	variants = append(variants, v)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(variants); err != nil {
		return &design.VariantSourceError{Reason: "encoding kv entry", Err: err}
	}
	if err := s.db.Set(key, buf.Bytes()); err != nil {
		return &design.VariantSourceError{Reason: "writing kv entry", Err: err}
	}

	spanStart, spanEnd := v.Span()
	if err := s.growMaxSpan(spanEnd - spanStart + 1); err != nil {
		return err
	}
	return nil
}

// growMaxSpan widens the tracked maximum variant span if width exceeds it.
func (s *KVSource) growMaxSpan(width int) error {
	if width < 1 {
		width = 1
	}
	existing, err := s.db.Get(nil, maxSpanKey)
	if err != nil {
		return &design.VariantSourceError{Reason: "reading max-span marker", Err: err}
	}
	current := 0
	if len(existing) == 4 {
		current = int(binary.BigEndian.Uint32(existing))
	}
	if width <= current {
		return nil
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(width))
	if err := s.db.Set(maxSpanKey, buf); err != nil {
		return &design.VariantSourceError{Reason: "writing max-span marker", Err: err}
	}
	return nil
}

// maxSpan returns the widest variant span ever Put, or 1 if none has been.
func (s *KVSource) maxSpan() (int, error) {
	existing, err := s.db.Get(nil, maxSpanKey)
	if err != nil {
		return 0, &design.VariantSourceError{Reason: "reading max-span marker", Err: err}
	}
	if len(existing) != 4 {
		return 1, nil
	}
	return int(binary.BigEndian.Uint32(existing)), nil
}

// Query implements design.VariantSource by seeking to a lower bound wide
// enough that no variant whose span overlaps [start, end] can be anchored
// before it, then scanning forward until the chromosome changes or the
// anchor position itself passes end. A deletion or other multi-base
// variant anchored before start but spanning into the window is kept by
// checking its actual Span() against [start, end], not just its anchor.
func (s *KVSource) Query(chrom string, start, end int, minMaf float64, includeMissingMafs bool) ([]design.Variant, error) {
	maxSpan, err := s.maxSpan()
	if err != nil {
		return nil, err
	}
	seekPos := start - (maxSpan - 1)
	if seekPos < 0 {
		seekPos = 0
	}

	enum, _, err := s.db.Seek(kvKey(chrom, seekPos))
	if err != nil {
		return nil, &design.VariantSourceError{Reason: "seeking kv store", Err: err}
	}

	var matches []design.Variant
	for {
		k, v, err := enum.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &design.VariantSourceError{Reason: "scanning kv store", Err: err}
		}
		if len(k) != len(chrom)+1+4 || string(k[:len(chrom)]) != chrom || k[len(chrom)] != 0 {
			break
		}
		pos := int(binary.BigEndian.Uint32(k[len(chrom)+1:]))
		if pos > end {
			break
		}

		var variants []design.Variant
		if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&variants); err != nil {
			return nil, &design.VariantSourceError{Reason: "decoding kv entry", Err: err}
		}
		for _, variant := range variants {
			spanStart, spanEnd := variant.Span()
			if spanStart > end || spanEnd < start {
				continue
			}
			if design.PassesMAF(variant, minMaf, includeMissingMafs) {
				matches = append(matches, variant)
			}
		}
	}
	return matches, nil
}

// Close closes the underlying kv database.
func (s *KVSource) Close() error {
	if err := s.db.Close(); err != nil {
		return &design.VariantSourceError{Reason: "closing kv store", Err: err}
	}
	return nil
}
