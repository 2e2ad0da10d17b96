// Package variantsource provides design.VariantSource implementations
// backed by an in-memory interval index, an embedded key-value store, and
// DuckDB, for callers at increasing scale.
package variantsource

import (
	"sort"

	"github.com/biogo/store/interval"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

// variantNode adapts a design.Variant to interval.IntInterface so it can be
// indexed in a per-chromosome interval.IntTree.
type variantNode struct {
	id uintptr
	v  design.Variant
}

func (n *variantNode) ID() uintptr { return n.id }

func (n *variantNode) Range() interval.IntRange {
	start, end := n.v.Span()
	return interval.IntRange{Start: start, End: end + 1}
}

func (n *variantNode) Overlap(b interval.IntRange) bool {
	start, end := n.v.Span()
	return end+1 > b.Start && start < b.End
}

// overlapQuery is the query object matched against the tree's stored
// ranges; biogo/store/interval calls b.Overlap on each candidate, so this
// carries the half-open [start, end) window being searched.
type overlapQuery struct {
	start, end int
}

func (q overlapQuery) ID() uintptr              { return 0 }
func (q overlapQuery) Range() interval.IntRange { return interval.IntRange{Start: q.start, End: q.end} }
func (q overlapQuery) Overlap(b interval.IntRange) bool {
	return q.end > b.Start && q.start < b.End
}

// CachedSource is an in-memory, read-only VariantSource indexed by
// per-chromosome interval trees, built once from a loaded variant set.
type CachedSource struct {
	trees map[string]*interval.IntTree
}

// NewCached builds a CachedSource from variants, grouping by chromosome and
// building one interval.IntTree per chromosome.
func NewCached(variants []design.Variant) (*CachedSource, error) {
	trees := make(map[string]*interval.IntTree)
	var id uintptr
	for _, v := range variants {
		t, ok := trees[v.Chrom]
		if !ok {
			t = &interval.IntTree{}
			trees[v.Chrom] = t
		}
		node := &variantNode{id: id, v: v}
		id++
		if err := t.Insert(node, true); err != nil {
			return nil, &design.VariantSourceError{Reason: "inserting variant into interval tree", Err: err}
		}
	}
	for _, t := range trees {
		t.AdjustRanges()
	}
	return &CachedSource{trees: trees}, nil
}

// Query implements design.VariantSource over the in-memory index.
func (c *CachedSource) Query(chrom string, start, end int, minMaf float64, includeMissingMafs bool) ([]design.Variant, error) {
	t, ok := c.trees[chrom]
	if !ok {
		return nil, nil
	}

	var matches []design.Variant
	t.DoMatching(func(hit interval.IntInterface) (done bool) {
		v := hit.(*variantNode).v
		if design.PassesMAF(v, minMaf, includeMissingMafs) {
			matches = append(matches, v)
		}
		return false
	}, overlapQuery{start: start, end: end + 1})

	sort.Slice(matches, func(i, j int) bool { return matches[i].Pos < matches[j].Pos })
	return matches, nil
}

// Close is a no-op: the index holds no external resources.
func (c *CachedSource) Close() error { return nil }
