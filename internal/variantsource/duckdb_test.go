package variantsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

func openInMemoryDuckDB(t *testing.T) *DuckDBSource {
	t.Helper()
	s, err := OpenDuckDB("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDuckDBSource_OpenClose(t *testing.T) {
	s := openInMemoryDuckDB(t)
	assert.NotNil(t, s.db)
}

func TestDuckDBSource_LoadAndQuery(t *testing.T) {
	s := openInMemoryDuckDB(t)

	variants := []design.Variant{
		{ID: "rs1", Chrom: "chr7", Pos: 140753336, Ref: "A", Alt: "T", MAF: maf(0.2)},
		{ID: "rs2", Chrom: "chr7", Pos: 140753400, Ref: "C", Alt: "G", MAF: maf(0.001)},
		{ID: "rs3", Chrom: "chr7", Pos: 999999999, Ref: "A", Alt: "T", MAF: maf(0.5)}, // outside range
	}
	require.NoError(t, s.LoadVariants(variants))

	got, err := s.Query("chr7", 140753300, 140753500, 0.01, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "rs1", got[0].ID)
}

func TestDuckDBSource_QueryIncludesMissingMafWhenRequested(t *testing.T) {
	s := openInMemoryDuckDB(t)

	require.NoError(t, s.LoadVariants([]design.Variant{
		{ID: "rs1", Chrom: "chr1", Pos: 100, Ref: "A", Alt: "T", MAF: nil},
	}))

	got, err := s.Query("chr1", 1, 200, 0.01, false)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Query("chr1", 1, 200, 0.01, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].MAF)
}

func TestDuckDBSource_QueryUnknownChromosomeIsEmpty(t *testing.T) {
	s := openInMemoryDuckDB(t)
	got, err := s.Query("chrZZZ", 1, 100, 0, false)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDuckDBSource_QueryMatchesDeletionSpanAnchoredBeforeStart(t *testing.T) {
	s := openInMemoryDuckDB(t)

	// A 4-base deletion (ref AAAAA) anchored at 95 spans 96-99, which overlaps a query
	// window starting at 98 even though the anchor position itself doesn't.
	require.NoError(t, s.LoadVariants([]design.Variant{
		{ID: "del1", Chrom: "chr1", Pos: 95, Ref: "AAAAA", Alt: "A", MAF: maf(0.3)},
	}))

	got, err := s.Query("chr1", 98, 110, 0.01, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "del1", got[0].ID)
}
