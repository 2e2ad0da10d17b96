package variantsource

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

// DuckDBSource is a DuckDB-backed VariantSource for variant sets large
// enough to warrant an embedded analytic database with indexed range
// queries rather than an in-process index.
type DuckDBSource struct {
	db *sql.DB
}

// OpenDuckDB opens or creates a DuckDB database at path. An empty path
// opens an in-memory database.
func OpenDuckDB(path string) (*DuckDBSource, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &design.VariantSourceError{Reason: "creating duckdb directory", Err: err}
		}
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, &design.VariantSourceError{Reason: "opening duckdb", Err: err}
	}
	s := &DuckDBSource{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DuckDBSource) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS variants (
		chrom VARCHAR,
		pos BIGINT,
		span_end BIGINT,
		id VARCHAR,
		ref VARCHAR,
		alt VARCHAR,
		maf DOUBLE,
		maf_known BOOLEAN
	)`)
	if err != nil {
		return &design.VariantSourceError{Reason: "creating variants table", Err: err}
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS variants_chrom_pos ON variants(chrom, pos, span_end)`)
	if err != nil {
		return &design.VariantSourceError{Reason: "creating variants index", Err: err}
	}
	return nil
}

// LoadVariants batch-inserts variants, storing each variant's full span
// (pos through Span()'s end) so Query can match on interval overlap rather
// than anchor position alone.
func (s *DuckDBSource) LoadVariants(variants []design.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return &design.VariantSourceError{Reason: "beginning duckdb transaction", Err: err}
	}
	stmt, err := tx.Prepare(`INSERT INTO variants (chrom, pos, span_end, id, ref, alt, maf, maf_known) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return &design.VariantSourceError{Reason: "preparing variant insert", Err: err}
	}
	defer stmt.Close()

	for _, v := range variants {
		var maf float64
		var known bool
		if v.MAF != nil {
			maf, known = *v.MAF, true
		}
		_, spanEnd := v.Span()
		if _, err := stmt.Exec(v.Chrom, v.Pos, spanEnd, v.ID, v.Ref, v.Alt, maf, known); err != nil {
			tx.Rollback()
			return &design.VariantSourceError{Reason: "inserting variant", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &design.VariantSourceError{Reason: "committing variant load", Err: err}
	}
	return nil
}

// Query implements design.VariantSource with a single indexed range scan,
// matching on span overlap ([pos, span_end] against [start, end]) so a
// deletion or other multi-base variant anchored before start but extending
// into the queried range is not silently dropped.
func (s *DuckDBSource) Query(chrom string, start, end int, minMaf float64, includeMissingMafs bool) ([]design.Variant, error) {
	rows, err := s.db.Query(
		`SELECT id, pos, ref, alt, maf, maf_known FROM variants WHERE chrom = ? AND pos <= ? AND span_end >= ? ORDER BY pos`,
		chrom, end, start)
	if err != nil {
		return nil, &design.VariantSourceError{Reason: "querying variants", Err: err}
	}
	defer rows.Close()

	var matches []design.Variant
	for rows.Next() {
		var v design.Variant
		var maf float64
		var known bool
		if err := rows.Scan(&v.ID, &v.Pos, &v.Ref, &v.Alt, &maf, &known); err != nil {
			return nil, &design.VariantSourceError{Reason: "scanning variant row", Err: err}
		}
		v.Chrom = chrom
		if known {
			v.MAF = &maf
		}
		if design.PassesMAF(v, minMaf, includeMissingMafs) {
			matches = append(matches, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating variant rows: %w", err)
	}
	return matches, nil
}

// Close closes the underlying DuckDB connection.
func (s *DuckDBSource) Close() error {
	if err := s.db.Close(); err != nil {
		return &design.VariantSourceError{Reason: "closing duckdb", Err: err}
	}
	return nil
}
