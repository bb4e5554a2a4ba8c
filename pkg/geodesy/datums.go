// Package geodesy holds the small external-collaborator surfaces the rest
// of compasslib consults: the recognised-datum table, the geomagnetic
// declination model, and the survey-file resolver.
package geodesy

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed datums.toml
var embeddedDatums []byte

// Datum describes one entry of the recognised-datum table.
type Datum struct {
	Name      string `toml:"name"`
	Ellipsoid string `toml:"ellipsoid"`
}

type datumFile struct {
	Datum []Datum `toml:"datum"`
}

// DatumTable answers whether a datum name (as found in a project file's
// &-record) is recognised. Comparison is case-sensitive.
type DatumTable interface {
	IsKnownDatum(name string) bool
}

// StaticDatumTable is a DatumTable backed by an in-memory list, typically
// loaded once from a TOML document with LoadDatumTable.
type StaticDatumTable struct {
	known map[string]Datum
}

// LoadDatumTable parses a TOML-encoded datum table (see datums.toml for the
// schema) into a StaticDatumTable.
func LoadDatumTable(data []byte) (*StaticDatumTable, error) {
	var f datumFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("geodesy: decode datum table: %w", err)
	}
	known := make(map[string]Datum, len(f.Datum))
	for _, d := range f.Datum {
		known[d.Name] = d
	}
	return &StaticDatumTable{known: known}, nil
}

// DefaultDatumTable returns the datum table bundled with compasslib.
func DefaultDatumTable() *StaticDatumTable {
	table, err := LoadDatumTable(embeddedDatums)
	if err != nil {
		// The embedded table is part of the compiled binary; a decode
		// failure here means the table itself is malformed, not a user
		// input error.
		panic(fmt.Sprintf("geodesy: embedded datum table: %v", err))
	}
	return table
}

// IsKnownDatum reports whether name exactly matches a recognised datum.
func (t *StaticDatumTable) IsKnownDatum(name string) bool {
	_, ok := t.known[name]
	return ok
}

// Lookup returns the full Datum record for name, if known.
func (t *StaticDatumTable) Lookup(name string) (Datum, bool) {
	d, ok := t.known[name]
	return d, ok
}
