package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

type entry struct {
	i, j int
	val  float64
}

/*
RowAssembler collects the rows of a sparse system whose row count is only known
once the last constraint has been appended. Rows are numbered in the order they
are appended, and each row carries its right hand side value.

Entries are replayed into a DOK in insertion order, so setting the same (i, j)
twice keeps the last value, as DOK.Set does.
*/
type RowAssembler struct {
	nc      int
	entries []entry
	rhs     []float64
	name    string
}

func NewRowAssembler(nc, rowHint int, name string) (ra *RowAssembler) {
	ra = &RowAssembler{
		nc:      nc,
		entries: make([]entry, 0, 2*rowHint),
		rhs:     make([]float64, 0, rowHint),
		name:    name,
	}
	return
}

func (ra *RowAssembler) Dims() (r, c int) { return len(ra.rhs), ra.nc }

// AppendRow opens a new row with right hand side b and returns its index
func (ra *RowAssembler) AppendRow(b float64) (row int) {
	row = len(ra.rhs)
	ra.rhs = append(ra.rhs, b)
	return
}

func (ra *RowAssembler) Set(i, j int, val float64) {
	if i < 0 || i >= len(ra.rhs) || j < 0 || j >= ra.nc {
		panic(fmt.Errorf("assembler %q: entry (%d, %d) outside %d x %d",
			ra.name, i, j, len(ra.rhs), ra.nc))
	}
	ra.entries = append(ra.entries, entry{i, j, val})
}

// ToCSR converts the collected rows into compressed sparse row format along
// with a copy of the right hand side
func (ra *RowAssembler) ToCSR() (A *sparse.CSR, b []float64) {
	nr, nc := ra.Dims()
	if nr == 0 || nc == 0 {
		panic(fmt.Errorf("assembler %q: cannot build an empty %d x %d matrix", ra.name, nr, nc))
	}
	dok := sparse.NewDOK(nr, nc)
	for _, e := range ra.entries {
		dok.Set(e.i, e.j, e.val)
	}
	A = dok.ToCSR()
	b = make([]float64, nr)
	copy(b, ra.rhs)
	return
}
