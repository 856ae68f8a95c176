package readfiles

import (
	"bufio"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/types"
)

const (
	VTKTitle        = "geodeform cross-section"
	VTKCellTriangle = 5
)

// WriteVTK writes a legacy ASCII unstructured grid of triangles. When scalars
// is non-nil it must hold one value per vertex and is written as POINT_DATA.
func WriteVTK(w io.Writer, V []r3.Vec, T [][3]int, scalars []float64) (err error) {
	if scalars != nil && len(scalars) != len(V) {
		return fmt.Errorf("scalar field has %d values for %d vertices: %w",
			len(scalars), len(V), types.ErrInvalidArgument)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n%s\nASCII\nDATASET UNSTRUCTURED_GRID\n\n", VTKTitle)
	fmt.Fprintf(bw, "POINTS %d double\n", len(V))
	for _, v := range V {
		fmt.Fprintf(bw, "%f %f %f\n", v.X, v.Y, v.Z)
	}
	fmt.Fprintf(bw, "\nCELLS %d %d\n", len(T), 4*len(T))
	for _, t := range T {
		fmt.Fprintf(bw, "3 %d %d %d\n", t[0], t[1], t[2])
	}
	fmt.Fprintf(bw, "\nCELL_TYPES %d\n", len(T))
	for range T {
		fmt.Fprintf(bw, "%d\n", VTKCellTriangle)
	}
	if scalars != nil {
		fmt.Fprintf(bw, "\nPOINT_DATA %d\nSCALARS f double 1\nLOOKUP_TABLE default\n", len(V))
		for _, s := range scalars {
			fmt.Fprintf(bw, "%f\n", s)
		}
	}
	return bw.Flush()
}

func WriteVTKFile(filename string, V []r3.Vec, T [][3]int, scalars []float64) (err error) {
	return writeFile(filename, func(w io.Writer) error { return WriteVTK(w, V, T, scalars) })
}
