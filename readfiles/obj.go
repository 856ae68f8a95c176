package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/types"
)

// Geometry is a raw triangle soup as read from disk, before any adjacency is built
type Geometry struct {
	V []r3.Vec
	T [][3]int // 0-based vertex indices
}

// ReadOBJ reads vertices and triangles from a Wavefront .obj file
func ReadOBJ(filename string) (g *Geometry, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, err
	}
	defer file.Close()
	if g, err = ParseOBJ(file); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return
}

// ParseOBJ handles the "v x y z" and "f i j k" line kinds. Face indices are
// 1-based in the file and 0-based in the result; "i/t/n" tokens use the vertex
// index. Comments, blank lines and every other line kind are skipped.
func ParseOBJ(r io.Reader) (g *Geometry, err error) {
	var (
		scanner = bufio.NewScanner(r)
		lineNum int
	)
	g = &Geometry{}
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates: %w", lineNum, types.ErrMalformedMesh)
			}
			var xyz [3]float64
			for i := range xyz {
				if xyz[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
					return nil, fmt.Errorf("line %d: bad coordinate %q: %w", lineNum, fields[i+1], types.ErrMalformedMesh)
				}
			}
			g.V = append(g.V, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs 3 vertices: %w", lineNum, types.ErrMalformedMesh)
			}
			var tri [3]int
			for i := range tri {
				token, _, _ := strings.Cut(fields[i+1], "/")
				if tri[i], err = strconv.Atoi(token); err != nil {
					return nil, fmt.Errorf("line %d: bad vertex index %q: %w", lineNum, fields[i+1], types.ErrMalformedMesh)
				}
				tri[i]--
			}
			g.T = append(g.T, tri)
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return
}

// WriteOBJ writes the vertices and triangles in the grammar ParseOBJ reads
func WriteOBJ(w io.Writer, V []r3.Vec, T [][3]int) (err error) {
	bw := bufio.NewWriter(w)
	for _, v := range V {
		fmt.Fprintf(bw, "v %f %f %f\n", v.X, v.Y, v.Z)
	}
	for _, t := range T {
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	return bw.Flush()
}

func WriteOBJFile(filename string, V []r3.Vec, T [][3]int) (err error) {
	return writeFile(filename, func(w io.Writer) error { return WriteOBJ(w, V, T) })
}

func writeFile(filename string, write func(w io.Writer) error) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	if err = write(file); err != nil {
		file.Close()
		return
	}
	return file.Close()
}
