package readfiles

import (
	"github.com/notargets/avs/chart2d"
	graphics2D "github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/utils"
)

// PlotMesh opens a chart window with the triangles in the XY plane and the
// vertices selected by mark drawn as glyphs. mark may be nil.
func PlotMesh(V []r3.Vec, T [][3]int, mark func(v int) bool, markColor utils.ColorName) (chart *chart2d.Chart2D) {
	var (
		points  []graphics2D.Point
		trimesh graphics2D.TriMesh
		K       = len(T)
	)
	points = make([]graphics2D.Point, len(V))
	for i, v := range V {
		points[i].X[0] = float32(v.X)
		points[i].X[1] = float32(v.Y)
	}
	trimesh.Triangles = make([]graphics2D.Triangle, K)
	colorMap := utils2.NewColorMap(0, 1, 1)
	trimesh.Attributes = make([][]float32, K) // One attribute per triangle edge
	for k := 0; k < K; k++ {
		trimesh.Attributes[k] = make([]float32, 3)
		for i := 0; i < 3; i++ {
			trimesh.Triangles[k].Nodes[i] = int32(T[k][i])
		}
	}
	trimesh.Geometry = points
	box := graphics2D.NewBoundingBox(trimesh.GetGeometry())
	box = box.Scale(1.5)
	chart = chart2d.NewChart2D(1920, 1920, box.XMin[0], box.XMax[0], box.XMin[1], box.XMax[1])
	chart.AddColorMap(colorMap)
	go chart.Plot()
	if err := chart.AddTriMesh("TriMesh", trimesh,
		chart2d.NoGlyph, chart2d.Solid, utils.GetColor(utils.MeshColor)); err != nil {
		panic("unable to add graph series")
	}
	if mark == nil {
		return
	}
	var xs, ys []float64
	for i, v := range V {
		if mark(i) {
			xs = append(xs, v.X)
			ys = append(ys, v.Y)
		}
	}
	if err := chart.AddSeries("Marked", xs, ys,
		chart2d.CircleGlyph, chart2d.NoLine, utils.GetColor(markColor)); err != nil {
		panic(err)
	}
	return
}
