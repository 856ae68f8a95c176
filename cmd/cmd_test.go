package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/attributes"
	"github.com/notargets/geodeform/deform"
	"github.com/notargets/geodeform/halfedge"
	"github.com/notargets/geodeform/readfiles"
	"github.com/notargets/geodeform/types"
	"github.com/notargets/geodeform/utils"
)

func writeSquareModel(t *testing.T) (dir string) {
	dir = t.TempDir()
	V, T := halfedge.UnitSquareGeometry()
	V[2].Y = 1.1
	require.NoError(t, readfiles.WriteOBJFile(filepath.Join(dir, deform.SliceFile), V, T))
	attr := attributes.NewSet(6)
	attr.HorizonID[4] = 0
	require.NoError(t, attributes.WriteFile(filepath.Join(dir, deform.AttributeYAML), attr))
	return
}

func TestRunDeform_Preconditions(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	err := RunDeform(context.Background(), []string{missing, missing, "-1", "abc"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
	errs := multierr.Errors(err)
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0].Error(), `fault_const "abc"`)
	assert.Contains(t, errs[1].Error(), "horizon constant -1")

	msg := formatError(err)
	assert.Contains(t, msg, "4 problems prevent the run:")
	assert.Contains(t, msg, "\n  - model directory "+missing)
	assert.Contains(t, msg, "\n  - output directory "+missing)

	assert.Equal(t, "error: boom", formatError(errors.New("boom")))
}

func TestRootCmd(t *testing.T) {
	model := writeSquareModel(t)
	out := t.TempDir()

	rootCmd.SetArgs([]string{"deform", model, out, "10", "10", "--solver", "svd"})
	require.NoError(t, rootCmd.Execute())
	for _, name := range []string{deform.DeformedVTK, deform.DeformedOBJ} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	rootCmd.SetArgs([]string{"flatten", filepath.Join(model, deform.SliceFile), out})
	require.NoError(t, rootCmd.Execute())
	_, err := os.Stat(filepath.Join(out, deform.FlattenedOBJ))
	assert.NoError(t, err)

	curves := t.TempDir()
	require.NoError(t, readfiles.WriteOBJFile(filepath.Join(curves, "faults.obj"),
		[]r3.Vec{{X: 0, Y: 0}, {X: 0, Y: 1}}, [][3]int{{0, 1, 1}}))
	rootCmd.SetArgs([]string{"label", model, curves})
	require.NoError(t, rootCmd.Execute())
	attr, err := attributes.FileSource{Path: filepath.Join(model, deform.AttributeYAML)}.
		Label(halfedge.MustNew(halfedge.UnitSquareGeometry()))
	require.NoError(t, err)
	assert.True(t, attr.IsFault[5])
	assert.Equal(t, attributes.NoHorizon, attr.HorizonID[4])

	rootCmd.SetArgs([]string{"deform", model, out, "10"})
	assert.Error(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"deform", model, out, "10", "10", "--solver", "qr"})
	err = rootCmd.Execute()
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestLabeledVertices(t *testing.T) {
	m := halfedge.MustNew(halfedge.UnitSquareGeometry())
	attr := attributes.NewSet(m.NCorners())
	attr.HorizonID[4] = 0 // 2->3
	res := &deform.Result{Mesh: m, Attributes: attr, Counts: attr.Count()}
	mark := labeledVertices(res)
	assert.Equal(t, []bool{false, false, true, true},
		[]bool{mark(0), mark(1), mark(2), mark(3)})
	assert.Equal(t, utils.HorizonColor, labelColor(res.Counts))

	attr.IsFault[0] = true // 0->1
	res.Counts = attr.Count()
	mark = labeledVertices(res)
	assert.Equal(t, []bool{true, true, false, false},
		[]bool{mark(0), mark(1), mark(2), mark(3)})
	assert.Equal(t, utils.FaultColor, labelColor(res.Counts))
}

func TestRunDeform_ConstantsComeFromArguments(t *testing.T) {
	model := writeSquareModel(t)
	out := t.TempDir()
	params := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(params, []byte("HorizonConst: -1\nFaultConst: -1\n"), 0o644))
	viper.Set("inputParametersFile", params)
	viper.Set("solver", "svd")
	t.Cleanup(func() {
		viper.Set("inputParametersFile", "")
		viper.Set("solver", "")
	})

	require.NoError(t, RunDeform(context.Background(), []string{model, out, "10", "10"}))
	_, err := os.Stat(filepath.Join(out, deform.DeformedOBJ))
	assert.NoError(t, err)

	// the file still validates the keys it owns
	require.NoError(t, os.WriteFile(params, []byte("PinWeight: -1\n"), 0o644))
	err = RunDeform(context.Background(), []string{model, out, "10", "10"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PinWeight must be >= 0")
}

type countingProfiler struct{ stops int }

func (p *countingProfiler) Stop() { p.stops++ }

func TestExecute_StopsProfilerOnError(t *testing.T) {
	p := &countingProfiler{}
	profiler = p
	rootCmd.SetArgs([]string{"deform", "only_one_arg"})
	assert.Error(t, execute())
	assert.Equal(t, 1, p.stops)
	assert.Nil(t, profiler)
}
