package deform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/attributes"
	"github.com/notargets/geodeform/halfedge"
	"github.com/notargets/geodeform/lsq"
	"github.com/notargets/geodeform/readfiles"
	"github.com/notargets/geodeform/system"
	"github.com/notargets/geodeform/types"
	"github.com/notargets/geodeform/utils"
)

const (
	SliceFile     = "slice.obj"
	FlattenedVTK  = "output.vtk"
	FlattenedOBJ  = "output.obj"
	DeformedVTK   = "deformed.vtk"
	DeformedOBJ   = "deformed.obj"
	AttributeYAML = "attributes.yaml"
)

// Result summarizes a pipeline run
type Result struct {
	NVerts, NCorners int
	Rows, Cols       int // of the last system solved
	Counts           attributes.Counts
	Iterations       int     // LSMR iterations of the last solve, 0 for direct solvers
	Residual         float64 // ||Ax - b|| of the last solve
	Files            []string
	Elapsed          time.Duration
	Mesh             *halfedge.Mesh  // with the solved coordinates
	Attributes       *attributes.Set // deform only
}

type FlattenConfig struct {
	Input     string // .obj file
	OutputDir string
	PinWeight float64    // system.DefaultPinWeight when zero
	Solver    lsq.Solver // LSMR defaults when nil
}

type DeformConfig struct {
	ModelDir  string // holds slice.obj and, without a Source, an attribute file
	OutputDir string
	Constants system.Constants
	Lift      LiftParameters
	Solver    lsq.Solver        // LSMR defaults when nil
	Source    attributes.Source // FileSource over the model directory when nil
	PairTol2  float64           // squared fault pairing tolerance for the file source
	WriteOBJ  bool
	WriteVTK  bool
	Scalars   bool // export the in-plane displacement as POINT_DATA
}

// DefaultDeformConfig returns the configuration of the command line tool
func DefaultDeformConfig(modelDir, outputDir string, k system.Constants) DeformConfig {
	return DeformConfig{
		ModelDir:  modelDir,
		OutputDir: outputDir,
		Constants: k,
		Lift:      DefaultLift,
		WriteOBJ:  true,
		WriteVTK:  true,
		Scalars:   true,
	}
}

/*
CheckPreconditions verifies everything a deform run needs before any work is
done and reports every failed check, not just the first. Each error wraps
types.ErrInvalidArgument; multierr.Errors splits the result into its parts.
*/
func CheckPreconditions(cfg DeformConfig) (err error) {
	if cfg.Constants.Horizon < 0 {
		err = multierr.Append(err, fmt.Errorf("horizon constant %v is negative: %w",
			cfg.Constants.Horizon, types.ErrInvalidArgument))
	}
	if cfg.Constants.Fault < 0 {
		err = multierr.Append(err, fmt.Errorf("fault constant %v is negative: %w",
			cfg.Constants.Fault, types.ErrInvalidArgument))
	}
	if dirErr := checkDir(cfg.ModelDir, "model"); dirErr != nil {
		err = multierr.Append(err, dirErr)
	} else {
		err = multierr.Append(err, checkFile(filepath.Join(cfg.ModelDir, SliceFile)))
		if cfg.Source == nil {
			_, findErr := attributes.FindFile(cfg.ModelDir)
			err = multierr.Append(err, findErr)
		}
	}
	return multierr.Append(err, checkOutputDir(cfg.OutputDir))
}

func checkFile(filename string) error {
	info, err := os.Stat(filename)
	switch {
	case err != nil:
		return fmt.Errorf("input file %s does not exist: %w", filename, types.ErrInvalidArgument)
	case info.IsDir():
		return fmt.Errorf("input file %s is a directory: %w", filename, types.ErrInvalidArgument)
	}
	return nil
}

func checkDir(dir, what string) error {
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		return fmt.Errorf("%s directory %s does not exist: %w", what, dir, types.ErrInvalidArgument)
	case !info.IsDir():
		return fmt.Errorf("%s path %s is not a directory: %w", what, dir, types.ErrInvalidArgument)
	}
	return nil
}

func checkOutputDir(dir string) error {
	if err := checkDir(dir, "output"); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".geodeform-probe-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, types.ErrInvalidArgument)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

func loadMesh(filename string) (m *halfedge.Mesh, err error) {
	var g *readfiles.Geometry
	if g, err = readfiles.ReadOBJ(filename); err != nil {
		return
	}
	if m, err = halfedge.New(g.V, g.T); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func solve(solver lsq.Solver, s *lsq.System, res *Result) (x []float64, err error) {
	if solver == nil {
		solver = lsq.LSMR{}
	}
	res.Rows, res.Cols = s.Dims()
	res.Iterations = 0
	if l, ok := solver.(lsq.LSMR); ok {
		var info *lsq.Result
		if info, err = l.SolveWithInfo(s); err != nil {
			return
		}
		x, res.Iterations, res.Residual = info.X, info.Iterations, info.NormR
	} else {
		if x, err = solver.Solve(s); err != nil {
			return
		}
		res.Residual = s.Residual(x)
	}
	if utils.IsNan(x) {
		return nil, fmt.Errorf("solution of the %d x %d system is not finite", res.Rows, res.Cols)
	}
	return
}

func writeOutputs(m *halfedge.Mesh, res *Result, vtkFile, objFile string, scalars []float64) (err error) {
	if vtkFile != "" {
		if err = readfiles.WriteVTKFile(vtkFile, m.V, m.T, scalars); err != nil {
			return
		}
		res.Files = append(res.Files, vtkFile)
	}
	if objFile != "" {
		if err = readfiles.WriteOBJFile(objFile, m.V, m.T); err != nil {
			return
		}
		res.Files = append(res.Files, objFile)
	}
	return
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

/*
Flatten relaxes a mesh onto its boundary. For x and then y it solves the
Laplacian system, pinning boundary vertices with the configured weight, and
writes the result to output.vtk and output.obj in the output directory.
*/
func Flatten(ctx context.Context, cfg FlattenConfig, log *zap.Logger) (res *Result, err error) {
	var (
		start = time.Now()
		m     *halfedge.Mesh
	)
	log = nopIfNil(log)
	if err = multierr.Combine(checkFile(cfg.Input), checkOutputDir(cfg.OutputDir)); err != nil {
		return
	}
	weight := cfg.PinWeight
	if weight <= 0 {
		weight = system.DefaultPinWeight
	}
	if m, err = loadMesh(cfg.Input); err != nil {
		return
	}
	res = &Result{NVerts: m.NVerts(), NCorners: m.NCorners(), Mesh: m}
	log.Info("mesh loaded", zap.String("file", cfg.Input),
		zap.Int("nverts", res.NVerts), zap.Int("ncorners", res.NCorners),
		zap.Int("nboundary", m.NBoundary()))
	for axis := 0; axis < 2; axis++ {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		var (
			s *lsq.System
			x []float64
		)
		if s, _, err = system.BuildLaplacian(m, axis, weight); err != nil {
			return nil, err
		}
		if x, err = solve(cfg.Solver, s, res); err != nil {
			return nil, err
		}
		if err = ApplyAxis(m, axis, x); err != nil {
			return nil, err
		}
		log.Info("axis flattened", zap.Int("axis", axis),
			zap.Int("rows", res.Rows), zap.Int("cols", res.Cols),
			zap.Int("iterations", res.Iterations), zap.Float64("normr", res.Residual))
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if err = writeOutputs(m, res,
		filepath.Join(cfg.OutputDir, FlattenedVTK), filepath.Join(cfg.OutputDir, FlattenedOBJ), nil); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	log.Info("flatten done", zap.Strings("files", res.Files), zap.Duration("elapsed", res.Elapsed))
	return
}

/*
Deform straightens the horizons and faults of the section in the model
directory. It reads slice.obj, labels it through the configured source, solves
the deformation system, lifts horizons and faults in z and writes deformed.vtk
and deformed.obj to the output directory.
*/
func Deform(ctx context.Context, cfg DeformConfig, log *zap.Logger) (res *Result, err error) {
	var (
		start = time.Now()
		m     *halfedge.Mesh
		attr  *attributes.Set
		s     *lsq.System
		x     []float64
	)
	log = nopIfNil(log)
	if err = CheckPreconditions(cfg); err != nil {
		return
	}
	if m, err = loadMesh(filepath.Join(cfg.ModelDir, SliceFile)); err != nil {
		return
	}
	res = &Result{NVerts: m.NVerts(), NCorners: m.NCorners(), Mesh: m}
	log.Info("mesh loaded", zap.String("model", cfg.ModelDir),
		zap.Int("nverts", res.NVerts), zap.Int("ncorners", res.NCorners))

	source := cfg.Source
	if source == nil {
		var filename string
		if filename, err = attributes.FindFile(cfg.ModelDir); err != nil {
			return nil, err
		}
		source = attributes.FileSource{Path: filename, SquaredTolerance: cfg.PairTol2}
	}
	if attr, err = source.Label(m); err != nil {
		return nil, err
	}
	res.Attributes, res.Counts = attr, attr.Count()
	log.Info("attributes labeled",
		zap.Int("horizons", res.Counts.Horizons),
		zap.Int("horizon_corners", res.Counts.HorizonCorners),
		zap.Int("fault_corners", res.Counts.FaultCorners),
		zap.Int("fault_pairs", res.Counts.FaultPairs))
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	var layout system.Layout
	if s, layout, err = system.BuildDeformation(m, attr, cfg.Constants); err != nil {
		return nil, err
	}
	log.Debug("system assembled",
		zap.Int("horizon_rows", layout.Count(system.HorizonRow)),
		zap.Int("fault_rows", layout.Count(system.FaultRow)),
		zap.Int("coupling_rows", layout.Count(system.CouplingXRow)+layout.Count(system.CouplingYRow)))
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if x, err = solve(cfg.Solver, s, res); err != nil {
		return nil, err
	}
	log.Info("system solved", zap.Int("rows", res.Rows), zap.Int("cols", res.Cols),
		zap.Int("iterations", res.Iterations), zap.Float64("normr", res.Residual))
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	orig := make([]r3.Vec, m.NVerts())
	copy(orig, m.V)
	if err = ApplyDeformation(m, attr, x, cfg.Lift); err != nil {
		return nil, err
	}
	var (
		scalars          []float64
		vtkFile, objFile string
	)
	if cfg.Scalars {
		scalars = Displacement(orig, m)
	}
	if cfg.WriteVTK {
		vtkFile = filepath.Join(cfg.OutputDir, DeformedVTK)
	}
	if cfg.WriteOBJ {
		objFile = filepath.Join(cfg.OutputDir, DeformedOBJ)
	}
	if err = writeOutputs(m, res, vtkFile, objFile, scalars); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	log.Info("deform done", zap.Strings("files", res.Files), zap.Duration("elapsed", res.Elapsed))
	return
}

/*
Label computes attributes for the section in the model directory from the
horizon and fault curve meshes in curveDir and stores them as attributes.yaml
in the model directory, where Deform picks them up.
*/
func Label(ctx context.Context, modelDir, curveDir string, tol2 float64, log *zap.Logger) (filename string, counts attributes.Counts, err error) {
	var (
		m    *halfedge.Mesh
		ps   *attributes.ProximitySource
		attr *attributes.Set
	)
	log = nopIfNil(log)
	if err = multierr.Combine(
		checkDir(modelDir, "model"),
		checkDir(curveDir, "curve"),
	); err != nil {
		return
	}
	if m, err = loadMesh(filepath.Join(modelDir, SliceFile)); err != nil {
		return
	}
	if ps, err = attributes.LoadProximitySource(curveDir); err != nil {
		return
	}
	if len(ps.Horizons) == 0 && ps.Faults == nil {
		err = fmt.Errorf("no horizon or fault curves in %s: %w", curveDir, types.ErrInvalidArgument)
		return
	}
	if err = ctx.Err(); err != nil {
		return
	}
	ps.SquaredTolerance = tol2
	if attr, err = ps.Label(m); err != nil {
		return
	}
	counts = attr.Count()
	filename = filepath.Join(modelDir, AttributeYAML)
	if err = attributes.WriteFile(filename, attr); err != nil {
		return
	}
	log.Info("attributes written", zap.String("file", filename),
		zap.Int("horizon_curves", len(ps.Horizons)),
		zap.Int("horizon_corners", counts.HorizonCorners),
		zap.Int("fault_corners", counts.FaultCorners),
		zap.Int("fault_pairs", counts.FaultPairs))
	return
}
