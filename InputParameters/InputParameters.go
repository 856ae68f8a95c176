package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
	"go.uber.org/multierr"

	"github.com/notargets/geodeform/deform"
	"github.com/notargets/geodeform/lsq"
	"github.com/notargets/geodeform/system"
	"github.com/notargets/geodeform/types"
)

// Parameters obtained from the YAML input file. The horizon and fault
// constants are positional arguments of the deform command, not file keys.
type DeformParameters struct {
	Title          string  `json:"Title"`
	PinWeight      float64 `json:"PinWeight"` // Boundary penalty for flattening
	Solver         string  `json:"Solver"`    // lsmr or svd
	ATol           float64 `json:"ATol"`
	BTol           float64 `json:"BTol"`
	MaxIterations  int     `json:"MaxIterations"`
	HorizonDivisor float64 `json:"HorizonDivisor"`
	HorizonScale   float64 `json:"HorizonScale"`
	FaultDrop      float64 `json:"FaultDrop"`
	PairTolerance  float64 `json:"PairTolerance"` // Distance under which fault sides are paired
}

// Defaults returns the parameters the deform command runs with when no file is given
func Defaults() (dp *DeformParameters) {
	return &DeformParameters{
		Title:          "Deformation",
		PinWeight:      system.DefaultPinWeight,
		Solver:         lsq.SolverLSMR.String(),
		HorizonDivisor: deform.DefaultLift.HorizonDivisor,
		HorizonScale:   deform.DefaultLift.HorizonScale,
		FaultDrop:      deform.DefaultLift.FaultDrop,
		PairTolerance:  1.e-3,
	}
}

// Parse overlays the values present in data onto dp
func (dp *DeformParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, dp)
}

func (dp *DeformParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", dp.Title)
	fmt.Printf("%8.5f\t\t= PinWeight\n", dp.PinWeight)
	fmt.Printf("[%s]\t\t\t= Solver\n", dp.Solver)
	fmt.Printf("[%d]\t\t\t\t= Max Iterations\n", dp.MaxIterations)
	fmt.Printf("%8.5f\t\t= Horizon Divisor\n", dp.HorizonDivisor)
	fmt.Printf("%8.5f\t\t= Horizon Scale\n", dp.HorizonScale)
	fmt.Printf("%8.5f\t\t= Fault Drop\n", dp.FaultDrop)
}

// Validate reports every out of range parameter
func (dp *DeformParameters) Validate() (err error) {
	nonNegative := func(name string, val float64) {
		if val < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be >= 0, have %v: %w",
				name, val, types.ErrInvalidArgument))
		}
	}
	nonNegative("PinWeight", dp.PinWeight)
	nonNegative("ATol", dp.ATol)
	nonNegative("BTol", dp.BTol)
	nonNegative("PairTolerance", dp.PairTolerance)
	if dp.MaxIterations < 0 {
		err = multierr.Append(err, fmt.Errorf("MaxIterations must be >= 0, have %d: %w",
			dp.MaxIterations, types.ErrInvalidArgument))
	}
	if dp.HorizonDivisor == 0 {
		err = multierr.Append(err, fmt.Errorf("HorizonDivisor must not be zero: %w",
			types.ErrInvalidArgument))
	}
	if _, solverErr := lsq.ParseSolverType(dp.Solver); solverErr != nil {
		err = multierr.Append(err, solverErr)
	}
	return
}

func (dp *DeformParameters) NewSolver() (lsq.Solver, error) {
	return lsq.NewSolver(dp.Solver, lsq.Options{
		ATol:    dp.ATol,
		BTol:    dp.BTol,
		MaxIter: dp.MaxIterations,
	})
}

func (dp *DeformParameters) Lift() deform.LiftParameters {
	return deform.LiftParameters{
		HorizonDivisor: dp.HorizonDivisor,
		HorizonScale:   dp.HorizonScale,
		FaultDrop:      dp.FaultDrop,
	}
}

// PairTol2 is the squared pairing distance used by the attribute sources
func (dp *DeformParameters) PairTol2() float64 {
	return dp.PairTolerance * dp.PairTolerance
}
