/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/notargets/geodeform/attributes"
	"github.com/notargets/geodeform/deform"
	"github.com/notargets/geodeform/halfedge"
	"github.com/notargets/geodeform/readfiles"
	"github.com/notargets/geodeform/system"
	"github.com/notargets/geodeform/types"
	"github.com/notargets/geodeform/utils"
)

// DeformCmd represents the deform command
var DeformCmd = &cobra.Command{
	Use:   "deform model_path output_path horizon_const fault_const",
	Short: "Make the horizons of a cross-section horizontal and its faults vertical",
	Long: `
Reads model_path/slice.obj and its horizon and fault labels (attributes.yaml,
attributes.json or attributes.py in model_path), solves the deformation least
squares system weighted by horizon_const and fault_const, and writes
deformed.vtk and deformed.obj into output_path.

geodeform deform models/chevron out 10 10`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return RunDeform(ctx, args)
	},
}

func init() {
	rootCmd.AddCommand(DeformCmd)
}

// parseConstants reads horizon_const and fault_const. Sign is checked with the
// other preconditions.
func parseConstants(args []string) (k system.Constants, err error) {
	vals := [2]*float64{&k.Horizon, &k.Fault}
	for i, name := range []string{"horizon_const", "fault_const"} {
		var parseErr error
		if *vals[i], parseErr = strconv.ParseFloat(args[i], 64); parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s %q is not a floating-point literal: %w",
				name, args[i], types.ErrInvalidArgument))
		}
	}
	return
}

func RunDeform(ctx context.Context, args []string) (err error) {
	var (
		k   system.Constants
		log *zap.Logger
		res *deform.Result
	)
	dp, inputErr := processInput()
	if inputErr != nil {
		return inputErr
	}
	k, err = parseConstants(args[2:4])
	err = multierr.Append(err, dp.Validate())
	cfg := deform.DefaultDeformConfig(args[0], args[1], k)
	cfg.Lift = dp.Lift()
	cfg.PairTol2 = dp.PairTol2()
	if err = multierr.Append(err, deform.CheckPreconditions(cfg)); err != nil {
		return
	}
	if cfg.Solver, err = dp.NewSolver(); err != nil {
		return
	}
	if log, err = newLogger(); err != nil {
		return
	}
	defer func() { _ = log.Sync() }()
	if viper.GetBool("verbose") {
		dp.Print()
	}
	if res, err = deform.Deform(ctx, cfg, log); err != nil {
		return
	}
	log.Debug("memory", zap.String("usage", utils.GetMemUsage()), zap.String("blas", utils.BLAS))
	fmt.Printf("deformed %d vertices, %d horizon corners, %d fault corners (%d paired), residual %g\n",
		res.NVerts, res.Counts.HorizonCorners, res.Counts.FaultCorners, res.Counts.FaultPairs, res.Residual)
	if viper.GetBool("graph") {
		plotResult(res.Mesh, labeledVertices(res), labelColor(res.Counts))
	}
	return
}

// labeledVertices marks the origins of fault corners, or of horizon corners
// when the section has no faults.
func labeledVertices(res *deform.Result) func(v int) bool {
	var (
		m      = res.Mesh
		attr   = res.Attributes
		marked = make([]bool, m.NVerts())
		faults = res.Counts.FaultCorners != 0
	)
	for c := 0; c < m.NCorners(); c++ {
		if (faults && attr.IsFault[c]) || (!faults && attr.HorizonID[c] >= 0) {
			marked[m.Org(c)], marked[m.Dst(c)] = true, true
		}
	}
	return func(v int) bool { return marked[v] }
}

func labelColor(counts attributes.Counts) utils.ColorName {
	if counts.FaultCorners != 0 {
		return utils.FaultColor
	}
	return utils.HorizonColor
}

func plotResult(m *halfedge.Mesh, mark func(v int) bool, markColor utils.ColorName) {
	readfiles.PlotMesh(m.V, m.T, mark, markColor)
	utils.SleepFor(50000)
}
