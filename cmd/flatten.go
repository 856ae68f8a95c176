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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/notargets/geodeform/deform"
	"github.com/notargets/geodeform/utils"
)

// FlattenCmd represents the flatten command
var FlattenCmd = &cobra.Command{
	Use:   "flatten mesh.obj output_path",
	Short: "Flatten a triangulated surface onto its boundary",
	Long: `
Solves, for x and then y, the Laplacian least squares system of the mesh with
its boundary vertices pinned, and writes output.vtk and output.obj into
output_path.

geodeform flatten models/shell/slice.obj out`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return RunFlatten(ctx, args)
	},
}

func init() {
	rootCmd.AddCommand(FlattenCmd)
}

func RunFlatten(ctx context.Context, args []string) (err error) {
	var (
		log *zap.Logger
		res *deform.Result
	)
	dp, err := processInput()
	if err != nil {
		return
	}
	if err = dp.Validate(); err != nil {
		return
	}
	cfg := deform.FlattenConfig{
		Input:     args[0],
		OutputDir: args[1],
		PinWeight: dp.PinWeight,
	}
	if cfg.Solver, err = dp.NewSolver(); err != nil {
		return
	}
	if log, err = newLogger(); err != nil {
		return
	}
	defer func() { _ = log.Sync() }()
	if res, err = deform.Flatten(ctx, cfg, log); err != nil {
		return
	}
	log.Debug("memory", zap.String("usage", utils.GetMemUsage()))
	fmt.Printf("flattened %d vertices, residual %g\n", res.NVerts, res.Residual)
	if viper.GetBool("graph") {
		plotResult(res.Mesh, res.Mesh.OnBorder, utils.BoundaryColor)
	}
	return
}
