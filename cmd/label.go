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
	"go.uber.org/zap"

	"github.com/notargets/geodeform/attributes"
	"github.com/notargets/geodeform/deform"
)

// LabelCmd represents the label command
var LabelCmd = &cobra.Command{
	Use:   "label model_path curve_path",
	Short: "Compute horizon and fault labels from curve meshes",
	Long: `
Matches the half-edges of model_path/slice.obj against the edges of
curve_path/horizon1.obj, horizon2.obj, ... and curve_path/faults.obj, pairs the
two sides of each fault and writes model_path/attributes.yaml for the deform
command.

geodeform label models/chevron models/chevron/curves`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return RunLabel(ctx, args)
	},
}

func init() {
	rootCmd.AddCommand(LabelCmd)
}

func RunLabel(ctx context.Context, args []string) (err error) {
	var (
		log      *zap.Logger
		filename string
		counts   attributes.Counts
	)
	dp, err := processInput()
	if err != nil {
		return
	}
	if err = dp.Validate(); err != nil {
		return
	}
	if log, err = newLogger(); err != nil {
		return
	}
	defer func() { _ = log.Sync() }()
	if filename, counts, err = deform.Label(ctx, args[0], args[1], dp.PairTol2(), log); err != nil {
		return
	}
	fmt.Printf("%s: %d horizons over %d corners, %d fault corners (%d paired)\n",
		filename, counts.Horizons, counts.HorizonCorners, counts.FaultCorners, counts.FaultPairs)
	return
}
