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
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/notargets/geodeform/InputParameters"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "geodeform",
	Short: "Restoration of geological cross-sections",
	Long: `
Flattens triangulated cross-sections and straightens their horizons and faults
by least squares, writing the results as .vtk and .obj files.

geodeform deform model_path output_path horizon_const fault_const`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		switch mode := viper.GetString("profile"); mode {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		default:
			err = fmt.Errorf("unknown profile mode %q, want cpu or mem", mode)
		}
		return
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// execute runs the command tree and stops a running profiler whether or not
// the command failed.
func execute() error {
	defer stopProfiler()
	return rootCmd.Execute()
}

func stopProfiler() {
	if profiler != nil {
		profiler.Stop()
		profiler = nil
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.geodeform.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "development logging, including debug messages")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile to the working directory")
	rootCmd.PersistentFlags().StringP("inputParametersFile", "I", "", "YAML file for run parameters like:\n\t- Solver, ATol, BTol, MaxIterations\n\t- PinWeight, PairTolerance\n\t- HorizonDivisor, HorizonScale, FaultDrop")
	rootCmd.PersistentFlags().String("solver", "", "least squares solver: lsmr or svd (overrides the parameters file)")
	rootCmd.PersistentFlags().BoolP("graph", "g", false, "display the resulting mesh")
	for _, name := range []string{"verbose", "profile", "inputParametersFile", "solver", "graph"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".geodeform" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".geodeform")
	}
	viper.SetEnvPrefix("GEODEFORM")
	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	_ = viper.ReadInConfig()
}

func newLogger() (*zap.Logger, error) {
	if viper.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// processInput assembles the run parameters: defaults, then the parameters
// file, then the solver flag. Callers validate once their overrides are in.
func processInput() (dp *InputParameters.DeformParameters, err error) {
	dp = InputParameters.Defaults()
	if filename := viper.GetString("inputParametersFile"); len(filename) != 0 {
		var data []byte
		if data, err = os.ReadFile(filename); err != nil {
			return nil, err
		}
		if err = dp.Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	if solver := viper.GetString("solver"); len(solver) != 0 {
		dp.Solver = solver
	}
	return
}

// formatError lists every error of an aggregate on its own line
func formatError(err error) string {
	errs := multierr.Errors(err)
	if len(errs) < 2 {
		return "error: " + err.Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d problems prevent the run:", len(errs))
	for _, e := range errs {
		fmt.Fprintf(&b, "\n  - %s", e.Error())
	}
	return b.String()
}
