/*
Copyright (C) the iland-go developers.
This file is part of iland-go.

iland-go is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

iland-go is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with iland-go.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command ilandrun is a command-line host for the iland-go core simulation
// library. It wires config.Load, an in-memory climate.SliceTable, and
// simulation.Simulation together and runs a configurable number of years,
// reporting a fixed set of exit codes: 0 success, 2 configuration error,
// 3 runtime error, 4 cancellation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iland-go/iland/config"
)

const (
	exitOK           = 0
	exitConfigError  = 2
	exitRuntimeError = 3
	exitCancellation = 4
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ilandrun",
	Short: "Run the iland-go core forest simulation engine.",
	Long: "ilandrun loads a TOML configuration file (model geometry, water, " +
		"climate, and numerics groups) and drives the light and water-cycle " +
		"engines for a configured number of simulated years.",
}

var yearsCmd = &cobra.Command{
	Use:   "run [years]",
	Short: "Run the simulation for the given number of years.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		years, err := parseYears(args[0])
		if err != nil {
			os.Exit(exitConfigError)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ilandrun: configuration error: %v\n", err)
			os.Exit(exitConfigError)
		}
		if err := runYears(cfg, years); err != nil {
			if err == errCancelled {
				fmt.Fprintln(os.Stderr, "ilandrun: cancelled")
				os.Exit(exitCancellation)
			}
			fmt.Fprintf(os.Stderr, "ilandrun: runtime error: %v\n", err)
			os.Exit(exitRuntimeError)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "iland.toml",
		"path to the TOML configuration file")
	rootCmd.AddCommand(yearsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitRuntimeError)
	}
	os.Exit(exitOK)
}

func parseYears(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n <= 0 {
		return 0, fmt.Errorf("ilandrun: invalid year count %q", s)
	}
	return n, nil
}
