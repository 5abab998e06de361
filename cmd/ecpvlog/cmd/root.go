package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	packageName string
	lpfFile     string
	moduleName  string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "ecpvlog <chip-dump>",
	Short: "Convert a decoded ECP5 bitstream into structural Verilog",
	Long: `ecpvlog reconstructs the signal connectivity of a configured ECP5 device
from a chip dump (the decoded form of a .bit file, as produced by the
bitstream toolchain) and writes a structural Verilog module for gate-level
simulation to stdout. Progress and diagnostics go to stderr.

Examples:
  ecpvlog design.chip.json > design.v
  ecpvlog --package CABGA256 design.chip.json > design.v
  ecpvlog --package CABGA256 --lpf design.lpf -n blinky design.chip.json`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&packageName, "package", "",
		"physical package (e.g. CABGA256), for renaming I/O ports")
	rootCmd.Flags().StringVar(&lpfFile, "lpf", "",
		"use LOCATE COMP commands from this LPF file to name I/O ports")
	rootCmd.Flags().StringVarP(&moduleName, "module-name", "n", "top",
		"name for the top-level module")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger builds the diagnostic logger. Diagnostics always go to stderr
// so they never interleave with the generated module on stdout.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
