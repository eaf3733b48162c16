package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/qobs-build/snbuild/internal/validate"
)

// commonFlags are the options shared by build/gen/run/runall, matching
// spec.md §6's common option table.
type commonFlags struct {
	compiler      string
	defines       []string
	optimize      bool
	sanitize      bool
	timeExecution bool
	verbose       int
}

// defaultCompiler prefers $CXX over the hardcoded "clang++" fallback, as
// long as it still satisfies the compiler grammar the validator enforces
// (an arbitrary $CXX like "zig cc" or "icpx" fails validate.IsCompiler and
// is ignored, so the default stays "clang++").
func defaultCompiler() string {
	if cxx := os.Getenv("CXX"); cxx != "" && validate.IsCompiler(cxx) {
		return cxx
	}
	return "clang++"
}

func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	cmd.Flags().StringVarP(&f.compiler, "compiler", "c", defaultCompiler(), "Compiler to use")
	cmd.Flags().StringSliceVarP(&f.defines, "define", "d", nil, "Extra predefined macro(s), comma-separated or repeated")
	cmd.Flags().BoolVarP(&f.optimize, "optimize", "o", false, "Build with optimizations (-O2)")
	cmd.Flags().BoolVarP(&f.sanitize, "sanitize", "s", false, "Build with sanitizers")
	cmd.Flags().BoolVarP(&f.timeExecution, "time-execution", "t", false, "Time the build (implies -v)")
	cmd.Flags().CountVarP(&f.verbose, "verbose", "v", "Increase verbosity (repeatable, max 3)")
}

// effectiveVerbose applies the "-t implies verbose >= 1" rule and the
// "max level 3" cap from spec.md §6.
func (f commonFlags) effectiveVerbose() int {
	v := f.verbose
	if f.timeExecution && v < 1 {
		v = 1
	}
	if v > 3 {
		v = 3
	}
	return v
}
