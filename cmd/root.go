// snbuild <command> [options] [--] app.cc [...]
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qobs-build/snbuild/internal/msg"
)

var rootCmd = &cobra.Command{
	Use:   "snbuild",
	Short: "A dependency-discovery build driver for C++",
	Long: `snbuild scans an application's #include graph, derives its source and
library dependency closure, and drives a generated make-compatible build
script from it — without a package manifest.`,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runallCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatalIfErr(err error) {
	if err != nil {
		msg.Fatal("%v", err)
	}
}
