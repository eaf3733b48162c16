package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/qobs-build/snbuild/internal/emit"
)

var runallFlags commonFlags

var runallCmd = &cobra.Command{
	Use:   "runall [options] [--] app.cc [...]",
	Short: "Scan, build, and run every given application in sequence",
	Args:  cobra.MinimumNArgs(1),
	Run:   doRunAll,
}

func init() {
	addCommonFlags(runallCmd, &runallFlags)
}

func doRunAll(cmd *cobra.Command, args []string) {
	s, opts, err := setup(context.Background(), runallFlags, args)
	fatalIfErr(err)

	makefile, err := emit.TempMakefileName()
	fatalIfErr(err)
	opts.Makefile = makefile
	defer os.Remove(makefile)

	mk, _ := emit.Generate(s, opts)
	fatalIfErr(os.WriteFile(makefile, []byte(mk), 0o644))

	verbose := runallFlags.effectiveVerbose()
	fatalIfErr(runMake(makefile, verbose, "clean", "run", "clean"))
}
