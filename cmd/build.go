package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/qobs-build/snbuild/internal/emit"
	"github.com/qobs-build/snbuild/internal/msg"
)

var buildFlags commonFlags

var buildCmd = &cobra.Command{
	Use:   "build [options] [--] app.cc [...]",
	Short: "Scan, emit a throwaway build script, and build",
	Args:  cobra.MinimumNArgs(1),
	Run:   doBuild,
}

func init() {
	addCommonFlags(buildCmd, &buildFlags)
}

func doBuild(cmd *cobra.Command, args []string) {
	s, opts, err := setup(context.Background(), buildFlags, args)
	fatalIfErr(err)

	makefile, err := emit.TempMakefileName()
	fatalIfErr(err)
	opts.Makefile = makefile
	defer os.Remove(makefile)

	mk, _ := emit.Generate(s, opts)
	fatalIfErr(os.WriteFile(makefile, []byte(mk), 0o644))

	verbose := buildFlags.effectiveVerbose()
	if verbose > 0 {
		msg.Info("building %d application(s) via %s", len(s.Applications()), makefile)
	}
	fatalIfErr(runMake(makefile, verbose, "clean", "all", "clean-object-files"))
}
