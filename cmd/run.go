package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/qobs-build/snbuild/internal/emit"
)

var runFlags commonFlags

var runCmd = &cobra.Command{
	Use:   "run [options] [--] app.cc [args passed to the executable ...]",
	Short: "Scan, build, and run a single application",
	Args:  cobra.MinimumNArgs(1),
	Run:   doRun,
}

func init() {
	addCommonFlags(runCmd, &runFlags)
}

func doRun(cmd *cobra.Command, args []string) {
	app := args[0]
	extraArgs := args[1:]

	s, opts, err := setup(context.Background(), runFlags, []string{app})
	fatalIfErr(err)

	makefile, err := emit.TempMakefileName()
	fatalIfErr(err)
	opts.Makefile = makefile
	defer os.Remove(makefile)

	mk, _ := emit.Generate(s, opts)
	fatalIfErr(os.WriteFile(makefile, []byte(mk), 0o644))

	verbose := runFlags.effectiveVerbose()
	fatalIfErr(runMake(makefile, verbose, "clean", "all"))

	executable := "./" + trimCCSuffix(app)
	runErr := runExecutable(executable, extraArgs)

	fatalIfErr(runMake(makefile, verbose, "clean"))
	fatalIfErr(runErr)
}

func trimCCSuffix(app string) string {
	if len(app) > 3 && app[len(app)-3:] == ".cc" {
		return app[:len(app)-3]
	}
	return app
}
