package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qobs-build/snbuild/internal/config"
	"github.com/qobs-build/snbuild/internal/emit"
	"github.com/qobs-build/snbuild/internal/msg"
	"github.com/qobs-build/snbuild/internal/probe"
)

var (
	genFlags       commonFlags
	genFuzz        bool
	genMakefile    string
	genAllProfiles bool
)

var genCmd = &cobra.Command{
	Use:   "gen [options] [--] app.cc [...]",
	Short: "Scan and emit a persistent makefile and .depend file",
	Args:  cobra.MinimumNArgs(1),
	Run:   doGen,
}

func init() {
	addCommonFlags(genCmd, &genFlags)
	genCmd.Flags().BoolVarP(&genFuzz, "fuzz", "z", false, "Emit fuzz-mode corpus targets (mutually exclusive with --sanitize)")
	genCmd.Flags().StringVarP(&genMakefile, "makefile", "f", "makefile", "Name of the makefile to emit")
	genCmd.Flags().BoolVar(&genAllProfiles, "all-profiles", false, "Probe every .snbuild.toml profile concurrently before generating")
}

func doGen(cmd *cobra.Command, args []string) {
	if _, err := os.Stat(genMakefile); err == nil {
		fatalIfErr(fmt.Errorf("%s already exists", genMakefile))
	}
	dependFile := genMakefile + ".depend"
	if _, err := os.Stat(dependFile); err == nil {
		fatalIfErr(fmt.Errorf("%s already exists", dependFile))
	}

	if genAllProfiles {
		probeAllConfiguredProfiles(genFlags)
	}

	s, opts, err := setup(context.Background(), genFlags, args)
	fatalIfErr(err)

	opts.Makefile = genMakefile
	opts.MakefileDepend = dependFile
	opts.Fuzz = genFuzz
	if genFuzz {
		opts.Sanitize = false
	}

	mk, depend := emit.Generate(s, opts)
	fatalIfErr(os.WriteFile(genMakefile, []byte(mk), 0o644))
	fatalIfErr(os.WriteFile(dependFile, []byte(depend), 0o644))

	msg.Info("wrote %s and %s", genMakefile, dependFile)
}

// probeAllConfiguredProfiles fans out a compiler probe per .snbuild.toml
// profile (falling back to the built-in debug/release pair if the file is
// absent or names none), so a --all-profiles invocation fails fast if the
// compiler can't be probed, before the makefile gets written. Every profile
// is probed with the same compiler, config file and -o setting; a profile's
// own optimize/sanitize values are not applied to its probe.
func probeAllConfiguredProfiles(flags commonFlags) {
	env := config.NewEnv()
	cfg, err := config.ParseFile(config.FileName, env)
	if err != nil {
		cfg = &config.Config{Profile: map[string]config.ProfileSection{"debug": {}, "release": {Optimize: true}}}
	}
	profiles := cfg.Profiles()

	configFile, found := probe.FindConfigFile(flags.compiler)
	if !found {
		fatalIfErr(fmt.Errorf("%s config not found (searched ./ and up to 9 levels of ../)", probe.ConfigFileName(flags.compiler)))
	}
	results, err := probe.ProbeAll(context.Background(), flags.compiler, configFile, flags.optimize, profiles)
	fatalIfErr(err)

	msg.Info("probed %d profile(s) successfully: %v", len(results), profiles)
}
