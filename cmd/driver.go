package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/qobs-build/snbuild/internal/config"
	"github.com/qobs-build/snbuild/internal/emit"
	"github.com/qobs-build/snbuild/internal/fetch"
	"github.com/qobs-build/snbuild/internal/msg"
	"github.com/qobs-build/snbuild/internal/probe"
	"github.com/qobs-build/snbuild/internal/scanner"
	"github.com/qobs-build/snbuild/internal/validate"
)

// setup validates flags and CLI arguments, loads the optional .snbuild.toml
// override file, probes the compiler for its macro/include-path defaults,
// resolves any [fetch] remote include roots, globs extra_sources, and scans
// the full dependency closure rooted at apps. The returned emit.Options has
// every field populated except Makefile/MakefileDepend/Fuzz, which the
// caller fills in for its specific command.
func setup(ctx context.Context, flags commonFlags, apps []string) (*scanner.Scanner, emit.Options, error) {
	if !validate.IsCompiler(flags.compiler) {
		return nil, emit.Options{}, fmt.Errorf("unrecognized compiler: %s", flags.compiler)
	}
	for _, d := range flags.defines {
		name, _, _ := strings.Cut(d, "=")
		if !validate.IsMacro(name) {
			return nil, emit.Options{}, fmt.Errorf("invalid macro name: %s", name)
		}
	}
	if len(apps) == 0 {
		return nil, emit.Options{}, fmt.Errorf("no application source files to process")
	}

	env := config.NewEnv()
	cfg, err := config.ParseFile(config.FileName, env)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, emit.Options{}, fmt.Errorf("parsing %s: %w", config.FileName, err)
		}
		cfg = &config.Config{}
	}

	optimize := flags.optimize
	sanitize := flags.sanitize
	if p, ok := cfg.Profile[profileName(flags)]; ok {
		optimize = optimize || p.Optimize
		sanitize = sanitize || p.Sanitize
	}

	verbose := flags.effectiveVerbose()

	configFile, found := probe.FindConfigFile(flags.compiler)
	if !found {
		return nil, emit.Options{}, fmt.Errorf("%s config not found (searched ./ and up to 9 levels of ../)", probe.ConfigFileName(flags.compiler))
	}
	if verbose > 0 {
		msg.Info("using compiler config file: %s", configFile)
	}

	result, err := probe.Fetch(ctx, flags.compiler, configFile, optimize)
	if err != nil {
		return nil, emit.Options{}, err
	}

	macros := result.Macros
	for name, value := range cfg.Target.Defines {
		macros[name] = value
	}
	for _, d := range flags.defines {
		name, value, _ := strings.Cut(d, "=")
		macros[name] = value
	}

	includePaths := append([]string{}, result.IncludePaths...)
	includePaths = append(includePaths, cfg.Target.IncludePaths...)

	for name, section := range cfg.Fetch {
		dir, err := fetch.Resolve(section.URL, section.Ref, name)
		if err != nil {
			return nil, emit.Options{}, fmt.Errorf("fetch.%s: %w", name, err)
		}
		if verbose > 0 {
			msg.Info("fetched remote include root %s -> %s", name, dir)
		}
		includePaths = append(includePaths, dir)
	}

	s := scanner.New(macros, includePaths)
	s.Warn = msg.Warn

	var extra []string
	for _, pattern := range cfg.Target.ExtraSources {
		matches, err := doublestar.Glob(os.DirFS("."), pattern)
		if err != nil {
			return nil, emit.Options{}, fmt.Errorf("extra_sources pattern %q: %w", pattern, err)
		}
		extra = append(extra, matches...)
	}
	for _, src := range extra {
		if err := s.ParseRecursive(src, 0); err != nil {
			return nil, emit.Options{}, fmt.Errorf("extra source %s: %w", src, err)
		}
	}

	for _, app := range apps {
		if err := s.AddApplication(app); err != nil {
			return nil, emit.Options{}, err
		}
	}

	var bar *msg.ProgressBar
	if verbose > 0 && len(s.Applications()) > 1 {
		bar = msg.NewProgressBar(int64(len(s.Applications())), 2, os.Stderr)
	}
	for _, app := range s.Applications() {
		if err := s.ParseRecursive(app, 0); err != nil {
			return nil, emit.Options{}, err
		}
		if bar != nil {
			// One byte per application, matching the bar's total.
			bar.Write([]byte{0})
		}
	}
	if bar != nil {
		bar.Finish()
	}

	opts := emit.Options{
		Compiler:      flags.compiler,
		ConfigFile:    configFile,
		IncludeRoot:   s.IncludeRoot(),
		Defines:       flags.defines,
		Optimize:      optimize,
		Sanitize:      sanitize,
		TimeExecution: flags.timeExecution,
	}
	return s, opts, nil
}

// profileName picks which .snbuild.toml [profile.*] section's defaults
// apply to a CLI invocation: "release" under -o, "debug" otherwise.
func profileName(flags commonFlags) string {
	if flags.optimize {
		return "release"
	}
	return "debug"
}
