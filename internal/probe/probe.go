// Package probe runs the configured compiler in a mode that makes it dump
// its predefined macros and system include search paths, and parses that
// output into the two collections the rest of the build driver consumes.
package probe

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one compiler probe: its predefined macros and
// its system include search paths, in the order the compiler reported them.
type Result struct {
	Macros       map[string]string
	IncludePaths []string
}

const includeListStart = "#include <...> search starts here:"

// Fetch runs compiler (optionally with a --config/@configFile compiler
// config file, and -O2 when optimize is set) in a mode that dumps its
// predefined macros and include search paths on the combined
// stdout+stderr stream, and parses the result.
//
// Fails if the subprocess exits non-zero, or if either collection ends up
// empty — a compiler that reports nothing is indistinguishable from one
// that failed silently.
func Fetch(ctx context.Context, compiler, configFile string, optimize bool) (Result, error) {
	args := []string{}
	if configFile != "" {
		if strings.HasPrefix(compiler, "clang") {
			args = append(args, "--config", configFile)
		} else {
			args = append(args, "@"+configFile)
		}
	}
	if optimize {
		args = append(args, "-O2")
	}
	args = append(args, "-v", "-x", "c++", "/dev/null", "-dM", "-E")

	cmd := exec.CommandContext(ctx, compiler, args...)
	out, err := cmd.CombinedOutput()
	// A non-zero exit is only fatal once we've tried to parse the output:
	// some compilers still emit complete macro/include data before
	// returning a non-success status on a throwaway /dev/null compile.
	runErr := err

	res := Result{Macros: map[string]string{}}

	state := maybeDefine
	sc := bufio.NewScanner(strings.NewReader(string(out)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch state {
		case maybeDefine:
			if rest, ok := strings.CutPrefix(line, "#define "); ok {
				name, value, _ := strings.Cut(rest, " ")
				if name != "" {
					res.Macros[name] = value
				}
			} else if line == includeListStart {
				state = includeList
			}
		case includeList:
			if strings.HasPrefix(line, "/") {
				path := line
				if !strings.HasSuffix(path, "/") {
					path += "/"
				}
				res.IncludePaths = append(res.IncludePaths, path)
			} else {
				state = maybeDefine
			}
		}
	}

	if len(res.Macros) == 0 || len(res.IncludePaths) == 0 {
		if runErr != nil {
			return Result{}, fmt.Errorf("probe %s: %w", compiler, runErr)
		}
		return Result{}, fmt.Errorf("probe %s: compiler reported no macros or no include paths", compiler)
	}
	if runErr != nil {
		return Result{}, fmt.Errorf("probe %s: exited with error: %w", compiler, runErr)
	}

	return res, nil
}

type parseState int

const (
	maybeDefine parseState = iota
	includeList
)

// ProbeAll runs Fetch once per named profile, concurrently, bounded by the
// number of available CPUs, since each probe is an independent,
// side-effect-free subprocess call. The returned map is keyed by profile
// name; a failure on any single profile aborts the whole group. Every
// probe receives the same compiler, configFile and optimize arguments: the
// profile name only labels the result.
func ProbeAll(ctx context.Context, compiler, configFile string, optimize bool, profiles []string) (map[string]Result, error) {
	results := make(map[string]Result, len(profiles))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, profile := range profiles {
		profile := profile
		g.Go(func() error {
			r, err := Fetch(gctx, compiler, configFile, optimize)
			if err != nil {
				return fmt.Errorf("profile %s: %w", profile, err)
			}
			mu.Lock()
			results[profile] = r
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
