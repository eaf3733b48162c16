// Package emit writes the build script (a classical make-compatible
// makefile) and its sibling .depend file from a fully populated
// dependency map: per-application variables, suffix rules, and the phony
// targets downstream tooling relies on.
package emit

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/qobs-build/snbuild/internal/scanner"
)

// Options configures the emitted makefile's shared variables and mode
// flags. Fuzz and Sanitize are mutually exclusive, matching the original
// driver: fuzz mode's cflags replace rather than add to sanitize's.
type Options struct {
	Compiler       string
	ConfigFile     string
	IncludeRoot    string // "" means the include root was never needed; INC defaults to "./"
	Defines        []string
	Optimize       bool
	Sanitize       bool
	Fuzz           bool
	TimeExecution  bool
	Makefile       string // the makefile's own filename, for "destruct"
	MakefileDepend string // sibling .depend filename, "" disables it
}

const wrapWidth = 90

// Generate renders the makefile text (and, if opts.MakefileDepend is set,
// the .depend text) for every application registered on s, in application
// order.
func Generate(s *scanner.Scanner, opts Options) (makefile string, dependFile string) {
	var mk strings.Builder
	apps := s.Applications()

	mk.WriteString("CC = ")
	if opts.TimeExecution {
		mk.WriteString("time ")
	}
	mk.WriteString(opts.Compiler)
	mk.WriteString("\n")

	mk.WriteString("CFLAGS =")
	if strings.HasPrefix(opts.Compiler, "clang") {
		mk.WriteString(" --config " + opts.ConfigFile)
	} else {
		mk.WriteString(" @" + opts.ConfigFile)
	}
	if opts.Optimize {
		mk.WriteString(" -O2")
	}

	var cflags []string
	if opts.Fuzz {
		cflags = append(cflags,
			"-fsanitize=fuzzer,address,undefined,integer",
			"-fno-sanitize-recover=all",
			"-DFUZZING_BUILD_MODE_UNSAFE_FOR_PRODUCTION",
		)
	} else if opts.Sanitize {
		cflags = append(cflags,
			"-fsanitize=address,undefined,integer",
			"-fno-sanitize-recover=all",
		)
	}
	for _, macro := range opts.Defines {
		cflags = append(cflags, "-D"+macro)
	}
	for _, f := range cflags {
		mk.WriteString("\\\n\t\t " + f)
	}
	mk.WriteString("\n")

	if opts.IncludeRoot != "" {
		mk.WriteString("INC = -iquote " + opts.IncludeRoot + "\n")
	} else {
		mk.WriteString("INC = -iquote ./\n")
	}

	mk.WriteString("LINK = -L/usr/local/lib/\n")

	if runtime.GOOS == "freebsd" && opts.MakefileDepend != "" {
		mk.WriteString("\n.MAKE.DEPENDFILE=" + opts.MakefileDepend + "\n")
	}

	var phony []string

	for i, app := range apps {
		executable := strings.TrimSuffix(app, ".cc")

		fmt.Fprintf(&mk, "\nAPP%d = %s\n", i, executable)

		mk.WriteString(fmt.Sprintf("SRC%d = ", i))
		sources := s.SourceDependencies(app)
		mk.WriteString(strings.Join(sources, "\\\n\t   "))
		mk.WriteString("\n")

		fmt.Fprintf(&mk, "OBJ%d = $(SRC%d:.cc=.o)\n", i, i)

		mk.WriteString(fmt.Sprintf("LIB%d =", i))
		for _, lib := range s.LibraryDependencies(app) {
			mk.WriteString(" -l" + lib)
		}
		mk.WriteString("\n")
	}

	mk.WriteString("\n# Suffixes (how to build object files).\n")
	mk.WriteString("# First line deletes all previously specified suffixes.\n")
	mk.WriteString(".SUFFIXES:\n")
	mk.WriteString(".SUFFIXES: .cc .o\n")
	mk.WriteString(".cc.o:\n")
	mk.WriteString("\t$(CC) $(CFLAGS) $(INC) -c -o $@ $<\n")

	phony = append(phony, "all")
	var all strings.Builder
	all.WriteString("all:")
	for i := range apps {
		fmt.Fprintf(&all, " $(APP%d)", i)
	}
	mk.WriteString("\n" + wrapWords(all.String(), wrapWidth, " \\\n\t ") + "\n")

	for i := range apps {
		fmt.Fprintf(&mk, "\n$(APP%d): ${OBJ%d}\n", i, i)
		fmt.Fprintf(&mk, "\t$(CC) $(CFLAGS) -o $(APP%d) $(OBJ%d) $(LINK) $(LIB%d)\n", i, i, i)
	}

	phony = append(phony, "clean-executables")
	mk.WriteString("\nclean-executables:\n")
	for i := range apps {
		fmt.Fprintf(&mk, "\trm -f $(APP%d)\n", i)
	}

	phony = append(phony, "clean-object-files")
	mk.WriteString("\nclean-object-files:\n")
	for i := range apps {
		fmt.Fprintf(&mk, "\trm -f $(OBJ%d)\n", i)
	}

	phony = append(phony, "clean")
	mk.WriteString("\nclean: clean-object-files clean-executables\n")

	if !opts.Fuzz {
		phony = append(phony, "destruct")
		mk.WriteString("\ndestruct: clean\n")
		mk.WriteString("\trm -f " + opts.destructFiles())
		mk.WriteString("\n")

		phony = append(phony, "run")
		mk.WriteString("\nrun: all\n")
		for i := range apps {
			fmt.Fprintf(&mk, "\t./$(APP%d)\n", i)
		}
	} else {
		phony = append(phony, "destruct")
		mk.WriteString("\ndestruct: clean\n")
		mk.WriteString("\trm -f " + opts.destructFiles())
		mk.WriteString("\n")
		for i := range apps {
			fmt.Fprintf(&mk, "\trm -rf $(APP%d).corpus\n", i)
		}

		var minimize, compress, run strings.Builder
		tarcmd := tarCommand(runtime.GOOS)

		for _, app := range apps {
			dir, base := splitPath(app)
			base = strings.TrimSuffix(base, ".cc")

			cdDirAnd := ""
			if dir != "" {
				cdDirAnd = "cd " + dir + " && "
			}

			fmt.Fprintf(&minimize, "\t@test ! -e %s%s.corpus.old || \\\n", dir, base)
			fmt.Fprintf(&minimize, "\t\t(echo 'Error: Directory exists: %s%s.corpus.old'; exit 1;)\n", dir, base)
			fmt.Fprintf(&minimize, "\tmv %s%s.corpus %s%s.corpus.old\n", dir, base, dir, base)
			fmt.Fprintf(&minimize, "\tmkdir %s%s.corpus\n", dir, base)
			fmt.Fprintf(&minimize, "\t%s./%s -merge=1 %s.corpus %s.corpus.old\n", cdDirAnd, base, base, base)
			fmt.Fprintf(&minimize, "\trm -rf %s%s.corpus.old\n", dir, base)

			fmt.Fprintf(&compress, "\trm -f %s%s.corpus.tar.gz\n", dir, base)
			fmt.Fprintf(&compress, "\t%s%s%s.corpus.tar.gz %s.corpus\n", cdDirAnd, tarcmd, base, base)
			fmt.Fprintf(&compress, "\trm -rf %s%s.corpus\n", dir, base)

			fmt.Fprintf(&run, "\t@test -d %s%s.corpus || test ! -e %s%s.corpus.tar.gz || \\\n", dir, base, dir, base)
			fmt.Fprintf(&run, "\t\t(echo '%star -xzf %s.corpus.tar.gz' && \\\n", cdDirAnd, base)
			fmt.Fprintf(&run, "\t\t%star -xzf %s.corpus.tar.gz)\n", cdDirAnd, base)
			fmt.Fprintf(&run, "\t@test -d %s%s.corpus || \\\n", dir, base)
			fmt.Fprintf(&run, "\t\t(echo 'mkdir %s%s.corpus' && mkdir %s%s.corpus)\n", dir, base, dir, base)
			fmt.Fprintf(&run, "\t%s./%s -rss_limit_mb=3072 -timeout=5", cdDirAnd, base)
			if len(apps) > 1 {
				run.WriteString(" -max_total_time=900")
			}
			fmt.Fprintf(&run, " %s.corpus/\n", base)
		}

		phony = append(phony, "minimize-corpus", "compress-corpus", "run")

		mk.WriteString("\nminimize-corpus: all\n" + minimize.String())
		mk.WriteString("\ncompress-corpus: minimize-corpus\n" + compress.String())
		mk.WriteString("\nrun: all\n" + run.String())
	}

	mk.WriteString("\n.PHONY:")
	for _, t := range phony {
		mk.WriteString(" " + t)
	}
	mk.WriteString("\n")

	if runtime.GOOS != "freebsd" && opts.MakefileDepend != "" {
		mk.WriteString("\n-include " + opts.MakefileDepend + "\n")
	}

	var depend string
	if opts.MakefileDepend != "" {
		depend = dependencyList(s)
	}

	return mk.String(), depend
}

func (o Options) destructFiles() string {
	if o.MakefileDepend != "" {
		return o.Makefile + " " + o.MakefileDepend
	}
	return o.Makefile
}

func tarCommand(goos string) string {
	switch goos {
	case "freebsd":
		return "tar -cz --gid 0 --uid 0 -f "
	case "linux":
		return "tar -cz --owner=0 --group=0 -f "
	default:
		return "tar -czf "
	}
}

func splitPath(path string) (dir, base string) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", path
	}
	return path[:i+1], path[i+1:]
}

// dependencyList builds the .depend sibling file: one "<obj>: <file>
// <headers...>" line per scanned .cc file, word-wrapped at wrapWidth
// columns.
func dependencyList(s *scanner.Scanner) string {
	var out strings.Builder
	for _, file := range s.AllFiles() {
		if !strings.HasSuffix(file, ".cc") {
			continue
		}
		obj := strings.TrimSuffix(file, ".cc") + ".o"
		fmt.Fprintf(&out, "%s: %s", obj, file)
		for _, header := range s.HeaderDependencies(file) {
			out.WriteString(" " + header)
		}
		out.WriteString("\n")
	}
	return wrapLines(out.String(), wrapWidth, " \\\n  ")
}
