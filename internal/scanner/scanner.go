// Package scanner walks the #include graph rooted at one or more
// application source files: it classifies each line with a directive
// evaluator, follows quoted includes to further files, pairs .hh headers
// with .cc sources by name-swap, extracts inline library annotations, and
// records per-file dependency sets that downstream closure queries walk.
package scanner

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/qobs-build/snbuild/internal/directive"
	"github.com/qobs-build/snbuild/internal/orderedset"
	"github.com/qobs-build/snbuild/internal/validate"
)

const maxDepth = 128

// FileDeps is the dependency record for one scanned file.
type FileDeps struct {
	Libraries   *orderedset.Set[string]
	SourceFiles *orderedset.Set[string]
	HeaderFiles *orderedset.Set[string]
}

func newFileDeps() *FileDeps {
	return &FileDeps{
		Libraries:   orderedset.New[string](),
		SourceFiles: orderedset.New[string](),
		HeaderFiles: orderedset.New[string](),
	}
}

// Warnf is called for every non-fatal condition the scanner encounters
// (invalid UTF-8, a not-understood #if guarding an #include, an ignored
// application source). The default is a no-op; callers wire this to their
// diagnostics sink.
type Warnf func(format string, a ...any)

// Scanner owns the macro environment, include search paths, the
// applications set, and the dependency map it accumulates while walking
// include graphs. It is single-threaded and must not be shared across
// goroutines.
type Scanner struct {
	Macros       map[string]string
	IncludePaths []string

	applications *orderedset.Set[string]
	deps         map[string]*FileDeps
	scanOrder    []string // every file key, in first-visit order

	includeRoot string // lazily detected, set at most once per scanner

	Warn Warnf

	// stat is overridable for tests; defaults to checking a regular file
	// exists on the real filesystem.
	stat func(path string) bool
}

// New creates a scanner seeded with a compiler probe's macro environment
// and include search paths.
func New(macros map[string]string, includePaths []string) *Scanner {
	return &Scanner{
		Macros:       macros,
		IncludePaths: includePaths,
		applications: orderedset.New[string](),
		deps:         make(map[string]*FileDeps),
		Warn:         func(string, ...any) {},
		stat:         isRegularFile,
	}
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// AddApplication validates and registers one application source path. It
// must end in ".cc", its components must satisfy the validator grammars,
// it must be relative, and it must not collide with a reserved build
// target. A source with a sibling "<path>.ignore" file is skipped with a
// warning rather than added; re-adding the same path is an error.
func (s *Scanner) AddApplication(path string) error {
	if !strings.HasSuffix(path, ".cc") {
		return fmt.Errorf("path must have \".cc\" extension: %s", path)
	}

	i := strings.LastIndexByte(path, '/')
	dir, base := "", path
	if i >= 0 {
		dir, base = path[:i+1], path[i+1:]
	}
	base = strings.TrimSuffix(base, ".cc")

	if !validate.IsBase(base) {
		return fmt.Errorf("unsupported character in basename: %s", base)
	}
	if !validate.IsDirectory(dir) {
		return fmt.Errorf("unsupported character in path: %s", dir)
	}
	if strings.HasPrefix(dir, "/") {
		return fmt.Errorf("path must be relative: %s", path)
	}
	if validate.IsReservedTarget(dir, base) {
		return fmt.Errorf("reserved target: %s%s", dir, base)
	}
	if strings.HasPrefix(path, ".") && !strings.Contains(path, "/") {
		return fmt.Errorf("a path starting with a dot must include a slash: %s", path)
	}

	if s.stat(path + ".ignore") {
		s.Warn("ignoring application source file: %s[.ignore]", path)
		return nil
	}
	if !s.applications.Insert(path) {
		return fmt.Errorf("duplicate application source file: %s", path)
	}
	return nil
}

// Applications returns the registered application source paths, in
// insertion order.
func (s *Scanner) Applications() []string {
	return s.applications.Items()
}

// Deps returns the dependency record for file, or nil if it has not been
// scanned.
func (s *Scanner) Deps(file string) *FileDeps {
	return s.deps[file]
}

// AllFiles returns every file that has been scanned, in first-visit order.
func (s *Scanner) AllFiles() []string {
	return s.scanOrder
}

// IncludeRoot returns the include root detected while resolving the first
// quoted include, or "" if no quoted include has been seen yet.
func (s *Scanner) IncludeRoot() string {
	return s.includeRoot
}

// ParseRecursive reads file, classifies each line with a fresh directive
// evaluator, and records the sources/headers/libraries it pulls in,
// recursing into every header and twin source it discovers.
//
// It is idempotent: re-entering with a file already present in the
// dependency map is a no-op success (this also breaks cycles).
func (s *Scanner) ParseRecursive(file string, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("maximum recursion depth (%d) exceeded", maxDepth)
	}

	if _, already := s.deps[file]; already {
		return nil
	}
	deps := newFileDeps()
	s.deps[file] = deps
	s.scanOrder = append(s.scanOrder, file)

	contents, err := os.ReadFile(file)
	if err != nil || len(contents) == 0 {
		return fmt.Errorf("file is empty/unreadable: %s", file)
	}
	if !isValidUTF8(contents) {
		s.Warn("file does not pass UTF-8 validation:\n         %s", file)
	}

	eval := directive.New(s.Macros, s.IncludePaths)

	for _, rawLine := range strings.Split(string(contents), "\n") {
		line := strings.TrimSpace(rawLine)

		status := eval.Process(line)
		if status != directive.Compile {
			if status == directive.NotUnderstood && strings.HasPrefix(line, "#include ") {
				s.Warn("ignoring #include directive in #if that is not understood:\n         %s\n         %s", line, file)
			}
			if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
				continue
			}
			break
		}

		switch {
		case strings.HasPrefix(line, `#include "`):
			if err := parseLibraries(line, deps.Libraries); err != nil {
				return fmt.Errorf("parsing failed while parsing: %s: %w", file, err)
			}

			rest := line[len(`#include "`):]
			idx := strings.Index(rest, `.hh"`)
			if idx < 0 {
				continue
			}
			headerPath := rest[:idx+len(".hh")]

			if !validate.IsFilePath(headerPath) {
				return fmt.Errorf("invalid file path: %s", headerPath)
			}

			if s.includeRoot == "" {
				root, ok := s.detectIncludeRoot(headerPath)
				if !ok {
					return fmt.Errorf("failed to detect include path from: %s", headerPath)
				}
				s.includeRoot = root
			}

			fileNext := s.includeRoot + headerPath

			if deps.HeaderFiles.Insert(fileNext) {
				if err := s.ParseRecursive(fileNext, depth+1); err != nil {
					return fmt.Errorf("parsing failed while parsing: %s: %w", file, err)
				}

				sourceNext := strings.TrimSuffix(fileNext, "hh") + "cc"
				if !deps.SourceFiles.Contains(sourceNext) && s.stat(sourceNext) {
					deps.SourceFiles.Insert(sourceNext)
					if err := s.ParseRecursive(sourceNext, depth+1); err != nil {
						return fmt.Errorf("parsing failed while parsing: %s: %w", file, err)
					}
				}
			}
			continue

		case strings.HasPrefix(line, "#include <"):
			if err := parseLibraries(line, deps.Libraries); err != nil {
				return fmt.Errorf("parsing failed while parsing: %s: %w", file, err)
			}
			continue

		case line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//"):
			continue
		}

		break
	}

	return nil
}

// parseLibraries extracts "[#lib:NAME]" annotations from the text
// following the first '[' on an #include line.
func parseLibraries(line string, libraries *orderedset.Set[string]) error {
	pos := strings.IndexByte(line, '[')
	if pos < 0 {
		return nil
	}
	for _, word := range strings.Fields(line[pos:]) {
		if strings.HasPrefix(word, "[#lib:") && strings.HasSuffix(word, "]") {
			name := strings.TrimSuffix(strings.TrimPrefix(word, "[#lib:"), "]")
			if !validate.IsLibrary(name) {
				return fmt.Errorf("invalid library name: %s", name)
			}
			libraries.Insert(name)
		}
	}
	return nil
}

// detectIncludeRoot runs the one-shot include-root probe against a
// relative path that appeared in a quoted include: try "./", then "../"
// through 10 levels of "../", then fall back to $HOME/project/cpp/.
func (s *Scanner) detectIncludeRoot(file string) (string, bool) {
	if strings.HasPrefix(file, "/") {
		return "", false
	}

	root := "./"
	if s.stat(root + file) {
		return root, true
	}

	root = "../"
	for level := 1; level <= 10; level++ {
		if s.stat(root + file) {
			return root, true
		}
		root += "../"
	}

	home := homeDir()
	if home != "" {
		root = strings.TrimSuffix(home, "/") + "/project/cpp/"
		candidate := root + file
		if validate.IsFilePath(candidate) && s.stat(candidate) {
			return root, true
		}
	}

	return "", false
}

func homeDir() string {
	if u, err := user.Current(); err == nil && u.HomeDir != "" {
		return u.HomeDir
	}
	return os.Getenv("HOME")
}

func isValidUTF8(b []byte) bool {
	return strings.ToValidUTF8(string(b), "�") == string(b)
}

// HeaderDependencies returns the transitive closure of header files
// reachable from app.
func (s *Scanner) HeaderDependencies(app string) []string {
	result := orderedset.New[string]()
	s.headerDepsRecursive(app, result)
	return result.Items()
}

func (s *Scanner) headerDepsRecursive(file string, result *orderedset.Set[string]) {
	deps := s.deps[file]
	if deps == nil {
		return
	}
	for _, header := range deps.HeaderFiles.Items() {
		if result.Insert(header) {
			s.headerDepsRecursive(header, result)
		}
	}
}

// SourceDependencies returns the transitive closure of source files
// reachable from app (including app itself), following both source-file
// and header-file edges.
func (s *Scanner) SourceDependencies(app string) []string {
	result := orderedset.New[string]()
	result.Insert(app)
	handled := orderedset.New[string]()
	s.sourceDepsRecursive(app, result, handled)
	return result.Items()
}

func (s *Scanner) sourceDepsRecursive(file string, result, handled *orderedset.Set[string]) {
	deps := s.deps[file]
	if deps == nil {
		return
	}
	for _, source := range deps.SourceFiles.Items() {
		if result.Insert(source) {
			s.sourceDepsRecursive(source, result, handled)
		}
	}
	for _, header := range deps.HeaderFiles.Items() {
		if handled.Insert(header) {
			s.sourceDepsRecursive(header, result, handled)
		}
	}
}

// LibraryDependencies returns the transitive closure of libraries recorded
// on app and everything it pulls in through source and header edges.
func (s *Scanner) LibraryDependencies(app string) []string {
	result := orderedset.New[string]()
	handled := orderedset.New[string]()
	s.libraryDepsRecursive(app, result, handled)
	return result.Items()
}

func (s *Scanner) libraryDepsRecursive(file string, result, handled *orderedset.Set[string]) {
	deps := s.deps[file]
	if deps == nil {
		return
	}
	for _, lib := range deps.Libraries.Items() {
		result.Insert(lib)
	}
	for _, source := range deps.SourceFiles.Items() {
		if handled.Insert(source) {
			s.libraryDepsRecursive(source, result, handled)
		}
	}
	for _, header := range deps.HeaderFiles.Items() {
		if handled.Insert(header) {
			s.libraryDepsRecursive(header, result, handled)
		}
	}
}
