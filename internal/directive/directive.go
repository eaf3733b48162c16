// Package directive implements the conditional-compilation state machine:
// a line-at-a-time consumer of trimmed source lines that tracks nested
// #if/#elif/#else/#endif blocks and reports, per line, whether the current
// position is live (State: Compile), dead (Skip), or outside the tiny
// expression grammar this evaluator understands (NotUnderstood).
package directive

import (
	"os"
	"strings"

	"github.com/qobs-build/snbuild/internal/validate"
)

// State is the evaluator's verdict for a given line.
type State int

const (
	Compile State = iota
	Skip
	NotUnderstood
)

func (s State) String() string {
	switch s {
	case Compile:
		return "compile"
	case Skip:
		return "skip"
	default:
		return "not_understood"
	}
}

type frame struct {
	state   State
	handled bool
}

// Evaluator holds the state for one file's worth of conditional-compilation
// evaluation. It must not be reused across files — each scanned file gets
// its own instance.
type Evaluator struct {
	macros       map[string]string
	includePaths []string

	stack   []frame
	state   State
	handled bool
}

// New creates an evaluator seeded with the given macro environment and
// include search paths. Neither is copied; callers must not mutate them
// concurrently with Process.
func New(macros map[string]string, includePaths []string) *Evaluator {
	return &Evaluator{
		macros:       macros,
		includePaths: includePaths,
		state:        Compile,
	}
}

// Process consumes one trimmed source line and returns the resulting
// state. Lines that are not directives (don't start with '#') or whose
// directive keyword is not one of if/elif/else/endif leave the state
// unchanged.
func (e *Evaluator) Process(trimmedLine string) State {
	rest, ok := strings.CutPrefix(trimmedLine, "#")
	if !ok {
		return e.state
	}

	rest = skipSpace(rest)
	token, rest := popLowerAlpha(rest)
	rest = skipSpace(rest)

	switch token {
	case "if":
		e.stack = append(e.stack, frame{e.state, e.handled})
		e.handled = true
		if e.state == Compile {
			e.state = e.parseExpression(rest)
			if e.state == Skip {
				e.handled = false
			}
		}
	case "elif":
		if !e.handled {
			e.state = e.parseExpression(rest)
			if e.state != Skip {
				e.handled = true
			}
		} else if e.state == Compile {
			e.state = Skip
		}
	case "else":
		if !e.handled {
			e.state = Compile
			e.handled = true
		} else if e.state == Compile {
			e.state = Skip
		}
	case "endif":
		if n := len(e.stack); n > 0 {
			p := e.stack[n-1]
			e.stack = e.stack[:n-1]
			e.state = p.state
			e.handled = p.handled
		}
	}

	return e.state
}

func (e *Evaluator) parseExpression(rest string) State {
	negation := false
	if r, ok := strings.CutPrefix(rest, "!"); ok {
		negation = true
		rest = r
	}

	if arg, ok := strings.CutPrefix(rest, "defined("); ok {
		i := strings.IndexByte(arg, ')')
		if i < 0 {
			return NotUnderstood
		}
		macro, tail := arg[:i], arg[i:]
		if !validate.IsMacro(macro) {
			return NotUnderstood
		}
		tail, ok = strings.CutPrefix(tail, ")")
		if !ok || tail != "" {
			return NotUnderstood
		}
		_, defined := e.macros[macro]
		return resolve(defined, negation)
	}

	if arg, ok := strings.CutPrefix(rest, "__has_include(<"); ok {
		i := strings.IndexByte(arg, '>')
		if i < 0 {
			return NotUnderstood
		}
		include, tail := arg[:i], arg[i:]
		if !validate.IsFilePath(include) {
			return NotUnderstood
		}
		tail, ok = strings.CutPrefix(tail, ">)")
		if !ok || tail != "" {
			return NotUnderstood
		}
		return resolve(e.hasInclude(include), negation)
	}

	return NotUnderstood
}

func resolve(truth, negation bool) State {
	if truth != negation {
		return Compile
	}
	return Skip
}

func (e *Evaluator) hasInclude(include string) bool {
	for _, path := range e.includePaths {
		info, err := os.Stat(path + include)
		if err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}

func skipSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}

func popLowerAlpha(s string) (token, rest string) {
	i := 0
	for i < len(s) && s[i] >= 'a' && s[i] <= 'z' {
		i++
	}
	return s[:i], s[i:]
}
