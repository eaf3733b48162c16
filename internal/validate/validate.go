// Package validate holds the pure grammar predicates used to accept or
// reject strings as they cross into the dependency-scanning pipeline:
// compiler names, path components, library names, macro identifiers, and
// the reserved build-target list.
package validate

import "strings"

// IsCompiler reports whether s names a known compiler: "clang++" or "g++",
// optionally suffixed with "-devel" or up to two decimal digits.
func IsCompiler(s string) bool {
	rest, ok := cutAny(s, "clang", "g")
	if !ok {
		return false
	}
	if r, ok := strings.CutPrefix(rest, "++-devel"); ok {
		return r == ""
	}
	if r, ok := strings.CutPrefix(rest, "++"); ok {
		return len(r) <= 2 && allDigits(r)
	}
	return false
}

// IsBase reports whether s is a legal filename base: an optional leading
// dot (for hidden files), then alpha, then [A-Za-z0-9._-]*, ending on an
// alphanumeric character.
func IsBase(s string) bool {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return false
	}
	if !isAlpha(s[0]) || !isAlnum(s[len(s)-1]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAlnum(s[i]) && s[i] != '.' && s[i] != '_' && s[i] != '-' {
			return false
		}
	}
	return true
}

// IsDirectory reports whether s is a legal directory path: empty is fine;
// otherwise a leading "/" is allowed once, "./" and repeated "../" prefixes
// are skipped, and every remaining "/"-delimited component must satisfy
// IsBase, with a mandatory trailing slash.
func IsDirectory(s string) bool {
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimPrefix(s, "./")
	for strings.HasPrefix(s, "../") {
		s = s[len("../"):]
	}
	for s != "" {
		i := strings.IndexByte(s, '/')
		if i < 0 {
			return false
		}
		if !IsBase(s[:i]) {
			return false
		}
		s = s[i+1:]
	}
	return true
}

// IsFilePath reports whether s is a legal file path: the trailing
// component (after the last "/") satisfies IsBase, and everything before
// it, including the trailing slash, satisfies IsDirectory.
func IsFilePath(s string) bool {
	i := strings.LastIndexByte(s, '/')
	base := s[i+1:]
	dir := s[:i+1]
	return IsBase(base) && IsDirectory(dir)
}

// IsLibrary reports whether s is a legal library name: length at most 40,
// alpha-first, alphanumeric-last, interior characters [A-Za-z0-9_.-].
func IsLibrary(s string) bool {
	if len(s) == 0 || len(s) > 40 {
		return false
	}
	if !isAlpha(s[0]) || !isAlnum(s[len(s)-1]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAlnum(s[i]) && s[i] != '_' && s[i] != '-' && s[i] != '.' {
			return false
		}
	}
	return true
}

// IsMacro reports whether s is a legal macro identifier: first character
// alpha or underscore, remainder alphanumeric or underscore.
func IsMacro(s string) bool {
	if s == "" {
		return false
	}
	if !isAlpha(s[0]) && s[0] != '_' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isAlnum(s[i]) && s[i] != '_' {
			return false
		}
	}
	return true
}

// reservedTargets is the closed set of phony build-script targets an
// application basename may not collide with when it sits in the root
// directory.
var reservedTargets = map[string]bool{
	"all":                 true,
	"run":                 true,
	"clean":               true,
	"clean-executables":   true,
	"clean-object-files":  true,
	"destruct":            true,
	"minimize-corpus":     true,
	"compress-corpus":     true,
}

// IsReservedTarget reports whether base collides with a generated phony
// target, which is only possible when dir is empty or "./" — in GNU make
// "./targetname" conflicts with "targetname".
func IsReservedTarget(dir, base string) bool {
	if dir != "" && dir != "./" {
		return false
	}
	return reservedTargets[base]
}

func cutAny(s string, prefixes ...string) (rest string, ok bool) {
	for _, p := range prefixes {
		if r, found := strings.CutPrefix(s, p); found {
			return r, true
		}
	}
	return s, false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isAlnum(b byte) bool {
	return isAlpha(b) || (b >= '0' && b <= '9')
}
