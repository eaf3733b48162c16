package validate

import "testing"

func TestIsCompiler(t *testing.T) {
	cases := map[string]bool{
		"clang++":      true,
		"clang++14":    true,
		"clang++-devel": true,
		"g++":          true,
		"g++9":         true,
		"g++123":       false,
		"g++-devel":    true,
		"clang++abc":   false,
		"gcc":          false,
		"":             false,
	}
	for in, want := range cases {
		if got := IsCompiler(in); got != want {
			t.Errorf("IsCompiler(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsBase(t *testing.T) {
	cases := map[string]bool{
		"foo":       true,
		"foo.hh":    true,
		".hidden":   true,
		".":         false,
		"a":         true,
		"a-b_c.d":   true,
		"1abc":      false,
		"foo.":      false,
		"":          false,
	}
	for in, want := range cases {
		if got := IsBase(in); got != want {
			t.Errorf("IsBase(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsDirectory(t *testing.T) {
	cases := map[string]bool{
		"":              true,
		"foo/":          true,
		"/foo/":         true,
		"./foo/":        true,
		"../foo/":       true,
		"../../foo/bar/": true,
		"foo":           false,
		"foo//bar/":     false,
	}
	for in, want := range cases {
		if got := IsDirectory(in); got != want {
			t.Errorf("IsDirectory(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsFilePath(t *testing.T) {
	cases := map[string]bool{
		"foo.hh":         true,
		"snn/example.hh": true,
		"./a/b.cc":       true,
		"a//b.cc":        false,
		"/a.cc":          true,
	}
	for in, want := range cases {
		if got := IsFilePath(in); got != want {
			t.Errorf("IsFilePath(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsLibrary(t *testing.T) {
	if !IsLibrary("pthread") {
		t.Error("pthread should be a valid library name")
	}
	if !IsLibrary("z") {
		t.Error("z should be a valid library name")
	}
	if IsLibrary("1bad") {
		t.Error("1bad should be rejected")
	}
	if IsLibrary("") {
		t.Error("empty string should be rejected")
	}
	long := ""
	for i := 0; i < 41; i++ {
		long += "a"
	}
	if IsLibrary(long) {
		t.Error("41-char name should be rejected")
	}
}

func TestIsMacro(t *testing.T) {
	if !IsMacro("__FreeBSD__") {
		t.Error("__FreeBSD__ should be valid")
	}
	if !IsMacro("_foo") {
		t.Error("_foo should be valid")
	}
	if IsMacro("1foo") {
		t.Error("1foo should be rejected")
	}
}

func TestIsReservedTarget(t *testing.T) {
	if !IsReservedTarget("", "all") {
		t.Error("all in root should be reserved")
	}
	if !IsReservedTarget("./", "run") {
		t.Error("./run should be reserved")
	}
	if IsReservedTarget("sub/", "all") {
		t.Error("sub/all should not be reserved")
	}
	if IsReservedTarget("", "main") {
		t.Error("main should not be reserved")
	}
}
