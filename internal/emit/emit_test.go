package emit

import (
	"os"
	"strings"
	"testing"

	"github.com/qobs-build/snbuild/internal/scanner"
)

func TestGeneratePlainMakefile(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := os.WriteFile("main.cc", []byte(`#include "x.hh" // [#lib:pthread]`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("x.hh", []byte("// leaf\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := scanner.New(map[string]string{}, nil)
	if err := s.AddApplication("main.cc"); err != nil {
		t.Fatal(err)
	}
	if err := s.ParseRecursive("main.cc", 0); err != nil {
		t.Fatal(err)
	}

	mk, depend := Generate(s, Options{
		Compiler:       "clang++",
		ConfigFile:     "./clang++.cfg",
		Makefile:       "makefile",
		MakefileDepend: "",
	})

	for _, want := range []string{
		"CC = clang++",
		"APP0 = main",
		"LIB0 = -lpthread",
		".PHONY:",
		"all:",
		"clean: clean-object-files clean-executables",
	} {
		if !strings.Contains(mk, want) {
			t.Errorf("makefile missing %q:\n%s", want, mk)
		}
	}
	if depend != "" {
		t.Errorf("expected no .depend output, got %q", depend)
	}
}

func TestGenerateFuzzModeIsMutuallyExclusiveWithSanitize(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := os.WriteFile("fuzz.cc", []byte("// leaf\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := scanner.New(map[string]string{}, nil)
	if err := s.AddApplication("fuzz.cc"); err != nil {
		t.Fatal(err)
	}
	if err := s.ParseRecursive("fuzz.cc", 0); err != nil {
		t.Fatal(err)
	}

	mk, _ := Generate(s, Options{
		Compiler:   "clang++",
		ConfigFile: "./clang++.cfg",
		Makefile:   "makefile",
		Fuzz:       true,
		Sanitize:   true,
	})

	if !strings.Contains(mk, "-fsanitize=fuzzer,address,undefined,integer") {
		t.Error("expected fuzzer sanitize flags")
	}
	if strings.Contains(mk, "-fsanitize=address,undefined,integer\\") {
		t.Error("plain sanitize flags should not also be present in fuzz mode")
	}
	if !strings.Contains(mk, "minimize-corpus: all") {
		t.Error("expected minimize-corpus target in fuzz mode")
	}
	if !strings.Contains(mk, "compress-corpus: minimize-corpus") {
		t.Error("expected compress-corpus target in fuzz mode")
	}
}

func TestGenerateWithDependFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := os.WriteFile("app.cc", []byte(`#include "x.hh"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("x.hh", []byte("// leaf\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := scanner.New(map[string]string{}, nil)
	if err := s.AddApplication("app.cc"); err != nil {
		t.Fatal(err)
	}
	if err := s.ParseRecursive("app.cc", 0); err != nil {
		t.Fatal(err)
	}

	mk, depend := Generate(s, Options{
		Compiler:       "clang++",
		ConfigFile:     "./clang++.cfg",
		Makefile:       "makefile",
		MakefileDepend: "makefile.depend",
	})

	if !strings.Contains(mk, "-include makefile.depend") {
		t.Error("expected -include directive on non-FreeBSD hosts")
	}
	if !strings.Contains(depend, "app.o: app.cc") {
		t.Errorf(".depend missing app.o rule:\n%s", depend)
	}
}
