package scanner

import (
	"os"
	"sort"
	"strings"
	"testing"
)

func newTestScanner() *Scanner {
	return New(map[string]string{}, nil)
}

func TestS4LibraryExtraction(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := os.WriteFile("x.hh", []byte("// leaf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("app.cc", []byte(`#include "x.hh" // [#lib:z] [#lib:pthread]`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestScanner()
	if err := s.ParseRecursive("app.cc", 0); err != nil {
		t.Fatalf("ParseRecursive: %v", err)
	}

	libs := append([]string(nil), s.Deps("app.cc").Libraries.Items()...)
	sort.Strings(libs)
	if got := strings.Join(libs, ","); got != "pthread,z" {
		t.Errorf("libraries = %v, want [pthread z]", libs)
	}
}

func TestS4InvalidLibraryName(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := os.WriteFile("app.cc", []byte(`#include "x.hh" // [#lib:1bad]`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestScanner()
	if err := s.ParseRecursive("app.cc", 0); err == nil {
		t.Error("expected error for invalid library name")
	}
}

func TestS5ReservedTarget(t *testing.T) {
	t.Chdir(t.TempDir())

	s := newTestScanner()
	if err := s.AddApplication("all.cc"); err == nil {
		t.Error("expected reserved-target error for all.cc")
	}
	if err := s.AddApplication("sub/all.cc"); err != nil {
		t.Errorf("sub/all.cc should be accepted: %v", err)
	}
}

func TestS6Cycle(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := os.WriteFile("a.hh", []byte(`#include "b.hh"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("b.hh", []byte(`#include "a.hh"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("app.cc", []byte(`#include "a.hh"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestScanner()
	if err := s.ParseRecursive("app.cc", 0); err != nil {
		t.Fatalf("ParseRecursive: %v", err)
	}

	if len(s.deps) != 3 {
		t.Errorf("expected exactly 3 scanned files, got %d: %v", len(s.deps), s.deps)
	}

	headers := s.HeaderDependencies("app.cc")
	if len(headers) != 2 {
		t.Errorf("expected 2 transitive headers, got %d: %v", len(headers), headers)
	}
}

func TestDuplicateApplicationRejected(t *testing.T) {
	t.Chdir(t.TempDir())

	s := newTestScanner()
	if err := s.AddApplication("sub/main.cc"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := s.AddApplication("sub/main.cc"); err == nil {
		t.Error("expected duplicate-application error")
	}
}

func TestTwinSourcePairing(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := os.WriteFile("x.hh", []byte("// leaf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("x.cc", []byte("// impl\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("app.cc", []byte(`#include "x.hh"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestScanner()
	if err := s.ParseRecursive("app.cc", 0); err != nil {
		t.Fatalf("ParseRecursive: %v", err)
	}

	sources := s.SourceDependencies("app.cc")
	want := []string{"app.cc", "./x.cc"}
	if len(sources) != len(want) {
		t.Fatalf("sources = %v, want %v", sources, want)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("sources[%d] = %q, want %q", i, sources[i], want[i])
		}
	}
}
