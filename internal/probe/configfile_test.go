package probe

import (
	"os"
	"testing"
)

func TestConfigFileName(t *testing.T) {
	if got := ConfigFileName("clang++"); got != ".clang" {
		t.Errorf("clang++ -> %s, want .clang", got)
	}
	if got := ConfigFileName("g++-12"); got != ".gcc" {
		t.Errorf("g++-12 -> %s, want .gcc", got)
	}
}

func TestFindConfigFileCurrentDir(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, ok := FindConfigFile("clang++"); ok {
		t.Fatal("expected no config file in an empty directory")
	}

	if err := os.WriteFile(".clang", []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	path, ok := FindConfigFile("clang++")
	if !ok || path != "./.clang" {
		t.Errorf("FindConfigFile = %q, %v; want \"./.clang\", true", path, ok)
	}
}

func TestFindConfigFileParentDir(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(root+"/.gcc", []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(root+"/sub", 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(root + "/sub")

	path, ok := FindConfigFile("g++")
	if !ok || path != "../.gcc" {
		t.Errorf("FindConfigFile = %q, %v; want \"../.gcc\", true", path, ok)
	}
}
