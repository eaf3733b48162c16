package cmd

import (
	"os"
	"os/exec"

	"github.com/qobs-build/snbuild/internal/msg"
)

// runMake invokes "make -f makefile <targets...>", streaming its output
// (indented two spaces) to stderr, and returns an error if it exits
// non-zero.
func runMake(makefile string, verbose int, targets ...string) error {
	args := []string{"-f", makefile}
	if verbose == 0 {
		args = append(args, "-s")
	}
	args = append(args, targets...)

	cmd := exec.Command("make", args...)
	cmd.Stdin = os.Stdin
	out := &msg.IndentWriter{Indent: "  ", W: os.Stderr}
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// runExecutable spawns executable with extraArgs, connecting its standard
// streams directly to the current process's.
func runExecutable(executable string, extraArgs []string) error {
	cmd := exec.Command(executable, extraArgs...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
