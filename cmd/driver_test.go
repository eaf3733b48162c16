package cmd

import (
	"context"
	"strings"
	"testing"
)

func TestSetupFailsWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	flags := commonFlags{compiler: "clang++"}
	_, _, err := setup(context.Background(), flags, []string{"app.cc"})
	if err == nil {
		t.Fatal("expected an error when no .clang config file is present")
	}
	if !strings.Contains(err.Error(), "config not found") {
		t.Errorf("err = %q, want it to mention \"config not found\"", err.Error())
	}
}
