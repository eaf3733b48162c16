package cmd

import "testing"

func TestEffectiveVerbose(t *testing.T) {
	cases := []struct {
		verbose       int
		timeExecution bool
		want          int
	}{
		{0, false, 0},
		{0, true, 1},
		{2, false, 2},
		{1, true, 1},
		{5, false, 3},
		{5, true, 3},
	}
	for _, c := range cases {
		f := commonFlags{verbose: c.verbose, timeExecution: c.timeExecution}
		if got := f.effectiveVerbose(); got != c.want {
			t.Errorf("effectiveVerbose(verbose=%d, t=%v) = %d, want %d", c.verbose, c.timeExecution, got, c.want)
		}
	}
}

func TestProfileName(t *testing.T) {
	if got := profileName(commonFlags{optimize: true}); got != "release" {
		t.Errorf("optimize=true -> %s, want release", got)
	}
	if got := profileName(commonFlags{optimize: false}); got != "debug" {
		t.Errorf("optimize=false -> %s, want debug", got)
	}
}

func TestTrimCCSuffix(t *testing.T) {
	if got := trimCCSuffix("app.cc"); got != "app" {
		t.Errorf("trimCCSuffix(app.cc) = %s, want app", got)
	}
	if got := trimCCSuffix("sub/app.cc"); got != "sub/app" {
		t.Errorf("trimCCSuffix(sub/app.cc) = %s, want sub/app", got)
	}
}
