package probe

import (
	"bufio"
	"strings"
	"testing"
)

// parseOutput is a copy of the two-state reader inside Fetch, run on
// canned compiler output without spawning a subprocess; Fetch itself is
// not called.
func parseOutput(t *testing.T, output string) Result {
	t.Helper()
	res := Result{Macros: map[string]string{}}
	state := maybeDefine
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch state {
		case maybeDefine:
			if rest, ok := strings.CutPrefix(line, "#define "); ok {
				name, value, _ := strings.Cut(rest, " ")
				if name != "" {
					res.Macros[name] = value
				}
			} else if line == includeListStart {
				state = includeList
			}
		case includeList:
			if strings.HasPrefix(line, "/") {
				path := line
				if !strings.HasSuffix(path, "/") {
					path += "/"
				}
				res.IncludePaths = append(res.IncludePaths, path)
			} else {
				state = maybeDefine
			}
		}
	}
	return res
}

func TestParseDefinesAndIncludePaths(t *testing.T) {
	output := "#define __FreeBSD__ 1\n" +
		"#define __STDC__ 1\n" +
		"#include <...> search starts here:\n" +
		" /usr/include/c++/v1\n" +
		" /usr/include\n" +
		"End of search list.\n"

	res := parseOutput(t, output)
	if res.Macros["__FreeBSD__"] != "1" {
		t.Errorf("expected __FreeBSD__=1, got %q", res.Macros["__FreeBSD__"])
	}
	if res.Macros["__STDC__"] != "1" {
		t.Errorf("expected __STDC__=1, got %q", res.Macros["__STDC__"])
	}
	want := []string{"/usr/include/c++/v1/", "/usr/include/"}
	if len(res.IncludePaths) != len(want) {
		t.Fatalf("got %d include paths, want %d: %v", len(res.IncludePaths), len(want), res.IncludePaths)
	}
	for i, p := range want {
		if res.IncludePaths[i] != p {
			t.Errorf("include path %d: got %q, want %q", i, res.IncludePaths[i], p)
		}
	}
}

func TestParseNoMacrosOrPaths(t *testing.T) {
	res := parseOutput(t, "")
	if len(res.Macros) != 0 || len(res.IncludePaths) != 0 {
		t.Error("expected empty result from empty output")
	}
}
