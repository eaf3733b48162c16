package fetch

import "testing"

func TestParseGitURL(t *testing.T) {
	cases := []struct {
		in                              string
		wantURL, wantBranch, wantCommit string
	}{
		{"someone/something", "someone/something.git", "", ""},
		{"someone/something@master", "someone/something.git", "master", ""},
		{"someone/something@master#0.1.0", "someone/something.git", "master", "0.1.0"},
		{"someone/something#12345abc", "someone/something.git", "", "12345abc"},
		{"someone/something.git", "someone/something.git", "", ""},
	}
	for _, c := range cases {
		got := parseGitURL(c.in)
		if got.cleanURL != c.wantURL || got.branch != c.wantBranch || got.commitOrTag != c.wantCommit {
			t.Errorf("parseGitURL(%q) = %+v, want {%q %q %q}", c.in, got, c.wantURL, c.wantBranch, c.wantCommit)
		}
	}
}

func TestResolveRejectsUnknownScheme(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Resolve("https://example.com/foo", "", "foo"); err == nil {
		t.Error("expected an error for an unrecognized fetch source")
	}
}
