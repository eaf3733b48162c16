// Package fetch resolves a ".snbuild.toml" [fetch.<name>] entry into a
// local directory by cloning a git remote, so that a third-party include
// root that is not locally present can be added to the include search
// paths used by __has_include. Quoted includes are not resolved against
// the cloned directory.
package fetch

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

var shortcuts = map[string]string{
	"gh:": "https://github.com/",
	"gl:": "https://gitlab.com/",
	"bb:": "https://bitbucket.org/",
	"sr:": "https://sr.ht/",
	"cb:": "https://codeberg.org/",
}

const gitPrefix = "git:"

// CacheDir is the directory, relative to the project root, into which
// remote include roots are cloned.
const CacheDir = ".snbuild-cache"

// Resolve ensures name's remote source (URL, which must start with a
// shortcut like "gh:" or with "git:", optionally followed by "@branch" and
// "#commit-or-tag") is present under CacheDir/name, cloning it if absent,
// and returns that local path. An already-populated cache directory is
// reused as-is without re-cloning.
func Resolve(url, ref, name string) (string, error) {
	dest := CacheDir + "/" + name + "/"

	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return dest, nil
	}

	switch {
	case strings.HasPrefix(url, gitPrefix):
		return cloneGitRepo(url[len(gitPrefix):], ref, dest)
	default:
		for shortcut, base := range shortcuts {
			if strings.HasPrefix(url, shortcut) {
				return cloneGitRepo(base+url[len(shortcut):], ref, dest)
			}
		}
	}

	return "", fmt.Errorf("unsupported fetch source %q: expected a %q prefix or a shortcut (gh:, gl:, bb:, sr:, cb:)", url, gitPrefix)
}

type gitURL struct {
	cleanURL    string
	branch      string
	commitOrTag string
}

// parseGitURL splits "someone/something@branch#commit-or-tag" into its
// parts, defaulting to the clean URL with a ".git" suffix ensured.
func parseGitURL(rawURL string) (res gitURL) {
	parts := strings.SplitN(rawURL, "#", 2)
	baseURL := parts[0]
	if len(parts) == 2 {
		res.commitOrTag = parts[1]
	}

	parts = strings.SplitN(baseURL, "@", 2)
	res.cleanURL = parts[0]
	if len(parts) == 2 {
		res.branch = parts[1]
	}

	if !strings.HasSuffix(res.cleanURL, ".git") {
		res.cleanURL += ".git"
	}

	return
}

// cloneGitRepo clones url into dest (shallowly unless a commit or tag is
// given), optionally pinning a branch
// (ref, or the "@branch" embedded in url) and checking out a specific
// commit or tag (the "#commit-or-tag" embedded in url).
func cloneGitRepo(url, ref, dest string) (string, error) {
	parsed := parseGitURL(url)
	if ref != "" && parsed.branch == "" {
		parsed.branch = ref
	}

	cloneOptions := &git.CloneOptions{
		URL:               parsed.cleanURL,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}

	if parsed.commitOrTag == "" {
		cloneOptions.Depth = 1
	}
	if parsed.branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(parsed.branch)
		cloneOptions.SingleBranch = true
	}

	repo, err := git.PlainClone(dest, cloneOptions)
	if err != nil {
		return dest, fmt.Errorf("clone %s: %w", parsed.cleanURL, err)
	}

	if parsed.commitOrTag != "" {
		w, err := repo.Worktree()
		if err != nil {
			return dest, fmt.Errorf("could not get worktree: %w", err)
		}

		hash, err := repo.ResolveRevision(plumbing.Revision(parsed.commitOrTag))
		if err != nil {
			return dest, fmt.Errorf("could not resolve revision %q: %w", parsed.commitOrTag, err)
		}

		if err := w.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
			return dest, fmt.Errorf("failed to checkout %q: %w", parsed.commitOrTag, err)
		}
	}

	return dest, nil
}
