package probe

import (
	"os"
	"strings"
)

// ConfigFileName returns the conventional compiler-config filename searched
// for by FindConfigFile: ".clang" for clang-family compilers, ".gcc"
// otherwise.
func ConfigFileName(compiler string) string {
	if strings.HasPrefix(compiler, "clang") {
		return ".clang"
	}
	return ".gcc"
}

// FindConfigFile tries "./" and then "../", "../../", ... up to 9 levels of
// "../" looking for the compiler's conventional config file name,
// returning the first match. A
// directory separator is always included (even for the current directory)
// since clang only recognizes "./.clang", not ".clang" bare.
func FindConfigFile(compiler string) (string, bool) {
	name := ConfigFileName(compiler)

	path := "./"
	if candidate := path + name; isRegularFile(candidate) {
		return candidate, true
	}

	path = "../"
	for level := 1; level < 10; level++ {
		if candidate := path + name; isRegularFile(candidate) {
			return candidate, true
		}
		path += "../"
	}

	return "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
