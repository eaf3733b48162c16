// Command snbuild is a dependency-discovery build driver for C++: it scans
// an application's #include graph, derives its dependency closure, and
// drives a generated make-compatible build script from it.
package main

import "github.com/qobs-build/snbuild/cmd"

func main() {
	cmd.Execute()
}
