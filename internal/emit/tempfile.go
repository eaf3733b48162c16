package emit

import (
	"fmt"
	"math/rand/v2"
	"os"
)

// TempMakefileName generates a name of the form "tmp-XXXXXXXX.mk" not
// already present in the current directory, trying up to 10 times before
// giving up — matching the original driver's "u32 has over 4 billion
// values, this should never happen" assumption.
func TempMakefileName() (string, error) {
	for range 10 {
		name := fmt.Sprintf("tmp-%08x.mk", rand.Uint32())
		if _, err := os.Stat(name); os.IsNotExist(err) {
			return name, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique temporary makefile name after 10 tries")
}
