// Command spartensor is the §6 "performance driver" CLI: it synthesizes
// or loads a sparse tensor, runs CP-ALS against it, and reports fit and
// per-iteration performance, exercising the library end to end.
package main

import "os"

func main() {
	os.Exit(Execute())
}
