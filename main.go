// The main package for the pageinfo executable.
package main

import (
	"github.com/JakeFAU/pageinfo/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
