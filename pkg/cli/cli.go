// This package implements the command-line interface. The "main" package
// only deals with flags that need to be handled before anything else runs.
package cli

import (
	"github.com/RobLoach/babel/pkg/api"
)

type Args struct {
	Transform api.TransformOptions

	// The input files. Input is read from stdin if there are none.
	Files []string

	// Where the output goes. Output is written to stdout if neither is set.
	Outfile string
	Outdir  string
}

// Returns the process exit code
func Run(osArgs []string) int {
	return runImpl(osArgs)
}

// The flags are applied on top of the "--config" file if there is one, no
// matter where that flag appears in the argument list
func ParseArgs(osArgs []string) (Args, error) {
	return parseArgsImpl(osArgs)
}
