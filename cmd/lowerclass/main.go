package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/pkg/cli"
)

const lowerclassVersion = "0.1.0"

const helpText = `
Usage:
  lowerclass [options] [input files]

Options:
  --loose                   Assign methods to the prototype and call the
                            superclass directly instead of using descriptors
  --external-helpers        Refer to helpers on a global object instead of
                            declaring them in each file
  --helper-namespace=...    The global object for --external-helpers
                            (default babelHelpers)
  --outfile=...             The output file (for one input file)
  --outdir=...              The output directory (for multiple input files)
  --config=...              Read options from a YAML file; flags override it
  --color=...               Force use of color terminal escapes (true or false)

Advanced options:
  --version                 Print the current version and exit (` + lowerclassVersion + `)
  --sourcefile=...          Set the file name used in errors (for stdin)
  --error-limit=...         Maximum error count or 0 to disable (default 10)
  --log-level=...           Disable logging (info, warning, error, silent)
  --trace=...               Write a CPU trace to this file
  --cpuprofile=...          Write a CPU profile to this file

Config file keys:
  loose, externalHelpers, helperNamespace, logLevel, color, errorLimit

Examples:
  # Provide input via stdin, get output via stdout
  lowerclass < input.js > output.js

  # Lower several files into the "lib" directory
  lowerclass src/a.js src/b.js --outdir=lib --loose
`

func main() {
	osArgs := os.Args[1:]
	traceFile := ""
	cpuprofileFile := ""

	// Do an initial scan over the argument list
	argsEnd := 0
	for _, arg := range osArgs {
		switch {
		// Show help if a common help flag is provided
		case arg == "-h", arg == "-help", arg == "--help", arg == "/?":
			fmt.Fprintf(os.Stderr, "%s\n", helpText)
			os.Exit(0)

		// Special-case the version flag here
		case arg == "--version":
			fmt.Fprintf(os.Stderr, "%s\n", lowerclassVersion)
			os.Exit(0)

		case strings.HasPrefix(arg, "--trace="):
			traceFile = arg[len("--trace="):]

		case strings.HasPrefix(arg, "--cpuprofile="):
			cpuprofileFile = arg[len("--cpuprofile="):]

		default:
			// Strip any arguments that were handled above
			osArgs[argsEnd] = arg
			argsEnd++
		}
	}
	osArgs = osArgs[:argsEnd]

	// Print help text when there are no arguments
	if len(osArgs) == 0 && logger.GetTerminalInfo(os.Stdin).IsTTY {
		fmt.Fprintf(os.Stderr, "%s\n", helpText)
		os.Exit(0)
	}

	// Capture the defer statements below so the profiles are flushed before
	// the process exits
	exitCode := 1
	func() {
		// To view a CPU trace, use "go tool trace [file]"
		if traceFile != "" {
			f, err := os.Create(traceFile)
			if err != nil {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Failed to create trace file: %s", err.Error()))
				return
			}
			defer f.Close()
			trace.Start(f)
			defer trace.Stop()
		}

		// To view a CPU profile, drop the file into https://speedscope.app
		if cpuprofileFile != "" {
			f, err := os.Create(cpuprofileFile)
			if err != nil {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Failed to create cpuprofile file: %s", err.Error()))
				return
			}
			defer f.Close()
			pprof.StartCPUProfile(f)
			defer pprof.StopCPUProfile()
		}

		exitCode = cli.Run(osArgs)
	}()

	os.Exit(exitCode)
}
