package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/RobLoach/babel/internal/config"
	"github.com/RobLoach/babel/internal/exitcode"
	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/pkg/api"
)

func transformOptionsFromConfig(c config.Config) api.TransformOptions {
	options := api.TransformOptions{
		ErrorLimit:      c.ErrorLimit,
		Loose:           c.Loose,
		ExternalHelpers: c.ExternalHelpers,
		HelperNamespace: c.HelperNamespace,
	}

	switch c.Color {
	case logger.ColorNever:
		options.Color = api.ColorNever
	case logger.ColorAlways:
		options.Color = api.ColorAlways
	}

	options.LogLevel = apiLogLevel(c.LogLevel)
	return options
}

func apiLogLevel(level logger.LogLevel) api.LogLevel {
	switch level {
	case logger.LevelInfo:
		return api.LogLevelInfo
	case logger.LevelWarning:
		return api.LogLevelWarning
	case logger.LevelError:
		return api.LogLevelError
	default:
		return api.LogLevelSilent
	}
}

func parseArgsImpl(osArgs []string) (Args, error) {
	args, err := parseArgs(osArgs)
	return args, exitcode.Set(err, exitcode.InvalidOptions)
}

func parseArgs(osArgs []string) (Args, error) {
	// The config file provides the defaults for everything else
	c := config.Default()
	for _, arg := range osArgs {
		if strings.HasPrefix(arg, "--config=") {
			loaded, err := config.LoadFile(arg[len("--config="):])
			if err != nil {
				return Args{}, err
			}
			c = loaded
		}
	}
	args := Args{Transform: transformOptionsFromConfig(c)}
	options := &args.Transform

	for _, arg := range osArgs {
		switch {
		case strings.HasPrefix(arg, "--config="):
			// Handled above

		case arg == "--loose":
			options.Loose = true

		case arg == "--external-helpers":
			options.ExternalHelpers = true

		case strings.HasPrefix(arg, "--helper-namespace="):
			options.HelperNamespace = arg[len("--helper-namespace="):]

		case strings.HasPrefix(arg, "--sourcefile="):
			options.Sourcefile = arg[len("--sourcefile="):]

		case strings.HasPrefix(arg, "--outfile="):
			args.Outfile = arg[len("--outfile="):]

		case strings.HasPrefix(arg, "--outdir="):
			args.Outdir = arg[len("--outdir="):]

		case strings.HasPrefix(arg, "--error-limit="):
			value := arg[len("--error-limit="):]
			limit, err := strconv.Atoi(value)
			if err != nil || limit < 0 {
				return Args{}, fmt.Errorf("Invalid error limit: %q", value)
			}
			options.ErrorLimit = limit

		// Make sure this stays in sync with "PrintErrorToStderr"
		case strings.HasPrefix(arg, "--color="):
			value := arg[len("--color="):]
			switch value {
			case "false":
				options.Color = api.ColorNever
			case "true":
				options.Color = api.ColorAlways
			default:
				return Args{}, fmt.Errorf("Invalid color: %q (valid: false, true)", value)
			}

		// Make sure this stays in sync with "PrintErrorToStderr"
		case strings.HasPrefix(arg, "--log-level="):
			value := arg[len("--log-level="):]
			level, ok := config.ParseLogLevel(value)
			if !ok {
				return Args{}, fmt.Errorf("Invalid log level: %q (valid: info, warning, error, silent)", value)
			}
			options.LogLevel = apiLogLevel(level)

		case !strings.HasPrefix(arg, "-"):
			args.Files = append(args.Files, arg)

		default:
			return Args{}, fmt.Errorf("Invalid flag: %q", arg)
		}
	}

	if args.Outfile != "" && args.Outdir != "" {
		return Args{}, fmt.Errorf("Cannot use both \"outfile\" and \"outdir\"")
	}
	if len(args.Files) > 1 && args.Outfile != "" {
		return Args{}, fmt.Errorf("Must use \"outdir\" when there are multiple input files")
	}
	if len(args.Files) > 0 && options.Sourcefile != "" {
		return Args{}, fmt.Errorf("Cannot use \"sourcefile\" with input files")
	}
	if len(args.Files) == 0 && args.Outdir != "" {
		return Args{}, fmt.Errorf("Cannot use \"outdir\" when reading from stdin")
	}

	// Files are written to the output directory under their base name
	if args.Outdir != "" {
		inputForPath := make(map[string]string)
		for _, file := range args.Files {
			path := outdirPath(args.Outdir, file)
			if previous, ok := inputForPath[path]; ok {
				return Args{}, fmt.Errorf("Two output files share the same path %q (from %q and %q)", path, previous, file)
			}
			inputForPath[path] = file
		}
	}

	return args, nil
}

func outdirPath(outdir string, input string) string {
	return filepath.Join(outdir, filepath.Base(input))
}

type inputFile struct {
	path     string
	contents string
}

type outputFile struct {
	path     string
	contents []byte
}

// This is returned after the transform has already logged its errors
var errTransformFailed = errors.New("Transform failed")

func runImpl(osArgs []string) int {
	err := run(osArgs)
	if err != nil && err != errTransformFailed {
		logger.PrintErrorToStderr(osArgs, err.Error())
	}
	return exitcode.Get(err)
}

func run(osArgs []string) error {
	args, err := parseArgsImpl(osArgs)
	if err != nil {
		return err
	}

	// Read the input
	var inputs []inputFile
	if len(args.Files) == 0 {
		bytes, err := io.ReadAll(os.Stdin)
		if err != nil {
			return exitcode.Set(fmt.Errorf("Could not read from stdin: %s", err.Error()), exitcode.IOFailed)
		}
		inputs = append(inputs, inputFile{path: args.Transform.Sourcefile, contents: string(bytes)})
	} else {
		for _, path := range args.Files {
			bytes, err := os.ReadFile(path)
			if err != nil {
				return exitcode.Set(fmt.Errorf("Could not read from file: %s", err.Error()), exitcode.IOFailed)
			}
			inputs = append(inputs, inputFile{path: path, contents: string(bytes)})
		}
	}

	// Each file is transformed independently so they can all run in parallel
	results := make([]api.TransformResult, len(inputs))
	waitGroup := sync.WaitGroup{}
	for i, input := range inputs {
		waitGroup.Add(1)
		go func(i int, input inputFile) {
			defer waitGroup.Done()
			options := args.Transform
			options.Sourcefile = input.path
			results[i] = api.Transform(input.contents, options)
		}(i, input)
	}
	waitGroup.Wait()

	// Stop now if there were errors
	for _, result := range results {
		if len(result.Errors) > 0 {
			return errTransformFailed
		}
	}

	// Write the output
	for _, output := range outputFiles(args, inputs, results) {
		if output.path == "" {
			if _, err := os.Stdout.Write(output.contents); err != nil {
				return exitcode.Set(fmt.Errorf("Failed to write to stdout: %s", err.Error()), exitcode.IOFailed)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(output.path), 0755); err != nil {
			return exitcode.Set(fmt.Errorf("Failed to create output directory: %s", err.Error()), exitcode.IOFailed)
		}
		if err := os.WriteFile(output.path, output.contents, 0644); err != nil {
			return exitcode.Set(fmt.Errorf("Failed to write to output file: %s", err.Error()), exitcode.IOFailed)
		}
	}

	return nil
}

// An empty path means stdout
func outputFiles(args Args, inputs []inputFile, results []api.TransformResult) []outputFile {
	outputs := make([]outputFile, len(results))
	for i, result := range results {
		switch {
		case args.Outdir != "":
			outputs[i] = outputFile{path: outdirPath(args.Outdir, inputs[i].path), contents: result.Code}
		case args.Outfile != "":
			outputs[i] = outputFile{path: args.Outfile, contents: result.Code}
		default:
			outputs[i] = outputFile{contents: result.Code}
		}
	}
	return outputs
}
