// This API exposes the class lowering transform to Go code. It's used by the
// command-line tool and can also be called directly.
//
// Transform takes the source code of a single file as a string and returns
// the same code with every class rewritten into ES5-style constructor
// functions. Any errors are reported in the result instead of panicking.
//
// Example usage:
//
//	package main
//
//	import (
//	    "fmt"
//	    "os"
//
//	    "github.com/RobLoach/babel/pkg/api"
//	)
//
//	func main() {
//	    js := "class Foo extends Bar { x = 1 }"
//
//	    result := api.Transform(js, api.TransformOptions{
//	        Loose: true,
//	    })
//
//	    if len(result.Errors) > 0 {
//	        os.Exit(1)
//	    }
//
//	    fmt.Printf("%s", result.Code)
//	}
package api

type Location struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

type Message struct {
	Text     string
	Location *Location
}

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type LogLevel uint8

const (
	LogLevelSilent LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

////////////////////////////////////////////////////////////////////////////////
// Transform API

type TransformOptions struct {
	Color      StderrColor
	ErrorLimit int
	LogLevel   LogLevel

	// Use property assignments instead of property descriptors where possible
	Loose bool

	// Refer to "HelperNamespace.inherits" and friends instead of declaring
	// the helpers at the top of the output. The namespace defaults to
	// "babelHelpers".
	ExternalHelpers bool
	HelperNamespace string

	// The file name used in error messages
	Sourcefile string
}

type TransformResult struct {
	Errors   []Message
	Warnings []Message

	Code []byte
}

func Transform(input string, options TransformOptions) TransformResult {
	return transformImpl(input, options)
}

////////////////////////////////////////////////////////////////////////////////
// Helpers API

// The names of the runtime helpers that the transform may refer to. With
// "ExternalHelpers" these are expected to be properties of the namespace
// object (e.g. "babelHelpers.classCallCheck").
func HelperNames() []string {
	return helperNamesImpl()
}

// Returns the source code of a helper as a single expression. This can be used
// to build the namespace object for "ExternalHelpers".
func HelperCode(name string) (string, bool) {
	return helperCodeImpl(name)
}
