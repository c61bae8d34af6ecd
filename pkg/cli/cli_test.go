package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/RobLoach/babel/internal/exitcode"
	"github.com/RobLoach/babel/internal/test"
	"github.com/RobLoach/babel/pkg/api"
)

func expectArgs(t *testing.T, osArgs []string, expected Args) {
	t.Helper()
	args, err := ParseArgs(osArgs)
	if err != nil {
		t.Fatal(err.Error())
	}
	test.AssertEqual(t, args.Transform, expected.Transform)
	test.AssertEqual(t, len(args.Files), len(expected.Files))
	for i := range args.Files {
		test.AssertEqual(t, args.Files[i], expected.Files[i])
	}
	test.AssertEqual(t, args.Outfile, expected.Outfile)
	test.AssertEqual(t, args.Outdir, expected.Outdir)
}

func expectArgsError(t *testing.T, osArgs []string, expected string) {
	t.Helper()
	_, err := ParseArgs(osArgs)
	if err == nil {
		t.Fatal("Expected an error")
	}
	test.AssertEqual(t, err.Error(), expected)
}

func defaultTransformOptions() api.TransformOptions {
	return api.TransformOptions{
		ErrorLimit:      10,
		LogLevel:        api.LogLevelInfo,
		HelperNamespace: "babelHelpers",
	}
}

func TestParseArgs(t *testing.T) {
	expectArgs(t, nil, Args{Transform: defaultTransformOptions()})

	options := defaultTransformOptions()
	options.Loose = true
	options.ExternalHelpers = true
	options.HelperNamespace = "h"
	expectArgs(t, []string{"--loose", "--external-helpers", "--helper-namespace=h", "a.js", "--outfile=out.js"},
		Args{Transform: options, Files: []string{"a.js"}, Outfile: "out.js"})

	options = defaultTransformOptions()
	options.Color = api.ColorNever
	options.LogLevel = api.LogLevelSilent
	options.ErrorLimit = 0
	expectArgs(t, []string{"--color=false", "--log-level=silent", "--error-limit=0", "a.js", "b.js", "--outdir=out"},
		Args{Transform: options, Files: []string{"a.js", "b.js"}, Outdir: "out"})

	options = defaultTransformOptions()
	options.Sourcefile = "input.js"
	options.Color = api.ColorAlways
	options.LogLevel = api.LogLevelWarning
	expectArgs(t, []string{"--sourcefile=input.js", "--color=true", "--log-level=warning"}, Args{Transform: options})
}

func TestParseArgsErrors(t *testing.T) {
	expectArgsError(t, []string{"--minify"}, "Invalid flag: \"--minify\"")
	expectArgsError(t, []string{"--color=yes"}, "Invalid color: \"yes\" (valid: false, true)")
	expectArgsError(t, []string{"--log-level=debug"}, "Invalid log level: \"debug\" (valid: info, warning, error, silent)")
	expectArgsError(t, []string{"--error-limit=-1"}, "Invalid error limit: \"-1\"")
	expectArgsError(t, []string{"a.js", "b.js", "--outfile=out.js"}, "Must use \"outdir\" when there are multiple input files")
	expectArgsError(t, []string{"a.js", "--outfile=out.js", "--outdir=out"}, "Cannot use both \"outfile\" and \"outdir\"")
	expectArgsError(t, []string{"a.js", "--sourcefile=b.js"}, "Cannot use \"sourcefile\" with input files")
	expectArgsError(t, []string{"--outdir=out"}, "Cannot use \"outdir\" when reading from stdin")
	expectArgsError(t, []string{"--config="}, "config: empty path")

	// Inputs with the same base name would overwrite each other in the output directory
	expectArgsError(t, []string{"a/x.js", "b/x.js", "--outdir=out"},
		fmt.Sprintf("Two output files share the same path %q (from %q and %q)", filepath.Join("out", "x.js"), "a/x.js", "b/x.js"))
	expectArgsError(t, []string{"x.js", "x.js", "--outdir=out"},
		fmt.Sprintf("Two output files share the same path %q (from %q and %q)", filepath.Join("out", "x.js"), "x.js", "x.js"))
	expectArgs(t, []string{"a/x.js", "b/y.js", "--outdir=out"}, Args{
		Transform: defaultTransformOptions(),
		Files:     []string{"a/x.js", "b/y.js"},
		Outdir:    "out",
	})

	_, err := ParseArgs([]string{"--color=maybe"})
	test.AssertEqual(t, exitcode.Get(err), exitcode.InvalidOptions)
}

func TestParseArgsConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "babel.yaml")
	if err := os.WriteFile(path, []byte("loose: true\nlogLevel: error\nerrorLimit: 3\n"), 0644); err != nil {
		t.Fatal(err.Error())
	}

	options := defaultTransformOptions()
	options.Loose = true
	options.LogLevel = api.LogLevelError
	options.ErrorLimit = 3
	expectArgs(t, []string{"--config=" + path}, Args{Transform: options})

	// Flags win over the config file even when they come first
	options.ErrorLimit = 1
	expectArgs(t, []string{"--error-limit=1", "--config=" + path}, Args{Transform: options})
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.js")
	b := filepath.Join(dir, "b.js")
	if err := os.WriteFile(a, []byte("class A {}"), 0644); err != nil {
		t.Fatal(err.Error())
	}
	if err := os.WriteFile(b, []byte("let b = class extends A {};"), 0644); err != nil {
		t.Fatal(err.Error())
	}

	outdir := filepath.Join(dir, "out")
	test.AssertEqual(t, Run([]string{"--log-level=silent", "--external-helpers", a, b, "--outdir=" + outdir}), exitcode.Success)

	code, err := os.ReadFile(filepath.Join(outdir, "a.js"))
	if err != nil {
		t.Fatal(err.Error())
	}
	test.AssertEqualWithDiff(t, string(code), "let A = function A() {\n  babelHelpers.classCallCheck(this, A);\n};\n")

	code, err = os.ReadFile(filepath.Join(outdir, "b.js"))
	if err != nil {
		t.Fatal(err.Error())
	}
	test.AssertEqualWithDiff(t, string(code), `let b = (function(_A) {
  var _class = function b() {
    babelHelpers.classCallCheck(this, _class);
    babelHelpers.get(Object.getPrototypeOf(_class.prototype), "constructor", this).apply(this, arguments);
  };
  babelHelpers.inherits(_class, _A);
  return _class;
})(A);
`)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.js")
	if err := os.WriteFile(path, []byte("class A { constructor() { super() } }"), 0644); err != nil {
		t.Fatal(err.Error())
	}

	outfile := filepath.Join(dir, "out.js")
	test.AssertEqual(t, Run([]string{"--log-level=silent", path, "--outfile=" + outfile}), exitcode.TransformFailed)

	// Nothing is written when there are errors
	_, err := os.Stat(outfile)
	test.AssertEqual(t, os.IsNotExist(err), true)

	test.AssertEqual(t, Run([]string{"--log-level=silent", filepath.Join(dir, "missing.js")}), exitcode.IOFailed)
	test.AssertEqual(t, Run([]string{"--log-level=silent", "--minify"}), exitcode.InvalidOptions)
}
