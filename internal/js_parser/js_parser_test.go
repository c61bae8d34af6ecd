package js_parser

import (
	"fmt"
	"testing"

	"github.com/RobLoach/babel/internal/js_printer"
	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/internal/test"
)

func msgsToText(msgs []logger.Msg) string {
	text := ""
	for _, msg := range msgs {
		if msg.Location == nil {
			text += fmt.Sprintf("%s: %s\n", msg.Kind.String(), msg.Text)
		} else {
			text += fmt.Sprintf("%s:%d:%d: %s: %s\n", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Kind.String(), msg.Text)
		}
	}
	return text
}

func expectParseError(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		_, ok := Parse(log, test.SourceForTest(contents))
		test.AssertEqualWithDiff(t, msgsToText(log.Done()), expected)
		test.AssertEqual(t, ok, false)
	})
}

// The exact position that the grammar's error recovery settles on isn't
// important, only that exactly one error is reported
func expectSyntaxError(t *testing.T, contents string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		_, ok := Parse(log, test.SourceForTest(contents))
		msgs := log.Done()
		test.AssertEqual(t, ok, false)
		test.AssertEqual(t, len(msgs), 1)
		test.AssertEqual(t, msgs[0].Kind, logger.Error)
	})
}

func expectPrinted(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		tree, ok := Parse(log, test.SourceForTest(contents))
		test.AssertEqualWithDiff(t, msgsToText(log.Done()), "")
		if !ok {
			t.Fatal("Parse error")
		}
		js := js_printer.Print(tree, js_printer.Options{}).JS
		test.AssertEqualWithDiff(t, string(js), expected)
	})
}

func TestStatements(t *testing.T) {
	expectPrinted(t, "var a = 1", "var a = 1;\n")
	expectPrinted(t, "let a = 1, b", "let a = 1, b;\n")
	expectPrinted(t, "const {a, b: [c]} = d", "const { a, b: [c] } = d;\n")
	expectPrinted(t, "if (a) b(); else c()", "if (a)\n  b();\nelse\n  c();\n")
	expectPrinted(t, "while (a) { b() }", "while (a) {\n  b();\n}\n")
	expectPrinted(t, "for (let i = 0; i < 10; i++) {}", "for (let i = 0; i < 10; i++) {\n}\n")
	expectPrinted(t, "for (const x of y) z(x)", "for (const x of y)\n  z(x);\n")
	expectPrinted(t, "for (var k in o) {}", "for (var k in o) {\n}\n")
	expectPrinted(t, "try { a() } catch (e) { b(e) } finally { c() }",
		"try {\n  a();\n} catch (e) {\n  b(e);\n} finally {\n  c();\n}\n")
	expectPrinted(t, "switch (x) { case 1: a(); break; default: b() }",
		"switch (x) {\n  case 1:\n    a();\n    break;\n  default:\n    b();\n}\n")
	expectPrinted(t, "foo: for (;;) { continue foo }", "foo:\n  for (;;) {\n    continue foo;\n  }\n")
	expectPrinted(t, "throw new Error('x')", "throw new Error(\"x\");\n")
	expectPrinted(t, "import a from 'a'", "import a from 'a'\n")
	expectPrinted(t, "export { a }", "export { a }\n")
}

func TestDirectives(t *testing.T) {
	expectPrinted(t, "'use strict'; a()", "\"use strict\";\na();\n")
	expectPrinted(t, "a(); 'not a directive'", "a();\n\"not a directive\";\n")
	expectPrinted(t, "function f() { 'use strict' }", "function f() {\n  \"use strict\";\n}\n")
}

func TestComments(t *testing.T) {
	expectPrinted(t, "// header\n'use strict'\nfoo()", "// header\n\"use strict\";\nfoo();\n")
	expectPrinted(t, "function f() {\n    /* a\n       b */\n    return\n}", "function f() {\n  /* a\n     b */\n  return;\n}\n")
	expectPrinted(t, "switch (x) { case 1: /* one */ a() }", "switch (x) {\n  case 1:\n    /* one */\n    a();\n}\n")
	expectPrinted(t, "class A {\n  /* m */ m() {}\n  // x\n  x = 1\n}", "class A {\n  /* m */\n  m() {\n  }\n  // x\n  x = 1;\n}\n")

	// Only comments that stand where a statement or a class member could go
	// are kept
	expectPrinted(t, "f(/* a */ 1)", "f(1);\n")
}

func TestExpressions(t *testing.T) {
	expectPrinted(t, "a = b + c * d", "a = b + c * d;\n")
	expectPrinted(t, "(a + b) * c", "(a + b) * c;\n")
	expectPrinted(t, "a ? b : c", "a ? b : c;\n")
	expectPrinted(t, "a, b, c", "a, b, c;\n")
	expectPrinted(t, "x += typeof y", "x += typeof y;\n")
	expectPrinted(t, "i++; --j", "i++;\n--j;\n")
	expectPrinted(t, "a?.b.c", "a?.b.c;\n")
	expectPrinted(t, "(a?.b).c", "(a?.b).c;\n")
	expectPrinted(t, "a[b]", "a[b];\n")
	expectPrinted(t, "new Foo", "new Foo();\n")
	expectPrinted(t, "f(...args)", "f(...args);\n")
	expectPrinted(t, "[a, , b]", "[a, , b];\n")
	expectPrinted(t, "x = {a, b: 1, [c]: 2, ...d}", "x = { a, b: 1, [c]: 2, ...d };\n")
	expectPrinted(t, "x = {get a() { return 1 }}", "x = { get a() {\n  return 1;\n} };\n")
	expectPrinted(t, "x = `a${b}c`", "x = `a${b}c`;\n")
	expectPrinted(t, "tag`a`", "tag`a`;\n")
	expectPrinted(t, "x = /a/g", "x = /a/g;\n")
	expectPrinted(t, "x = 10n", "x = 10n;\n")
	expectPrinted(t, "[a, b] = [b, a]", "[a, b] = [b, a];\n")
	expectPrinted(t, "x = new.target", "x = new.target;\n")
}

func TestFunctions(t *testing.T) {
	expectPrinted(t, "function f(a, b = 1, ...c) {}", "function f(a, b = 1, ...c) {\n}\n")
	expectPrinted(t, "async function* f() { yield* g(); await h() }",
		"async function* f() {\n  yield* g();\n  await h();\n}\n")
	expectPrinted(t, "x = function () {}", "x = function() {\n};\n")
	expectPrinted(t, "x = a => a + 1", "x = (a) => a + 1;\n")
	expectPrinted(t, "x = async (a, b) => { return a }", "x = async (a, b) => {\n  return a;\n};\n")
	expectPrinted(t, "x = () => ({})", "x = () => ({});\n")
}

func TestClasses(t *testing.T) {
	expectPrinted(t, "class Foo extends Bar { constructor() { super() } static x = 1; y; get z() { return 1 } }",
		"class Foo extends Bar {\n  constructor() {\n    super();\n  }\n  static x = 1;\n  y;\n  get z() {\n    return 1;\n  }\n}\n")
	expectPrinted(t, "x = class { 'a b'() {} }", "x = class {\n  \"a b\"() {\n  }\n};\n")
	expectPrinted(t, "class Foo { static async *[a]() {} }", "class Foo {\n  static async *[a]() {\n  }\n}\n")
	expectPrinted(t, "@dec class Foo { @prop x = 1 }", "@dec\nclass Foo {\n  @prop\n  x = 1;\n}\n")
	expectPrinted(t, "export default class {}", "export default (class {\n});\n")
	expectPrinted(t, "export class Foo {}", "export class Foo {\n}\n")
}

func TestStrings(t *testing.T) {
	expectPrinted(t, "x = 'a\"b'", "x = \"a\\\"b\";\n")
	expectPrinted(t, "x = '\\x41\\u0042\\u{43}'", "x = \"ABC\";\n")
	expectPrinted(t, "x = '\\uD83D\\uDE00'", "x = \"\U0001F600\";\n")
	expectPrinted(t, "x = 'a\\\nb'", "x = \"ab\";\n")
}

func TestNumbers(t *testing.T) {
	expectPrinted(t, "x = 0x10", "x = 16;\n")
	expectPrinted(t, "x = 0b101", "x = 5;\n")
	expectPrinted(t, "x = 0o17", "x = 15;\n")
	expectPrinted(t, "x = 1_000", "x = 1000;\n")
	expectPrinted(t, "x = 1e21", "x = 1e21;\n")
	expectPrinted(t, "x = .5", "x = 0.5;\n")
}

func TestDecodeEscapes(t *testing.T) {
	check := func(input string, expected string) {
		t.Helper()
		value, ok := decodeEscapes(input)
		test.AssertEqual(t, ok, true)
		test.AssertEqual(t, value, expected)
	}

	check(`abc`, "abc")
	check(`\n\t\r\b\f\v`, "\n\t\r\b\f\v")
	check(`\0`, "\x00")
	check(`\101`, "A")
	check(`\'\"\\`, "'\"\\")
	check("\u00E9", "\u00E9")
	check(`\u{1F600}`, "\U0001F600")
	check("\U0001F600", "\U0001F600")
	check(`\uD83D`, "\uFFFD")
	check(`\uDE00x`, "\uFFFDx")

	_, ok := decodeEscapes(`\x4`)
	test.AssertEqual(t, ok, false)
	_, ok = decodeEscapes(`\u{110000}`)
	test.AssertEqual(t, ok, false)
}

func TestParseNumericLiteral(t *testing.T) {
	check := func(input string, expected float64) {
		t.Helper()
		value, ok := parseNumericLiteral(input)
		test.AssertEqual(t, ok, true)
		test.AssertEqual(t, value, expected)
	}

	check("0", 0)
	check("123", 123)
	check("1.5", 1.5)
	check("1e3", 1000)
	check("0xFF", 255)
	check("0777", 511)
	check("089", 89)
	check("0x10000000000000000", 18446744073709551616)
}

func TestSyntaxErrors(t *testing.T) {
	expectSyntaxError(t, "x = (")
	expectSyntaxError(t, "}")
	expectSyntaxError(t, "let x = ;")
}

func TestUnsupportedSyntax(t *testing.T) {
	expectParseError(t, "class Foo { #x = 1 }", "<stdin>:1:12: error: Private names are not supported\n")
	expectParseError(t, "x = a.#b", "<stdin>:1:6: error: Unsupported syntax: private property identifier\n")
}
