package runtime

import (
	"strings"
	"testing"

	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/js_parser"
	"github.com/RobLoach/babel/internal/js_printer"
	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/internal/renamer"
	"github.com/RobLoach/babel/internal/test"
)

func newRegistry(options Options, reserved ...string) *Registry {
	table := renamer.NewTable(js_ast.AST{})
	for _, name := range reserved {
		table.Reserve(name)
	}
	return NewRegistry(table, options)
}

func id(name string) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EIdentifier{Name: name}}
}

func printStmt(stmt js_ast.Stmt) string {
	return string(js_printer.Print(js_ast.AST{Stmts: []js_ast.Stmt{stmt}}, js_printer.Options{}).JS)
}

func printExpr(expr js_ast.Expr) string {
	return string(js_printer.PrintExpr(expr, js_printer.Options{}).JS)
}

func TestHelperCodeParses(t *testing.T) {
	for _, name := range HelperNames() {
		t.Run(name, func(t *testing.T) {
			log := logger.NewDeferLog()
			_, ok := js_parser.Parse(log, test.SourceForTest("var helper = "+helperCode[name]+";"))
			text := ""
			for _, msg := range log.Done() {
				text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
			}
			test.AssertEqualWithDiff(t, text, "")
			test.AssertEqual(t, ok, true)
		})
	}
}

func TestResolveHelper(t *testing.T) {
	r := newRegistry(Options{}, "_get")

	test.AssertEqual(t, printExpr(r.ResolveHelper(ClassCallCheck)), "_classCallCheck")
	test.AssertEqual(t, printExpr(r.ResolveHelper(Get)), "_get2")
	test.AssertEqual(t, printExpr(r.ResolveHelper(CreateDecoratedClass)), "_createDecoratedClass")
	test.AssertEqual(t, printExpr(r.ResolveHelper(ClassCallCheck)), "_classCallCheck")

	test.AssertEqual(t, strings.Join(r.UsedHelpers(), ","), "class-call-check,get,create-decorated-class")

	prelude := r.Prelude()
	test.AssertEqual(t, len(prelude), 3)
	lines := strings.Split(printStmt(prelude[0]), "\n")
	test.AssertEqual(t, lines[0], "var _classCallCheck = function(instance, Constructor) {")
	lines = strings.Split(printStmt(prelude[1]), "\n")
	test.AssertEqual(t, lines[0], "var _get2 = function(object, property, receiver) {")
	lines = strings.Split(printStmt(prelude[2]), "\n")
	test.AssertEqual(t, lines[0], "var _createDecoratedClass = (function() {")
}

func TestExternalHelpers(t *testing.T) {
	r := newRegistry(Options{ExternalHelpers: true})
	test.AssertEqual(t, printExpr(r.ResolveHelper(CreateDecoratedClass)), "babelHelpers.createDecoratedClass")
	test.AssertEqual(t, printExpr(r.ResolveHelper(Inherits)), "babelHelpers.inherits")
	test.AssertEqual(t, len(r.Prelude()), 0)
	test.AssertEqual(t, strings.Join(r.UsedHelpers(), ","), "create-decorated-class,inherits")

	r = newRegistry(Options{ExternalHelpers: true, HelperNamespace: "h"})
	test.AssertEqual(t, printExpr(r.ResolveHelper(ClassCallCheck)), "h.classCallCheck")
}

func TestUnknownHelper(t *testing.T) {
	defer func() {
		test.AssertEqual(t, recover() != nil, true)
	}()
	newRegistry(Options{}).ResolveHelper("to-array")
}

func TestExpandTemplate(t *testing.T) {
	r := newRegistry(Options{})

	test.AssertEqualWithDiff(t, printStmt(r.ExpandTemplate(ClassDecorator, TemplateArgs{
		ClassRef:  id("Foo"),
		Decorator: id("dec"),
	})), "Foo = dec(Foo) || Foo;\n")

	test.AssertEqualWithDiff(t, printStmt(r.ExpandTemplate(ClassSuperConstructorCall, TemplateArgs{
		ClassRef: id("Foo"),
	})), "_get(Object.getPrototypeOf(Foo.prototype), \"constructor\", this).apply(this, arguments);\n")

	test.AssertEqualWithDiff(t, printStmt(r.ExpandTemplate(ClassSuperConstructorCallLoose, TemplateArgs{
		SuperRef: id("_Bar"),
	})), "if (_Bar != null) {\n  _Bar.apply(this, arguments);\n}\n")

	test.AssertEqualWithDiff(t, printStmt(r.ExpandTemplate(CallInstanceDecorator, TemplateArgs{
		Initializers: id("_instanceInitializers"),
		Key:          js_ast.Expr{Data: &js_ast.EString{Value: "foo"}},
	})), "this.foo = _instanceInitializers.foo.call(this);\n")

	test.AssertEqualWithDiff(t, printStmt(r.ExpandTemplate(CallInstanceDecorator, TemplateArgs{
		Initializers: id("_instanceInitializers"),
		Key:          js_ast.Expr{Data: &js_ast.EString{Value: "a-b"}},
	})), "this[\"a-b\"] = _instanceInitializers[\"a-b\"].call(this);\n")

	test.AssertEqualWithDiff(t, printStmt(r.ExpandTemplate(CallInstanceDecorator, TemplateArgs{
		Initializers:  id("_instanceInitializers"),
		Key:           id("key"),
		IsComputedKey: true,
	})), "this[key] = _instanceInitializers[key].call(this);\n")

	test.AssertEqualWithDiff(t, printStmt(r.ExpandTemplate(CallStaticDecorator, TemplateArgs{
		ClassRef:     id("Foo"),
		Initializers: id("_staticInitializers"),
		Key:          js_ast.Expr{Data: &js_ast.EString{Value: "bar"}},
	})), "Foo.bar = _staticInitializers.bar.call(Foo);\n")

	// The strict forwarding call needs "get"
	test.AssertEqual(t, strings.Join(r.UsedHelpers(), ","), "get")
}

func TestExternalName(t *testing.T) {
	test.AssertEqual(t, ExternalName(Inherits), "inherits")
	test.AssertEqual(t, ExternalName(ClassCallCheck), "classCallCheck")
	test.AssertEqual(t, ExternalName(CreateDecoratedClass), "createDecoratedClass")

	code, ok := HelperCode(Get)
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, code[:9], "function(")

	_, ok = HelperCode("to-consumable-array")
	test.AssertEqual(t, ok, false)
}
