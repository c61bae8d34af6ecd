package runtime

import (
	"strings"

	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/logger"
)

// Template names for "ExpandTemplate"
const (
	// "REF = DECORATOR(REF) || REF;"
	ClassDecorator = "class-decorator"

	// The call that forwards constructor arguments to the superclass when a
	// derived class has no constructor of its own
	ClassSuperConstructorCall      = "class-super-constructor-call"
	ClassSuperConstructorCallLoose = "class-super-constructor-call-loose"

	// "this.KEY = INITIALIZERS.KEY.call(this);"
	CallInstanceDecorator = "call-instance-decorator"

	// "REF.KEY = INITIALIZERS.KEY.call(REF);"
	CallStaticDecorator = "call-static-decorator"
)

type Minter interface {
	MintUniqueIdentifier(base string) string
}

type Options struct {
	// Refer to helpers as members of a global object instead of emitting
	// their code into the file
	ExternalHelpers bool

	// Defaults to "babelHelpers"
	HelperNamespace string
}

// Tracks which helpers a compilation unit refers to. Each helper is given a
// name the first time it's needed and keeps it from then on.
type Registry struct {
	minter  Minter
	options Options
	names   map[string]string
	used    []string
}

func NewRegistry(minter Minter, options Options) *Registry {
	if options.HelperNamespace == "" {
		options.HelperNamespace = "babelHelpers"
	}
	return &Registry{
		minter:  minter,
		options: options,
		names:   make(map[string]string),
	}
}

// Returns an expression that evaluates to the helper function
func (r *Registry) ResolveHelper(name string) js_ast.Expr {
	if _, ok := helperCode[name]; !ok {
		panic("Internal error: unknown helper " + name)
	}

	if r.options.ExternalHelpers {
		if _, ok := r.names[name]; !ok {
			r.names[name] = ExternalName(name)
			r.used = append(r.used, name)
		}
		return js_ast.Expr{Data: &js_ast.EDot{
			Target: js_ast.Expr{Data: &js_ast.EIdentifier{Name: r.options.HelperNamespace}},
			Name:   r.names[name],
		}}
	}

	ref, ok := r.names[name]
	if !ok {
		ref = r.minter.MintUniqueIdentifier(name)
		r.names[name] = ref
		r.used = append(r.used, name)
	}
	return js_ast.Expr{Data: &js_ast.EIdentifier{Name: ref}}
}

// Returns the names of the helpers that have been resolved so far in the
// order they were first used
func (r *Registry) UsedHelpers() []string {
	return append([]string{}, r.used...)
}

// Returns the declarations of every helper that has been resolved. This is
// empty when helpers are external.
func (r *Registry) Prelude() []js_ast.Stmt {
	if r.options.ExternalHelpers {
		return nil
	}
	stmts := make([]js_ast.Stmt, 0, len(r.used))
	for _, name := range r.used {
		stmts = append(stmts, js_ast.Stmt{Data: &js_ast.SVerbatim{
			Text: "var " + r.names[name] + " = " + helperCode[name] + ";",
		}})
	}
	return stmts
}

type TemplateArgs struct {
	// The class (or the constructor function standing in for it)
	ClassRef js_ast.Expr

	// The local the superclass was bound to
	SuperRef js_ast.Expr

	Decorator    js_ast.Expr
	Initializers js_ast.Expr

	Key           js_ast.Expr
	IsComputedKey bool

	Loc logger.Loc
}

// Builds one of the statement templates above
func (r *Registry) ExpandTemplate(name string, args TemplateArgs) js_ast.Stmt {
	var value js_ast.Expr

	switch name {
	case ClassDecorator:
		value = js_ast.Assign(
			withLoc(args.ClassRef, args.Loc),
			js_ast.Expr{Loc: args.Loc, Data: &js_ast.EBinary{
				Op:    js_ast.BinOpLogicalOr,
				Left:  js_ast.Expr{Loc: args.Loc, Data: &js_ast.ECall{Target: args.Decorator, Args: []js_ast.Expr{args.ClassRef}}},
				Right: args.ClassRef,
			}},
		)

	case ClassSuperConstructorCall:
		// _get(Object.getPrototypeOf(REF.prototype), "constructor", this).apply(this, arguments);
		proto := js_ast.Expr{Loc: args.Loc, Data: &js_ast.ECall{
			Target: dot(js_ast.Expr{Loc: args.Loc, Data: &js_ast.EIdentifier{Name: "Object"}}, "getPrototypeOf"),
			Args:   []js_ast.Expr{dot(args.ClassRef, "prototype")},
		}}
		get := js_ast.Expr{Loc: args.Loc, Data: &js_ast.ECall{
			Target: withLoc(r.ResolveHelper(Get), args.Loc),
			Args: []js_ast.Expr{
				proto,
				{Loc: args.Loc, Data: &js_ast.EString{Value: "constructor"}},
				{Loc: args.Loc, Data: &js_ast.EThis{}},
			},
		}}
		value = applyThisArguments(get, args.Loc)

	case ClassSuperConstructorCallLoose:
		// if (SUPER != null) { SUPER.apply(this, arguments); }
		return js_ast.Stmt{Loc: args.Loc, Data: &js_ast.SIf{
			Test: js_ast.Expr{Loc: args.Loc, Data: &js_ast.EBinary{
				Op:    js_ast.BinOpLooseNe,
				Left:  args.SuperRef,
				Right: js_ast.Expr{Loc: args.Loc, Data: &js_ast.ENull{}},
			}},
			Yes: js_ast.Stmt{Loc: args.Loc, Data: &js_ast.SBlock{Stmts: []js_ast.Stmt{{
				Loc:  args.Loc,
				Data: &js_ast.SExpr{Value: applyThisArguments(args.SuperRef, args.Loc)},
			}}}},
		}}

	case CallInstanceDecorator:
		this := js_ast.Expr{Loc: args.Loc, Data: &js_ast.EThis{}}
		value = js_ast.Assign(
			js_ast.MemberAccess(this, withLoc(args.Key, args.Loc), args.IsComputedKey),
			callInitializer(args, this),
		)

	case CallStaticDecorator:
		value = js_ast.Assign(
			js_ast.MemberAccess(args.ClassRef, withLoc(args.Key, args.Loc), args.IsComputedKey),
			callInitializer(args, args.ClassRef),
		)

	default:
		panic("Internal error: unknown template " + name)
	}

	return js_ast.Stmt{Loc: args.Loc, Data: &js_ast.SExpr{Value: value}}
}

// "INITIALIZERS.KEY.call(RECEIVER)"
func callInitializer(args TemplateArgs, receiver js_ast.Expr) js_ast.Expr {
	initializer := js_ast.MemberAccess(args.Initializers, withLoc(args.Key, args.Loc), args.IsComputedKey)
	return js_ast.Expr{Loc: args.Loc, Data: &js_ast.ECall{
		Target: dot(initializer, "call"),
		Args:   []js_ast.Expr{receiver},
	}}
}

// "TARGET.apply(this, arguments)"
func applyThisArguments(target js_ast.Expr, loc logger.Loc) js_ast.Expr {
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: dot(target, "apply"),
		Args: []js_ast.Expr{
			{Loc: loc, Data: &js_ast.EThis{}},
			{Loc: loc, Data: &js_ast.EIdentifier{Name: "arguments"}},
		},
	}}
}

func dot(target js_ast.Expr, name string) js_ast.Expr {
	return js_ast.Expr{Loc: target.Loc, Data: &js_ast.EDot{Target: target, Name: name, NameLoc: target.Loc}}
}

func withLoc(expr js_ast.Expr, loc logger.Loc) js_ast.Expr {
	if expr.Loc == (logger.Loc{}) {
		expr.Loc = loc
	}
	return expr
}

// The property name of a helper on the namespace object when helpers are
// external: "create-decorated-class" => "createDecoratedClass"
func ExternalName(name string) string {
	sb := strings.Builder{}
	upperNext := false
	for _, c := range name {
		if c == '-' {
			upperNext = true
			continue
		}
		if upperNext && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upperNext = false
		sb.WriteRune(c)
	}
	return sb.String()
}
