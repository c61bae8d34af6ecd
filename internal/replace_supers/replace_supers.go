package replace_supers

import (
	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/internal/runtime"
)

type HelperResolver interface {
	ResolveHelper(name string) js_ast.Expr
}

type Options struct {
	Helpers HelperResolver

	// The constructor of the class being lowered
	ClassRef js_ast.Expr

	// The local that holds the superclass
	SuperRef js_ast.Expr

	// Use plain property accesses on the superclass instead of walking the
	// prototype chain with the "get" and "set" helpers
	IsLoose bool

	// Static members look things up on the superclass itself instead of on
	// its prototype
	IsStatic bool
}

type Error struct {
	Loc  logger.Loc
	Text string
}

func (err *Error) Error() string {
	return err.Text
}

type replacer struct {
	options      Options
	mapper       js_ast.Mapper
	err          *Error
	hasBareSuper bool
}

func newReplacer(options Options) *replacer {
	r := &replacer{options: options}
	r.mapper = js_ast.Mapper{
		Expr: r.expr,
		Stmt: func(stmt js_ast.Stmt) js_ast.Stmt {
			switch stmt.Data.(type) {
			case *js_ast.SFunction, *js_ast.SClass:
				// "super" inside these refers to something else
				return stmt
			}
			return r.mapper.StmtChildren(stmt)
		},
	}
	return r
}

// Rewrites every use of "super" in a method body. Arrow functions are
// entered since they share "super" with the method. The second return value
// is true if the body contains a "super(...)" call.
func ReplaceFn(fn js_ast.Fn, options Options) (js_ast.Fn, bool, error) {
	r := newReplacer(options)
	result := r.mapper.FnChildren(fn)
	if r.err != nil {
		return js_ast.Fn{}, false, r.err
	}
	return result, r.hasBareSuper, nil
}

// Like "ReplaceFn" but for an expression such as a property initializer
func ReplaceExpr(expr js_ast.Expr, options Options) (js_ast.Expr, error) {
	r := newReplacer(options)
	result := r.expr(expr)
	if r.err != nil {
		return js_ast.Expr{}, r.err
	}
	return result, nil
}

func (r *replacer) fail(loc logger.Loc, text string) {
	if r.err == nil {
		r.err = &Error{Loc: loc, Text: text}
	}
}

func superMember(expr js_ast.Expr) bool {
	switch e := expr.Data.(type) {
	case *js_ast.EDot:
		_, ok := e.Target.Data.(*js_ast.ESuper)
		return ok
	case *js_ast.EIndex:
		_, ok := e.Target.Data.(*js_ast.ESuper)
		return ok
	}
	return false
}

func (r *replacer) expr(expr js_ast.Expr) js_ast.Expr {
	switch e := expr.Data.(type) {
	case *js_ast.EFunction, *js_ast.EClass:
		return expr

	case *js_ast.ECall:
		if _, ok := e.Target.Data.(*js_ast.ESuper); ok {
			r.hasBareSuper = true
			return r.callWithThis(expr.Loc, r.superConstructor(e.Target.Loc), r.mapper.Exprs(e.Args))
		}
		if superMember(e.Target) {
			return r.callWithThis(expr.Loc, r.lookup(e.Target), r.mapper.Exprs(e.Args))
		}

	case *js_ast.EDot, *js_ast.EIndex:
		if superMember(expr) {
			return r.lookup(expr)
		}

	case *js_ast.EBinary:
		if e.Op.IsAssign() && superMember(e.Left) {
			return r.assign(expr.Loc, e)
		}

	case *js_ast.EUnary:
		if superMember(e.Value) {
			switch e.Op {
			case js_ast.UnOpPreInc, js_ast.UnOpPreDec:
				return r.preUpdate(expr.Loc, e)
			case js_ast.UnOpPostInc, js_ast.UnOpPostDec:
				if !r.options.IsLoose {
					r.fail(expr.Loc, "Unsupported syntax: postfix update of a super property")
					return expr
				}
			case js_ast.UnOpDelete:
				r.fail(expr.Loc, "Unsupported syntax: delete of a super property")
				return expr
			}
		}
	}

	return r.mapper.ExprChildren(expr)
}

// Returns the key of "super.key" or "super[key]" as an expression
func (r *replacer) key(expr js_ast.Expr) js_ast.Expr {
	switch e := expr.Data.(type) {
	case *js_ast.EDot:
		return js_ast.Expr{Loc: e.NameLoc, Data: &js_ast.EString{Value: e.Name}}
	case *js_ast.EIndex:
		return r.mapper.Expr(e.Index)
	}
	panic("Internal error")
}

// The object that property lookups through "super" start from. Loose mode
// uses the superclass directly, otherwise it's found through the class.
func (r *replacer) home(loc logger.Loc) js_ast.Expr {
	if r.options.IsLoose {
		if r.options.IsStatic {
			return r.options.SuperRef
		}
		return dot(r.options.SuperRef, "prototype", loc)
	}
	target := r.options.ClassRef
	if !r.options.IsStatic {
		target = dot(target, "prototype", loc)
	}
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: dot(js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "Object"}}, "getPrototypeOf", loc),
		Args:   []js_ast.Expr{target},
	}}
}

func (r *replacer) superConstructor(loc logger.Loc) js_ast.Expr {
	if r.options.IsLoose {
		return r.options.SuperRef
	}
	return r.get(loc, js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: "constructor"}})
}

// "_get(HOME, KEY, this)"
func (r *replacer) get(loc logger.Loc, key js_ast.Expr) js_ast.Expr {
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: r.options.Helpers.ResolveHelper(runtime.Get),
		Args:   []js_ast.Expr{r.home(loc), key, {Loc: loc, Data: &js_ast.EThis{}}},
	}}
}

// "_set(HOME, KEY, VALUE, this)"
func (r *replacer) set(loc logger.Loc, key js_ast.Expr, value js_ast.Expr) js_ast.Expr {
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: r.options.Helpers.ResolveHelper(runtime.Set),
		Args:   []js_ast.Expr{r.home(loc), key, value, {Loc: loc, Data: &js_ast.EThis{}}},
	}}
}

func (r *replacer) lookup(expr js_ast.Expr) js_ast.Expr {
	if r.options.IsLoose {
		switch e := expr.Data.(type) {
		case *js_ast.EDot:
			return js_ast.Expr{Loc: expr.Loc, Data: &js_ast.EDot{Target: r.home(expr.Loc), Name: e.Name, NameLoc: e.NameLoc}}
		case *js_ast.EIndex:
			return js_ast.Expr{Loc: expr.Loc, Data: &js_ast.EIndex{Target: r.home(expr.Loc), Index: r.mapper.Expr(e.Index)}}
		}
	}
	return r.get(expr.Loc, r.key(expr))
}

// "TARGET.call(this, ARGS)"
func (r *replacer) callWithThis(loc logger.Loc, target js_ast.Expr, args []js_ast.Expr) js_ast.Expr {
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: dot(target, "call", loc),
		Args:   append([]js_ast.Expr{{Loc: loc, Data: &js_ast.EThis{}}}, args...),
	}}
}

var compoundOps = map[js_ast.OpCode]js_ast.OpCode{
	js_ast.BinOpAddAssign:        js_ast.BinOpAdd,
	js_ast.BinOpSubAssign:        js_ast.BinOpSub,
	js_ast.BinOpMulAssign:        js_ast.BinOpMul,
	js_ast.BinOpDivAssign:        js_ast.BinOpDiv,
	js_ast.BinOpRemAssign:        js_ast.BinOpRem,
	js_ast.BinOpPowAssign:        js_ast.BinOpPow,
	js_ast.BinOpShlAssign:        js_ast.BinOpShl,
	js_ast.BinOpShrAssign:        js_ast.BinOpShr,
	js_ast.BinOpUShrAssign:       js_ast.BinOpUShr,
	js_ast.BinOpBitwiseOrAssign:  js_ast.BinOpBitwiseOr,
	js_ast.BinOpBitwiseAndAssign: js_ast.BinOpBitwiseAnd,
	js_ast.BinOpBitwiseXorAssign: js_ast.BinOpBitwiseXor,
}

func (r *replacer) assign(loc logger.Loc, e *js_ast.EBinary) js_ast.Expr {
	if r.options.IsLoose {
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{Op: e.Op, Left: r.lookup(e.Left), Right: r.mapper.Expr(e.Right)}}
	}

	key := r.key(e.Left)
	value := r.mapper.Expr(e.Right)

	if e.Op != js_ast.BinOpAssign {
		op, ok := compoundOps[e.Op]
		if !ok {
			// The logical assignment operators short-circuit
			r.fail(loc, "Unsupported syntax: logical assignment to a super property")
			return js_ast.Expr{Loc: loc, Data: e}
		}
		value = js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{Op: op, Left: r.get(loc, key), Right: value}}
	}

	return r.set(loc, key, value)
}

// "++super.x" => "_set(HOME, "x", +_get(HOME, "x", this) + 1, this)"
func (r *replacer) preUpdate(loc logger.Loc, e *js_ast.EUnary) js_ast.Expr {
	if r.options.IsLoose {
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: e.Op, Value: r.lookup(e.Value)}}
	}

	key := r.key(e.Value)
	op := js_ast.BinOpAdd
	if e.Op == js_ast.UnOpPreDec {
		op = js_ast.BinOpSub
	}
	current := js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPos, Value: r.get(loc, key)}}
	value := js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{Op: op, Left: current, Right: js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Value: 1}}}}
	return r.set(loc, key, value)
}

func dot(target js_ast.Expr, name string, loc logger.Loc) js_ast.Expr {
	return js_ast.Expr{Loc: loc, Data: &js_ast.EDot{Target: target, Name: name, NameLoc: loc}}
}
