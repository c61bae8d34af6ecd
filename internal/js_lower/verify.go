package js_lower

import (
	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/logger"
)

// Where the first "super()" call of a constructor is. The path points to the
// statement containing the call and is nil if there is no such call. A call
// inside an arrow function only runs when the arrow does, so in that case the
// call itself is the anchor and "arrowCall" is set.
type superAnchor struct {
	path      js_ast.StmtPath
	arrowCall *js_ast.ECall
}

// Checks the rules for "super()" and "this" in a constructor. Nested
// functions are skipped since they have their own "this" but arrow functions
// are entered.
type constructorVerifier struct {
	mapper     js_ast.Mapper
	path       js_ast.StmtPath
	anchor     superAnchor
	err        *Error
	arrowDepth int
	hasSuper   bool
	seen       bool
}

func verifyConstructor(fn js_ast.Fn, hasSuper bool, loc logger.Loc) (superAnchor, error) {
	v := &constructorVerifier{hasSuper: hasSuper}
	v.mapper = js_ast.Mapper{
		Expr: v.expr,
		Stmt: func(stmt js_ast.Stmt) js_ast.Stmt {
			if _, ok := stmt.Data.(*js_ast.SFunction); ok {
				return stmt
			}
			return v.mapper.StmtChildren(stmt)
		},
	}

	// Default values are evaluated before the body
	v.mapper.Args(fn.Args)
	v.stmts(fn.Body.Stmts, nil)

	if v.err != nil {
		return superAnchor{}, v.err
	}
	if hasSuper && !v.seen {
		return superAnchor{}, &Error{Kind: ConstructorLegalityViolation, Loc: loc, Text: "Derived constructor must call super()"}
	}
	return v.anchor, nil
}

func (v *constructorVerifier) fail(loc logger.Loc, text string) {
	if v.err == nil {
		v.err = &Error{Kind: ConstructorLegalityViolation, Loc: loc, Text: text}
	}
}

func (v *constructorVerifier) expr(expr js_ast.Expr) js_ast.Expr {
	if v.err != nil {
		return expr
	}

	switch e := expr.Data.(type) {
	case *js_ast.EFunction, *js_ast.EClass:
		return expr

	case *js_ast.EArrow:
		v.arrowDepth++
		result := v.mapper.ExprChildren(expr)
		v.arrowDepth--
		return result

	case *js_ast.EThis:
		if v.hasSuper && !v.seen {
			v.fail(expr.Loc, "'this' is not allowed before super()")
		}
		return expr

	case *js_ast.ECall:
		if js_ast.IsSuperCall(expr) {
			// The arguments are evaluated before the call happens
			v.mapper.Exprs(e.Args)
			if !v.hasSuper {
				v.fail(expr.Loc, "super call is only allowed in derived constructor")
			}
			if !v.seen {
				v.seen = true
				v.anchor.path = append(js_ast.StmtPath{}, v.path...)
				if v.arrowDepth > 0 {
					v.anchor.arrowCall = e
				}
			}
			return expr
		}
	}

	return v.mapper.ExprChildren(expr)
}

func (v *constructorVerifier) stmts(stmts []js_ast.Stmt, prefix js_ast.StmtPath) {
	for i, stmt := range stmts {
		if v.err != nil {
			return
		}
		if _, ok := stmt.Data.(*js_ast.SFunction); ok {
			continue
		}

		parent := v.path
		v.path = append(append(js_ast.StmtPath{}, prefix...), js_ast.StmtPathStep{Index: i})

		_, isDoWhile := stmt.Data.(*js_ast.SDoWhile)
		if !isDoWhile {
			v.header(stmt)
		}
		for nested, list := range js_ast.NestedStmtLists(stmt) {
			step := js_ast.StmtPathStep{Index: i, Nested: nested}
			v.stmts(list, append(append(js_ast.StmtPath{}, prefix...), step))
		}
		if isDoWhile {
			v.path = append(append(js_ast.StmtPath{}, prefix...), js_ast.StmtPathStep{Index: i})
			v.header(stmt)
		}

		v.path = parent
	}
}

// Visits the expressions of a statement that aren't inside one of its nested
// statement lists
func (v *constructorVerifier) header(stmt js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SExpr:
		v.expr(s.Value)

	case *js_ast.SLocal:
		v.mapper.StmtChildren(stmt)

	case *js_ast.SIf:
		v.expr(s.Test)

	case *js_ast.SFor:
		if s.InitOrNil.Data != nil {
			v.header(s.InitOrNil)
		}
		if s.TestOrNil.Data != nil {
			v.expr(s.TestOrNil)
		}
		if s.UpdateOrNil.Data != nil {
			v.expr(s.UpdateOrNil)
		}

	case *js_ast.SForIn:
		v.expr(s.Value)
		v.header(s.Init)

	case *js_ast.SForOf:
		v.expr(s.Value)
		v.header(s.Init)

	case *js_ast.SWhile:
		v.expr(s.Test)

	case *js_ast.SDoWhile:
		v.expr(s.Test)

	case *js_ast.SReturn:
		if s.ValueOrNil.Data != nil {
			v.expr(s.ValueOrNil)
		}

	case *js_ast.SThrow:
		v.expr(s.Value)

	case *js_ast.SSwitch:
		v.expr(s.Test)
		for _, c := range s.Cases {
			if c.ValueOrNil.Data != nil {
				v.expr(c.ValueOrNil)
			}
		}

	case *js_ast.STry:
		if s.Catch != nil && s.Catch.BindingOrNil.Data != nil {
			v.mapper.BindingChildren(s.Catch.BindingOrNil)
		}
	}
}
