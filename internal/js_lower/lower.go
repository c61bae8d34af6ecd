package js_lower

import (
	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/internal/renamer"
	"github.com/RobLoach/babel/internal/runtime"
)

type Options struct {
	IsLoose bool
	Runtime runtime.Options
}

type lowerer struct {
	log     logger.Log
	source  *logger.Source
	env     Env
	options Options
	mapper  js_ast.Mapper
}

// Lowers every class in the file. Inner classes are lowered before the
// classes that contain them. The helpers that the output needs are declared
// at the top of the file after any directives. Errors are added to the log
// and the classes with errors are left as they were.
func Lower(log logger.Log, source *logger.Source, tree js_ast.AST, options Options) js_ast.AST {
	table := renamer.NewTable(tree)
	registry := runtime.NewRegistry(table, options.Runtime)

	l := &lowerer{
		log:     log,
		source:  source,
		env:     Env{Symbols: table, Helpers: registry},
		options: options,
	}
	l.mapper = js_ast.Mapper{Expr: l.expr, Stmt: l.stmt}

	// Comments between directives stay with them but a comment after the
	// last directive belongs to the code that follows it
	prologueEnd := 0
	for i, stmt := range tree.Stmts {
		if _, ok := stmt.Data.(*js_ast.SDirective); ok {
			prologueEnd = i + 1
		} else if _, ok := stmt.Data.(*js_ast.SComment); !ok {
			break
		}
	}
	directives := append([]js_ast.Stmt{}, tree.Stmts[:prologueEnd]...)
	stmts := tree.Stmts[prologueEnd:]

	var body []js_ast.Stmt
	for _, stmt := range stmts {
		body = l.appendTopLevelStmt(body, stmt)
	}

	result := append(directives, registry.Prelude()...)
	return js_ast.AST{Stmts: append(result, body...)}
}

// "export default class Foo {}" needs to keep the binding for "Foo" so it
// turns into two statements
func (l *lowerer) appendTopLevelStmt(stmts []js_ast.Stmt, stmt js_ast.Stmt) []js_ast.Stmt {
	if s, ok := stmt.Data.(*js_ast.SExportDefault); ok {
		if class, ok := s.Value.Data.(*js_ast.SClass); ok && class.Class.Name != nil {
			name := class.Class.Name
			return append(stmts,
				l.stmt(js_ast.Stmt{Loc: s.Value.Loc, Data: &js_ast.SClass{Class: class.Class}}),
				js_ast.Stmt{Loc: stmt.Loc, Data: &js_ast.SExportDefault{Value: js_ast.Stmt{
					Loc:  name.Loc,
					Data: &js_ast.SExpr{Value: js_ast.Expr{Loc: name.Loc, Data: &js_ast.EIdentifier{Name: name.Name}}},
				}}},
			)
		}
	}
	return append(stmts, l.stmt(stmt))
}

func (l *lowerer) stmt(stmt js_ast.Stmt) js_ast.Stmt {
	switch s := stmt.Data.(type) {
	case *js_ast.SClass:
		value, ok := l.lowerClass(stmt.Loc, s.Class, "")
		if !ok {
			return stmt
		}
		return js_ast.Stmt{Loc: stmt.Loc, Data: &js_ast.SLocal{
			Kind:     js_ast.LocalLet,
			IsExport: s.IsExport,
			Decls: []js_ast.Decl{{
				Binding:    js_ast.Binding{Loc: s.Class.Name.Loc, Data: &js_ast.BIdentifier{Name: s.Class.Name.Name}},
				ValueOrNil: value,
			}},
		}}

	case *js_ast.SExportDefault:
		if class, ok := s.Value.Data.(*js_ast.SClass); ok {
			value, ok := l.lowerClass(s.Value.Loc, class.Class, "")
			if !ok {
				return stmt
			}
			return js_ast.Stmt{Loc: stmt.Loc, Data: &js_ast.SExportDefault{Value: js_ast.Stmt{Loc: s.Value.Loc, Data: &js_ast.SExpr{Value: value}}}}
		}

	case *js_ast.SLocal:
		decls := make([]js_ast.Decl, len(s.Decls))
		for i, decl := range s.Decls {
			if id, ok := decl.Binding.Data.(*js_ast.BIdentifier); ok {
				if value, ok := l.namedValue(decl.ValueOrNil, id.Name); ok {
					decls[i] = js_ast.Decl{Binding: decl.Binding, ValueOrNil: value}
					continue
				}
			}
			decls[i] = js_ast.Decl{Binding: l.mapper.BindingChildren(decl.Binding), ValueOrNil: l.exprOrNil(decl.ValueOrNil)}
		}
		return js_ast.Stmt{Loc: stmt.Loc, Data: &js_ast.SLocal{Decls: decls, Kind: s.Kind, IsExport: s.IsExport}}
	}

	return l.mapper.StmtChildren(stmt)
}

func (l *lowerer) exprOrNil(expr js_ast.Expr) js_ast.Expr {
	if expr.Data == nil {
		return expr
	}
	return l.expr(expr)
}

func (l *lowerer) expr(expr js_ast.Expr) js_ast.Expr {
	switch e := expr.Data.(type) {
	case *js_ast.EClass:
		if value, ok := l.lowerClass(expr.Loc, e.Class, ""); ok {
			return value
		}
		return expr

	case *js_ast.EBinary:
		if e.Op == js_ast.BinOpAssign {
			if id, ok := e.Left.Data.(*js_ast.EIdentifier); ok {
				if value, ok := l.namedValue(e.Right, id.Name); ok {
					return js_ast.Expr{Loc: expr.Loc, Data: &js_ast.EBinary{Op: e.Op, Left: e.Left, Right: value}}
				}
			}
		}
	}

	return l.mapper.ExprChildren(expr)
}

// Lowers an anonymous class that is about to be stored in "name"
func (l *lowerer) namedValue(expr js_ast.Expr, name string) (js_ast.Expr, bool) {
	if class, ok := expr.Data.(*js_ast.EClass); ok && class.Class.Name == nil {
		if value, ok := l.lowerClass(expr.Loc, class.Class, name); ok {
			return value, true
		}
		return expr, true
	}
	return js_ast.Expr{}, false
}

func (l *lowerer) lowerClass(loc logger.Loc, class js_ast.Class, nameHint string) (js_ast.Expr, bool) {
	class = l.mapper.ClassChildren(class)

	value, err := LowerClass(l.env, class, loc, ClassOptions{IsLoose: l.options.IsLoose, NameHint: nameHint})
	if err != nil {
		if err, ok := err.(*Error); ok {
			l.log.AddError(l.source, err.Loc, err.Text)
		} else {
			l.log.AddError(l.source, loc, err.Error())
		}
		return js_ast.Expr{}, false
	}
	return value, true
}
