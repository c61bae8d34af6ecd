package renamer

import "github.com/RobLoach/babel/internal/js_ast"

// Adds every name bound by a pattern
func BindingNames(binding js_ast.Binding, names map[string]bool) {
	switch b := binding.Data.(type) {
	case *js_ast.BIdentifier:
		names[b.Name] = true
	case *js_ast.BArray:
		for _, item := range b.Items {
			BindingNames(item.Binding, names)
		}
	case *js_ast.BObject:
		for _, property := range b.Properties {
			BindingNames(property.Value, names)
		}
	}
}

// Adds the names declared with "let", "const", "class" and "function"
// directly inside a statement list
func LexicalNames(stmts []js_ast.Stmt, names map[string]bool) {
	for _, stmt := range stmts {
		switch s := stmt.Data.(type) {
		case *js_ast.SLocal:
			if s.Kind != js_ast.LocalVar {
				for _, decl := range s.Decls {
					BindingNames(decl.Binding, names)
				}
			}
		case *js_ast.SClass:
			if s.Class.Name != nil {
				names[s.Class.Name.Name] = true
			}
		case *js_ast.SFunction:
			if s.Fn.Name != nil {
				names[s.Fn.Name.Name] = true
			}
		case *js_ast.SExportDefault:
			LexicalNames([]js_ast.Stmt{s.Value}, names)
		}
	}
}

// Adds the names declared with "var" anywhere inside a statement list. This
// doesn't cross into nested functions since those have their own scope.
func VarNames(stmts []js_ast.Stmt, names map[string]bool) {
	for _, stmt := range stmts {
		switch s := stmt.Data.(type) {
		case *js_ast.SLocal:
			if s.Kind == js_ast.LocalVar {
				for _, decl := range s.Decls {
					BindingNames(decl.Binding, names)
				}
			}
		case *js_ast.SFor:
			if s.InitOrNil.Data != nil {
				VarNames([]js_ast.Stmt{s.InitOrNil}, names)
			}
		case *js_ast.SForIn:
			VarNames([]js_ast.Stmt{s.Init}, names)
		case *js_ast.SForOf:
			VarNames([]js_ast.Stmt{s.Init}, names)
		}
		for _, list := range js_ast.NestedStmtLists(stmt) {
			VarNames(list, names)
		}
	}
}

// Returns every name that is bound in the top-level scope of a function body
// (parameters, hoisted "var" declarations and top-level lexical declarations)
func FunctionScopeNames(args []js_ast.Arg, stmts []js_ast.Stmt) map[string]bool {
	names := make(map[string]bool)
	for _, arg := range args {
		BindingNames(arg.Binding, names)
	}
	VarNames(stmts, names)
	LexicalNames(stmts, names)
	return names
}

// Returns true if a function declares "name" in its own top-level scope
func (t *Table) HasOwnBinding(fn js_ast.Fn, name string) bool {
	return FunctionScopeNames(fn.Args, fn.Body.Stmts)[name]
}
