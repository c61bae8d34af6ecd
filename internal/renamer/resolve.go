package renamer

import "github.com/RobLoach/babel/internal/js_ast"

type scope struct {
	parent *scope
	names  map[string]bool
}

// Returns the innermost scope that declares "name" or nil if it's unbound
func (s *scope) resolve(name string) *scope {
	for ; s != nil; s = s.parent {
		if s.names[name] {
			return s
		}
	}
	return nil
}

// A resolver walks a tree while tracking the scope chain. Every reference and
// every binding occurrence of a name is passed to "onName" together with the
// scope it resolves to, and the name it returns replaces the original.
type resolver struct {
	scope  *scope
	mapper js_ast.Mapper
	onName func(name string, declaredIn *scope) string
}

func newResolver(root *scope, onName func(string, *scope) string) *resolver {
	r := &resolver{scope: root, onName: onName}
	r.mapper = js_ast.Mapper{Expr: r.expr, Stmt: r.stmt, Binding: r.binding}
	return r
}

func (r *resolver) pushScope(names map[string]bool) {
	r.scope = &scope{parent: r.scope, names: names}
}

func (r *resolver) popScope() {
	r.scope = r.scope.parent
}

func (r *resolver) name(name string) string {
	return r.onName(name, r.scope.resolve(name))
}

func (r *resolver) identifier(id *js_ast.Identifier) *js_ast.Identifier {
	if id != nil {
		if name := r.name(id.Name); name != id.Name {
			return &js_ast.Identifier{Loc: id.Loc, Name: name}
		}
	}
	return id
}

func (r *resolver) fn(fn js_ast.Fn) js_ast.Fn {
	r.pushScope(FunctionScopeNames(fn.Args, fn.Body.Stmts))
	fn = r.mapper.FnChildren(fn)
	r.popScope()
	return fn
}

func (r *resolver) expr(expr js_ast.Expr) js_ast.Expr {
	switch e := expr.Data.(type) {
	case *js_ast.EIdentifier:
		if name := r.name(e.Name); name != e.Name {
			return js_ast.Expr{Loc: expr.Loc, Data: &js_ast.EIdentifier{Name: name}}
		}
		return expr

	case *js_ast.EFunction:
		// The name of a function expression is only visible inside of it
		names := make(map[string]bool)
		if e.Fn.Name != nil {
			names[e.Fn.Name.Name] = true
		}
		r.pushScope(names)
		fn := r.fn(e.Fn)
		r.popScope()
		return js_ast.Expr{Loc: expr.Loc, Data: &js_ast.EFunction{Fn: fn}}

	case *js_ast.EArrow:
		r.pushScope(FunctionScopeNames(e.Args, e.Body.Stmts))
		result := r.mapper.ExprChildren(expr)
		r.popScope()
		return result

	case *js_ast.EClass:
		// So is the name of a class expression
		names := make(map[string]bool)
		if e.Class.Name != nil {
			names[e.Class.Name.Name] = true
		}
		r.pushScope(names)
		result := r.mapper.ExprChildren(expr)
		r.popScope()
		return result
	}

	return r.mapper.ExprChildren(expr)
}

func (r *resolver) stmt(stmt js_ast.Stmt) js_ast.Stmt {
	switch s := stmt.Data.(type) {
	case *js_ast.SBlock:
		names := make(map[string]bool)
		LexicalNames(s.Stmts, names)
		r.pushScope(names)
		result := r.mapper.StmtChildren(stmt)
		r.popScope()
		return result

	case *js_ast.SFunction:
		clone := *s
		clone.Fn.Name = r.identifier(s.Fn.Name)
		clone.Fn = r.fn(clone.Fn)
		return js_ast.Stmt{Loc: stmt.Loc, Data: &clone}

	case *js_ast.SClass:
		clone := *s
		clone.Class.Name = r.identifier(s.Class.Name)
		clone.Class = r.mapper.ClassChildren(clone.Class)
		return js_ast.Stmt{Loc: stmt.Loc, Data: &clone}

	case *js_ast.SFor:
		names := make(map[string]bool)
		if s.InitOrNil.Data != nil {
			LexicalNames([]js_ast.Stmt{s.InitOrNil}, names)
		}
		r.pushScope(names)
		result := r.mapper.StmtChildren(stmt)
		r.popScope()
		return result

	case *js_ast.SForIn:
		names := make(map[string]bool)
		LexicalNames([]js_ast.Stmt{s.Init}, names)
		r.pushScope(names)
		result := r.mapper.StmtChildren(stmt)
		r.popScope()
		return result

	case *js_ast.SForOf:
		names := make(map[string]bool)
		LexicalNames([]js_ast.Stmt{s.Init}, names)
		r.pushScope(names)
		result := r.mapper.StmtChildren(stmt)
		r.popScope()
		return result

	case *js_ast.SSwitch:
		names := make(map[string]bool)
		for _, c := range s.Cases {
			LexicalNames(c.Body, names)
		}
		r.pushScope(names)
		result := r.mapper.StmtChildren(stmt)
		r.popScope()
		return result

	case *js_ast.STry:
		clone := *s
		clone.Body = r.block(s.Body)
		if s.Catch != nil {
			names := make(map[string]bool)
			BindingNames(s.Catch.BindingOrNil, names)
			r.pushScope(names)
			binding := s.Catch.BindingOrNil
			if binding.Data != nil {
				binding = r.binding(binding)
			}
			clone.Catch = &js_ast.Catch{Loc: s.Catch.Loc, BindingOrNil: binding, Body: r.block(s.Catch.Body)}
			r.popScope()
		}
		if s.Finally != nil {
			clone.Finally = &js_ast.Finally{Loc: s.Finally.Loc, Stmts: r.block(s.Finally.Stmts)}
		}
		return js_ast.Stmt{Loc: stmt.Loc, Data: &clone}
	}

	return r.mapper.StmtChildren(stmt)
}

func (r *resolver) block(stmts []js_ast.Stmt) []js_ast.Stmt {
	names := make(map[string]bool)
	LexicalNames(stmts, names)
	r.pushScope(names)
	stmts = r.mapper.Stmts(stmts)
	r.popScope()
	return stmts
}

func (r *resolver) binding(binding js_ast.Binding) js_ast.Binding {
	if b, ok := binding.Data.(*js_ast.BIdentifier); ok {
		if name := r.name(b.Name); name != b.Name {
			return js_ast.Binding{Loc: binding.Loc, Data: &js_ast.BIdentifier{Name: name}}
		}
		return binding
	}
	return r.mapper.BindingChildren(binding)
}

// Renames the binding "name" that a function declares in its own scope along
// with every reference to it. References inside nested scopes that shadow the
// name are left alone. The input is not modified.
func (t *Table) RenameBinding(fn js_ast.Fn, name string) (js_ast.Fn, string) {
	newName := t.MintUniqueIdentifier(name)
	target := &scope{names: FunctionScopeNames(fn.Args, fn.Body.Stmts)}
	r := newResolver(target, func(n string, declaredIn *scope) string {
		if n == name && declaredIn == target {
			return newName
		}
		return n
	})
	return r.mapper.FnChildren(fn), newName
}

// Returns the names an expression refers to that aren't bound inside of the
// expression itself, in the order they first appear
func (t *Table) FreeIdentifiers(expr js_ast.Expr) []string {
	var free []string
	seen := make(map[string]bool)
	r := newResolver(nil, func(n string, declaredIn *scope) string {
		if declaredIn == nil && !seen[n] {
			seen[n] = true
			free = append(free, n)
		}
		return n
	})
	r.expr(expr)
	return free
}
