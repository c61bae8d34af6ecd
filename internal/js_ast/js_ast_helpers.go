package js_ast

func Assign(a Expr, b Expr) Expr {
	return Expr{Loc: a.Loc, Data: &EBinary{Op: BinOpAssign, Left: a, Right: b}}
}

func AssignStmt(a Expr, b Expr) Stmt {
	return Stmt{Loc: a.Loc, Data: &SExpr{Value: Assign(a, b)}}
}

func JoinWithComma(a Expr, b Expr) Expr {
	if a.Data == nil {
		return b
	}
	if b.Data == nil {
		return a
	}
	return Expr{Loc: a.Loc, Data: &EBinary{Op: BinOpComma, Left: a, Right: b}}
}

// Returns true for "super(...)"
func IsSuperCall(expr Expr) bool {
	if call, ok := expr.Data.(*ECall); ok {
		if _, ok := call.Target.Data.(*ESuper); ok {
			return true
		}
	}
	return false
}

// Returns the text of a key that was not computed. Numeric keys are not
// considered since they can't be used as a property name after a dot.
func StaticKeyName(key Expr, isComputed bool) (string, bool) {
	if !isComputed {
		if str, ok := key.Data.(*EString); ok {
			return str.Value, true
		}
	}
	return "", false
}

// Builds "target.key" or "target[key]" for a property key as it is stored in
// a "Property"
func MemberAccess(target Expr, key Expr, isComputed bool) Expr {
	if name, ok := StaticKeyName(key, isComputed); ok && IsIdentifierName(name) {
		return Expr{Loc: key.Loc, Data: &EDot{Target: target, Name: name, NameLoc: key.Loc}}
	}
	return Expr{Loc: key.Loc, Data: &EIndex{Target: target, Index: key}}
}

// A Mapper rebuilds the immediate children of a node. Each pass supplies the
// callbacks and decides on its own which nodes to recurse into, so for
// example a pass that must stop at function boundaries simply doesn't call
// "ExprChildren" for "EFunction". The input tree is never mutated.
type Mapper struct {
	Expr func(Expr) Expr
	Stmt func(Stmt) Stmt

	// This is optional. Bindings are rebuilt structurally when it's nil.
	Binding func(Binding) Binding
}

func (m Mapper) exprOrNil(expr Expr) Expr {
	if expr.Data == nil {
		return expr
	}
	return m.Expr(expr)
}

func (m Mapper) Exprs(exprs []Expr) []Expr {
	if exprs == nil {
		return nil
	}
	result := make([]Expr, len(exprs))
	for i, expr := range exprs {
		result[i] = m.exprOrNil(expr)
	}
	return result
}

func (m Mapper) Stmts(stmts []Stmt) []Stmt {
	if stmts == nil {
		return nil
	}
	result := make([]Stmt, len(stmts))
	for i, stmt := range stmts {
		result[i] = m.Stmt(stmt)
	}
	return result
}

func (m Mapper) stmtOrNil(stmt Stmt) Stmt {
	if stmt.Data == nil {
		return stmt
	}
	return m.Stmt(stmt)
}

func (m Mapper) binding(binding Binding) Binding {
	if binding.Data == nil {
		return binding
	}
	if m.Binding != nil {
		return m.Binding(binding)
	}
	return m.BindingChildren(binding)
}

func (m Mapper) BindingChildren(binding Binding) Binding {
	switch b := binding.Data.(type) {
	case *BArray:
		items := make([]ArrayBinding, len(b.Items))
		for i, item := range b.Items {
			items[i] = ArrayBinding{
				Binding:           m.binding(item.Binding),
				DefaultValueOrNil: m.exprOrNil(item.DefaultValueOrNil),
			}
		}
		return Binding{Loc: binding.Loc, Data: &BArray{Items: items, HasSpread: b.HasSpread}}

	case *BObject:
		properties := make([]PropertyBinding, len(b.Properties))
		for i, property := range b.Properties {
			if property.IsComputed {
				property.Key = m.Expr(property.Key)
			}
			property.Value = m.binding(property.Value)
			property.DefaultValueOrNil = m.exprOrNil(property.DefaultValueOrNil)
			properties[i] = property
		}
		return Binding{Loc: binding.Loc, Data: &BObject{Properties: properties}}
	}
	return binding
}

func (m Mapper) Args(args []Arg) []Arg {
	if args == nil {
		return nil
	}
	result := make([]Arg, len(args))
	for i, arg := range args {
		result[i] = Arg{
			Binding:      m.binding(arg.Binding),
			DefaultOrNil: m.exprOrNil(arg.DefaultOrNil),
		}
	}
	return result
}

func (m Mapper) FnChildren(fn Fn) Fn {
	fn.Args = m.Args(fn.Args)
	fn.Body = FnBody{Loc: fn.Body.Loc, Stmts: m.Stmts(fn.Body.Stmts)}
	return fn
}

func (m Mapper) Properties(properties []Property) []Property {
	if properties == nil {
		return nil
	}
	result := make([]Property, len(properties))
	for i, property := range properties {
		property.Decorators = m.Exprs(property.Decorators)
		if property.IsComputed {
			property.Key = m.exprOrNil(property.Key)
		}
		property.ValueOrNil = m.exprOrNil(property.ValueOrNil)
		property.InitializerOrNil = m.exprOrNil(property.InitializerOrNil)
		result[i] = property
	}
	return result
}

func (m Mapper) ClassChildren(class Class) Class {
	class.Decorators = m.Exprs(class.Decorators)
	class.ExtendsOrNil = m.exprOrNil(class.ExtendsOrNil)
	class.Properties = m.Properties(class.Properties)
	return class
}

// Children are visited in evaluation order
func (m Mapper) ExprChildren(expr Expr) Expr {
	switch e := expr.Data.(type) {
	case *EArray:
		return Expr{Loc: expr.Loc, Data: &EArray{Items: m.Exprs(e.Items), IsSingleLine: e.IsSingleLine}}

	case *EUnary:
		return Expr{Loc: expr.Loc, Data: &EUnary{Op: e.Op, Value: m.Expr(e.Value)}}

	case *EBinary:
		left := m.Expr(e.Left)
		return Expr{Loc: expr.Loc, Data: &EBinary{Op: e.Op, Left: left, Right: m.Expr(e.Right)}}

	case *ENew:
		target := m.Expr(e.Target)
		return Expr{Loc: expr.Loc, Data: &ENew{Target: target, Args: m.Exprs(e.Args)}}

	case *ECall:
		target := m.Expr(e.Target)
		return Expr{Loc: expr.Loc, Data: &ECall{Target: target, Args: m.Exprs(e.Args), OptionalChain: e.OptionalChain}}

	case *EDot:
		clone := *e
		clone.Target = m.Expr(e.Target)
		return Expr{Loc: expr.Loc, Data: &clone}

	case *EIndex:
		target := m.Expr(e.Target)
		return Expr{Loc: expr.Loc, Data: &EIndex{Target: target, Index: m.Expr(e.Index), OptionalChain: e.OptionalChain}}

	case *EArrow:
		clone := *e
		clone.Args = m.Args(e.Args)
		clone.Body = FnBody{Loc: e.Body.Loc, Stmts: m.Stmts(e.Body.Stmts)}
		return Expr{Loc: expr.Loc, Data: &clone}

	case *EFunction:
		return Expr{Loc: expr.Loc, Data: &EFunction{Fn: m.FnChildren(e.Fn)}}

	case *EClass:
		return Expr{Loc: expr.Loc, Data: &EClass{Class: m.ClassChildren(e.Class)}}

	case *ETemplate:
		clone := *e
		clone.TagOrNil = m.exprOrNil(e.TagOrNil)
		clone.Parts = make([]TemplatePart, len(e.Parts))
		for i, part := range e.Parts {
			clone.Parts[i] = TemplatePart{Value: m.Expr(part.Value), TailRaw: part.TailRaw}
		}
		return Expr{Loc: expr.Loc, Data: &clone}

	case *EObject:
		return Expr{Loc: expr.Loc, Data: &EObject{Properties: m.Properties(e.Properties), IsSingleLine: e.IsSingleLine}}

	case *ESpread:
		return Expr{Loc: expr.Loc, Data: &ESpread{Value: m.Expr(e.Value)}}

	case *EIf:
		test := m.Expr(e.Test)
		yes := m.Expr(e.Yes)
		return Expr{Loc: expr.Loc, Data: &EIf{Test: test, Yes: yes, No: m.Expr(e.No)}}

	case *EAwait:
		return Expr{Loc: expr.Loc, Data: &EAwait{Value: m.Expr(e.Value)}}

	case *EYield:
		return Expr{Loc: expr.Loc, Data: &EYield{ValueOrNil: m.exprOrNil(e.ValueOrNil), IsStar: e.IsStar}}
	}

	// Everything else is a leaf
	return expr
}

func (m Mapper) StmtChildren(stmt Stmt) Stmt {
	switch s := stmt.Data.(type) {
	case *SBlock:
		return Stmt{Loc: stmt.Loc, Data: &SBlock{Stmts: m.Stmts(s.Stmts)}}

	case *SExpr:
		return Stmt{Loc: stmt.Loc, Data: &SExpr{Value: m.Expr(s.Value)}}

	case *SLocal:
		decls := make([]Decl, len(s.Decls))
		for i, decl := range s.Decls {
			decls[i] = Decl{Binding: m.binding(decl.Binding), ValueOrNil: m.exprOrNil(decl.ValueOrNil)}
		}
		return Stmt{Loc: stmt.Loc, Data: &SLocal{Decls: decls, Kind: s.Kind, IsExport: s.IsExport}}

	case *SFunction:
		return Stmt{Loc: stmt.Loc, Data: &SFunction{Fn: m.FnChildren(s.Fn), IsExport: s.IsExport}}

	case *SClass:
		return Stmt{Loc: stmt.Loc, Data: &SClass{Class: m.ClassChildren(s.Class), IsExport: s.IsExport}}

	case *SExportDefault:
		return Stmt{Loc: stmt.Loc, Data: &SExportDefault{Value: m.Stmt(s.Value)}}

	case *SIf:
		test := m.Expr(s.Test)
		yes := m.Stmt(s.Yes)
		return Stmt{Loc: stmt.Loc, Data: &SIf{Test: test, Yes: yes, NoOrNil: m.stmtOrNil(s.NoOrNil)}}

	case *SFor:
		init := m.stmtOrNil(s.InitOrNil)
		test := m.exprOrNil(s.TestOrNil)
		update := m.exprOrNil(s.UpdateOrNil)
		return Stmt{Loc: stmt.Loc, Data: &SFor{InitOrNil: init, TestOrNil: test, UpdateOrNil: update, Body: m.Stmt(s.Body)}}

	case *SForIn:
		init := m.Stmt(s.Init)
		value := m.Expr(s.Value)
		return Stmt{Loc: stmt.Loc, Data: &SForIn{Init: init, Value: value, Body: m.Stmt(s.Body)}}

	case *SForOf:
		init := m.Stmt(s.Init)
		value := m.Expr(s.Value)
		return Stmt{Loc: stmt.Loc, Data: &SForOf{Init: init, Value: value, Body: m.Stmt(s.Body), IsAwait: s.IsAwait}}

	case *SWhile:
		test := m.Expr(s.Test)
		return Stmt{Loc: stmt.Loc, Data: &SWhile{Test: test, Body: m.Stmt(s.Body)}}

	case *SDoWhile:
		body := m.Stmt(s.Body)
		return Stmt{Loc: stmt.Loc, Data: &SDoWhile{Body: body, Test: m.Expr(s.Test)}}

	case *SLabel:
		return Stmt{Loc: stmt.Loc, Data: &SLabel{Name: s.Name, Stmt: m.Stmt(s.Stmt)}}

	case *SReturn:
		return Stmt{Loc: stmt.Loc, Data: &SReturn{ValueOrNil: m.exprOrNil(s.ValueOrNil)}}

	case *SThrow:
		return Stmt{Loc: stmt.Loc, Data: &SThrow{Value: m.Expr(s.Value)}}

	case *STry:
		clone := *s
		clone.Body = m.Stmts(s.Body)
		if s.Catch != nil {
			clone.Catch = &Catch{
				Loc:          s.Catch.Loc,
				BindingOrNil: m.binding(s.Catch.BindingOrNil),
				Body:         m.Stmts(s.Catch.Body),
			}
		}
		if s.Finally != nil {
			clone.Finally = &Finally{Loc: s.Finally.Loc, Stmts: m.Stmts(s.Finally.Stmts)}
		}
		return Stmt{Loc: stmt.Loc, Data: &clone}

	case *SSwitch:
		test := m.Expr(s.Test)
		cases := make([]Case, len(s.Cases))
		for i, c := range s.Cases {
			value := m.exprOrNil(c.ValueOrNil)
			cases[i] = Case{ValueOrNil: value, Body: m.Stmts(c.Body)}
		}
		return Stmt{Loc: stmt.Loc, Data: &SSwitch{Test: test, Cases: cases}}
	}

	// Everything else is a leaf
	return stmt
}

// This returns the statement lists that are directly nested inside a
// statement without crossing a function boundary. A body that isn't a block
// is returned as a list with one statement in it.
//
// The order of the lists is stable and matches "WithNestedStmtLists".
func NestedStmtLists(stmt Stmt) [][]Stmt {
	switch s := stmt.Data.(type) {
	case *SBlock:
		return [][]Stmt{s.Stmts}
	case *SIf:
		if s.NoOrNil.Data != nil {
			return [][]Stmt{stmtAsList(s.Yes), stmtAsList(s.NoOrNil)}
		}
		return [][]Stmt{stmtAsList(s.Yes)}
	case *SFor:
		return [][]Stmt{stmtAsList(s.Body)}
	case *SForIn:
		return [][]Stmt{stmtAsList(s.Body)}
	case *SForOf:
		return [][]Stmt{stmtAsList(s.Body)}
	case *SWhile:
		return [][]Stmt{stmtAsList(s.Body)}
	case *SDoWhile:
		return [][]Stmt{stmtAsList(s.Body)}
	case *SLabel:
		return [][]Stmt{stmtAsList(s.Stmt)}
	case *STry:
		lists := [][]Stmt{s.Body}
		if s.Catch != nil {
			lists = append(lists, s.Catch.Body)
		}
		if s.Finally != nil {
			lists = append(lists, s.Finally.Stmts)
		}
		return lists
	case *SSwitch:
		lists := make([][]Stmt, len(s.Cases))
		for i, c := range s.Cases {
			lists[i] = c.Body
		}
		return lists
	}
	return nil
}

// This is the inverse of "NestedStmtLists". A body that wasn't a block is
// turned into one if its list no longer has exactly one statement.
func WithNestedStmtLists(stmt Stmt, lists [][]Stmt) Stmt {
	switch s := stmt.Data.(type) {
	case *SBlock:
		return Stmt{Loc: stmt.Loc, Data: &SBlock{Stmts: lists[0]}}
	case *SIf:
		clone := *s
		clone.Yes = stmtFromList(s.Yes, lists[0])
		if s.NoOrNil.Data != nil {
			clone.NoOrNil = stmtFromList(s.NoOrNil, lists[1])
		}
		return Stmt{Loc: stmt.Loc, Data: &clone}
	case *SFor:
		clone := *s
		clone.Body = stmtFromList(s.Body, lists[0])
		return Stmt{Loc: stmt.Loc, Data: &clone}
	case *SForIn:
		clone := *s
		clone.Body = stmtFromList(s.Body, lists[0])
		return Stmt{Loc: stmt.Loc, Data: &clone}
	case *SForOf:
		clone := *s
		clone.Body = stmtFromList(s.Body, lists[0])
		return Stmt{Loc: stmt.Loc, Data: &clone}
	case *SWhile:
		clone := *s
		clone.Body = stmtFromList(s.Body, lists[0])
		return Stmt{Loc: stmt.Loc, Data: &clone}
	case *SDoWhile:
		clone := *s
		clone.Body = stmtFromList(s.Body, lists[0])
		return Stmt{Loc: stmt.Loc, Data: &clone}
	case *SLabel:
		return Stmt{Loc: stmt.Loc, Data: &SLabel{Name: s.Name, Stmt: stmtFromList(s.Stmt, lists[0])}}
	case *STry:
		clone := *s
		clone.Body = lists[0]
		next := 1
		if s.Catch != nil {
			clone.Catch = &Catch{Loc: s.Catch.Loc, BindingOrNil: s.Catch.BindingOrNil, Body: lists[next]}
			next++
		}
		if s.Finally != nil {
			clone.Finally = &Finally{Loc: s.Finally.Loc, Stmts: lists[next]}
		}
		return Stmt{Loc: stmt.Loc, Data: &clone}
	case *SSwitch:
		cases := make([]Case, len(s.Cases))
		for i, c := range s.Cases {
			cases[i] = Case{ValueOrNil: c.ValueOrNil, Body: lists[i]}
		}
		return Stmt{Loc: stmt.Loc, Data: &SSwitch{Test: s.Test, Cases: cases}}
	}
	panic("Internal error")
}

func stmtAsList(stmt Stmt) []Stmt {
	if block, ok := stmt.Data.(*SBlock); ok {
		return block.Stmts
	}
	return []Stmt{stmt}
}

func stmtFromList(original Stmt, stmts []Stmt) Stmt {
	if _, ok := original.Data.(*SBlock); !ok && len(stmts) == 1 {
		return stmts[0]
	}
	return Stmt{Loc: original.Loc, Data: &SBlock{Stmts: stmts}}
}

// A StmtPath locates a statement that may be nested inside blocks, loops and
// other compound statements. Each step holds the index of a statement in the
// current list and, for every step but the last, which of the lists returned
// by "NestedStmtLists" to continue in.
type StmtPath []StmtPathStep

type StmtPathStep struct {
	Index  int
	Nested int
}

// Returns a new list with "insert" placed right after the statement that
// "path" points to. Only the statements along the path are rebuilt.
func InsertStmtsAfterPath(stmts []Stmt, path StmtPath, insert []Stmt) []Stmt {
	if len(path) == 0 {
		panic("Internal error")
	}
	step := path[0]
	result := make([]Stmt, 0, len(stmts)+len(insert))

	if len(path) == 1 {
		result = append(result, stmts[:step.Index+1]...)
		result = append(result, insert...)
		return append(result, stmts[step.Index+1:]...)
	}

	lists := NestedStmtLists(stmts[step.Index])
	clone := append([][]Stmt{}, lists...)
	clone[step.Nested] = InsertStmtsAfterPath(lists[step.Nested], path[1:], insert)
	result = append(result, stmts...)
	result[step.Index] = WithNestedStmtLists(stmts[step.Index], clone)
	return result
}
