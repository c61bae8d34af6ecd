package js_ast

import (
	"testing"

	"github.com/RobLoach/babel/internal/test"
)

func call(name string) Stmt {
	return Stmt{Data: &SExpr{Value: Expr{Data: &ECall{Target: Expr{Data: &EIdentifier{Name: name}}}}}}
}

func callName(t *testing.T, stmt Stmt) string {
	t.Helper()
	expr, ok := stmt.Data.(*SExpr)
	if !ok {
		t.Fatalf("Expected an expression statement, got %T", stmt.Data)
	}
	return expr.Value.Data.(*ECall).Target.Data.(*EIdentifier).Name
}

func TestInsertStmtsAfterPathTopLevel(t *testing.T) {
	stmts := []Stmt{call("a"), call("b")}
	result := InsertStmtsAfterPath(stmts, StmtPath{{Index: 0}}, []Stmt{call("x"), call("y")})

	test.AssertEqual(t, len(result), 4)
	test.AssertEqual(t, callName(t, result[0]), "a")
	test.AssertEqual(t, callName(t, result[1]), "x")
	test.AssertEqual(t, callName(t, result[2]), "y")
	test.AssertEqual(t, callName(t, result[3]), "b")

	// The input must not change
	test.AssertEqual(t, len(stmts), 2)
	test.AssertEqual(t, callName(t, stmts[1]), "b")
}

func TestInsertStmtsAfterPathNonBlockBody(t *testing.T) {
	// "if (c) a(); else b();"
	ifStmt := Stmt{Data: &SIf{Test: Expr{Data: &EIdentifier{Name: "c"}}, Yes: call("a"), NoOrNil: call("b")}}
	stmts := []Stmt{ifStmt}
	result := InsertStmtsAfterPath(stmts, StmtPath{{Index: 0, Nested: 1}, {Index: 0}}, []Stmt{call("x")})

	s := result[0].Data.(*SIf)
	test.AssertEqual(t, callName(t, s.Yes), "a")
	block, ok := s.NoOrNil.Data.(*SBlock)
	if !ok {
		t.Fatalf("Expected the else branch to become a block")
	}
	test.AssertEqual(t, len(block.Stmts), 2)
	test.AssertEqual(t, callName(t, block.Stmts[1]), "x")

	// The original statement is left alone
	test.AssertEqual(t, callName(t, ifStmt.Data.(*SIf).NoOrNil), "b")
}

func TestInsertStmtsAfterPathTry(t *testing.T) {
	tryStmt := Stmt{Data: &STry{
		Body:    []Stmt{call("a")},
		Catch:   &Catch{Body: []Stmt{call("b")}},
		Finally: &Finally{Stmts: []Stmt{call("c")}},
	}}
	result := InsertStmtsAfterPath([]Stmt{tryStmt}, StmtPath{{Index: 0, Nested: 2}, {Index: 0}}, []Stmt{call("x")})

	s := result[0].Data.(*STry)
	test.AssertEqual(t, len(s.Body), 1)
	test.AssertEqual(t, len(s.Catch.Body), 1)
	test.AssertEqual(t, len(s.Finally.Stmts), 2)
	test.AssertEqual(t, callName(t, s.Finally.Stmts[1]), "x")
}

func TestMapperVisitsInEvaluationOrder(t *testing.T) {
	// "a(b, c ? d : e)"
	expr := Expr{Data: &ECall{
		Target: Expr{Data: &EIdentifier{Name: "a"}},
		Args: []Expr{
			{Data: &EIdentifier{Name: "b"}},
			{Data: &EIf{
				Test: Expr{Data: &EIdentifier{Name: "c"}},
				Yes:  Expr{Data: &EIdentifier{Name: "d"}},
				No:   Expr{Data: &EIdentifier{Name: "e"}},
			}},
		},
	}}

	var names []string
	var m Mapper
	m = Mapper{
		Expr: func(expr Expr) Expr {
			if id, ok := expr.Data.(*EIdentifier); ok {
				names = append(names, id.Name)
				return Expr{Loc: expr.Loc, Data: &EIdentifier{Name: id.Name + "2"}}
			}
			return m.ExprChildren(expr)
		},
		Stmt: func(stmt Stmt) Stmt { return m.StmtChildren(stmt) },
	}
	result := m.Expr(expr)

	test.AssertEqual(t, len(names), 5)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		test.AssertEqual(t, names[i], name)
	}
	test.AssertEqual(t, result.Data.(*ECall).Target.Data.(*EIdentifier).Name, "a2")
	test.AssertEqual(t, expr.Data.(*ECall).Target.Data.(*EIdentifier).Name, "a")
}

func TestIsIdentifier(t *testing.T) {
	test.AssertEqual(t, IsIdentifier("foo"), true)
	test.AssertEqual(t, IsIdentifier("_$0"), true)
	test.AssertEqual(t, IsIdentifier("0a"), false)
	test.AssertEqual(t, IsIdentifier("a-b"), false)
	test.AssertEqual(t, IsIdentifier("class"), false)
	test.AssertEqual(t, IsIdentifierName("class"), true)
	test.AssertEqual(t, IsIdentifier("ünicode"), true)
}
