package renamer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/RobLoach/babel/internal/js_ast"
)

// The symbol table for a single file. It knows every name the file uses so
// that names minted for generated code never collide with user code. There
// is one table per compilation unit and it is not safe for concurrent use.
type Table struct {
	reservedNames map[string]bool
}

func NewTable(tree js_ast.AST) *Table {
	return &Table{reservedNames: ComputeReservedNames(tree)}
}

func ComputeReservedNames(tree js_ast.AST) map[string]bool {
	names := make(map[string]bool)

	// All keywords and strict mode reserved words are reserved names
	for k := range js_ast.ReservedWords {
		names[k] = true
	}

	// Every name that appears in the file is reserved, bound or not
	var m js_ast.Mapper
	m = js_ast.Mapper{
		Expr: func(expr js_ast.Expr) js_ast.Expr {
			switch e := expr.Data.(type) {
			case *js_ast.EIdentifier:
				names[e.Name] = true
			case *js_ast.EFunction:
				if e.Fn.Name != nil {
					names[e.Fn.Name.Name] = true
				}
			case *js_ast.EClass:
				if e.Class.Name != nil {
					names[e.Class.Name.Name] = true
				}
			}
			return m.ExprChildren(expr)
		},
		Stmt: func(stmt js_ast.Stmt) js_ast.Stmt {
			switch s := stmt.Data.(type) {
			case *js_ast.SFunction:
				if s.Fn.Name != nil {
					names[s.Fn.Name.Name] = true
				}
			case *js_ast.SClass:
				if s.Class.Name != nil {
					names[s.Class.Name.Name] = true
				}
			}
			return m.StmtChildren(stmt)
		},
		Binding: func(binding js_ast.Binding) js_ast.Binding {
			if b, ok := binding.Data.(*js_ast.BIdentifier); ok {
				names[b.Name] = true
				return binding
			}
			return m.BindingChildren(binding)
		},
	}
	m.Stmts(tree.Stmts)

	return names
}

func (t *Table) IsReserved(name string) bool {
	return t.reservedNames[name]
}

// Reserves a name that generated code will refer to
func (t *Table) Reserve(name string) {
	t.reservedNames[name] = true
}

// Returns a fresh name derived from "base" and reserves it. The result always
// starts with "_" and numeric suffixes count up from 2:
//
//	"class" => "_class", "_class2", "_class3", ...
func (t *Table) MintUniqueIdentifier(base string) string {
	name := toIdentifier(base)
	name = strings.TrimLeft(name, "_")
	name = strings.TrimRightFunc(name, func(c rune) bool { return c >= '0' && c <= '9' })
	if name == "" {
		name = "ref"
	}

	candidate := "_" + name
	for tries := 2; t.reservedNames[candidate]; tries++ {
		candidate = "_" + name + strconv.Itoa(tries)
	}
	t.reservedNames[candidate] = true
	return candidate
}

// Like "MintUniqueIdentifier" but derives the name from the shape of an
// expression. Member chains are joined with "$":
//
//	"Bar" => "_Bar"
//	"a.b.C" => "_a$b$C"
func (t *Table) MintUniqueIdentifierForExpr(expr js_ast.Expr) string {
	var parts []string
	gatherNameParts(expr, &parts)

	id := strings.TrimPrefix(strings.Join(parts, "$"), "_")
	if id == "" {
		id = "ref"
	}

	// Keep generated names reasonably short
	if utf8.RuneCountInString(id) > 20 {
		id = string([]rune(id)[:20])
	}
	return t.MintUniqueIdentifier(id)
}

func gatherNameParts(expr js_ast.Expr, parts *[]string) {
	switch e := expr.Data.(type) {
	case *js_ast.EIdentifier:
		*parts = append(*parts, e.Name)
	case *js_ast.EDot:
		gatherNameParts(e.Target, parts)
		*parts = append(*parts, e.Name)
	case *js_ast.EIndex:
		gatherNameParts(e.Target, parts)
		gatherNameParts(e.Index, parts)
	case *js_ast.ECall:
		gatherNameParts(e.Target, parts)
	case *js_ast.ENew:
		gatherNameParts(e.Target, parts)
	case *js_ast.EString:
		*parts = append(*parts, e.Value)
	case *js_ast.ENumber:
		*parts = append(*parts, strconv.FormatFloat(e.Value, 'f', -1, 64))
	case *js_ast.EThis:
		*parts = append(*parts, "this")
	case *js_ast.ESuper:
		*parts = append(*parts, "super")
	case *js_ast.EFunction:
		if e.Fn.Name != nil {
			*parts = append(*parts, e.Fn.Name.Name)
		}
	case *js_ast.EClass:
		if e.Class.Name != nil {
			*parts = append(*parts, e.Class.Name.Name)
		}
	}
}

// Turns arbitrary text into an identifier by dropping invalid characters and
// upper-casing the character after each dropped run:
//
//	"class-call-check" => "classCallCheck"
func toIdentifier(text string) string {
	sb := strings.Builder{}
	upperNext := false

	for _, c := range text {
		if !js_ast.IsIdentifierContinue(c) || (sb.Len() == 0 && !js_ast.IsIdentifierStart(c)) {
			upperNext = sb.Len() > 0
			continue
		}
		if upperNext {
			c = unicode.ToUpper(c)
			upperNext = false
		}
		sb.WriteRune(c)
	}

	return sb.String()
}
