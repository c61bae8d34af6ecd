package js_parser

// This front end turns JavaScript source text into the AST used by the class
// lowering pass. The heavy lifting is done by the tree-sitter grammar for
// JavaScript. This file only converts the concrete syntax tree it produces.

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/logger"
)

type parser struct {
	log    logger.Log
	source logger.Source
	src    []byte
}

// This is used to bail out of the conversion after an error has been logged
type parsePanic struct{}

var javascript = sitter.NewLanguage(tree_sitter_javascript.Language())

func Parse(log logger.Log, source logger.Source) (result js_ast.AST, ok bool) {
	ok = true
	defer func() {
		r := recover()
		if _, isParsePanic := r.(parsePanic); isParsePanic {
			ok = false
		} else if r != nil {
			panic(r)
		}
	}()

	ts := sitter.NewParser()
	defer ts.Close()
	if err := ts.SetLanguage(javascript); err != nil {
		log.AddError(nil, logger.Loc{}, fmt.Sprintf("Could not load the JavaScript grammar: %s", err.Error()))
		return js_ast.AST{}, false
	}

	p := &parser{
		log:    log,
		source: source,
		src:    []byte(source.Contents),
	}

	tree := ts.Parse(p.src, nil)
	defer tree.Close()
	root := tree.RootNode()

	if root.HasError() {
		p.syntaxError(root)
	}

	result.Stmts = p.parseStmtsUpTo(root, true)
	return
}

func (p *parser) loc(n *sitter.Node) logger.Loc {
	return logger.Loc{Start: int32(n.StartByte())}
}

func (p *parser) rangeOf(n *sitter.Node) logger.Range {
	return logger.Range{Loc: p.loc(n), Len: int32(n.EndByte() - n.StartByte())}
}

func (p *parser) text(n *sitter.Node) string {
	return n.Utf8Text(p.src)
}

func (p *parser) fail(n *sitter.Node, text string) {
	p.log.AddRangeError(&p.source, p.rangeOf(n), text)
	panic(parsePanic{})
}

func (p *parser) unsupported(n *sitter.Node) {
	p.fail(n, fmt.Sprintf("Unsupported syntax: %s", strings.ReplaceAll(n.Kind(), "_", " ")))
}

// Reports the earliest missing token, or failing that the earliest node that
// the grammar couldn't make sense of
func (p *parser) syntaxError(root *sitter.Node) {
	var missing, invalid *sitter.Node
	walkNodes(root, func(n *sitter.Node) {
		if n.IsMissing() && (missing == nil || n.StartByte() < missing.StartByte()) {
			missing = n
		}
		if n.IsError() && (invalid == nil || n.StartByte() < invalid.StartByte()) {
			invalid = n
		}
	})

	if missing != nil {
		p.fail(missing, fmt.Sprintf("Expected %q", missing.Kind()))
	}
	if invalid != nil {
		if invalid.StartByte() == invalid.EndByte() {
			p.fail(invalid, "Unexpected end of file")
		}
		end := invalid.StartByte() + 1
		for end < invalid.EndByte() && p.src[end]&0xC0 == 0x80 {
			end++
		}
		p.fail(invalid, fmt.Sprintf("Unexpected %q", string(p.src[invalid.StartByte():end])))
	}
	p.fail(root, "Syntax error")
}

func walkNodes(n *sitter.Node, visit func(*sitter.Node)) {
	visit(n)
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			walkNodes(child, visit)
		}
	}
}

// Returns the named children of a node without comments
func namedChildren(n *sitter.Node) []*sitter.Node {
	var children []*sitter.Node
	for _, child := range namedChildrenAndComments(n) {
		if child.Kind() != "comment" {
			children = append(children, child)
		}
	}
	return children
}

func namedChildrenAndComments(n *sitter.Node) []*sitter.Node {
	var children []*sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child != nil && child.Kind() != "hash_bang_line" && child.Kind() != "html_comment" {
			children = append(children, child)
		}
	}
	return children
}

// Comments lose the indentation they had in the source since the printer
// indents them again
func (p *parser) commentText(n *sitter.Node) string {
	lines := strings.Split(p.text(n), "\n")
	column := int(n.StartPosition().Column)
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		j := 0
		for j < column && j < len(line) && (line[j] == ' ' || line[j] == '\t') {
			j++
		}
		lines[i] = line[j:]
	}
	return strings.Join(lines, "\n")
}

// Returns the named children of a node that are stored under a given field
func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var children []*sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		if n.FieldNameForChild(uint32(i)) == field {
			if child := n.Child(i); child != nil {
				children = append(children, child)
			}
		}
	}
	return children
}

// Returns true if the node has an anonymous child token with the given text,
// such as "async", "static", "get" or "*"
func hasToken(n *sitter.Node, token string) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil && !child.IsNamed() && child.Kind() == token {
			return true
		}
	}
	return false
}

// Returns the only named child of a wrapper node such as a parenthesized
// expression or an "else" clause
func (p *parser) onlyChild(n *sitter.Node) *sitter.Node {
	children := namedChildren(n)
	if len(children) == 0 {
		p.fail(n, fmt.Sprintf("Expected an expression inside %s", strings.ReplaceAll(n.Kind(), "_", " ")))
	}
	return children[0]
}

// Converts the statements of a program or a function body. Directives are
// only recognized at the start of the list.
func (p *parser) parseStmtsUpTo(n *sitter.Node, allowDirectives bool) []js_ast.Stmt {
	var stmts []js_ast.Stmt
	for _, child := range namedChildrenAndComments(n) {
		if child.Kind() == "comment" {
			stmts = append(stmts, js_ast.Stmt{Loc: p.loc(child), Data: &js_ast.SComment{Text: p.commentText(child)}})
			continue
		}
		if allowDirectives {
			if value, ok := p.directive(child); ok {
				stmts = append(stmts, js_ast.Stmt{Loc: p.loc(child), Data: &js_ast.SDirective{Value: value}})
				continue
			}
			allowDirectives = false
		}
		stmts = append(stmts, p.parseStmt(child))
	}
	return stmts
}

func (p *parser) directive(n *sitter.Node) (string, bool) {
	if n.Kind() == "expression_statement" {
		if children := namedChildren(n); len(children) == 1 && children[0].Kind() == "string" {
			return p.parseString(children[0]), true
		}
	}
	return "", false
}

func (p *parser) parseBlockBody(n *sitter.Node) []js_ast.Stmt {
	if n.Kind() != "statement_block" {
		p.fail(n, "Expected a block")
	}
	return p.parseStmtsUpTo(n, false)
}

func (p *parser) parseFnBody(n *sitter.Node) js_ast.FnBody {
	if n.Kind() != "statement_block" {
		p.fail(n, "Expected a function body")
	}
	return js_ast.FnBody{Loc: p.loc(n), Stmts: p.parseStmtsUpTo(n, true)}
}

func (p *parser) parseStmt(n *sitter.Node) js_ast.Stmt {
	loc := p.loc(n)

	switch n.Kind() {
	case "expression_statement":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: p.parseExpr(p.onlyChild(n))}}

	case "empty_statement":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}

	case "debugger_statement":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDebugger{}}

	case "statement_block":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBlock{Stmts: p.parseBlockBody(n)}}

	case "variable_declaration", "lexical_declaration":
		return js_ast.Stmt{Loc: loc, Data: p.parseLocal(n)}

	case "function_declaration", "generator_function_declaration":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SFunction{Fn: p.parseFn(n)}}

	case "class_declaration":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SClass{Class: p.parseClass(n, nil)}}

	case "if_statement":
		s := &js_ast.SIf{
			Test: p.parseParenthesized(n.ChildByFieldName("condition")),
			Yes:  p.parseStmt(n.ChildByFieldName("consequence")),
		}
		if alternative := n.ChildByFieldName("alternative"); alternative != nil {
			s.NoOrNil = p.parseStmt(p.onlyChild(alternative))
		}
		return js_ast.Stmt{Loc: loc, Data: s}

	case "for_statement":
		return js_ast.Stmt{Loc: loc, Data: p.parseFor(n)}

	case "for_in_statement":
		return js_ast.Stmt{Loc: loc, Data: p.parseForInOrOf(n)}

	case "while_statement":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SWhile{
			Test: p.parseParenthesized(n.ChildByFieldName("condition")),
			Body: p.parseStmt(n.ChildByFieldName("body")),
		}}

	case "do_statement":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDoWhile{
			Body: p.parseStmt(n.ChildByFieldName("body")),
			Test: p.parseParenthesized(n.ChildByFieldName("condition")),
		}}

	case "labeled_statement":
		label := n.ChildByFieldName("label")
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLabel{
			Name: js_ast.Identifier{Loc: p.loc(label), Name: p.text(label)},
			Stmt: p.parseStmt(n.ChildByFieldName("body")),
		}}

	case "break_statement":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBreak{Label: p.parseLabel(n)}}

	case "continue_statement":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SContinue{Label: p.parseLabel(n)}}

	case "return_statement":
		s := &js_ast.SReturn{}
		if children := namedChildren(n); len(children) > 0 {
			s.ValueOrNil = p.parseExpr(children[0])
		}
		return js_ast.Stmt{Loc: loc, Data: s}

	case "throw_statement":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SThrow{Value: p.parseExpr(p.onlyChild(n))}}

	case "try_statement":
		return js_ast.Stmt{Loc: loc, Data: p.parseTry(n)}

	case "switch_statement":
		return js_ast.Stmt{Loc: loc, Data: p.parseSwitch(n)}

	case "import_statement":
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SVerbatim{Text: p.text(n)}}

	case "export_statement":
		return p.parseExport(n)
	}

	p.unsupported(n)
	return js_ast.Stmt{}
}

func (p *parser) parseLabel(n *sitter.Node) *js_ast.Identifier {
	if label := n.ChildByFieldName("label"); label != nil {
		return &js_ast.Identifier{Loc: p.loc(label), Name: p.text(label)}
	}
	return nil
}

func (p *parser) parseLocal(n *sitter.Node) *js_ast.SLocal {
	s := &js_ast.SLocal{Kind: js_ast.LocalVar}
	if kind := n.ChildByFieldName("kind"); kind != nil {
		s.Kind = localKindFromText(p.text(kind))
	}

	for _, child := range namedChildren(n) {
		if child.Kind() != "variable_declarator" {
			continue
		}
		decl := js_ast.Decl{Binding: p.parseBinding(child.ChildByFieldName("name"))}
		if value := child.ChildByFieldName("value"); value != nil {
			decl.ValueOrNil = p.parseExpr(value)
		}
		s.Decls = append(s.Decls, decl)
	}
	return s
}

func localKindFromText(text string) js_ast.LocalKind {
	switch text {
	case "let":
		return js_ast.LocalLet
	case "const":
		return js_ast.LocalConst
	default:
		return js_ast.LocalVar
	}
}

func (p *parser) parseFor(n *sitter.Node) *js_ast.SFor {
	s := &js_ast.SFor{Body: p.parseStmt(n.ChildByFieldName("body"))}

	if init := n.ChildByFieldName("initializer"); init != nil {
		switch init.Kind() {
		case "empty_statement", ";":
		case "variable_declaration", "lexical_declaration":
			s.InitOrNil = js_ast.Stmt{Loc: p.loc(init), Data: p.parseLocal(init)}
		case "expression_statement":
			s.InitOrNil = js_ast.Stmt{Loc: p.loc(init), Data: &js_ast.SExpr{Value: p.parseExpr(p.onlyChild(init))}}
		default:
			s.InitOrNil = js_ast.Stmt{Loc: p.loc(init), Data: &js_ast.SExpr{Value: p.parseExpr(init)}}
		}
	}

	if test := n.ChildByFieldName("condition"); test != nil {
		switch test.Kind() {
		case "empty_statement", ";":
		case "expression_statement":
			s.TestOrNil = p.parseExpr(p.onlyChild(test))
		default:
			s.TestOrNil = p.parseExpr(test)
		}
	}

	if update := n.ChildByFieldName("increment"); update != nil {
		s.UpdateOrNil = p.parseExpr(update)
	}
	return s
}

func (p *parser) parseForInOrOf(n *sitter.Node) js_ast.S {
	left := n.ChildByFieldName("left")
	var init js_ast.Stmt

	if kind := n.ChildByFieldName("kind"); kind != nil {
		init = js_ast.Stmt{Loc: p.loc(kind), Data: &js_ast.SLocal{
			Kind:  localKindFromText(p.text(kind)),
			Decls: []js_ast.Decl{{Binding: p.parseBinding(left)}},
		}}
	} else {
		init = js_ast.Stmt{Loc: p.loc(left), Data: &js_ast.SExpr{Value: p.parseAssignTarget(left)}}
	}

	value := p.parseExpr(n.ChildByFieldName("right"))
	body := p.parseStmt(n.ChildByFieldName("body"))

	if operator := n.ChildByFieldName("operator"); operator != nil && p.text(operator) == "of" {
		return &js_ast.SForOf{Init: init, Value: value, Body: body, IsAwait: hasToken(n, "await")}
	}
	return &js_ast.SForIn{Init: init, Value: value, Body: body}
}

func (p *parser) parseTry(n *sitter.Node) *js_ast.STry {
	body := n.ChildByFieldName("body")
	s := &js_ast.STry{BodyLoc: p.loc(body), Body: p.parseBlockBody(body)}

	if handler := n.ChildByFieldName("handler"); handler != nil {
		s.Catch = &js_ast.Catch{Loc: p.loc(handler), Body: p.parseBlockBody(handler.ChildByFieldName("body"))}
		if param := handler.ChildByFieldName("parameter"); param != nil {
			s.Catch.BindingOrNil = p.parseBinding(param)
		}
	}

	if finalizer := n.ChildByFieldName("finalizer"); finalizer != nil {
		s.Finally = &js_ast.Finally{Loc: p.loc(finalizer), Stmts: p.parseBlockBody(finalizer.ChildByFieldName("body"))}
	}
	return s
}

func (p *parser) parseSwitch(n *sitter.Node) *js_ast.SSwitch {
	s := &js_ast.SSwitch{Test: p.parseParenthesized(n.ChildByFieldName("value"))}

	for _, child := range namedChildren(n.ChildByFieldName("body")) {
		var c js_ast.Case
		value := child.ChildByFieldName("value")
		if child.Kind() == "switch_case" {
			c.ValueOrNil = p.parseExpr(value)
		}

		// Comments aren't part of the "body" field so the statements are
		// found by skipping the value instead
		for _, stmt := range namedChildrenAndComments(child) {
			switch {
			case value != nil && stmt.Id() == value.Id():
			case stmt.Kind() == "comment":
				c.Body = append(c.Body, js_ast.Stmt{Loc: p.loc(stmt), Data: &js_ast.SComment{Text: p.commentText(stmt)}})
			default:
				c.Body = append(c.Body, p.parseStmt(stmt))
			}
		}
		s.Cases = append(s.Cases, c)
	}
	return s
}

func (p *parser) parseExport(n *sitter.Node) js_ast.Stmt {
	loc := p.loc(n)
	isDefault := hasToken(n, "default")

	// Decorators may come before "export" when they belong to a class
	decorators := fieldChildren(n, "decorator")

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		var stmt js_ast.Stmt
		if decl.Kind() == "class_declaration" {
			stmt = js_ast.Stmt{Loc: p.loc(decl), Data: &js_ast.SClass{Class: p.parseClass(decl, decorators)}}
		} else {
			if len(decorators) > 0 {
				p.fail(decorators[0], "Decorators can only be used with classes")
			}
			stmt = p.parseStmt(decl)
		}

		if isDefault {
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{Value: stmt}}
		}

		switch s := stmt.Data.(type) {
		case *js_ast.SLocal:
			s.IsExport = true
		case *js_ast.SFunction:
			s.IsExport = true
		case *js_ast.SClass:
			s.IsExport = true
		default:
			p.unsupported(decl)
		}
		return stmt
	}

	if value := n.ChildByFieldName("value"); value != nil && isDefault {
		expr := p.parseExpr(value)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
			Value: js_ast.Stmt{Loc: expr.Loc, Data: &js_ast.SExpr{Value: expr}},
		}}
	}

	// Export clauses and re-exports don't contain any classes
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SVerbatim{Text: p.text(n)}}
}
