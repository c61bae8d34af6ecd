package js_parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/logger"
)

var unaryOps = map[string]js_ast.OpCode{
	"+":      js_ast.UnOpPos,
	"-":      js_ast.UnOpNeg,
	"~":      js_ast.UnOpCpl,
	"!":      js_ast.UnOpNot,
	"void":   js_ast.UnOpVoid,
	"typeof": js_ast.UnOpTypeof,
	"delete": js_ast.UnOpDelete,
}

// Binary and assignment operators are looked up by their text
var binaryOps = func() map[string]js_ast.OpCode {
	ops := make(map[string]js_ast.OpCode)
	for op := js_ast.BinOpAdd; op <= js_ast.BinOpLogicalAndAssign; op++ {
		ops[js_ast.OpTable[op].Text] = op
	}
	return ops
}()

func (p *parser) parseParenthesized(n *sitter.Node) js_ast.Expr {
	if n.Kind() == "parenthesized_expression" {
		return p.parseExpr(p.onlyChild(n))
	}
	return p.parseExpr(n)
}

func (p *parser) parseExprs(nodes []*sitter.Node) []js_ast.Expr {
	exprs := make([]js_ast.Expr, 0, len(nodes))
	for _, n := range nodes {
		exprs = append(exprs, p.parseExpr(n))
	}
	return exprs
}

func (p *parser) parseExpr(n *sitter.Node) js_ast.Expr {
	loc := p.loc(n)

	switch n.Kind() {
	case "identifier", "undefined":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: p.text(n)}}

	case "this":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EThis{}}

	case "super":
		return js_ast.Expr{Loc: loc, Data: &js_ast.ESuper{}}

	case "null":
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENull{}}

	case "true":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: true}}

	case "false":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: false}}

	case "number":
		return p.parseNumber(n)

	case "string":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: p.parseString(n)}}

	case "template_string":
		return js_ast.Expr{Loc: loc, Data: p.parseTemplate(n, js_ast.Expr{})}

	case "regex":
		return js_ast.Expr{Loc: loc, Data: &js_ast.ERegExp{Value: p.text(n)}}

	case "meta_property":
		if text := p.text(n); text == "new.target" {
			return js_ast.Expr{Loc: loc, Data: &js_ast.ENewTarget{}}
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.EDot{
			Target: js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "import"}},
			Name:   "meta",
		}}

	case "import":
		// This is the target of "import()"
		return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "import"}}

	case "parenthesized_expression":
		return p.parseExpr(p.onlyChild(n))

	case "sequence_expression":
		var value js_ast.Expr
		p.flattenSequence(n, func(item *sitter.Node) {
			value = js_ast.JoinWithComma(value, p.parseExpr(item))
		})
		return value

	case "array":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EArray{
			Items:        p.parseArrayItems(n, p.parseExpr),
			IsSingleLine: !strings.Contains(p.text(n), "\n"),
		}}

	case "object":
		return js_ast.Expr{Loc: loc, Data: p.parseObject(n)}

	case "function_expression", "function", "generator_function":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: p.parseFn(n)}}

	case "arrow_function":
		return js_ast.Expr{Loc: loc, Data: p.parseArrow(n)}

	case "class":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EClass{Class: p.parseClass(n, nil)}}

	case "call_expression":
		target := p.parseExpr(n.ChildByFieldName("function"))
		args := n.ChildByFieldName("arguments")
		if args.Kind() == "template_string" {
			return js_ast.Expr{Loc: loc, Data: p.parseTemplate(args, target)}
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
			Target:        target,
			Args:          p.parseExprs(namedChildren(args)),
			OptionalChain: p.optionalChain(n, target),
		}}

	case "new_expression":
		e := &js_ast.ENew{Target: p.parseExpr(n.ChildByFieldName("constructor"))}
		if args := n.ChildByFieldName("arguments"); args != nil {
			e.Args = p.parseExprs(namedChildren(args))
		}
		return js_ast.Expr{Loc: loc, Data: e}

	case "member_expression":
		target := p.parseExpr(n.ChildByFieldName("object"))
		property := n.ChildByFieldName("property")
		if property.Kind() == "private_property_identifier" {
			p.unsupported(property)
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.EDot{
			Target:        target,
			Name:          p.text(property),
			NameLoc:       p.loc(property),
			OptionalChain: p.optionalChain(n, target),
		}}

	case "subscript_expression":
		target := p.parseExpr(n.ChildByFieldName("object"))
		return js_ast.Expr{Loc: loc, Data: &js_ast.EIndex{
			Target:        target,
			Index:         p.parseExpr(n.ChildByFieldName("index")),
			OptionalChain: p.optionalChain(n, target),
		}}

	case "assignment_expression":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{
			Op:    js_ast.BinOpAssign,
			Left:  p.parseAssignTarget(n.ChildByFieldName("left")),
			Right: p.parseExpr(n.ChildByFieldName("right")),
		}}

	case "augmented_assignment_expression", "binary_expression":
		operator := n.ChildByFieldName("operator")
		op, ok := binaryOps[p.text(operator)]
		if !ok {
			p.unsupported(operator)
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{
			Op:    op,
			Left:  p.parseExpr(n.ChildByFieldName("left")),
			Right: p.parseExpr(n.ChildByFieldName("right")),
		}}

	case "unary_expression":
		operator := n.ChildByFieldName("operator")
		op, ok := unaryOps[p.text(operator)]
		if !ok {
			p.unsupported(operator)
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: op, Value: p.parseExpr(n.ChildByFieldName("argument"))}}

	case "update_expression":
		argument := n.ChildByFieldName("argument")
		isPrefix := n.ChildByFieldName("operator").StartByte() < argument.StartByte()
		isIncrement := strings.Contains(p.text(n.ChildByFieldName("operator")), "+")
		var op js_ast.OpCode
		switch {
		case isPrefix && isIncrement:
			op = js_ast.UnOpPreInc
		case isPrefix:
			op = js_ast.UnOpPreDec
		case isIncrement:
			op = js_ast.UnOpPostInc
		default:
			op = js_ast.UnOpPostDec
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: op, Value: p.parseExpr(argument)}}

	case "ternary_expression":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EIf{
			Test: p.parseExpr(n.ChildByFieldName("condition")),
			Yes:  p.parseExpr(n.ChildByFieldName("consequence")),
			No:   p.parseExpr(n.ChildByFieldName("alternative")),
		}}

	case "await_expression":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EAwait{Value: p.parseExpr(p.onlyChild(n))}}

	case "yield_expression":
		e := &js_ast.EYield{IsStar: hasToken(n, "*")}
		if children := namedChildren(n); len(children) > 0 {
			e.ValueOrNil = p.parseExpr(children[0])
		}
		return js_ast.Expr{Loc: loc, Data: e}

	case "spread_element":
		return js_ast.Expr{Loc: loc, Data: &js_ast.ESpread{Value: p.parseExpr(p.onlyChild(n))}}
	}

	p.unsupported(n)
	return js_ast.Expr{}
}

// The grammar nests "a, b, c" as "a, (b, c)" so it has to be flattened to
// keep the usual left-to-right shape
func (p *parser) flattenSequence(n *sitter.Node, visit func(*sitter.Node)) {
	for _, child := range namedChildren(n) {
		if child.Kind() == "sequence_expression" {
			p.flattenSequence(child, visit)
		} else {
			visit(child)
		}
	}
}

// A member access or call is the start of an optional chain if it has a "?."
// token, and it continues one if its target is part of a chain that wasn't
// closed off with parentheses
func (p *parser) optionalChain(n *sitter.Node, target js_ast.Expr) js_ast.OptionalChain {
	if n.ChildByFieldName("optional_chain") != nil {
		return js_ast.OptionalChainStart
	}

	for _, field := range []string{"function", "object"} {
		if child := n.ChildByFieldName(field); child != nil && child.Kind() == "parenthesized_expression" {
			return js_ast.OptionalChainNone
		}
	}

	switch t := target.Data.(type) {
	case *js_ast.EDot:
		if t.OptionalChain != js_ast.OptionalChainNone {
			return js_ast.OptionalChainContinue
		}
	case *js_ast.EIndex:
		if t.OptionalChain != js_ast.OptionalChainNone {
			return js_ast.OptionalChainContinue
		}
	case *js_ast.ECall:
		if t.OptionalChain != js_ast.OptionalChainNone {
			return js_ast.OptionalChainContinue
		}
	}
	return js_ast.OptionalChainNone
}

type arrayElement struct {
	// This is nil for a hole
	node *sitter.Node
	loc  logger.Loc
}

// Array holes aren't nodes in the grammar, so they are found by looking for
// commas that don't follow an item
func (p *parser) arrayElements(n *sitter.Node) []arrayElement {
	var elements []arrayElement
	sawItem := false

	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		if !child.IsNamed() {
			if child.Kind() == "," {
				if !sawItem {
					elements = append(elements, arrayElement{loc: p.loc(child)})
				}
				sawItem = false
			}
			continue
		}
		elements = append(elements, arrayElement{node: child, loc: p.loc(child)})
		sawItem = true
	}
	return elements
}

func (p *parser) parseArrayItems(n *sitter.Node, item func(*sitter.Node) js_ast.Expr) []js_ast.Expr {
	var items []js_ast.Expr
	for _, element := range p.arrayElements(n) {
		if element.node == nil {
			items = append(items, js_ast.Expr{Loc: element.loc})
		} else {
			items = append(items, item(element.node))
		}
	}
	return items
}

func (p *parser) parseObject(n *sitter.Node) *js_ast.EObject {
	e := &js_ast.EObject{IsSingleLine: !strings.Contains(p.text(n), "\n")}

	for _, child := range namedChildren(n) {
		loc := p.loc(child)

		switch child.Kind() {
		case "pair":
			key, isComputed := p.parsePropertyKey(child.ChildByFieldName("key"))
			e.Properties = append(e.Properties, js_ast.Property{
				Loc:        loc,
				Key:        key,
				ValueOrNil: p.parseExpr(child.ChildByFieldName("value")),
				IsComputed: isComputed,
			})

		case "shorthand_property_identifier":
			name := p.text(child)
			e.Properties = append(e.Properties, js_ast.Property{
				Loc:          loc,
				Key:          js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: name}},
				ValueOrNil:   js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name}},
				WasShorthand: true,
			})

		case "spread_element":
			e.Properties = append(e.Properties, js_ast.Property{
				Loc:        loc,
				Kind:       js_ast.PropertySpread,
				ValueOrNil: p.parseExpr(p.onlyChild(child)),
			})

		case "method_definition":
			e.Properties = append(e.Properties, p.parseMethod(child))

		default:
			p.unsupported(child)
		}
	}
	return e
}

// Keys that aren't computed are normalized to strings (or numbers) so that
// "a", 'a' and a all end up with the same key
func (p *parser) parsePropertyKey(n *sitter.Node) (js_ast.Expr, bool) {
	loc := p.loc(n)

	switch n.Kind() {
	case "property_identifier", "identifier":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: p.text(n)}}, false

	case "string":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: p.parseString(n)}}, false

	case "number":
		return p.parseNumber(n), false

	case "computed_property_name":
		return p.parseExpr(p.onlyChild(n)), true

	case "private_property_identifier":
		p.fail(n, "Private names are not supported")
	}

	p.unsupported(n)
	return js_ast.Expr{}, false
}

func (p *parser) parseTemplate(n *sitter.Node, tagOrNil js_ast.Expr) *js_ast.ETemplate {
	e := &js_ast.ETemplate{TagOrNil: tagOrNil}
	start := n.StartByte() + 1
	var parts []js_ast.TemplatePart
	var pending *js_ast.Expr

	for _, child := range namedChildren(n) {
		if child.Kind() != "template_substitution" {
			continue
		}
		raw := string(p.src[start:child.StartByte()])
		if pending == nil {
			e.HeadRaw = raw
		} else {
			parts = append(parts, js_ast.TemplatePart{Value: *pending, TailRaw: raw})
		}
		value := p.parseExpr(p.onlyChild(child))
		pending = &value
		start = child.EndByte()
	}

	raw := string(p.src[start : n.EndByte()-1])
	if pending == nil {
		e.HeadRaw = raw
	} else {
		parts = append(parts, js_ast.TemplatePart{Value: *pending, TailRaw: raw})
	}
	e.Parts = parts
	return e
}

// Destructuring assignments use pattern nodes on the left side, which are
// turned back into the object and array literals they look like
func (p *parser) parseAssignTarget(n *sitter.Node) js_ast.Expr {
	loc := p.loc(n)

	switch n.Kind() {
	case "object_pattern":
		e := &js_ast.EObject{IsSingleLine: !strings.Contains(p.text(n), "\n")}
		for _, child := range namedChildren(n) {
			childLoc := p.loc(child)
			switch child.Kind() {
			case "shorthand_property_identifier_pattern":
				name := p.text(child)
				e.Properties = append(e.Properties, js_ast.Property{
					Loc:          childLoc,
					Key:          js_ast.Expr{Loc: childLoc, Data: &js_ast.EString{Value: name}},
					ValueOrNil:   js_ast.Expr{Loc: childLoc, Data: &js_ast.EIdentifier{Name: name}},
					WasShorthand: true,
				})

			case "object_assignment_pattern":
				left := child.ChildByFieldName("left")
				name := p.text(left)
				e.Properties = append(e.Properties, js_ast.Property{
					Loc: childLoc,
					Key: js_ast.Expr{Loc: childLoc, Data: &js_ast.EString{Value: name}},
					ValueOrNil: js_ast.Assign(
						js_ast.Expr{Loc: p.loc(left), Data: &js_ast.EIdentifier{Name: name}},
						p.parseExpr(child.ChildByFieldName("right")),
					),
				})

			case "pair_pattern":
				key, isComputed := p.parsePropertyKey(child.ChildByFieldName("key"))
				e.Properties = append(e.Properties, js_ast.Property{
					Loc:        childLoc,
					Key:        key,
					ValueOrNil: p.parseAssignTarget(child.ChildByFieldName("value")),
					IsComputed: isComputed,
				})

			case "rest_pattern":
				e.Properties = append(e.Properties, js_ast.Property{
					Loc:        childLoc,
					Kind:       js_ast.PropertySpread,
					ValueOrNil: p.parseAssignTarget(p.onlyChild(child)),
				})

			default:
				p.unsupported(child)
			}
		}
		return js_ast.Expr{Loc: loc, Data: e}

	case "array_pattern":
		return js_ast.Expr{Loc: loc, Data: &js_ast.EArray{
			Items:        p.parseArrayItems(n, p.parseAssignTarget),
			IsSingleLine: !strings.Contains(p.text(n), "\n"),
		}}

	case "assignment_pattern":
		return js_ast.Assign(p.parseAssignTarget(n.ChildByFieldName("left")), p.parseExpr(n.ChildByFieldName("right")))

	case "rest_pattern":
		return js_ast.Expr{Loc: loc, Data: &js_ast.ESpread{Value: p.parseAssignTarget(p.onlyChild(n))}}
	}

	return p.parseExpr(n)
}
