package js_parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/RobLoach/babel/internal/js_ast"
)

func (p *parser) parseFn(n *sitter.Node) js_ast.Fn {
	fn := js_ast.Fn{
		IsAsync:     hasToken(n, "async"),
		IsGenerator: hasToken(n, "*"),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = &js_ast.Identifier{Loc: p.loc(name), Name: p.text(name)}
	}
	fn.Args, fn.HasRestArg = p.parseParams(n.ChildByFieldName("parameters"))
	fn.Body = p.parseFnBody(n.ChildByFieldName("body"))
	return fn
}

func (p *parser) parseParams(n *sitter.Node) (args []js_ast.Arg, hasRestArg bool) {
	for _, child := range namedChildren(n) {
		if hasRestArg {
			p.fail(child, "Expected \")\" after the rest parameter")
		}

		switch child.Kind() {
		case "assignment_pattern":
			args = append(args, js_ast.Arg{
				Binding:      p.parseBinding(child.ChildByFieldName("left")),
				DefaultOrNil: p.parseExpr(child.ChildByFieldName("right")),
			})

		case "rest_pattern":
			args = append(args, js_ast.Arg{Binding: p.parseBinding(p.onlyChild(child))})
			hasRestArg = true

		default:
			args = append(args, js_ast.Arg{Binding: p.parseBinding(child)})
		}
	}
	return
}

func (p *parser) parseArrow(n *sitter.Node) *js_ast.EArrow {
	e := &js_ast.EArrow{IsAsync: hasToken(n, "async")}

	if param := n.ChildByFieldName("parameter"); param != nil {
		e.Args = []js_ast.Arg{{Binding: p.parseBinding(param)}}
	} else {
		e.Args, e.HasRestArg = p.parseParams(n.ChildByFieldName("parameters"))
	}

	body := n.ChildByFieldName("body")
	if body.Kind() == "statement_block" {
		e.Body = p.parseFnBody(body)
	} else {
		value := p.parseExpr(body)
		e.Body = js_ast.FnBody{Loc: value.Loc, Stmts: []js_ast.Stmt{{Loc: value.Loc, Data: &js_ast.SReturn{ValueOrNil: value}}}}
		e.PreferExpr = true
	}
	return e
}

func (p *parser) parseBinding(n *sitter.Node) js_ast.Binding {
	loc := p.loc(n)

	switch n.Kind() {
	case "identifier", "undefined", "shorthand_property_identifier_pattern":
		return js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: p.text(n)}}

	case "array_pattern":
		b := &js_ast.BArray{}
		for _, element := range p.arrayElements(n) {
			child := element.node
			if b.HasSpread && child != nil {
				p.fail(child, "Expected \"]\" after the rest element")
			}
			switch {
			case child == nil:
				b.Items = append(b.Items, js_ast.ArrayBinding{Binding: js_ast.Binding{Loc: element.loc, Data: &js_ast.BMissing{}}})
			case child.Kind() == "assignment_pattern":
				b.Items = append(b.Items, js_ast.ArrayBinding{
					Binding:           p.parseBinding(child.ChildByFieldName("left")),
					DefaultValueOrNil: p.parseExpr(child.ChildByFieldName("right")),
				})
			case child.Kind() == "rest_pattern":
				b.Items = append(b.Items, js_ast.ArrayBinding{Binding: p.parseBinding(p.onlyChild(child))})
				b.HasSpread = true
			default:
				b.Items = append(b.Items, js_ast.ArrayBinding{Binding: p.parseBinding(child)})
			}
		}
		return js_ast.Binding{Loc: loc, Data: b}

	case "object_pattern":
		b := &js_ast.BObject{}
		for _, child := range namedChildren(n) {
			switch child.Kind() {
			case "shorthand_property_identifier_pattern":
				name := p.text(child)
				b.Properties = append(b.Properties, js_ast.PropertyBinding{
					Key:   js_ast.Expr{Loc: p.loc(child), Data: &js_ast.EString{Value: name}},
					Value: js_ast.Binding{Loc: p.loc(child), Data: &js_ast.BIdentifier{Name: name}},
				})

			case "object_assignment_pattern":
				left := child.ChildByFieldName("left")
				value := p.parseBinding(left)
				property := js_ast.PropertyBinding{
					Value:             value,
					DefaultValueOrNil: p.parseExpr(child.ChildByFieldName("right")),
				}
				if id, ok := value.Data.(*js_ast.BIdentifier); ok {
					property.Key = js_ast.Expr{Loc: value.Loc, Data: &js_ast.EString{Value: id.Name}}
				} else {
					p.unsupported(left)
				}
				b.Properties = append(b.Properties, property)

			case "pair_pattern":
				key, isComputed := p.parsePropertyKey(child.ChildByFieldName("key"))
				property := js_ast.PropertyBinding{Key: key, IsComputed: isComputed}
				value := child.ChildByFieldName("value")
				if value.Kind() == "assignment_pattern" {
					property.Value = p.parseBinding(value.ChildByFieldName("left"))
					property.DefaultValueOrNil = p.parseExpr(value.ChildByFieldName("right"))
				} else {
					property.Value = p.parseBinding(value)
				}
				b.Properties = append(b.Properties, property)

			case "rest_pattern":
				b.Properties = append(b.Properties, js_ast.PropertyBinding{
					Value:    p.parseBinding(p.onlyChild(child)),
					IsSpread: true,
				})

			default:
				p.unsupported(child)
			}
		}
		return js_ast.Binding{Loc: loc, Data: b}
	}

	p.unsupported(n)
	return js_ast.Binding{}
}

func (p *parser) parseDecorators(nodes []*sitter.Node) []js_ast.Expr {
	var decorators []js_ast.Expr
	for _, n := range nodes {
		decorators = append(decorators, p.parseExpr(p.onlyChild(n)))
	}
	return decorators
}

// Parses a class declaration or expression. Decorators that were written
// before an "export" keyword are passed in separately.
func (p *parser) parseClass(n *sitter.Node, outerDecorators []*sitter.Node) js_ast.Class {
	class := js_ast.Class{
		Decorators: p.parseDecorators(append(outerDecorators, fieldChildren(n, "decorator")...)),
	}

	if name := n.ChildByFieldName("name"); name != nil {
		class.Name = &js_ast.Identifier{Loc: p.loc(name), Name: p.text(name)}
	}

	for _, child := range namedChildren(n) {
		if child.Kind() == "class_heritage" {
			class.ExtendsOrNil = p.parseExpr(p.onlyChild(child))
		}
	}

	body := n.ChildByFieldName("body")
	class.BodyLoc = p.loc(body)

	// Comments are attached to the member that follows them
	var comments []string
	for _, child := range namedChildrenAndComments(body) {
		switch child.Kind() {
		case "comment":
			comments = append(comments, p.commentText(child))

		case "method_definition":
			property := p.parseMethod(child)
			property.LeadingComments, comments = comments, nil
			class.Properties = append(class.Properties, property)

		case "field_definition":
			key, isComputed := p.parsePropertyKey(child.ChildByFieldName("property"))
			property := js_ast.Property{
				Decorators:      p.parseDecorators(fieldChildren(child, "decorator")),
				LeadingComments: comments,
				Loc:             p.loc(child),
				Key:             key,
				IsComputed:      isComputed,
				IsStatic:        hasToken(child, "static"),
			}
			if value := child.ChildByFieldName("value"); value != nil {
				property.InitializerOrNil = p.parseExpr(value)
			}
			class.Properties = append(class.Properties, property)
			comments = nil

		case "decorator":
			// These are attached to the member that follows them

		default:
			p.unsupported(child)
		}
	}

	return class
}

// Parses a method, getter or setter in either an object literal or a class
func (p *parser) parseMethod(n *sitter.Node) js_ast.Property {
	key, isComputed := p.parsePropertyKey(n.ChildByFieldName("name"))

	property := js_ast.Property{
		Decorators: p.parseDecorators(fieldChildren(n, "decorator")),
		Loc:        p.loc(n),
		Key:        key,
		IsComputed: isComputed,
		IsMethod:   true,
		IsStatic:   hasToken(n, "static") || hasToken(n, "static get"),
	}

	switch {
	case hasToken(n, "get") || hasToken(n, "static get"):
		property.Kind = js_ast.PropertyGet
	case hasToken(n, "set"):
		property.Kind = js_ast.PropertySet
	}

	fn := js_ast.Fn{
		IsAsync:     hasToken(n, "async"),
		IsGenerator: hasToken(n, "*"),
	}
	fn.Args, fn.HasRestArg = p.parseParams(n.ChildByFieldName("parameters"))
	fn.Body = p.parseFnBody(n.ChildByFieldName("body"))

	property.ValueOrNil = js_ast.Expr{Loc: p.loc(n), Data: &js_ast.EFunction{Fn: fn}}
	return property
}
