package js_lower

import (
	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/logger"
)

// A class broken down into the parts the lowering needs. The superclass is
// always present: classes without one use "Function" and have "hasSuper"
// set to false.
type classModel struct {
	name       *js_ast.Identifier
	ref        string
	superExpr  js_ast.Expr
	members    []member
	decorators []js_ast.Expr
	loc        logger.Loc
	hasSuper   bool
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type member interface{ isMember() }

type memberBase struct {
	key        js_ast.Expr
	decorators []js_ast.Expr
	comments   []string
	loc        logger.Loc
	isStatic   bool
	isComputed bool
}

type mConstructor struct {
	fn       js_ast.Fn
	comments []string
	loc      logger.Loc
}

type mMethod struct {
	memberBase
	fn js_ast.Fn
}

type mGetter struct {
	memberBase
	fn js_ast.Fn
}

type mSetter struct {
	memberBase
	fn js_ast.Fn
}

type mProperty struct {
	memberBase
	valueOrNil js_ast.Expr
}

func (*mConstructor) isMember() {}
func (*mMethod) isMember()      {}
func (*mGetter) isMember()      {}
func (*mSetter) isMember()      {}
func (*mProperty) isMember()    {}

func buildClassModel(symbols SymbolTable, class js_ast.Class, loc logger.Loc) *classModel {
	model := &classModel{
		name:       class.Name,
		decorators: class.Decorators,
		loc:        loc,
	}

	if class.Name != nil {
		model.ref = class.Name.Name
	} else {
		model.ref = symbols.MintUniqueIdentifier("class")
	}

	if class.ExtendsOrNil.Data != nil {
		model.superExpr = class.ExtendsOrNil
		model.hasSuper = true
	} else {
		model.superExpr = js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "Function"}}
	}

	for _, property := range class.Properties {
		model.members = append(model.members, toMember(property))
	}
	return model
}

func isConstructor(property js_ast.Property) bool {
	if property.IsMethod && !property.IsStatic && property.Kind == js_ast.PropertyNormal {
		name, ok := js_ast.StaticKeyName(property.Key, property.IsComputed)
		return ok && name == "constructor"
	}
	return false
}

func toMember(property js_ast.Property) member {
	base := memberBase{
		key:        property.Key,
		decorators: property.Decorators,
		comments:   property.LeadingComments,
		loc:        property.Loc,
		isStatic:   property.IsStatic,
		isComputed: property.IsComputed,
	}

	if !property.IsMethod && property.Kind == js_ast.PropertyNormal {
		return &mProperty{memberBase: base, valueOrNil: property.InitializerOrNil}
	}

	fn := property.ValueOrNil.Data.(*js_ast.EFunction).Fn
	switch {
	case isConstructor(property):
		return &mConstructor{fn: fn, comments: property.LeadingComments, loc: property.Loc}
	case property.Kind == js_ast.PropertyGet:
		return &mGetter{memberBase: base, fn: fn}
	case property.Kind == js_ast.PropertySet:
		return &mSetter{memberBase: base, fn: fn}
	default:
		return &mMethod{memberBase: base, fn: fn}
	}
}
