package js_lower

import (
	"github.com/RobLoach/babel/internal/define_map"
	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/internal/replace_supers"
	"github.com/RobLoach/babel/internal/runtime"
)

// Instance property initializers are moved into a method with this name when
// they can't be inlined into the constructor
const propertyCollisionMethodName = "__initializeProperties"

type SymbolTable interface {
	MintUniqueIdentifier(base string) string
	MintUniqueIdentifierForExpr(expr js_ast.Expr) string
	HasOwnBinding(fn js_ast.Fn, name string) bool
	RenameBinding(fn js_ast.Fn, name string) (js_ast.Fn, string)
	FreeIdentifiers(expr js_ast.Expr) []string
}

type HelperRegistry interface {
	ResolveHelper(name string) js_ast.Expr
	ExpandTemplate(name string, args runtime.TemplateArgs) js_ast.Stmt
}

// Everything that outlives a single class. There is one of these per file.
type Env struct {
	Symbols SymbolTable
	Helpers HelperRegistry
}

type ClassOptions struct {
	// Install plain methods with assignments instead of property descriptors
	IsLoose bool

	// The name an anonymous class expression would get from its context, as
	// in "let Foo = class {}"
	NameHint string
}

type ErrorKind uint8

const (
	StructuralViolation ErrorKind = iota
	ConstructorLegalityViolation
	UnsupportedSyntax
)

type Error struct {
	Kind ErrorKind
	Loc  logger.Loc
	Text string
}

func (err *Error) Error() string {
	return err.Text
}

type classLowering struct {
	env     Env
	options ClassOptions
	model   *classModel

	classRef js_ast.Expr
	superRef js_ast.Expr

	// The statements inside the closure between the constructor and the
	// trailing return
	body []js_ast.Stmt

	instanceMap   define_map.MutatorMap
	staticMap     define_map.MutatorMap
	hasDecorators bool

	instancePropBody []js_ast.Stmt
	instancePropRefs []string
	staticPropBody   []js_ast.Stmt

	instanceInitializers string
	staticInitializers   string

	userConstructor     *js_ast.Fn
	constructorComments []string
	constructorLoc      logger.Loc
	superAnchor         js_ast.StmtPath

	// Stands in for the instance property initializers next to a "super()"
	// call that is inside an arrow function
	superMarker *js_ast.EIdentifier

	// Synthesized statements that go before the user's constructor body
	constructorPrefix []js_ast.Stmt
}

// Converts a class into an expression that builds the same constructor with
// ES5 features and the runtime helpers. Nested classes must already have been
// lowered. Nothing is returned if the class breaks one of the rules for
// classes and the error says which one.
func LowerClass(env Env, class js_ast.Class, loc logger.Loc, options ClassOptions) (js_ast.Expr, error) {
	l := &classLowering{
		env:     env,
		options: options,
		model:   buildClassModel(env.Symbols, class, loc),
	}
	l.classRef = l.identifier(l.model.ref)

	if l.model.hasSuper {
		l.superRef = l.identifier(env.Symbols.MintUniqueIdentifierForExpr(l.model.superExpr))
		l.body = append(l.body, l.callStmt(env.Helpers.ResolveHelper(runtime.Inherits), l.classRef, l.superRef))
	} else {
		l.superRef = l.model.superExpr
	}

	if err := l.routeMembers(); err != nil {
		return js_ast.Expr{}, err
	}
	if err := l.placePropertyInitializers(); err != nil {
		return js_ast.Expr{}, err
	}
	l.emitCreateClass()
	return l.emitClosure(), nil
}

func (l *classLowering) identifier(name string) js_ast.Expr {
	return js_ast.Expr{Loc: l.model.loc, Data: &js_ast.EIdentifier{Name: name}}
}

func (l *classLowering) callStmt(target js_ast.Expr, args ...js_ast.Expr) js_ast.Stmt {
	loc := l.model.loc
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: js_ast.Expr{Loc: loc, Data: &js_ast.ECall{Target: target, Args: args}}}}
}

func (l *classLowering) supersOptions(isStatic bool) replace_supers.Options {
	return replace_supers.Options{
		Helpers:  l.env.Helpers,
		ClassRef: l.classRef,
		SuperRef: l.superRef,
		IsLoose:  l.options.IsLoose,
		IsStatic: isStatic,
	}
}

func unsupported(err error) error {
	if err, ok := err.(*replace_supers.Error); ok {
		return &Error{Kind: UnsupportedSyntax, Loc: err.Loc, Text: err.Text}
	}
	return err
}

func (l *classLowering) routeMembers() error {
	for _, m := range l.model.members {
		switch m := m.(type) {
		case *mConstructor:
			if err := l.pushConstructor(m); err != nil {
				return err
			}

		case *mMethod:
			fn, _, err := replace_supers.ReplaceFn(m.fn, l.supersOptions(m.isStatic))
			if err != nil {
				return unsupported(err)
			}
			if err := l.pushMethod(m.memberBase, fn, false); err != nil {
				return err
			}

		case *mGetter:
			if err := l.pushAccessor(m.memberBase, m.fn, define_map.KindGet); err != nil {
				return err
			}

		case *mSetter:
			if err := l.pushAccessor(m.memberBase, m.fn, define_map.KindSet); err != nil {
				return err
			}

		case *mProperty:
			if err := l.pushProperty(m); err != nil {
				return err
			}

		default:
			panic("Internal error")
		}
	}

	// A derived class without a constructor forwards its arguments
	if l.userConstructor == nil && l.model.hasSuper {
		template := runtime.ClassSuperConstructorCall
		if l.options.IsLoose {
			template = runtime.ClassSuperConstructorCallLoose
		}
		l.constructorPrefix = append(l.constructorPrefix, l.env.Helpers.ExpandTemplate(template, runtime.TemplateArgs{
			ClassRef: l.classRef,
			SuperRef: l.superRef,
			Loc:      l.model.loc,
		}))
	}
	return nil
}

func (l *classLowering) pushConstructor(m *mConstructor) error {
	if l.userConstructor != nil {
		return &Error{Kind: StructuralViolation, Loc: m.loc, Text: "Duplicate constructor in the same class"}
	}

	// A local in the constructor with the same name as the class would
	// capture the references to the class that are about to be added
	fn := m.fn
	if l.env.Symbols.HasOwnBinding(fn, l.model.ref) {
		fn, _ = l.env.Symbols.RenameBinding(fn, l.model.ref)
	}

	anchor, err := verifyConstructor(fn, l.model.hasSuper, m.loc)
	if err != nil {
		return err
	}
	if anchor.arrowCall != nil {
		l.superMarker = &js_ast.EIdentifier{Name: "undefined"}
		fn = markSuperCall(fn, anchor.arrowCall, l.superMarker)
	}

	fn, _, err = replace_supers.ReplaceFn(fn, l.supersOptions(false))
	if err != nil {
		return unsupported(err)
	}

	l.userConstructor = &fn
	l.constructorComments = m.comments
	l.constructorLoc = m.loc
	l.superAnchor = anchor.path
	return nil
}

// Rewrites "super()" to "(super(), marker)". The marker is an identifier leaf
// so it keeps its identity while the rest of the constructor is rewritten.
func markSuperCall(fn js_ast.Fn, call *js_ast.ECall, marker *js_ast.EIdentifier) js_ast.Fn {
	var mapper js_ast.Mapper
	mapper = js_ast.Mapper{
		Expr: func(expr js_ast.Expr) js_ast.Expr {
			if e, ok := expr.Data.(*js_ast.ECall); ok && e == call {
				return js_ast.JoinWithComma(expr, js_ast.Expr{Loc: expr.Loc, Data: marker})
			}
			return mapper.ExprChildren(expr)
		},
		Stmt: func(stmt js_ast.Stmt) js_ast.Stmt {
			return mapper.StmtChildren(stmt)
		},
	}
	return mapper.FnChildren(fn)
}

// Replaces the marker left by "markSuperCall" with the given statements.
// Comments are dropped since they can't go inside an expression.
func (l *classLowering) expandSuperMarker(stmts []js_ast.Stmt) {
	marker := l.superMarker
	l.superMarker = nil

	var mapper js_ast.Mapper
	mapper = js_ast.Mapper{
		Expr: func(expr js_ast.Expr) js_ast.Expr {
			if e, ok := expr.Data.(*js_ast.EBinary); ok && e.Op == js_ast.BinOpComma && e.Right.Data == marker {
				result := e.Left
				for _, stmt := range stmts {
					if s, ok := stmt.Data.(*js_ast.SExpr); ok {
						result = js_ast.JoinWithComma(result, s.Value)
					}
				}
				return result
			}
			return mapper.ExprChildren(expr)
		},
		Stmt: func(stmt js_ast.Stmt) js_ast.Stmt {
			return mapper.StmtChildren(stmt)
		},
	}
	*l.userConstructor = mapper.FnChildren(*l.userConstructor)
}

func isReservedMethodName(key js_ast.Expr) bool {
	str, ok := key.Data.(*js_ast.EString)
	return ok && str.Value == propertyCollisionMethodName
}

func (l *classLowering) pushMethod(m memberBase, fn js_ast.Fn, allowReservedName bool) error {
	if !allowReservedName && isReservedMethodName(m.key) {
		return &Error{Kind: StructuralViolation, Loc: m.loc, Text: "Illegal method name " + propertyCollisionMethodName}
	}

	value := js_ast.Expr{Loc: m.loc, Data: &js_ast.EFunction{Fn: l.nameMethod(m, fn)}}

	if l.options.IsLoose && len(m.decorators) == 0 {
		target := l.classRef
		if !m.isStatic {
			target = js_ast.Expr{Loc: m.loc, Data: &js_ast.EDot{Target: target, Name: "prototype", NameLoc: m.loc}}
		}
		l.body = appendComments(l.body, m.loc, m.comments)
		l.body = append(l.body, js_ast.AssignStmt(js_ast.MemberAccess(target, m.key, m.isComputed), value))
		return nil
	}

	return l.pushToMap(m, define_map.KindValue, value, false)
}

// Plain methods are given the name of their key so that they show up with a
// useful name in stack traces. This is skipped if the name would shadow
// something the method refers to.
func (l *classLowering) nameMethod(m memberBase, fn js_ast.Fn) js_ast.Fn {
	name, ok := js_ast.StaticKeyName(m.key, m.isComputed)
	if !ok || fn.Name != nil || !js_ast.IsIdentifier(name) {
		return fn
	}
	for _, free := range l.env.Symbols.FreeIdentifiers(js_ast.Expr{Data: &js_ast.EFunction{Fn: fn}}) {
		if free == name {
			return fn
		}
	}
	fn.Name = &js_ast.Identifier{Loc: m.key.Loc, Name: name}
	return fn
}

func (l *classLowering) pushAccessor(m memberBase, fn js_ast.Fn, kind define_map.Kind) error {
	if isReservedMethodName(m.key) {
		return &Error{Kind: StructuralViolation, Loc: m.loc, Text: "Illegal method name " + propertyCollisionMethodName}
	}
	fn, _, err := replace_supers.ReplaceFn(fn, l.supersOptions(m.isStatic))
	if err != nil {
		return unsupported(err)
	}
	return l.pushToMap(m, kind, js_ast.Expr{Loc: m.loc, Data: &js_ast.EFunction{Fn: fn}}, false)
}

func (l *classLowering) pushToMap(m memberBase, kind define_map.Kind, value js_ast.Expr, enumerable bool) error {
	mutatorMap := &l.instanceMap
	if m.isStatic {
		mutatorMap = &l.staticMap
	}
	if len(m.decorators) > 0 {
		l.hasDecorators = true
	}

	err := mutatorMap.Push(define_map.Member{
		Key:        m.key,
		Value:      value,
		Decorators: m.decorators,
		Comments:   m.comments,
		Loc:        m.loc,
		Kind:       kind,
		IsComputed: m.isComputed,
		Enumerable: enumerable,
	})
	if conflict, ok := err.(*define_map.ConflictError); ok {
		return &Error{Kind: StructuralViolation, Loc: conflict.Loc, Text: conflict.Error()}
	}
	return err
}

func (l *classLowering) pushProperty(m *mProperty) error {
	if m.valueOrNil.Data == nil && len(m.decorators) == 0 {
		return nil
	}

	value := m.valueOrNil
	if value.Data != nil {
		var err error
		if value, err = replace_supers.ReplaceExpr(value, l.supersOptions(m.isStatic)); err != nil {
			return unsupported(err)
		}
	}

	switch {
	case len(m.decorators) > 0:
		// The value is wrapped in a function so the decorators can decide
		// whether and when it's evaluated
		var stmts []js_ast.Stmt
		if value.Data != nil {
			stmts = []js_ast.Stmt{{Loc: value.Loc, Data: &js_ast.SReturn{ValueOrNil: value}}}
		}
		thunk := js_ast.Expr{Loc: m.loc, Data: &js_ast.EFunction{Fn: js_ast.Fn{Body: js_ast.FnBody{Loc: m.loc, Stmts: stmts}}}}
		if err := l.pushToMap(m.memberBase, define_map.KindInitializer, thunk, true); err != nil {
			return err
		}

		args := runtime.TemplateArgs{
			ClassRef:      l.classRef,
			Key:           m.key,
			IsComputedKey: m.isComputed,
			Loc:           m.loc,
		}
		if m.isStatic {
			if l.staticInitializers == "" {
				l.staticInitializers = l.env.Symbols.MintUniqueIdentifier("staticInitializers")
			}
			args.Initializers = l.identifier(l.staticInitializers)
			l.staticPropBody = append(l.staticPropBody, l.env.Helpers.ExpandTemplate(runtime.CallStaticDecorator, args))
		} else {
			if l.instanceInitializers == "" {
				l.instanceInitializers = l.env.Symbols.MintUniqueIdentifier("instanceInitializers")
			}
			args.Initializers = l.identifier(l.instanceInitializers)
			l.instancePropBody = append(l.instancePropBody, l.env.Helpers.ExpandTemplate(runtime.CallInstanceDecorator, args))
		}

	case m.isStatic:
		return l.pushToMap(m.memberBase, define_map.KindValue, value, true)

	default:
		this := js_ast.Expr{Loc: m.loc, Data: &js_ast.EThis{}}
		l.instancePropBody = appendComments(l.instancePropBody, m.loc, m.comments)
		l.instancePropBody = append(l.instancePropBody, js_ast.AssignStmt(js_ast.MemberAccess(this, m.key, m.isComputed), value))
		for _, name := range l.env.Symbols.FreeIdentifiers(value) {
			l.addPropertyRef(name)
		}
	}
	return nil
}

func appendComments(stmts []js_ast.Stmt, loc logger.Loc, comments []string) []js_ast.Stmt {
	for _, text := range comments {
		stmts = append(stmts, js_ast.Stmt{Loc: loc, Data: &js_ast.SComment{Text: text}})
	}
	return stmts
}

func (l *classLowering) addPropertyRef(name string) {
	for _, existing := range l.instancePropRefs {
		if existing == name {
			return
		}
	}
	l.instancePropRefs = append(l.instancePropRefs, name)
}

// Returns true if an instance property initializer refers to a name that the
// constructor declares. Inlining the initializer would change what it means.
func (l *classLowering) hasPropertyCollision() bool {
	if l.userConstructor == nil {
		return false
	}
	for _, name := range l.instancePropRefs {
		if l.env.Symbols.HasOwnBinding(*l.userConstructor, name) {
			return true
		}
	}
	return false
}

func (l *classLowering) insertAfterSuper(stmts []js_ast.Stmt) {
	if l.superMarker != nil {
		l.expandSuperMarker(stmts)
		return
	}
	fn := l.userConstructor
	if len(l.superAnchor) == 0 {
		fn.Body.Stmts = append(append([]js_ast.Stmt{}, stmts...), fn.Body.Stmts...)
		return
	}
	fn.Body.Stmts = js_ast.InsertStmtsAfterPath(fn.Body.Stmts, l.superAnchor, stmts)
}

func (l *classLowering) placePropertyInitializers() error {
	body := l.instancePropBody
	if len(body) == 0 {
		return nil
	}
	loc := l.model.loc

	if l.hasPropertyCollision() {
		key := js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: propertyCollisionMethodName}}
		method := js_ast.Fn{Body: js_ast.FnBody{Loc: loc, Stmts: body}}
		if err := l.pushMethod(memberBase{key: key, loc: loc}, method, true); err != nil {
			return err
		}

		this := js_ast.Expr{Loc: loc, Data: &js_ast.EThis{}}
		call := l.callStmt(js_ast.MemberAccess(this, key, false))
		if l.model.hasSuper {
			l.insertAfterSuper([]js_ast.Stmt{call})
		} else {
			l.constructorPrefix = append([]js_ast.Stmt{call}, l.constructorPrefix...)
		}
		return nil
	}

	switch {
	case l.model.hasSuper && l.userConstructor != nil:
		l.insertAfterSuper(body)
	case l.model.hasSuper:
		l.constructorPrefix = append(l.constructorPrefix, body...)
	default:
		l.constructorPrefix = append(append([]js_ast.Stmt{}, body...), l.constructorPrefix...)
	}
	return nil
}

func (l *classLowering) emitCreateClass() {
	if l.instanceMap.Len() == 0 && l.staticMap.Len() == 0 {
		return
	}
	loc := l.model.loc
	null := js_ast.Expr{Loc: loc, Data: &js_ast.ENull{}}

	// (Constructor, instanceDescriptors, staticDescriptors, instanceInitializers, staticInitializers)
	args := []js_ast.Expr{l.classRef, null, null, null, null}
	if l.instanceMap.Len() > 0 {
		args[1] = define_map.ToClassObject(&l.instanceMap)
	}
	if l.staticMap.Len() > 0 {
		args[2] = define_map.ToClassObject(&l.staticMap)
	}
	if l.instanceInitializers != "" {
		args[3] = l.identifier(l.instanceInitializers)
	}
	if l.staticInitializers != "" {
		args[4] = l.identifier(l.staticInitializers)
	}
	for len(args) > 1 {
		if _, ok := args[len(args)-1].Data.(*js_ast.ENull); !ok {
			break
		}
		args = args[:len(args)-1]
	}

	helper := runtime.CreateClass
	if l.hasDecorators {
		helper = runtime.CreateDecoratedClass
	}
	l.body = append(l.body, l.callStmt(l.env.Helpers.ResolveHelper(helper), args...))
}

func (l *classLowering) buildConstructor() js_ast.Fn {
	loc := l.model.loc
	check := l.callStmt(l.env.Helpers.ResolveHelper(runtime.ClassCallCheck), js_ast.Expr{Loc: loc, Data: &js_ast.EThis{}}, l.classRef)

	if l.superMarker != nil {
		l.expandSuperMarker(nil)
	}

	fn := js_ast.Fn{Body: js_ast.FnBody{Loc: loc}}
	stmts := append([]js_ast.Stmt{check}, l.constructorPrefix...)
	if user := l.userConstructor; user != nil {
		fn.Args = user.Args
		fn.HasRestArg = user.HasRestArg
		fn.Body.Loc = user.Body.Loc
		stmts = append(stmts, user.Body.Stmts...)
	}
	fn.Body.Stmts = stmts
	return fn
}

func (l *classLowering) emitClosure() js_ast.Expr {
	loc := l.model.loc
	ctor := l.buildConstructor()

	stmts := appendComments(nil, l.constructorLoc, l.constructorComments)
	if l.model.name != nil {
		ctor.Name = l.model.name
	} else {
		ctor.Name = l.inferredName(ctor)
		stmts = append(stmts, js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalVar, Decls: []js_ast.Decl{{
			Binding:    js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: l.model.ref}},
			ValueOrNil: js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: ctor}},
		}}}})
	}

	for _, name := range []string{l.staticInitializers, l.instanceInitializers} {
		if name != "" {
			stmts = append(stmts, js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalVar, Decls: []js_ast.Decl{{
				Binding:    js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: name}},
				ValueOrNil: js_ast.Expr{Loc: loc, Data: &js_ast.EObject{}},
			}}}})
		}
	}

	if l.model.name != nil {
		stmts = append(stmts, js_ast.Stmt{Loc: loc, Data: &js_ast.SFunction{Fn: ctor}})
	}
	stmts = append(stmts, l.body...)

	for _, decorator := range l.model.decorators {
		stmts = append(stmts, l.env.Helpers.ExpandTemplate(runtime.ClassDecorator, runtime.TemplateArgs{
			ClassRef:  l.classRef,
			Decorator: decorator,
			Loc:       decorator.Loc,
		}))
	}

	// A named class that is nothing but a constructor doesn't need a closure.
	// Comments on the constructor need one to have somewhere to go.
	if l.model.name != nil && len(stmts) == 1 && len(l.staticPropBody) == 0 {
		return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: ctor}}
	}

	stmts = append(stmts, l.staticPropBody...)
	stmts = append(stmts, js_ast.Stmt{Loc: loc, Data: &js_ast.SReturn{ValueOrNil: l.classRef}})

	closure := js_ast.Fn{Body: js_ast.FnBody{Loc: loc, Stmts: stmts}}
	var args []js_ast.Expr
	if l.model.hasSuper {
		closure.Args = []js_ast.Arg{{Binding: js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: l.superRef.Data.(*js_ast.EIdentifier).Name}}}}
		args = []js_ast.Expr{l.model.superExpr}
	}
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: closure}},
		Args:   args,
	}}
}

// Anonymous classes take their name from where they are stored, unless the
// constructor refers to something else with that name
func (l *classLowering) inferredName(ctor js_ast.Fn) *js_ast.Identifier {
	name := l.options.NameHint
	if !js_ast.IsIdentifier(name) {
		return nil
	}
	for _, free := range l.env.Symbols.FreeIdentifiers(js_ast.Expr{Data: &js_ast.EFunction{Fn: ctor}}) {
		if free == name {
			return nil
		}
	}
	return &js_ast.Identifier{Loc: l.model.loc, Name: name}
}
