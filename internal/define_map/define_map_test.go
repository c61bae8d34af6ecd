package define_map

import (
	"testing"

	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/js_printer"
	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/internal/test"
)

func str(value string) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EString{Value: value}}
}

func id(name string) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EIdentifier{Name: name}}
}

func expectClassObject(t *testing.T, m *MutatorMap, expected string) {
	t.Helper()
	js := js_printer.PrintExpr(ToClassObject(m), js_printer.Options{}).JS
	test.AssertEqualWithDiff(t, string(js), expected)
}

func TestToKeyAlias(t *testing.T) {
	test.AssertEqual(t, ToKeyAlias(str("foo"), false), KeyAlias{Text: "foo"})
	test.AssertEqual(t, ToKeyAlias(js_ast.Expr{Data: &js_ast.ENumber{Value: 1}}, false), KeyAlias{Text: "1"})
	test.AssertEqual(t, ToKeyAlias(id("foo"), true), KeyAlias{Text: "foo", IsComputed: true})
	test.AssertEqual(t, ToKeyAlias(str("foo"), true), KeyAlias{Text: "\"foo\"", IsComputed: true})

	iterator := js_ast.Expr{Data: &js_ast.EDot{Target: id("Symbol"), Name: "iterator"}}
	test.AssertEqual(t, ToKeyAlias(iterator, true), KeyAlias{Text: "Symbol.iterator", IsComputed: true})
}

func TestPushOrder(t *testing.T) {
	m := &MutatorMap{}
	test.AssertEqual(t, m.Push(Member{Key: str("b"), Kind: KindValue, Value: id("fb")}), nil)
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindGet, Value: id("ga")}), nil)
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindSet, Value: id("sa")}), nil)
	test.AssertEqual(t, m.Len(), 2)

	expectClassObject(t, m, "[{\n  key: \"b\",\n  value: fb\n}, {\n  key: \"a\",\n  get: ga,\n  set: sa\n}]")
}

func TestPushSetterBeforeGetter(t *testing.T) {
	m := &MutatorMap{}
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindSet, Value: id("sa")}), nil)
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindGet, Value: id("ga")}), nil)

	expectClassObject(t, m, "[{\n  key: \"a\",\n  set: sa,\n  get: ga\n}]")
}

func TestPushConflict(t *testing.T) {
	m := &MutatorMap{}
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindValue, Value: id("f1")}), nil)

	err := m.Push(Member{Key: str("a"), Kind: KindValue, Value: id("f2"), Loc: logger.Loc{Start: 10}})
	conflict, ok := err.(*ConflictError)
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, conflict.Loc, logger.Loc{Start: 10})
	test.AssertEqual(t, err.Error(), "Key conflict with sibling node")

	// Accessors can't be added once there is a value either
	err = m.Push(Member{Key: str("a"), Kind: KindGet, Value: id("g")})
	test.AssertEqual(t, err != nil, true)

	// But a value may follow an accessor
	m = &MutatorMap{}
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindGet, Value: id("g")}), nil)
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindValue, Value: id("f")}), nil)

	// Initializers count as values
	m = &MutatorMap{}
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindInitializer, Value: id("i")}), nil)
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindSet, Value: id("s")}) != nil, true)
}

func TestComputedKeysAreDistinct(t *testing.T) {
	m := &MutatorMap{}
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindValue, Value: id("f1")}), nil)
	test.AssertEqual(t, m.Push(Member{Key: id("a"), IsComputed: true, Kind: KindValue, Value: id("f2")}), nil)
	test.AssertEqual(t, m.Len(), 2)

	expectClassObject(t, m, "[{\n  key: \"a\",\n  value: f1\n}, {\n  key: a,\n  value: f2\n}]")
}

func TestEnumerableAndDecorators(t *testing.T) {
	m := &MutatorMap{}
	test.AssertEqual(t, m.Push(Member{
		Key:        str("x"),
		Kind:       KindInitializer,
		Value:      id("init"),
		Enumerable: true,
		Decorators: []js_ast.Expr{id("d1"), id("d2")},
	}), nil)

	entry, ok := m.Lookup(KeyAlias{Text: "x"})
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, entry.Enumerable, true)
	test.AssertEqual(t, len(entry.Kinds()), 1)

	expectClassObject(t, m, "[{\n  key: \"x\",\n  enumerable: true,\n  decorators: [d1, d2],\n  initializer: init\n}]")
}

func TestDecoratorsAccumulate(t *testing.T) {
	m := &MutatorMap{}
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindGet, Value: id("g"), Decorators: []js_ast.Expr{id("d1")}}), nil)
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindSet, Value: id("s"), Decorators: []js_ast.Expr{id("d2")}}), nil)

	expectClassObject(t, m, "[{\n  key: \"a\",\n  decorators: [d1, d2],\n  get: g,\n  set: s\n}]")
}

func TestCommentsAccumulate(t *testing.T) {
	m := &MutatorMap{}
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindGet, Value: id("g"), Comments: []string{"// getter"}}), nil)
	test.AssertEqual(t, m.Push(Member{Key: str("a"), Kind: KindSet, Value: id("s"), Comments: []string{"/* setter */"}}), nil)

	expectClassObject(t, m, "[{\n  // getter\n  /* setter */\n  key: \"a\",\n  get: g,\n  set: s\n}]")
}

func TestEmpty(t *testing.T) {
	expectClassObject(t, &MutatorMap{}, "[]")
}
