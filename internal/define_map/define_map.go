package define_map

import (
	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/js_printer"
	"github.com/RobLoach/babel/internal/logger"
)

// A normalized member key. Keys that are written differently but name the
// same property ("foo", 'foo', foo) have the same alias. Computed keys are
// compared by their printed form.
type KeyAlias struct {
	Text       string
	IsComputed bool
}

func ToKeyAlias(key js_ast.Expr, isComputed bool) KeyAlias {
	if !isComputed {
		if str, ok := key.Data.(*js_ast.EString); ok {
			return KeyAlias{Text: str.Value}
		}
	}
	text := string(js_printer.PrintExpr(key, js_printer.Options{}).JS)
	return KeyAlias{Text: text, IsComputed: isComputed}
}

type Kind uint8

const (
	KindValue Kind = iota
	KindInitializer
	KindGet
	KindSet
)

func (kind Kind) String() string {
	switch kind {
	case KindValue:
		return "value"
	case KindInitializer:
		return "initializer"
	case KindGet:
		return "get"
	case KindSet:
		return "set"
	}
	panic("Internal error")
}

// Everything that will be passed to "Object.defineProperty" for one key
type DescriptorEntry struct {
	Key        js_ast.Expr
	Decorators []js_ast.Expr
	Comments   []string
	IsComputed bool
	Enumerable bool

	// Slots in the order they were first assigned
	kinds  []Kind
	values [4]js_ast.Expr
}

func (entry *DescriptorEntry) Kinds() []Kind {
	return entry.kinds
}

// An insertion-ordered map from key alias to descriptor. Classes have one
// for the prototype and one for the constructor itself.
type MutatorMap struct {
	index   map[KeyAlias]int
	entries []*DescriptorEntry
}

func (m *MutatorMap) Len() int {
	return len(m.entries)
}

func (m *MutatorMap) Lookup(alias KeyAlias) (*DescriptorEntry, bool) {
	if i, ok := m.index[alias]; ok {
		return m.entries[i], true
	}
	return nil, false
}

type Member struct {
	Key        js_ast.Expr
	Value      js_ast.Expr
	Decorators []js_ast.Expr
	Comments   []string
	Loc        logger.Loc
	Kind       Kind
	IsComputed bool
	Enumerable bool
}

// Returned when a key already has a value or an initializer
type ConflictError struct {
	Loc logger.Loc
}

func (*ConflictError) Error() string {
	return "Key conflict with sibling node"
}

// Adds a member to the descriptor for its key. Accessors may share a key
// with each other but nothing may be added once a key has a value or an
// initializer.
func (m *MutatorMap) Push(member Member) error {
	alias := ToKeyAlias(member.Key, member.IsComputed)
	entry, ok := m.Lookup(alias)
	if !ok {
		if m.index == nil {
			m.index = make(map[KeyAlias]int)
		}
		entry = &DescriptorEntry{}
		m.index[alias] = len(m.entries)
		m.entries = append(m.entries, entry)
	}

	entry.Key = member.Key
	if member.Enumerable {
		entry.Enumerable = true
	}
	if member.IsComputed {
		entry.IsComputed = true
	}
	if len(member.Decorators) > 0 {
		entry.Decorators = append(entry.Decorators, member.Decorators...)
	}
	if len(member.Comments) > 0 {
		entry.Comments = append(entry.Comments, member.Comments...)
	}

	if entry.values[KindValue].Data != nil || entry.values[KindInitializer].Data != nil {
		return &ConflictError{Loc: member.Loc}
	}

	if entry.values[member.Kind].Data == nil {
		entry.kinds = append(entry.kinds, member.Kind)
	}
	entry.values[member.Kind] = member.Value
	return nil
}

// Builds the array of descriptors that "create-class" expects:
//
//	[{ key: "a", enumerable: true, value: ... }, ...]
func ToClassObject(m *MutatorMap) js_ast.Expr {
	items := make([]js_ast.Expr, 0, len(m.entries))

	for _, entry := range m.entries {
		loc := entry.Key.Loc
		key := field(loc, "key", entry.Key)
		key.LeadingComments = entry.Comments
		properties := []js_ast.Property{key}
		if entry.Enumerable {
			properties = append(properties, field(loc, "enumerable", js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: true}}))
		}
		if len(entry.Decorators) > 0 {
			decorators := js_ast.Expr{Loc: loc, Data: &js_ast.EArray{Items: entry.Decorators, IsSingleLine: true}}
			properties = append(properties, field(loc, "decorators", decorators))
		}
		for _, kind := range entry.kinds {
			properties = append(properties, field(loc, kind.String(), entry.values[kind]))
		}

		items = append(items, js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: properties}})
	}

	return js_ast.Expr{Data: &js_ast.EArray{Items: items, IsSingleLine: true}}
}

func field(loc logger.Loc, name string, value js_ast.Expr) js_ast.Property {
	return js_ast.Property{
		Loc:        loc,
		Key:        js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: name}},
		ValueOrNil: value,
	}
}
