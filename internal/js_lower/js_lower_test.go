package js_lower

import (
	"fmt"
	"strings"
	"testing"

	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/js_parser"
	"github.com/RobLoach/babel/internal/js_printer"
	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/internal/renamer"
	"github.com/RobLoach/babel/internal/runtime"
	"github.com/RobLoach/babel/internal/test"
)

func msgsToText(msgs []logger.Msg) string {
	text := ""
	for _, msg := range msgs {
		if msg.Location == nil {
			text += fmt.Sprintf("%s: %s\n", msg.Kind.String(), msg.Text)
		} else {
			text += fmt.Sprintf("%s:%d:%d: %s: %s\n", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Kind.String(), msg.Text)
		}
	}
	return text
}

func lowerForTest(t *testing.T, contents string, options Options) (js_ast.AST, []logger.Msg) {
	t.Helper()
	log := logger.NewDeferLog()
	source := test.SourceForTest(contents)
	tree, ok := js_parser.Parse(log, source)
	if !ok {
		t.Fatal("Parse error: " + msgsToText(log.Done()))
	}
	tree = Lower(log, &source, tree, options)
	return tree, log.Done()
}

// The helper declarations are left out so the tests can focus on the code
// that uses them
func withoutHelpers(tree js_ast.AST) js_ast.AST {
	var stmts []js_ast.Stmt
	for _, stmt := range tree.Stmts {
		if _, ok := stmt.Data.(*js_ast.SVerbatim); !ok {
			stmts = append(stmts, stmt)
		}
	}
	return js_ast.AST{Stmts: stmts}
}

func expectPrintedCommon(t *testing.T, contents string, expected string, options Options) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		tree, msgs := lowerForTest(t, contents, options)
		test.AssertEqualWithDiff(t, msgsToText(msgs), "")
		js := js_printer.Print(withoutHelpers(tree), js_printer.Options{}).JS
		test.AssertEqualWithDiff(t, string(js), expected)
	})
}

func expectPrinted(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedCommon(t, contents, expected, Options{})
}

func expectPrintedLoose(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedCommon(t, contents, expected, Options{IsLoose: true})
}

func expectLowerError(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		_, msgs := lowerForTest(t, contents, Options{})
		test.AssertEqualWithDiff(t, msgsToText(msgs), expected)
	})
}

func TestBaseClass(t *testing.T) {
	expectPrinted(t, "class Foo {}", `let Foo = function Foo() {
  _classCallCheck(this, Foo);
};
`)

	expectPrinted(t, "class Foo { x = 1 }", `let Foo = function Foo() {
  _classCallCheck(this, Foo);
  this.x = 1;
};
`)

	expectPrinted(t, "class Foo { constructor(a) { this.a = a } x = 1; y }", `let Foo = function Foo(a) {
  _classCallCheck(this, Foo);
  this.x = 1;
  this.a = a;
};
`)

	expectPrinted(t, "class Foo { area() { return 1 } }", `let Foo = (function() {
  function Foo() {
    _classCallCheck(this, Foo);
  }
  _createClass(Foo, [{
    key: "area",
    value: function area() {
      return 1;
    }
  }]);
  return Foo;
})();
`)
}

func TestDerivedClass(t *testing.T) {
	expectPrinted(t, "class Bar extends Base { constructor() { super(); this.y = 2 } z = 3 }", `let Bar = (function(_Base) {
  function Bar() {
    _classCallCheck(this, Bar);
    _get(Object.getPrototypeOf(Bar.prototype), "constructor", this).call(this);
    this.z = 3;
    this.y = 2;
  }
  _inherits(Bar, _Base);
  return Bar;
})(Base);
`)

	expectPrinted(t, "class A extends B {}", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    _get(Object.getPrototypeOf(A.prototype), "constructor", this).apply(this, arguments);
  }
  _inherits(A, _B);
  return A;
})(B);
`)

	expectPrinted(t, "class A extends B { x = 1 }", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    _get(Object.getPrototypeOf(A.prototype), "constructor", this).apply(this, arguments);
    this.x = 1;
  }
  _inherits(A, _B);
  return A;
})(B);
`)

	expectPrinted(t, "class A extends B { m() { return super.m() } }", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    _get(Object.getPrototypeOf(A.prototype), "constructor", this).apply(this, arguments);
  }
  _inherits(A, _B);
  _createClass(A, [{
    key: "m",
    value: function m() {
      return _get(Object.getPrototypeOf(A.prototype), "m", this).call(this);
    }
  }]);
  return A;
})(B);
`)

	expectPrinted(t, "class A extends a.b.C {}", `let A = (function(_a$b$C) {
  function A() {
    _classCallCheck(this, A);
    _get(Object.getPrototypeOf(A.prototype), "constructor", this).apply(this, arguments);
  }
  _inherits(A, _a$b$C);
  return A;
})(a.b.C);
`)
}

func TestMultipleSuperCalls(t *testing.T) {
	// Initializers go after the first call
	expectPrinted(t, "class A extends B { constructor() { super(); super() } x = 1 }", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    _get(Object.getPrototypeOf(A.prototype), "constructor", this).call(this);
    this.x = 1;
    _get(Object.getPrototypeOf(A.prototype), "constructor", this).call(this);
  }
  _inherits(A, _B);
  return A;
})(B);
`)

	expectPrinted(t, "class A extends B { constructor() { { super() } } x = 1 }", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    {
      _get(Object.getPrototypeOf(A.prototype), "constructor", this).call(this);
      this.x = 1;
    }
  }
  _inherits(A, _B);
  return A;
})(B);
`)
}

func TestSuperCallInArrow(t *testing.T) {
	// The initializers run when the arrow calls the superclass constructor,
	// not when the arrow is created
	expectPrinted(t, "class A extends B { constructor() { const f = () => super(); f() } y = 1 }", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    const f = () => (_get(Object.getPrototypeOf(A.prototype), "constructor", this).call(this), this.y = 1);
    f();
  }
  _inherits(A, _B);
  return A;
})(B);
`)

	expectPrinted(t, "class A extends B { constructor() { const f = () => { super(1) }; f() } y = 1; z = 2 }", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    const f = () => {
      _get(Object.getPrototypeOf(A.prototype), "constructor", this).call(this, 1), this.y = 1, this.z = 2;
    };
    f();
  }
  _inherits(A, _B);
  return A;
})(B);
`)

	expectPrinted(t, "class A extends B { constructor() { const f = () => super(); f() } }", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    const f = () => _get(Object.getPrototypeOf(A.prototype), "constructor", this).call(this);
    f();
  }
  _inherits(A, _B);
  return A;
})(B);
`)

	expectPrinted(t, "class A extends B { constructor() { var count = 0; const f = () => super(); f() } x = count }", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    var count = 0;
    const f = () => (_get(Object.getPrototypeOf(A.prototype), "constructor", this).call(this), this.__initializeProperties());
    f();
  }
  _inherits(A, _B);
  _createClass(A, [{
    key: "__initializeProperties",
    value: function __initializeProperties() {
      this.x = count;
    }
  }]);
  return A;
})(B);
`)
}

func TestPropertyCollision(t *testing.T) {
	expectPrinted(t, "class Foo extends Bar { constructor() { var count = 0; super() } x = count }", `let Foo = (function(_Bar) {
  function Foo() {
    _classCallCheck(this, Foo);
    var count = 0;
    _get(Object.getPrototypeOf(Foo.prototype), "constructor", this).call(this);
    this.__initializeProperties();
  }
  _inherits(Foo, _Bar);
  _createClass(Foo, [{
    key: "__initializeProperties",
    value: function __initializeProperties() {
      this.x = count;
    }
  }]);
  return Foo;
})(Bar);
`)

	expectPrinted(t, "class Foo { constructor(count) { this.y = count } x = count }", `let Foo = (function() {
  function Foo(count) {
    _classCallCheck(this, Foo);
    this.__initializeProperties();
    this.y = count;
  }
  _createClass(Foo, [{
    key: "__initializeProperties",
    value: function __initializeProperties() {
      this.x = count;
    }
  }]);
  return Foo;
})();
`)

	// Names bound inside the initializer don't collide
	expectPrinted(t, "class Foo { constructor() { var count } x = (count) => count }", `let Foo = function Foo() {
  _classCallCheck(this, Foo);
  this.x = (count) => count;
  var count;
};
`)
}

func TestConstructorShadowingClassName(t *testing.T) {
	expectPrinted(t, "class Foo { constructor(Foo) { this.foo = Foo } }", `let Foo = function Foo(_Foo) {
  _classCallCheck(this, Foo);
  this.foo = _Foo;
};
`)
}

func TestStaticProperties(t *testing.T) {
	expectPrinted(t, "class Foo { static x = 1; static y }", `let Foo = (function() {
  function Foo() {
    _classCallCheck(this, Foo);
  }
  _createClass(Foo, null, [{
    key: "x",
    enumerable: true,
    value: 1
  }]);
  return Foo;
})();
`)
}

func TestAccessors(t *testing.T) {
	expectPrinted(t, "class Foo { get a() { return 1 } set a(v) {} static get b() { return 2 } }", `let Foo = (function() {
  function Foo() {
    _classCallCheck(this, Foo);
  }
  _createClass(Foo, [{
    key: "a",
    get: function() {
      return 1;
    },
    set: function(v) {
    }
  }], [{
    key: "b",
    get: function() {
      return 2;
    }
  }]);
  return Foo;
})();
`)
}

func TestComputedKeys(t *testing.T) {
	expectPrinted(t, "class A { [k]() {} static [\"a-b\"]() {} }", `let A = (function() {
  function A() {
    _classCallCheck(this, A);
  }
  _createClass(A, [{
    key: k,
    value: function() {
    }
  }], [{
    key: "a-b",
    value: function() {
    }
  }]);
  return A;
})();
`)
}

func TestMethodNames(t *testing.T) {
	// The method can't be named "foo" without shadowing the outer "foo"
	expectPrinted(t, "class A { foo() { return foo } }", `let A = (function() {
  function A() {
    _classCallCheck(this, A);
  }
  _createClass(A, [{
    key: "foo",
    value: function() {
      return foo;
    }
  }]);
  return A;
})();
`)

	expectPrinted(t, "class A { default() {} }", `let A = (function() {
  function A() {
    _classCallCheck(this, A);
  }
  _createClass(A, [{
    key: "default",
    value: function() {
    }
  }]);
  return A;
})();
`)
}

func TestLoose(t *testing.T) {
	expectPrintedLoose(t, "class Shape { area() { return 1 } get size() { return 2 } }", `let Shape = (function() {
  function Shape() {
    _classCallCheck(this, Shape);
  }
  Shape.prototype.area = function area() {
    return 1;
  };
  _createClass(Shape, [{
    key: "size",
    get: function() {
      return 2;
    }
  }]);
  return Shape;
})();
`)

	expectPrintedLoose(t, "class A extends B { constructor() { super() } m() { super.m() } static n() {} }", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    _B.call(this);
  }
  _inherits(A, _B);
  A.prototype.m = function m() {
    _B.prototype.m.call(this);
  };
  A.n = function n() {
  };
  return A;
})(B);
`)

	expectPrintedLoose(t, "class A extends B {}", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    if (_B != null) {
      _B.apply(this, arguments);
    }
  }
  _inherits(A, _B);
  return A;
})(B);
`)
}

func TestDecorators(t *testing.T) {
	expectPrinted(t, "@dec class Foo { @readonly m() {} @observable x = 1 }", `let Foo = (function() {
  var _instanceInitializers = {};
  function Foo() {
    _classCallCheck(this, Foo);
    this.x = _instanceInitializers.x.call(this);
  }
  _createDecoratedClass(Foo, [{
    key: "m",
    decorators: [readonly],
    value: function m() {
    }
  }, {
    key: "x",
    enumerable: true,
    decorators: [observable],
    initializer: function() {
      return 1;
    }
  }], null, _instanceInitializers);
  Foo = dec(Foo) || Foo;
  return Foo;
})();
`)

	expectPrinted(t, "class Foo { @dec static x = 1 }", `let Foo = (function() {
  var _staticInitializers = {};
  function Foo() {
    _classCallCheck(this, Foo);
  }
  _createDecoratedClass(Foo, null, [{
    key: "x",
    enumerable: true,
    decorators: [dec],
    initializer: function() {
      return 1;
    }
  }], null, _staticInitializers);
  Foo.x = _staticInitializers.x.call(Foo);
  return Foo;
})();
`)

	// Decorated methods keep their descriptors in loose mode
	expectPrintedLoose(t, "class Foo { @dec m() {} }", `let Foo = (function() {
  function Foo() {
    _classCallCheck(this, Foo);
  }
  _createDecoratedClass(Foo, [{
    key: "m",
    decorators: [dec],
    value: function m() {
    }
  }]);
  return Foo;
})();
`)

	expectPrinted(t, "@a @b class Foo {}", `let Foo = (function() {
  function Foo() {
    _classCallCheck(this, Foo);
  }
  Foo = a(Foo) || Foo;
  Foo = b(Foo) || Foo;
  return Foo;
})();
`)
}

func TestClassExpressions(t *testing.T) {
	expectPrinted(t, "var A = class { m() {} }", `var A = (function() {
  var _class = function A() {
    _classCallCheck(this, _class);
  };
  _createClass(_class, [{
    key: "m",
    value: function m() {
    }
  }]);
  return _class;
})();
`)

	expectPrinted(t, "foo(class {})", `foo((function() {
  var _class = function() {
    _classCallCheck(this, _class);
  };
  return _class;
})());
`)

	expectPrinted(t, "x = class {}", `x = (function() {
  var _class = function x() {
    _classCallCheck(this, _class);
  };
  return _class;
})();
`)

	expectPrinted(t, "var A = class B {}", `var A = function B() {
  _classCallCheck(this, B);
};
`)
}

func TestNestedClasses(t *testing.T) {
	expectPrinted(t, "class A { m() { return class B {} } }", `let A = (function() {
  function A() {
    _classCallCheck(this, A);
  }
  _createClass(A, [{
    key: "m",
    value: function m() {
      return function B() {
        _classCallCheck(this, B);
      };
    }
  }]);
  return A;
})();
`)
}

func TestExportDefault(t *testing.T) {
	expectPrinted(t, "export default class Foo {}", `let Foo = function Foo() {
  _classCallCheck(this, Foo);
};
export default Foo;
`)

	expectPrinted(t, "export class Foo {}", `export let Foo = function Foo() {
  _classCallCheck(this, Foo);
};
`)
}

func TestHelperPrelude(t *testing.T) {
	tree, msgs := lowerForTest(t, "\"use strict\";\nclass Foo {}", Options{})
	test.AssertEqualWithDiff(t, msgsToText(msgs), "")
	js := string(js_printer.Print(tree, js_printer.Options{}).JS)
	test.AssertEqual(t, strings.HasPrefix(js, "\"use strict\";\nvar _classCallCheck = function(instance, Constructor) {\n"), true)
	test.AssertEqual(t, strings.HasSuffix(js, "let Foo = function Foo() {\n  _classCallCheck(this, Foo);\n};\n"), true)

	// A name that is already taken is not reused
	tree, _ = lowerForTest(t, "var _classCallCheck; class Foo {}", Options{})
	js = string(js_printer.Print(tree, js_printer.Options{}).JS)
	test.AssertEqual(t, strings.HasPrefix(js, "var _classCallCheck2 = function(instance, Constructor) {\n"), true)

	tree, _ = lowerForTest(t, "class Foo {}", Options{Runtime: runtime.Options{ExternalHelpers: true}})
	js = string(js_printer.Print(tree, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, "let Foo = function Foo() {\n  babelHelpers.classCallCheck(this, Foo);\n};\n")
}

func TestErrors(t *testing.T) {
	expectLowerError(t, "class A extends B { constructor() {} }",
		"<stdin>:1:20: error: Derived constructor must call super()\n")
	expectLowerError(t, "class A extends B { constructor() { this.x = 1; super() } }",
		"<stdin>:1:36: error: 'this' is not allowed before super()\n")
	expectLowerError(t, "class A extends B { constructor() { super(this) } }",
		"<stdin>:1:42: error: 'this' is not allowed before super()\n")
	expectLowerError(t, "class A extends B { constructor() { const f = () => this; super() } }",
		"<stdin>:1:52: error: 'this' is not allowed before super()\n")
	expectLowerError(t, "class A { constructor() { super() } }",
		"<stdin>:1:26: error: super call is only allowed in derived constructor\n")
	expectLowerError(t, "class A { m() {} m() {} }",
		"<stdin>:1:17: error: Key conflict with sibling node\n")
	expectLowerError(t, "class A { static x = 1; static x() {} }",
		"<stdin>:1:24: error: Key conflict with sibling node\n")

	// Instance properties are assigned in the constructor so they don't
	// conflict with methods
	expectLowerError(t, "class A { x = 1; x() {} }", "")
	expectLowerError(t, "class A { __initializeProperties() {} }",
		"<stdin>:1:10: error: Illegal method name __initializeProperties\n")
	expectLowerError(t, "class A { constructor() {} constructor() {} }",
		"<stdin>:1:27: error: Duplicate constructor in the same class\n")

	// Nested functions have their own "this"
	expectLowerError(t, "class A extends B { constructor() { const f = function() { return this }; super() } }", "")

	// Getters may share a key with a value that comes after them
	expectLowerError(t, "class A { get m() {} m() {} }", "")
	expectLowerError(t, "class A { get m() {} set m(v) {} }", "")
}

func parseClassForTest(t *testing.T, contents string) (js_ast.Class, Env) {
	t.Helper()
	log := logger.NewDeferLog()
	tree, ok := js_parser.Parse(log, test.SourceForTest(contents))
	if !ok {
		t.Fatal("Parse error")
	}
	table := renamer.NewTable(tree)
	env := Env{Symbols: table, Helpers: runtime.NewRegistry(table, runtime.Options{})}
	return tree.Stmts[0].Data.(*js_ast.SClass).Class, env
}

func expectErrorKind(t *testing.T, contents string, kind ErrorKind) {
	t.Helper()
	class, env := parseClassForTest(t, contents)
	_, err := LowerClass(env, class, logger.Loc{}, ClassOptions{})
	lowerErr, ok := err.(*Error)
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, lowerErr.Kind, kind)
}

func TestErrorKinds(t *testing.T) {
	expectErrorKind(t, "class A { m() {} m() {} }", StructuralViolation)
	expectErrorKind(t, "class A { __initializeProperties() {} }", StructuralViolation)
	expectErrorKind(t, "class A extends B { constructor() {} }", ConstructorLegalityViolation)
	expectErrorKind(t, "class A { constructor() { super() } }", ConstructorLegalityViolation)
	expectErrorKind(t, "class A extends B { constructor() { this; super() } }", ConstructorLegalityViolation)
	expectErrorKind(t, "class A extends B { m() { super.x++ } }", UnsupportedSyntax)
}

func TestVerifyConstructorAnchor(t *testing.T) {
	class, _ := parseClassForTest(t, "class A extends B { constructor() { a(); if (x) { b(); super() } else super() } }")
	fn := class.Properties[0].ValueOrNil.Data.(*js_ast.EFunction).Fn
	anchor, err := verifyConstructor(fn, true, logger.Loc{})
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, len(anchor.path), 2)
	test.AssertEqual(t, anchor.path[0], js_ast.StmtPathStep{Index: 1, Nested: 0})
	test.AssertEqual(t, anchor.path[1], js_ast.StmtPathStep{Index: 1})
	test.AssertEqual(t, anchor.arrowCall == nil, true)

	class, _ = parseClassForTest(t, "class A { constructor() { this.x = 1 } }")
	fn = class.Properties[0].ValueOrNil.Data.(*js_ast.EFunction).Fn
	anchor, err = verifyConstructor(fn, false, logger.Loc{})
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, len(anchor.path), 0)

	class, _ = parseClassForTest(t, "class A extends B { constructor() { a(); const f = () => super(); f() } }")
	fn = class.Properties[0].ValueOrNil.Data.(*js_ast.EFunction).Fn
	anchor, err = verifyConstructor(fn, true, logger.Loc{})
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, len(anchor.path), 1)
	test.AssertEqual(t, anchor.path[0], js_ast.StmtPathStep{Index: 1})
	test.AssertEqual(t, anchor.arrowCall != nil, true)
}

func TestComments(t *testing.T) {
	expectPrinted(t, "class A {\n constructor() {\n // keep me\n this.x = 1;\n }\n /* doc */\n m() {} }", `let A = (function() {
  function A() {
    _classCallCheck(this, A);
    // keep me
    this.x = 1;
  }
  _createClass(A, [{
    /* doc */
    key: "m",
    value: function m() {
    }
  }]);
  return A;
})();
`)

	// A comment on the constructor keeps the closure around so it has a place
	// to go
	expectPrinted(t, "class A {\n  // builds an A\n  constructor() {}\n}", `let A = (function() {
  // builds an A
  function A() {
    _classCallCheck(this, A);
  }
  return A;
})();
`)

	expectPrintedLoose(t, "class A {\n  // the method\n  m() {}\n  /* the field */\n  x = 1\n}", `let A = (function() {
  function A() {
    _classCallCheck(this, A);
    /* the field */
    this.x = 1;
  }
  // the method
  A.prototype.m = function m() {
  };
  return A;
})();
`)

	// Multi-line comments are indented to match where they end up
	expectPrinted(t, "// top\nclass A {\n  /**\n   * The value\n   */\n  get v() { return 1 }\n}", `// top
let A = (function() {
  function A() {
    _classCallCheck(this, A);
  }
  _createClass(A, [{
    /**
     * The value
     */
    key: "v",
    get: function() {
      return 1;
    }
  }]);
  return A;
})();
`)

	// Comments can't go inside the expression that runs the initializers
	expectPrinted(t, "class A extends B {\n  constructor() { const f = () => super(); f() }\n  // the field\n  y = 1\n}", `let A = (function(_B) {
  function A() {
    _classCallCheck(this, A);
    const f = () => (_get(Object.getPrototypeOf(A.prototype), "constructor", this).call(this), this.y = 1);
    f();
  }
  _inherits(A, _B);
  return A;
})(B);
`)
}
