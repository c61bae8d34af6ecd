package js_printer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/RobLoach/babel/internal/helpers"
	"github.com/RobLoach/babel/internal/js_ast"
)

var positiveInfinity = math.Inf(1)
var negativeInfinity = math.Inf(-1)

type printer struct {
	options            Options
	js                 []byte
	stmtStart          int
	exportDefaultStart int
	arrowExprStart     int
	forOfInitStart     int
	prevOpEnd          int
	prevNumEnd         int
	prevRegExpEnd      int
	prevOp             js_ast.OpCode
}

type printExprFlags uint8

const (
	forbidCall printExprFlags = 1 << iota
	forbidIn
	hasNonOptionalChainParent
)

func (p *printer) print(text string) {
	p.js = append(p.js, text...)
}

func (p *printer) printQuoted(text string) {
	p.js = helpers.AppendQuoted(p.js, text, '"', p.options.ASCIIOnly)
}

func (p *printer) printIndent() {
	for i := 0; i < p.options.Indent; i++ {
		p.print("  ")
	}
}

func (p *printer) printSpace() {
	p.print(" ")
}

func (p *printer) printNewline() {
	p.print("\n")
}

func (p *printer) printSemicolonAfterStatement() {
	p.print(";\n")
}

func (p *printer) printSpaceBeforeIdentifier() {
	buffer := p.js
	n := len(buffer)
	if n > 0 && (js_ast.IsIdentifierContinue(rune(buffer[n-1])) || n == p.prevRegExpEnd) {
		p.print(" ")
	}
}

func (p *printer) printSpaceBeforeOperator(next js_ast.OpCode) {
	if p.prevOpEnd == len(p.js) {
		prev := p.prevOp

		// "+ + y" => "+ +y"
		// "+ ++ y" => "+ ++y"
		// "x + + y" => "x+ +y"
		// "x ++ + y" => "x+++y"
		// "x + ++ y" => "x+ ++y"
		// "-- >" => "-- >"
		// "< ! --" => "<! --"
		if ((prev == js_ast.BinOpAdd || prev == js_ast.UnOpPos) && (next == js_ast.BinOpAdd || next == js_ast.UnOpPos || next == js_ast.UnOpPreInc)) ||
			((prev == js_ast.BinOpSub || prev == js_ast.UnOpNeg) && (next == js_ast.BinOpSub || next == js_ast.UnOpNeg || next == js_ast.UnOpPreDec)) ||
			(prev == js_ast.UnOpPostDec && next == js_ast.BinOpGt) ||
			(prev == js_ast.UnOpNot && next == js_ast.UnOpPreDec && len(p.js) > 1 && p.js[len(p.js)-2] == '<') {
			p.print(" ")
		}
	}
}

func (p *printer) printIdentifier(name string) {
	p.printSpaceBeforeIdentifier()
	p.print(name)
}

func (p *printer) printNumber(value float64, level js_ast.L) {
	absValue := math.Abs(value)

	if value != value {
		p.printSpaceBeforeIdentifier()
		p.print("NaN")
	} else if value == positiveInfinity || value == negativeInfinity {
		wrap := value == negativeInfinity && level >= js_ast.LPrefix
		if wrap {
			p.print("(")
		}
		if value == negativeInfinity {
			p.printSpaceBeforeOperator(js_ast.UnOpNeg)
			p.print("-")
		} else {
			p.printSpaceBeforeIdentifier()
		}
		p.print("Infinity")
		if wrap {
			p.print(")")
		}
	} else {
		if !math.Signbit(value) {
			p.printSpaceBeforeIdentifier()
			p.printNonNegativeFloat(absValue)

			// Remember the end of the latest number
			p.prevNumEnd = len(p.js)
		} else if level >= js_ast.LPrefix {
			// Expressions such as "(-1).toString" need to wrap negative numbers.
			// Instead of testing for "value < 0" we test for "signbit(value)" and
			// "!isNaN(value)" because we need this to be true for "-0" and "-0 < 0"
			// is false.
			p.print("(-")
			p.printNonNegativeFloat(absValue)
			p.print(")")
		} else {
			p.printSpaceBeforeOperator(js_ast.UnOpNeg)
			p.print("-")
			p.printNonNegativeFloat(absValue)

			// Remember the end of the latest number
			p.prevNumEnd = len(p.js)
		}
	}
}

// This matches what "Number.prototype.toString" returns in JavaScript
func (p *printer) printNonNegativeFloat(absValue float64) {
	if absValue >= 1e-6 && absValue < 1e21 {
		p.print(strconv.FormatFloat(absValue, 'f', -1, 64))
		return
	}
	if absValue == 0 {
		p.print("0")
		return
	}

	// "1e+21" => "1e21" and "1e-07" => "1e-7"
	text := strconv.FormatFloat(absValue, 'e', -1, 64)
	e := strings.IndexByte(text, 'e')
	mantissa, exponent := text[:e], text[e+1:]
	sign := ""
	if exponent[0] == '-' {
		sign = "-"
	}
	exponent = strings.TrimLeft(exponent[1:], "0")
	p.print(mantissa + "e" + sign + exponent)
}

func (p *printer) printBinding(binding js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BMissing:

	case *js_ast.BIdentifier:
		p.printIdentifier(b.Name)

	case *js_ast.BArray:
		p.print("[")
		for i, item := range b.Items {
			if i != 0 {
				p.print(",")
				p.printSpace()
			}
			if b.HasSpread && i+1 == len(b.Items) {
				p.print("...")
			}
			p.printBinding(item.Binding)
			p.printDefaultValue(item.DefaultValueOrNil)

			// Make sure there's a comma after trailing missing items
			if _, ok := item.Binding.Data.(*js_ast.BMissing); ok && i == len(b.Items)-1 {
				p.print(",")
			}
		}
		p.print("]")

	case *js_ast.BObject:
		p.print("{")
		for i, property := range b.Properties {
			if i != 0 {
				p.print(",")
			}
			p.printSpace()

			if property.IsSpread {
				p.print("...")
				p.printBinding(property.Value)
				continue
			}

			if property.IsComputed {
				p.print("[")
				p.printExpr(property.Key, js_ast.LComma, 0)
				p.print("]:")
				p.printSpace()
			} else if str, ok := property.Key.Data.(*js_ast.EString); ok && js_ast.IsIdentifierName(str.Value) {
				p.printIdentifier(str.Value)

				// Use a shorthand property if the names are the same
				if id, ok := property.Value.Data.(*js_ast.BIdentifier); ok && id.Name == str.Value {
					p.printDefaultValue(property.DefaultValueOrNil)
					continue
				}
				p.print(":")
				p.printSpace()
			} else {
				p.printExpr(property.Key, js_ast.LLowest, 0)
				p.print(":")
				p.printSpace()
			}

			p.printBinding(property.Value)
			p.printDefaultValue(property.DefaultValueOrNil)
		}
		if len(b.Properties) > 0 {
			p.printSpace()
		}
		p.print("}")

	default:
		panic(fmt.Sprintf("Unexpected binding of type %T", binding.Data))
	}
}

func (p *printer) printDefaultValue(valueOrNil js_ast.Expr) {
	if valueOrNil.Data != nil {
		p.printSpace()
		p.print("=")
		p.printSpace()
		p.printExpr(valueOrNil, js_ast.LComma, 0)
	}
}

func (p *printer) printFnArgs(args []js_ast.Arg, hasRestArg bool) {
	p.print("(")
	for i, arg := range args {
		if i != 0 {
			p.print(",")
			p.printSpace()
		}
		if hasRestArg && i+1 == len(args) {
			p.print("...")
		}
		p.printBinding(arg.Binding)
		p.printDefaultValue(arg.DefaultOrNil)
	}
	p.print(")")
}

func (p *printer) printFn(fn js_ast.Fn) {
	p.printFnArgs(fn.Args, fn.HasRestArg)
	p.printSpace()
	p.printBlock(fn.Body.Stmts)
}

func (p *printer) printDecorators(decorators []js_ast.Expr, separator string) {
	for _, decorator := range decorators {
		p.print("@")
		p.printExpr(decorator, js_ast.LPostfix, 0)
		p.print(separator)
		if separator == "\n" {
			p.printIndent()
		}
	}
}

func (p *printer) printClass(class js_ast.Class) {
	if class.ExtendsOrNil.Data != nil {
		p.print(" extends")
		p.printSpace()
		p.printExpr(class.ExtendsOrNil, js_ast.LNew-1, 0)
	}
	p.printSpace()

	p.print("{")
	p.printNewline()
	p.options.Indent++

	for _, item := range class.Properties {
		p.printLeadingComments(item)
		p.printIndent()
		p.printDecorators(item.Decorators, "\n")
		p.printProperty(item)

		// Need semicolons after class fields
		if item.ValueOrNil.Data == nil {
			p.printSemicolonAfterStatement()
		} else {
			p.printNewline()
		}
	}

	p.options.Indent--
	p.printIndent()
	p.print("}")
}

func (p *printer) printLeadingComments(item js_ast.Property) {
	for _, text := range item.LeadingComments {
		p.printIndentedComment(text)
	}
}

func (p *printer) printIndentedComment(text string) {
	if strings.HasPrefix(text, "/*") {
		// Re-indent multi-line comments
		for {
			newline := strings.IndexByte(text, '\n')
			if newline == -1 {
				break
			}
			p.printIndent()
			p.print(text[:newline+1])
			text = text[newline+1:]
		}
		p.printIndent()
		p.print(text)
		p.printNewline()
	} else {
		// Print a mandatory newline after single-line comments
		p.printIndent()
		p.print(text)
		p.print("\n")
	}
}

func (p *printer) printPropertyKey(item js_ast.Property) {
	if item.IsComputed {
		p.print("[")
		p.printExpr(item.Key, js_ast.LComma, 0)
		p.print("]")
		return
	}

	switch key := item.Key.Data.(type) {
	case *js_ast.EString:
		if js_ast.IsIdentifierName(key.Value) {
			p.printIdentifier(key.Value)
		} else {
			p.printQuoted(key.Value)
		}

	default:
		p.printExpr(item.Key, js_ast.LLowest, 0)
	}
}

func (p *printer) printProperty(item js_ast.Property) {
	if item.Kind == js_ast.PropertySpread {
		p.print("...")
		p.printExpr(item.ValueOrNil, js_ast.LComma, 0)
		return
	}

	if item.IsStatic {
		p.print("static")
		p.printSpace()
	}

	switch item.Kind {
	case js_ast.PropertyGet:
		p.printSpaceBeforeIdentifier()
		p.print("get")
		p.printSpace()

	case js_ast.PropertySet:
		p.printSpaceBeforeIdentifier()
		p.print("set")
		p.printSpace()
	}

	fn, isFn := item.ValueOrNil.Data.(*js_ast.EFunction)
	if isFn && item.IsMethod {
		if fn.Fn.IsAsync {
			p.printSpaceBeforeIdentifier()
			p.print("async")
			p.printSpace()
		}
		if fn.Fn.IsGenerator {
			p.print("*")
		}
	}

	p.printPropertyKey(item)

	// Methods and accessors use the shorthand syntax
	if isFn && (item.IsMethod || item.Kind != js_ast.PropertyNormal) {
		p.printFn(fn.Fn)
		return
	}

	if item.ValueOrNil.Data != nil {
		// Use a shorthand property if the names are the same
		if str, ok := item.Key.Data.(*js_ast.EString); ok && item.WasShorthand && !item.IsComputed {
			if id, ok := item.ValueOrNil.Data.(*js_ast.EIdentifier); ok && id.Name == str.Value {
				return
			}
		}

		p.print(":")
		p.printSpace()
		p.printExpr(item.ValueOrNil, js_ast.LComma, 0)
	}

	if item.InitializerOrNil.Data != nil {
		p.printSpace()
		p.print("=")
		p.printSpace()
		p.printExpr(item.InitializerOrNil, js_ast.LComma, 0)
	}
}

func (p *printer) printArgs(args []js_ast.Expr) {
	p.print("(")
	for i, arg := range args {
		if i != 0 {
			p.print(",")
			p.printSpace()
		}
		p.printExpr(arg, js_ast.LComma, 0)
	}
	p.print(")")
}

func (p *printer) printExpr(expr js_ast.Expr, level js_ast.L, flags printExprFlags) {
	switch e := expr.Data.(type) {
	case *js_ast.ESuper:
		p.printIdentifier("super")

	case *js_ast.ENull:
		p.printIdentifier("null")

	case *js_ast.EThis:
		p.printIdentifier("this")

	case *js_ast.ESpread:
		p.print("...")
		p.printExpr(e.Value, js_ast.LComma, 0)

	case *js_ast.ENewTarget:
		p.printIdentifier("new.target")

	case *js_ast.ENew:
		wrap := level >= js_ast.LCall

		if wrap {
			p.print("(")
		}

		p.printIdentifier("new")
		p.printSpace()
		p.printExpr(e.Target, js_ast.LNew, forbidCall)
		p.printArgs(e.Args)

		if wrap {
			p.print(")")
		}

	case *js_ast.ECall:
		wrap := level >= js_ast.LNew || (flags&forbidCall) != 0
		var targetFlags printExprFlags
		if e.OptionalChain == js_ast.OptionalChainNone {
			targetFlags = hasNonOptionalChainParent
		} else if (flags & hasNonOptionalChainParent) != 0 {
			wrap = true
		}

		if wrap {
			p.print("(")
		}

		p.printExpr(e.Target, js_ast.LPostfix, targetFlags)
		if e.OptionalChain == js_ast.OptionalChainStart {
			p.print("?.")
		}
		p.printArgs(e.Args)

		if wrap {
			p.print(")")
		}

	case *js_ast.EDot:
		wrap := false
		if e.OptionalChain == js_ast.OptionalChainNone {
			flags |= hasNonOptionalChainParent
		} else {
			if (flags & hasNonOptionalChainParent) != 0 {
				wrap = true
				p.print("(")
			}
			flags &= ^hasNonOptionalChainParent
		}
		p.printExpr(e.Target, js_ast.LPostfix, flags&(forbidCall|hasNonOptionalChainParent))
		if js_ast.IsIdentifierName(e.Name) {
			if e.OptionalChain != js_ast.OptionalChainStart && p.prevNumEnd == len(p.js) {
				// "1.toString" is a syntax error, so print "1 .toString" instead
				p.print(" ")
			}
			if e.OptionalChain == js_ast.OptionalChainStart {
				p.print("?.")
			} else {
				p.print(".")
			}
			p.print(e.Name)
		} else {
			if e.OptionalChain == js_ast.OptionalChainStart {
				p.print("?.")
			}
			p.print("[")
			p.printQuoted(e.Name)
			p.print("]")
		}
		if wrap {
			p.print(")")
		}

	case *js_ast.EIndex:
		wrap := false
		if e.OptionalChain == js_ast.OptionalChainNone {
			flags |= hasNonOptionalChainParent
		} else {
			if (flags & hasNonOptionalChainParent) != 0 {
				wrap = true
				p.print("(")
			}
			flags &= ^hasNonOptionalChainParent
		}
		p.printExpr(e.Target, js_ast.LPostfix, flags&(forbidCall|hasNonOptionalChainParent))
		if e.OptionalChain == js_ast.OptionalChainStart {
			p.print("?.")
		}
		p.print("[")
		p.printExpr(e.Index, js_ast.LLowest, 0)
		p.print("]")
		if wrap {
			p.print(")")
		}

	case *js_ast.EIf:
		wrap := level >= js_ast.LConditional
		if wrap {
			p.print("(")
			flags &= ^forbidIn
		}
		p.printExpr(e.Test, js_ast.LConditional, flags&forbidIn)
		p.printSpace()
		p.print("?")
		p.printSpace()
		p.printExpr(e.Yes, js_ast.LYield, 0)
		p.printSpace()
		p.print(":")
		p.printSpace()
		p.printExpr(e.No, js_ast.LYield, flags&forbidIn)
		if wrap {
			p.print(")")
		}

	case *js_ast.EArrow:
		wrap := level >= js_ast.LAssign

		if wrap {
			p.print("(")
		}
		if e.IsAsync {
			p.printIdentifier("async")
			p.printSpace()
		}

		p.printFnArgs(e.Args, e.HasRestArg)
		p.printSpace()
		p.print("=>")
		p.printSpace()

		wasPrinted := false
		if len(e.Body.Stmts) == 1 && e.PreferExpr {
			if s, ok := e.Body.Stmts[0].Data.(*js_ast.SReturn); ok && s.ValueOrNil.Data != nil {
				p.arrowExprStart = len(p.js)
				p.printExpr(s.ValueOrNil, js_ast.LComma, flags&forbidIn)
				wasPrinted = true
			}
		}
		if !wasPrinted {
			p.printBlock(e.Body.Stmts)
		}
		if wrap {
			p.print(")")
		}

	case *js_ast.EFunction:
		// Function expressions are also wrapped when they are called or
		// accessed so that an immediately-invoked function reads clearly
		n := len(p.js)
		wrap := p.stmtStart == n || p.exportDefaultStart == n || level >= js_ast.LPostfix
		if wrap {
			p.print("(")
		}
		if e.Fn.IsAsync {
			p.printIdentifier("async")
			p.printSpace()
		}
		p.printIdentifier("function")
		if e.Fn.IsGenerator {
			p.print("*")
		}
		if e.Fn.Name != nil {
			p.printSpace()
			p.print(e.Fn.Name.Name)
		}
		p.printFn(e.Fn)
		if wrap {
			p.print(")")
		}

	case *js_ast.EClass:
		n := len(p.js)
		wrap := p.stmtStart == n || p.exportDefaultStart == n || level >= js_ast.LPostfix
		if wrap {
			p.print("(")
		}
		p.printDecorators(e.Class.Decorators, " ")
		p.printIdentifier("class")
		if e.Class.Name != nil {
			p.printSpace()
			p.print(e.Class.Name.Name)
		}
		p.printClass(e.Class)
		if wrap {
			p.print(")")
		}

	case *js_ast.EArray:
		p.print("[")
		if len(e.Items) > 0 {
			if !e.IsSingleLine {
				p.options.Indent++
			}

			for i, item := range e.Items {
				if i != 0 {
					p.print(",")
					if e.IsSingleLine {
						p.printSpace()
					}
				}
				if !e.IsSingleLine {
					p.printNewline()
					p.printIndent()
				}
				if item.Data != nil {
					p.printExpr(item, js_ast.LComma, 0)
				} else if i == len(e.Items)-1 {
					// Make sure there's a comma after trailing missing items
					p.print(",")
				}
			}

			if !e.IsSingleLine {
				p.options.Indent--
				p.printNewline()
				p.printIndent()
			}
		}
		p.print("]")

	case *js_ast.EObject:
		n := len(p.js)
		wrap := p.stmtStart == n || p.arrowExprStart == n
		if wrap {
			p.print("(")
		}
		p.print("{")
		if len(e.Properties) != 0 {
			// Comments may end with a newline so they can't share a line
			isSingleLine := e.IsSingleLine
			for _, item := range e.Properties {
				if len(item.LeadingComments) > 0 {
					isSingleLine = false
				}
			}
			if !isSingleLine {
				p.options.Indent++
			}

			for i, item := range e.Properties {
				if i != 0 {
					p.print(",")
				}
				if isSingleLine {
					p.printSpace()
				} else {
					p.printNewline()
					p.printLeadingComments(item)
					p.printIndent()
				}
				p.printProperty(item)
			}

			if !isSingleLine {
				p.options.Indent--
				p.printNewline()
				p.printIndent()
			} else {
				p.printSpace()
			}
		}
		p.print("}")
		if wrap {
			p.print(")")
		}

	case *js_ast.EBoolean:
		if e.Value {
			p.printIdentifier("true")
		} else {
			p.printIdentifier("false")
		}

	case *js_ast.EString:
		p.printQuoted(e.Value)

	case *js_ast.ETemplate:
		if e.TagOrNil.Data != nil {
			p.printExpr(e.TagOrNil, js_ast.LPostfix, 0)
		}
		p.print("`")
		p.print(e.HeadRaw)
		for _, part := range e.Parts {
			p.print("${")
			p.printExpr(part.Value, js_ast.LLowest, 0)
			p.print("}")
			p.print(part.TailRaw)
		}
		p.print("`")

	case *js_ast.ERegExp:
		buffer := p.js
		n := len(buffer)

		// Avoid forming a single-line comment
		if n > 0 && buffer[n-1] == '/' {
			p.print(" ")
		}
		p.print(e.Value)

		// Need a space before the next identifier to avoid it turning into flags
		p.prevRegExpEnd = len(p.js)

	case *js_ast.EBigInt:
		p.printIdentifier(e.Value)
		p.print("n")

	case *js_ast.ENumber:
		p.printNumber(e.Value, level)

	case *js_ast.EIdentifier:
		wrap := len(p.js) == p.forOfInitStart && e.Name == "let"

		if wrap {
			p.print("(")
		}
		p.printIdentifier(e.Name)
		if wrap {
			p.print(")")
		}

	case *js_ast.EAwait:
		wrap := level >= js_ast.LPrefix

		if wrap {
			p.print("(")
		}

		p.printIdentifier("await")
		p.printSpace()
		p.printExpr(e.Value, js_ast.LPrefix-1, 0)

		if wrap {
			p.print(")")
		}

	case *js_ast.EYield:
		wrap := level >= js_ast.LAssign

		if wrap {
			p.print("(")
		}

		p.printIdentifier("yield")

		if e.ValueOrNil.Data != nil {
			if e.IsStar {
				p.print("*")
			}
			p.printSpace()
			p.printExpr(e.ValueOrNil, js_ast.LYield, 0)
		}

		if wrap {
			p.print(")")
		}

	case *js_ast.EUnary:
		entry := js_ast.OpTable[e.Op]
		wrap := level >= entry.Level

		if wrap {
			p.print("(")
		}

		if !e.Op.IsPrefix() {
			p.printExpr(e.Value, js_ast.LPostfix-1, 0)
		}

		if entry.IsKeyword {
			p.printIdentifier(entry.Text)
			p.printSpace()
		} else {
			p.printSpaceBeforeOperator(e.Op)
			p.print(entry.Text)
			p.prevOp = e.Op
			p.prevOpEnd = len(p.js)
		}

		if e.Op.IsPrefix() {
			p.printExpr(e.Value, js_ast.LPrefix-1, 0)
		}

		if wrap {
			p.print(")")
		}

	case *js_ast.EBinary:
		entry := js_ast.OpTable[e.Op]
		wrap := level >= entry.Level || (e.Op == js_ast.BinOpIn && (flags&forbidIn) != 0)

		// Destructuring assignments must be parenthesized
		if n := len(p.js); p.stmtStart == n || p.arrowExprStart == n {
			if _, ok := e.Left.Data.(*js_ast.EObject); ok {
				wrap = true
			}
		}

		if wrap {
			p.print("(")
			flags &= ^forbidIn
		}

		leftLevel := entry.Level - 1
		rightLevel := entry.Level - 1

		if e.Op.IsRightAssociative() {
			leftLevel = entry.Level
		}
		if e.Op.IsLeftAssociative() {
			rightLevel = entry.Level
		}

		switch e.Op {
		case js_ast.BinOpNullishCoalescing:
			// "??" can't directly contain "||" or "&&" without being wrapped in parentheses
			if left, ok := e.Left.Data.(*js_ast.EBinary); ok && (left.Op == js_ast.BinOpLogicalOr || left.Op == js_ast.BinOpLogicalAnd) {
				leftLevel = js_ast.LPrefix
			}
			if right, ok := e.Right.Data.(*js_ast.EBinary); ok && (right.Op == js_ast.BinOpLogicalOr || right.Op == js_ast.BinOpLogicalAnd) {
				rightLevel = js_ast.LPrefix
			}

		case js_ast.BinOpPow:
			// "**" can't contain certain unary expressions
			switch left := e.Left.Data.(type) {
			case *js_ast.EUnary:
				if left.Op.IsPrefix() {
					leftLevel = js_ast.LCall
				}
			case *js_ast.EAwait, *js_ast.ENumber:
				leftLevel = js_ast.LCall
			}
		}

		p.printExpr(e.Left, leftLevel, flags&forbidIn)

		if e.Op != js_ast.BinOpComma {
			p.printSpace()
		}

		if entry.IsKeyword {
			p.printIdentifier(entry.Text)
		} else {
			p.printSpaceBeforeOperator(e.Op)
			p.print(entry.Text)
			p.prevOp = e.Op
			p.prevOpEnd = len(p.js)
		}

		p.printSpace()
		p.printExpr(e.Right, rightLevel, flags&forbidIn)

		if wrap {
			p.print(")")
		}

	default:
		panic(fmt.Sprintf("Unexpected expression of type %T", expr.Data))
	}
}

func (p *printer) printDeclStmt(isExport bool, keyword string, decls []js_ast.Decl) {
	p.printIndent()
	if isExport {
		p.print("export ")
	}
	p.printDecls(keyword, decls, 0)
	p.printSemicolonAfterStatement()
}

func localKeyword(kind js_ast.LocalKind) string {
	switch kind {
	case js_ast.LocalLet:
		return "let"
	case js_ast.LocalConst:
		return "const"
	default:
		return "var"
	}
}

func (p *printer) printForLoopInit(init js_ast.Stmt, flags printExprFlags) {
	switch s := init.Data.(type) {
	case *js_ast.SExpr:
		p.printExpr(s.Value, js_ast.LLowest, flags)
	case *js_ast.SLocal:
		p.printDecls(localKeyword(s.Kind), s.Decls, flags)
	default:
		panic("Internal error")
	}
}

func (p *printer) printDecls(keyword string, decls []js_ast.Decl, flags printExprFlags) {
	p.printIdentifier(keyword)
	p.printSpace()

	for i, decl := range decls {
		if i != 0 {
			p.print(",")
			p.printSpace()
		}
		p.printBinding(decl.Binding)

		if decl.ValueOrNil.Data != nil {
			p.printSpace()
			p.print("=")
			p.printSpace()
			p.printExpr(decl.ValueOrNil, js_ast.LComma, flags)
		}
	}
}

func (p *printer) printBody(body js_ast.Stmt) {
	if block, ok := body.Data.(*js_ast.SBlock); ok {
		p.printSpace()
		p.printBlock(block.Stmts)
		p.printNewline()
	} else {
		p.printNewline()
		p.options.Indent++
		p.printStmt(body)
		p.options.Indent--
	}
}

func (p *printer) printBlock(stmts []js_ast.Stmt) {
	p.print("{")
	p.printNewline()

	p.options.Indent++
	for _, stmt := range stmts {
		p.printStmt(stmt)
	}
	p.options.Indent--

	p.printIndent()
	p.print("}")
}

func wrapToAvoidAmbiguousElse(s js_ast.S) bool {
	for {
		switch current := s.(type) {
		case *js_ast.SIf:
			if current.NoOrNil.Data == nil {
				return true
			}
			s = current.NoOrNil.Data

		case *js_ast.SFor:
			s = current.Body.Data

		case *js_ast.SForIn:
			s = current.Body.Data

		case *js_ast.SForOf:
			s = current.Body.Data

		case *js_ast.SWhile:
			s = current.Body.Data

		case *js_ast.SLabel:
			s = current.Stmt.Data

		default:
			return false
		}
	}
}

func (p *printer) printIf(s *js_ast.SIf) {
	p.printIdentifier("if")
	p.printSpace()
	p.print("(")
	p.printExpr(s.Test, js_ast.LLowest, 0)
	p.print(")")
	no := s.NoOrNil

	if yes, ok := s.Yes.Data.(*js_ast.SBlock); ok {
		p.printSpace()
		p.printBlock(yes.Stmts)

		if no.Data != nil {
			p.printSpace()
		} else {
			p.printNewline()
		}
	} else if wrapToAvoidAmbiguousElse(s.Yes.Data) {
		p.printSpace()
		p.print("{")
		p.printNewline()

		p.options.Indent++
		p.printStmt(s.Yes)
		p.options.Indent--

		p.printIndent()
		p.print("}")

		if no.Data != nil {
			p.printSpace()
		} else {
			p.printNewline()
		}
	} else {
		p.printNewline()
		p.options.Indent++
		p.printStmt(s.Yes)
		p.options.Indent--

		if no.Data != nil {
			p.printIndent()
		}
	}

	if no.Data != nil {
		p.printIdentifier("else")

		if block, ok := no.Data.(*js_ast.SBlock); ok {
			p.printSpace()
			p.printBlock(block.Stmts)
			p.printNewline()
		} else if ifStmt, ok := no.Data.(*js_ast.SIf); ok {
			p.printSpace()
			p.printIf(ifStmt)
		} else {
			p.printNewline()
			p.options.Indent++
			p.printStmt(no)
			p.options.Indent--
		}
	}
}

func (p *printer) printLabel(keyword string, label *js_ast.Identifier) {
	p.printIndent()
	p.printIdentifier(keyword)
	if label != nil {
		p.print(" ")
		p.print(label.Name)
	}
	p.printSemicolonAfterStatement()
}

func (p *printer) printStmt(stmt js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SFunction:
		p.printIndent()
		if s.IsExport {
			p.print("export ")
		}
		if s.Fn.IsAsync {
			p.print("async ")
		}
		p.printIdentifier("function")
		if s.Fn.IsGenerator {
			p.print("*")
		}
		if s.Fn.Name != nil {
			p.printSpace()
			p.print(s.Fn.Name.Name)
		}
		p.printFn(s.Fn)
		p.printNewline()

	case *js_ast.SClass:
		p.printIndent()
		p.printDecorators(s.Class.Decorators, "\n")
		if s.IsExport {
			p.print("export ")
		}
		p.printIdentifier("class")
		if s.Class.Name != nil {
			p.printSpace()
			p.print(s.Class.Name.Name)
		}
		p.printClass(s.Class)
		p.printNewline()

	case *js_ast.SEmpty:
		p.printIndent()
		p.print(";")
		p.printNewline()

	case *js_ast.SComment:
		p.printIndentedComment(s.Text)

	case *js_ast.SDebugger:
		p.printIndent()
		p.printIdentifier("debugger")
		p.printSemicolonAfterStatement()

	case *js_ast.SDirective:
		p.printIndent()
		p.printQuoted(s.Value)
		p.printSemicolonAfterStatement()

	case *js_ast.SVerbatim:
		p.printIndent()
		p.print(s.Text)
		p.printNewline()

	case *js_ast.SExportDefault:
		p.printIndent()
		p.print("export default")
		p.printSpace()

		switch s2 := s.Value.Data.(type) {
		case *js_ast.SExpr:
			// Functions and classes must be wrapped to avoid confusion with their statement forms
			p.exportDefaultStart = len(p.js)
			p.printExpr(s2.Value, js_ast.LComma, 0)
			p.printSemicolonAfterStatement()

		case *js_ast.SFunction, *js_ast.SClass:
			indent := p.options.Indent
			p.options.Indent = 0
			p.printStmt(s.Value)
			p.options.Indent = indent

		default:
			panic("Internal error")
		}

	case *js_ast.SLocal:
		p.printDeclStmt(s.IsExport, localKeyword(s.Kind), s.Decls)

	case *js_ast.SIf:
		p.printIndent()
		p.printIf(s)

	case *js_ast.SDoWhile:
		p.printIndent()
		p.printIdentifier("do")
		if block, ok := s.Body.Data.(*js_ast.SBlock); ok {
			p.printSpace()
			p.printBlock(block.Stmts)
			p.printSpace()
		} else {
			p.printNewline()
			p.options.Indent++
			p.printStmt(s.Body)
			p.options.Indent--
			p.printIndent()
		}
		p.print("while")
		p.printSpace()
		p.print("(")
		p.printExpr(s.Test, js_ast.LLowest, 0)
		p.print(")")
		p.printSemicolonAfterStatement()

	case *js_ast.SForIn:
		p.printIndent()
		p.printIdentifier("for")
		p.printSpace()
		p.print("(")
		p.printForLoopInit(s.Init, forbidIn)
		p.printSpace()
		p.printIdentifier("in")
		p.printSpace()
		p.printExpr(s.Value, js_ast.LLowest, 0)
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SForOf:
		p.printIndent()
		p.printIdentifier("for")
		if s.IsAwait {
			p.print(" await")
		}
		p.printSpace()
		p.print("(")
		p.forOfInitStart = len(p.js)
		p.printForLoopInit(s.Init, forbidIn)
		p.printSpace()
		p.printIdentifier("of")
		p.printSpace()
		p.printExpr(s.Value, js_ast.LComma, 0)
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SWhile:
		p.printIndent()
		p.printIdentifier("while")
		p.printSpace()
		p.print("(")
		p.printExpr(s.Test, js_ast.LLowest, 0)
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SLabel:
		p.printIndent()
		p.printIdentifier(s.Name.Name)
		p.print(":")
		p.printBody(s.Stmt)

	case *js_ast.STry:
		p.printIndent()
		p.printIdentifier("try")
		p.printSpace()
		p.printBlock(s.Body)

		if s.Catch != nil {
			p.printSpace()
			p.print("catch")
			if s.Catch.BindingOrNil.Data != nil {
				p.printSpace()
				p.print("(")
				p.printBinding(s.Catch.BindingOrNil)
				p.print(")")
			}
			p.printSpace()
			p.printBlock(s.Catch.Body)
		}

		if s.Finally != nil {
			p.printSpace()
			p.print("finally")
			p.printSpace()
			p.printBlock(s.Finally.Stmts)
		}

		p.printNewline()

	case *js_ast.SFor:
		p.printIndent()
		p.printIdentifier("for")
		p.printSpace()
		p.print("(")
		if s.InitOrNil.Data != nil {
			p.printForLoopInit(s.InitOrNil, forbidIn)
		}
		p.print(";")
		if s.TestOrNil.Data != nil {
			p.printSpace()
			p.printExpr(s.TestOrNil, js_ast.LLowest, 0)
		}
		p.print(";")
		if s.UpdateOrNil.Data != nil {
			p.printSpace()
			p.printExpr(s.UpdateOrNil, js_ast.LLowest, 0)
		}
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SSwitch:
		p.printIndent()
		p.printIdentifier("switch")
		p.printSpace()
		p.print("(")
		p.printExpr(s.Test, js_ast.LLowest, 0)
		p.print(")")
		p.printSpace()
		p.print("{")
		p.printNewline()
		p.options.Indent++

		for _, c := range s.Cases {
			p.printIndent()

			if c.ValueOrNil.Data != nil {
				p.print("case")
				p.printSpace()
				p.printExpr(c.ValueOrNil, js_ast.LLogicalAnd, 0)
			} else {
				p.print("default")
			}
			p.print(":")

			if len(c.Body) == 1 {
				if block, ok := c.Body[0].Data.(*js_ast.SBlock); ok {
					p.printSpace()
					p.printBlock(block.Stmts)
					p.printNewline()
					continue
				}
			}

			p.printNewline()
			p.options.Indent++
			for _, stmt := range c.Body {
				p.printStmt(stmt)
			}
			p.options.Indent--
		}

		p.options.Indent--
		p.printIndent()
		p.print("}")
		p.printNewline()

	case *js_ast.SBlock:
		p.printIndent()
		p.printBlock(s.Stmts)
		p.printNewline()

	case *js_ast.SReturn:
		p.printIndent()
		p.printIdentifier("return")
		if s.ValueOrNil.Data != nil {
			p.printSpace()
			p.printExpr(s.ValueOrNil, js_ast.LLowest, 0)
		}
		p.printSemicolonAfterStatement()

	case *js_ast.SThrow:
		p.printIndent()
		p.printIdentifier("throw")
		p.printSpace()
		p.printExpr(s.Value, js_ast.LLowest, 0)
		p.printSemicolonAfterStatement()

	case *js_ast.SBreak:
		p.printLabel("break", s.Label)

	case *js_ast.SContinue:
		p.printLabel("continue", s.Label)

	case *js_ast.SExpr:
		p.printIndent()
		p.stmtStart = len(p.js)
		p.printExpr(s.Value, js_ast.LLowest, 0)
		p.printSemicolonAfterStatement()

	default:
		panic(fmt.Sprintf("Unexpected statement of type %T", stmt.Data))
	}
}

type Options struct {
	Indent    int
	ASCIIOnly bool
}

type PrintResult struct {
	JS []byte
}

func newPrinter(options Options) *printer {
	return &printer{
		options:            options,
		stmtStart:          -1,
		exportDefaultStart: -1,
		arrowExprStart:     -1,
		forOfInitStart:     -1,
		prevOpEnd:          -1,
		prevNumEnd:         -1,
		prevRegExpEnd:      -1,
	}
}

func Print(tree js_ast.AST, options Options) PrintResult {
	p := newPrinter(options)

	for _, stmt := range tree.Stmts {
		p.printStmt(stmt)
	}

	return PrintResult{JS: p.js}
}

// Prints a single expression without a trailing newline
func PrintExpr(expr js_ast.Expr, options Options) PrintResult {
	p := newPrinter(options)
	p.printExpr(expr, js_ast.LLowest, 0)
	return PrintResult{JS: p.js}
}
