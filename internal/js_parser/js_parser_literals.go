package js_parser

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/RobLoach/babel/internal/js_ast"
)

func (p *parser) parseNumber(n *sitter.Node) js_ast.Expr {
	loc := p.loc(n)
	text := strings.ReplaceAll(p.text(n), "_", "")

	if strings.HasSuffix(text, "n") {
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBigInt{Value: text[:len(text)-1]}}
	}

	value, ok := parseNumericLiteral(text)
	if !ok {
		p.fail(n, "Invalid number")
	}
	return js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Value: value}}
}

func parseNumericLiteral(text string) (float64, bool) {
	if len(text) > 1 && text[0] == '0' {
		base := 0
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseIntegerInBase(text[2:], base)
		}

		// Legacy octal literals such as "0777" only have octal digits
		if strings.Trim(text, "01234567") == "" {
			return parseIntegerInBase(text[1:], 8)
		}
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Out-of-range values are still valid numbers
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return value, true
		}
		return 0, false
	}
	return value, true
}

func parseIntegerInBase(digits string, base int) (float64, bool) {
	if value, err := strconv.ParseUint(digits, base, 64); err == nil {
		return float64(value), true
	}

	// Fall back to arbitrary precision for huge literals
	i, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return 0, false
	}
	value, _ := new(big.Float).SetInt(i).Float64()
	if math.IsInf(value, 0) {
		return math.Inf(1), true
	}
	return value, true
}

// Returns the value of a string literal with all escapes decoded
func (p *parser) parseString(n *sitter.Node) string {
	text := p.text(n)
	if len(text) < 2 {
		p.fail(n, "Invalid string")
	}
	value, ok := decodeEscapes(text[1 : len(text)-1])
	if !ok {
		p.fail(n, "Invalid escape sequence")
	}
	return value
}

func decodeEscapes(text string) (string, bool) {
	if !strings.Contains(text, "\\") {
		return text, true
	}

	sb := strings.Builder{}
	var pendingHighSurrogate rune

	flush := func() {
		if pendingHighSurrogate != 0 {
			sb.WriteRune(utf8.RuneError)
			pendingHighSurrogate = 0
		}
	}

	for i := 0; i < len(text); {
		c := text[i]
		if c != '\\' {
			flush()
			r, size := utf8.DecodeRuneInString(text[i:])
			sb.WriteRune(r)
			i += size
			continue
		}

		i++
		if i >= len(text) {
			return "", false
		}
		c = text[i]
		i++

		var codePoint rune
		switch c {
		case 'b':
			codePoint = '\b'
		case 'f':
			codePoint = '\f'
		case 'n':
			codePoint = '\n'
		case 'r':
			codePoint = '\r'
		case 't':
			codePoint = '\t'
		case 'v':
			codePoint = '\v'

		case '\r':
			// Line continuations produce nothing, and "\r\n" counts as one
			if i < len(text) && text[i] == '\n' {
				i++
			}
			continue
		case '\n':
			continue

		case 'x':
			if i+2 > len(text) {
				return "", false
			}
			value, err := strconv.ParseUint(text[i:i+2], 16, 32)
			if err != nil {
				return "", false
			}
			codePoint = rune(value)
			i += 2

		case 'u':
			var hex string
			if i < len(text) && text[i] == '{' {
				end := strings.IndexByte(text[i:], '}')
				if end < 0 {
					return "", false
				}
				hex = text[i+1 : i+end]
				i += end + 1
			} else {
				if i+4 > len(text) {
					return "", false
				}
				hex = text[i : i+4]
				i += 4
			}
			value, err := strconv.ParseUint(hex, 16, 32)
			if err != nil || value > utf8.MaxRune {
				return "", false
			}
			codePoint = rune(value)

		default:
			if c >= '0' && c <= '7' {
				// Legacy octal escapes such as "\0" or "\101"
				value := rune(c - '0')
				for j := 0; j < 2 && i < len(text) && text[i] >= '0' && text[i] <= '7' && value*8+rune(text[i]-'0') <= 0xFF; j++ {
					value = value*8 + rune(text[i]-'0')
					i++
				}
				codePoint = value
			} else {
				r, size := utf8.DecodeRuneInString(text[i-1:])
				codePoint = r
				i += size - 1
			}
		}

		// Combine escaped surrogate pairs into a single code point
		if codePoint >= 0xDC00 && codePoint <= 0xDFFF && pendingHighSurrogate != 0 {
			sb.WriteRune((pendingHighSurrogate-0xD800)<<10 + (codePoint - 0xDC00) + 0x10000)
			pendingHighSurrogate = 0
			continue
		}
		flush()
		if codePoint >= 0xD800 && codePoint <= 0xDBFF {
			pendingHighSurrogate = codePoint
			continue
		}
		if codePoint >= 0xDC00 && codePoint <= 0xDFFF {
			codePoint = utf8.RuneError
		}
		sb.WriteRune(codePoint)
	}

	flush()
	return sb.String(), true
}
