package helpers

import (
	"testing"

	"github.com/RobLoach/babel/internal/test"
)

func TestQuoteForJS(t *testing.T) {
	expect := func(text string, asciiOnly bool, expected string) {
		t.Helper()
		test.AssertEqual(t, string(QuoteForJS(text, asciiOnly)), expected)
	}

	expect("", false, `""`)
	expect("abc", false, `"abc"`)
	expect("a\"b", false, `"a\"b"`)
	expect("a'b", false, `"a'b"`)
	expect("a\\b", false, `"a\\b"`)
	expect("a\nb\tc", false, `"a\nb\tc"`)
	expect("\x00", false, `"\u0000"`)
	expect("\u00E9", false, "\"\u00E9\"")
	expect("\u00E9", true, `"\u00E9"`)
	expect("\u2028", false, `"\u2028"`)
	expect("\U0001F600", true, `"\uD83D\uDE00"`)
}

func TestAppendQuotedSingle(t *testing.T) {
	test.AssertEqual(t, string(AppendQuoted([]byte("x="), "it's", '\'', false)), `x='it\'s'`)
}
