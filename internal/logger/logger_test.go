package logger_test

import (
	"testing"

	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/internal/test"
)

func TestLocationOrNil(t *testing.T) {
	source := &logger.Source{PrettyPath: "foo.js", Contents: "class A {\n  constructor() {}\r\n}"}

	test.AssertEqual(t, logger.LocationOrNil(nil, logger.Range{}) == nil, true)

	loc := logger.LocationOrNil(source, logger.Range{Loc: logger.Loc{Start: 12}, Len: 11})
	test.AssertEqual(t, *loc, logger.MsgLocation{
		File:     "foo.js",
		Line:     2,
		Column:   2,
		Length:   11,
		LineText: "  constructor() {}",
	})

	loc = logger.LocationOrNil(source, logger.Range{Loc: logger.Loc{Start: int32(len(source.Contents))}})
	test.AssertEqual(t, loc.Line, 3)
	test.AssertEqual(t, loc.Column, 1)
	test.AssertEqual(t, loc.LineText, "}")
}

func TestMsgString(t *testing.T) {
	source := &logger.Source{PrettyPath: "foo.js", Contents: "class A extends B {\n\tconstructor() {}\n}"}
	msg := logger.Msg{
		Kind:     logger.Error,
		Text:     "Derived constructor must call super()",
		Location: logger.LocationOrNil(source, logger.Range{Loc: logger.Loc{Start: 21}, Len: 11}),
	}

	// Tabs are expanded so the marker lines up
	test.AssertEqual(t, msg.String(logger.OutputOptions{IncludeSource: true}, logger.TerminalInfo{}),
		"foo.js:2:1: error: Derived constructor must call super()\n  constructor() {}\n  ~~~~~~~~~~~\n")

	test.AssertEqual(t, msg.String(logger.OutputOptions{}, logger.TerminalInfo{}),
		"foo.js: error: Derived constructor must call super()\n")

	msg = logger.Msg{Kind: logger.Warning, Text: "No classes were found"}
	test.AssertEqual(t, msg.String(logger.OutputOptions{IncludeSource: true}, logger.TerminalInfo{}), "warning: No classes were found\n")
}

func TestDeferLog(t *testing.T) {
	source := &logger.Source{PrettyPath: "foo.js", Contents: "class A {}\nclass B {}"}
	log := logger.NewDeferLog()
	test.AssertEqual(t, log.HasErrors(), false)

	log.AddWarning(source, logger.Loc{Start: 11}, "second")
	test.AssertEqual(t, log.HasErrors(), false)
	log.AddError(source, logger.Loc{Start: 0}, "first")
	log.AddRangeError(nil, logger.Range{}, "no location")
	test.AssertEqual(t, log.HasErrors(), true)

	// Messages are sorted by location with unlocated messages first
	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 3)
	test.AssertEqual(t, msgs[0].Text, "no location")
	test.AssertEqual(t, msgs[1].Text, "first")
	test.AssertEqual(t, msgs[2].Text, "second")
	test.AssertEqual(t, msgs[2].Kind.String(), "warning")
}
