package api

import (
	"fmt"

	"github.com/RobLoach/babel/internal/js_ast"
	"github.com/RobLoach/babel/internal/js_lower"
	"github.com/RobLoach/babel/internal/js_parser"
	"github.com/RobLoach/babel/internal/js_printer"
	"github.com/RobLoach/babel/internal/logger"
	"github.com/RobLoach/babel/internal/runtime"
)

func validateColor(value StderrColor) logger.UseColor {
	switch value {
	case ColorIfTerminal:
		return logger.ColorIfTerminal
	case ColorNever:
		return logger.ColorNever
	case ColorAlways:
		return logger.ColorAlways
	default:
		panic("Invalid color")
	}
}

func validateLogLevel(value LogLevel) logger.LogLevel {
	switch value {
	case LogLevelInfo:
		return logger.LevelInfo
	case LogLevelWarning:
		return logger.LevelWarning
	case LogLevelError:
		return logger.LevelError
	default:
		panic("Invalid log level")
	}
}

func validateHelperNamespace(log logger.Log, value string) string {
	if value != "" && !js_ast.IsIdentifier(value) {
		log.AddError(nil, logger.Loc{}, fmt.Sprintf("Invalid helper namespace: %q", value))
	}
	return value
}

func messagesOfKind(kind logger.MsgKind, msgs []logger.Msg) []Message {
	var filtered []Message
	for _, msg := range msgs {
		if msg.Kind == kind {
			var location *Location

			if msg.Location != nil {
				location = &Location{
					File:     msg.Location.File,
					Line:     msg.Location.Line,
					Column:   msg.Location.Column,
					Length:   msg.Location.Length,
					LineText: msg.Location.LineText,
				}
			}

			filtered = append(filtered, Message{
				Text:     msg.Text,
				Location: location,
			})
		}
	}
	return filtered
}

func transformImpl(input string, options TransformOptions) TransformResult {
	newLog := func() logger.Log {
		if options.LogLevel == LogLevelSilent {
			return logger.NewDeferLog()
		}
		return logger.NewStderrLog(logger.OutputOptions{
			IncludeSource: true,
			ErrorLimit:    options.ErrorLimit,
			Color:         validateColor(options.Color),
			LogLevel:      validateLogLevel(options.LogLevel),
		})
	}

	// Convert and validate the options
	validateLog := newLog()
	lowerOptions := js_lower.Options{
		IsLoose: options.Loose,
		Runtime: runtime.Options{
			ExternalHelpers: options.ExternalHelpers,
			HelperNamespace: validateHelperNamespace(validateLog, options.HelperNamespace),
		},
	}
	sourcefile := options.Sourcefile
	if sourcefile == "" {
		sourcefile = "<stdin>"
	}
	source := logger.Source{
		PrettyPath: sourcefile,
		Contents:   input,
	}

	// Stop now if there were errors
	validateMsgs := validateLog.Done()
	validateErrors := messagesOfKind(logger.Error, validateMsgs)
	if len(validateErrors) > 0 {
		return TransformResult{
			Errors:   validateErrors,
			Warnings: messagesOfKind(logger.Warning, validateMsgs),
		}
	}

	// Parse and lower the file. Nothing is printed if either step failed.
	log := newLog()
	var code []byte
	if tree, ok := js_parser.Parse(log, source); ok {
		tree = js_lower.Lower(log, &source, tree, lowerOptions)
		if !log.HasErrors() {
			code = js_printer.Print(tree, js_printer.Options{}).JS
		}
	}

	msgs := log.Done()
	return TransformResult{
		Errors: messagesOfKind(logger.Error, msgs),
		Warnings: append(
			messagesOfKind(logger.Warning, validateMsgs),
			messagesOfKind(logger.Warning, msgs)...),
		Code: code,
	}
}

func helperNamesImpl() []string {
	names := runtime.HelperNames()
	result := make([]string, len(names))
	for i, name := range names {
		result[i] = runtime.ExternalName(name)
	}
	return result
}

func helperCodeImpl(name string) (string, bool) {
	for _, internal := range runtime.HelperNames() {
		if runtime.ExternalName(internal) == name {
			return runtime.HelperCode(internal)
		}
	}
	return "", false
}
