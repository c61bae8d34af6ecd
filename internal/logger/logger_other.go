//go:build !darwin && !linux
// +build !darwin,!linux

package logger

import "os"

const SupportsColorEscapes = false

// Color escapes are never emitted here, so there is nothing to detect.
func GetTerminalInfo(*os.File) TerminalInfo {
	return TerminalInfo{}
}

func writeStringWithColor(file *os.File, text string) {
	file.WriteString(text)
}
