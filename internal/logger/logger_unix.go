//go:build darwin || linux
// +build darwin linux

package logger

import (
	"os"

	"golang.org/x/sys/unix"
)

const SupportsColorEscapes = true

func GetTerminalInfo(file *os.File) (info TerminalInfo) {
	fd := int(file.Fd())

	// Only terminals answer the termios request
	if _, err := unix.IoctlGetTermios(fd, ioctlReadTermios); err != nil {
		return
	}
	info.IsTTY = true
	info.UseColorEscapes = !hasNoColorEnvironmentVariable()

	if w, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ); err == nil {
		info.Width = int(w.Col)
		info.Height = int(w.Row)
	}
	return
}

func writeStringWithColor(file *os.File, text string) {
	file.WriteString(text)
}
