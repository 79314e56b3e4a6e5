package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiBold   = "\x1b[1m"
)

// shouldColorize enables ANSI colors only when stdout is an interactive
// terminal and NO_COLOR is unset.
func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderSectionHeader(title string, colorize bool) string {
	if colorize {
		return ansiBold + title + ansiReset
	}
	return title
}

func renderStatusLine(label string, kind statusKind, detail string, colorize bool) string {
	marker := "✓"
	color := ansiGreen
	switch kind {
	case statusWarn:
		marker = "!"
		color = ansiYellow
	case statusError:
		marker = "✗"
		color = ansiRed
	}
	if colorize {
		marker = color + marker + ansiReset
	}
	line := fmt.Sprintf("  %s %s", marker, label)
	if strings.TrimSpace(detail) != "" {
		line += ": " + detail
	}
	return line
}
