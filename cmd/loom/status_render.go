package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"loom/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 12

// eventOrder fixes the display order of event lifecycle counts.
var eventOrder = []string{"pending", "processing", "completed", "failed"}

func renderStatusLines(status *api.StatusResponse, colorize bool) []string {
	runningKind, runningText := statusWarn, "stopped"
	if status.Running {
		runningKind, runningText = statusOK, "running"
	}

	events := ""
	for _, name := range eventOrder {
		if events != "" {
			events += ", "
		}
		events += fmt.Sprintf("%d %s", status.Events[name], name)
	}

	return []string{
		renderStatusLine("Daemon", runningKind, runningText, colorize),
		renderStatusLine("Events", statusInfo, events, colorize),
		renderStatusLine("Lifetime", statusInfo, fmt.Sprintf("%d processed, %d failed", status.Processed, status.Failed), colorize),
		renderStatusLine("Database", statusInfo, status.DBPath, colorize),
	}
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	line := fmt.Sprintf("%-*s %s", statusLabelWidth, label+":", message)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
