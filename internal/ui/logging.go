package ui

import (
	"github.com/pterm/pterm"
)

var debugEnabled = false

// SetDebugEnabled toggles the output of debug level messages
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
	pterm.PrintDebugMessages = enabled
}

func IsDebugEnabled() bool {
	return debugEnabled
}

func Printf(format string, a ...interface{}) {
	pterm.Printf(format, a...)
}

func Printfln(format string, a ...interface{}) {
	pterm.Printfln(format, a...)
}

func Debug(format string, a ...interface{}) {
	if !debugEnabled {
		return
	}
	pterm.Debug.Printfln(format, a...)
}

func Info(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

func Success(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

func Warning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

func Error(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

func Fatal(format string, a ...interface{}) {
	pterm.Fatal.WithShowLineNumber(true).Printfln(format, a...)
}

// FatalWithoutStacktrace prints a fatal message and exits, without the line number prefix
func FatalWithoutStacktrace(format string, a ...interface{}) {
	pterm.Fatal.WithShowLineNumber(false).Printfln(format, a...)
}
