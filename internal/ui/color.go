// Package ui holds terminal output helpers for the CLI.
//
// Colors respect the --no-color flag and the NO_COLOR environment variable,
// and are disabled automatically when output is not a TTY.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	// Red marks errors and failures.
	Red = color.New(color.FgRed)

	// Yellow marks warnings.
	Yellow = color.New(color.FgYellow)

	// Green marks successful completions.
	Green = color.New(color.FgGreen)

	// Cyan marks neutral informational output.
	Cyan = color.New(color.FgCyan)

	// Bold marks headers and labels.
	Bold = color.New(color.Bold)

	// Dim marks secondary details like paths.
	Dim = color.New(color.Faint)
)

// InitColors configures global color output. Call once in main after flag
// parsing; the library handles NO_COLOR on its own.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// Successf prints a green message with a checkmark prefix.
func Successf(format string, args ...any) {
	_, _ = Green.Printf("✓ "+format+"\n", args...)
}

// Warningf prints a yellow message with a warning prefix.
func Warningf(format string, args ...any) {
	_, _ = Yellow.Printf("⚠ "+format+"\n", args...)
}

// Errorf prints a red message with an X prefix.
func Errorf(format string, args ...any) {
	_, _ = Red.Printf("✗ "+format+"\n", args...)
}

// Infof prints a cyan message with an info prefix.
func Infof(format string, args ...any) {
	_, _ = Cyan.Printf("ℹ "+format+"\n", args...)
}

// Header prints a bold header with an underline.
func Header(text string) {
	_, _ = Bold.Println(text)
	fmt.Println(strings.Repeat("=", len(text)))
}

// Label returns a bold-formatted label for inline use.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns a dim-formatted string for secondary text.
func DimText(text string) string {
	return Dim.Sprint(text)
}
