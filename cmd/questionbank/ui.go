// Package main provides UI utilities for the question-bank CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// UI provides user-friendly terminal output. Structured logs go to stderr
// through slog; UI output is what a human running the tool reads.
type UI struct {
	noColor bool
}

func NewUI() *UI {
	return &UI{noColor: os.Getenv("NO_COLOR") != "" || !isTerminal()}
}

// Banner prints a prominent section header.
func (ui *UI) Banner(title string) {
	line := strings.Repeat("=", len(title)+8)
	if ui.noColor {
		fmt.Printf("%s\n    %s\n%s\n", line, title, line)
		return
	}
	c := color.New(color.FgCyan, color.Bold)
	c.Println(line)
	c.Printf("    %s\n", title)
	c.Println(line)
}

func (ui *UI) Success(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Printf("✓ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgGreen).Printf("✓ %s\n", fmt.Sprintf(format, args...))
	}
}

func (ui *UI) Error(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
	}
}

func (ui *UI) Warning(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Printf("⚠ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgYellow).Printf("⚠ %s\n", fmt.Sprintf(format, args...))
	}
}

func (ui *UI) Info(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Printf("ℹ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgCyan).Printf("ℹ %s\n", fmt.Sprintf(format, args...))
	}
}

// Tally prints the batch summary line.
func (ui *UI) Tally(succeeded, failed int) {
	fmt.Println()
	if ui.noColor {
		fmt.Printf("Done: %d succeeded, %d failed\n", succeeded, failed)
		return
	}
	color.New(color.FgGreen, color.Bold).Printf("Done: %d succeeded", succeeded)
	if failed > 0 {
		color.New(color.FgRed, color.Bold).Printf(", %d failed", failed)
	} else {
		fmt.Printf(", 0 failed")
	}
	fmt.Println()
}

// Table prints a plain aligned table.
func (ui *UI) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		for i, cell := range cells {
			if i < len(widths) {
				fmt.Printf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Println()
	}

	if ui.noColor {
		printRow(headers)
	} else {
		for i, h := range headers {
			color.New(color.FgCyan, color.Bold).Printf("%-*s  ", widths[i], h)
		}
		fmt.Println()
	}
	for _, row := range rows {
		printRow(row)
	}
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
