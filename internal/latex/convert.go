// Package latex turns chapter markdown into the book's typesetting markup
// and drives the external compiler.
package latex

import (
	"fmt"
	"regexp"
	"strings"
)

// The converter applies a fixed set of pattern substitutions: heading levels
// map to sectioning commands, emphasis markers to styling commands, list
// markers to item commands. Nothing else is interpreted.
type conversion struct {
	pattern     *regexp.Regexp
	replacement string
}

var conversions = []conversion{
	// Headings
	{regexp.MustCompile(`(?m)^# (.+)$`), `\chapter{$1}`},
	{regexp.MustCompile(`(?m)^## (.+)$`), `\section{$1}`},
	{regexp.MustCompile(`(?m)^### (.+)$`), `\subsection{$1}`},
	{regexp.MustCompile(`(?m)^#### (.+)$`), `\subsubsection{$1}`},

	// Emphasis (bold before italic: ** must not be eaten by the * rule)
	{regexp.MustCompile(`\*\*(.+?)\*\*`), `\textbf{$1}`},
	{regexp.MustCompile(`\*(.+?)\*`), `\textit{$1}`},

	// Inline code
	{regexp.MustCompile("`(.+?)`"), `\texttt{$1}`},

	// List items
	{regexp.MustCompile(`(?m)^- (.+)$`), `\item $1`},
	{regexp.MustCompile(`(?m)^\d+\. (.+)$`), `\item $1`},
}

// ConvertMarkdown rewrites markdown markup into LaTeX commands.
func ConvertMarkdown(markdown string) string {
	out := markdown
	for _, c := range conversions {
		out = c.pattern.ReplaceAllString(out, c.replacement)
	}
	return out
}

// BookMeta carries the metadata the book preamble needs.
type BookMeta struct {
	ExamName string
	Date     string // YYYY-MM-DD
}

// BookDocument assembles a complete main.tex from converted chapters, in the
// order given. The output is fully determined by its inputs.
func BookDocument(meta BookMeta, chapters []string) string {
	var b strings.Builder
	b.WriteString("\\documentclass[11pt]{book}\n")
	b.WriteString("\\usepackage[utf8]{inputenc}\n")
	b.WriteString("\\usepackage{enumitem}\n")
	b.WriteString("\\usepackage[margin=1in]{geometry}\n\n")
	fmt.Fprintf(&b, "\\title{%s Question Bank}\n", escape(meta.ExamName))
	fmt.Fprintf(&b, "\\date{%s}\n\n", escape(meta.Date))
	b.WriteString("\\begin{document}\n\\maketitle\n\\tableofcontents\n\n")
	for _, ch := range chapters {
		b.WriteString(wrapItems(ch))
		b.WriteString("\n\n")
	}
	b.WriteString("\\end{document}\n")
	return b.String()
}

// wrapItems encloses runs of \item lines in an itemize environment so the
// fixed substitutions above produce compilable output.
func wrapItems(tex string) string {
	lines := strings.Split(tex, "\n")
	var out []string
	inList := false
	for _, line := range lines {
		isItem := strings.HasPrefix(strings.TrimSpace(line), `\item `)
		if isItem && !inList {
			out = append(out, `\begin{itemize}[nosep]`)
			inList = true
		}
		if !isItem && inList {
			out = append(out, `\end{itemize}`)
			inList = false
		}
		out = append(out, line)
	}
	if inList {
		out = append(out, `\end{itemize}`)
	}
	return strings.Join(out, "\n")
}

var escaper = strings.NewReplacer(
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
)

func escape(s string) string {
	return escaper.Replace(s)
}
