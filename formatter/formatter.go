// Package formatter renders tokens and match reports for terminal output.
package formatter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/tokrex/tokrex/match"
	"github.com/tokrex/tokrex/token"
)

var (
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	captureStyle = color.New(color.FgGreen)
	kindStyle    = color.New(color.FgMagenta)
)

// MatchReport is one rendered match: where it came from and what it bound.
type MatchReport struct {
	File   string
	Rule   string
	Match  *match.Match
	Tokens []token.Token
}

// FormatMatches renders reports one per block:
//
//	path:3:7: rule-name
//	  matched: const foo = 1
//	  name = foo
func FormatMatches(reports []MatchReport) string {
	var sb strings.Builder
	for _, r := range reports {
		m := r.Match
		pos := r.Tokens[m.Start].Pos
		sb.WriteString(fileStyle.Sprint(r.File))
		sb.WriteString(":")
		sb.WriteString(lineStyle.Sprintf("%d:%d", pos.Line, pos.Column))
		sb.WriteString(": ")
		sb.WriteString(ruleStyle.Sprint(r.Rule))
		sb.WriteString("\n")
		sb.WriteString("  matched: ")
		sb.WriteString(spanText(r.Tokens, m.Start, m.End))
		sb.WriteString("\n")
		for i := 1; i <= m.GroupCount(); i++ {
			cap := m.CaptureAt(i)
			if cap.Absent() {
				continue
			}
			sb.WriteString("  ")
			sb.WriteString(captureStyle.Sprintf("$%d", i))
			sb.WriteString(" = ")
			sb.WriteString(m.ValueOf(cap))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// FormatTokens renders an aligned token dump for the tokenize command.
func FormatTokens(toks []token.Token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(lineStyle.Sprintf("%4d:%-3d", t.Pos.Line, t.Pos.Column))
		sb.WriteString(" ")
		sb.WriteString(kindStyle.Sprintf("%-16s", t.Kind))
		sb.WriteString(fmt.Sprintf(" %q\n", t.Value))
	}
	return sb.String()
}

// spanText joins the token values of [start, end) with single spaces,
// which is readable without being a faithful reconstruction.
func spanText(toks []token.Token, start, end int) string {
	parts := make([]string, 0, end-start)
	for _, t := range toks[start:end] {
		parts = append(parts, t.Value)
	}
	return strings.Join(parts, " ")
}
