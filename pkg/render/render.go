// Package render turns generated suites into their output forms. Every
// renderer is deterministic: parameter order and row order come straight
// from the suite, with no sorting or reflow of its content.
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"

	"github.com/pairgen/pairgen/pkg/generator"
)

// Format names an output form of a suite.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists the accepted format names in display order.
func Formats() []Format {
	return []Format{FormatTable, FormatMarkdown, FormatCSV, FormatJSON}
}

// Suite renders s in the named format.
func Suite(s *generator.Suite, format Format) (string, error) {
	switch format {
	case FormatTable:
		return Table(s), nil
	case FormatMarkdown:
		return Markdown(s), nil
	case FormatCSV:
		return CSV(s)
	case FormatJSON:
		return JSON(s)
	}
	return "", errors.Errorf("unknown output format %q (expected one of %s)", format, formatList())
}

func formatList() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// Markdown renders the suite as a GitHub-flavored markdown table. Pipe
// characters inside values are escaped so the table structure survives.
func Markdown(s *generator.Suite) string {
	var b strings.Builder
	b.WriteString("|")
	for _, name := range s.Parameters {
		fmt.Fprintf(&b, " %s |", escapePipes(name))
	}
	b.WriteString("\n|")
	for range s.Parameters {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range s.Rows {
		b.WriteString("|")
		for _, v := range row {
			fmt.Fprintf(&b, " %s |", escapePipes(string(v)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// CSV renders the suite with a header record of parameter names.
func CSV(s *generator.Suite) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	records := make([][]string, 0, len(s.Rows)+1)
	records = append(records, append([]string(nil), s.Parameters...))
	for _, row := range s.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = string(v)
		}
		records = append(records, record)
	}
	if err := w.WriteAll(records); err != nil {
		return "", errors.Wrap(err, "encoding csv")
	}
	return buf.String(), nil
}

// JSON renders the whole suite, coverage diagnostics included.
func JSON(s *generator.Suite) (string, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding json")
	}
	return string(out) + "\n", nil
}

// Table renders the suite as a bordered terminal table.
func Table(s *generator.Suite) string {
	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = string(v)
		}
		rows = append(rows, record)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(s.Parameters...).
		Rows(rows...)
	return t.String() + "\n"
}
