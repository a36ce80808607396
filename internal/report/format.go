// Package report renders rankings and comparisons as Markdown, JSON, YAML or
// CSV. It holds no analysis logic.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Meta identifies one rendered report.
type Meta struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Source    string    `json:"source" yaml:"source"`
	Generated time.Time `json:"generated" yaml:"generated"`
	Companies int       `json:"companies" yaml:"companies"`
}

// NewRunID returns a random identifier for one rendered report.
func NewRunID() string { return uuid.NewString() }

// NewMeta stamps a report with a fresh run ID.
func NewMeta(source string, companies int) Meta {
	return Meta{RunID: NewRunID(), Source: source, Generated: time.Now().UTC(), Companies: companies}
}

// Formatter prints numbers in a locale.
type Formatter struct {
	p        *message.Printer
	Decimals int
}

// NewFormatter parses a BCP 47 tag such as "fr" or "en-US". Empty means English.
func NewFormatter(locale string) (Formatter, error) {
	tag := language.English
	if strings.TrimSpace(locale) != "" {
		t, err := language.Parse(locale)
		if err != nil {
			return Formatter{}, fmt.Errorf("parse locale %q: %w", locale, err)
		}
		tag = t
	}
	return Formatter{p: message.NewPrinter(tag), Decimals: 2}, nil
}

// Value renders v with the configured decimals, "n/a" when absent.
func (f Formatter) Value(v company.Value) string {
	x, ok := v.Get()
	if !ok {
		return "n/a"
	}
	return f.Float(x)
}

// Float renders x with the configured decimals.
func (f Formatter) Float(x float64) string {
	if f.p == nil {
		f.p = message.NewPrinter(language.English)
	}
	return f.p.Sprintf(fmt.Sprintf("%%.%df", f.Decimals), x)
}

// Int renders n with locale grouping.
func (f Formatter) Int(n int) string {
	if f.p == nil {
		f.p = message.NewPrinter(language.English)
	}
	return f.p.Sprintf("%d", n)
}

// Table renders an aligned Markdown table. Widths use display width so
// accented company names line up.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(3, runewidth.StringWidth(h))
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(cell(row[i])); w > widths[i] {
				widths[i] = w
			}
		}
	}
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i, w := range widths {
			c := ""
			if i < len(cells) {
				c = cell(cells[i])
			}
			b.WriteString(" ")
			b.WriteString(c)
			b.WriteString(strings.Repeat(" ", w-runewidth.StringWidth(c)))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeRow(header)
	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(" ")
		b.WriteString(strings.Repeat("-", w))
		b.WriteString(" |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
