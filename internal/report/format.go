// Package report serializes ingestion results into their output formats and
// writes them to disk.
package report

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/repodigest/internal/ingest"
)

// Format is a digest output format.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatXML      Format = "xml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatXML:
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unknown format %q (txt, md, xml)", s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// sectionRule underlines section headers in the text format.
const sectionRule = "===================="

// Render serializes a result. The result is read-only: rendering the same
// result in every format yields identical section content each time.
func Render(res *ingest.Result, format Format) string {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(res)
	case FormatXML:
		return renderXML(res)
	default:
		return renderText(res)
	}
}

// renderText is the canonical layout: three labeled sections.
func renderText(res *ingest.Result) string {
	var b strings.Builder
	section := func(label, body string) {
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(sectionRule)
		b.WriteString("\n")
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	section("SUMMARY", res.Summary)
	section("TREE", res.Tree)
	section("CONTENT", res.Content)

	return strings.TrimSuffix(b.String(), "\n")
}

// renderMarkdown wraps the tree and content in code fences so digest text
// cannot break the document structure.
func renderMarkdown(res *ingest.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", res.SuggestedName)

	b.WriteString("## Summary\n\n")
	b.WriteString(res.Summary)
	if !strings.HasSuffix(res.Summary, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n## Tree\n\n```\n")
	b.WriteString(res.Tree)
	if !strings.HasSuffix(res.Tree, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n\n## Content\n\n```\n")
	b.WriteString(res.Content)
	if !strings.HasSuffix(res.Content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")

	return b.String()
}

// renderXML is tag-delimited, not escaped: the payload is arbitrary source
// text and consumers treat the tags as simple delimiters.
func renderXML(res *ingest.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<digest name=%q>\n", res.SuggestedName)
	for _, s := range []struct {
		tag  string
		body string
	}{
		{"summary", res.Summary},
		{"tree", res.Tree},
		{"content", res.Content},
	} {
		fmt.Fprintf(&b, "<%s>\n", s.tag)
		b.WriteString(s.body)
		if !strings.HasSuffix(s.body, "\n") {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "</%s>\n", s.tag)
	}
	b.WriteString("</digest>\n")

	return b.String()
}
