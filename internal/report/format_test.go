package report

import (
	"strings"
	"testing"

	"github.com/fyrsmithlabs/repodigest/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *ingest.Result {
	return &ingest.Result{
		Target:        "https://github.com/acme/widget",
		Summary:       "Repository: acme/widget\nFiles analyzed: 2\nEstimated tokens: 100\n",
		Tree:          "widget/\n    main.go\n",
		Content:       "================================================\nFILE: main.go\n================================================\npackage main\n\n",
		SuggestedName: "widget",
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "txt", want: FormatText},
		{in: "md", want: FormatMarkdown},
		{in: "xml", want: FormatXML},
		{in: " TXT ", want: FormatText},
		{in: "pdf", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderText(t *testing.T) {
	out := Render(sampleResult(), FormatText)

	assert.True(t, strings.HasPrefix(out, "SUMMARY\n====================\n"))
	assert.Contains(t, out, "\nTREE\n====================\n")
	assert.Contains(t, out, "\nCONTENT\n====================\n")
	assert.Contains(t, out, "package main")
}

func TestRenderMarkdown(t *testing.T) {
	out := Render(sampleResult(), FormatMarkdown)

	assert.True(t, strings.HasPrefix(out, "# widget\n"))
	assert.Contains(t, out, "## Summary")
	assert.Contains(t, out, "## Tree")
	assert.Contains(t, out, "## Content")
	assert.Equal(t, 4, strings.Count(out, "```"), "tree and content are fenced")
}

func TestRenderXML(t *testing.T) {
	out := Render(sampleResult(), FormatXML)

	assert.True(t, strings.HasPrefix(out, `<digest name="widget">`))
	assert.Contains(t, out, "<summary>\n")
	assert.Contains(t, out, "</content>\n")
	assert.True(t, strings.HasSuffix(out, "</digest>\n"))
}

func TestRenderIsStable(t *testing.T) {
	res := sampleResult()

	for _, format := range []Format{FormatText, FormatMarkdown, FormatXML} {
		first := Render(res, format)
		second := Render(res, format)
		assert.Equal(t, first, second, "rendering must not mutate the result")
	}
}
