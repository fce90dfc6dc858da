package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairSoftWraps(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "joins hyphenated wrap",
			input:    "The infor-\nmation is stored",
			expected: "The information is stored",
		},
		{
			name:     "keeps hyphen before capital",
			input:    "The Smith-\nJones proposal",
			expected: "The Smith-\nJones proposal",
		},
		{
			name:     "keeps hyphen before blank line",
			input:    "trailing-\n\nnext paragraph",
			expected: "trailing-\n\nnext paragraph",
		},
		{
			name:     "chains across multiple wraps",
			input:    "inter-\nnation-\nalisation",
			expected: "internationalisation",
		},
		{
			name:     "no hyphens untouched",
			input:    "plain text\nsecond line",
			expected: "plain text\nsecond line",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RepairSoftWraps(tc.input))
		})
	}
}

func TestRenderHeaders(t *testing.T) {
	input := "INTRODUCTION\nThis is the opening paragraph of the document.\n\nBackground\nMore detail follows here."
	out := Render(input)

	assert.Contains(t, out, "# Introduction")
	assert.Contains(t, out, "## Background")
}

func TestRenderDoesNotPromoteSentences(t *testing.T) {
	input := "A short line.\nAnother sentence follows it."
	out := Render(input)

	assert.NotContains(t, out, "#")
}

func TestRenderLongLineIsNotHeader(t *testing.T) {
	long := strings.Repeat("Word ", 20)
	out := Render(long + "\ncontent below")

	assert.NotContains(t, out, "#")
}

func TestRenderBullets(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "unicode bullet", input: "• first item", expected: "- first item"},
		{name: "asterisk", input: "* second item", expected: "- second item"},
		{name: "word export o bullet", input: "o third item", expected: "- third item"},
		{name: "dash", input: "- fourth item", expected: "- fourth item"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Render(tc.input))
		})
	}
}

func TestRenderNumberedLists(t *testing.T) {
	input := "1) first step\n2. second step\n3)   third step"
	out := Render(input)

	assert.Equal(t, "1. first step\n2. second step\n3. third step", out)
}

func TestRenderCollapsesBlankRuns(t *testing.T) {
	input := "para one\n\n\n\npara two"
	out := Render(input)

	assert.Equal(t, "para one\n\npara two", out)
}

func TestMetadataBlock(t *testing.T) {
	block := MetadataBlock("report.docx", 2048, "docx", map[string]string{
		"pages":  "3",
		"author": "Jane Doe",
		"empty":  "",
	})

	assert.True(t, strings.HasPrefix(block, "---\n"))
	assert.Contains(t, block, "file: report.docx")
	assert.Contains(t, block, "size: 2048")
	assert.Contains(t, block, "format: docx")
	assert.Contains(t, block, "author: Jane Doe")
	assert.Contains(t, block, "pages: 3")
	assert.NotContains(t, block, "empty:")
	// Sorted property order is deterministic.
	assert.Less(t, strings.Index(block, "author:"), strings.Index(block, "pages:"))
}

func TestMetadataBlockOmitsZeroSize(t *testing.T) {
	block := MetadataBlock("a.pdf", 0, "pdf", nil)
	assert.NotContains(t, block, "size:")
}
