// Package textutil implements the shared text-to-markup heuristics
// applied by every format converter: header detection, list
// normalisation and soft line-break repair.
package textutil

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// maxHeaderLength is the longest line still considered a header candidate.
const maxHeaderLength = 60

var (
	bulletRe   = regexp.MustCompile(`^\s*[•·▪‣*oO◦-]\s+`)
	numberedRe = regexp.MustCompile(`^\s*(\d+)[.)]\s+`)
)

// Render applies the full heuristic pipeline to extracted text and
// returns structured markup.
func Render(raw string) string {
	text := RepairSoftWraps(raw)
	lines := strings.Split(text, "\n")

	out := make([]string, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t")

		switch {
		case strings.TrimSpace(trimmed) == "":
			out = append(out, "")
		case isBullet(trimmed):
			out = append(out, normaliseBullet(trimmed))
		case isNumbered(trimmed):
			out = append(out, normaliseNumbered(trimmed))
		case isHeader(trimmed, neighbour(lines, i-1), neighbour(lines, i+1)):
			out = append(out, headerMarkup(strings.TrimSpace(trimmed)))
		default:
			out = append(out, strings.TrimSpace(trimmed))
		}
	}

	return collapseBlanks(strings.Join(out, "\n"))
}

// RepairSoftWraps joins words split by a hyphen at a line break.
// "infor-\nmation" becomes "information" when the continuation starts
// with a lowercase letter; deliberate hyphens before capitals are kept.
func RepairSoftWraps(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	i := 0
	for i < len(lines) {
		line := strings.TrimRight(lines[i], " \t")
		for strings.HasSuffix(line, "-") && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next == "" || !startsLower(next) {
				break
			}
			line = strings.TrimSuffix(line, "-") + next
			i++
		}
		out = append(out, line)
		i++
	}

	return strings.Join(out, "\n")
}

// MetadataBlock renders the front-matter block prepended to every
// converted document. Format-specific properties are sorted for
// deterministic output.
func MetadataBlock(fileName string, size int64, format string, props map[string]string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "file: %s\n", fileName)
	if size > 0 {
		fmt.Fprintf(&b, "size: %d\n", size)
	}
	fmt.Fprintf(&b, "format: %s\n", format)

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if props[k] != "" {
			fmt.Fprintf(&b, "%s: %s\n", k, props[k])
		}
	}

	b.WriteString("---\n\n")
	return b.String()
}

func neighbour(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[i])
}

// isHeader applies the header heuristic: a short line without terminal
// punctuation, starting with an uppercase letter, separated from the
// surrounding text by blank lines.
func isHeader(line, prev, next string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > maxHeaderLength {
		return false
	}
	if prev != "" || next == "" {
		// Headers stand alone: blank line above, content below.
		return false
	}
	first := []rune(trimmed)[0]
	if !unicode.IsUpper(first) {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', ',', ';', ':', '!', '?':
		return false
	}
	return true
}

func headerMarkup(line string) string {
	if isAllCaps(line) {
		return "# " + titleise(line)
	}
	return "## " + line
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// titleise converts an ALL-CAPS heading to title case.
func titleise(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func isBullet(line string) bool {
	if !bulletRe.MatchString(line) {
		return false
	}
	// A bare "o" or "-" bullet needs content after the marker.
	return strings.TrimSpace(bulletRe.ReplaceAllString(line, "")) != ""
}

func normaliseBullet(line string) string {
	return "- " + strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
}

func isNumbered(line string) bool {
	return numberedRe.MatchString(line)
}

func normaliseNumbered(line string) string {
	m := numberedRe.FindStringSubmatch(line)
	rest := strings.TrimSpace(numberedRe.ReplaceAllString(line, ""))
	return m[1] + ". " + rest
}

// collapseBlanks reduces runs of blank lines to a single blank line and
// trims leading/trailing whitespace.
func collapseBlanks(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func startsLower(s string) bool {
	r := []rune(s)
	return len(r) > 0 && unicode.IsLower(r[0])
}
