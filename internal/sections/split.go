// Package sections splits heading-delimited Markdown text into keyed sections.
package sections

import (
	"fmt"
	"strings"

	"mdsections/internal/util"
)

// MaxHeadingLevel is the longest run of '#' still treated as a heading marker.
const MaxHeadingLevel = 6

type heading struct {
	start int
	end   int
	text  string
}

// Split segments text at heading lines. Each heading's body runs to the next
// heading line or the end of text and is trimmed. Text before the first
// heading is dropped. Headings whose keys collide get _2, _3, ... suffixes.
func Split(text string) Map {
	var out Map
	if strings.TrimSpace(text) == "" {
		return out
	}
	text = util.NormalizeNewlines(text)

	headings := findHeadings(text)
	for i, h := range headings {
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1].start
		}
		body := strings.TrimSpace(text[h.end:end])
		out.add(uniqueKey(out, util.NormalizeKey(h.text)), body)
	}
	return out
}

func findHeadings(text string) []heading {
	var out []heading
	for start := 0; start < len(text); {
		lineEnd := len(text)
		if idx := strings.IndexByte(text[start:], '\n'); idx >= 0 {
			lineEnd = start + idx
		}
		if title, ok := parseHeading(text[start:lineEnd]); ok {
			out = append(out, heading{start: start, end: lineEnd, text: title})
		}
		start = lineEnd + 1
	}
	return out
}

func parseHeading(line string) (string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > MaxHeadingLevel {
		return "", false
	}
	return strings.TrimSpace(line[level:]), true
}

func uniqueKey(m Map, base string) string {
	key := base
	for n := 2; m.Has(key); n++ {
		key = fmt.Sprintf("%s_%d", base, n)
	}
	return key
}
