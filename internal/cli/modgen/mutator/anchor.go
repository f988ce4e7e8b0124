// Package mutator edits the hand-maintained aggregate files a module is wired
// into: the route table, the INSTALLED_APPS list and the dependency-injection
// root. Every edit is a pure string transformation: locate an anchor, compute
// the insertion offset, splice. Missing anchors come back as *AnchorError.
package mutator

import (
	"fmt"
	"strings"
)

// AnchorError reports a structural marker that could not be found or used.
type AnchorError struct {
	File   string
	Anchor string
	Reason string
}

func (e *AnchorError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("anchor %q: %s", e.Anchor, e.Reason)
	}
	return fmt.Sprintf("%s: anchor %q: %s", e.File, e.Anchor, e.Reason)
}

func anchorNotFound(anchor string) *AnchorError {
	return &AnchorError{Anchor: anchor, Reason: "not found"}
}

// newline returns the line terminator content already uses.
func newline(content string) string {
	if strings.Contains(content, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// lineStart returns the offset of the first byte of the line holding offset.
func lineStart(content string, offset int) int {
	return strings.LastIndex(content[:offset], "\n") + 1
}

// lineEnd returns the offset just past the line terminator of the line
// holding offset, or len(content) on the last line.
func lineEnd(content string, offset int) int {
	i := strings.IndexByte(content[offset:], '\n')
	if i < 0 {
		return len(content)
	}
	return offset + i + 1
}

// hasLine reports whether any line of content equals line once both are trimmed.
func hasLine(content, line string) bool {
	want := strings.TrimSpace(line)
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) == want {
			return true
		}
	}
	return false
}

// containsQuoted reports whether s appears in text wrapped in single or double quotes.
func containsQuoted(text, s string) bool {
	return strings.Contains(text, "'"+s+"'") || strings.Contains(text, `"`+s+`"`)
}

// dropLines removes every line for which drop returns true.
func dropLines(content string, drop func(line string) bool) string {
	lines := strings.SplitAfter(content, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" || drop(l) {
			continue
		}
		b.WriteString(l)
	}
	return b.String()
}

// bracketScan walks Python source from the opening bracket at open to its
// matching closer. Strings (including triple-quoted and prefixed ones) and
// comments are skipped. It returns the closer offset and the offset of the
// last significant byte before it, or -1 when the brackets are unbalanced.
func bracketScan(content string, open int) (closeAt, lastSignificant int) {
	depth := 0
	lastSignificant = open

	for i := open; i < len(content); i++ {
		c := content[i]
		switch c {
		case '#':
			i = lineEnd(content, i) - 1
			continue
		case '\'', '"':
			end := skipString(content, i)
			if end < 0 {
				return -1, -1
			}
			lastSignificant = end
			i = end
			continue
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
			if depth == 0 {
				return i, lastSignificant
			}
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			lastSignificant = i
		}
	}
	return -1, -1
}

// skipString returns the offset of the closing quote of the string literal
// starting at start, or -1 if it never closes.
func skipString(content string, start int) int {
	q := content[start]
	triple := strings.Repeat(string(q), 3)
	if strings.HasPrefix(content[start:], triple) {
		end := strings.Index(content[start+3:], triple)
		if end < 0 {
			return -1
		}
		return start + 3 + end + 2
	}
	for i := start + 1; i < len(content); i++ {
		switch content[i] {
		case '\\':
			i++
		case q:
			return i
		case '\n':
			return -1
		}
	}
	return -1
}
