package expand

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/xdsh-project/xdsh/internal/shellerr"
)

// expandGlob is Pass 5. Whether the word globs at all is decided on the
// word as it stands, where text and mask positions still line up; only then
// does brace expansion (a shell-only textual expansion with no filesystem
// involvement) fan it out into alternatives, each matched against the
// filesystem. A pattern with no match is passed through unchanged. Matches
// are sorted since nothing downstream can rely on readdir order.
func expandGlob(w Word) ([]Word, error) {
	if !hasUnquotedGlobChars(w.Text, w.Mask) {
		return []Word{w}, nil
	}

	var matches []string
	for _, alt := range expandBraces(w.Text) {
		found, err := filepath.Glob(alt)
		if err != nil {
			return nil, shellerr.NewCodedError(shellerr.CodeGlobError, alt, "bad glob pattern: %v", err)
		}
		matches = append(matches, found...)
	}

	if len(matches) == 0 {
		return []Word{w}, nil
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := strings.ToLower(matches[i]), strings.ToLower(matches[j])
		if a != b {
			return a < b
		}
		return matches[i] < matches[j]
	})
	out := make([]Word, 0, len(matches))
	for _, m := range matches {
		out = append(out, Word{Text: m, Mask: NewMask(len(m), '0')})
	}
	return out, nil
}

// hasUnquotedGlobChars reports whether text has a glob metacharacter at a
// position the scanner considers unquoted (not inside single or double
// quotes). text and mask must be the same length.
func hasUnquotedGlobChars(text string, mask Mask) bool {
	sc := NewScanner()
	for i := 0; i < len(text); i++ {
		if sc.Advance(text, mask, i) {
			continue
		}
		if mask[i] != '1' {
			continue
		}
		if sc.Top() == SingleQuoted || sc.Top() == DoubleQuoted {
			continue
		}
		switch text[i] {
		case '*', '?', '[':
			return true
		}
	}
	return false
}

// expandBraces performs shell brace expansion: {a,b,c} expands to one
// alternative per comma-separated element, including nested groups. A
// pattern with no brace group returns a single-element slice unchanged.
func expandBraces(pattern string) []string {
	start := strings.IndexByte(pattern, '{')
	if start < 0 {
		return []string{pattern}
	}
	end, ok := matchBrace(pattern, start)
	if !ok {
		return []string{pattern}
	}

	body := pattern[start+1 : end]
	elements := splitTopLevelCommas(body)
	if len(elements) < 2 {
		return []string{pattern}
	}

	prefix := pattern[:start]
	suffix := pattern[end+1:]

	var out []string
	for _, elem := range elements {
		for _, suffixExpanded := range expandBraces(suffix) {
			for _, elemExpanded := range expandBraces(elem) {
				out = append(out, prefix+elemExpanded+suffixExpanded)
			}
		}
	}
	return out
}

// matchBrace returns the index of the '}' matching the '{' at open,
// accounting for nested groups.
func matchBrace(pattern string, open int) (int, bool) {
	depth := 1
	for i := open + 1; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// splitTopLevelCommas splits body on commas not nested inside a further
// brace group.
func splitTopLevelCommas(body string) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, body[last:])
	return parts
}
