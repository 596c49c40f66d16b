package expand

// removeQuotes is Pass 6, the final pass: quote delimiters and the
// backslashes that introduce an escape are stripped, leaving only the
// characters they protected.
func removeQuotes(text string, mask Mask) string {
	sc := NewScanner()
	var out []byte

	i := 0
	for i < len(text) {
		wasEscape := sc.Top() == Escape
		transitioned := sc.Advance(text, mask, i)

		switch {
		case wasEscape:
			if sc.Top() == DoubleQuoted && !isDoubleQuoteSpecial(text[i]) {
				out = append(out, '\\')
			}
			out = append(out, text[i])
		case transitioned:
			// quote delimiter, escape-introducing backslash, or a "$(" /
			// "${" opener: consumed by the scanner, never copied.
		default:
			out = append(out, text[i])
		}
		i++
	}
	return string(out)
}

// isDoubleQuoteSpecial reports whether b retains its escaping backslash
// inside double quotes (POSIX: only these four are special there).
func isDoubleQuoteSpecial(b byte) bool {
	switch b {
	case '$', '"', '\\', '\n':
		return true
	}
	return false
}
