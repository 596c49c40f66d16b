package expand

// Mask is an originality mask: one byte per character of its companion
// text, '1' if the character is verbatim from the user's literal input,
// '0' if an expansion produced it. Invariant: len(text) == len(mask) at
// every intermediate value during expansion.
type Mask []byte

// NewMask returns a Mask of the given length filled with b ('0' or '1').
func NewMask(length int, b byte) Mask {
	m := make(Mask, length)
	for i := range m {
		m[i] = b
	}
	return m
}

// Literal wraps s as fully user-typed text (all-'1' mask).
func Literal(s string) (string, Mask) {
	return s, NewMask(len(s), '1')
}
