package expand

// Word is a single field produced by Pass 4, word splitting.
type Word struct {
	Text string
	Mask Mask
}

// splitWords is Pass 4. Only mask-'1' space/tab/newline bytes outside single
// and double quotes act as separators; a mask-'0' whitespace byte (one an
// earlier expansion produced) never splits, and neither does a
// backslash-escaped one ("a\ b" stays one word). Runs of separators collapse
// and leading/trailing separators produce no empty field.
func splitWords(text string, mask Mask) []Word {
	sc := NewScanner()
	var words []Word
	var curText []byte
	var curMask Mask

	flush := func() {
		if len(curText) > 0 {
			words = append(words, Word{Text: string(curText), Mask: curMask})
			curText = nil
			curMask = nil
		}
	}

	i := 0
	for i < len(text) {
		// Advance pops an Escape state before this byte is classified, so
		// remember it: the escaped character itself never separates.
		wasEscape := sc.Top() == Escape
		sc.Advance(text, mask, i)

		isSplit := !wasEscape && mask[i] == '1' && isIFSByte(text[i]) &&
			sc.Top() != SingleQuoted && sc.Top() != DoubleQuoted
		if isSplit {
			flush()
			i++
			continue
		}

		curText = append(curText, text[i])
		curMask = append(curMask, mask[i])
		i++
	}
	flush()
	return words
}

func isIFSByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}
