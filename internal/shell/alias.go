package shell

import "strings"

// maxAliasExpansions bounds the length of an alias chain
// (`alias a='b'; alias b='c'; ...`) so a long cycle cannot loop forever.
const maxAliasExpansions = 16

// expandAlias substitutes the first word of line with its alias value,
// re-checking the new first word until no alias applies. Each alias name is
// expanded at most once per line, so the common self-referential idioms
// (`alias ls='ls -l'`, `alias grep='grep --color'`) substitute exactly once
// instead of stacking their flags. Only the command position is eligible; a
// trailing space on the alias value (not modeled here, since aliases are
// stored verbatim) would additionally make the next word eligible in a real
// shell, which this implementation does not attempt.
func (s *Shell) expandAlias(line string) string {
	seen := make(map[string]bool)

	for len(seen) < maxAliasExpansions {
		trimmed := strings.TrimLeft(line, " \t")
		leading := line[:len(line)-len(trimmed)]

		end := strings.IndexAny(trimmed, " \t")
		var first, rest string
		if end < 0 {
			first, rest = trimmed, ""
		} else {
			first, rest = trimmed[:end], trimmed[end:]
		}
		if first == "" || seen[first] {
			return line
		}

		value, ok := s.Aliases.Get(first)
		if !ok {
			return line
		}

		seen[first] = true
		line = leading + value + rest
	}
	return line
}
