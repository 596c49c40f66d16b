package expand

// Context bundles everything the six passes need beyond the argument text
// itself.
type Context struct {
	Vars        ParamContext
	HomeDir     string
	Substituter Substituter
	SetLastExit func(int)
}

// Expand runs all six passes over a single argument, in order: tilde,
// parameter, command substitution, word splitting, filename globbing, quote
// removal. It returns the words the argument expands to (zero if it
// disappears entirely, e.g. an unset, unquoted "$empty").
func Expand(arg string, ctx Context) ([]string, error) {
	text, mask := Literal(arg)

	text, mask = expandTilde(text, mask, ctx.HomeDir)

	text, mask, err := expandParameters(text, mask, ctx.Vars)
	if err != nil {
		return nil, err
	}

	if ctx.Substituter != nil {
		text, mask, err = expandCommandSubstitutions(text, mask, ctx.Substituter, ctx.SetLastExit)
		if err != nil {
			return nil, err
		}
	}

	words := splitWords(text, mask)

	var result []string
	for _, w := range words {
		globbed, err := expandGlob(w)
		if err != nil {
			return nil, err
		}
		for _, g := range globbed {
			result = append(result, removeQuotes(g.Text, g.Mask))
		}
	}
	return result, nil
}

// ExpandArgv expands every argument in argv and flattens the results into a
// single argument vector, preserving order.
func ExpandArgv(argv []string, ctx Context) ([]string, error) {
	var out []string
	for _, arg := range argv {
		words, err := Expand(arg, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, words...)
	}
	return out, nil
}
