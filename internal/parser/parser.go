// Package parser is a minimal stand-in for the shell's real lexer/parser,
// which is an external collaborator to the execution engine: it turns one
// line of input into a *job.Job of unexpanded command words plus
// redirection targets, recognizing pipes, the six redirection forms, and
// a trailing background marker. It does not implement control-flow
// keywords, here-docs, or variable-assignment prefixes.
package parser

import (
	"fmt"
	"strings"

	"github.com/xdsh-project/xdsh/internal/command"
	"github.com/xdsh-project/xdsh/internal/expand"
	"github.com/xdsh-project/xdsh/internal/job"
)

// ParsedCommand is one pipeline stage before expansion: raw words plus raw
// (unexpanded) redirection target strings.
type ParsedCommand struct {
	Words        []string
	Input        string
	Output       string
	OutputAppend bool
	Error        string
	ErrorAppend  bool
	ErrToOut     bool

	// SourceText is this stage's own slice of the input line, kept for
	// status printing ("sleep 30" in "[1]+  Running ... sleep 30 &").
	SourceText string
}

// ParsedJob is one parsed line: an ordered pipeline plus its background
// marker.
type ParsedJob struct {
	Commands   []ParsedCommand
	Background bool
	SourceText string
}

// Parse tokenizes line, quote-aware via the expansion scanner, and groups
// the result into pipeline stages.
func Parse(line string) (*ParsedJob, error) {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("parser: empty input")
	}

	background := false
	if tokens[len(tokens)-1] == "&" {
		background = true
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("parser: empty input")
	}

	var stages [][]string
	var cur []string
	for _, tok := range tokens {
		if tok == "|" {
			stages = append(stages, cur)
			cur = nil
			continue
		}
		if tok == "&" {
			return nil, fmt.Errorf("parser: '&' is only valid at the end of a line")
		}
		cur = append(cur, tok)
	}
	stages = append(stages, cur)

	commands := make([]ParsedCommand, 0, len(stages))
	for _, stageTokens := range stages {
		pc, err := parseStage(stageTokens)
		if err != nil {
			return nil, err
		}
		commands = append(commands, pc)
	}

	return &ParsedJob{
		Commands:   commands,
		Background: background,
		SourceText: strings.TrimSpace(line),
	}, nil
}

func parseStage(tokens []string) (ParsedCommand, error) {
	pc := ParsedCommand{SourceText: strings.Join(tokens, " ")}
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		needsTarget := func() (string, error) {
			if i+1 >= len(tokens) {
				return "", fmt.Errorf("parser: missing redirection target after %q", tok)
			}
			return tokens[i+1], nil
		}

		switch tok {
		case "<":
			target, err := needsTarget()
			if err != nil {
				return pc, err
			}
			pc.Input = target
			i += 2
		case ">":
			target, err := needsTarget()
			if err != nil {
				return pc, err
			}
			pc.Output, pc.OutputAppend = target, false
			i += 2
		case ">>":
			target, err := needsTarget()
			if err != nil {
				return pc, err
			}
			pc.Output, pc.OutputAppend = target, true
			i += 2
		case "2>":
			target, err := needsTarget()
			if err != nil {
				return pc, err
			}
			pc.Error, pc.ErrorAppend = target, false
			i += 2
		case "2>>":
			target, err := needsTarget()
			if err != nil {
				return pc, err
			}
			pc.Error, pc.ErrorAppend = target, true
			i += 2
		case "&>":
			target, err := needsTarget()
			if err != nil {
				return pc, err
			}
			pc.Output, pc.ErrToOut = target, true
			i += 2
		default:
			pc.Words = append(pc.Words, tok)
			i++
		}
	}
	if len(pc.Words) == 0 {
		return pc, fmt.Errorf("parser: empty command")
	}
	return pc, nil
}

// tokenize splits line into words and operator tokens ("|", "<", ">", ">>",
// "2>", "2>>", "&>", "&"), treating quoted/escaped regions (tracked by the
// same scanner the expander uses) as opaque: an operator character inside
// quotes is just part of the word.
func tokenize(line string) []string {
	sc := expand.NewScanner()
	text, mask := expand.Literal(line)

	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	i := 0
	for i < len(text) {
		// Advance pops an Escape state before this byte is classified, so
		// remember it: the escaped character itself is never an operator.
		wasEscape := sc.Top() == expand.Escape
		sc.Advance(text, mask, i)
		unquoted := !wasEscape && sc.Top() == expand.Unquoted
		b := text[i]

		switch {
		case unquoted && (b == ' ' || b == '\t'):
			flush()
			i++
		case unquoted && b == '|':
			flush()
			tokens = append(tokens, "|")
			i++
		case unquoted && b == '&':
			flush()
			if i+1 < len(text) && text[i+1] == '>' {
				tokens = append(tokens, "&>")
				i += 2
			} else {
				tokens = append(tokens, "&")
				i++
			}
		case unquoted && b == '<':
			flush()
			tokens = append(tokens, "<")
			i++
		case unquoted && b == '>':
			flush()
			if i+1 < len(text) && text[i+1] == '>' {
				tokens = append(tokens, ">>")
				i += 2
			} else {
				tokens = append(tokens, ">")
				i++
			}
		case unquoted && cur.Len() == 0 && b == '2' && i+1 < len(text) && text[i+1] == '>':
			if i+2 < len(text) && text[i+2] == '>' {
				tokens = append(tokens, "2>>")
				i += 3
			} else {
				tokens = append(tokens, "2>")
				i += 2
			}
		default:
			cur.WriteByte(b)
			i++
		}
	}
	flush()
	return tokens
}

// Build materializes a job.Job from a ParsedJob, applying argv/redirection
// expansion via expandArgv (normally expand.ExpandArgv bound to the
// current shell context).
func Build(pj *ParsedJob, expandArgv func([]string) ([]string, error), expandOne func(string) (string, error)) (*job.Job, error) {
	commands := make([]*command.Command, 0, len(pj.Commands))
	for _, pc := range pj.Commands {
		argv, err := expandArgv(pc.Words)
		if err != nil {
			return nil, err
		}
		if len(argv) == 0 {
			return nil, fmt.Errorf("parser: command expanded to nothing")
		}

		cmd := command.New(argv, pc.SourceText)

		if pc.Input != "" {
			cmd.InputFile, err = expandOne(pc.Input)
			if err != nil {
				return nil, err
			}
		}
		if pc.Output != "" {
			target, err := expandOne(pc.Output)
			if err != nil {
				return nil, err
			}
			cmd.OutputFile = &command.Redirect{Path: target, Append: pc.OutputAppend}
			cmd.ErrToOut = pc.ErrToOut
		}
		if pc.Error != "" {
			target, err := expandOne(pc.Error)
			if err != nil {
				return nil, err
			}
			cmd.ErrorFile = &command.Redirect{Path: target, Append: pc.ErrorAppend}
		}

		commands = append(commands, cmd)
	}

	return job.New(commands, pj.Background), nil
}
