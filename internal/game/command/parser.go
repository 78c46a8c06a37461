package command

import (
	"strconv"
	"strings"
)

// ParseResult holds the parsed command name and arguments from a console line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse splits a console line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	cmd, rest, found := strings.Cut(line, " ")
	if !found {
		return ParseResult{Command: strings.ToLower(cmd)}
	}
	rest = strings.TrimSpace(rest)

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}
	return ParseResult{
		Command: strings.ToLower(cmd),
		Args:    args,
		RawArgs: rest,
	}
}

// Arg returns argument i, or "" when absent.
func (p ParseResult) Arg(i int) string {
	if i < 0 || i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}

// IntArg parses argument i, returning def when it is absent or malformed.
func (p ParseResult) IntArg(i, def int) int {
	n, err := strconv.Atoi(p.Arg(i))
	if err != nil {
		return def
	}
	return n
}

// FloatArg parses argument i, returning def when it is absent or malformed.
func (p ParseResult) FloatArg(i int, def float64) float64 {
	f, err := strconv.ParseFloat(p.Arg(i), 64)
	if err != nil {
		return def
	}
	return f
}
