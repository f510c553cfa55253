package normalize

import (
	"fmt"
	"strings"
)

// A CommandGroup is one shell invocation extracted from documentation text,
// together with the stdout it is documented to produce. Commands holds the
// command lines of the invocation, continuation lines kept separate. Comments
// holds the trailing comment of each command line, one entry per command line,
// so inline comments ride along into the shell. Output holds the expected
// stdout lines verbatim; an empty Output means only the exit status of the
// invocation is checked.
type CommandGroup struct {
	Commands []string
	Comments []string
	Output   []string
}

// Extractor recognizes command examples in free documentation text.
//
// Lines starting with "$ " begin a new command, lines starting with "> "
// continue the previous command, and any other line while a command is open
// is recorded as its expected output. A trailing "# ..." region of a command
// line is split off as its comment. A command line ending in a backslash
// makes the next line an implicit continuation as long as no output has been
// seen yet.
//
// The zero Extractor scans a whole text with commands kept as written. The
// optional fields select a section and rewrite commands for embedding into
// Makefile recipes, or switch to dependency mode.
type Extractor struct {
	// Heading selects the section after "Heading\n" before scanning. The
	// section reaches up to the next blank-separated unindented heading
	// line or the end of the text. When the heading does not occur the
	// text has no commands.
	Heading string

	// Embed is a format with one %s verb that wraps every command, e.g. to
	// prefix a cd into the module directory. Empty means "%s".
	Embed string

	// End is appended after embedding. Continuation lines strip it from the
	// previous command line before re-appending it, so the suffix always
	// closes the last line of the group.
	End string

	// Pip switches to dependency mode: every plain non-empty line becomes a
	// package installation command with the given installer prefix, and no
	// output lines are recorded.
	Pip string
}

type scanState int

const (
	scanIdle scanState = iota
	scanCommand
	scanOutput
)

// Extract scans text and returns the command groups in order of appearance.
// Extract is pure: the same text and the same Extractor always yield the same
// groups. Malformed lines never fail, they degrade to output lines or are
// dropped, because documentation legitimately interleaves prose with
// examples.
func (x Extractor) Extract(text string) []CommandGroup {
	if text == "" {
		return nil
	}
	if x.Heading != "" {
		_, after, found := strings.Cut(text, x.Heading+"\n")
		if !found {
			return nil
		}
		text = section(after)
	}
	embed := x.Embed
	if embed == "" {
		embed = "%s"
	}

	var (
		groups []CommandGroup
		cur    CommandGroup
		state  = scanIdle
	)
	flush := func() {
		if state != scanIdle {
			groups = append(groups, cur)
		}
		cur = CommandGroup{}
		state = scanIdle
	}
	for _, line := range strings.Split(text, "\n") {
		command, comment := splitComment(line)
		if (command == "$" || command == ">") && (comment == "" || comment[0] == ' ') {
			// A bare marker followed only by a comment counts as "$ "/"> ".
			command += " "
			if comment != "" {
				comment = comment[1:]
			}
		}
		last := len(cur.Commands) - 1
		switch {
		case strings.HasPrefix(command, "$ "):
			if command[2:] == "" {
				break // separator, keeps the current group open
			}
			flush()
			cur = CommandGroup{
				Commands: []string{fmt.Sprintf(embed, command[2:]) + x.End},
				Comments: []string{comment},
			}
			state = scanCommand
		case strings.HasPrefix(command, "> "):
			if state == scanIdle {
				break
			}
			cur.Commands[last] = strings.TrimSuffix(cur.Commands[last], x.End)
			cur.Commands = append(cur.Commands, command[2:]+x.End)
			cur.Comments = append(cur.Comments, comment)
		case state == scanCommand && cur.Commands[last] != "" &&
			strings.HasSuffix(cur.Commands[last], `\`):
			cur.Commands[last] = strings.TrimSuffix(cur.Commands[last], x.End)
			cur.Commands = append(cur.Commands, fmt.Sprintf(embed, command)+x.End)
			cur.Comments = append(cur.Comments, comment)
		case state != scanIdle && x.Pip == "":
			cur.Output = append(cur.Output, line)
			state = scanOutput
		case command != "" && x.Pip != "":
			flush()
			cur = CommandGroup{
				Commands: []string{x.Pip + " install " + command + " --no-warn-script-location"},
				Comments: []string{comment},
			}
			state = scanCommand
		}
	}
	flush()
	return groups
}

// section cuts text at the next blank-separated unindented heading line, the
// point where the sliced documentation section ends.
func section(text string) string {
	lines := strings.Split(text, "\n")
	blank := false
	for i, l := range lines {
		if l == "" {
			blank = true
			continue
		}
		if blank && headingLine(l) {
			return strings.Join(lines[:i], "\n")
		}
		blank = false
	}
	return text
}

func headingLine(l string) bool {
	if l == "" || l[0] == ' ' || l[0] == '\t' {
		return false
	}
	return strings.HasSuffix(l, ":") &&
		!strings.HasPrefix(l, "$") && !strings.HasPrefix(l, ">")
}

// splitComment splits a line at the first '#', extended left over the
// whitespace run before it. Without a '#' the whole line is command.
func splitComment(line string) (command, comment string) {
	i := strings.IndexByte(line, '#')
	if i < 0 {
		return line, ""
	}
	for i > 0 {
		switch line[i-1] {
		case ' ', '\t', '\v', '\f', '\r':
			i--
			continue
		}
		break
	}
	return line[:i], line[i:]
}
