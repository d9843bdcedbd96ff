package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPrettierCommand runs the project's prettier through npx.
var DefaultPrettierCommand = []string{"npx", "prettier"}

// Prettier formats regions by piping them through an external prettier
// process. Class ordering is left to prettier plugins passed in Args.
type Prettier struct {
	Command []string // defaults to DefaultPrettierCommand
	Args    []string // extra arguments appended after the generated ones
}

func (p *Prettier) Format(ctx context.Context, text string, dialect Dialect, opts Options) (string, error) {
	argv := p.argv(dialect, opts)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", prettierError(dialect, stderr.String(), exitErr)
		}
		return "", fmt.Errorf("running %s: %w", argv[0], err)
	}
	return stdout.String(), nil
}

func (p *Prettier) argv(dialect Dialect, opts Options) []string {
	command := p.Command
	if len(command) == 0 {
		command = DefaultPrettierCommand
	}

	argv := append([]string{}, command...)
	argv = append(argv, "--parser", dialect.ParserName(), "--tab-width", strconv.Itoa(opts.width()))
	if opts.UseTabs {
		argv = append(argv, "--use-tabs")
	}
	return append(argv, p.Args...)
}

// prettierLocation matches the "(line:column)" suffix prettier appends to
// syntax errors.
var prettierLocation = regexp.MustCompile(`\((\d+):(\d+)\)`)

var prettierPrefix = regexp.MustCompile(`^\[error\]\s*(stdin:\s*)?`)

func prettierError(dialect Dialect, stderr string, exitErr *exec.ExitError) *Error {
	e := &Error{Dialect: dialect}

	for line := range strings.Lines(stderr) {
		line = strings.TrimSpace(prettierPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			e.Message = line
			break
		}
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("prettier %s", exitErr)
		return e
	}

	if m := prettierLocation.FindStringSubmatch(e.Message); m != nil {
		line, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		e.Loc = &Location{Line: line, Column: col}
		e.Message = strings.TrimSpace(strings.Replace(e.Message, m[0], "", 1))
	}
	return e
}
