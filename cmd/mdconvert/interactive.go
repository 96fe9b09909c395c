package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	mdconvert "github.com/alnah/go-mdconvert"
	"github.com/alnah/go-mdconvert/internal/config"
	"github.com/alnah/go-mdconvert/internal/hints"
)

// endOfInput is a line that ends Markdown entry, for terminals where sending
// EOF is awkward.
const endOfInput = "."

const rule = "------------------------------------------------------------"

// runInteractiveCmd runs the menu loop: choose a format, paste Markdown,
// convert, and offer another round.
func runInteractiveCmd(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseInteractiveFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	s, err := newSession(flags.common, flags.runtime, env)
	if err != nil {
		return err
	}

	lines := newLineReader(env.Stdin)
	defer lines.close()

	m := &menu{
		session: s,
		env:     env,
		lines:   lines,
		out:     env.Stdout,
	}
	return m.loop(ctx)
}

// menu is one interactive session.
type menu struct {
	*session
	env   *Environment
	lines *lineReader
	out   io.Writer
}

func (m *menu) loop(ctx context.Context) error {
	for {
		format, ok, err := m.chooseFormat(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		}

		err = m.convertOne(ctx, format)
		if errors.Is(err, context.Canceled) {
			return err
		}

		question := "Convert another file? (y/N): "
		if err != nil {
			fmt.Fprintf(m.out, "Error: %v\n", err)
			question = "Try again? (y/N): "
		}
		fmt.Fprintln(m.out, rule)
		yes, err := m.confirm(ctx, question)
		if err != nil {
			return err
		}
		if !yes {
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		}
		fmt.Fprintln(m.out)
	}
}

// chooseFormat shows the menu until a valid choice is entered.
// ok is false when the user exits or input ends.
func (m *menu) chooseFormat(ctx context.Context) (mdconvert.Format, bool, error) {
	formats := mdconvert.Formats()
	exitChoice := len(formats) + 1

	fmt.Fprintln(m.out, rule)
	fmt.Fprintln(m.out, "Markdown Conversion Tool")
	fmt.Fprintln(m.out, rule)
	fmt.Fprintln(m.out, "Choose your output format:")
	for i, f := range formats {
		fmt.Fprintf(m.out, "  %d. %s\n", i+1, menuLabel(f))
	}
	fmt.Fprintf(m.out, "  %d. Exit\n", exitChoice)
	fmt.Fprintln(m.out, rule)

	for {
		fmt.Fprintf(m.out, "Enter your choice (1-%d): ", exitChoice)
		line, eof, err := m.lines.next(ctx)
		if err != nil {
			return "", false, err
		}
		answer := strings.TrimSpace(line)
		if eof && answer == "" {
			fmt.Fprintln(m.out)
			return "", false, nil
		}

		if n, convErr := strconv.Atoi(answer); convErr == nil {
			switch {
			case n >= 1 && n <= len(formats):
				return formats[n-1], true, nil
			case n == exitChoice:
				return "", false, nil
			}
		} else if f, parseErr := mdconvert.ParseFormat(answer); parseErr == nil {
			return f, true, nil
		} else if strings.EqualFold(answer, "exit") || strings.EqualFold(answer, "q") {
			return "", false, nil
		}

		fmt.Fprintf(m.out, "Invalid choice. Please enter a number from 1 to %d.\n", exitChoice)
		if eof {
			return "", false, nil
		}
	}
}

func menuLabel(f mdconvert.Format) string {
	switch f {
	case mdconvert.FormatDOCX:
		return "Word (DOCX)"
	case mdconvert.FormatLaTeX:
		return "LaTeX (with PDF compilation)"
	default:
		return f.Label()
	}
}

// convertOne reads Markdown, asks for a slug when configured, and converts.
func (m *menu) convertOne(ctx context.Context, format mdconvert.Format) error {
	markdown, err := m.readMarkdown(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(markdown) == "" {
		return mdconvert.ErrEmptyMarkdown
	}

	var slug string
	if m.cfg.Global.OutputNaming == config.NamingPrompt {
		fmt.Fprint(m.out, "Enter a name for the output file (blank = from content): ")
		line, _, err := m.lines.next(ctx)
		if err != nil {
			return err
		}
		slug = strings.TrimSpace(line)
	}

	if format == mdconvert.FormatLaTeX && m.compilerMissing(m.env) {
		fmt.Fprintf(m.out, "Note: pdflatex not found. Only the LaTeX file will be generated.%s\n",
			hints.ForCompilerNotFound(m.envCfg.Compiler != ""))
	}

	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "Converting...")
	res, err := m.convert(ctx, mdconvert.Request{Markdown: markdown, Format: format, Slug: slug})
	printWarnings(m.out, res)
	if err != nil {
		return err
	}
	printResult(m.out, format, res)
	return nil
}

// readMarkdown collects lines until EOF or a line holding only endOfInput.
func (m *menu) readMarkdown(ctx context.Context) (string, error) {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "Enter/paste your Markdown text.")
	fmt.Fprintf(m.out, "Finish with a line containing only %q, or Ctrl-D (Unix/macOS) / Ctrl-Z then Enter (Windows):\n", endOfInput)
	fmt.Fprintln(m.out, rule)

	var b strings.Builder
	for {
		line, eof, err := m.lines.next(ctx)
		if err != nil {
			return "", err
		}
		if strings.TrimRight(line, "\r\n") == endOfInput {
			break
		}
		b.WriteString(line)
		if eof {
			break
		}
	}
	return b.String(), nil
}

// confirm asks a y/N question. Anything but y or yes is no.
func (m *menu) confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprint(m.out, question)
	line, eof, err := m.lines.next(ctx)
	if err != nil {
		return false, err
	}
	if eof && line == "" {
		fmt.Fprintln(m.out)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// lineReader reads lines on a goroutine so a blocked read does not keep
// the menu from noticing cancellation.
type lineReader struct {
	lines chan lineResult
	done  chan struct{}
}

type lineResult struct {
	line string
	eof  bool
	err  error
}

func newLineReader(r io.Reader) *lineReader {
	l := &lineReader{
		lines: make(chan lineResult),
		done:  make(chan struct{}),
	}
	go l.run(bufio.NewReader(r))
	return l
}

func (l *lineReader) run(br *bufio.Reader) {
	defer close(l.lines)
	for {
		line, err := br.ReadString('\n')
		res := lineResult{line: line}
		switch {
		case errors.Is(err, io.EOF):
			res.eof = true
		case err != nil:
			res.err = err
		}
		select {
		case l.lines <- res:
		case <-l.done:
			return
		}
		if res.err != nil {
			return
		}
	}
}

// next returns the next line including its newline. eof is set when input
// ended after line; reading again after EOF retries the underlying reader.
func (l *lineReader) next(ctx context.Context) (string, bool, error) {
	select {
	case res, ok := <-l.lines:
		if !ok {
			return "", true, nil
		}
		return res.line, res.eof, res.err
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (l *lineReader) close() {
	close(l.done)
}
