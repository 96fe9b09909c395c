package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"

	mdconvert "github.com/alnah/go-mdconvert"
)

// stdinName is the input argument that reads Markdown from standard input.
const stdinName = "-"

// runConvertCmd converts one Markdown file (or stdin) without prompting.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: convert takes one input, got %d", ErrUsage, len(positional))
	}

	format, err := mdconvert.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	input := stdinName
	if len(positional) == 1 {
		input = positional[0]
	}
	markdown, err := readMarkdown(env, input)
	if err != nil {
		return err
	}

	s, err := newSession(flags.common, flags.runtime, env)
	if err != nil {
		return err
	}

	res, err := s.convert(ctx, mdconvert.Request{
		Markdown: markdown,
		Format:   format,
		Slug:     flags.slug,
	})
	printWarnings(stderrOrDiscard(env.Stderr, flags.common.quiet), res)
	if err != nil {
		return err
	}

	if !flags.common.quiet {
		printResult(env.Stdout, format, res)
	}
	return nil
}

// readMarkdown reads the input file, or stdin for "-".
func readMarkdown(env *Environment, input string) (string, error) {
	if input == stdinName {
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %w", ErrReadMarkdown, err)
		}
		return string(data), nil
	}

	data, err := afero.ReadFile(env.Fs, input)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	return string(data), nil
}
