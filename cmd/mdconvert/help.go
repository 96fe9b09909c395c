package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconvert [command] [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Markdown to PDF, Word, LaTeX or HTML.")
	fmt.Fprintln(w, "Without a command, the interactive menu starts.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  interactive  Choose a format and paste Markdown (default)")
	fmt.Fprintln(w, "  convert      Convert a Markdown file or stdin")
	fmt.Fprintln(w, "  init         Write a commented default config file")
	fmt.Fprintln(w, "  config       Show, check or locate configuration")
	fmt.Fprintln(w, "  doctor       Check pandoc, pdflatex and the environment")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdconvert help <command>' for details on a specific command.")
}

// printRuntimeFlags prints flags shared by interactive and convert.
func printRuntimeFlags(w io.Writer) {
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output-root <dir>   Parent of PDF/, DOCX/, LaTeX/, HTML/")
	fmt.Fprintln(w, "      --save-source         Save the Markdown next to the output")
	fmt.Fprintln(w, "      --open                Open produced files")
	fmt.Fprintln(w, "      --no-open             Never open produced files")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-conversion timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <path>       Config file path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDCONVERT_CONFIG, MDCONVERT_OUTPUT_ROOT, MDCONVERT_PANDOC,")
	fmt.Fprintln(w, "  MDCONVERT_PDFLATEX, MDCONVERT_NO_OPEN, MDCONVERT_TIMEOUT")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconvert convert [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert one Markdown document. Reads stdin when input is '-' or omitted.")
	fmt.Fprintln(w, "Output goes to <format dir>/<date><Slug>.<ext>; existing files are never overwritten.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: pdf, docx, latex, html (default pdf)")
	fmt.Fprintln(w, "  -s, --slug <s>            File name slug (default: first words of the document)")
	fmt.Fprintln(w)
	printRuntimeFlags(w)
}

// printInteractiveUsage prints usage for the interactive command.
func printInteractiveUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconvert interactive [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show the format menu, read pasted Markdown until Ctrl-D or a line")
	fmt.Fprintln(w, "containing only '.', convert it, and offer another conversion.")
	fmt.Fprintln(w)
	printRuntimeFlags(w)
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconvert init [path] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write the default configuration with explanatory '_comment' keys.")
	fmt.Fprintln(w, "Writes markdown-converter.yaml when path is omitted; .json paths get JSON.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -f, --force               Overwrite an existing file")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconvert config <show|check|paths> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  show [--json]             Print the effective configuration and its source")
	fmt.Fprintln(w, "  check [path]              Strictly validate a config file")
	fmt.Fprintln(w, "  paths                     List search paths; '*' marks existing files")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>       Config file path")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconvert doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that pandoc, pdflatex and an opener are available, that the")
	fmt.Fprintln(w, "configuration loads and that the output root is writable.")
	fmt.Fprintln(w, "Exits 1 when conversion cannot work.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "interactive":
		printInteractiveUsage(env.Stdout)
	case "init":
		printInitUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdconvert version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdconvert help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
