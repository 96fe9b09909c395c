package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-mdconvert/internal/config"
	"github.com/alnah/go-mdconvert/internal/fileutil"
	"github.com/alnah/go-mdconvert/internal/yamlutil"
)

// runInitCmd writes a commented default configuration file.
func runInitCmd(args []string, env *Environment) error {
	fs := newFlagSet("init", env.Stderr, printInitUsage)
	force := fs.BoolP("force", "f", false, "overwrite an existing file")
	if err := parseFlagSet(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: init takes one path, got %d", ErrUsage, fs.NArg())
	}

	path := config.BaseName + ".yaml"
	if fs.NArg() == 1 {
		path = fs.Arg(0)
	}

	if fileutil.PathExists(env.Fs, path) && !*force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
	}

	data, err := renderDefaultConfig(path)
	if err != nil {
		return err
	}
	if err := fileutil.EnsureDir(env.Fs, filepath.Dir(path)); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteConfig, err)
	}
	if err := fileutil.WriteFile(env.Fs, path, string(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteConfig, err)
	}

	fmt.Fprintf(env.Stdout, "Configuration file created: %s\n", path)
	fmt.Fprintln(env.Stdout)
	fmt.Fprintln(env.Stdout, "Edit this file to customize:")
	fmt.Fprintln(env.Stdout, "  - margins and paper sizes for PDF/LaTeX")
	fmt.Fprintln(env.Stdout, "  - font families and sizes for every format")
	fmt.Fprintln(env.Stdout, "  - Markdown source saving and auto-open")
	fmt.Fprintln(env.Stdout, "  - LaTeX PDF compilation")
	fmt.Fprintln(env.Stdout)
	fmt.Fprintln(env.Stdout, "Keys starting with '_' are comments and can be removed.")
	return nil
}

// renderDefaultConfig encodes the commented defaults as JSON for .json paths
// and YAML otherwise. Both keep each "_<key>_comment" next to its key.
func renderDefaultConfig(path string) ([]byte, error) {
	doc := commentedDefaults()
	marshal := yamlutil.Marshal
	if strings.EqualFold(filepath.Ext(path), ".json") {
		marshal = yamlutil.MarshalJSON
	}
	data, err := marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	return data, nil
}

// commentedDefaults returns the built-in configuration with "_comment" keys
// describing each setting. Values come from config.Defaults.
func commentedDefaults() yaml.MapSlice {
	d := config.Defaults()
	section := func(name string) map[string]any { return d[name].(map[string]any) }
	sub := func(sec map[string]any, key string) map[string]any { return sec[key].(map[string]any) }

	global := section(config.SectionGlobal)
	pdf := section(config.SectionPDF)
	docx := section(config.SectionDOCX)
	latex := section(config.SectionLaTeX)
	html := section(config.SectionHTML)

	geometry := func(g map[string]any, what string) yaml.MapSlice {
		return yaml.MapSlice{
			{Key: "margin", Value: g["margin"]},
			{Key: "_margin_comment", Value: "Page margins for " + what + " (e.g., '1in', '2.5cm', '0.75in')"},
			{Key: "paper", Value: g["paper"]},
			{Key: "_paper_comment", Value: "Paper size: 'letter', 'a4', 'legal', etc."},
		}
	}
	font := func(f map[string]any, what string) yaml.MapSlice {
		return yaml.MapSlice{
			{Key: "family", Value: f["family"]},
			{Key: "_family_comment", Value: "Font family for " + what + " (empty = converter default)"},
			{Key: "size", Value: f["size"]},
			{Key: "_size_comment", Value: "Font size: '11pt', '12pt', '14pt', etc."},
		}
	}

	return yaml.MapSlice{
		{Key: "_comment", Value: "Markdown converter configuration"},
		{Key: "_description", Value: "Formatting options for PDF, Word, LaTeX and HTML output"},
		{Key: config.SectionGlobal, Value: yaml.MapSlice{
			{Key: "_comment", Value: "Settings that apply to every format"},
			{Key: "save_markdown_source", Value: global["save_markdown_source"]},
			{Key: "_save_markdown_source_comment", Value: "Save the input Markdown as .md next to the output"},
			{Key: "auto_open_output", Value: global["auto_open_output"]},
			{Key: "_auto_open_output_comment", Value: "Open converted files with the default application"},
			{Key: "output_naming", Value: global["output_naming"]},
			{Key: "_output_naming_comment", Value: "'date' (stamp + first words) or 'prompt' (ask for a name)"},
			{Key: "date_format", Value: global["date_format"]},
			{Key: "_date_format_comment", Value: "Stamp tokens: YYYY, YY, MMM, MM, DD, hh, mm, ss; presets: compact, iso, month, time"},
			{Key: "slug_words", Value: global["slug_words"]},
			{Key: "_slug_words_comment", Value: "Words of the document kept in file names (0 = stamp only)"},
			{Key: "output_root", Value: global["output_root"]},
			{Key: "_output_root_comment", Value: "Parent of PDF/, DOCX/, LaTeX/, HTML/ (empty = current directory)"},
		}},
		{Key: config.SectionPDF, Value: yaml.MapSlice{
			{Key: "_comment", Value: "PDF formatting options"},
			{Key: "geometry", Value: geometry(sub(pdf, "geometry"), "PDF documents")},
			{Key: "font", Value: font(sub(pdf, "font"), "PDF documents")},
		}},
		{Key: config.SectionDOCX, Value: yaml.MapSlice{
			{Key: "_comment", Value: "Word document formatting options"},
			{Key: "font", Value: font(sub(docx, "font"), "Word documents")},
		}},
		{Key: config.SectionLaTeX, Value: yaml.MapSlice{
			{Key: "_comment", Value: "LaTeX formatting options"},
			{Key: "geometry", Value: geometry(sub(latex, "geometry"), "LaTeX documents")},
			{Key: "font", Value: font(sub(latex, "font"), "LaTeX documents")},
			{Key: "document_class", Value: latex["document_class"]},
			{Key: "_document_class_comment", Value: "LaTeX document class: 'article', 'report', 'book', etc."},
			{Key: "compile_pdf", Value: latex["compile_pdf"]},
			{Key: "_compile_pdf_comment", Value: "Compile the LaTeX file to PDF (requires pdflatex)"},
		}},
		{Key: config.SectionHTML, Value: yaml.MapSlice{
			{Key: "_comment", Value: "HTML output options (rendered without pandoc)"},
			{Key: "highlight_style", Value: html["highlight_style"]},
			{Key: "_highlight_style_comment", Value: "Code highlighting style: 'github', 'monokai', 'dracula', etc."},
			{Key: "hard_wraps", Value: html["hard_wraps"]},
			{Key: "_hard_wraps_comment", Value: "Render single newlines as line breaks"},
		}},
	}
}
