// Package mdconvert converts Markdown to PDF, DOCX, LaTeX, or HTML files.
//
// # Quick Start
//
//	conv, err := mdconvert.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := conv.Convert(ctx, mdconvert.Request{
//	    Markdown: "# Hello\n\nWorld",
//	    Format:   mdconvert.FormatPDF,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.OutputPath) // PDF/20250525HelloWorld.pdf
//
// # Conversion Pipeline
//
//  1. Output path derivation: <dir>/<date><Slug>.<ext>, where the slug is the
//     first words of the document (or the caller's slug) and a -N suffix
//     avoids existing files.
//  2. Stage 1: pandoc reads the Markdown on stdin and writes the artifact.
//     Geometry and font settings become -V directives. HTML is rendered
//     in-process with goldmark instead.
//  3. Stage 2 (LaTeX only): pdflatex compiles the .tex file when installed and
//     latex.compile_pdf is set. A failure here keeps the .tex result.
//  4. Side effects: save the Markdown source and open the artifacts, both
//     gated by configuration. Their failures are reported as warnings.
//
// # Configuration
//
// Settings come from the first usable markdown-converter.{yaml,yml,json}
// found in the working directory, then the home directory, deep-merged over
// built-in defaults. Pass a resolved configuration with WithConfig:
//
//	cfg, warnings := mdconvert.ResolveConfig("")
//	conv, err := mdconvert.NewConverter(mdconvert.WithConfig(cfg))
//
// # External Tools
//
// PDF, DOCX and LaTeX need pandoc on PATH; compiling LaTeX to PDF needs
// pdflatex. Use WithPandoc and WithCompiler to point at other binaries.
package mdconvert
