package mdconvert

// Notes:
// - Convert is tested against fakeRunner and afero.MemMapFs; no subprocess is
//   spawned. The fake writes the artifacts a real pandoc/pdflatex would.
// - ExecRunner itself is covered by internal/process tests.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/alnah/go-mdconvert/internal/config"
	"github.com/alnah/go-mdconvert/internal/opener"
	"github.com/alnah/go-mdconvert/internal/pandoc"
)

const testDay = "20250525"

var fixedNow = func() time.Time {
	return time.Date(2025, time.May, 25, 14, 30, 0, 0, time.Local)
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type toolFunc func(ctx context.Context, inv Invocation) (ExitStatus, error)

type fakeRunner struct {
	tools map[string]toolFunc
	calls []Invocation
}

func (f *fakeRunner) Run(ctx context.Context, inv Invocation) (ExitStatus, error) {
	f.calls = append(f.calls, inv)
	fn, ok := f.tools[filepath.Base(inv.Path)]
	if !ok {
		return ExitStatus{}, errors.New("unexpected tool " + inv.Path)
	}
	return fn(ctx, inv)
}

// pandocWrites simulates pandoc writing the -o target.
func pandocWrites(fs afero.Fs) toolFunc {
	return func(_ context.Context, inv Invocation) (ExitStatus, error) {
		i := slices.Index(inv.Args, "-o")
		if err := afero.WriteFile(fs, inv.Args[i+1], []byte("artifact"), 0o644); err != nil {
			return ExitStatus{}, err
		}
		return ExitStatus{}, nil
	}
}

// compilerWrites simulates pdflatex producing a PDF plus scratch files.
func compilerWrites(fs afero.Fs, code int) toolFunc {
	return func(_ context.Context, inv Invocation) (ExitStatus, error) {
		tex := inv.Args[len(inv.Args)-1]
		for _, ext := range []string{".pdf", ".aux", ".log"} {
			_ = afero.WriteFile(fs, strings.TrimSuffix(tex, ".tex")+ext, []byte("x"), 0o644)
		}
		return ExitStatus{Code: code}, nil
	}
}

func exits(code int, stderr string) toolFunc {
	return func(context.Context, Invocation) (ExitStatus, error) {
		return ExitStatus{Code: code, Stderr: stderr}, nil
	}
}

type fakeOpener struct {
	opened []string
	err    error
}

func (o *fakeOpener) Open(path string) error {
	o.opened = append(o.opened, path)
	return o.err
}

func lookPathFor(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		if slices.Contains(available, name) {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
}

type testEnv struct {
	fs     afero.Fs
	runner *fakeRunner
	opener *fakeOpener
	cfg    *config.Config
}

func newTestEnv() *testEnv {
	fs := afero.NewMemMapFs()
	return &testEnv{
		fs:     fs,
		runner: &fakeRunner{tools: map[string]toolFunc{"pandoc": pandocWrites(fs), "pdflatex": compilerWrites(fs, 0)}},
		opener: &fakeOpener{},
		cfg:    config.DefaultConfig(),
	}
}

func (e *testEnv) converter(t *testing.T, extra ...Option) *Converter {
	t.Helper()
	opts := []Option{
		WithFs(e.fs),
		WithRunner(e.runner),
		WithOpener(e.opener),
		WithConfig(e.cfg),
		WithNow(fixedNow),
		WithLookPath(lookPathFor("pandoc", "pdflatex")),
		WithWorkDir("/work"),
	}
	c, err := NewConverter(append(opts, extra...)...)
	if err != nil {
		t.Fatalf("NewConverter() error: %v", err)
	}
	return c
}

func mustExist(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	if ok, _ := afero.Exists(fs, path); !ok {
		t.Errorf("expected %s to exist", path)
	}
}

func mustNotExist(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	if ok, _ := afero.Exists(fs, path); ok {
		t.Errorf("expected %s to be absent", path)
	}
}

// ---------------------------------------------------------------------------
// TestConvert_PDF - End-to-end stage 1
// ---------------------------------------------------------------------------

func TestConvert_PDF(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	c := env.converter(t)

	res, err := c.Convert(context.Background(), Request{Markdown: "# Title\n\nHello", Format: FormatPDF})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	wantPath := filepath.Join("PDF", testDay+"TitleHello.pdf")
	if res.OutputPath != wantPath {
		t.Errorf("OutputPath = %q, want %q", res.OutputPath, wantPath)
	}
	if !res.Success || res.Outcome != OutcomeStage1Only {
		t.Errorf("Success=%v Outcome=%v, want true/stage1-only", res.Success, res.Outcome)
	}
	if res.PDFPath != "" || res.SourcePath != "" {
		t.Errorf("unexpected secondary paths: pdf=%q source=%q", res.PDFPath, res.SourcePath)
	}
	mustExist(t, env.fs, wantPath)

	if len(env.runner.calls) != 1 {
		t.Fatalf("runner called %d times, want 1", len(env.runner.calls))
	}
	inv := env.runner.calls[0]
	want := []string{
		"-f", "markdown", "-V", "geometry:margin=1in,paper=letter", "-o", wantPath,
		"-V", "fontsize=12pt",
	}
	if diff := cmp.Diff(want, inv.Args); diff != "" {
		t.Errorf("pandoc args mismatch (-want +got):\n%s", diff)
	}
	if inv.Path != "/usr/bin/pandoc" {
		t.Errorf("Path = %q, want resolved pandoc", inv.Path)
	}
	if inv.Stdin != "# Title\n\nHello" {
		t.Errorf("Stdin = %q", inv.Stdin)
	}
	if inv.Dir != "/work" || !slices.Contains(inv.Env, "TMPDIR=/work") {
		t.Errorf("Dir=%q Env=%v, want scratch files in /work", inv.Dir, inv.Env)
	}
	if n := pandoc.CountGeometry(inv.Args); n != 1 {
		t.Errorf("%d geometry directives, want 1", n)
	}
}

func TestConvert_DOCX(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.cfg.DOCX.Font.Family = "Arial"
	c := env.converter(t)

	res, err := c.Convert(context.Background(), Request{Markdown: "Status update", Format: FormatDOCX})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	out := filepath.Join("DOCX", testDay+"StatusUpdate.docx")
	want := []string{"-f", "markdown", "-t", "docx", "-o", out, "-V", "mainfont=Arial", "-V", "fontsize=12pt"}
	if diff := cmp.Diff(want, env.runner.calls[0].Args); diff != "" {
		t.Errorf("pandoc args mismatch (-want +got):\n%s", diff)
	}
	if res.OutputPath != out {
		t.Errorf("OutputPath = %q, want %q", res.OutputPath, out)
	}
}

func TestConvert_SlugAndCollisions(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	c := env.converter(t)
	ctx := context.Background()

	first, err := c.Convert(ctx, Request{Markdown: "body", Format: FormatPDF, Slug: "weekly report"})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	second, err := c.Convert(ctx, Request{Markdown: "body", Format: FormatPDF, Slug: "weekly report"})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	if want := filepath.Join("PDF", testDay+"WeeklyReport.pdf"); first.OutputPath != want {
		t.Errorf("first = %q, want %q", first.OutputPath, want)
	}
	if want := filepath.Join("PDF", testDay+"WeeklyReport-1.pdf"); second.OutputPath != want {
		t.Errorf("second = %q, want %q", second.OutputPath, want)
	}
}

func TestConvert_OutputRoot(t *testing.T) {
	t.Parallel()

	t.Run("from config", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		env.cfg.Global.OutputRoot = "out"
		res, err := env.converter(t).Convert(context.Background(), Request{Markdown: "x", Format: FormatPDF})
		if err != nil {
			t.Fatalf("Convert() error: %v", err)
		}
		if want := filepath.Join("out", "PDF", testDay+"X.pdf"); res.OutputPath != want {
			t.Errorf("OutputPath = %q, want %q", res.OutputPath, want)
		}
	})

	t.Run("option overrides config", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		env.cfg.Global.OutputRoot = "out"
		res, err := env.converter(t, WithOutputRoot("")).Convert(context.Background(), Request{Markdown: "x", Format: FormatPDF})
		if err != nil {
			t.Fatalf("Convert() error: %v", err)
		}
		if want := filepath.Join("PDF", testDay+"X.pdf"); res.OutputPath != want {
			t.Errorf("OutputPath = %q, want %q", res.OutputPath, want)
		}
	})
}

// ---------------------------------------------------------------------------
// TestConvert_LaTeX - Stage 2 outcomes
// ---------------------------------------------------------------------------

func TestConvert_LaTeX_BothSucceeded(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	c := env.converter(t)

	res, err := c.Convert(context.Background(), Request{Markdown: "# Notes", Format: FormatLaTeX})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	tex := filepath.Join("LaTeX", testDay+"Notes.tex")
	pdf := filepath.Join("LaTeX", testDay+"Notes.pdf")
	if res.OutputPath != tex || res.PDFPath != pdf {
		t.Errorf("paths = %q, %q; want %q, %q", res.OutputPath, res.PDFPath, tex, pdf)
	}
	if res.Outcome != OutcomeBothSucceeded {
		t.Errorf("Outcome = %v, want both-succeeded", res.Outcome)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}

	if len(env.runner.calls) != 2 {
		t.Fatalf("runner called %d times, want 2", len(env.runner.calls))
	}
	if diff := cmp.Diff(pandoc.CompilerArgs(tex, "LaTeX"), env.runner.calls[1].Args); diff != "" {
		t.Errorf("compiler args mismatch (-want +got):\n%s", diff)
	}
	if !slices.Contains(env.runner.calls[0].Args, "documentclass=article") {
		t.Errorf("stage 1 args missing document class: %v", env.runner.calls[0].Args)
	}
	mustNotExist(t, env.fs, filepath.Join("LaTeX", testDay+"Notes.aux"))
	mustNotExist(t, env.fs, filepath.Join("LaTeX", testDay+"Notes.log"))
}

func TestConvert_LaTeX_CompilerMissing(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	c := env.converter(t, WithLookPath(lookPathFor("pandoc")))

	res, err := c.Convert(context.Background(), Request{Markdown: "# Notes", Format: FormatLaTeX})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if want := filepath.Join("LaTeX", testDay+"Notes.tex"); res.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", res.OutputPath, want)
	}
	if res.PDFPath != "" {
		t.Errorf("PDFPath = %q, want empty", res.PDFPath)
	}
	if res.Outcome != OutcomeStage1Only {
		t.Errorf("Outcome = %v, want stage1-only", res.Outcome)
	}
	if !slices.Contains(res.Warnings, "pdflatex not found; skipping PDF compilation") {
		t.Errorf("Warnings = %v, want compiler-not-found notice", res.Warnings)
	}
	if len(env.runner.calls) != 1 {
		t.Errorf("runner called %d times, want 1", len(env.runner.calls))
	}
}

func TestConvert_LaTeX_CompileDisabled(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.cfg.LaTeX.CompilePDF = false
	res, err := env.converter(t).Convert(context.Background(), Request{Markdown: "x", Format: FormatLaTeX})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if res.Outcome != OutcomeStage1Only || len(res.Warnings) != 0 || len(env.runner.calls) != 1 {
		t.Errorf("Outcome=%v Warnings=%v calls=%d", res.Outcome, res.Warnings, len(env.runner.calls))
	}
}

func TestConvert_LaTeX_CompilerNonzeroWithPDF(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.runner.tools["pdflatex"] = compilerWrites(env.fs, 1)

	res, err := env.converter(t).Convert(context.Background(), Request{Markdown: "x", Format: FormatLaTeX})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if res.Outcome != OutcomeBothSucceeded || res.PDFPath == "" {
		t.Errorf("Outcome=%v PDFPath=%q, want PDF accepted", res.Outcome, res.PDFPath)
	}
}

func TestConvert_LaTeX_CompilerFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.runner.tools["pdflatex"] = func(_ context.Context, inv Invocation) (ExitStatus, error) {
		tex := inv.Args[len(inv.Args)-1]
		_ = afero.WriteFile(env.fs, strings.TrimSuffix(tex, ".tex")+".log", []byte("! Undefined control sequence."), 0o644)
		return ExitStatus{Code: 1, Stderr: "! Undefined control sequence."}, nil
	}

	res, err := env.converter(t).Convert(context.Background(), Request{Markdown: "x", Format: FormatLaTeX})
	if err != nil {
		t.Fatalf("Convert() error = %v; stage 2 failure must not fail the conversion", err)
	}
	if !res.Success || res.Outcome != OutcomeStage1Only || res.PDFPath != "" {
		t.Errorf("Success=%v Outcome=%v PDFPath=%q", res.Success, res.Outcome, res.PDFPath)
	}
	mustExist(t, env.fs, res.OutputPath)
	mustExist(t, env.fs, filepath.Join("LaTeX", testDay+"X.log"))
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "status 1") {
		t.Errorf("Warnings = %v, want exit status", res.Warnings)
	}
}

// ---------------------------------------------------------------------------
// TestConvert_ReservesSiblingNames - Older files never pass for this run's output
// ---------------------------------------------------------------------------

func TestConvert_ReservesSiblingNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		format     Format
		saveSource bool
		existing   string
		wantOutput string
	}{
		{
			name:       "older pdf next to a free tex",
			format:     FormatLaTeX,
			existing:   "LaTeX/" + testDay + "X.pdf",
			wantOutput: "LaTeX/" + testDay + "X-1.tex",
		},
		{
			name:       "older pdflatex log",
			format:     FormatLaTeX,
			existing:   "LaTeX/" + testDay + "X.log",
			wantOutput: "LaTeX/" + testDay + "X-1.tex",
		},
		{
			name:       "orphaned markdown source",
			format:     FormatPDF,
			saveSource: true,
			existing:   "PDF/" + testDay + "X.md",
			wantOutput: "PDF/" + testDay + "X-1.pdf",
		},
		{
			name:       "markdown source not saved",
			format:     FormatPDF,
			existing:   "PDF/" + testDay + "X.md",
			wantOutput: "PDF/" + testDay + "X.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			env.cfg.Global.SaveMarkdownSource = tt.saveSource
			env.runner.tools["pdflatex"] = exits(1, "! Emergency stop.")
			if err := afero.WriteFile(env.fs, tt.existing, []byte("older"), 0o644); err != nil {
				t.Fatal(err)
			}

			res, err := env.converter(t).Convert(context.Background(), Request{Markdown: "x", Format: tt.format})
			if err != nil {
				t.Fatalf("Convert() error: %v", err)
			}
			if res.OutputPath != filepath.FromSlash(tt.wantOutput) {
				t.Errorf("OutputPath = %q, want %q", res.OutputPath, tt.wantOutput)
			}
			if res.PDFPath != "" || res.Outcome == OutcomeBothSucceeded {
				t.Errorf("Outcome=%v PDFPath=%q; a failed compile must not claim an older PDF", res.Outcome, res.PDFPath)
			}
			if data, _ := afero.ReadFile(env.fs, tt.existing); string(data) != "older" {
				t.Errorf("%s was overwritten: %q", tt.existing, data)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvert_Stage1Failures
// ---------------------------------------------------------------------------

func TestConvert_Stage1Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tool      toolFunc
		lookPath  func(string) (string, error)
		wantErr   error
		wantInMsg string
		wantCalls int
	}{
		{
			name:      "nonzero exit",
			tool:      exits(43, "pandoc: Error producing PDF.\n! LaTeX Error: File `foo.sty' not found."),
			wantErr:   ErrConversionFailed,
			wantInMsg: "status 43",
			wantCalls: 1,
		},
		{
			name:      "success without artifact",
			tool:      exits(0, ""),
			wantErr:   ErrConversionFailed,
			wantInMsg: "was not created",
			wantCalls: 1,
		},
		{
			name: "spawn error",
			tool: func(context.Context, Invocation) (ExitStatus, error) {
				return ExitStatus{}, os.ErrPermission
			},
			wantErr:   os.ErrPermission,
			wantCalls: 1,
		},
		{
			name:      "pandoc missing",
			lookPath:  lookPathFor("pdflatex"),
			wantErr:   ErrConverterNotFound,
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			if tt.tool != nil {
				env.runner.tools["pandoc"] = tt.tool
			}
			var extra []Option
			if tt.lookPath != nil {
				extra = append(extra, WithLookPath(tt.lookPath))
			}

			res, err := env.converter(t, extra...).Convert(context.Background(), Request{Markdown: "# Doc", Format: FormatLaTeX})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantInMsg) {
				t.Errorf("error %q missing %q", err, tt.wantInMsg)
			}
			if res == nil {
				t.Fatal("Result is nil")
			}
			if res.Success || res.Outcome != OutcomeStage1Failed || res.OutputPath != "" || res.PDFPath != "" {
				t.Errorf("Result = %+v, want stage1-failed with no paths", res)
			}
			if !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("Result.Err = %v", res.Err)
			}
			if len(env.runner.calls) != tt.wantCalls {
				t.Errorf("runner called %d times, want %d (no stage 2)", len(env.runner.calls), tt.wantCalls)
			}
		})
	}
}

func TestConvert_InvalidRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "empty", req: Request{Markdown: "", Format: FormatPDF}, wantErr: ErrEmptyMarkdown},
		{name: "whitespace", req: Request{Markdown: " \n\t\n", Format: FormatPDF}, wantErr: ErrEmptyMarkdown},
		{name: "unknown format", req: Request{Markdown: "x", Format: "rtf"}, wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			res, err := env.converter(t).Convert(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(env.runner.calls) != 0 {
				t.Errorf("runner called %d times, want 0", len(env.runner.calls))
			}
			if res.Outcome != OutcomeStage1Failed {
				t.Errorf("Outcome = %v", res.Outcome)
			}
			mustNotExist(t, env.fs, "PDF")
		})
	}
}

func TestConvert_Timeout(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.runner.tools["pandoc"] = func(ctx context.Context, _ Invocation) (ExitStatus, error) {
		<-ctx.Done()
		return ExitStatus{Code: -1}, ctx.Err()
	}

	_, err := env.converter(t, WithTimeout(10*time.Millisecond)).Convert(context.Background(), Request{Markdown: "x", Format: FormatPDF})
	if !errors.Is(err, ErrConversionFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want conversion failure caused by deadline", err)
	}
}

func TestConvert_RecoversPanic(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.runner.tools["pandoc"] = func(context.Context, Invocation) (ExitStatus, error) {
		panic("boom")
	}

	res, err := env.converter(t).Convert(context.Background(), Request{Markdown: "x", Format: FormatPDF})
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Fatalf("error = %v, want internal error", err)
	}
	if res == nil || res.Success || res.Outcome != OutcomeStage1Failed {
		t.Errorf("Result = %+v", res)
	}
}

// ---------------------------------------------------------------------------
// TestConvert_HTML - In-process stage 1
// ---------------------------------------------------------------------------

func TestConvert_HTML(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	res, err := env.converter(t).Convert(context.Background(), Request{Markdown: "# Title\n\nHello", Format: FormatHTML})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	want := filepath.Join("HTML", testDay+"TitleHello.html")
	if res.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", res.OutputPath, want)
	}
	data, err := afero.ReadFile(env.fs, want)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "<title>Title</title>") {
		t.Errorf("output missing title:\n%s", data)
	}
	if len(env.runner.calls) != 0 {
		t.Errorf("runner called %d times for HTML", len(env.runner.calls))
	}
}

func TestNewConverter_UnknownHighlightStyle(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.HTML.HighlightStyle = "no-such-style"
	if _, err := NewConverter(WithConfig(cfg), WithWorkDir("/work")); err == nil {
		t.Error("NewConverter() should reject an unknown highlight style")
	}
}

// ---------------------------------------------------------------------------
// TestConvert_SideEffects - Source save and auto-open
// ---------------------------------------------------------------------------

// mdWriteFailFs rejects writes of .md files.
type mdWriteFailFs struct {
	afero.Fs
}

func (f mdWriteFailFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if strings.HasSuffix(name, ".md") {
		return nil, os.ErrPermission
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestConvert_SaveSource(t *testing.T) {
	t.Parallel()

	t.Run("saved next to output", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		env.cfg.Global.SaveMarkdownSource = true
		res, err := env.converter(t).Convert(context.Background(), Request{Markdown: "# Title\n\nHello", Format: FormatPDF})
		if err != nil {
			t.Fatalf("Convert() error: %v", err)
		}
		want := filepath.Join("PDF", testDay+"TitleHello.md")
		if res.SourcePath != want {
			t.Errorf("SourcePath = %q, want %q", res.SourcePath, want)
		}
		data, _ := afero.ReadFile(env.fs, want)
		if string(data) != "# Title\n\nHello" {
			t.Errorf("saved source = %q", data)
		}
	})

	t.Run("write failure is a warning", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		env.cfg.Global.SaveMarkdownSource = true
		c := env.converter(t, WithFs(mdWriteFailFs{env.fs}))

		res, err := c.Convert(context.Background(), Request{Markdown: "x", Format: FormatPDF})
		if err != nil {
			t.Fatalf("Convert() error = %v; source save failure must not fail the conversion", err)
		}
		if !res.Success || res.OutputPath == "" || res.SourcePath != "" {
			t.Errorf("Result = %+v", res)
		}
		if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "Markdown source") {
			t.Errorf("Warnings = %v", res.Warnings)
		}
	})
}

func TestConvert_AutoOpen(t *testing.T) {
	t.Parallel()

	t.Run("disabled by default", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		if _, err := env.converter(t).Convert(context.Background(), Request{Markdown: "x", Format: FormatPDF}); err != nil {
			t.Fatalf("Convert() error: %v", err)
		}
		if len(env.opener.opened) != 0 {
			t.Errorf("opened %v with auto_open_output off", env.opener.opened)
		}
	})

	t.Run("opens every produced document", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		env.cfg.Global.AutoOpenOutput = true
		res, err := env.converter(t).Convert(context.Background(), Request{Markdown: "x", Format: FormatLaTeX})
		if err != nil {
			t.Fatalf("Convert() error: %v", err)
		}
		want := []string{res.OutputPath, res.PDFPath}
		if diff := cmp.Diff(want, env.opener.opened); diff != "" {
			t.Errorf("opened mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("opener error is a warning", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		env.cfg.Global.AutoOpenOutput = true
		env.opener.err = opener.ErrNoOpener
		res, err := env.converter(t).Convert(context.Background(), Request{Markdown: "x", Format: FormatPDF})
		if err != nil {
			t.Fatalf("Convert() error: %v", err)
		}
		if !res.Success || len(res.Warnings) != 1 {
			t.Errorf("Success=%v Warnings=%v", res.Success, res.Warnings)
		}
	})

	t.Run("nil opener disables", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		env.cfg.Global.AutoOpenOutput = true
		res, err := env.converter(t, WithOpener(nil)).Convert(context.Background(), Request{Markdown: "x", Format: FormatPDF})
		if err != nil || len(res.Warnings) != 0 {
			t.Errorf("err=%v Warnings=%v", err, res.Warnings)
		}
	})
}

func TestOpen_SkipsMissingFiles(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	c := env.converter(t)
	if err := afero.WriteFile(env.fs, "LaTeX/a.tex", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := &Result{OutputPath: "LaTeX/a.tex", PDFPath: "LaTeX/a.pdf"}
	c.open(res)

	if diff := cmp.Diff([]string{"LaTeX/a.tex"}, env.opener.opened); diff != "" {
		t.Errorf("opened mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestExcerpt
// ---------------------------------------------------------------------------

func TestExcerpt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{name: "empty", stderr: "  \n", want: ""},
		{name: "single line", stderr: "boom\n", want: ": boom"},
		{name: "keeps last lines", stderr: "1\n2\n3\n4\n5\n6\n7", want: ": 3\n4\n5\n6\n7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := excerpt(tt.stderr); got != tt.want {
				t.Errorf("excerpt() = %q, want %q", got, tt.want)
			}
		})
	}
}
