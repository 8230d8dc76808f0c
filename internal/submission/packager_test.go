package submission

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
	"git.home.luguber.info/inful/texsubmit/internal/library"
	"git.home.luguber.info/inful/texsubmit/internal/metrics"
	"git.home.luguber.info/inful/texsubmit/internal/policy"
	ttesting "git.home.luguber.info/inful/texsubmit/internal/testing"
)

// pagesByName serves page text keyed by the artifact's base name.
type pagesByName map[string][]string

func (p pagesByName) Pages(path string) ([]string, error) {
	pages, ok := p[filepath.Base(path)]
	if !ok {
		return nil, errors.New("no fixture for " + path)
	}
	return pages, nil
}

// fakeCompiler writes a PDF and an aux file next to each document, failing
// for documents listed in fail.
type fakeCompiler struct {
	fail  map[string]bool
	calls []string
}

func (f *fakeCompiler) Compile(_ context.Context, document string) error {
	f.calls = append(f.calls, filepath.Base(document))
	if f.fail[filepath.Base(document)] {
		return errors.New("latexmk exited 12")
	}
	stem := strings.TrimSuffix(document, filepath.Ext(document))
	if err := os.WriteFile(stem+".aux", []byte("aux"), 0o600); err != nil {
		return err
	}
	return os.WriteFile(stem+".pdf", []byte("%PDF"), 0o600)
}

type env struct {
	t         *testing.T
	src       *ttesting.Tree
	lib       *ttesting.Tree
	outDir    string
	scratch   string
	out       bytes.Buffer
	extractor pagesByName
}

func newEnv(t *testing.T) *env {
	t.Helper()
	base := t.TempDir()
	e := &env{
		t:       t,
		src:     ttesting.NewTree(t, filepath.Join(base, "paper")),
		lib:     ttesting.NewTree(t, filepath.Join(base, "texmf")),
		outDir:  filepath.Join(base, "out"),
		scratch: filepath.Join(base, "scratch"),
		extractor: pagesByName{
			"main.pdf": {"Introduction", "See Section 2."},
		},
	}
	require.NoError(t, os.MkdirAll(e.outDir, 0o750))
	require.NoError(t, os.MkdirAll(e.scratch, 0o750))

	e.lib.Package("foo", "% foo style").
		Package("unused", "% unused style").
		Bibliography("refs.bib", "@article{a,}").
		Bibliography("old/other.bib", "@article{b,}")
	e.src.File("main.tex", "\\documentclass{article}\n\\usepackage[final]{foo}\n\\bibliography{refs}\n").
		File("main.aux", "aux").
		File("main.log", "log").
		File("main.synctex.gz", "sync").
		File("main.pdf", "%PDF").
		File("chapters/intro.tex", "\\section{Intro}\n").
		File("chapters/intro.aux", "aux")
	return e
}

func (e *env) options() Options {
	layout := library.DefaultLayout(e.lib.Root())
	layout.Bibliography = "refs.bib"
	return Options{
		Source:        e.src.Root(),
		Target:        filepath.Join(e.outDir, "submission"),
		Layout:        layout,
		WorkspaceBase: e.scratch,
	}
}

func (e *env) packager(p policy.Policy, answer string, interactive bool) *Packager {
	gate := policy.NewTerminal(p, strings.NewReader(answer), &e.out, interactive)
	return NewPackager(gate).WithExtractor(e.extractor).WithOutput(&e.out)
}

func (e *env) assertScratchEmpty() {
	e.t.Helper()
	entries, err := os.ReadDir(e.scratch)
	require.NoError(e.t, err)
	assert.Empty(e.t, entries, "scratch workspace left behind")
}

func TestRun_EndToEnd(t *testing.T) {
	e := newEnv(t)
	before := ttesting.NewFileAssertions(t, e.src.Root()).ListFiles()

	summary, err := e.packager(policy.Abort, "", false).Run(context.Background(), e.options())
	require.NoError(t, err)

	out := filepath.Join(e.outDir, "submission.zip")
	assert.Equal(t, out, summary.Archive)
	assert.Equal(t, []string{
		"paper/chapters/intro.tex",
		"paper/foo.sty",
		"paper/main.pdf",
		"paper/main.tex",
		"paper/refs.bib",
	}, ttesting.ZipNames(t, out))
	assert.Equal(t, "% foo style", ttesting.ZipContents(t, out)["paper/foo.sty"])

	assert.Equal(t, 2, summary.Documents)
	assert.Len(t, summary.Staged, 2)
	assert.Len(t, summary.Removed, 4)
	assert.True(t, summary.Report.Empty())
	assert.Nil(t, summary.Source)
	assert.Contains(t, e.out.String(), "Successfully created "+out)

	// The source tree is left untouched.
	assert.Equal(t, before, ttesting.NewFileAssertions(t, e.src.Root()).ListFiles())
	ttesting.NewFileAssertions(t, e.src.Root()).AssertFileNotExists("foo.sty").AssertFileExists("main.aux")
	e.assertScratchEmpty()
}

func TestRun_TargetWithZipSuffixAndTrailingSeparator(t *testing.T) {
	e := newEnv(t)
	opts := e.options()
	opts.Source += string(os.PathSeparator)
	opts.Target = filepath.Join(e.outDir, "final.zip")

	_, err := e.packager(policy.Abort, "", false).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Contains(t, ttesting.ZipNames(t, opts.Target), "paper/main.tex")
	assert.NoFileExists(t, opts.Target+".zip")
}

func TestRun_AlreadyExistsBeforeAnyMutation(t *testing.T) {
	e := newEnv(t)
	out := filepath.Join(e.outDir, "submission.zip")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o600))

	_, err := e.packager(policy.Abort, "", false).Run(context.Background(), e.options())

	require.Error(t, err)
	assert.True(t, serrors.IsCategory(err, serrors.CategoryAlreadyExists))
	assert.Equal(t, out+" already exists", serrors.NewCLIErrorAdapter(false, nil).FormatError(err))
	ttesting.NewFileAssertions(t, e.outDir).AssertFileEquals("submission.zip", "previous")
	e.assertScratchEmpty()
	assert.NotContains(t, e.out.String(), "Successfully")
}

func TestRun_DefectsAbortWithoutArchive(t *testing.T) {
	e := newEnv(t)
	e.extractor["main.pdf"] = []string{"ok", "see ??", "ok"}

	_, err := e.packager(policy.Abort, "", false).Run(context.Background(), e.options())

	require.Error(t, err)
	assert.True(t, serrors.IsCategory(err, serrors.CategoryAborted))
	assert.Contains(t, e.out.String(), "File "+filepath.Join(e.src.Root(), "main.pdf")+" seems to contain broken references on page 2")
	assert.NoFileExists(t, filepath.Join(e.outDir, "submission.zip"))
	e.assertScratchEmpty()
}

func TestRun_DefectsPrompt(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		archive bool
	}{
		{"accepted", "y\n", true},
		{"accepted uppercase", "Y\n", true},
		{"declined", "n\n", false},
		{"empty answer", "\n", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.extractor["main.pdf"] = []string{"[\n?\n]", "fine", "[\n?\n] ??"}

			summary, err := e.packager(policy.Prompt, tc.answer, true).Run(context.Background(), e.options())

			assert.Contains(t, e.out.String(), "broken citations on pages 1, 3")
			assert.Contains(t, e.out.String(), "Continue? (y/n) ")
			if tc.archive {
				require.NoError(t, err)
				assert.Equal(t, []int{3}, summary.Report.Pages(filepath.Join(e.src.Root(), "main.pdf"), "??"))
				assert.FileExists(t, summary.Archive)
			} else {
				assert.True(t, serrors.IsCategory(err, serrors.CategoryAborted))
				assert.True(t, serrors.IsCategory(errors.Unwrap(err), serrors.CategoryDefectsFound))
				assert.NoFileExists(t, filepath.Join(e.outDir, "submission.zip"))
			}
			e.assertScratchEmpty()
		})
	}
}

func TestRun_PromptWithoutTerminalAborts(t *testing.T) {
	e := newEnv(t)
	e.extractor["main.pdf"] = []string{"??"}

	_, err := e.packager(policy.Prompt, "y\n", false).Run(context.Background(), e.options())

	assert.True(t, serrors.IsCategory(err, serrors.CategoryAborted))
	assert.NotContains(t, e.out.String(), "Continue?")
}

func TestRun_WarnPolicyContinues(t *testing.T) {
	e := newEnv(t)
	e.extractor["main.pdf"] = []string{"??"}

	summary, err := e.packager(policy.Warn, "", false).Run(context.Background(), e.options())
	require.NoError(t, err)

	assert.False(t, summary.Report.Empty())
	assert.Contains(t, e.out.String(), "seems to contain broken references on page 1")
	assert.FileExists(t, summary.Archive)
}

func TestRun_MissingStyleFileIsFatal(t *testing.T) {
	e := newEnv(t)
	e.lib.Dir("tex/latex/ghost")
	e.src.File("appendix.tex", "\\usepackage{ghost}\n")

	_, err := e.packager(policy.Ignore, "", false).Run(context.Background(), e.options())

	require.Error(t, err)
	assert.True(t, serrors.IsCategory(err, serrors.CategoryResourceNotFound))
	assert.NoFileExists(t, filepath.Join(e.outDir, "submission.zip"))
	e.assertScratchEmpty()
}

func TestRun_SourceValidation(t *testing.T) {
	e := newEnv(t)
	opts := e.options()
	opts.Source = filepath.Join(e.src.Root(), "missing")

	_, err := e.packager(policy.Abort, "", false).Run(context.Background(), opts)
	assert.True(t, serrors.IsCategory(err, serrors.CategoryValidation))

	opts.Source = e.src.Path("main.tex")
	_, err = e.packager(policy.Abort, "", false).Run(context.Background(), opts)
	assert.True(t, serrors.IsCategory(err, serrors.CategoryValidation))
}

func TestRun_CompileRootsAndGateFailures(t *testing.T) {
	e := newEnv(t)
	e.src.File("talk/slides.tex", "\\documentclass{beamer}\n")
	e.extractor["slides.pdf"] = []string{"slide"}
	compiler := &fakeCompiler{fail: map[string]bool{"slides.tex": true}}

	opts := e.options()
	opts.Compile = true
	summary, err := e.packager(policy.Warn, "", false).WithCompiler(compiler).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"main.tex", "slides.tex"}, compiler.calls)
	assert.Equal(t, 1, summary.Compiled)
	require.Len(t, summary.CompileFailures, 1)
	assert.Contains(t, e.out.String(), "Compilation of "+filepath.Join(e.src.Root(), "talk", "slides.tex")+" failed")

	names := ttesting.ZipNames(t, summary.Archive)
	assert.Contains(t, names, "paper/main.pdf")
	assert.NotContains(t, names, "paper/main.aux")
	assert.Contains(t, names, "paper/talk/refs.bib")
}

func TestRun_CompileFailureAborts(t *testing.T) {
	e := newEnv(t)
	compiler := &fakeCompiler{fail: map[string]bool{"main.tex": true}}
	opts := e.options()
	opts.Compile = true

	_, err := e.packager(policy.Abort, "", false).WithCompiler(compiler).Run(context.Background(), opts)

	assert.True(t, serrors.IsCategory(err, serrors.CategoryAborted))
	assert.True(t, serrors.IsCategory(errors.Unwrap(err), serrors.CategoryCompilationFailed))
	assert.NoFileExists(t, filepath.Join(e.outDir, "submission.zip"))
}

func TestRun_Canceled(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.packager(policy.Abort, "", false).Run(ctx, e.options())

	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(e.outDir, "submission.zip"))
	e.assertScratchEmpty()
}

func TestRun_RecordsMetrics(t *testing.T) {
	e := newEnv(t)
	rec := metrics.NewPrometheusRecorder(nil)

	_, err := e.packager(policy.Abort, "", false).WithRecorder(rec).Run(context.Background(), e.options())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, rec.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `texsubmit_run_outcomes_total{outcome="success"} 1`)
	assert.Contains(t, string(data), `texsubmit_staged_resources_total{kind="package"} 1`)
	assert.Contains(t, string(data), "texsubmit_auxiliary_files_removed_total 4")

	n, err := testutil.GatherAndCount(rec.Registry(), "texsubmit_stage_results_total")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
