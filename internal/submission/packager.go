package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/texsubmit/internal/archive"
	"git.home.luguber.info/inful/texsubmit/internal/compile"
	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
	"git.home.luguber.info/inful/texsubmit/internal/git"
	"git.home.luguber.info/inful/texsubmit/internal/library"
	"git.home.luguber.info/inful/texsubmit/internal/logfields"
	"git.home.luguber.info/inful/texsubmit/internal/metrics"
	"git.home.luguber.info/inful/texsubmit/internal/pdftext"
	"git.home.luguber.info/inful/texsubmit/internal/policy"
	"git.home.luguber.info/inful/texsubmit/internal/resolver"
	"git.home.luguber.info/inful/texsubmit/internal/scanner"
	"git.home.luguber.info/inful/texsubmit/internal/tree"
	"git.home.luguber.info/inful/texsubmit/internal/workspace"
)

// Options describe one packaging run.
type Options struct {
	// Source is the LaTeX tree to package. A trailing separator is ignored.
	Source string
	// Target is the archive path; ".zip" is appended unless present.
	Target string

	Layout              library.Layout
	Resolver            resolver.Options
	Markers             scanner.MarkerSet
	AuxiliaryExtensions []string
	Copy                tree.CopyOptions

	// Compile runs the compiler over every root document before scanning.
	Compile bool

	// WorkspaceBase is the parent of the scratch workspace (system temp dir when empty).
	WorkspaceBase string
	// KeepWorkspace leaves the scratch workspace in place for inspection.
	KeepWorkspace bool
}

// Summary describes a completed run.
type Summary struct {
	Archive         string
	Source          *git.SourceState // nil when the source is not under git
	Documents       int
	Staged          []resolver.StagedResource
	Removed         []string
	Compiled        int
	CompileFailures []compile.Failure
	Report          *scanner.Report
}

// Packager runs the packaging pipeline.
type Packager struct {
	gate      policy.Gate
	compiler  compile.Compiler
	extractor scanner.PageExtractor
	recorder  metrics.Recorder
	out       io.Writer
}

// NewPackager creates a Packager gating recoverable conditions through gate.
func NewPackager(gate policy.Gate) *Packager {
	return &Packager{
		gate:      gate,
		compiler:  compile.NoopCompiler{},
		extractor: pdftext.New(),
		recorder:  metrics.NoopRecorder{},
		out:       os.Stdout,
	}
}

// WithCompiler sets the compiler used when Options.Compile is set.
func (p *Packager) WithCompiler(c compile.Compiler) *Packager {
	if c != nil {
		p.compiler = c
	}
	return p
}

// WithExtractor sets the page text extractor used by the scan stage.
func (p *Packager) WithExtractor(e scanner.PageExtractor) *Packager {
	if e != nil {
		p.extractor = e
	}
	return p
}

// WithRecorder sets the metrics recorder.
func (p *Packager) WithRecorder(r metrics.Recorder) *Packager {
	if r != nil {
		p.recorder = r
	}
	return p
}

// WithOutput sets where user-facing progress lines are written.
func (p *Packager) WithOutput(w io.Writer) *Packager {
	if w != nil {
		p.out = w
	}
	return p
}

// runState is shared by the stages of one run.
type runState struct {
	opts     Options
	source   string // absolute source directory
	name     string // top-level archive entry
	out      string // archive path
	workDir  string // copy of the source inside the workspace
	resolver *resolver.Resolver
	scanner  *scanner.Scanner
	libs     *library.Set
	recorder metrics.Recorder
	summary  *Summary
	warned   bool
}

// Run packages opts.Source into the archive for opts.Target.
func (p *Packager) Run(ctx context.Context, opts Options) (summary *Summary, err error) {
	start := time.Now()
	rs := &runState{opts: opts, recorder: p.recorder}
	defer func() {
		p.recorder.ObserveRunDuration(time.Since(start))
		p.recorder.IncRunOutcome(outcomeFor(err, rs.warned))
	}()

	if err := p.prepare(rs); err != nil {
		return nil, err
	}

	rs.summary.Source = inspectSource(rs.source)

	ws := workspace.NewManager(opts.WorkspaceBase).Keep(opts.KeepWorkspace)
	if err := ws.Create(); err != nil {
		return nil, serrors.WorkspaceError("create", err)
	}
	defer func() {
		if cerr := ws.Cleanup(); cerr != nil {
			slog.Warn("Failed to remove workspace", logfields.Path(ws.GetPath()), logfields.Error(cerr))
		}
	}()
	rs.workDir, err = ws.Join(rs.name)
	if err != nil {
		return nil, serrors.WorkspaceError("join", err)
	}

	stages := []StageDef{
		{StageCopyTree, stageCopyTree},
		{StageRemoveAuxiliary, stageRemoveAuxiliary},
		{StageLoadLibrary, stageLoadLibrary},
		{StageStagePackages, stageStagePackages},
		{StageStageBibliographies, stageStageBibliographies},
	}
	if opts.Compile {
		stages = append(stages, StageDef{StageCompile, p.stageCompile})
	}
	stages = append(stages,
		StageDef{StageScan, p.stageScan},
		StageDef{StageArchive, stageArchive},
	)

	if err := runStages(ctx, rs, p.recorder, stages); err != nil {
		return nil, err
	}

	_, _ = fmt.Fprintf(p.out, "Successfully created %s\n", rs.out)
	return rs.summary, nil
}

// prepare validates inputs and fails with AlreadyExists before anything is
// written.
func (p *Packager) prepare(rs *runState) error {
	if rs.opts.Source == "" {
		return serrors.ValidationFailed("source", "must not be empty")
	}
	if rs.opts.Target == "" {
		return serrors.ValidationFailed("target", "must not be empty")
	}

	rs.out = archive.ResolveTarget(rs.opts.Target)
	if err := archive.CheckTarget(rs.out); err != nil {
		return err
	}

	trimmed := strings.TrimRight(rs.opts.Source, string(os.PathSeparator)+"/")
	if trimmed == "" {
		trimmed = string(os.PathSeparator)
	}
	source, err := filepath.Abs(trimmed)
	if err != nil {
		return serrors.FileSystemError("resolve source", err)
	}
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return serrors.ValidationFailed("source", source+" does not exist")
		}
		return serrors.FileSystemError("stat source", err)
	}
	if !info.IsDir() {
		return serrors.ValidationFailed("source", source+" is not a directory")
	}
	rs.source = source
	rs.name = filepath.Base(source)
	if rs.name == string(os.PathSeparator) || rs.name == "." {
		return serrors.ValidationFailed("source", "cannot package the file system root")
	}

	r, err := resolver.New(rs.opts.Resolver)
	if err != nil {
		return serrors.ValidationFailed("matching", err.Error())
	}
	rs.resolver = r

	markers := rs.opts.Markers
	if len(markers) == 0 {
		markers = scanner.DefaultMarkers()
	}
	rs.scanner = scanner.New(markers, p.extractor)
	rs.summary = &Summary{Archive: rs.out}
	return nil
}

// inspectSource logs the git state of the source. It never fails the run.
func inspectSource(source string) *git.SourceState {
	state, err := git.Inspect(source)
	if err != nil {
		if !errors.Is(err, git.ErrNotRepository) {
			slog.Debug("Could not inspect source repository", logfields.Path(source), logfields.Error(err))
		}
		return nil
	}
	slog.Info("Packaging source", logfields.Path(source), logfields.Commit(state.ShortCommit()), slog.String("branch", state.Branch))
	if state.Dirty() {
		slog.Warn("Source has uncommitted changes; the archive will not match the commit",
			logfields.Path(source), logfields.Count(len(state.Changed)))
	}
	return state
}

func stageCopyTree(_ context.Context, rs *runState) error {
	if err := tree.Copy(rs.source, rs.workDir, rs.opts.Copy); err != nil {
		return serrors.FileSystemError("copy source tree", err)
	}
	return nil
}

func stageRemoveAuxiliary(ctx context.Context, rs *runState) error {
	removed, err := tree.RemoveAuxiliary(ctx, rs.workDir, rs.auxiliaryExtensions())
	rs.summary.Removed = append(rs.summary.Removed, removed...)
	rs.recorder.AddRemovedFiles(len(removed))
	if err != nil {
		return serrors.FileSystemError("remove auxiliary files", err)
	}
	slog.Debug("Removed auxiliary files", logfields.Count(len(removed)))
	return nil
}

func (rs *runState) auxiliaryExtensions() []string {
	if rs.opts.AuxiliaryExtensions == nil {
		return tree.DefaultAuxiliaryExtensions
	}
	return rs.opts.AuxiliaryExtensions
}

func stageLoadLibrary(ctx context.Context, rs *runState) error {
	libs, err := library.Load(ctx, rs.opts.Layout)
	if err != nil {
		return serrors.FileSystemError("load library", err)
	}
	rs.libs = libs
	return nil
}

func stageStagePackages(ctx context.Context, rs *runState) error {
	res, err := rs.resolver.StagePackages(ctx, rs.workDir, rs.libs.Packages)
	return rs.collect(res, err, library.KindPackage)
}

func stageStageBibliographies(ctx context.Context, rs *runState) error {
	res, err := rs.resolver.StageBibliographies(ctx, rs.workDir, rs.libs.Bibliographies)
	return rs.collect(res, err, library.KindBibliography)
}

// collect records a resolver pass. Any collected failure aborts the run.
func (rs *runState) collect(res *resolver.Result, err error, kind library.Kind) error {
	if res != nil {
		rs.summary.Documents = res.Documents
		rs.summary.Staged = append(rs.summary.Staged, res.Staged...)
		rs.recorder.SetDocuments(res.Documents)
		rs.recorder.AddStagedResources(string(kind), len(res.Staged))
		slog.Info("Staged library resources",
			slog.String("kind", string(kind)),
			logfields.Count(len(res.Staged)),
			slog.Int("already_present", len(res.Present)))
	}
	if err != nil {
		return fmt.Errorf("stage %s resources: %w", kind, err)
	}
	return nil
}

func (p *Packager) stageCompile(ctx context.Context, rs *runState) error {
	roots, readErrs, err := rs.resolver.Roots(ctx, rs.workDir)
	if err != nil {
		return serrors.FileSystemError("discover root documents", err)
	}
	if len(readErrs) > 0 {
		return fmt.Errorf("discover root documents: %w", errors.Join(readErrs...))
	}

	failures, err := compile.All(ctx, p.compiler, roots)
	if err != nil {
		return err
	}
	rs.summary.Compiled = len(roots) - len(failures)
	rs.summary.CompileFailures = failures

	// Compilation leaves auxiliary files behind.
	if err := stageRemoveAuxiliary(ctx, rs); err != nil {
		return err
	}

	if len(failures) == 0 {
		return nil
	}
	details := make([]string, 0, len(failures))
	for _, f := range failures {
		details = append(details, fmt.Sprintf("Compilation of %s failed: %v", rs.label(f.Document), f.Err))
	}
	rs.warned = true
	return p.gate.Continue(ctx, serrors.CompilationFailed(len(failures), compile.Join(failures)), details)
}

func (p *Packager) stageScan(ctx context.Context, rs *runState) error {
	artifacts, err := scanner.DiscoverArtifacts(ctx, rs.workDir, rs.source)
	if err != nil {
		return serrors.FileSystemError("discover rendered outputs", err)
	}

	report, err := rs.scanner.Scan(ctx, artifacts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// Unreadable outputs are reported but do not block the submission.
		slog.Warn("Some rendered outputs could not be scanned", logfields.Error(err))
	}
	rs.summary.Report = report
	slog.Info("Scanned rendered outputs", logfields.Count(report.Scanned), slog.Int("defective", len(report.Files)))

	if report.Empty() {
		return nil
	}
	p.recorder.AddDefectFiles(len(report.Files))
	rs.warned = true
	return p.gate.Continue(ctx, serrors.DefectsFound(len(report.Files)), report.Lines())
}

func stageArchive(ctx context.Context, rs *runState) error {
	return archive.Create(ctx, rs.out, rs.workDir, rs.name)
}

// label rebases a workspace path onto the source tree for messages.
func (rs *runState) label(p string) string {
	if rel, err := filepath.Rel(rs.workDir, p); err == nil {
		return filepath.Join(rs.source, rel)
	}
	return p
}
