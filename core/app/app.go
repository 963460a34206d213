// Package app sequences the analyze/accept pipelines: baseline resolution,
// download, extraction, diff, ledger filtering, and reporting.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/mod/semver"

	"github.com/emenda-labs/pyapi/core/breaks"
	"github.com/emenda-labs/pyapi/core/ledger"
	"github.com/emenda-labs/pyapi/drivers/python"
	"github.com/emenda-labs/pyapi/drivers/python/apidiff"
	"github.com/emenda-labs/pyapi/drivers/python/pymodel"
	"github.com/emenda-labs/pyapi/pkg/gitver"
	"github.com/emenda-labs/pyapi/pkg/pyproject"
)

// ErrReported signals a failure whose diagnostic was already written to the
// output; main maps it to exit status 1 without printing anything further.
var ErrReported = errors.New("failure already reported")

// LedgerRelPath is the fixed project-relative location of the acceptance
// ledger.
const LedgerRelPath = ".pyapi/pyapi.yml"

// VersionInfo is what the version resolver supplies: the distribution name,
// the working tree's version, and the most recently published version.
type VersionInfo struct {
	Project         string
	CurrentVersion  string
	LatestPublished string
}

// Versions resolves project identity and versions for a working tree.
type Versions interface {
	Resolve(dir string) (VersionInfo, error)
}

// BaselineFetcher downloads and unpacks a published distribution.
type BaselineFetcher interface {
	FetchBaseline(ctx context.Context, project, version string) (dir string, cleanup func(), err error)
}

// ModelExtractor builds an interface model from a source tree or an
// unpacked distribution.
type ModelExtractor interface {
	ExtractModel(ctx context.Context, dir, projectName string) (pymodel.InterfaceModel, error)
}

// App runs one command per invocation over a single project directory.
type App struct {
	ProjectDir string
	Out        io.Writer

	Versions  Versions
	Fetcher   BaselineFetcher
	Extractor ModelExtractor
}

// New wires an App with the real collaborators: pyproject+git versions and
// the Python package-index driver.
func New(projectDir string) *App {
	driver := python.NewDriver()
	return &App{
		ProjectDir: projectDir,
		Out:        os.Stdout,
		Versions:   gitVersions{},
		Fetcher:    driver,
		Extractor:  driver,
	}
}

func (a *App) ledgerPath() string {
	return filepath.Join(a.ProjectDir, filepath.FromSlash(LedgerRelPath))
}

// pipelineResult is the shared outcome of resolve -> fetch -> extract ->
// diff -> filter, reused by every command.
type pipelineResult struct {
	info      VersionInfo
	doc       *ledger.Document
	remaining []breaks.Break
	release   bool // baseline equals current: nothing unreleased to analyze
}

// run executes the pipeline up to the filtered break set. A fetch failure is
// reported here (with the override hint) and surfaces as ErrReported; other
// failures propagate as errors.
func (a *App) run(ctx context.Context) (*pipelineResult, error) {
	info, err := a.Versions.Resolve(a.ProjectDir)
	if err != nil {
		return nil, err
	}

	doc, err := ledger.Load(a.ledgerPath())
	if err != nil {
		return nil, err
	}

	baseline := info.LatestPublished
	if v, ok := doc.ResolveOverride(info.CurrentVersion); ok {
		baseline = v
	}

	if baseline == info.CurrentVersion {
		return &pipelineResult{info: info, doc: doc, release: true}, nil
	}

	dir, cleanup, err := a.Fetcher.FetchBaseline(ctx, info.Project, baseline)
	if err != nil {
		a.printFetchFailure(info.Project, baseline)
		return nil, ErrReported
	}
	defer cleanup()

	baselineModel, err := a.Extractor.ExtractModel(ctx, dir, info.Project)
	if err != nil {
		return nil, err
	}
	currentModel, err := a.Extractor.ExtractModel(ctx, a.ProjectDir, info.Project)
	if err != nil {
		return nil, err
	}

	found := apidiff.Diff(baselineModel, currentModel)
	remaining := doc.FilterAccepted(info.CurrentVersion, info.Project, found)

	return &pipelineResult{info: info, doc: doc, remaining: remaining}, nil
}

// Analyze reports every unaccepted break between the latest published
// release (or its override) and the working tree. Exit is nonzero when any
// remain.
func (a *App) Analyze(ctx context.Context) error {
	res, err := a.run(ctx)
	if err != nil {
		return err
	}

	if res.release {
		fmt.Fprintln(a.Out, msgReleaseSkip)
		return nil
	}
	if len(res.remaining) == 0 {
		fmt.Fprintln(a.Out, msgNoBreaks)
		return nil
	}

	a.printBreakReport(res.info.Project, res.remaining)
	return ErrReported
}

// AcceptBreak records one break as intentional. The code must exactly match
// a currently-detected, not-yet-accepted break; accepting an
// already-accepted code is an informational no-op with no file write.
func (a *App) AcceptBreak(ctx context.Context, code, justification string) error {
	res, err := a.run(ctx)
	if err != nil {
		return err
	}

	for _, b := range res.remaining {
		if b.Code != code {
			continue
		}
		res.doc.Accept(res.info.CurrentVersion, res.info.Project, code, justification)
		return res.doc.Save(a.ledgerPath())
	}

	if res.doc.IsAccepted(res.info.CurrentVersion, res.info.Project, code) {
		fmt.Fprintf(a.Out, "Break '%s' is already accepted\n", code)
		return nil
	}

	fmt.Fprintln(a.Out, errorColor.Sprintf("\nBreak '%s' is not a valid Python API break and cannot be accepted", code))
	return ErrReported
}

// AcceptAllBreaks records every currently-detected unaccepted break, in diff
// order, under a single justification. When nothing is left to accept, no
// file is written (the ledger is not even created).
func (a *App) AcceptAllBreaks(ctx context.Context, justification string) error {
	res, err := a.run(ctx)
	if err != nil {
		return err
	}

	if res.release || len(res.remaining) == 0 {
		fmt.Fprintln(a.Out, msgNoBreaksToAccept)
		return nil
	}

	for _, b := range res.remaining {
		res.doc.Accept(res.info.CurrentVersion, res.info.Project, b.Code, justification)
	}
	return res.doc.Save(a.ledgerPath())
}

// VersionOverride records a substitute baseline version for the working
// tree's current version. Last write wins.
func (a *App) VersionOverride(baselineVersion string) error {
	if !semver.IsValid("v" + baselineVersion) {
		return fmt.Errorf("invalid version %q: expected MAJOR.MINOR.PATCH", baselineVersion)
	}

	info, err := a.Versions.Resolve(a.ProjectDir)
	if err != nil {
		return err
	}
	doc, err := ledger.Load(a.ledgerPath())
	if err != nil {
		return err
	}

	doc.SetOverride(info.CurrentVersion, baselineVersion)
	return doc.Save(a.ledgerPath())
}

// gitVersions resolves the project name and current version from
// pyproject.toml and the latest published version from git tags.
type gitVersions struct{}

func (gitVersions) Resolve(dir string) (VersionInfo, error) {
	proj, err := pyproject.Load(dir)
	if err != nil {
		return VersionInfo{}, err
	}

	latest, err := gitver.LatestTag(dir)
	if err != nil {
		return VersionInfo{}, err
	}

	return VersionInfo{
		Project:         proj.Name,
		CurrentVersion:  proj.Version,
		LatestPublished: latest,
	}, nil
}
