package build

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/layout"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/manifest"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
	"git.home.luguber.info/inful/sitebuilder/internal/source"
)

// Build stages, used for logging, metrics and failure records.
const (
	StageLayouts  = "layouts"
	StageClear    = "clear"
	StageWalk     = "walk"
	StageClassify = "classify"
	StageRender   = "render"
	StageWrite    = "write"
	StageManifest = "manifest"
)

// Builder runs builds for one configuration.
type Builder struct {
	cfg        *config.Config
	classifier *content.Classifier
	recorder   metrics.Recorder
	newID      func() string
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		b.recorder = r
	}
}

// WithClassifier replaces the content classifier.
func WithClassifier(c *content.Classifier) Option {
	return func(b *Builder) {
		b.classifier = c
	}
}

// New creates a Builder for cfg.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.classifier == nil {
		b.classifier = content.NewClassifier()
	}
	return b
}

// Run executes a full build. The returned report is never nil. A non-nil
// error means the build was aborted; per-file failures are listed in the
// report and only returned as an error when fail-fast is enabled.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	report := &Report{BuildID: b.newID(), Start: time.Now()}
	ctx = observability.WithBuildID(ctx, report.BuildID)

	err := b.run(ctx, report)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		report.finish(StatusCancelled)
	case err != nil:
		report.finish(StatusFailed)
	case len(report.Failures) > 0:
		report.finish(StatusPartial)
	default:
		report.finish(StatusSuccess)
	}

	b.recorder.IncBuildOutcome(outcomeLabel(report.Status))
	b.recorder.ObserveBuildDuration(report.Duration)

	if err != nil {
		observability.ErrorContext(ctx, "Build aborted", logfields.Error(err))
		return report, err
	}
	observability.InfoContext(ctx, "Build finished",
		logfields.Count(report.Written),
		slog.Int("failed", len(report.Failures)),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	return report, nil
}

func (b *Builder) run(ctx context.Context, report *Report) error {
	// Stage 1: layouts
	stageStart := time.Now()
	renderer, err := layout.New(layout.Site{
		Title:    b.cfg.Site.Title,
		BaseURL:  b.cfg.Site.BaseURL,
		Language: b.cfg.Site.Language,
	}, b.cfg.Layouts.Directory)
	if err != nil {
		return err
	}
	b.recorder.ObserveStageDuration(StageLayouts, time.Since(stageStart))

	// Stage 2: clear output
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, StageClear)
	out := output.NewDirectory(b.cfg.Output.Directory)
	if b.cfg.Output.ShouldClean() {
		if err := out.Clear(); err != nil {
			return ferrors.OutputError("failed to clear output directory").
				WithCause(err).
				WithContext("path", out.Root()).
				Build()
		}
		observability.DebugContext(ctx, "Output directory cleared", logfields.Path(out.Root()))
	}
	b.recorder.ObserveStageDuration(StageClear, time.Since(stageStart))

	// Stage 3: walk sources
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, StageWalk)
	descriptors, err := source.NewDirectory(b.cfg.Source.Directory).Walk()
	if err != nil {
		category := ferrors.CategoryFileSystem
		if errors.Is(err, source.ErrRootNotFound) {
			category = ferrors.CategoryNotFound
		}
		return ferrors.WrapError(err, category, "failed to read source directory").
			Fatal().
			UserAction().
			WithContext("path", b.cfg.Source.Directory).
			Build()
	}
	report.Sources = len(descriptors)
	b.recorder.ObserveStageDuration(StageWalk, time.Since(stageStart))
	observability.InfoContext(ctx, "Source files discovered", logfields.Count(len(descriptors)))

	// Stage 4: classify
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, StageClassify)
	pages := make([]content.Page, 0, len(descriptors))
	sources := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := b.classifier.Classify(d)
		if err != nil {
			b.recorder.IncPageResult(content.KindOf(d.Route).String(), metrics.ResultFailed)
			if ferr := b.fileFailed(ctx, report, d.Route, StageClassify, err); ferr != nil {
				return ferr
			}
			continue
		}
		pages = append(pages, page)
		sources = append(sources, d.Route)
	}
	b.recorder.ObserveStageDuration(StageClassify, time.Since(stageStart))

	// Stage 5: render and write
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, StageWrite)
	idx := layout.BuildIndex(pages)
	var mf *manifest.BuildManifest
	if b.cfg.Build.Manifest != "" {
		mf = manifest.New(report.BuildID, manifest.Site{Title: b.cfg.Site.Title, BaseURL: b.cfg.Site.BaseURL}, report.Start)
	}

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := sources[i]
		if err := b.emit(renderer, out, idx, page); err != nil {
			b.recorder.IncPageResult(page.Kind.String(), metrics.ResultFailed)
			if ferr := b.fileFailed(ctx, report, src, stageFor(err), err); ferr != nil {
				return ferr
			}
			continue
		}

		b.recorder.IncPageResult(page.Kind.String(), metrics.ResultSuccess)
		report.Written++
		if page.IsTemplated() {
			report.Templated++
		} else {
			report.Opaque++
		}
		if mf != nil {
			if err := mf.Add(page, src); err != nil {
				observability.WarnContext(ctx, "Failed to fingerprint page", logfields.Source(src), logfields.Error(err))
			}
		}
		observability.DebugContext(ctx, "Wrote page",
			logfields.Source(src),
			logfields.Route(page.Route),
			logfields.Kind(page.Kind.String()))
	}
	b.recorder.ObserveStageDuration(StageWrite, time.Since(stageStart))

	// Stage 6: manifest
	if mf != nil {
		ctx = observability.WithStage(ctx, StageManifest)
		status := manifest.StatusSuccess
		if len(report.Failures) > 0 {
			status = manifest.StatusPartial
		}
		mf.Finish(status, time.Since(report.Start), len(report.Failures))
		hash, err := mf.Hash()
		if err != nil {
			return ferrors.InternalError("failed to hash build manifest").WithCause(err).Build()
		}
		report.ManifestHash = hash
		report.Unchanged = previousManifestHash(ctx, b.cfg.Build.Manifest) == hash

		if err := mf.Persist(b.cfg.Build.Manifest); err != nil {
			return ferrors.OutputError("failed to write build manifest").
				WithCause(err).
				WithContext("path", b.cfg.Build.Manifest).
				Build()
		}
		report.Manifest = b.cfg.Build.Manifest
		observability.InfoContext(ctx, "Build manifest written",
			logfields.Path(b.cfg.Build.Manifest),
			slog.String("hash", hash),
			slog.Bool("unchanged", report.Unchanged))
	}
	return nil
}

// previousManifestHash returns the hash of the manifest left by the last
// build, or "" when there is none or it cannot be read.
func previousManifestHash(ctx context.Context, path string) string {
	prev, err := manifest.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			observability.WarnContext(ctx, "Ignoring unreadable previous manifest", logfields.Path(path), logfields.Error(err))
		}
		return ""
	}
	hash, err := prev.Hash()
	if err != nil {
		return ""
	}
	return hash
}

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func stageFor(err error) string {
	var se *stageError
	if errors.As(err, &se) {
		return se.stage
	}
	return StageWrite
}

// emit renders a templated page, or passes an opaque page through, and writes
// the result.
func (b *Builder) emit(renderer *layout.Renderer, out *output.Directory, idx layout.Index, page content.Page) error {
	data := page.Bytes
	if page.IsTemplated() {
		rendered, err := renderer.Render(page, idx)
		if err != nil {
			return &stageError{stage: StageRender, err: err}
		}
		data = rendered
	}
	if _, err := out.Write(page.Route, data); err != nil {
		return &stageError{stage: StageWrite, err: ferrors.WrapError(err, ferrors.CategoryOutput, "failed to write page").
			WithContext("route", page.Route).
			Build()}
	}
	return nil
}

// fileFailed records a per-file failure. It returns a non-nil error when the
// build must stop.
func (b *Builder) fileFailed(ctx context.Context, report *Report, src, stage string, err error) error {
	var se *stageError
	if errors.As(err, &se) {
		err = se.err
	}
	if classified, ok := ferrors.AsClassified(err); ok {
		err = classified.WithContext("stage", stage)
	}
	report.fail(src, stage, err)
	observability.WarnContext(observability.WithSource(ctx, src), "Skipping file",
		slog.String("failed_stage", stage),
		logfields.Error(err))
	if b.cfg.Build.FailFast {
		return err
	}
	return nil
}

func outcomeLabel(s Status) metrics.BuildOutcomeLabel {
	switch s {
	case StatusSuccess:
		return metrics.BuildOutcomeSuccess
	case StatusPartial:
		return metrics.BuildOutcomePartial
	default:
		return metrics.BuildOutcomeFailed
	}
}
