package mermaid

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gogentic-mermaid/pkg/metricskey"
	"github.com/effective-security/gogentic-mermaid/store"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gogentic-mermaid", "mermaid")

// Renderer renders Mermaid diagrams with the mmdc CLI.
// It is safe for concurrent use: each call writes a uniquely named artifact.
type Renderer struct {
	cfg    *Config
	store  store.ArtifactStore
	runner Runner
	newID  func() string
}

// Option configures the Renderer
type Option func(*Renderer)

// WithRunner sets the subprocess runner
func WithRunner(runner Runner) Option {
	return func(r *Renderer) {
		r.runner = runner
	}
}

// WithStore sets the artifact store,
// by default the local disk under Config.StorageRoot is used
func WithStore(s store.ArtifactStore) Option {
	return func(r *Renderer) {
		r.store = s
	}
}

// New returns a Renderer
func New(cfg *Config, opts ...Option) (*Renderer, error) {
	c := cfg.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		cfg:    c,
		runner: NewExecRunner(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = store.NewLocalStore(c.StorageRoot, c.PublicPrefix)
	}
	return r, nil
}

// Config returns the effective config
func (r *Renderer) Config() Config {
	return *r.cfg
}

// Executable returns the renderer path to be launched
func (r *Renderer) Executable() string {
	if r.cfg.Executable != "" {
		return r.cfg.Executable
	}
	return FindExecutable(r.cfg.Candidates, DefaultExecutable)
}

// SearchDirs returns the dirs to be added to the subprocess PATH
func (r *Renderer) SearchDirs() []string {
	dirs := append([]string{}, r.cfg.SearchDirs...)
	if dir := executableDir(); dir != "" {
		dirs = append(dirs, dir)
	}
	return ExistingDirs(dirs)
}

// Render renders the diagram and returns the public path of the PNG image.
// On failure the returned error is *Error.
func (r *Renderer) Render(ctx context.Context, req *Request) (publicPath string, err error) {
	started := time.Now()
	theme := DefaultTheme
	if req != nil {
		theme = NormalizeTheme(req.Theme)
	}

	defer func() {
		metricskey.PerfMermaidRender.MeasureSince(started, theme)
		if err != nil {
			metricskey.StatsMermaidRendersFailed.IncrCounter(1, KindOf(err).String())
			logger.ContextKV(ctx, xlog.WARNING,
				"status", "render_failed",
				"reason", KindOf(err).String(),
				"err", err.Error(),
			)
		} else {
			metricskey.StatsMermaidRendersSucceeded.IncrCounter(1, theme)
		}
	}()

	if req == nil || strings.TrimSpace(req.Syntax) == "" {
		return "", newError(KindInvalidInput, "mermaid syntax is required")
	}

	width := ClampWidth(values.NumbersCoalesce(req.Width, r.cfg.DefaultWidth), r.cfg.MinDimension, r.cfg.MaxDimension)

	if err = r.store.EnsureDir(r.cfg.OutputDir); err != nil {
		return "", wrapError(KindStorage, err, "failed to create output folder: "+err.Error())
	}

	id := r.newID()
	relPath := path.Join(r.cfg.OutputDir, id+".png")
	output := r.store.Path(relPath)

	input, release, err := r.writeInput(req.Syntax)
	if err != nil {
		return "", wrapError(KindStorage, err, "failed to write diagram input: "+err.Error())
	}
	defer release()

	scale := ScaleFor(req.Syntax)
	cmd := &Command{
		Path: r.Executable(),
		Args: BuildArgs(input, output, width, scale, theme),
		Env:  WithSearchPath(os.Environ(), RepairSearchPath(os.Getenv("PATH"), r.SearchDirs())),
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "render_start",
		"id", id,
		"executable", cmd.Path,
		"width", width,
		"scale", scale,
		"theme", theme,
	)

	timeout := r.cfg.Timeout()
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := r.runner.Run(runCtx, cmd)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", wrapError(KindExecution, err, fmt.Sprintf("mermaid renderer timed out after %s", timeout))
		}
		return "", wrapError(KindExecution, err, "failed to run mermaid renderer: "+err.Error())
	}
	if res.ExitCode != 0 {
		msg := values.StringsCoalesce(
			strings.TrimSpace(string(res.Stderr)),
			strings.TrimSpace(string(res.Stdout)),
			fmt.Sprintf("mermaid renderer exited with code %d", res.ExitCode),
		)
		return "", newError(KindExecution, msg)
	}

	size, err := r.store.Size(relPath)
	if err != nil || size == 0 {
		return "", wrapError(KindEmptyOutput, err, "mermaid renderer produced no output")
	}

	publicPath = r.store.PublicURL(relPath)
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "rendered",
		"id", id,
		"size", size,
		"path", publicPath,
		"elapsed", time.Since(started).String(),
	)
	return publicPath, nil
}

// writeInput writes syntax to a new temporary file,
// the returned release removes it and must be called on all paths.
func (r *Renderer) writeInput(syntax string) (string, func(), error) {
	f, err := os.CreateTemp(r.cfg.TempDir, "mmd_*.mmd")
	if err != nil {
		return "", nil, errors.WithStack(err)
	}
	name := f.Name()
	release := func() {
		_ = os.Remove(name)
	}

	_, err = f.WriteString(syntax)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		release()
		return "", nil, errors.WithStack(err)
	}
	return name, release, nil
}
