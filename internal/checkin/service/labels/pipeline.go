// Package labels renders participant and asset labels and forwards them to
// the printer.
package labels

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"regdesk/internal/checkin/metrics"
	"regdesk/internal/checkin/models"
	"regdesk/internal/checkin/ports"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/audit"
	"regdesk/pkg/requestcontext"
)

type (
	Renderer       = ports.Renderer
	Printer        = ports.Printer
	AuditPublisher = ports.AuditPublisher
)

type Pipeline struct {
	renderer       Renderer
	printer        Printer
	outputDir      string
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Pipeline)

// WithPrinter enables physical printing. Without it labels are only rendered.
func WithPrinter(printer Printer) Option {
	return func(p *Pipeline) {
		p.printer = printer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(p *Pipeline) {
		p.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New creates the pipeline and ensures the output directory exists.
func New(renderer Renderer, outputDir string, opts ...Option) (*Pipeline, error) {
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if outputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	p := &Pipeline{
		renderer:  renderer,
		outputDir: outputDir,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// RenderAndDispatch renders one job and, when a printer is configured, prints it.
// A print failure is logged but never returned: the document already exists.
func (p *Pipeline) RenderAndDispatch(ctx context.Context, job models.LabelJob) (string, error) {
	path := filepath.Join(p.outputDir, job.FileName)

	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeRenderFailed, dErrors.MsgRenderFailed)
	}

	start := time.Now()
	err = p.renderer.Render(ctx, job.Template, path, payload)
	p.metrics.ObserveStage("render", time.Since(start))
	if err != nil {
		p.logger.ErrorContext(ctx, "label render failed",
			"request_id", requestcontext.RequestID(ctx),
			"job_id", job.ID,
			"template", job.Template,
			"path", path,
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeRenderFailed, dErrors.MsgRenderFailed)
	}
	p.metrics.IncrementLabels(job.Template)
	ports.LogAudit(ctx, p.logger, p.auditPublisher, audit.Event{
		Action:  audit.EventLabelRendered,
		Subject: job.FileName,
	})

	if p.printer != nil {
		p.print(ctx, job, path)
	}
	return path, nil
}

func (p *Pipeline) print(ctx context.Context, job models.LabelJob, path string) {
	start := time.Now()
	err := p.printer.Print(ctx, path)
	p.metrics.ObserveStage("print", time.Since(start))
	if err == nil {
		return
	}

	printErr := dErrors.Wrap(err, dErrors.CodePrintFailed, dErrors.MsgPrintFailed)
	p.metrics.IncrementPrintFailures()
	p.logger.WarnContext(ctx, "label print failed",
		"request_id", requestcontext.RequestID(ctx),
		"job_id", job.ID,
		"path", path,
		"error", printErr,
	)
	ports.LogAudit(ctx, p.logger, p.auditPublisher, audit.Event{
		Action:  audit.EventLabelPrintFailed,
		Subject: job.FileName,
		Reason:  err.Error(),
	})
}

// RenderParticipant renders (and prints) the participant's own label.
func (p *Pipeline) RenderParticipant(ctx context.Context, participant *models.Participant) (string, error) {
	return p.RenderAndDispatch(ctx, models.NewParticipantLabelJob(participant))
}

// RenderAssets renders one label per asset. Every asset is attempted even when
// another fails; the paths of the labels that were produced are returned in
// catalogue order together with the first error.
func (p *Pipeline) RenderAssets(ctx context.Context, team *models.Team, assets []models.Asset) ([]string, error) {
	paths := make([]string, len(assets))

	// No derived context: a failed asset must not cancel its siblings.
	var g errgroup.Group
	for i, asset := range assets {
		g.Go(func() error {
			path, err := p.RenderAndDispatch(ctx, models.NewAssetLabelJob(team, asset))
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	err := g.Wait()

	produced := make([]string, 0, len(paths))
	for _, path := range paths {
		if path != "" {
			produced = append(produced, path)
		}
	}
	return produced, err
}
