package dealdoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-dealdoc/internal/assets"
	"github.com/alnah/go-dealdoc/internal/compose"
	"github.com/alnah/go-dealdoc/internal/dateutil"
	"github.com/alnah/go-dealdoc/internal/docx"
)

// Generator turns deals into facility-agreement documents.
// It is safe for concurrent use once NewGenerator returns.
type Generator struct {
	cfg        generatorConfig
	loader     assets.TemplateLoader
	skeleton   *compose.Skeleton
	dateFormat dateutil.Format
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
	serialize  func(*docx.Package) ([]byte, error)
}

// NewGenerator loads and parses the agreement skeleton once. Errors here are
// configuration errors (bad asset path, unknown template, malformed
// skeleton, bad date pattern) and are returned as-is, not as
// *GenerationError.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg:       generatorConfig{templateName: assets.DefaultTemplateName},
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		serialize: serializePackage,
	}

	for _, opt := range opts {
		opt(g)
	}

	loader, err := assets.NewResolver(g.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAssetPath, err)
	}
	g.loader = loader

	source, err := loader.LoadTemplate(g.cfg.templateName)
	if err != nil {
		return nil, fmt.Errorf("loading template %q: %w", g.cfg.templateName, err)
	}

	g.skeleton, err = compose.Parse(g.cfg.templateName, source)
	if err != nil {
		return nil, err
	}

	g.dateFormat, err = dateutil.Resolve(g.cfg.dateFormat)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Templates lists the skeleton names this generator can load.
func (g *Generator) Templates() ([]string, error) {
	return g.loader.Templates()
}

// Build runs composition, archive construction and serialization and
// returns the finished document without delivering it.
func (g *Generator) Build(ctx context.Context, deal DealInfo) (*Document, error) {
	id := g.newID()
	doc, stage, err := g.build(ctx, deal, id)
	if err != nil {
		return nil, g.fail(id, stage, deal, err)
	}
	g.logger.Debug("facility agreement built",
		zap.String("generation_id", id),
		zap.String("filename", doc.Filename),
		zap.Int("bytes", len(doc.Data)),
	)
	return doc, nil
}

// GenerateFacilityAgreement builds the agreement for deal and hands it to d
// exactly once. Nothing is delivered when an earlier stage fails. Every
// failure is logged once and returned as *GenerationError.
func (g *Generator) GenerateFacilityAgreement(ctx context.Context, deal DealInfo, d Deliverer) error {
	id := g.newID()
	if d == nil {
		return g.fail(id, StageDeliver, deal, ErrNilDeliverer)
	}

	doc, stage, err := g.build(ctx, deal, id)
	if err != nil {
		return g.fail(id, stage, deal, err)
	}

	if err := ctx.Err(); err != nil {
		return g.fail(id, StageDeliver, deal, err)
	}
	if err := g.deliver(ctx, d, doc); err != nil {
		return g.fail(id, StageDeliver, deal, err)
	}

	g.logger.Debug("facility agreement delivered",
		zap.String("generation_id", id),
		zap.String("filename", doc.Filename),
		zap.Int("bytes", len(doc.Data)),
	)
	return nil
}

// build runs the three in-memory stages. On failure it reports the stage
// that was running, including when that stage panicked.
func (g *Generator) build(ctx context.Context, deal DealInfo, id string) (doc *Document, stage Stage, err error) {
	stage = StageCompose
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	now := g.now()
	paragraphs, err := g.compose(ctx, deal, now)
	if err != nil {
		return nil, stage, err
	}

	stage = StageArchive
	if err := ctx.Err(); err != nil {
		return nil, stage, err
	}
	pkg, err := docx.NewMinimal(now, paragraphs)
	if err != nil {
		return nil, stage, err
	}

	stage = StageSerialize
	if err := ctx.Err(); err != nil {
		return nil, stage, err
	}
	data, err := g.serialize(pkg)
	if err != nil {
		return nil, stage, err
	}

	return &Document{
		Filename:     OutputFilename(deal.BorrowerName),
		MIMEType:     docx.MIMEType,
		Data:         data,
		Entries:      pkg.Names(),
		GenerationID: id,
	}, stage, nil
}

// compose renders the skeleton and spaces blocks with an empty paragraph.
func (g *Generator) compose(ctx context.Context, deal DealInfo, now time.Time) ([]string, error) {
	blocks, err := g.skeleton.Render(ctx, coverFields{
		BorrowerName:   deal.BorrowerName,
		FacilityAmount: deal.FacilityAmount,
		DealType:       deal.DealType,
		Jurisdiction:   deal.Jurisdiction,
		Date:           g.dateFormat.Format(now),
	})
	if err != nil {
		return nil, err
	}

	paragraphs := make([]string, 0, 2*len(blocks))
	for i, b := range blocks {
		if i > 0 {
			paragraphs = append(paragraphs, "")
		}
		paragraphs = append(paragraphs, b)
	}
	return paragraphs, nil
}

func (g *Generator) deliver(ctx context.Context, d Deliverer, doc *Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return d.Deliver(ctx, doc)
}

// fail logs err once and wraps it for the caller.
func (g *Generator) fail(id string, stage Stage, deal DealInfo, err error) error {
	fields := []zap.Field{
		zap.String("generation_id", id),
		zap.String("stage", string(stage)),
		zap.String("borrower", deal.BorrowerName),
		zap.Error(err),
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		g.logger.Warn("facility agreement generation aborted", fields...)
	} else {
		g.logger.Error("facility agreement generation failed", fields...)
	}
	return &GenerationError{Stage: stage, Cause: err}
}

func serializePackage(pkg *docx.Package) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := pkg.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
