package dealdoc

import (
	"time"

	"go.uber.org/zap"
)

// DealInfo describes the deal an agreement is generated for. Fields are
// display strings; FacilityAmount is pre-formatted and never parsed.
// Empty fields are not rejected and render as empty text.
type DealInfo struct {
	BorrowerName   string `yaml:"borrowerName" json:"borrowerName"`
	FacilityAmount string `yaml:"facilityAmount" json:"facilityAmount"`
	DealType       string `yaml:"dealType" json:"dealType"`
	Jurisdiction   string `yaml:"jurisdiction" json:"jurisdiction"`
}

// Document is a generated agreement ready for delivery.
type Document struct {
	Filename     string   // e.g. Acme_Capital_Partners_Facility_Agreement_v1.docx
	MIMEType     string   // .docx media type
	Data         []byte   // ZIP archive
	Entries      []string // archive entry names, in order
	GenerationID string   // correlates logs for one call
}

// coverFields is the data the agreement skeleton is rendered with.
type coverFields struct {
	BorrowerName   string
	FacilityAmount string
	DealType       string
	Jurisdiction   string
	Date           string
}

// Option configures a Generator.
type Option func(*Generator)

// generatorConfig holds settings resolved by NewGenerator.
type generatorConfig struct {
	templateName string
	assetPath    string
	dateFormat   string
}

// WithClock sets the time source for the agreement date.
// Panics if now is nil (programmer error).
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("dealdoc: WithClock requires a non-nil clock")
	}
	return func(g *Generator) {
		g.now = now
	}
}

// WithLogger sets the logger failures are reported to. A nil logger
// disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger == nil {
			logger = zap.NewNop()
		}
		g.logger = logger
	}
}

// WithTemplate selects the agreement skeleton by name.
// The default is "facility-agreement".
func WithTemplate(name string) Option {
	return func(g *Generator) {
		g.cfg.templateName = name
	}
}

// WithAssetPath sets a directory whose templates/ subdirectory overrides
// the built-in skeletons.
func WithAssetPath(path string) Option {
	return func(g *Generator) {
		g.cfg.assetPath = path
	}
}

// WithDateFormat sets the agreement date pattern: a preset (iso, european,
// us, long) or tokens such as "D MMMM YYYY". The default is "long",
// which renders "January 5, 2025".
func WithDateFormat(format string) Option {
	return func(g *Generator) {
		g.cfg.dateFormat = format
	}
}
