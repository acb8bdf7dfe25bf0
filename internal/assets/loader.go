package assets

// DefaultTemplateName is the built-in facility agreement skeleton.
const DefaultTemplateName = "facility-agreement"

// templateExt is appended to template names on lookup.
const templateExt = ".md"

// TemplateLoader loads Markdown agreement skeletons by name.
type TemplateLoader interface {
	// LoadTemplate returns the template source for name (without extension).
	// Returns ErrTemplateNotFound if it does not exist and
	// ErrInvalidAssetName if the name is unsafe.
	LoadTemplate(name string) (string, error)

	// Templates lists the names this loader can serve, sorted.
	Templates() ([]string, error)
}
