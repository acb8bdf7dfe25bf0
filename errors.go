package dealdoc

import (
	"errors"
	"fmt"

	"github.com/alnah/go-dealdoc/internal/assets"
	"github.com/alnah/go-dealdoc/internal/compose"
	"github.com/alnah/go-dealdoc/internal/dateutil"
)

// ErrGenerationFailed is the one failure users see. Every *GenerationError
// matches it with errors.Is.
var ErrGenerationFailed = errors.New("document generation failed")

// Sentinel errors for generator construction and delivery.
var (
	ErrInvalidAssetPath  = errors.New("invalid asset path")
	ErrNilDeliverer      = errors.New("deliverer cannot be nil")
	ErrNilDocument       = errors.New("document cannot be nil")
	ErrUnsafeFilename    = errors.New("unsafe output filename")
	ErrTemplateNotFound  = assets.ErrTemplateNotFound
	ErrInvalidAssetName  = assets.ErrInvalidAssetName
	ErrInvalidTemplate   = compose.ErrSkeletonParse
	ErrInvalidDateFormat = dateutil.ErrInvalidDateFormat
)

// Stage identifies where generation failed.
type Stage string

// Generation stages, in execution order.
const (
	StageCompose   Stage = "compose"
	StageArchive   Stage = "archive"
	StageSerialize Stage = "serialize"
	StageDeliver   Stage = "deliver"
)

// GenerationError reports a failed generation. Cause keeps the original
// error for logs and errors.As; user-facing surfaces should show
// ErrGenerationFailed's message only.
type GenerationError struct {
	Stage Stage
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", ErrGenerationFailed, e.Stage)
	}
	return fmt.Sprintf("%s: %s: %v", ErrGenerationFailed, e.Stage, e.Cause)
}

// Unwrap exposes the cause.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports true for ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// StageOf returns the stage of a *GenerationError in err's chain.
func StageOf(err error) (Stage, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Stage, true
	}
	return "", false
}
