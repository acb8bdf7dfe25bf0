package dealdoc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alnah/go-dealdoc/internal/fileutil"
)

// Deliverer receives a finished document. The generator calls Deliver at
// most once per generation and only after the archive is complete.
type Deliverer interface {
	Deliver(ctx context.Context, doc *Document) error
}

// DelivererFunc adapts a function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, doc *Document) error

// Deliver calls f.
func (f DelivererFunc) Deliver(ctx context.Context, doc *Document) error {
	return f(ctx, doc)
}

const (
	defaultDirPerm  os.FileMode = 0o755
	defaultFilePerm os.FileMode = 0o644
)

// FileDelivery writes documents into Dir under their own filename. The
// directory is created if needed and files are replaced atomically.
type FileDelivery struct {
	Dir  string      // empty means the working directory
	Perm os.FileMode // zero means 0644
}

// Path returns where doc will be written.
func (f FileDelivery) Path(doc *Document) string {
	return filepath.Join(f.Dir, doc.Filename)
}

// Deliver writes doc to disk.
func (f FileDelivery) Deliver(ctx context.Context, doc *Document) error {
	if doc == nil {
		return ErrNilDocument
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.ValidateBaseName(doc.Filename); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsafeFilename, err)
	}

	if f.Dir != "" {
		if err := os.MkdirAll(f.Dir, defaultDirPerm); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	perm := f.Perm
	if perm == 0 {
		perm = defaultFilePerm
	}
	return fileutil.WriteFileAtomic(f.Path(doc), doc.Data, perm)
}

// WriterDelivery streams the archive bytes to W.
type WriterDelivery struct {
	W io.Writer
}

// Deliver writes doc.Data to W.
func (w WriterDelivery) Deliver(_ context.Context, doc *Document) error {
	if doc == nil {
		return ErrNilDocument
	}
	if _, err := w.W.Write(doc.Data); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

var (
	_ Deliverer = FileDelivery{}
	_ Deliverer = WriterDelivery{}
	_ Deliverer = DelivererFunc(nil)
)
