package docx

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
)

// MIMEType is the media type of a .docx file.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Extension is the file extension of a .docx file, including the dot.
const Extension = ".docx"

// Part names of the minimal package, in archive order.
const (
	ContentTypesPart = "[Content_Types].xml"
	RootRelsPart     = "_rels/.rels"
	DocumentPart     = "word/document.xml"
	DocumentRelsPart = "word/_rels/document.xml.rels"
)

// RequiredParts lists the parts a package must hold to open in a word
// processor, in the order they are written.
var RequiredParts = []string{
	ContentTypesPart,
	RootRelsPart,
	DocumentPart,
	DocumentRelsPart,
}

// Sentinel errors for package operations.
var (
	ErrMarshalPart   = errors.New("failed to marshal part")
	ErrEmptyPartName = errors.New("part name cannot be empty")
	ErrEmptyPart     = errors.New("part content cannot be empty")
	ErrDuplicatePart = errors.New("duplicate part")
	ErrMissingPart   = errors.New("package missing required part")
	ErrWriteArchive  = errors.New("failed to write archive")
)

// Part is one named entry of a package.
type Part struct {
	Name string
	Data []byte
}

// Package is an in-memory set of parts. It is not safe for concurrent use;
// callers build one Package per document.
type Package struct {
	modified time.Time
	parts    []Part
	index    map[string]int
}

// NewPackage creates an empty package. modified is stamped on every archive
// entry, which makes output reproducible for a fixed time.
func NewPackage(modified time.Time) *Package {
	return &Package{
		modified: modified,
		index:    make(map[string]int),
	}
}

// NewMinimal builds the four-part package around the given body paragraphs.
func NewMinimal(modified time.Time, paragraphs []string) (*Package, error) {
	body, err := DocumentXML(paragraphs)
	if err != nil {
		return nil, err
	}

	builders := []struct {
		name  string
		build func() ([]byte, error)
	}{
		{ContentTypesPart, ContentTypesXML},
		{RootRelsPart, RootRelationshipsXML},
		{DocumentPart, func() ([]byte, error) { return body, nil }},
		{DocumentRelsPart, DocumentRelationshipsXML},
	}

	pkg := NewPackage(modified)
	for _, b := range builders {
		data, err := b.build()
		if err != nil {
			return nil, err
		}
		if err := pkg.Add(b.name, data); err != nil {
			return nil, err
		}
	}
	return pkg, nil
}

// Add appends a part. Names must be unique and content non-empty.
func (p *Package) Add(name string, data []byte) error {
	if name == "" {
		return ErrEmptyPartName
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyPart, name)
	}
	if _, ok := p.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePart, name)
	}
	p.index[name] = len(p.parts)
	p.parts = append(p.parts, Part{Name: name, Data: data})
	return nil
}

// Part returns the content of the named part.
func (p *Package) Part(name string) ([]byte, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.parts[i].Data, true
}

// Names returns part names in archive order.
func (p *Package) Names() []string {
	names := make([]string, len(p.parts))
	for i, part := range p.parts {
		names[i] = part.Name
	}
	return names
}

// Validate reports the first required part that is absent.
func (p *Package) Validate() error {
	for _, name := range RequiredParts {
		if _, ok := p.index[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingPart, name)
		}
	}
	return nil
}

// WriteTo validates the package and writes it as a deflated ZIP archive.
// On error, w may have received a truncated archive; callers that need
// all-or-nothing output write into a buffer first.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	for _, part := range p.parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     part.Name,
			Method:   zip.Deflate,
			Modified: p.modified,
		})
		if err != nil {
			return cw.n, fmt.Errorf("%w: creating %s: %v", ErrWriteArchive, part.Name, err)
		}
		if _, err := fw.Write(part.Data); err != nil {
			return cw.n, fmt.Errorf("%w: writing %s: %v", ErrWriteArchive, part.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("%w: %v", ErrWriteArchive, err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
