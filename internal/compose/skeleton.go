// Package compose turns a Markdown agreement skeleton into body paragraphs.
//
// The skeleton is parsed once with Goldmark to find its block structure:
// headings, paragraphs and list items each become one output paragraph.
// Each block's raw source text is then compiled as a text/template, so
// placeholders such as {{.BorrowerName}} are filled per document while the
// block layout stays fixed. Inline Markdown syntax is kept verbatim; the
// output is plain text.
package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Sentinel errors for skeleton parsing and rendering.
var (
	ErrEmptySkeleton   = errors.New("skeleton has no content blocks")
	ErrSkeletonParse   = errors.New("failed to parse skeleton")
	ErrSkeletonRender  = errors.New("failed to render skeleton")
	ErrNilSkeletonData = errors.New("skeleton data cannot be nil")
)

// bulletMarker prefixes items of unordered lists.
const bulletMarker = "• "

// block is one output paragraph of the skeleton.
type block struct {
	source string
	tmpl   *template.Template
}

// Skeleton is a parsed agreement template. It is immutable and safe for
// concurrent use.
type Skeleton struct {
	name   string
	blocks []block
}

// Parse builds a Skeleton from Markdown source. Template actions must not
// span blocks; an {{if}} opened in one paragraph and closed in another is a
// parse error.
func Parse(name, source string) (*Skeleton, error) {
	src := []byte(source)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	texts, err := collectBlocks(root, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSkeletonParse, name, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySkeleton, name)
	}

	s := &Skeleton{name: name, blocks: make([]block, len(texts))}
	for i, t := range texts {
		tmpl, err := template.New(fmt.Sprintf("%s#%d", name, i+1)).
			Option("missingkey=error").
			Parse(t)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSkeletonParse, err)
		}
		s.blocks[i] = block{source: t, tmpl: tmpl}
	}
	return s, nil
}

// Name returns the name the skeleton was parsed under.
func (s *Skeleton) Name() string {
	return s.name
}

// Len returns the number of paragraphs Render produces.
func (s *Skeleton) Len() int {
	return len(s.blocks)
}

// Render executes every block against data and returns one string per block.
// Values are inserted verbatim; escaping for the output format is the
// caller's job.
func (s *Skeleton) Render(ctx context.Context, data any) ([]string, error) {
	if data == nil {
		return nil, ErrNilSkeletonData
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]string, len(s.blocks))
	var buf bytes.Buffer
	for i, b := range s.blocks {
		buf.Reset()
		if err := b.tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSkeletonRender, err)
		}
		out[i] = buf.String()
	}
	return out, nil
}

// collectBlocks walks the document and returns the raw text of every
// text-bearing block in document order.
func collectBlocks(root ast.Node, src []byte) ([]string, error) {
	var texts []string
	var pendingMarker string

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.ListItem:
			pendingMarker = listMarker(node)
			return ast.WalkContinue, nil
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			texts = append(texts, pendingMarker+joinLines(n, src))
			pendingMarker = ""
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			for _, line := range rawLines(n, src) {
				texts = append(texts, strings.TrimRight(line, "\r\n"))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return texts, err
}

// listMarker returns "1. ", "2. ", ... for ordered lists and a bullet for
// unordered ones.
func listMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return bulletMarker
	}
	pos := list.Start
	for sib := item.PreviousSibling(); sib != nil; sib = sib.PreviousSibling() {
		pos++
	}
	return fmt.Sprintf("%d. ", pos)
}

// joinLines joins the block's source lines with single spaces, the way a
// Markdown soft line break renders.
func joinLines(n ast.Node, src []byte) string {
	lines := rawLines(n, src)
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

func rawLines(n ast.Node, src []byte) []string {
	segs := n.Lines()
	lines := make([]string, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		lines[i] = string(seg.Value(src))
	}
	return lines
}
