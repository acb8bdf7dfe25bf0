package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Namespaces and relationship types used by the minimal package.
const (
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsWordMain      = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"

	contentTypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	contentTypeXML           = "application/xml"
	contentTypeDocumentMain  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// xmlHeader is the declaration Word writes on every part.
const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

type contentTypes struct {
	XMLName   xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []contentDefault  `xml:"Default"`
	Overrides []contentOverride `xml:"Override"`
}

type contentDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type relationships struct {
	XMLName       xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Relationships []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// The w: prefix is spelled out in the tags because encoding/xml cannot emit
// prefixed names from namespace URLs. Word requires the prefixed form.
type wordDocument struct {
	XMLName xml.Name `xml:"w:document"`
	NSW     string   `xml:"xmlns:w,attr"`
	Body    wordBody `xml:"w:body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"w:p"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"w:r"`
}

type wordRun struct {
	Text wordText `xml:"w:t"`
}

type wordText struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

// ContentTypesXML returns the static content-type manifest.
func ContentTypesXML() ([]byte, error) {
	return marshalPart(ContentTypesPart, contentTypes{
		Defaults: []contentDefault{
			{Extension: "rels", ContentType: contentTypeRelationships},
			{Extension: "xml", ContentType: contentTypeXML},
		},
		Overrides: []contentOverride{
			{PartName: "/" + DocumentPart, ContentType: contentTypeDocumentMain},
		},
	})
}

// RootRelationshipsXML returns the static package-level relationships,
// pointing the package at word/document.xml.
func RootRelationshipsXML() ([]byte, error) {
	return marshalPart(RootRelsPart, relationships{
		Relationships: []relationship{
			{ID: "rId1", Type: relTypeOfficeDocument, Target: DocumentPart},
		},
	})
}

// DocumentRelationshipsXML returns the static body relationships.
// The minimal body references no resources, so the list is empty.
func DocumentRelationshipsXML() ([]byte, error) {
	return marshalPart(DocumentRelsPart, relationships{})
}

// DocumentXML renders paragraphs as a w:document body. Each paragraph becomes
// one w:p holding a single plain-text run. An empty string yields an empty
// paragraph. Text is escaped and characters that are not legal in XML are
// replaced with U+FFFD.
func DocumentXML(paragraphs []string) ([]byte, error) {
	doc := wordDocument{NSW: nsWordMain}
	doc.Body.Paragraphs = make([]wordParagraph, len(paragraphs))
	for i, text := range paragraphs {
		if text == "" {
			continue
		}
		doc.Body.Paragraphs[i].Runs = []wordRun{{
			Text: wordText{Space: "preserve", Value: text},
		}}
	}
	return marshalPart(DocumentPart, doc)
}

func marshalPart(name string, v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMarshalPart, name, err)
	}
	return buf.Bytes(), nil
}
