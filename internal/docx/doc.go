// Package docx assembles minimal WordprocessingML (.docx) packages.
//
// A .docx file is a ZIP archive of XML parts. The smallest package a word
// processor will open holds four parts:
//
//	[Content_Types].xml            content-type manifest
//	_rels/.rels                    root relationships (package -> body)
//	word/document.xml              document body
//	word/_rels/document.xml.rels   body relationships (body -> resources)
//
// Parts are produced with encoding/xml so text content is always escaped,
// and the archive is written with klauspost/compress/zip. A Package is
// built fully in memory and validated before anything is written.
package docx
