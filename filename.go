package dealdoc

import (
	"strings"
	"unicode"

	"github.com/alnah/go-dealdoc/internal/docx"
)

// FilenameSuffix follows the borrower stem in every output filename.
const FilenameSuffix = "_Facility_Agreement_v1"

// OutputFilename derives the agreement filename from the borrower name:
// every run of whitespace becomes one underscore, then FilenameSuffix and
// the .docx extension are appended. Leading and trailing runs are kept, so
// " Acme " gives "_Acme__Facility_Agreement_v1.docx" and "" gives
// "_Facility_Agreement_v1.docx". No other characters are altered.
func OutputFilename(borrowerName string) string {
	var b strings.Builder
	b.Grow(len(borrowerName) + len(FilenameSuffix) + len(docx.Extension))

	inSpace := false
	for _, r := range borrowerName {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}

	b.WriteString(FilenameSuffix)
	b.WriteString(docx.Extension)
	return b.String()
}
