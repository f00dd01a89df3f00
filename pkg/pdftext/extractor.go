package pdftext

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

var ErrUnreadable = errors.New("pdf could not be read")

// Extractor reads the plain text out of PDF documents on disk.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// ExtractText returns the text of every page of the document at path,
// joined by JoinPages. A document with no extractable text yields "".
func (e *Extractor) ExtractText(path string) (text string, err error) {
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnreadable, i, err)
		}
		pages = append(pages, t)
	}
	return JoinPages(pages), nil
}

// JoinPages trims each page, drops pages left empty and joins the rest
// with a single space. The parser opens every text object with a line
// break, so leading whitespace is trimmed as well as trailing.
func JoinPages(pages []string) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		p = strings.TrimFunc(p, unicode.IsSpace)
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}
