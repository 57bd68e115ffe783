package document

import (
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"github.com/askdoc/askdoc/internal/errkind"
)

// Page is the plain text of a single PDF page. Number is 1-based, matching
// what a reader sees in a PDF viewer.
type Page struct {
	Text   string
	Number int
	Source string
}

// ExtractPages reads the PDF at path and returns one Page per document page,
// in order. Pages whose text cannot be decoded come back with empty Text
// rather than failing the whole document.
func ExtractPages(path string) (pages []Page, err error) {
	// The pdf library panics on some malformed files instead of returning
	// an error.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = errkind.Errorf(errkind.Extraction, "parsing %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, errkind.Errorf(errkind.Extraction, "opening %s: %w", path, err)
	}
	defer f.Close()

	source := filepath.Base(path)
	total := reader.NumPage()
	pages = make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i, Source: source})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, Page{Text: text, Number: i, Source: source})
	}

	if total == 0 {
		return nil, errkind.Errorf(errkind.Extraction, "parsing %s: document has no pages", path)
	}
	return pages, nil
}

// TotalChars sums the extracted text length across pages. Used for startup
// diagnostics.
func TotalChars(pages []Page) int {
	var n int
	for _, p := range pages {
		n += len(p.Text)
	}
	return n
}
