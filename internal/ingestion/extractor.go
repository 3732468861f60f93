package ingestion

import (
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultHeaderRows is the number of leading table rows the rate source uses
// for captions and column titles.
const DefaultHeaderRows = 2

// RawRow holds the cell texts of one table row in document order.
type RawRow []string

// LocateFrameURL finds the first element matching selector and resolves its
// src attribute against baseHost. It reports false when the element or the
// attribute is missing.
func LocateFrameURL(doc *goquery.Document, selector, baseHost string) (string, bool) {
	src, ok := doc.Find(selector).First().Attr("src")
	src = strings.TrimSpace(src)
	if !ok || src == "" {
		return "", false
	}

	ref, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return ref.String(), true
	}

	base, err := url.Parse(baseHost)
	if err != nil || base.Host == "" {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// ExtractRows yields the cells of every row matching rowSelector, skipping the
// first headerRows rows by position. Iteration walks the parsed document and
// can be repeated on the same document.
func ExtractRows(doc *goquery.Document, rowSelector, cellSelector string, headerRows int) iter.Seq[RawRow] {
	if headerRows < 0 {
		headerRows = 0
	}

	return func(yield func(RawRow) bool) {
		rows := doc.Find(rowSelector)
		for i := headerRows; i < rows.Length(); i++ {
			cells := rows.Eq(i).Find(cellSelector)
			row := make(RawRow, 0, cells.Length())
			cells.Each(func(_ int, cell *goquery.Selection) {
				row = append(row, cell.Text())
			})
			if !yield(row) {
				return
			}
		}
	}
}
