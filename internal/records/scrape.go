package records

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TableSelector locates the collaborator-rendered methodology table.
const TableSelector = "#tabla-metodologias tbody tr"

// row cells are mapped positionally: name, analyte, matrix, technique,
// detection limit, quantification limit, accreditation badge. The category
// travels in a data attribute on the row.
const minRowCells = 4

// ScrapeTable extracts records from a rendered HTML methodology table. Rows
// without a recognizable name/analyte cell are skipped.
func ScrapeTable(page io.Reader) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse table page: %w", err)
	}

	var recs []Record
	doc.Find(TableSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minRowCells {
			return
		}

		cell := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		r := Record{
			Name:                cell(0),
			Analyte:             cell(1),
			Matrix:              cell(2),
			Technique:           cell(3),
			DetectionLimit:      cell(4),
			QuantificationLimit: cell(5),
			Accredited:          AccreditedText(cell(6)),
			Category:            strings.TrimSpace(row.AttrOr("data-categoria", "")),
		}
		r.sanitize()
		if r.empty() {
			return
		}
		recs = append(recs, r)
	})

	if len(recs) == 0 {
		return nil, fmt.Errorf("no methodology rows found under %q", TableSelector)
	}
	return recs, nil
}
