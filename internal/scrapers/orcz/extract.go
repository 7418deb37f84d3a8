package orcz

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ExtractShiftCodes parses the code table of an orcz page. Either every row
// parses and resolves or no codes are returned at all.
func ExtractShiftCodes(doc *goquery.Document, game Game) ([]ShiftCode, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrMissingTable
	}
	body := table.Find("tbody").First()
	if body.Length() == 0 {
		return nil, ErrMissingTableBody
	}

	rows := body.Find("tr")

	var codes []ShiftCode
	// the first row is the column titles
	for i := 1; i < rows.Length(); i++ {
		code, err := parseShiftCode(rows.Eq(i), game)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		codes = append(codes, code)
	}

	err := resolveReferences(codes)
	if err != nil {
		return nil, err
	}
	return codes, nil
}
