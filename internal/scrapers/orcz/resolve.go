package orcz

import (
	"fmt"
	"strings"
)

const (
	sameCodeAsPrefix  = "Same code as "
	seeKeyAbovePrefix = "See Key Above"
)

// resolveReferences replaces the placeholder text some cells have in place of a
// code with the code they point to. It walks the table front to back so a "See
// Key Above" chain copies an already resolved code.
//
// "Same code as <date>" looks through the whole table, not just the rows before
// it, and takes the first row issued on that date.
func resolveReferences(codes []ShiftCode) error {
	for i := range codes {
		for _, p := range Platforms {
			text := codes[i].Codes[p].Text

			switch {
			case strings.HasPrefix(text, sameCodeAsPrefix):
				dateText := strings.TrimPrefix(text, sameCodeAsPrefix)
				resolved, err := lookupByIssueDate(codes, dateText, p)
				if err != nil {
					return fmt.Errorf("row %d %s: %w", i+1, p, err)
				}
				codes[i].Codes[p].Text = resolved
			case strings.HasPrefix(text, seeKeyAbovePrefix):
				if i == 0 {
					return fmt.Errorf("row %d %s: %w", i+1, p, ErrNoPreviousRow)
				}
				codes[i].Codes[p].Text = codes[i-1].Codes[p].Text
			}
		}
	}
	return nil
}

func lookupByIssueDate(codes []ShiftCode, dateText string, p Platform) (string, error) {
	// numeric is a superset of the written dialect, placeholders are written
	// either way regardless of the game
	date, err := ParseIssueDate(dateText, DialectNumeric)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrUnresolvedReference, dateText, err)
	}
	if !date.Known() {
		return "", fmt.Errorf("%w: %q is not a date", ErrUnresolvedReference, dateText)
	}

	for _, candidate := range codes {
		if candidate.IssueDate != date {
			continue
		}
		text := candidate.Codes[p].Text
		// a forward reference to a row that is itself unresolved
		if isPlaceholder(text) {
			return "", fmt.Errorf("%w: code issued on %s is itself a reference", ErrUnresolvedReference, date)
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: no code issued on %s", ErrUnresolvedReference, date)
}

func isPlaceholder(text string) bool {
	return strings.HasPrefix(text, sameCodeAsPrefix) || strings.HasPrefix(text, seeKeyAbovePrefix)
}
