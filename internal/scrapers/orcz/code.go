package orcz

import (
	"fmt"
	"shift-redeemer/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type CodeState int

const (
	CodeValid CodeState = iota
	CodeExpired
)

func (s CodeState) String() string {
	switch s {
	case CodeValid:
		return "valid"
	case CodeExpired:
		return "expired"
	}
	return fmt.Sprintf("CodeState(%d)", int(s))
}

// Code is a single SHiFT code as listed in a table cell. Codes compare equal
// when both their state and their text match.
type Code struct {
	State CodeState
	Text  string
}

func ValidCode(text string) Code {
	return Code{State: CodeValid, Text: text}
}

func ExpiredCode(text string) Code {
	return Code{State: CodeExpired, Text: text}
}

func (c Code) IsValid() bool {
	return c.State == CodeValid
}

func (c Code) IsExpired() bool {
	return c.State == CodeExpired
}

func (c Code) String() string {
	return c.Text
}

// orcz strikes out expired codes by coloring them red
const expiredCodeSelector = `span[style="color:red"]`

func parseCode(cell *goquery.Selection) (Code, error) {
	struck := cell.Find(expiredCodeSelector).First()
	if struck.Length() > 0 {
		text, ok := htmlutil.FirstSelectionText(struck)
		if !ok {
			return Code{}, ErrMissingCode
		}
		return ExpiredCode(text), nil
	}

	text, ok := htmlutil.FirstSelectionText(cell)
	if !ok {
		return Code{}, ErrMissingCode
	}
	return ValidCode(text), nil
}
