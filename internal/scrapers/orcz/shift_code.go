package orcz

import (
	"fmt"
	"shift-redeemer/pkg/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Platform indexes the per-platform codes of a ShiftCode.
type Platform int

const (
	PlatformPC Platform = iota
	PlatformPlayStation
	PlatformXbox
)

// Platforms lists every platform in table column order.
var Platforms = []Platform{PlatformPC, PlatformPlayStation, PlatformXbox}

func (p Platform) String() string {
	switch p {
	case PlatformPC:
		return "PC"
	case PlatformPlayStation:
		return "PlayStation"
	case PlatformXbox:
		return "Xbox"
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

// ShiftCode is one row of an orcz code table.
type ShiftCode struct {
	Source    string
	IssueDate IssueDate
	Rewards   string
	// indexed by Platform
	Codes [3]Code
}

func (s ShiftCode) Code(p Platform) Code {
	return s.Codes[p]
}

// FirstValid returns the first valid code in platform order.
func (s ShiftCode) FirstValid() (Code, Platform, bool) {
	for _, p := range Platforms {
		if s.Codes[p].IsValid() {
			return s.Codes[p], p, true
		}
	}
	return Code{}, 0, false
}

// the wiki writes "??" for an unknown day in unified tables
const unknownDayMarker = "??"

func parseShiftCode(row *goquery.Selection, game Game) (ShiftCode, error) {
	cells := row.Find("td")
	cell := func(i int) *goquery.Selection {
		if i >= cells.Length() {
			return nil
		}
		return cells.Eq(i)
	}

	var out ShiftCode

	sourceCell := cell(0)
	if sourceCell == nil {
		return ShiftCode{}, ErrMissingSource
	}
	source, ok := htmlutil.FirstSelectionText(sourceCell)
	if !ok {
		return ShiftCode{}, ErrMissingSource
	}
	out.Source = source

	rewardsCell := cell(1)
	if rewardsCell == nil {
		return ShiftCode{}, ErrMissingRewards
	}
	out.Rewards = joinRewards(rewardsCell)

	dateCell := cell(2)
	if dateCell == nil {
		return ShiftCode{}, ErrMissingIssueDate
	}
	dateText, ok := htmlutil.FirstSelectionText(dateCell)
	if !ok {
		return ShiftCode{}, ErrMissingIssueDate
	}
	if game.PlatformUnified() {
		dateText = strings.ReplaceAll(dateText, unknownDayMarker, "1")
	}
	issueDate, err := ParseIssueDate(dateText, game.Dialect())
	if err != nil {
		return ShiftCode{}, fmt.Errorf("issue date %q: %w", dateText, err)
	}
	out.IssueDate = issueDate

	if cell(3) == nil {
		return ShiftCode{}, ErrMissingExpiration
	}

	if game.PlatformUnified() {
		codeCell := cell(4)
		if codeCell == nil {
			return ShiftCode{}, ErrMissingCode
		}
		code, err := parseCode(codeCell)
		if err != nil {
			return ShiftCode{}, err
		}
		for _, p := range Platforms {
			out.Codes[p] = code
		}
		return out, nil
	}

	for _, p := range Platforms {
		codeCell := cell(4 + int(p))
		if codeCell == nil {
			return ShiftCode{}, fmt.Errorf("%s: %w", p, ErrMissingCode)
		}
		code, err := parseCode(codeCell)
		if err != nil {
			return ShiftCode{}, fmt.Errorf("%s: %w", p, err)
		}
		out.Codes[p] = code
	}

	return out, nil
}

// joinRewards flattens a rewards cell that may be split across line breaks and
// inline elements into one line.
func joinRewards(cell *goquery.Selection) string {
	var fragments []string
	for _, text := range htmlutil.TextNodes(cell.Nodes[0]) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		fragments = append(fragments, trimmed)
	}
	return strings.Join(fragments, " ")
}
