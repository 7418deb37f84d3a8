package orcz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Dialect selects which spellings of a date ParseIssueDate accepts.
type Dialect int

const (
	// DialectWritten accepts dates written with a month name, like "January 5th, 2019".
	DialectWritten Dialect = iota
	// DialectNumeric accepts everything DialectWritten does plus all-digit dates
	// like "01/05/2019" and "2019.01.05".
	DialectNumeric
)

// IssueDate is a calendar date, the zero value means the date is unknown.
type IssueDate struct {
	Year  int
	Month time.Month
	Day   int
}

var UnknownIssueDate = IssueDate{}

// NewIssueDate validates that the day exists in the given month and year.
func NewIssueDate(year int, month time.Month, day int) (IssueDate, error) {
	if month < time.January || month > time.December {
		return IssueDate{}, fmt.Errorf("%w: month %d", ErrComponentRange, month)
	}
	// day 0 of the next month is the last day of this one
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 || day > daysInMonth {
		return IssueDate{}, fmt.Errorf("%w: day %d of %s %d", ErrComponentRange, day, month, year)
	}
	return IssueDate{Year: year, Month: month, Day: day}, nil
}

func (d IssueDate) Known() bool {
	return d != UnknownIssueDate
}

// Time returns midnight UTC of the date, or the zero time if it is unknown.
func (d IssueDate) Time() time.Time {
	if !d.Known() {
		return time.Time{}
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d IssueDate) String() string {
	if !d.Known() {
		return "Unknown"
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

var monthNames = map[string]time.Month{
	"january":   time.January,
	"jan":       time.January,
	"janurary":  time.January,
	"february":  time.February,
	"feb":       time.February,
	"febuary":   time.February,
	"feburary":  time.February,
	"march":     time.March,
	"mar":       time.March,
	"april":     time.April,
	"apr":       time.April,
	"may":       time.May,
	"june":      time.June,
	"jun":       time.June,
	"july":      time.July,
	"jul":       time.July,
	"august":    time.August,
	"aug":       time.August,
	"september": time.September,
	"sept":      time.September,
	"sep":       time.September,
	"october":   time.October,
	"oct":       time.October,
	"octobor":   time.October,
	"november":  time.November,
	"nov":       time.November,
	"december":  time.December,
	"dec":       time.December,
	"decemeber": time.December,
}

// words the wiki sprinkles into the date column that carry no date information
var fillerWords = map[string]bool{
	"st":       true,
	"nd":       true,
	"rd":       true,
	"th":       true,
	"thru":     true,
	"verified": true,
}

func isFillerRune(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == '(' || r == ')' || r == '.'
}

var (
	monthDayYearRegex = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{4})$`)
	yearMonthDayRegex = regexp.MustCompile(`^(\d{4})[./-](\d{1,2})[./-](\d{1,2})$`)
)

type tokenKind int

const (
	tokenMonth tokenKind = iota
	tokenNumber
)

type token struct {
	kind  tokenKind
	value int
}

func lexIssueDate(text string) ([]token, error) {
	var tokens []token
	runes := []rune(text)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case isFillerRune(r):
			i++
		case unicode.IsDigit(r):
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			literal := string(runes[start:i])
			n, err := strconv.Atoi(literal)
			if err != nil {
				return nil, InvalidTokenError{Token: literal}
			}
			tokens = append(tokens, token{kind: tokenNumber, value: n})
		case unicode.IsLetter(r):
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			lowered := strings.ToLower(word)
			if month, ok := monthNames[lowered]; ok {
				tokens = append(tokens, token{kind: tokenMonth, value: int(month)})
				continue
			}
			if fillerWords[lowered] {
				continue
			}
			return nil, InvalidTokenError{Token: word}
		default:
			return nil, InvalidTokenError{Token: string(r)}
		}
	}

	return tokens, nil
}

func parseNumericDate(text string) (IssueDate, bool, error) {
	if groups := monthDayYearRegex.FindStringSubmatch(text); groups != nil {
		month, _ := strconv.Atoi(groups[1])
		day, _ := strconv.Atoi(groups[2])
		year, _ := strconv.Atoi(groups[3])
		date, err := NewIssueDate(year, time.Month(month), day)
		return date, true, err
	}
	if groups := yearMonthDayRegex.FindStringSubmatch(text); groups != nil {
		year, _ := strconv.Atoi(groups[1])
		month, _ := strconv.Atoi(groups[2])
		day, _ := strconv.Atoi(groups[3])
		date, err := NewIssueDate(year, time.Month(month), day)
		return date, true, err
	}
	return IssueDate{}, false, nil
}

// ParseIssueDate turns the free text of an issue date cell into a date.
//
// "Unknown" and "n/a" yield UnknownIssueDate. Otherwise the first month name
// is the month, the first number the day and the second number the year,
// anything after that is ignored.
func ParseIssueDate(text string, dialect Dialect) (IssueDate, error) {
	text = strings.TrimSpace(text)

	switch strings.ToLower(text) {
	case "unknown", "n/a":
		return UnknownIssueDate, nil
	}

	if dialect == DialectNumeric {
		date, matched, err := parseNumericDate(text)
		if matched {
			return date, err
		}
	}

	tokens, err := lexIssueDate(text)
	if err != nil {
		return IssueDate{}, err
	}

	var month time.Month
	day := -1
	year := -1
	for _, t := range tokens {
		switch t.kind {
		case tokenMonth:
			if month == 0 {
				month = time.Month(t.value)
			}
		case tokenNumber:
			switch {
			case day < 0:
				day = t.value
			case year < 0:
				year = t.value
			}
		}
	}

	// the first number is the day, so without one there is no year either
	if day < 0 {
		return IssueDate{}, ErrMissingDay
	}
	if year < 0 {
		return IssueDate{}, ErrMissingYear
	}
	if month == 0 {
		return IssueDate{}, ErrMissingMonth
	}

	return NewIssueDate(year, month, day)
}
