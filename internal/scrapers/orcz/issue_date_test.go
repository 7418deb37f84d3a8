package orcz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseIssueDate(t *testing.T) {
	testCases := []struct {
		text     string
		dialect  Dialect
		expected IssueDate
	}{
		{text: "January 5, 2019", dialect: DialectWritten, expected: IssueDate{2019, time.January, 5}},
		{text: "January 5, 2019", dialect: DialectNumeric, expected: IssueDate{2019, time.January, 5}},
		{text: "01/05/2019", dialect: DialectNumeric, expected: IssueDate{2019, time.January, 5}},
		{text: "2019.01.05", dialect: DialectNumeric, expected: IssueDate{2019, time.January, 5}},
		{text: "01.05.2019", dialect: DialectNumeric, expected: IssueDate{2019, time.January, 5}},
		{text: "Jan 5th, 2019 (verified)", dialect: DialectWritten, expected: IssueDate{2019, time.January, 5}},
		{text: "Sept 12 2019", dialect: DialectWritten, expected: IssueDate{2019, time.September, 12}},
		{text: "Febuary 3rd, 2020", dialect: DialectWritten, expected: IssueDate{2020, time.February, 3}},
		{text: "February 29, 2020", dialect: DialectWritten, expected: IssueDate{2020, time.February, 29}},
		{text: "  dec 2, 2013\n", dialect: DialectWritten, expected: IssueDate{2013, time.December, 2}},
		{text: "May 2, 2014 thru May 9, 2014", dialect: DialectWritten, expected: IssueDate{2014, time.May, 2}},
		{text: "Unknown", dialect: DialectWritten, expected: UnknownIssueDate},
		{text: "n/a", dialect: DialectWritten, expected: UnknownIssueDate},
		{text: " N/A ", dialect: DialectNumeric, expected: UnknownIssueDate},
	}

	for _, test := range testCases {
		t.Run(test.text, func(t *testing.T) {
			date, err := ParseIssueDate(test.text, test.dialect)
			require.NoError(t, err)
			require.Equal(t, test.expected, date)
		})
	}
}

func TestParseIssueDateErrors(t *testing.T) {
	testCases := []struct {
		text     string
		dialect  Dialect
		expected error
	}{
		{text: "January", dialect: DialectWritten, expected: ErrMissingDay},
		{text: "Sep.", dialect: DialectWritten, expected: ErrMissingDay},
		{text: "January 2019", dialect: DialectWritten, expected: ErrMissingYear},
		{text: "5, 2019", dialect: DialectWritten, expected: ErrMissingMonth},
		{text: "April 31, 2019", dialect: DialectWritten, expected: ErrComponentRange},
		{text: "February 29, 2019", dialect: DialectWritten, expected: ErrComponentRange},
		{text: "13/01/2019", dialect: DialectNumeric, expected: ErrComponentRange},
		{text: "2019.04.31", dialect: DialectNumeric, expected: ErrComponentRange},
	}

	for _, test := range testCases {
		t.Run(test.text, func(t *testing.T) {
			_, err := ParseIssueDate(test.text, test.dialect)
			require.ErrorIs(t, err, test.expected)
			require.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}

func TestParseIssueDateInvalidToken(t *testing.T) {
	testCases := []struct {
		text    string
		dialect Dialect
		token   string
	}{
		{text: "01/05/2019", dialect: DialectWritten, token: "/"},
		{text: "Jan 5 2019 maybe", dialect: DialectWritten, token: "maybe"},
		{text: "Jan 5 - 2019", dialect: DialectNumeric, token: "-"},
	}

	for _, test := range testCases {
		t.Run(test.text, func(t *testing.T) {
			_, err := ParseIssueDate(test.text, test.dialect)
			var tokenErr InvalidTokenError
			require.ErrorAs(t, err, &tokenErr)
			require.Equal(t, test.token, tokenErr.Token)
			require.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}

func TestIssueDateString(t *testing.T) {
	require.Equal(t, "Unknown", UnknownIssueDate.String())
	require.False(t, UnknownIssueDate.Known())
	require.True(t, UnknownIssueDate.Time().IsZero())

	date, err := NewIssueDate(2019, time.January, 5)
	require.NoError(t, err)
	require.Equal(t, "2019-01-05", date.String())
	require.Equal(t, time.Date(2019, time.January, 5, 0, 0, 0, 0, time.UTC), date.Time())
}
