package orcz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func unifiedRecord(issued IssueDate, text string) ShiftCode {
	c := ValidCode(text)
	return ShiftCode{IssueDate: issued, Codes: [3]Code{c, c, c}}
}

func TestResolveSeeKeyAboveOnFirstRow(t *testing.T) {
	codes := []ShiftCode{
		unifiedRecord(date(2019, time.January, 5), "See Key Above"),
	}
	err := resolveReferences(codes)
	require.ErrorIs(t, err, ErrNoPreviousRow)
	require.ErrorContains(t, err, "row 1")
}

func TestResolveSeeKeyAboveChain(t *testing.T) {
	codes := []ShiftCode{
		unifiedRecord(date(2019, time.January, 5), "ABCDE"),
		unifiedRecord(date(2019, time.January, 6), "See Key Above"),
		unifiedRecord(date(2019, time.January, 7), "See Key Above"),
	}
	require.NoError(t, resolveReferences(codes))
	for _, record := range codes {
		require.Equal(t, "ABCDE", record.Codes[PlatformXbox].Text)
	}
}

func TestResolveSameCodeAs(t *testing.T) {
	testCases := []struct {
		name     string
		codes    []ShiftCode
		expected error
	}{
		{
			name: "no matching date",
			codes: []ShiftCode{
				unifiedRecord(date(2019, time.January, 5), "ABCDE"),
				unifiedRecord(date(2019, time.January, 6), "Same code as January 1, 2019"),
			},
			expected: ErrUnresolvedReference,
		},
		{
			name: "unparseable date",
			codes: []ShiftCode{
				unifiedRecord(date(2019, time.January, 5), "Same code as yesterday"),
			},
			expected: ErrInvalidDate,
		},
		{
			name: "reference to a reference",
			codes: []ShiftCode{
				unifiedRecord(date(2019, time.January, 5), "Same code as January 6, 2019"),
				unifiedRecord(date(2019, time.January, 6), "Same code as January 7, 2019"),
				unifiedRecord(date(2019, time.January, 7), "ABCDE"),
			},
			expected: ErrUnresolvedReference,
		},
		{
			name: "unknown date",
			codes: []ShiftCode{
				unifiedRecord(UnknownIssueDate, "ABCDE"),
				unifiedRecord(date(2019, time.January, 6), "Same code as Unknown"),
			},
			expected: ErrUnresolvedReference,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.ErrorIs(t, resolveReferences(test.codes), test.expected)
		})
	}
}

func TestResolveSameCodeAsNumericDate(t *testing.T) {
	codes := []ShiftCode{
		unifiedRecord(date(2019, time.January, 5), "ABCDE"),
		unifiedRecord(date(2019, time.February, 1), "Same code as 01/05/2019"),
	}
	require.NoError(t, resolveReferences(codes))
	require.Equal(t, ValidCode("ABCDE"), codes[1].Codes[PlatformPC])
}
