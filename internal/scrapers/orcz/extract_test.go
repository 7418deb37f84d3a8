package orcz

import (
	_ "embed"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/bl2_codes.html
var bl2CodesPage string

//go:embed testdata/bl3_codes.html
var bl3CodesPage string

func parseDocument(t testing.TB, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func date(year int, month time.Month, day int) IssueDate {
	return IssueDate{Year: year, Month: month, Day: day}
}

func TestExtractShiftCodesPerPlatform(t *testing.T) {
	codes, err := ExtractShiftCodes(parseDocument(t, bl2CodesPage), Borderlands2)
	require.NoError(t, err)

	expected := []ShiftCode{
		{
			Source:    "Twitter",
			IssueDate: date(2013, time.November, 19),
			Rewards:   "1 Golden Key",
			Codes: [3]Code{
				ExpiredCode("KBWBT-XXB9T-6FC5J-JJ3TT-W5BF5"),
				ValidCode("5TKBT-XCJXW-W3FWC-X3JJ3-TB3HW"),
				ValidCode("KT5TT-CZCBK-BKF9K-HJTT3-XBW96"),
			},
		},
		{
			Source:    "Facebook",
			IssueDate: date(2013, time.December, 1),
			Rewards:   "3 Golden Keys ( Sunday only )",
			Codes: [3]Code{
				// the placeholder keeps its own state
				ValidCode("KBWBT-XXB9T-6FC5J-JJ3TT-W5BF5"),
				ValidCode("C3CTB-WRSTW-TT3FW-5BFJB-5TTJH"),
				ValidCode("KT5TT-CZCBK-BKF9K-HJTT3-XBW96"),
			},
		},
		{
			Source:    "Gearbox Newsletter",
			IssueDate: date(2014, time.September, 3),
			Rewards:   "5 Golden Keys",
			Codes: [3]Code{
				ValidCode("WTWJ3-ZZ5T5-RSXTK-66J3J-65RTB"),
				ValidCode("C3CTB-WRSTW-TT3FW-5BFJB-5TTJH"),
				ValidCode("KT5TT-CZCBK-BKF9K-HJTT3-XBW96"),
			},
		},
	}

	if diff := cmp.Diff(expected, codes); diff != "" {
		t.Fatal(diff)
	}
}

func TestExtractShiftCodesUnified(t *testing.T) {
	codes, err := ExtractShiftCodes(parseDocument(t, bl3CodesPage), Borderlands3)
	require.NoError(t, err)

	unified := func(c Code) [3]Code {
		return [3]Code{c, c, c}
	}
	expected := []ShiftCode{
		{
			Source:    "Twitter",
			IssueDate: date(2020, time.February, 13),
			Rewards:   "3 Golden Keys",
			Codes:     unified(ValidCode("ZFKJ3-TT3BB-JTBJT-T3JJT-JWX9H")),
		},
		{
			Source:    "Reddit",
			IssueDate: UnknownIssueDate,
			Rewards:   "Cosmetic Head",
			Codes:     unified(ExpiredCode("HXKBT-XJBWF-WTJ3J-3FBTB-ZJCJS")),
		},
		{
			Source:    "Gearbox Newsletter",
			IssueDate: date(2020, time.February, 14),
			Rewards:   "5 Golden Keys",
			Codes:     unified(ValidCode("ZFKJ3-TT3BB-JTBJT-T3JJT-JWX9H")),
		},
		{
			Source:    "Twitch",
			IssueDate: date(2020, time.March, 1),
			Rewards:   "1 Diamond Key",
			Codes:     unified(ValidCode("WS53J-XHXZW-K3BTJ-3JJBB-JX3W5")),
		},
	}

	if diff := cmp.Diff(expected, codes); diff != "" {
		t.Fatal(diff)
	}
}

func TestExtractShiftCodesLeavesNoPlaceholders(t *testing.T) {
	for _, test := range []struct {
		game Game
		page string
	}{
		{game: Borderlands2, page: bl2CodesPage},
		{game: Borderlands3, page: bl3CodesPage},
	} {
		codes, err := ExtractShiftCodes(parseDocument(t, test.page), test.game)
		require.NoError(t, err)
		for _, record := range codes {
			for _, code := range record.Codes {
				require.False(t, isPlaceholder(code.Text), code.Text)
			}
		}
	}
}

func TestExtractShiftCodesMissingTable(t *testing.T) {
	_, err := ExtractShiftCodes(parseDocument(t, "<html><body><p>moved</p></body></html>"), Borderlands2)
	require.ErrorIs(t, err, ErrMissingTable)
}

func TestExtractShiftCodesHeaderOnly(t *testing.T) {
	page := `<table><tbody><tr><th>Source</th></tr></tbody></table>`
	codes, err := ExtractShiftCodes(parseDocument(t, page), Borderlands2)
	require.NoError(t, err)
	require.Empty(t, codes)
}

func TestExtractShiftCodesIsAtomic(t *testing.T) {
	page := `<table><tbody>
<tr><th>Source</th></tr>
<tr><td>Twitter</td><td>1 Golden Key</td><td>November 19, 2013</td><td>Unknown</td>
<td>A</td><td>B</td><td>C</td></tr>
<tr><td>Facebook</td><td>1 Golden Key</td><td>November 20, 2013</td></tr>
</tbody></table>`
	codes, err := ExtractShiftCodes(parseDocument(t, page), Borderlands2)
	require.ErrorIs(t, err, ErrMissingExpiration)
	require.ErrorContains(t, err, "row 2")
	require.Nil(t, codes)
}
