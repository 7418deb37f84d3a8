package shift

import (
	_ "embed"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/reward_forms.html
var rewardFormsPage string

func document(t testing.TB, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func csrfMeta(token string) string {
	return `<head><meta name="csrf-param" content="authenticity_token" /><meta name="csrf-token" content="` + token + `" /></head>`
}

func TestParseRewardForms(t *testing.T) {
	forms, err := ParseRewardForms(document(t, rewardFormsPage))
	require.NoError(t, err)

	expected := []RewardForm{
		{
			Utf8:              "✓",
			AuthenticityToken: "form-token-steam",
			Code:              "WS53J-XHXZW-K3BTJ-3JJBB-JX3W5",
			Check:             "3ed7c1b0d2",
			Service:           "steam",
			Title:             "oak",
			Commit:            "Redeem for Steam",
		},
		{
			Utf8:              "✓",
			AuthenticityToken: "form-token-epic",
			Code:              "WS53J-XHXZW-K3BTJ-3JJBB-JX3W5",
			Check:             "9a4be01c77",
			Service:           "epic",
			Title:             "oak",
			Commit:            "Redeem for Epic",
		},
	}
	if diff := cmp.Diff(expected, forms); diff != "" {
		t.Fatal(diff)
	}

	data := forms[0].FormData()
	require.Len(t, data, 7)
	require.Equal(t, "steam", data["archway_code_redemption[service]"])
}

func TestParseRewardFormsMissingField(t *testing.T) {
	testCases := []struct {
		field    string
		expected error
	}{
		{field: `name="utf8"`, expected: ErrMissingUtf8},
		{field: `name="authenticity_token"`, expected: ErrMissingAuthenticityToken},
		{field: `name="archway_code_redemption[check]"`, expected: ErrMissingCheck},
		{field: `name="archway_code_redemption[service]"`, expected: ErrMissingService},
		{field: `name="commit"`, expected: ErrMissingCommit},
	}

	for _, test := range testCases {
		t.Run(test.field, func(t *testing.T) {
			page := strings.Replace(rewardFormsPage, test.field, `name="removed"`, 1)
			forms, err := ParseRewardForms(document(t, page))
			require.ErrorIs(t, err, test.expected)
			require.ErrorContains(t, err, "form 1")
			require.Nil(t, forms)
		})
	}
}

func TestParseRewardFormsNone(t *testing.T) {
	forms, err := ParseRewardForms(document(t, "<p>nothing to redeem</p>"))
	require.NoError(t, err)
	require.Empty(t, forms)
}

func TestParseRewardsPage(t *testing.T) {
	testCases := []struct {
		notice   string
		expected Outcome
	}{
		{notice: "This SHiFT code has already been redeemed", expected: OutcomeAlreadyRedeemed},
		{notice: "To continue to redeem SHiFT codes, please launch a SHiFT-enabled title first!", expected: OutcomeLaunchGame},
		{notice: "Your code was successfully redeemed", expected: OutcomeRedeemed},
		{notice: "Failed to redeem your SHiFT code", expected: OutcomeRedeemFailed},
	}

	for _, test := range testCases {
		page := csrfMeta("token") + `<div class="alert notice"><p>` + test.notice + `</p></div>`
		rewards, err := ParseRewardsPage(document(t, page))
		require.NoError(t, err, test.notice)
		require.Equal(t, "token", rewards.CsrfToken)
		require.NotNil(t, rewards.AlertNotice)
		require.Equal(t, test.expected, rewards.AlertNotice.Outcome())
	}

	rewards, err := ParseRewardsPage(document(t, csrfMeta("token")+"<p>rewards</p>"))
	require.NoError(t, err)
	require.Nil(t, rewards.AlertNotice)
}

func TestParseRewardsPageErrors(t *testing.T) {
	page := csrfMeta("token") + `<div class="alert notice"><p>Scheduled maintenance</p></div>`
	_, err := ParseRewardsPage(document(t, page))
	var noticeErr UnknownAlertNoticeError
	require.ErrorAs(t, err, &noticeErr)
	require.Equal(t, "Scheduled maintenance", noticeErr.Text)

	_, err = ParseRewardsPage(document(t, "<p>no token</p>"))
	require.ErrorIs(t, err, ErrMissingCsrfToken)
}

func TestParseAccountPage(t *testing.T) {
	page := csrfMeta("account-token") + `<body>
<dd id="current_email">lilith@example.com</dd>
<dd id="current_display_name">FireHawk</dd>
<dd id="current_first_name">Lilith</dd>
</body>`
	account, err := ParseAccountPage(document(t, page))
	require.NoError(t, err)
	require.Equal(t, AccountPage{
		CsrfToken:   "account-token",
		Email:       "lilith@example.com",
		DisplayName: "FireHawk",
		FirstName:   "Lilith",
	}, account)

	_, err = ParseAccountPage(document(t, csrfMeta("account-token")+`<dd id="current_email">a@b.c</dd>`))
	require.ErrorIs(t, err, ErrMissingDisplayName)
}

func TestParseCodeRedemptionPage(t *testing.T) {
	base, err := url.Parse("https://shift.example.com")
	require.NoError(t, err)

	page := csrfMeta("redemption-token") + `<div id="check_redemption_status" data-url="/code_redemptions/abc/status"></div>`
	redemption, err := ParseCodeRedemptionPage(document(t, page), base)
	require.NoError(t, err)
	require.Equal(t, "redemption-token", redemption.CsrfToken)
	require.Equal(t, "https://shift.example.com/code_redemptions/abc/status", redemption.CheckRedemptionStatusUrl)

	_, err = ParseCodeRedemptionPage(document(t, csrfMeta("redemption-token")), base)
	require.ErrorIs(t, err, ErrMissingCheckRedemptionStatus)
}

func TestCodeRedemptionStatusUnmarshal(t *testing.T) {
	var status CodeRedemptionStatus
	err := json.Unmarshal([]byte(`{
		"in_progress": false,
		"text": "Your code was successfully redeemed",
		"url": "/rewards",
		"job_id": "5f1a",
		"attempts": 3
	}`), &status)
	require.NoError(t, err)

	require.False(t, status.IsInProgress())
	require.True(t, status.IsSuccess())
	require.Equal(t, "/rewards", *status.Url)
	outcome, ok := status.Outcome()
	require.True(t, ok)
	require.Equal(t, OutcomeRedeemed, outcome)
	require.Equal(t, map[string]json.RawMessage{
		"job_id":   json.RawMessage(`"5f1a"`),
		"attempts": json.RawMessage(`3`),
	}, status.Extra)

	status = CodeRedemptionStatus{}
	require.NoError(t, json.Unmarshal([]byte(`{"text": "Working on it"}`), &status))
	require.False(t, status.IsInProgress())
	require.False(t, status.IsSuccess())
	require.Nil(t, status.Extra)
	_, ok = status.Outcome()
	require.False(t, ok)
}
