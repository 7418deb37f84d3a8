package shift

import (
	"encoding/json"
	"fmt"
	"net/url"
	"shift-redeemer/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	csrfTokenSelector             = `meta[name="csrf-token"][content]`
	alertNoticeSelector           = ".alert.notice p"
	checkRedemptionStatusSelector = "#check_redemption_status[data-url]"
)

func parseCsrfToken(doc *goquery.Document) (string, error) {
	token, ok := doc.Find(csrfTokenSelector).First().Attr("content")
	if !ok {
		return "", ErrMissingCsrfToken
	}
	return token, nil
}

// HomePage is the landing page, the only thing of interest on it is the token
// the login form has to carry.
type HomePage struct {
	CsrfToken string
}

func ParseHomePage(doc *goquery.Document) (HomePage, error) {
	token, err := parseCsrfToken(doc)
	if err != nil {
		return HomePage{}, err
	}
	return HomePage{CsrfToken: token}, nil
}

// AccountPage is where a successful login lands.
type AccountPage struct {
	CsrfToken   string
	Email       string
	DisplayName string
	FirstName   string
}

func textById(doc *goquery.Document, id string) (string, bool) {
	return htmlutil.FirstSelectionText(doc.Find("#" + id).First())
}

func ParseAccountPage(doc *goquery.Document) (AccountPage, error) {
	token, err := parseCsrfToken(doc)
	if err != nil {
		return AccountPage{}, err
	}
	email, ok := textById(doc, "current_email")
	if !ok {
		return AccountPage{}, ErrMissingEmail
	}
	displayName, ok := textById(doc, "current_display_name")
	if !ok {
		return AccountPage{}, ErrMissingDisplayName
	}
	firstName, ok := textById(doc, "current_first_name")
	if !ok {
		return AccountPage{}, ErrMissingFirstName
	}
	return AccountPage{
		CsrfToken:   token,
		Email:       email,
		DisplayName: displayName,
		FirstName:   firstName,
	}, nil
}

// AlertNotice is the banner the rewards page shows after a redemption attempt.
type AlertNotice int

const (
	AlertAlreadyRedeemed AlertNotice = iota
	AlertLaunchGame
	AlertRedeemed
	AlertRedeemFailed
)

const (
	alreadyRedeemedText = "This SHiFT code has already been redeemed"
	launchGameText      = "To continue to redeem SHiFT codes, please launch a SHiFT-enabled title first!"
	redeemedText        = "Your code was successfully redeemed"
	redeemFailedText    = "Failed to redeem your SHiFT code"
)

var alertNoticeTexts = map[string]AlertNotice{
	alreadyRedeemedText: AlertAlreadyRedeemed,
	launchGameText:      AlertLaunchGame,
	redeemedText:        AlertRedeemed,
	redeemFailedText:    AlertRedeemFailed,
}

// ParseAlertNotice classifies the text of an alert notice. Text that is not
// one of the known messages is an UnknownAlertNoticeError.
func ParseAlertNotice(text string) (AlertNotice, error) {
	notice, ok := alertNoticeTexts[text]
	if !ok {
		return 0, UnknownAlertNoticeError{Text: text}
	}
	return notice, nil
}

func (a AlertNotice) Outcome() Outcome {
	switch a {
	case AlertAlreadyRedeemed:
		return OutcomeAlreadyRedeemed
	case AlertLaunchGame:
		return OutcomeLaunchGame
	case AlertRedeemed:
		return OutcomeRedeemed
	case AlertRedeemFailed:
		return OutcomeRedeemFailed
	}
	panic(fmt.Sprintf("unknown alert notice %d", int(a)))
}

func (a AlertNotice) String() string {
	return a.Outcome().String()
}

type RewardsPage struct {
	CsrfToken string
	// nil when the page has no alert notice
	AlertNotice *AlertNotice
}

func ParseRewardsPage(doc *goquery.Document) (RewardsPage, error) {
	token, err := parseCsrfToken(doc)
	if err != nil {
		return RewardsPage{}, err
	}
	page := RewardsPage{CsrfToken: token}

	alert := doc.Find(alertNoticeSelector).First()
	if alert.Length() == 0 {
		return page, nil
	}
	text, ok := htmlutil.FirstSelectionText(alert)
	if !ok {
		return RewardsPage{}, ErrMissingAlertNoticeText
	}
	notice, err := ParseAlertNotice(text)
	if err != nil {
		return RewardsPage{}, err
	}
	page.AlertNotice = &notice
	return page, nil
}

// CodeRedemptionPage is shown while a submitted code is being processed.
type CodeRedemptionPage struct {
	CsrfToken string
	// absolute url that reports the progress of the redemption as json
	CheckRedemptionStatusUrl string
}

func ParseCodeRedemptionPage(doc *goquery.Document, baseUrl *url.URL) (CodeRedemptionPage, error) {
	token, err := parseCsrfToken(doc)
	if err != nil {
		return CodeRedemptionPage{}, err
	}
	dataUrl, ok := doc.Find(checkRedemptionStatusSelector).First().Attr("data-url")
	if !ok {
		return CodeRedemptionPage{}, ErrMissingCheckRedemptionStatus
	}
	parsed, err := url.Parse(dataUrl)
	if err != nil {
		return CodeRedemptionPage{}, fmt.Errorf("check redemption status url: %w", err)
	}
	return CodeRedemptionPage{
		CsrfToken:                token,
		CheckRedemptionStatusUrl: baseUrl.ResolveReference(parsed).String(),
	}, nil
}

// RewardForm is one of the forms the code lookup returns, one per platform
// the code can be redeemed on. It is submitted back verbatim.
type RewardForm struct {
	Utf8              string
	AuthenticityToken string
	Code              string
	Check             string
	Service           string
	Title             string
	Commit            string
}

func (f RewardForm) FormData() map[string]string {
	return map[string]string{
		"utf8":                             f.Utf8,
		"authenticity_token":               f.AuthenticityToken,
		"archway_code_redemption[code]":    f.Code,
		"archway_code_redemption[check]":   f.Check,
		"archway_code_redemption[service]": f.Service,
		"archway_code_redemption[title]":   f.Title,
		"commit":                           f.Commit,
	}
}

func formValue(form *goquery.Selection, name string) (string, bool) {
	return form.Find(fmt.Sprintf(`[name=%q][value]`, name)).First().Attr("value")
}

func parseRewardForm(form *goquery.Selection) (RewardForm, error) {
	var out RewardForm
	fields := []struct {
		name    string
		missing error
		dest    *string
	}{
		{name: "utf8", missing: ErrMissingUtf8, dest: &out.Utf8},
		{name: "authenticity_token", missing: ErrMissingAuthenticityToken, dest: &out.AuthenticityToken},
		{name: "archway_code_redemption[code]", missing: ErrMissingCode, dest: &out.Code},
		{name: "archway_code_redemption[check]", missing: ErrMissingCheck, dest: &out.Check},
		{name: "archway_code_redemption[service]", missing: ErrMissingService, dest: &out.Service},
		{name: "archway_code_redemption[title]", missing: ErrMissingTitle, dest: &out.Title},
		{name: "commit", missing: ErrMissingCommit, dest: &out.Commit},
	}

	for _, field := range fields {
		value, ok := formValue(form, field.name)
		if !ok {
			return RewardForm{}, field.missing
		}
		*field.dest = value
	}
	return out, nil
}

// ParseRewardForms parses every form in the document, one malformed form fails
// the whole call.
func ParseRewardForms(doc *goquery.Document) ([]RewardForm, error) {
	selection := doc.Find("form")

	var forms []RewardForm
	for i := 0; i < selection.Length(); i++ {
		form, err := parseRewardForm(selection.Eq(i))
		if err != nil {
			return nil, fmt.Errorf("form %d: %w", i+1, err)
		}
		forms = append(forms, form)
	}
	return forms, nil
}

// CodeRedemptionStatus is the json the status url answers with while polling.
type CodeRedemptionStatus struct {
	InProgress *bool   `json:"in_progress"`
	Text       *string `json:"text"`
	Url        *string `json:"url"`
	// fields the client does not know about, kept as is
	Extra map[string]json.RawMessage `json:"-"`
}

func (s *CodeRedemptionStatus) UnmarshalJSON(data []byte) error {
	type known CodeRedemptionStatus
	var decoded known
	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	var all map[string]json.RawMessage
	err = json.Unmarshal(data, &all)
	if err != nil {
		return err
	}
	delete(all, "in_progress")
	delete(all, "text")
	delete(all, "url")
	if len(all) > 0 {
		decoded.Extra = all
	}

	*s = CodeRedemptionStatus(decoded)
	return nil
}

// IsInProgress treats a missing in_progress field as done.
func (s CodeRedemptionStatus) IsInProgress() bool {
	return s.InProgress != nil && *s.InProgress
}

// Message is the text meant for the user, empty if the server sent none.
func (s CodeRedemptionStatus) Message() string {
	if s.Text == nil {
		return ""
	}
	return *s.Text
}

// Outcome classifies the message of a finished redemption. A message that is
// not one of the known notices yields false.
func (s CodeRedemptionStatus) Outcome() (Outcome, bool) {
	notice, ok := alertNoticeTexts[s.Message()]
	if !ok {
		return 0, false
	}
	return notice.Outcome(), true
}

func (s CodeRedemptionStatus) IsSuccess() bool {
	return s.Message() == redeemedText
}
