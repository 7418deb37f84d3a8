package shift

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http/cookiejar"
	"net/url"
	"shift-redeemer/internal/components/assert"
	"shift-redeemer/internal/components/chrono"
	"shift-redeemer/internal/components/telemetry"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const DefaultBaseUrl = "https://shift.gearboxsoftware.com"

const (
	DefaultPollInterval = 2 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

const (
	report_client_login        = "client.login"
	report_client_rewards_page = "client.rewards-page"
	report_client_reward_forms = "client.reward-forms"
	report_client_submit       = "client.submit"
	report_client_poll         = "client.poll"
)

// the server sends these as plain text instead of forms
var lookupFailures = map[string]Outcome{
	"This SHiFT code has expired":                 OutcomeExpired,
	"This SHiFT code does not exist":              OutcomeNonExistent,
	"This code is not available for your account": OutcomeUnavailable,
}

type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Credentials struct {
	Email    string
	Password string
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// UserAgent defaults to DefaultUserAgent.
	UserAgent        string
	BypassCloudflare bool
	// PollInterval is the wait between two redemption status checks, it
	// defaults to DefaultPollInterval.
	PollInterval time.Duration
	// RequestsPerSecond limits the request rate, 0 means no limit.
	RequestsPerSecond float64
	// Time defaults to the real clock.
	Time             chrono.TimeAPI
	InstrumentOutput telemetry.InstrumentOutput
}

type pageUrls struct {
	incorrectLogin  string
	account         string
	rewards         string
	codeRedemptions string
}

// Client is a session with the SHiFT website. It logs in once and then
// redeems codes one at a time, it must not be used concurrently.
type Client struct {
	http         *resty.Client
	baseUrl      *url.URL
	urls         pageUrls
	credentials  Credentials
	pollInterval time.Duration
	time         chrono.TimeAPI
	tel          telemetry.API

	state     State
	csrfToken string
}

func NewClient(credentials Credentials, opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("shift", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Time == nil {
		opts.Time = chrono.StandardImpl{}
	}

	baseUrl, err := url.Parse(strings.TrimRight(opts.BaseUrl, "/"))
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	httpClient.SetTimeout(time.Second * 30)

	if opts.RequestsPerSecond > 0 {
		// a burst of at least one second worth of requests so none get dropped
		burst := int(math.Ceil(opts.RequestsPerSecond))
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, opts.InstrumentOutput)

	incorrectLogin := baseUrl.JoinPath("home")
	incorrectLogin.RawQuery = "redirect_to=false"

	return &Client{
		http:    httpClient,
		baseUrl: baseUrl,
		urls: pageUrls{
			incorrectLogin:  incorrectLogin.String(),
			account:         baseUrl.JoinPath("account").String(),
			rewards:         baseUrl.JoinPath("rewards").String(),
			codeRedemptions: baseUrl.JoinPath("code_redemptions").String(),
		},
		credentials:  credentials,
		pollInterval: opts.PollInterval,
		time:         opts.Time,
		tel:          tel,
	}, nil
}

func (c *Client) State() State {
	return c.state
}

// finalUrl is where the request ended up after following redirects.
func finalUrl(res *resty.Response) string {
	if res.RawResponse == nil || res.RawResponse.Request == nil {
		return res.Request.URL
	}
	return res.RawResponse.Request.URL.String()
}

func checkStatus(res *resty.Response) error {
	if res.IsError() {
		return StatusError{StatusCode: res.StatusCode(), Url: finalUrl(res)}
	}
	return nil
}

func parseDocument(res *resty.Response) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

// Login signs in with the credentials of the client. A wrong email or
// password is ErrIncorrectEmailOrPassword, retrying will not help.
func (c *Client) Login(ctx context.Context) (AccountPage, error) {
	c.tel.ReportDebug(report_client_login, c.credentials.Email)

	res, err := c.http.R().
		SetContext(ctx).
		Get("/home")
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("fetch home page: %w", err),
		)
		return AccountPage{}, err
	}
	err = checkStatus(res)
	if err != nil {
		return AccountPage{}, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("parse home page: %w", err),
		)
		return AccountPage{}, err
	}
	home, err := ParseHomePage(doc)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("home page: %w", err),
		)
		return AccountPage{}, fmt.Errorf("home page: %w", err)
	}

	res, err = c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"utf8":               "✓",
			"authenticity_token": home.CsrfToken,
			"user[email]":        c.credentials.Email,
			"user[password]":     c.credentials.Password,
			"commit":             "SIGN IN",
		}).
		Post("/sessions")
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("post credentials: %w", err),
		)
		return AccountPage{}, err
	}
	err = checkStatus(res)
	if err != nil {
		return AccountPage{}, err
	}

	switch landed := finalUrl(res); landed {
	case c.urls.account:
	case c.urls.incorrectLogin:
		c.tel.ReportWarning(report_client_login, ErrIncorrectEmailOrPassword)
		return AccountPage{}, ErrIncorrectEmailOrPassword
	default:
		err := InvalidRedirectError{Url: landed}
		c.tel.ReportBroken(report_client_login, err)
		return AccountPage{}, err
	}

	doc, err = parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("parse account page: %w", err),
		)
		return AccountPage{}, err
	}
	account, err := ParseAccountPage(doc)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("account page: %w", err),
		)
		return AccountPage{}, fmt.Errorf("account page: %w", err)
	}

	c.csrfToken = account.CsrfToken
	c.state = StateAuthenticated
	return account, nil
}

// RewardsPage fetches the rewards page and keeps its token for the next
// requests.
func (c *Client) RewardsPage(ctx context.Context) (RewardsPage, error) {
	if c.state != StateAuthenticated {
		return RewardsPage{}, ErrNotAuthenticated
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get("/rewards")
	if err != nil {
		c.tel.ReportBroken(
			report_client_rewards_page,
			fmt.Errorf("fetch: %w", err),
		)
		return RewardsPage{}, err
	}
	err = checkStatus(res)
	if err != nil {
		return RewardsPage{}, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_rewards_page,
			fmt.Errorf("parse: %w", err),
		)
		return RewardsPage{}, err
	}
	page, err := ParseRewardsPage(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_rewards_page, err)
		return RewardsPage{}, fmt.Errorf("rewards page: %w", err)
	}

	c.csrfToken = page.CsrfToken
	return page, nil
}

// RewardForms looks up a code. A code the server refuses outright is returned
// as its Outcome.
func (c *Client) RewardForms(ctx context.Context, code string) ([]RewardForm, error) {
	if c.state != StateAuthenticated {
		return nil, ErrNotAuthenticated
	}

	c.tel.ReportDebug(report_client_reward_forms, code)

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("code", code).
		SetHeader("X-CSRF-Token", c.csrfToken).
		SetHeader("X-Requested-With", "XMLHttpRequest").
		Get("/entitlement_offer_codes")
	if err != nil {
		c.tel.ReportBroken(
			report_client_reward_forms,
			fmt.Errorf("fetch: %w", err),
			code,
		)
		return nil, err
	}
	err = checkStatus(res)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(res.String())
	if outcome, ok := lookupFailures[body]; ok {
		return nil, outcome
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		c.tel.ReportBroken(
			report_client_reward_forms,
			fmt.Errorf("parse: %w", err),
			code,
		)
		return nil, err
	}
	forms, err := ParseRewardForms(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_reward_forms, err, code)
		return nil, fmt.Errorf("reward forms: %w", err)
	}
	return forms, nil
}

// Submission is the answer to a submitted reward form, either a final status
// right away or a redemption page that has to be polled.
type Submission struct {
	Status *CodeRedemptionStatus
	Page   *CodeRedemptionPage
}

// Redeem submits a reward form and waits for the redemption to finish. When
// the server answers right away with a notice other than success, that notice
// is returned as an Outcome.
func (c *Client) Redeem(ctx context.Context, form RewardForm) (CodeRedemptionStatus, error) {
	submission, err := c.Submit(ctx, form)
	if err != nil {
		return CodeRedemptionStatus{}, err
	}
	if submission.Status != nil {
		return *submission.Status, nil
	}
	return c.Poll(ctx, *submission.Page)
}

// Submit posts a reward form without waiting for the redemption to finish.
func (c *Client) Submit(ctx context.Context, form RewardForm) (Submission, error) {
	if c.state != StateAuthenticated {
		return Submission{}, ErrNotAuthenticated
	}

	c.tel.ReportDebug(report_client_submit, form.Code, form.Service)

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(form.FormData()).
		Post("/code_redemptions")
	if err != nil {
		c.tel.ReportBroken(
			report_client_submit,
			fmt.Errorf("post form: %w", err),
			form.Code,
		)
		return Submission{}, err
	}
	err = checkStatus(res)
	if err != nil {
		return Submission{}, err
	}

	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_submit,
			fmt.Errorf("parse: %w", err),
			form.Code,
		)
		return Submission{}, err
	}

	landed := finalUrl(res)
	switch {
	case strings.HasPrefix(landed, c.urls.rewards):
		page, err := ParseRewardsPage(doc)
		if err != nil {
			c.tel.ReportBroken(report_client_submit, err, form.Code)
			return Submission{}, fmt.Errorf("rewards page: %w", err)
		}
		c.csrfToken = page.CsrfToken
		if page.AlertNotice == nil {
			c.tel.ReportBroken(report_client_submit, ErrMissingAlertNotice, form.Code)
			return Submission{}, ErrMissingAlertNotice
		}
		outcome := page.AlertNotice.Outcome()
		if outcome != OutcomeRedeemed {
			return Submission{}, outcome
		}
		status := redeemedStatus()
		return Submission{Status: &status}, nil
	case strings.HasPrefix(landed, c.urls.codeRedemptions):
		page, err := ParseCodeRedemptionPage(doc, c.baseUrl)
		if err != nil {
			c.tel.ReportBroken(report_client_submit, err, form.Code)
			return Submission{}, fmt.Errorf("code redemption page: %w", err)
		}
		return Submission{Page: &page}, nil
	}

	err = InvalidRedirectError{Url: landed}
	c.tel.ReportBroken(report_client_submit, err, form.Code)
	return Submission{}, err
}

func redeemedStatus() CodeRedemptionStatus {
	inProgress := false
	text := redeemedText
	return CodeRedemptionStatus{InProgress: &inProgress, Text: &text}
}

// Poll checks the status of a submitted redemption every poll interval until
// it is no longer in progress and returns the last status.
func (c *Client) Poll(ctx context.Context, page CodeRedemptionPage) (CodeRedemptionStatus, error) {
	if c.state != StateAuthenticated {
		return CodeRedemptionStatus{}, ErrNotAuthenticated
	}

	for attempt := 1; ; attempt++ {
		res, err := c.http.R().
			SetContext(ctx).
			SetHeader("X-CSRF-Token", page.CsrfToken).
			SetHeader("X-Requested-With", "XMLHttpRequest").
			SetHeader("accept", "application/json").
			Get(page.CheckRedemptionStatusUrl)
		if err != nil {
			c.tel.ReportBroken(
				report_client_poll,
				fmt.Errorf("fetch: %w", err),
				page.CheckRedemptionStatusUrl,
			)
			return CodeRedemptionStatus{}, err
		}
		err = checkStatus(res)
		if err != nil {
			return CodeRedemptionStatus{}, err
		}

		var status CodeRedemptionStatus
		err = json.Unmarshal(res.Body(), &status)
		if err != nil {
			c.tel.ReportBroken(
				report_client_poll,
				fmt.Errorf("unmarshal json: %w", err),
				page.CheckRedemptionStatusUrl,
			)
			return CodeRedemptionStatus{}, err
		}

		c.tel.ReportDebug(report_client_poll, attempt, status.IsInProgress())
		if !status.IsInProgress() {
			return status, nil
		}

		err = c.time.Sleep(ctx, c.pollInterval)
		if err != nil {
			return CodeRedemptionStatus{}, err
		}
	}
}
