package shift

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrIncorrectEmailOrPassword is returned when the login bounces back to the
	// unauthenticated home page.
	ErrIncorrectEmailOrPassword = errors.New("incorrect email or password")
	ErrNotAuthenticated         = errors.New("not logged in")

	// ErrMissingAlertNotice is returned when a redemption redirects to the rewards
	// page without telling what happened.
	ErrMissingAlertNotice = errors.New("missing alert notice")

	ErrMissingCsrfToken             = errors.New("missing csrf token")
	ErrMissingEmail                 = errors.New("missing email")
	ErrMissingDisplayName           = errors.New("missing display name")
	ErrMissingFirstName             = errors.New("missing first name")
	ErrMissingCheckRedemptionStatus = errors.New("missing check redemption status url")
	ErrMissingAlertNoticeText       = errors.New("missing alert notice text")
	ErrMissingUtf8                  = errors.New("missing utf8")
	ErrMissingAuthenticityToken     = errors.New("missing authenticity token")
	ErrMissingCode                  = errors.New("missing code")
	ErrMissingCheck                 = errors.New("missing check")
	ErrMissingService               = errors.New("missing service")
	ErrMissingTitle                 = errors.New("missing title")
	ErrMissingCommit                = errors.New("missing commit")
)

// InvalidRedirectError is returned when a request ends up on a page that the
// protocol does not expect, which usually means the site changed.
type InvalidRedirectError struct {
	Url string
}

func (e InvalidRedirectError) Error() string {
	return fmt.Sprintf("invalid redirect to %q", e.Url)
}

// UnknownAlertNoticeError is returned for alert notice text that is none of the
// known messages.
type UnknownAlertNoticeError struct {
	Text string
}

func (e UnknownAlertNoticeError) Error() string {
	return fmt.Sprintf("unknown alert notice %q", e.Text)
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Url        string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.Url)
}

// IsTooManyRequests reports whether err is the server rate limiting us.
func IsTooManyRequests(err error) bool {
	var statusErr StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusTooManyRequests
}

// Outcome is the final, successfully classified result of redeeming a code.
// It implements error so that it travels the same return path as failures, use
// errors.As to tell it apart from them.
type Outcome int

const (
	OutcomeRedeemed Outcome = iota
	OutcomeAlreadyRedeemed
	OutcomeLaunchGame
	OutcomeRedeemFailed
	OutcomeExpired
	OutcomeNonExistent
	OutcomeUnavailable
)

func (o Outcome) Error() string {
	switch o {
	case OutcomeRedeemed:
		return "shift code redeemed"
	case OutcomeAlreadyRedeemed:
		return "shift code already redeemed"
	case OutcomeLaunchGame:
		return "launch a shift game to redeem the code"
	case OutcomeRedeemFailed:
		return "failed to redeem shift code"
	case OutcomeExpired:
		return "expired shift code"
	case OutcomeNonExistent:
		return "non-existent shift code"
	case OutcomeUnavailable:
		return "unavailable shift code"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

func (o Outcome) String() string {
	return o.Error()
}

// Success reports whether the code ended up on the account.
func (o Outcome) Success() bool {
	return o == OutcomeRedeemed
}

// AsOutcome extracts the Outcome carried by err, if any.
func AsOutcome(err error) (Outcome, bool) {
	var outcome Outcome
	if errors.As(err, &outcome) {
		return outcome, true
	}
	return 0, false
}
