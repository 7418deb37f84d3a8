// Package redeem drives a logged in shift client through redeeming codes, it
// backs off when the server rate limits and keeps going when a code fails.
package redeem

import (
	"context"
	"errors"
	"fmt"
	"shift-redeemer/internal/components/assert"
	"shift-redeemer/internal/components/chrono"
	"shift-redeemer/internal/components/telemetry"
	"shift-redeemer/internal/scrapers/orcz"
	"shift-redeemer/internal/scrapers/shift"
	"time"
)

const DefaultBackoff = time.Minute

const (
	report_redeemer_backoff     = "redeemer.backoff"
	report_redeemer_redeem_code = "redeemer.redeem-code"
	report_redeemer_redeem_all  = "redeemer.redeem-all"
)

// ErrNoForms is returned for a code the server knows but offers no platform
// to redeem it on.
var ErrNoForms = errors.New("no reward forms for code")

// Client is the part of shift.Client the redeemer depends on.
type Client interface {
	RewardsPage(ctx context.Context) (shift.RewardsPage, error)
	RewardForms(ctx context.Context, code string) ([]shift.RewardForm, error)
	Submit(ctx context.Context, form shift.RewardForm) (shift.Submission, error)
	Poll(ctx context.Context, page shift.CodeRedemptionPage) (shift.CodeRedemptionStatus, error)
}

// State is the progress of a single code.
type State int

const (
	StateFetchingForms State = iota
	StateFormsFetched
	StateSubmitting
	StatePolling
	StateBackingOff
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFetchingForms:
		return "fetching forms"
	case StateFormsFetched:
		return "forms fetched"
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	case StateBackingOff:
		return "backing off"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event is a state transition of a code, Service is empty until a form is
// being redeemed.
type Event struct {
	Code    string
	Service string
	State   State
	Err     error
}

type Observer func(Event)

// FormResult is the end of redeeming one reward form. Err is set when the form
// could not be redeemed for a reason other than a classified Outcome.
type FormResult struct {
	Form    shift.RewardForm
	Outcome shift.Outcome
	Message string
	Err     error
}

// Result is the end of redeeming one code. Err is set when no form could be
// tried at all, it is a shift.Outcome when the server refused the code.
type Result struct {
	Code  string
	Forms []FormResult
	Err   error
}

type Options struct {
	// Backoff is the wait after a "too many requests" response, it defaults to
	// DefaultBackoff.
	Backoff  time.Duration
	Time     chrono.TimeAPI
	Observer Observer
}

type Redeemer struct {
	client   Client
	backoff  time.Duration
	time     chrono.TimeAPI
	observer Observer
	tel      telemetry.API
}

func NewRedeemer(client Client, opts Options, tel telemetry.API) *Redeemer {
	assert.NotNil(client)
	assert.NotNil(tel)

	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Time == nil {
		opts.Time = chrono.StandardImpl{}
	}

	return &Redeemer{
		client:   client,
		backoff:  opts.Backoff,
		time:     opts.Time,
		observer: opts.Observer,
		tel:      telemetry.NewScopedAPI("redeem", tel),
	}
}

func (r *Redeemer) observe(event Event) {
	if r.observer != nil {
		r.observer(event)
	}
}

// retry runs step again after the backoff for as long as it is rate limited.
func (r *Redeemer) retry(ctx context.Context, code, service string, step func() error) error {
	for {
		err := step()
		if !shift.IsTooManyRequests(err) {
			return err
		}

		r.tel.ReportWarning(report_redeemer_backoff, code, r.backoff.String())
		r.observe(Event{Code: code, Service: service, State: StateBackingOff, Err: err})

		err = r.time.Sleep(ctx, r.backoff)
		if err != nil {
			return err
		}
	}
}

// Prepare fetches the rewards page so the client holds a fresh token.
func (r *Redeemer) Prepare(ctx context.Context) error {
	return r.retry(ctx, "", "", func() error {
		_, err := r.client.RewardsPage(ctx)
		return err
	})
}

// RedeemCode redeems a code on every platform the server offers it for.
func (r *Redeemer) RedeemCode(ctx context.Context, code string) ([]FormResult, error) {
	r.observe(Event{Code: code, State: StateFetchingForms})

	var forms []shift.RewardForm
	err := r.retry(ctx, code, "", func() error {
		var err error
		forms, err = r.client.RewardForms(ctx, code)
		return err
	})
	if err == nil && len(forms) == 0 {
		err = ErrNoForms
	}
	if err != nil {
		if _, ok := shift.AsOutcome(err); !ok {
			r.tel.ReportWarning(report_redeemer_redeem_code, code, err)
		}
		r.observe(Event{Code: code, State: StateFailed, Err: err})
		return nil, err
	}
	r.observe(Event{Code: code, State: StateFormsFetched})

	results := make([]FormResult, 0, len(forms))
	for _, form := range forms {
		result := r.redeemForm(ctx, code, form)
		if result.Err != nil {
			r.tel.ReportWarning(report_redeemer_redeem_code, code, form.Service, result.Err)
			r.observe(Event{Code: code, Service: form.Service, State: StateFailed, Err: result.Err})
		} else {
			r.observe(Event{Code: code, Service: form.Service, State: StateCompleted})
		}
		results = append(results, result)

		if ctx.Err() != nil {
			break
		}
	}
	return results, nil
}

func (r *Redeemer) redeemForm(ctx context.Context, code string, form shift.RewardForm) FormResult {
	result := FormResult{Form: form}

	r.observe(Event{Code: code, Service: form.Service, State: StateSubmitting})

	var submission shift.Submission
	err := r.retry(ctx, code, form.Service, func() error {
		var err error
		submission, err = r.client.Submit(ctx, form)
		return err
	})
	if err != nil {
		return classify(result, err)
	}

	status := submission.Status
	if status == nil {
		r.observe(Event{Code: code, Service: form.Service, State: StatePolling})

		var polled shift.CodeRedemptionStatus
		err = r.retry(ctx, code, form.Service, func() error {
			var err error
			polled, err = r.client.Poll(ctx, *submission.Page)
			return err
		})
		if err != nil {
			return classify(result, err)
		}
		status = &polled
	}

	result.Message = status.Message()
	outcome, ok := status.Outcome()
	if !ok {
		// a finished redemption with a message we do not know is not a success
		outcome = shift.OutcomeRedeemFailed
	}
	result.Outcome = outcome
	return result
}

func classify(result FormResult, err error) FormResult {
	if outcome, ok := shift.AsOutcome(err); ok {
		result.Outcome = outcome
		result.Message = outcome.Error()
		return result
	}
	result.Err = err
	return result
}

// Redeemed reports whether the code was redeemed on at least one platform.
func (r Result) Redeemed() bool {
	for _, form := range r.Forms {
		if form.Err == nil && form.Outcome.Success() {
			return true
		}
	}
	return false
}

// CountRedeemed is the number of results that redeemed on at least one
// platform.
func CountRedeemed(results []Result) int {
	count := 0
	for _, result := range results {
		if result.Redeemed() {
			count++
		}
	}
	return count
}

// Pick is asked before the code at `index` is redeemed. Returning false skips
// the code, an error ends the run.
type Pick func(index int) (bool, error)

// RedeemAll redeems every code in order and passes each result to `done` as
// soon as it is known. A failing code never stops the run, only a cancelled
// context or an error from `pick` does. `pick` and `done` can be nil.
func (r *Redeemer) RedeemAll(ctx context.Context, codes []string, pick Pick, done func(Result)) []Result {
	results := make([]Result, 0, len(codes))
	for i, code := range codes {
		if ctx.Err() != nil {
			break
		}
		if pick != nil {
			ok, err := pick(i)
			if err != nil {
				break
			}
			if !ok {
				continue
			}
		}

		forms, err := r.RedeemCode(ctx, code)
		result := Result{Code: code, Forms: forms, Err: err}
		results = append(results, result)
		if done != nil {
			done(result)
		}
	}

	r.tel.ReportCount(report_redeemer_redeem_all, int64(CountRedeemed(results)))

	return results
}

// Candidate is a code picked from an orcz table for auto mode.
type Candidate struct {
	Record   orcz.ShiftCode
	Code     orcz.Code
	Platform orcz.Platform
}

// CandidateCodes picks the first valid code of every record, in table order.
// Records without a valid code are skipped.
func CandidateCodes(records []orcz.ShiftCode) []Candidate {
	var candidates []Candidate
	for _, record := range records {
		code, platform, ok := record.FirstValid()
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Record:   record,
			Code:     code,
			Platform: platform,
		})
	}
	return candidates
}
