package commands

import (
	"fmt"
	"io"
	"shift-redeemer/internal/redeem"
	"shift-redeemer/internal/scrapers/orcz"
	"shift-redeemer/internal/scrapers/shift"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	noticeColor  = color.New(color.FgYellow)
	failureColor = color.New(color.FgRed)
	headingColor = color.New(color.FgCyan, color.Bold)
)

func codeCell(code orcz.Code) string {
	if code.IsExpired() {
		return code.Text + " (expired)"
	}
	return code.Text
}

// renderCodes prints the records of a code table, without `all` records that
// only have expired codes are left out. It returns how many rows were printed.
func renderCodes(w io.Writer, game orcz.Game, records []orcz.ShiftCode, all bool) int {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(game.String())

	header := table.Row{"Source", "Issued", "Rewards"}
	if game.PlatformUnified() {
		header = append(header, "Code")
	} else {
		for _, p := range orcz.Platforms {
			header = append(header, p.String())
		}
	}
	t.AppendHeader(header)

	rows := 0
	for _, record := range records {
		if _, _, ok := record.FirstValid(); !ok && !all {
			continue
		}
		row := table.Row{record.Source, record.IssueDate.String(), record.Rewards}
		if game.PlatformUnified() {
			row = append(row, codeCell(record.Code(orcz.PlatformPC)))
		} else {
			for _, p := range orcz.Platforms {
				row = append(row, codeCell(record.Code(p)))
			}
		}
		t.AppendRow(row)
		rows++
	}

	t.Render()
	return rows
}

func printAccount(w io.Writer, account shift.AccountPage) {
	successColor.Fprintln(w, "Logged in!")
	fmt.Fprintf(w, "Email: %s\n", account.Email)
	fmt.Fprintf(w, "Display Name: %s\n", account.DisplayName)
	fmt.Fprintf(w, "First Name: %s\n", account.FirstName)
	fmt.Fprintln(w)
}

func printCandidate(w io.Writer, candidate redeem.Candidate) {
	headingColor.Fprintf(w, "Code: %s\n", candidate.Code.Text)
	fmt.Fprintf(w, "Platform: %s\n", candidate.Platform)
	fmt.Fprintf(w, "Reward: %s\n", candidate.Record.Rewards)
	fmt.Fprintf(w, "Issue Date: %s\n", candidate.Record.IssueDate)
	fmt.Fprintf(w, "Source: %s\n", candidate.Record.Source)
	fmt.Fprintln(w)
}

func outcomeColor(outcome shift.Outcome) *color.Color {
	switch outcome {
	case shift.OutcomeRedeemed:
		return successColor
	case shift.OutcomeAlreadyRedeemed, shift.OutcomeLaunchGame:
		return noticeColor
	}
	return failureColor
}

// printCodeResult prints what happened to each platform a code was redeemed
// on, or why none could be tried.
func printCodeResult(w io.Writer, code string, forms []redeem.FormResult, err error) {
	if err != nil {
		if outcome, ok := shift.AsOutcome(err); ok {
			outcomeColor(outcome).Fprintf(w, "%s: %s\n", code, outcome)
			return
		}
		failureColor.Fprintf(w, "%s: %v\n", code, err)
		return
	}

	for _, form := range forms {
		label := form.Form.Service
		if form.Form.Title != "" {
			label = fmt.Sprintf("%s (%s)", form.Form.Service, form.Form.Title)
		}
		if form.Err != nil {
			failureColor.Fprintf(w, "%s on %s: %v\n", code, label, form.Err)
			continue
		}
		message := form.Message
		if message == "" {
			message = form.Outcome.String()
		}
		outcomeColor(form.Outcome).Fprintf(w, "%s on %s: %s\n", code, label, message)
	}
}

// eventPrinter reports the slow parts of a redemption as they happen.
func eventPrinter(w io.Writer, backoff string) redeem.Observer {
	return func(e redeem.Event) {
		switch e.State {
		case redeem.StateBackingOff:
			noticeColor.Fprintf(w, "Rate limited, backing off for %s...\n", backoff)
		case redeem.StatePolling:
			fmt.Fprintf(w, "Waiting for %s to finish redeeming %s...\n", e.Service, e.Code)
		}
	}
}
