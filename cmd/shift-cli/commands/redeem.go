package commands

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"shift-redeemer/internal/redeem"
	"shift-redeemer/internal/scrapers/orcz"
	"shift-redeemer/internal/scrapers/shift"
	"shift-redeemer/lib/serviceutil"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const (
	modeManual = "manual"
	modeAuto   = "auto"
)

var (
	redeemMode *string
	redeemGame *string
	redeemYes  *bool
)

func init() {
	redeemMode = redeemCmd.Flags().String("mode", "", "Skip the mode prompt, either manual or auto.")
	redeemGame = redeemCmd.Flags().StringP("game", "g", "", "Skip the game prompt in auto mode (bl, bl2, blps, bl3).")
	redeemYes = redeemCmd.Flags().BoolP("yes", "y", false, "Redeem every code in auto mode without asking.")
	rootCmd.AddCommand(redeemCmd)
}

var redeemCmd = &cobra.Command{
	Use:   "redeem [--mode manual|auto] [--game <name>] [--yes]",
	Short: "Logs into SHiFT and redeems codes typed in or taken from orcz.com.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client, account := login(ctx)
		printAccount(os.Stdout, account)

		redeemer := redeem.NewRedeemer(client, redeem.Options{
			Backoff:  env.config.Shift.backoff(),
			Observer: eventPrinter(os.Stdout, env.config.Shift.backoff().String()),
		}, env.tel)
		err := redeemer.Prepare(ctx)
		if err != nil {
			serviceutil.Fatal("failed to get rewards page", err)
		}

		mode := *redeemMode
		if mode == "" {
			mode, err = promptMode()
			if err != nil {
				return
			}
		}

		switch mode {
		case modeManual:
			manualLoop(ctx, redeemer)
		case modeAuto:
			autoLoop(ctx, redeemer)
		default:
			serviceutil.Fatal("invalid mode", fmt.Errorf("%q is not one of %s, %s", mode, modeManual, modeAuto))
		}
	},
}

func validateEmail(input string) error {
	_, err := mail.ParseAddress(strings.TrimSpace(input))
	if err != nil {
		return errors.New("not an email address")
	}
	return nil
}

func promptCredentials() (shift.Credentials, error) {
	email, err := (&promptui.Prompt{
		Label:    "Email",
		Validate: validateEmail,
	}).Run()
	if err != nil {
		return shift.Credentials{}, err
	}
	password, err := (&promptui.Prompt{
		Label: "Password",
		Mask:  '*',
	}).Run()
	if err != nil {
		return shift.Credentials{}, err
	}
	return shift.Credentials{
		Email:    strings.TrimSpace(email),
		Password: strings.TrimSpace(password),
	}, nil
}

// login asks for credentials until the login succeeds, credentials are never
// stored.
func login(ctx context.Context) (*shift.Client, shift.AccountPage) {
	for {
		credentials, err := promptCredentials()
		if err != nil {
			serviceutil.Fatal("failed to read credentials", err)
		}

		client, err := shift.NewClient(credentials, env.config.Shift.clientOptions(env.dump), env.tel)
		if err != nil {
			serviceutil.Fatal("failed to create shift client", err)
		}

		account, err := client.Login(ctx)
		if err == nil {
			return client, account
		}
		if ctx.Err() != nil {
			serviceutil.Fatal("login cancelled", ctx.Err())
		}
		failureColor.Fprintf(os.Stderr, "Login failed: %v\n\n", err)
	}
}

func promptMode() (string, error) {
	_, mode, err := (&promptui.Select{
		Label: "Mode",
		Items: []string{modeManual, modeAuto},
	}).Run()
	return mode, err
}

func manualLoop(ctx context.Context, redeemer *redeem.Redeemer) {
	for ctx.Err() == nil {
		code, err := (&promptui.Prompt{
			Label: "SHiFT code (exit to quit)",
		}).Run()
		if err != nil {
			return
		}

		code = strings.TrimSpace(code)
		if strings.EqualFold(code, "exit") {
			fmt.Println("Exiting...")
			return
		}
		if code == "" {
			continue
		}

		forms, err := redeemer.RedeemCode(ctx, code)
		printCodeResult(os.Stdout, code, forms, err)
		fmt.Println()
	}
}

func promptGame() (orcz.Game, error) {
	items := make([]string, len(orcz.Games))
	for i, g := range orcz.Games {
		items[i] = fmt.Sprintf("%s (%s)", g, g.ShortName())
	}
	i, _, err := (&promptui.Select{
		Label: "Game",
		Items: items,
	}).Run()
	if err != nil {
		return 0, err
	}
	return orcz.Games[i], nil
}

// confirm returns false when the user declines, an error means the user wants
// to stop altogether.
func confirm(label string) (bool, error) {
	_, err := (&promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}).Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func autoLoop(ctx context.Context, redeemer *redeem.Redeemer) {
	var game orcz.Game
	var err error
	if *redeemGame != "" {
		game, err = orcz.GameFromName(*redeemGame)
		if err != nil {
			serviceutil.Fatal("invalid game", err)
		}
	} else {
		game, err = promptGame()
		if err != nil {
			return
		}
	}
	fmt.Printf("Targeting game: %s\n\n", game)

	records, err := newOrczClient().ShiftCodes(ctx, game)
	if err != nil {
		failureColor.Fprintf(os.Stderr, "Failed to get shift codes: %v\n", err)
		return
	}

	candidates := redeem.CandidateCodes(records)
	codes := make([]string, len(candidates))
	for i, candidate := range candidates {
		codes[i] = candidate.Code.Text
	}

	pick := func(i int) (bool, error) {
		printCandidate(os.Stdout, candidates[i])
		if !*redeemYes {
			ok, err := confirm("Redeem this code")
			if err != nil {
				return false, err
			}
			if !ok {
				fmt.Println()
				return false, nil
			}
		}
		fmt.Println("Redeeming code...")
		return true, nil
	}
	done := func(result redeem.Result) {
		printCodeResult(os.Stdout, result.Code, result.Forms, result.Err)
		fmt.Println()
	}

	results := redeemer.RedeemAll(ctx, codes, pick, done)
	fmt.Printf("Redeemed %d of %d codes\n", redeem.CountRedeemed(results), len(candidates))
}
