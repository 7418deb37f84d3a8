package commands

import (
	"fmt"
	"os"
	"shift-redeemer/internal/scrapers/orcz"
	"shift-redeemer/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	codesGame *string
	codesAll  *bool
)

func init() {
	codesGame = codesCmd.Flags().StringP("game", "g", "bl3", "The game to list codes for (bl, bl2, blps, bl3).")
	codesAll = codesCmd.Flags().Bool("all", false, "Also list codes that have expired on every platform.")
	rootCmd.AddCommand(codesCmd)
}

func newOrczClient() *orcz.Client {
	opts, err := env.config.Orcz.clientOptions(env.dump)
	if err != nil {
		serviceutil.Fatal("invalid orcz config", err)
	}
	return orcz.NewClient(opts, env.tel)
}

var codesCmd = &cobra.Command{
	Use:   "codes [--game <name>] [--all]",
	Short: "Lists the SHiFT codes orcz.com has for a game.",
	Run: func(cmd *cobra.Command, args []string) {
		game, err := orcz.GameFromName(*codesGame)
		if err != nil {
			serviceutil.Fatal("invalid game", err)
		}

		records, err := newOrczClient().ShiftCodes(cmd.Context(), game)
		if err != nil {
			serviceutil.Fatal("failed to get shift codes", err)
		}

		rows := renderCodes(os.Stdout, game, records, *codesAll)
		fmt.Printf("%d of %d codes shown\n", rows, len(records))
	},
}
