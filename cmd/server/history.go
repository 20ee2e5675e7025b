package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/active-defence/internal/errors"
	"github.com/KirkDiggler/active-defence/internal/orchestrators/defence"
)

var historyFlags struct {
	actorID string
	asJSON  bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show an actor's recorded defence rolls",
	Long: `Print the defence rolls recorded for an actor. History outlives the process
only when a Redis URL is configured.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFlags.actorID, "actor", "actor", "Actor ID to show history for")
	historyCmd.Flags().BoolVar(&historyFlags.asJSON, "json", false, "Print the session as JSON")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	b, err := newBackend(cmd.Context(), cfg, dice.DefaultRoller)
	if err != nil {
		return err
	}
	defer b.close()

	service, err := b.defenceService(cfg)
	if err != nil {
		return err
	}

	output, err := service.GetHistory(cmd.Context(), &defence.GetHistoryInput{
		ActorID: historyFlags.actorID,
	})
	if errors.IsNotFound(err) {
		fmt.Printf("No defence rolls recorded for %s\n", historyFlags.actorID)
		return nil
	}
	if err != nil {
		return err
	}

	if historyFlags.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(output.Session)
	}

	session := output.Session
	fmt.Printf("Defence history for %s (expires %s)\n",
		historyFlags.actorID, session.ExpiresAt.Format(time.DateTime))
	for _, roll := range session.Rolls {
		fmt.Printf("  %s  %s  d20 %v", roll.RollID, roll.Description, roll.Dice)
		if len(roll.Dropped) > 0 {
			fmt.Printf(" (discarded %v)", roll.Dropped)
		}
		fmt.Printf(" + AC %d = %d\n", roll.Modifier, roll.Total)
	}
	return nil
}
