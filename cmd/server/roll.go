package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/active-defence/internal/orchestrators/defence"
)

var rollFlags struct {
	actorID     string
	actorName   string
	armourClass int
	rollType    string
	rollMode    string
	modifier    string
	titleSuffix string
	requestedBy string
	gms         []string
	asJSON      bool
}

var rollCmd = &cobra.Command{
	Use:   "roll",
	Short: "Roll an active defence",
	Long: `Roll a d20 active defence for an actor and print the resolved roll.

The title is the configured chat name, joined to --title with " - ".
Self rolls (--mode selfroll) are whispered to the requesting --user, not to
the actor, so --user is required in that mode. GM modes whisper to every --gm.

Examples:

  roll --ac 15
  roll --ac 12 --type advantage --modifier "1d4+1"
  roll --ac 17 --type dis --mode blindroll --gm gm-1
  roll --ac 14 --mode selfroll --user player-2 --title Shield`,
	Args: cobra.NoArgs,
	RunE: runRoll,
}

func init() {
	f := rollCmd.Flags()
	f.StringVar(&rollFlags.actorID, "actor", "actor", "Actor ID the roll is recorded against")
	f.StringVar(&rollFlags.actorName, "name", "", "Actor display name")
	f.IntVar(&rollFlags.armourClass, "ac", 10, "Actor armour class")
	f.StringVar(&rollFlags.rollType, "type", "normal", "Roll type: normal, advantage or disadvantage")
	f.StringVar(&rollFlags.rollMode, "mode", "roll", "Roll mode: roll, gmroll, blindroll or selfroll")
	f.StringVar(&rollFlags.modifier, "modifier", "", "Situational modifier, e.g. 1d4+2")
	f.StringVar(&rollFlags.titleSuffix, "title", "", "Text appended to the roll title after \" - \"")
	f.StringVar(&rollFlags.requestedBy, "user", "", "Requesting user ID (receives selfroll whispers)")
	f.StringSliceVar(&rollFlags.gms, "gm", nil, "GM user IDs that receive whispered rolls")
	f.BoolVar(&rollFlags.asJSON, "json", false, "Print the result as JSON")
}

func runRoll(cmd *cobra.Command, _ []string) error {
	rollType, err := defence.ParseRollType(rollFlags.rollType)
	if err != nil {
		return err
	}
	rollMode, err := defence.ParseRollMode(rollFlags.rollMode)
	if err != nil {
		return err
	}

	b, err := newBackend(cmd.Context(), cfg, dice.DefaultRoller)
	if err != nil {
		return err
	}
	defer b.close()

	service, err := b.defenceService(cfg)
	if err != nil {
		return err
	}

	users := make([]defence.User, 0, len(rollFlags.gms)+1)
	for _, id := range rollFlags.gms {
		users = append(users, defence.User{ID: id, IsGM: true})
	}
	if rollFlags.requestedBy != "" {
		users = append(users, defence.User{ID: rollFlags.requestedBy})
	}

	output, err := service.RollDefence(cmd.Context(), &defence.RollDefenceInput{
		Actor: &defence.Actor{
			ID:          rollFlags.actorID,
			Name:        rollFlags.actorName,
			ArmourClass: rollFlags.armourClass,
		},
		RequestedBy: rollFlags.requestedBy,
		Users:       users,
		RollType:    rollType,
		RollMode:    rollMode,
		Modifier:    rollFlags.modifier,
		TitleSuffix: rollFlags.titleSuffix,
	})
	if err != nil {
		return err
	}

	if rollFlags.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	printDefence(output, rollType, rollMode)
	return nil
}

func printDefence(output *defence.RollDefenceOutput, rollType defence.RollType, rollMode defence.RollMode) {
	roll := output.Roll

	fmt.Printf("%s\n", output.Title)
	fmt.Printf("  Roll: %s (%s, %s)\n", roll.UsedExpression, rollType, rollMode.Label())
	if roll.DiscardedDie != nil {
		fmt.Printf("  d20: %d (discarded %d)\n", roll.AcceptedDie, *roll.DiscardedDie)
	} else {
		fmt.Printf("  d20: %d\n", roll.AcceptedDie)
	}
	fmt.Printf("  Defence: %d\n", roll.AcceptedTotal)
	if output.Modifier != "" {
		fmt.Printf("  Formula total: %d\n", roll.FormulaTotal)
	}
	if output.ModifierRejected {
		fmt.Printf("  Modifier %q was invalid and ignored\n", rollFlags.modifier)
	}
	if output.Outcome != defence.OutcomeNormal {
		fmt.Printf("  Outcome: %s\n", output.Outcome)
	}
	if len(output.Visibility.Whisper) > 0 {
		fmt.Printf("  Whisper: %s\n", strings.Join(output.Visibility.Whisper, ", "))
	}
	if output.Visibility.Blind {
		fmt.Printf("  Blind roll\n")
	}
	fmt.Printf("  Roll ID: %s\n", output.RollID)
}
