package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"
)

var rollDescription string

var rollDiceCmd = &cobra.Command{
	Use:   "roll-dice [notation] [entity-id] [context]",
	Short: "Roll dice using dice notation",
	Long: `Roll a formula and print the session. Examples:

  roll-dice 1d20+5 char-123 attack
  roll-dice 2d20kh char-456 defence
  roll-dice "4d6kh3" char-789 ability-scores`,
	Args: cobra.ExactArgs(3),
	RunE: rollDice,
}

func init() {
	rollDiceCmd.Flags().StringVar(&rollDescription, "description", "", "Description stored with the roll")
}

func rollDice(_ *cobra.Command, args []string) error {
	notation := args[0]
	entityID := args[1]
	rollContext := args[2]

	client, cleanup, err := createDiceClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.RollDice(ctx, &apiv1alpha1.RollDiceRequest{
		EntityId:            entityID,
		Context:             rollContext,
		Notation:            notation,
		ModifierDescription: rollDescription,
	})
	if err != nil {
		return fmt.Errorf("failed to roll dice: %w", err)
	}

	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Printf("Rolled %s for entity %s (context: %s)\n", notation, entityID, rollContext)
	printRolls(resp.GetRolls())
	fmt.Printf("\nSession expires: %s\n", time.Unix(resp.GetExpiresAt(), 0).Format(time.DateTime))
	fmt.Printf("Total rolls in session: %d\n", len(resp.GetRolls()))

	return nil
}
