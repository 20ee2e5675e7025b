package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"
)

var getRollSessionCmd = &cobra.Command{
	Use:   "get-roll-session [entity-id] [context]",
	Short: "Get an existing dice roll session",
	Long: `Retrieve all dice rolls for an entity and context. Examples:

  get-roll-session char-123 attack
  get-roll-session actor-7 active_defence`,
	Args: cobra.ExactArgs(2),
	RunE: getRollSession,
}

var clearRollSessionCmd = &cobra.Command{
	Use:   "clear-roll-session [entity-id] [context]",
	Short: "Delete a dice roll session",
	Args:  cobra.ExactArgs(2),
	RunE:  clearRollSession,
}

func getRollSession(_ *cobra.Command, args []string) error {
	client, cleanup, err := createDiceClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.GetRollSession(ctx, &apiv1alpha1.GetRollSessionRequest{
		EntityId: args[0],
		Context:  args[1],
	})
	if err != nil {
		return fmt.Errorf("failed to get roll session: %w", err)
	}

	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Printf("Roll session for %s (context: %s)\n", args[0], args[1])
	fmt.Printf("Created: %s\n", time.Unix(resp.GetCreatedAt(), 0).Format(time.DateTime))
	fmt.Printf("Expires: %s\n", time.Unix(resp.GetExpiresAt(), 0).Format(time.DateTime))
	fmt.Printf("Total Rolls: %d\n", len(resp.GetRolls()))
	printRolls(resp.GetRolls())

	return nil
}

func clearRollSession(_ *cobra.Command, args []string) error {
	client, cleanup, err := createDiceClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.ClearRollSession(ctx, &apiv1alpha1.ClearRollSessionRequest{
		EntityId: args[0],
		Context:  args[1],
	})
	if err != nil {
		return fmt.Errorf("failed to clear roll session: %w", err)
	}

	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Printf("%s (%d rolls cleared)\n", resp.GetMessage(), resp.GetRollsCleared())
	return nil
}
