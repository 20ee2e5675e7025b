// Package client provides commands for calling a running dice gRPC service
package client

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"
)

var (
	// Connection flags
	serverAddr string
	timeout    time.Duration
	jsonOutput bool
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for the dice service",
	Long:  `Client commands make real gRPC requests against a running active-defence server.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	ClientCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print responses as JSON")

	ClientCmd.AddCommand(rollDiceCmd)
	ClientCmd.AddCommand(getRollSessionCmd)
	ClientCmd.AddCommand(clearRollSessionCmd)
}

// createDiceClient creates a dice service client
func createDiceClient() (apiv1alpha1.DiceServiceClient, func(), error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	return apiv1alpha1.NewDiceServiceClient(conn), cleanup, nil
}

func printJSON(msg proto.Message) error {
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

func printRolls(rolls []*apiv1alpha1.DiceRoll) {
	for i, roll := range rolls {
		fmt.Printf("\nRoll %d:\n", i+1)
		fmt.Printf("  Roll ID: %s\n", roll.GetRollId())
		fmt.Printf("  Notation: %s\n", roll.GetNotation())
		fmt.Printf("  Kept Dice: %v\n", roll.GetDice())
		if len(roll.GetDropped()) > 0 {
			fmt.Printf("  Dropped: %v\n", roll.GetDropped())
		}
		fmt.Printf("  Dice Total: %d\n", roll.GetDiceTotal())
		if roll.GetModifier() != 0 {
			fmt.Printf("  Modifier: %+d\n", roll.GetModifier())
		}
		fmt.Printf("  Total: %d\n", roll.GetTotal())
		if roll.GetDescription() != "" {
			fmt.Printf("  Description: %s\n", roll.GetDescription())
		}
	}
}
