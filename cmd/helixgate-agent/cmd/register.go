package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"helixgate.io/models"
	"helixgate.io/sdk"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register this node with the authority",
	Long: `Register the node's identity with the authority.

The authority canonicalizes the identity, derives the node's token for
the current epoch, and returns the node ID together with the token.
Keep the node ID: it is the handle for all later verification calls.
The token itself never needs storing, since the agent re-derives it
from the identity and epoch on demand.`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	addIdentityFlags(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	id, err := localIdentity()
	if err != nil {
		return err
	}

	client, err := sdk.NewClient(sdk.ClientConfig{BaseURLs: []string{serverURL}})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Register(ctx, models.RegisterRequest{
		Addr:     id.Addr,
		MAC:      id.MAC,
		Hostname: id.Hostname,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("Node ID: %s\n", resp.NodeID)
	fmt.Printf("Token:   %s\n", resp.Token)
	fmt.Printf("Epoch:   %d\n", resp.Epoch)
	return nil
}
