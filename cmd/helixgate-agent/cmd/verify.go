package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"helixgate.io/pkg/dna"
	"helixgate.io/pkg/identity"
	"helixgate.io/sdk"
)

var (
	verifyNodeID string
	tokenLength  int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Derive the current token and present it for verification",
	Long: `Derive this node's token locally and present it to the authority.

The token is computed from the node identity and the current rotation
epoch, exactly as the authority computes its side. The rotation flags
(--reference, --rotation-period) and --token-length must match the
authority's configuration, otherwise the derived token will disagree.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	addIdentityFlags(verifyCmd)
	addRotationFlags(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyNodeID, "node-id", "",
		"Node ID returned at registration (derived from identity if omitted)")
	verifyCmd.Flags().IntVar(&tokenLength, "token-length", dna.DefaultLength,
		"Token length in symbols")
}

func runVerify(cmd *cobra.Command, args []string) error {
	id, err := localIdentity()
	if err != nil {
		return err
	}

	policy, err := rotationPolicy()
	if err != nil {
		return err
	}

	token, nodeID, epoch, err := deriveToken(id, policy.EpochOf(time.Now().UTC()), tokenLength)
	if err != nil {
		return err
	}
	if verifyNodeID != "" {
		nodeID = verifyNodeID
	}

	client, err := sdk.NewClient(sdk.ClientConfig{BaseURLs: []string{serverURL}})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Verify(ctx, nodeID, token)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Printf("Verified: %t\n", resp.Verified)
	fmt.Printf("Epoch:    %d (derived for %d)\n", resp.Epoch, epoch)
	return nil
}

// deriveToken computes the node's token for the given epoch.
func deriveToken(id identity.NodeIdentity, epoch int64, length int) (token, nodeID string, outEpoch int64, err error) {
	canon, err := id.Canonicalize()
	if err != nil {
		return "", "", 0, err
	}
	nodeID, err = id.NodeID()
	if err != nil {
		return "", "", 0, err
	}

	token, err = dna.Encode(identity.Salt(canon, epoch), length)
	if err != nil {
		return "", "", 0, err
	}
	return token, nodeID, epoch, nil
}
