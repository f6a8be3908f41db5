package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"helixgate.io/internal/rotation"
	"helixgate.io/pkg/identity"
)

// osHostname is swapped out in tests.
var osHostname = os.Hostname

var (
	// Version information (set at build time via ldflags)
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Flags shared by the identity-bearing commands.
var (
	serverURL string
	nodeAddr  string
	nodeMAC   string
	nodeHost  string
	reference string
	period    time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "helixgate-agent",
	Short: "HelixGate - node-side agent for the token authority",
	Long: `HelixGate agent runs on a node and talks to the authority.

The agent derives the node's token locally from its identity
(address, hardware address, hostname) and the current rotation
epoch, so the token itself never travels except when presented
for verification.

Commands:
  register     Register this node with the authority
  verify       Derive the current token and present it for verification
  fingerprint  Print content tokens for local files`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080",
		"Authority base URL")
}

// addIdentityFlags registers the node identity flags on a command.
func addIdentityFlags(c *cobra.Command) {
	c.Flags().StringVar(&nodeAddr, "addr", "", "Node IPv4 address (required)")
	c.Flags().StringVar(&nodeMAC, "mac", "", "Node hardware address (required)")
	c.Flags().StringVar(&nodeHost, "hostname", "", "Node hostname (defaults to the OS hostname)")
	c.MarkFlagRequired("addr")
	c.MarkFlagRequired("mac")
}

// addRotationFlags registers the rotation policy flags on a command.
// The values must match the authority's configuration or the derived
// epoch will disagree with the server's.
func addRotationFlags(c *cobra.Command) {
	c.Flags().StringVar(&reference, "reference", "2025-01-01T00:00:00Z",
		"RFC 3339 instant epoch zero begins at")
	c.Flags().DurationVar(&period, "rotation-period", rotation.DefaultPeriod,
		"Duration of one rotation epoch")
}

// localIdentity assembles the node identity from flags, falling back to the
// OS hostname when none was given.
func localIdentity() (identity.NodeIdentity, error) {
	host := nodeHost
	if host == "" {
		detected, err := osHostname()
		if err != nil {
			return identity.NodeIdentity{}, fmt.Errorf("failed to detect hostname: %w", err)
		}
		host = detected
	}

	return identity.NodeIdentity{
		Addr:     nodeAddr,
		MAC:      nodeMAC,
		Hostname: host,
	}, nil
}

// rotationPolicy assembles the rotation policy from flags.
func rotationPolicy() (rotation.Policy, error) {
	ref, err := time.Parse(time.RFC3339, reference)
	if err != nil {
		return rotation.Policy{}, fmt.Errorf("invalid reference instant: %w", err)
	}

	policy := rotation.Policy{Reference: ref, Period: period}
	if err := policy.Validate(); err != nil {
		return rotation.Policy{}, err
	}
	return policy, nil
}

// versionString returns formatted version information
func versionString() string {
	return fmt.Sprintf("HelixGate agent %s (commit: %s, built: %s)",
		Version, Commit, BuildDate)
}
