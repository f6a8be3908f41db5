package cmd

import (
	"testing"

	"helixgate.io/pkg/dna"
	"helixgate.io/pkg/identity"
)

func TestDeriveToken(t *testing.T) {
	id := identity.NodeIdentity{
		Addr:     "10.0.0.5",
		MAC:      "aa:bb:cc:dd:ee:ff",
		Hostname: "worker-1",
	}

	token, nodeID, epoch, err := deriveToken(id, 3, 16)
	if err != nil {
		t.Fatalf("deriveToken failed: %v", err)
	}
	if epoch != 3 {
		t.Errorf("epoch = %d, want 3", epoch)
	}
	if len(token) != 16 || !dna.Valid(token) {
		t.Errorf("token = %q, want 16 ACTG symbols", token)
	}

	wantID, err := id.NodeID()
	if err != nil {
		t.Fatalf("NodeID failed: %v", err)
	}
	if nodeID != wantID {
		t.Errorf("node ID = %q, want %q", nodeID, wantID)
	}

	// Same identity and epoch always derive the same token.
	again, _, _, err := deriveToken(id, 3, 16)
	if err != nil {
		t.Fatalf("deriveToken failed: %v", err)
	}
	if again != token {
		t.Errorf("derivation not deterministic: %q vs %q", again, token)
	}

	// A different epoch derives a different token.
	other, _, _, err := deriveToken(id, 4, 16)
	if err != nil {
		t.Fatalf("deriveToken failed: %v", err)
	}
	if other == token {
		t.Error("expected different tokens for different epochs")
	}
}

func TestDeriveTokenInvalidIdentity(t *testing.T) {
	_, _, _, err := deriveToken(identity.NodeIdentity{
		Addr: "not-an-ip", MAC: "aa:bb:cc:dd:ee:ff", Hostname: "worker-1",
	}, 0, 16)
	if err == nil {
		t.Fatal("expected error for malformed identity")
	}
}
