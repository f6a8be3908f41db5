// Package identity captures and canonicalizes node identity attributes.
//
// A node is identified by its network address, hardware identifier, and
// hostname. Canonicalization (trimming, case folding, MAC normalization,
// fixed field order) guarantees that the same physical node always yields the
// same identity bytes regardless of how the attributes were written, which in
// turn makes token derivation deterministic.
package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net"
	"strings"

	"helixgate.io/models"
)

// Delimiter separates the canonical identity fields. Attributes containing
// it are rejected, so the canonical form is unambiguous.
const Delimiter = "|"

// NodeIdentity holds the raw identity attributes a node presents when
// registering. Attributes are immutable once captured for a registration
// attempt; normalization happens in Canonicalize.
type NodeIdentity struct {
	// Addr is the node's IPv4 address (e.g., "10.0.0.5").
	Addr string `json:"addr"`

	// MAC is the node's hardware address. Accepted forms:
	// aa:bb:cc:dd:ee:ff, aabb.ccdd.eeff, or 12 bare hex digits.
	MAC string `json:"mac"`

	// Hostname is the node's hostname (1-255 characters).
	Hostname string `json:"hostname"`
}

// Canonicalize validates and normalizes the identity, returning its
// canonical byte form: "addr|mac|hostname" with each field trimmed,
// lowercased, and the MAC rewritten as colon-separated hex.
//
// Returns models.ErrInvalidIdentity (wrapped with the offending attribute)
// when the address is not IPv4, the MAC does not match any accepted form, or
// the hostname is empty, too long, or contains the delimiter.
func (id NodeIdentity) Canonicalize() ([]byte, error) {
	addr, err := normalizeAddr(id.Addr)
	if err != nil {
		return nil, err
	}
	mac, err := normalizeMAC(id.MAC)
	if err != nil {
		return nil, err
	}
	host, err := normalizeHostname(id.Hostname)
	if err != nil {
		return nil, err
	}
	return []byte(addr + Delimiter + mac + Delimiter + host), nil
}

// NodeID derives the stable node key: the hex SHA-256 of the canonical
// identity bytes. The key is epoch-independent, so a node keeps its ID
// across rotations.
func (id NodeIdentity) NodeID() (string, error) {
	canon, err := id.Canonicalize()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// Salt appends the epoch to canonical identity bytes as a fixed-width
// big-endian integer. The same identity at two different epochs therefore
// produces different codec input even though the codec itself is stateless.
func Salt(canon []byte, epoch int64) []byte {
	salted := make([]byte, 0, len(canon)+len(Delimiter)+8)
	salted = append(salted, canon...)
	salted = append(salted, Delimiter...)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(epoch))
	return append(salted, buf[:]...)
}

func normalizeAddr(addr string) (string, error) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	parsed := net.ParseIP(addr)
	if parsed == nil || parsed.To4() == nil {
		return "", fmt.Errorf("%w: address %q is not IPv4", models.ErrInvalidIdentity, addr)
	}
	return parsed.To4().String(), nil
}

// normalizeMAC accepts colon-separated, dot-separated, and bare hex forms
// and rewrites them all as lowercase aa:bb:cc:dd:ee:ff.
func normalizeMAC(mac string) (string, error) {
	raw := strings.ToLower(strings.TrimSpace(mac))
	stripped := strings.NewReplacer(":", "", ".", "").Replace(raw)
	if len(stripped) != 12 {
		return "", fmt.Errorf("%w: hardware address %q", models.ErrInvalidIdentity, mac)
	}
	if _, err := hex.DecodeString(stripped); err != nil {
		return "", fmt.Errorf("%w: hardware address %q", models.ErrInvalidIdentity, mac)
	}

	var b strings.Builder
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(stripped[i : i+2])
	}
	return b.String(), nil
}

func normalizeHostname(host string) (string, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || len(host) > 255 {
		return "", fmt.Errorf("%w: hostname length %d", models.ErrInvalidIdentity, len(host))
	}
	if strings.Contains(host, Delimiter) {
		return "", fmt.Errorf("%w: hostname contains %q", models.ErrInvalidIdentity, Delimiter)
	}
	return host, nil
}
