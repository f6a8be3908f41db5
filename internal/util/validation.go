package util

import (
	"fmt"
	"net"
)

// nodeIDLength is the length of a hex-encoded SHA-256 node identifier.
const nodeIDLength = 64

// ValidateNodeID checks if a string is a well-formed node identifier
// (64 lowercase hex characters).
//
// Parameters:
//   - id: The string to validate as a node ID
//
// Returns:
//   - error: An error if the string is not a valid node ID, nil otherwise
//
// Example:
//
//	if err := util.ValidateNodeID(nodeID); err != nil {
//	    return models.ErrInvalidRequest
//	}
func ValidateNodeID(id string) error {
	if len(id) != nodeIDLength {
		return fmt.Errorf("node ID must be %d characters, got %d", nodeIDLength, len(id))
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("node ID must be lowercase hex")
		}
	}
	return nil
}

// ValidateIP checks if a string is a valid IP address (IPv4 or IPv6).
//
// Parameters:
//   - ip: The string to validate as IP address
//
// Returns:
//   - error: An error if the string is not a valid IP, nil otherwise
func ValidateIP(ip string) error {
	if parsed := net.ParseIP(ip); parsed == nil {
		return fmt.Errorf("invalid IP address")
	}
	return nil
}

// ValidateIPv4 checks if a string is specifically a valid IPv4 address.
//
// Parameters:
//   - ip: The string to validate as IPv4 address
//
// Returns:
//   - error: An error if the string is not a valid IPv4, nil otherwise
//
// Example:
//
//	if err := util.ValidateIPv4(req.Addr); err != nil {
//	    return models.ErrInvalidIdentity
//	}
func ValidateIPv4(ip string) error {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return fmt.Errorf("invalid IP address")
	}
	if parsed.To4() == nil {
		return fmt.Errorf("not an IPv4 address")
	}
	return nil
}

// IsPrivateIP checks if an IP address is in a private range.
//
// Private ranges:
// - 10.0.0.0/8 (RFC 1918)
// - 172.16.0.0/12 (RFC 1918)
// - 192.168.0.0/16 (RFC 1918)
// - 127.0.0.0/8 (loopback)
// - 169.254.0.0/16 (link-local)
// - ::1/128 (IPv6 loopback)
// - fe80::/10 (IPv6 link-local)
// - fc00::/7 (IPv6 unique local)
//
// Parameters:
//   - ip: The IP address to check
//
// Returns:
//   - bool: true if the IP is in a private range, false otherwise
func IsPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}

	// Check special addresses
	if parsed.IsLoopback() || parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast() {
		return true
	}

	// Private IPv4 ranges
	privateIPv4Ranges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16", // Link-local
	}

	for _, cidr := range privateIPv4Ranges {
		_, network, _ := net.ParseCIDR(cidr)
		if network.Contains(parsed) {
			return true
		}
	}

	// Private IPv6 ranges
	privateIPv6Ranges := []string{
		"fc00::/7",  // Unique local
		"fe80::/10", // Link-local
	}

	for _, cidr := range privateIPv6Ranges {
		_, network, _ := net.ParseCIDR(cidr)
		if network.Contains(parsed) {
			return true
		}
	}

	return false
}

// ValidatePortRange checks if a port number is in valid range (1-65535).
//
// Parameters:
//   - port: The port number to validate
//
// Returns:
//   - error: An error if the port is out of range, nil otherwise
//
// Example:
//
//	if err := util.ValidatePortRange(cfg.Port); err != nil {
//	    return err
//	}
func ValidatePortRange(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
