// Package dna implements HelixGate's symbolic token codec.
//
// A DNA token is a fixed-length sequence over the alphabet {A, C, T, G},
// derived deterministically from arbitrary input bytes. The derivation is a
// pure function: the same input and length always produce the same token, on
// every platform.
//
// # Derivation
//
// The codec hashes the input with SHA-256 and reads the digest two bits at a
// time, most significant bit first, mapping each pair to a symbol:
//
//	00 -> A    01 -> C    10 -> T    11 -> G
//
// One digest yields 128 symbols. When a longer token is requested the codec
// extends the stream by re-hashing the original digest concatenated with the
// running symbol count, so extension blocks never repeat verbatim.
//
// # Usage
//
//	token, err := dna.Encode(identityBytes, 32)
//	if err != nil {
//	    return fmt.Errorf("failed to derive token: %w", err)
//	}
//	// token is a 32-character ACTG string
//
// Tokens are capability credentials bound to whatever the input bytes encode
// (for HelixGate: a node identity salted with a rotation epoch). The codec
// itself is stateless and knows nothing about nodes or epochs.
package dna
