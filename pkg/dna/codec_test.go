package dna

import (
	"crypto/sha256"
	"errors"
	"strings"
	"testing"

	"helixgate.io/models"
)

func TestEncodeLengthAndAlphabet(t *testing.T) {
	tests := []struct {
		name   string
		input  []byte
		length int
	}{
		{"short token", []byte("10.0.0.5|aa:bb:cc:dd:ee:ff|worker-1"), 16},
		{"default token", []byte("node identity bytes"), DefaultLength},
		{"single symbol", []byte("x"), 1},
		{"full digest", []byte("exactly one digest"), SymbolsPerDigest},
		{"beyond one digest", []byte("needs extension"), SymbolsPerDigest + 1},
		{"long token", []byte("long"), 4 * SymbolsPerDigest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Encode(tt.input, tt.length)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if len(token) != tt.length {
				t.Errorf("Encode() length = %d, want %d", len(token), tt.length)
			}
			for i := 0; i < len(token); i++ {
				if !strings.ContainsRune(Alphabet, rune(token[i])) {
					t.Errorf("Encode() symbol %q at %d not in alphabet", token[i], i)
				}
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	input := []byte("10.0.0.5|aa:bb:cc:dd:ee:ff|worker-1")

	first, err := Encode(input, 64)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Encode(input, 64)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if again != first {
			t.Fatalf("Encode() not deterministic: %q != %q", again, first)
		}
	}
}

func TestEncodeDistinctInputs(t *testing.T) {
	a, err := Encode([]byte("10.0.0.5|aa:bb:cc:dd:ee:ff|worker-1"), 32)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	b, err := Encode([]byte("10.0.0.6|aa:bb:cc:dd:ee:ff|worker-1"), 32)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if a == b {
		t.Errorf("Encode() produced identical tokens for distinct inputs: %q", a)
	}
}

func TestEncodeBitMapping(t *testing.T) {
	// The first symbols must follow the digest's top bits MSB-first.
	input := []byte("mapping check")
	digest := sha256.Sum256(input)

	token, err := Encode(input, 8)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := make([]byte, 0, 8)
	for _, byt := range digest[:2] {
		for shift := 6; shift >= 0; shift -= 2 {
			want = append(want, Alphabet[(byt>>shift)&0x3])
		}
	}
	if token != string(want) {
		t.Errorf("Encode() = %q, want %q from digest bits", token, want)
	}
}

func TestEncodeExtensionNotPeriodic(t *testing.T) {
	// Extension blocks must not repeat the first digest verbatim.
	token, err := Encode([]byte("periodicity check"), 2*SymbolsPerDigest)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	first := token[:SymbolsPerDigest]
	second := token[SymbolsPerDigest:]
	if first == second {
		t.Error("Encode() extension block repeats the first digest")
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		length  int
		wantErr error
	}{
		{"zero length", []byte("data"), 0, models.ErrInvalidLength},
		{"negative length", []byte("data"), -5, models.ErrInvalidLength},
		{"empty input", nil, 32, models.ErrEmptyInput},
		{"empty slice", []byte{}, 32, models.ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.input, tt.length)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Encode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid token", "ACTGACTGACTGACTG", true},
		{"single symbol", "G", true},
		{"empty", "", false},
		{"lowercase", "actg", false},
		{"hex characters", "ACTF", false},
		{"whitespace", "ACT G", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.token); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	input := []byte("10.0.0.5|aa:bb:cc:dd:ee:ff|worker-1")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Encode(input, DefaultLength)
	}
}

func BenchmarkEncodeLong(b *testing.B) {
	input := []byte("10.0.0.5|aa:bb:cc:dd:ee:ff|worker-1")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Encode(input, 4*SymbolsPerDigest)
	}
}
