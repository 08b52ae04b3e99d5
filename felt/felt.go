// Package felt holds the Stark field element helpers shared by the typed-data
// engine and the RPC client: parsing, fixed-width conversions, the Cairo short
// string codec and starknet_keccak.
package felt

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
)

// Felt is an element of the Stark prime field.
type Felt = felt.Felt

// Prime is the Stark field modulus 2^251 + 17*2^192 + 1.
var Prime, _ = new(big.Int).SetString("800000000000011000000000000000000000000000000000000000000000001", 16)

var (
	ErrEmpty      = errors.New("empty numeric literal")
	ErrOutOfRange = errors.New("value is not in the field range [0, P)")
)

// FromUint64 returns v as a field element.
func FromUint64(v uint64) *Felt {
	return new(Felt).SetUint64(v)
}

// FromBigInt converts b, which must be in [0, P), into a field element.
func FromBigInt(b *big.Int) (*Felt, error) {
	if b == nil {
		return nil, ErrEmpty
	}
	if b.Sign() < 0 || b.Cmp(Prime) >= 0 {
		return nil, ErrOutOfRange
	}
	return new(Felt).SetBytes(b.Bytes()), nil
}

// ToBigInt returns the canonical integer value of f.
func ToBigInt(f *Felt) *big.Int {
	b := f.Bytes()
	return new(big.Int).SetBytes(b[:])
}

// FromHex parses a hex literal with or without the 0x prefix.
func FromHex(s string) (*Felt, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return nil, ErrEmpty
	}
	b, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex literal %q", s)
	}
	return FromBigInt(b)
}

// FromDecimal parses an unsigned base-10 literal.
func FromDecimal(s string) (*Felt, error) {
	if s == "" {
		return nil, ErrEmpty
	}
	if s[0] == '+' || s[0] == '-' {
		return nil, fmt.Errorf("invalid decimal literal %q", s)
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal literal %q", s)
	}
	return FromBigInt(b)
}

// FromString parses s as hex when it carries the 0x prefix and as decimal otherwise.
func FromString(s string) (*Felt, error) {
	if IsHex(s) {
		return FromHex(s)
	}
	return FromDecimal(s)
}

// MustFromHex is FromHex for constants; it panics on malformed input.
func MustFromHex(s string) *Felt {
	f, err := FromHex(s)
	if err != nil {
		panic(fmt.Sprintf("felt: %v", err))
	}
	return f
}

// IsHex reports whether s carries the 0x prefix.
func IsHex(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

// Bytes32 returns the big-endian 32 byte representation of f.
func Bytes32(f *Felt) [32]byte {
	return f.Bytes()
}

// Hex returns the minimal 0x-prefixed hex form of f.
func Hex(f *Felt) string {
	return "0x" + ToBigInt(f).Text(16)
}

// PaddedHex returns f as 0x followed by exactly 64 hex digits.
func PaddedHex(f *Felt) string {
	return fmt.Sprintf("0x%064x", ToBigInt(f))
}
