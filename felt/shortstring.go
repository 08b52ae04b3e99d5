package felt

import (
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// MaxShortStringLength is the number of ASCII bytes that fit in one field element.
const MaxShortStringLength = 31

var (
	ErrShortStringTooLong  = errors.New("short string exceeds 31 bytes")
	ErrShortStringNotASCII = errors.New("short string contains non-ASCII bytes")
	// ErrShortStringLeadingNUL is returned for strings starting with a NUL
	// byte, which would be lost in the big-endian packing.
	ErrShortStringLeadingNUL = errors.New("short string starts with a NUL byte")
)

// EncodeShortString packs an ASCII string of at most 31 bytes into a field
// element, big-endian. The first byte must not be NUL.
func EncodeShortString(s string) (*Felt, error) {
	if len(s) > MaxShortStringLength {
		return nil, ErrShortStringTooLong
	}
	if len(s) > 0 && s[0] == 0 {
		return nil, ErrShortStringLeadingNUL
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return nil, ErrShortStringNotASCII
		}
	}
	return new(Felt).SetBytes([]byte(s)), nil
}

// DecodeShortString unpacks a field element produced by EncodeShortString.
// Leading zero bytes are padding and are dropped.
func DecodeShortString(f *Felt) (string, error) {
	b := f.Bytes()
	if b[0] != 0 {
		return "", ErrShortStringTooLong
	}
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	for _, c := range b[i:] {
		if c > 0x7f {
			return "", ErrShortStringNotASCII
		}
	}
	return string(b[i:]), nil
}

// StarknetKeccak is keccak256 truncated to the low 250 bits.
func StarknetKeccak(data []byte) *Felt {
	h := crypto.Keccak256(data)
	h[0] &= 0x03
	return new(Felt).SetBytes(h)
}

// Selector returns the entry point selector for a function name.
func Selector(name string) *Felt {
	return StarknetKeccak([]byte(name))
}
