package word

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Size is the width of a word in bytes.
const Size = 32

// ErrOutOfRange is returned when a value is negative or does not fit in 256 bits.
var ErrOutOfRange = errors.New("value out of uint256 range")

// ErrNilValue is returned when a nil *big.Int is converted.
var ErrNilValue = errors.New("nil value")

// Word is an unsigned 256-bit integer stored big-endian.
type Word [Size]byte

// Zero is the default value of every slot.
var Zero Word

// FromBig converts v into a Word.
func FromBig(v *big.Int) (Word, error) {
	var w Word
	if v == nil {
		return w, ErrNilValue
	}
	if v.Sign() < 0 || v.BitLen() > Size*8 {
		return w, fmt.Errorf("%w: %s", ErrOutOfRange, v.String())
	}
	v.FillBytes(w[:])
	return w, nil
}

// FromUint64 converts v into a Word.
func FromUint64(v uint64) Word {
	w, _ := FromBig(new(big.Int).SetUint64(v))
	return w
}

// FromBytes copies b into a Word. b must be exactly Size bytes long.
func FromBytes(b []byte) (Word, error) {
	var w Word
	if len(b) != Size {
		return w, fmt.Errorf("invalid word length %d (expected %d)", len(b), Size)
	}
	copy(w[:], b)
	return w, nil
}

// Parse parses a base-10 unsigned integer.
func Parse(s string) (Word, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Word{}, errors.New("empty value")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Word{}, fmt.Errorf("invalid decimal value %q", s)
	}
	return FromBig(v)
}

// Big returns the value as a new big.Int.
func (w Word) Big() *big.Int {
	return new(big.Int).SetBytes(w[:])
}

// IsZero reports whether w is zero.
func (w Word) IsZero() bool {
	return w == Zero
}

// String returns the decimal representation of w.
func (w Word) String() string {
	return w.Big().String()
}
