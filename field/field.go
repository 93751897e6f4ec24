// Package field implements the scalar prime field the sumcheck prover and
// verifier compute over. It plays the role spec.md calls an "external"
// collaborator (the finite-field arithmetic library); this module supplies a
// concrete one so the rest of the core can be built and tested end to end.
package field

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"math/bits"

	"github.com/tuneinsight/lattigo/v4/ring"
)

// Modulus is the Goldilocks prime 2^64 - 2^32 + 1. It has 2-adicity 32, so it
// stays NTT-friendly at every hypercube size this library ever folds down to.
const Modulus uint64 = 0xFFFFFFFF00000001

// defaultValidationRingN is an arbitrary small power of two used only to ask
// lattigo to confirm Modulus is NTT-friendly; the core never builds an actual
// ring.Poly over it, it just borrows the library's modulus validation.
const defaultValidationRingN = 16

func init() {
	if _, err := ring.NewRing(defaultValidationRingN, []uint64{Modulus}); err != nil {
		panic(fmt.Errorf("field: modulus %d rejected by lattigo as non-NTT-friendly: %w", Modulus, err))
	}
}

// Element is a value in Z_q for the fixed prime Modulus. The zero value is 0.
// Elements are always kept in canonical form (< Modulus).
type Element uint64

// Zero is the additive identity.
func Zero() Element { return Element(0) }

// One is the multiplicative identity.
func One() Element { return Element(1 % Modulus) }

// FromUint64 reduces x modulo Modulus.
func FromUint64(x uint64) Element { return Element(x % Modulus) }

// FromInt64 lifts a small signed integer into the field.
func FromInt64(x int64) Element {
	if x >= 0 {
		return FromUint64(uint64(x))
	}
	neg := FromUint64(uint64(-x))
	return Zero().Sub(neg)
}

// Add returns a+b mod q.
func (a Element) Add(b Element) Element {
	return Element(modAdd(uint64(a), uint64(b), Modulus))
}

// Sub returns a-b mod q.
func (a Element) Sub(b Element) Element {
	return Element(modSub(uint64(a), uint64(b), Modulus))
}

// Neg returns -a mod q.
func (a Element) Neg() Element {
	return Zero().Sub(a)
}

// Mul returns a*b mod q.
func (a Element) Mul(b Element) Element {
	return Element(modMul(uint64(a), uint64(b), Modulus))
}

// Inverse returns a^-1 mod q. It panics if a is zero, mirroring the teacher's
// kfield.Inv contract (the caller is expected to have already excluded zero).
func (a Element) Inverse() Element {
	if a.IsZero() {
		panic("field: inverse of zero element")
	}
	return Element(modPow(uint64(a), Modulus-2, Modulus))
}

// IsZero reports whether a is the additive identity.
func (a Element) IsZero() bool { return uint64(a)%Modulus == 0 }

// Equal reports whether a and b represent the same field element.
func (a Element) Equal(b Element) bool { return uint64(a)%Modulus == uint64(b)%Modulus }

// String renders the canonical decimal representation.
func (a Element) String() string { return fmt.Sprintf("%d", uint64(a)%Modulus) }

// Bytes returns the canonical little-endian 8-byte encoding.
func (a Element) Bytes() [8]byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], uint64(a)%Modulus)
	return out
}

// SetBytes decodes a little-endian 8-byte encoding. Out-of-range values are
// not rejected: they are reduced mod q, so any 8-byte string is accepted.
// Input of any other length is an error.
func SetBytes(b []byte) (Element, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("field: SetBytes: want 8 bytes, got %d", len(b))
	}
	return FromUint64(binary.LittleEndian.Uint64(b)), nil
}

// Sample draws a uniform element from r by rejection sampling 8-byte draws,
// in the style of DECS.DeriveGamma's 64-bit rejection loop.
func Sample(r io.Reader) (Element, error) {
	limit := (^uint64(0) / Modulus) * Modulus
	var buf [8]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("field: Sample: %w", err)
		}
		x := binary.LittleEndian.Uint64(buf[:])
		if x < limit {
			return Element(x % Modulus), nil
		}
	}
}

// FromUniformBytes reduces a wide (>= 16 byte) uniformly random byte string
// modulo q with negligible bias, for deriving challenges from a hash squeeze
// that emits more bytes than the field needs (spec.md's recommended
// >= 2*field-size-in-bits squeeze).
func FromUniformBytes(b []byte) Element {
	x := new(big.Int).SetBytes(b)
	m := new(big.Int).SetUint64(Modulus)
	x.Mod(x, m)
	return Element(x.Uint64())
}

func modAdd(a, b, q uint64) uint64 {
	a %= q
	b %= q
	sum, carry := bits.Add64(a, b, 0)
	if carry == 1 || sum >= q {
		sum -= q
	}
	return sum
}

func modSub(a, b, q uint64) uint64 {
	a %= q
	b %= q
	if a >= b {
		return a - b
	}
	return a + q - b
}

func modMul(a, b, q uint64) uint64 {
	a %= q
	b %= q
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, q)
	return rem
}

func modPow(base, exp, q uint64) uint64 {
	result := uint64(1 % q)
	b := base % q
	e := exp
	for e > 0 {
		if e&1 == 1 {
			result = modMul(result, b, q)
		}
		e >>= 1
		if e > 0 {
			b = modMul(b, b, q)
		}
	}
	return result
}
