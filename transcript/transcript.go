// Package transcript implements the Fiat-Shamir sponge MLSumcheck and
// GKRRoundSumcheck use to turn the interactive protocol non-interactive
// (spec.md §4.3). It is a direct descendant of the teacher's
// PIOP/fs_helpers.go Shake256XOF, stripped of the SmallWood-specific
// grinding/kappa machinery that spec.md has no use for.
package transcript

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/arkworks-rs/sumcheck/field"
)

// XOF models the extendable-output function backing the transcript.
type XOF interface {
	Expand(label string, parts ...[]byte) []byte
}

// Shake256XOF is a SHAKE-256-backed XOF emitting a fixed number of bytes
// per call.
type Shake256XOF struct {
	outLen int
}

// NewShake256XOF returns a SHAKE-256 XOF that emits outLen bytes per Expand.
func NewShake256XOF(outLen int) Shake256XOF {
	if outLen <= 0 {
		panic("transcript: NewShake256XOF: outLen must be > 0")
	}
	return Shake256XOF{outLen: outLen}
}

// Expand hashes label followed by parts and returns outLen bytes of output.
func (s Shake256XOF) Expand(label string, parts ...[]byte) []byte {
	h := sha3.NewShake256()
	if _, err := h.Write([]byte(label)); err != nil {
		panic(fmt.Errorf("transcript: Shake256XOF: write label: %w", err))
	}
	for _, p := range parts {
		if _, err := h.Write(p); err != nil {
			panic(fmt.Errorf("transcript: Shake256XOF: write payload: %w", err))
		}
	}
	out := make([]byte, s.outLen)
	if _, err := h.Read(out); err != nil {
		panic(fmt.Errorf("transcript: Shake256XOF: read output: %w", err))
	}
	return out
}

// squeezeOutLen is the byte width of a single challenge squeeze: 32 bytes
// gives 256 bits of uniform input to field.FromUniformBytes, well over twice
// the ~64-bit width of field.Modulus, matching spec.md §6's recommendation.
const squeezeOutLen = 32

// Transcript is a sequential Fiat-Shamir sponge: every value leaving the
// prover must be appended before any challenge is squeezed, and the verifier
// replays the identical append/squeeze sequence (spec.md §4.3 discipline).
// It is not a true streaming duplex (golang.org/x/crypto/sha3's ShakeHash
// forbids writes after reads); instead each Append/ChallengeField call
// re-hashes the running state, chaining it forward exactly like
// PIOP/fs_helpers.go's per-call Expand.
type Transcript struct {
	xof   XOF
	state []byte
}

// New starts a transcript domain-separated by label.
func New(label string) *Transcript {
	return NewWithXOF(label, NewShake256XOF(squeezeOutLen))
}

// NewWithXOF starts a transcript with a caller-supplied XOF, for tests that
// want a deterministic or instrumented sponge.
func NewWithXOF(label string, xof XOF) *Transcript {
	return &Transcript{
		xof:   xof,
		state: xof.Expand("sumcheck-transcript-init", []byte(label)),
	}
}

// Append absorbs a label-prefixed, length-prefixed byte block.
func (t *Transcript) Append(label string, data []byte) {
	t.state = t.xof.Expand("sumcheck-absorb", t.state, []byte(label), lengthPrefixed(data))
}

// AppendField absorbs the canonical serialization of a field element.
func (t *Transcript) AppendField(label string, x field.Element) {
	b := x.Bytes()
	t.Append(label, b[:])
}

// AppendFieldSlice absorbs a sequence of field elements under one label, used
// for appending a whole round polynomial at once.
func (t *Transcript) AppendFieldSlice(label string, xs []field.Element) {
	buf := make([]byte, 0, 8*len(xs))
	for _, x := range xs {
		b := x.Bytes()
		buf = append(buf, b[:]...)
	}
	t.Append(label, buf)
}

// ChallengeField squeezes a uniformly distributed field element and chains
// the transcript state forward so the challenge itself is bound into every
// later absorb/squeeze.
func (t *Transcript) ChallengeField(label string) field.Element {
	out := t.xof.Expand("sumcheck-squeeze", t.state, []byte(label))
	t.state = out
	return field.FromUniformBytes(out)
}

func lengthPrefixed(data []byte) []byte {
	out := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint64(out[:8], uint64(len(data)))
	copy(out[8:], data)
	return out
}
