package mlsumcheck

import (
	"errors"
	"fmt"

	"github.com/arkworks-rs/sumcheck/field"
)

// ErrMalformedInput is returned eagerly for invalid shapes: empty product
// lists, variable-count mismatches, or wrong-length round polynomials. It is
// never absorbed into the transcript (spec.md §7).
var ErrMalformedInput = errors.New("mlsumcheck: malformed input")

// ErrReject is returned when the verifier's round consistency check fails.
// Fatal for the session; no partial result is returned.
var ErrReject = errors.New("mlsumcheck: rejected")

// ErrReset is returned when the protocol is driven past its last round. A
// rejection does not mark a VerifierState as finished: a call made after an
// ErrReject is checked like any other and is not refused with ErrReset.
var ErrReset = errors.New("mlsumcheck: protocol already finished")

// VerifyError carries the round and the expected/actual asserted-sum values
// at the point a proof was rejected, so a caller can log *why* without the
// verifier retaining any mutable state after returning (spec.md §9 Open
// Questions: "implementers wishing to preserve post-mortem state should
// document a separate inspection hook").
type VerifyError struct {
	Round    int
	Expected field.Element
	Actual   field.Element
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("mlsumcheck: reject at round %d: expected %s, got %s", e.Round, e.Expected, e.Actual)
}

func (e *VerifyError) Unwrap() error { return ErrReject }
